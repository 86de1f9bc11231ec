package comm

import "fmt"

// Field widths of a message tag, low bits first
const (
	subBits  = 2
	kindBits = 2
	dirBits  = 3
	flagBits = 4

	MaxFlag = 1<<flagBits - 1
)

// CreateTag packs the receiving block's local id, the cycle flag, the
// receiving direction, the field kind and two sub-identifiers into one tag.
// Distinct field values give distinct tags.
func CreateTag(lid, flag, dir, kind, sub1, sub2 int) (tag int) {
	check := func(name string, val, bits int) {
		if val < 0 || val >= 1<<bits {
			panic(fmt.Errorf("tag field %s = %d outside [0,%d)", name, val, 1<<bits))
		}
	}
	if lid < 0 {
		panic(fmt.Errorf("tag field lid = %d is negative", lid))
	}
	check("flag", flag, flagBits)
	check("dir", dir, dirBits)
	check("kind", kind, kindBits)
	check("sub1", sub1, subBits)
	check("sub2", sub2, subBits)
	tag = lid
	tag = tag<<flagBits | flag
	tag = tag<<dirBits | dir
	tag = tag<<kindBits | kind
	tag = tag<<subBits | sub1
	tag = tag<<subBits | sub2
	return
}

// SplitTag reverses CreateTag.
func SplitTag(tag int) (lid, flag, dir, kind, sub1, sub2 int) {
	take := func(bits int) (v int) {
		v = tag & (1<<bits - 1)
		tag >>= bits
		return
	}
	sub2 = take(subBits)
	sub1 = take(subBits)
	kind = take(kindBits)
	dir = take(dirBits)
	flag = take(flagBits)
	lid = tag
	return
}
