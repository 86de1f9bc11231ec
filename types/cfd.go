package types

import (
	"fmt"
	"strings"
)

// BCFLAG is the boundary flag carried by a block face. The integer values are
// the ones used in input decks, so they are not iota.
type BCFLAG int

const (
	BC_Block    BCFLAG = -1 // Face shared with another block
	BC_None     BCFLAG = 0
	BC_Reflect  BCFLAG = 1
	BC_Outflow  BCFLAG = 2
	BC_User     BCFLAG = 3
	BC_Periodic BCFLAG = 4
)

var BCNameMap = map[string]BCFLAG{
	"block":      BC_Block,
	"reflect":    BC_Reflect,
	"reflecting": BC_Reflect,
	"wall":       BC_Reflect,
	"outflow":    BC_Outflow,
	"out":        BC_Outflow,
	"user":       BC_User,
	"periodic":   BC_Periodic,
}

func (bf BCFLAG) String() string {
	switch bf {
	case BC_Block:
		return "Block"
	case BC_None:
		return "None"
	case BC_Reflect:
		return "Reflect"
	case BC_Outflow:
		return "Outflow"
	case BC_User:
		return "User"
	case BC_Periodic:
		return "Periodic"
	}
	return fmt.Sprintf("BCFLAG(%d)", int(bf))
}

// Valid reports whether the flag is one the boundary dispatch understands.
func (bf BCFLAG) Valid() bool {
	switch bf {
	case BC_Block, BC_Reflect, BC_Outflow, BC_User, BC_Periodic:
		return true
	}
	return false
}

func NewBCFLAG(label string) (bf BCFLAG, err error) {
	var (
		ok bool
	)
	if bf, ok = BCNameMap[strings.ToLower(strings.TrimSpace(label))]; !ok {
		err = fmt.Errorf("unknown boundary flag name: [%s]", label)
	}
	return
}

// FieldKind labels the three kinds of data exchanged between blocks.
type FieldKind uint8

const (
	Hydro FieldKind = iota
	Field
	EMF
)

var FieldKindNames = [...]string{"Hydro", "Field", "EMF"}

func (fk FieldKind) String() string {
	if int(fk) < len(FieldKindNames) {
		return FieldKindNames[fk]
	}
	return fmt.Sprintf("FieldKind(%d)", int(fk))
}

// FaceOrientation selects one of the three face-centred arrays.
type FaceOrientation uint8

const (
	X1Face FaceOrientation = iota
	X2Face
	X3Face
)
