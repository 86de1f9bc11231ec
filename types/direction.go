package types

import (
	"fmt"
	"strings"
)

// Direction is one of the six faces of a block. The numbering is fixed: the
// inner face of an axis is even and the outer face is the next odd number.
type Direction int

const (
	InnerX1 Direction = iota
	OuterX1
	InnerX2
	OuterX2
	InnerX3
	OuterX3
	NumDirections
)

var DirectionNames = [NumDirections]string{"ix1", "ox1", "ix2", "ox2", "ix3", "ox3"}

func (d Direction) String() string {
	if d.Valid() {
		return DirectionNames[d]
	}
	return fmt.Sprintf("Direction(%d)", int(d))
}

func (d Direction) Valid() bool { return d >= InnerX1 && d < NumDirections }

// Opposite is the face of the neighbor that touches this face.
func (d Direction) Opposite() Direction {
	if d%2 == 0 {
		return d + 1
	}
	return d - 1
}

// Axis is 0, 1 or 2 for x1, x2, x3.
func (d Direction) Axis() int { return int(d) / 2 }

func (d Direction) IsInner() bool { return d%2 == 0 }

func ParseDirection(label string) (d Direction, err error) {
	label = strings.ToLower(strings.TrimSpace(label))
	for i, name := range DirectionNames {
		if name == label {
			d = Direction(i)
			return
		}
	}
	err = fmt.Errorf("unknown direction: [%s], want one of %v", label, DirectionNames)
	return
}

// ActiveDirections is the number of exchanged directions for a block with the
// given cell counts: 2 in 1D, 4 in 2D, 6 in 3D.
func ActiveDirections(nx2, nx3 int) (nd int) {
	nd = 2
	if nx2 > 1 {
		nd = 4
	}
	if nx3 > 1 {
		nd = 6
	}
	return
}
