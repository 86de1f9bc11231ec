package bvals

import (
	"errors"
	"fmt"

	"github.com/notargets/blockmhd/grid"
	"github.com/notargets/blockmhd/types"
)

var ErrInvalidLayout = errors.New("invalid boundary layout")

// Range is an inclusive index box.
type Range struct {
	Si, Ei, Sj, Ej, Sk, Ek int
}

func (r Range) Volume() int {
	if r.Ei < r.Si || r.Ej < r.Sj || r.Ek < r.Sk {
		return 0
	}
	return (r.Ei - r.Si + 1) * (r.Ej - r.Sj + 1) * (r.Ek - r.Sk + 1)
}

// Side selects the sending or receiving half of an exchange.
type Side uint8

const (
	Send Side = iota
	Recv
)

// Segment is one contiguous piece of a boundary buffer: a range of one
// component of one array. Array indexes the array list of the field kind.
type Segment struct {
	Array, Component int
	Range
}

// Layout holds every index table of the boundary exchange for one block
// size. It is computed once and shared read-only by all blocks of that size.
type Layout struct {
	Nx1, Nx2, Nx3, NGhost  int
	Is, Ie, Js, Je, Ks, Ke int
	NDirs                  int

	HydroSend, HydroRecv          [types.NumDirections]Range
	FieldSend, FieldRecv          [types.NumDirections][3]Range
	HydroSize, FieldSize, EMFSize [types.NumDirections]int

	segments [3][types.NumDirections][2][]Segment
}

// InitBoundaryBuffer builds the layout for the default ghost depth and
// panics on block sizes that cannot carry it.
func InitBoundaryBuffer(nx1, nx2, nx3 int) (l *Layout) {
	var err error
	if l, err = NewLayout(nx1, nx2, nx3, grid.NGhost); err != nil {
		panic(err)
	}
	return
}

func NewLayout(nx1, nx2, nx3, nghost int) (l *Layout, err error) {
	switch {
	case nx1 < 1 || nx2 < 1 || nx3 < 1:
		err = fmt.Errorf("%w: block size [%d,%d,%d]", ErrInvalidLayout, nx1, nx2, nx3)
	case nghost < 1:
		err = fmt.Errorf("%w: ghost depth %d", ErrInvalidLayout, nghost)
	case nx1 < nghost || (nx2 > 1 && nx2 < nghost) || (nx3 > 1 && nx3 < nghost):
		err = fmt.Errorf("%w: block size [%d,%d,%d] smaller than ghost depth %d",
			ErrInvalidLayout, nx1, nx2, nx3, nghost)
	case nx2 == 1 && nx3 > 1:
		err = fmt.Errorf("%w: x3 active with x2 collapsed", ErrInvalidLayout)
	}
	if err != nil {
		return
	}
	var (
		ng = nghost
	)
	l = &Layout{Nx1: nx1, Nx2: nx2, Nx3: nx3, NGhost: ng}
	l.Is, l.Ie = ng, ng+nx1-1
	if nx2 > 1 {
		l.Js, l.Je = ng, ng+nx2-1
	}
	if nx3 > 1 {
		l.Ks, l.Ke = ng, ng+nx3-1
	}
	l.NDirs = types.ActiveDirections(nx2, nx3)
	l.hydroTables()
	l.fieldTables()
	l.emfSizes()
	for d := types.Direction(0); int(d) < l.NDirs; d++ {
		for _, side := range []Side{Send, Recv} {
			l.segments[types.Hydro][d][side] = l.hydroSegments(d, side)
			l.segments[types.Field][d][side] = l.fieldSegments(d, side)
			l.segments[types.EMF][d][side] = l.emfSegments(d, side)
		}
	}
	return
}

func (l *Layout) hydroTables() {
	var (
		ng                     = l.NGhost
		is, ie, js, je, ks, ke = l.Is, l.Ie, l.Js, l.Je, l.Ks, l.Ke
		nx1, nx2, nx3          = l.Nx1, l.Nx2, l.Nx3
	)
	l.HydroSend[types.InnerX1] = Range{is, is + ng - 1, js, je, ks, ke}
	l.HydroSend[types.OuterX1] = Range{ie - ng + 1, ie, js, je, ks, ke}
	l.HydroRecv[types.InnerX1] = Range{is - ng, is - 1, js, je, ks, ke}
	l.HydroRecv[types.OuterX1] = Range{ie + 1, ie + ng, js, je, ks, ke}
	l.HydroSize[types.InnerX1] = ng * nx2 * nx3 * grid.NHydro
	l.HydroSize[types.OuterX1] = l.HydroSize[types.InnerX1]
	if l.NDirs > 2 {
		l.HydroSend[types.InnerX2] = Range{0, ie + ng, js, js + ng - 1, ks, ke}
		l.HydroSend[types.OuterX2] = Range{0, ie + ng, je - ng + 1, je, ks, ke}
		l.HydroRecv[types.InnerX2] = Range{0, ie + ng, js - ng, js - 1, ks, ke}
		l.HydroRecv[types.OuterX2] = Range{0, ie + ng, je + 1, je + ng, ks, ke}
		l.HydroSize[types.InnerX2] = (nx1 + 2*ng) * ng * nx3 * grid.NHydro
		l.HydroSize[types.OuterX2] = l.HydroSize[types.InnerX2]
	}
	if l.NDirs > 4 {
		l.HydroSend[types.InnerX3] = Range{0, ie + ng, 0, je + ng, ks, ks + ng - 1}
		l.HydroSend[types.OuterX3] = Range{0, ie + ng, 0, je + ng, ke - ng + 1, ke}
		l.HydroRecv[types.InnerX3] = Range{0, ie + ng, 0, je + ng, ks - ng, ks - 1}
		l.HydroRecv[types.OuterX3] = Range{0, ie + ng, 0, je + ng, ke + 1, ke + ng}
		l.HydroSize[types.InnerX3] = (nx1 + 2*ng) * (nx2 + 2*ng) * ng * grid.NHydro
		l.HydroSize[types.OuterX3] = l.HydroSize[types.InnerX3]
	}
}

// fieldTables fills the face field tables, indexed [dir][face]. A face array
// has one more entry along its own axis, and faces on the block boundary
// belong to the interior of both neighbors.
func (l *Layout) fieldTables() {
	var (
		ng                     = l.NGhost
		is, ie, js, je, ks, ke = l.Is, l.Ie, l.Js, l.Je, l.Ks, l.Ke
		nx1, nx2, nx3          = l.Nx1, l.Nx2, l.Nx3
		x1, x2, x3             = types.X1Face, types.X2Face, types.X3Face
	)
	set := func(tbl *[types.NumDirections][3]Range, d types.Direction, r1, r2, r3 Range) {
		tbl[d][x1], tbl[d][x2], tbl[d][x3] = r1, r2, r3
	}
	set(&l.FieldSend, types.InnerX1,
		Range{is + 1, is + ng, js, je, ks, ke},
		Range{is, is + ng - 1, js, je + 1, ks, ke},
		Range{is, is + ng - 1, js, je, ks, ke + 1})
	set(&l.FieldSend, types.OuterX1,
		Range{ie - ng + 1, ie, js, je, ks, ke},
		Range{ie - ng + 1, ie, js, je + 1, ks, ke},
		Range{ie - ng + 1, ie, js, je, ks, ke + 1})
	set(&l.FieldRecv, types.InnerX1,
		Range{is - ng, is - 1, js, je, ks, ke},
		Range{is - ng, is - 1, js, je + 1, ks, ke},
		Range{is - ng, is - 1, js, je, ks, ke + 1})
	set(&l.FieldRecv, types.OuterX1,
		Range{ie + 2, ie + ng + 1, js, je, ks, ke},
		Range{ie + 1, ie + ng, js, je + 1, ks, ke},
		Range{ie + 1, ie + ng, js, je, ks, ke + 1})
	size := ng * (nx2*nx3 + (nx2+1)*nx3 + nx2*(nx3+1))
	l.FieldSize[types.InnerX1], l.FieldSize[types.OuterX1] = size, size
	if l.NDirs > 2 {
		set(&l.FieldSend, types.InnerX2,
			Range{0, ie + ng + 1, js, js + ng - 1, ks, ke},
			Range{0, ie + ng, js + 1, js + ng, ks, ke},
			Range{0, ie + ng, js, js + ng - 1, ks, ke + 1})
		set(&l.FieldSend, types.OuterX2,
			Range{0, ie + ng + 1, je - ng + 1, je, ks, ke},
			Range{0, ie + ng, je - ng + 1, je, ks, ke},
			Range{0, ie + ng, je - ng + 1, je, ks, ke + 1})
		set(&l.FieldRecv, types.InnerX2,
			Range{0, ie + ng + 1, js - ng, js - 1, ks, ke},
			Range{0, ie + ng, js - ng, js - 1, ks, ke},
			Range{0, ie + ng, js - ng, js - 1, ks, ke + 1})
		set(&l.FieldRecv, types.OuterX2,
			Range{0, ie + ng + 1, je + 1, je + ng, ks, ke},
			Range{0, ie + ng, je + 2, je + ng + 1, ks, ke},
			Range{0, ie + ng, je + 1, je + ng, ks, ke + 1})
		size = ng * ((nx1+2*ng)*nx3 + (nx1+2*ng+1)*nx3 + (nx1+2*ng)*(nx3+1))
		l.FieldSize[types.InnerX2], l.FieldSize[types.OuterX2] = size, size
	}
	if l.NDirs > 4 {
		set(&l.FieldSend, types.InnerX3,
			Range{0, ie + ng + 1, 0, je + ng, ks, ks + ng - 1},
			Range{0, ie + ng, 0, je + ng + 1, ks, ks + ng - 1},
			Range{0, ie + ng, 0, je + ng, ks + 1, ks + ng})
		set(&l.FieldSend, types.OuterX3,
			Range{0, ie + ng + 1, 0, je + ng, ke - ng + 1, ke},
			Range{0, ie + ng, 0, je + ng + 1, ke - ng + 1, ke},
			Range{0, ie + ng, 0, je + ng, ke - ng + 1, ke})
		set(&l.FieldRecv, types.InnerX3,
			Range{0, ie + ng + 1, 0, je + ng, ks - ng, ks - 1},
			Range{0, ie + ng, 0, je + ng + 1, ks - ng, ks - 1},
			Range{0, ie + ng, 0, je + ng, ks - ng, ks - 1})
		set(&l.FieldRecv, types.OuterX3,
			Range{0, ie + ng + 1, 0, je + ng, ke + 1, ke + ng},
			Range{0, ie + ng, 0, je + ng + 1, ke + 1, ke + ng},
			Range{0, ie + ng, 0, je + ng, ke + 2, ke + ng + 1})
		size = ng * ((nx1+2*ng+1)*(nx2+2*ng) + (nx1+2*ng)*(nx2+2*ng+1) + (nx1+2*ng)*(nx2+2*ng))
		l.FieldSize[types.InnerX3], l.FieldSize[types.OuterX3] = size, size
	}
}

func (l *Layout) emfSizes() {
	var (
		nx1, nx2, nx3 = l.Nx1, l.Nx2, l.Nx3
		set           = func(d types.Direction, size int) {
			l.EMFSize[d], l.EMFSize[d.Opposite()] = size, size
		}
	)
	switch l.NDirs {
	case 4:
		set(types.InnerX1, (nx2+1)*2)
		set(types.InnerX2, (nx1+1)*2)
	case 6:
		set(types.InnerX1, (nx2+1)*nx3*2+nx2*(nx3+1)*2)
		set(types.InnerX2, (nx1+1)*nx3*2+nx1*(nx3+1)*2)
		set(types.InnerX3, (nx1+1)*nx2*2+nx1*(nx2+1)*2)
	}
}

func (l *Layout) hydroSegments(d types.Direction, side Side) (segs []Segment) {
	r := l.HydroSend[d]
	if side == Recv {
		r = l.HydroRecv[d]
	}
	for n := 0; n < grid.NHydro; n++ {
		segs = append(segs, Segment{Array: 0, Component: n, Range: r})
	}
	return
}

func (l *Layout) fieldSegments(d types.Direction, side Side) (segs []Segment) {
	tbl := l.FieldSend[d]
	if side == Recv {
		tbl = l.FieldRecv[d]
	}
	for f := 0; f < 3; f++ {
		segs = append(segs, Segment{Array: f, Component: 0, Range: tbl[f]})
	}
	return
}

// Indices into grid.EdgeFlux.Arrays
const (
	emfFluxX1 = iota
	emfFluxX2
	emfFluxX3
	emfWeightX1
	emfWeightX2
	emfWeightX3
)

// emfSegments lists the edge values on the face of the block, each flux
// component followed by its weights. Receives land one layer outside.
func (l *Layout) emfSegments(d types.Direction, side Side) (segs []Segment) {
	if l.NDirs < 4 {
		return
	}
	var (
		is, ie, js, je, ks, ke = l.Is, l.Ie, l.Js, l.Je, l.Ks, l.Ke
		three                  = l.NDirs == 6
		layer                  int
	)
	switch {
	case d.IsInner() && side == Send:
		layer = [3]int{is, js, ks}[d.Axis()]
	case d.IsInner():
		layer = [3]int{is, js, ks}[d.Axis()] - 1
	case side == Send:
		layer = [3]int{ie, je, ke}[d.Axis()]
	default:
		layer = [3]int{ie, je, ke}[d.Axis()] + 1
	}
	pair := func(flux, comp, weight int, r Range) {
		segs = append(segs,
			Segment{Array: flux, Component: comp, Range: r},
			Segment{Array: weight, Component: 0, Range: r})
	}
	switch d.Axis() {
	case 0:
		pair(emfFluxX2, grid.X2E3, emfWeightX2, Range{layer, layer, js, je + 1, ks, ke})
		if three {
			pair(emfFluxX3, grid.X3E2, emfWeightX3, Range{layer, layer, js, je, ks, ke + 1})
		}
	case 1:
		pair(emfFluxX1, grid.X1E3, emfWeightX1, Range{is, ie + 1, layer, layer, ks, ke})
		if three {
			pair(emfFluxX3, grid.X3E1, emfWeightX3, Range{is, ie, layer, layer, ks, ke + 1})
		}
	case 2:
		pair(emfFluxX1, grid.X1E2, emfWeightX1, Range{is, ie + 1, js, je, layer, layer})
		pair(emfFluxX2, grid.X2E1, emfWeightX2, Range{is, ie, js, je + 1, layer, layer})
	}
	return
}

// Segments is the ordered iteration list used to pack (Send) or unpack
// (Recv) the buffer of one kind and direction. The two sides have the same
// number of segments with equal volumes.
func (l *Layout) Segments(kind types.FieldKind, d types.Direction, side Side) []Segment {
	if !d.Valid() || int(d) >= l.NDirs {
		return nil
	}
	return l.segments[kind][d][side]
}

func (l *Layout) BufferSize(kind types.FieldKind, d types.Direction) int {
	switch kind {
	case types.Hydro:
		return l.HydroSize[d]
	case types.Field:
		return l.FieldSize[d]
	}
	return l.EMFSize[d]
}

// Pack copies the segments of arrays into buf, k then j then i within each
// segment, and returns the number of values written.
func Pack(buf []float64, arrays []*grid.Array, segs []Segment) (n int) {
	for _, s := range segs {
		a := arrays[s.Array]
		for k := s.Sk; k <= s.Ek; k++ {
			for j := s.Sj; j <= s.Ej; j++ {
				ind := a.Index(s.Component, k, j, s.Si)
				n += copy(buf[n:], a.Data[ind:ind+s.Ei-s.Si+1])
			}
		}
	}
	return
}

// Unpack is the inverse of Pack.
func Unpack(buf []float64, arrays []*grid.Array, segs []Segment) (n int) {
	for _, s := range segs {
		a := arrays[s.Array]
		for k := s.Sk; k <= s.Ek; k++ {
			for j := s.Sj; j <= s.Ej; j++ {
				ind := a.Index(s.Component, k, j, s.Si)
				n += copy(a.Data[ind:ind+s.Ei-s.Si+1], buf[n:])
			}
		}
	}
	return
}
