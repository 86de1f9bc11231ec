package grid

import (
	"github.com/notargets/blockmhd/types"
)

// Conserved variables of the isothermal hydro state
const (
	IDN = iota
	IM1
	IM2
	IM3
	NHydro
)

// Edge flux components stored on each face array of an EdgeFlux
const (
	X1E3 = 0 // on X1f
	X1E2 = 1
	X2E1 = 0 // on X2f
	X2E3 = 1
	X3E2 = 0 // on X3f
	X3E1 = 1

	NEdgeComponents = 2
)

// InterfaceField holds face-centred arrays. Each one is a cell larger along
// its own axis than the cell-centred storage.
type InterfaceField struct {
	X1f, X2f, X3f *Array
}

func NewInterfaceField(nvar, nk, nj, ni int) *InterfaceField {
	return &InterfaceField{
		X1f: NewArray(nvar, nk, nj, ni+1),
		X2f: NewArray(nvar, nk, nj+1, ni),
		X3f: NewArray(nvar, nk+1, nj, ni),
	}
}

func (f *InterfaceField) Face(o types.FaceOrientation) *Array {
	switch o {
	case types.X1Face:
		return f.X1f
	case types.X2Face:
		return f.X2f
	}
	return f.X3f
}

func (f *InterfaceField) Equal(g *InterfaceField) bool {
	return f.X1f.Equal(g.X1f) && f.X2f.Equal(g.X2f) && f.X3f.Equal(g.X3f)
}

// EdgeFlux is the electric field data exchanged between blocks: two edge
// components per face plus the face weights used to average them.
type EdgeFlux struct {
	Flux, Weight *InterfaceField
}

func NewEdgeFlux(nk, nj, ni int) *EdgeFlux {
	return &EdgeFlux{
		Flux:   NewInterfaceField(NEdgeComponents, nk, nj, ni),
		Weight: NewInterfaceField(1, nk, nj, ni),
	}
}

// Arrays lists the six face arrays in the fixed order used by the exchange:
// flux x1f, x2f, x3f then weight x1f, x2f, x3f.
func (e *EdgeFlux) Arrays() []*Array {
	return []*Array{
		e.Flux.X1f, e.Flux.X2f, e.Flux.X3f,
		e.Weight.X1f, e.Weight.X2f, e.Weight.X3f,
	}
}
