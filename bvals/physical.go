package bvals

import (
	"github.com/notargets/blockmhd/grid"
	"github.com/notargets/blockmhd/types"
)

// Handler fills the ghost zones beyond a face that has no neighbor block.
type Handler interface {
	FillHydro(pmb *grid.MeshBlock, dst *grid.Array)
	FillField(pmb *grid.MeshBlock, dst *grid.InterfaceField)
	FillEMF(pmb *grid.MeshBlock, dst *grid.EdgeFlux)
}

type noopHandler struct{}

func (noopHandler) FillHydro(pmb *grid.MeshBlock, dst *grid.Array)          {}
func (noopHandler) FillField(pmb *grid.MeshBlock, dst *grid.InterfaceField) {}
func (noopHandler) FillEMF(pmb *grid.MeshBlock, dst *grid.EdgeFlux)         {}

// userHandler calls whatever functions were enrolled, per field kind.
type userHandler struct {
	hydro HydroBoundaryFunc
	field FieldBoundaryFunc
	emf   EMFBoundaryFunc
}

func (h *userHandler) FillHydro(pmb *grid.MeshBlock, dst *grid.Array) {
	if h.hydro != nil {
		h.hydro(pmb, dst)
	}
}

func (h *userHandler) FillField(pmb *grid.MeshBlock, dst *grid.InterfaceField) {
	if h.field != nil {
		h.field(pmb, dst)
	}
}

func (h *userHandler) FillEMF(pmb *grid.MeshBlock, dst *grid.EdgeFlux) {
	if h.emf != nil {
		h.emf(pmb, dst)
	}
}

// reflectHandler mirrors the interior across the face and flips the normal
// momentum and the normal magnetic field.
type reflectHandler struct {
	dir    types.Direction
	layout *Layout
}

func (h *reflectHandler) FillHydro(pmb *grid.MeshBlock, dst *grid.Array) {
	normal := grid.IM1 + h.dir.Axis()
	for n := 0; n < dst.NVar; n++ {
		sign := 1.
		if n == normal {
			sign = -1
		}
		fillGhosts(pmb, dst, n, h.dir, -1, true, sign)
	}
}

func (h *reflectHandler) FillField(pmb *grid.MeshBlock, dst *grid.InterfaceField) {
	for f := 0; f < 3; f++ {
		sign := 1.
		if f == h.dir.Axis() {
			sign = -1
		}
		fillGhosts(pmb, dst.Face(types.FaceOrientation(f)), 0, h.dir, f, true, sign)
	}
}

func (h *reflectHandler) FillEMF(pmb *grid.MeshBlock, dst *grid.EdgeFlux) {
	copyEdges(h.layout, dst, h.dir)
}

// outflowHandler extends the last interior layer into the ghost zone.
type outflowHandler struct {
	dir    types.Direction
	layout *Layout
}

func (h *outflowHandler) FillHydro(pmb *grid.MeshBlock, dst *grid.Array) {
	for n := 0; n < dst.NVar; n++ {
		fillGhosts(pmb, dst, n, h.dir, -1, false, 1)
	}
}

func (h *outflowHandler) FillField(pmb *grid.MeshBlock, dst *grid.InterfaceField) {
	for f := 0; f < 3; f++ {
		fillGhosts(pmb, dst.Face(types.FaceOrientation(f)), 0, h.dir, f, false, 1)
	}
}

func (h *outflowHandler) FillEMF(pmb *grid.MeshBlock, dst *grid.EdgeFlux) {
	copyEdges(h.layout, dst, h.dir)
}

// fillGhosts sets the ghost layers of component n of a beyond face dir.
// face is the axis along which a is face centred, or -1 for cell data.
// Axes swept before dir's axis cover their ghosts too, later axes only the
// interior.
func fillGhosts(pmb *grid.MeshBlock, a *grid.Array, n int, dir types.Direction, face int,
	mirror bool, sign float64) {
	var (
		axis   = dir.Axis()
		ng     = pmb.NGhost
		start  = [3]int{pmb.Is, pmb.Js, pmb.Ks}
		end    = [3]int{pmb.Ie, pmb.Je, pmb.Ke}
		extent = [3]int{pmb.Ni, pmb.Nj, pmb.Nk}
		rng    [3][2]int
	)
	for b := 0; b < 3; b++ {
		switch {
		case b == axis:
			continue
		case b < axis:
			rng[b] = [2]int{0, extent[b] - 1}
		default:
			rng[b] = [2]int{start[b], end[b]}
		}
		if b == face {
			rng[b][1]++
		}
	}
	// ghost maps layer g to the destination and source indices along axis
	ghost := func(g int) (dst, src int) {
		var (
			s, e = start[axis], end[axis]
		)
		if face == axis {
			// Face s and face e+1 lie on the block boundary
			e++
			if dir.IsInner() {
				dst, src = s-g, s
				if mirror {
					src = s + g
				}
			} else {
				dst, src = e+g, e
				if mirror {
					src = e - g
				}
			}
			return
		}
		if dir.IsInner() {
			dst, src = s-g, s
			if mirror {
				src = s + g - 1
			}
		} else {
			dst, src = e+g, e
			if mirror {
				src = e - g + 1
			}
		}
		return
	}
	for g := 1; g <= ng; g++ {
		dst, src := ghost(g)
		for k := rng[2][0]; k <= rng[2][1]; k++ {
			for j := rng[1][0]; j <= rng[1][1]; j++ {
				for i := rng[0][0]; i <= rng[0][1]; i++ {
					to, from := [3]int{i, j, k}, [3]int{i, j, k}
					to[axis], from[axis] = dst, src
					a.Set(n, to[2], to[1], to[0], sign*a.At(n, from[2], from[1], from[0]))
				}
			}
		}
	}
}

// copyEdges fills the edge values one layer outside face dir with the ones
// on the face, the layers the exchange would have read and written.
func copyEdges(layout *Layout, dst *grid.EdgeFlux, dir types.Direction) {
	var (
		arrays  = dst.Arrays()
		scratch = make([]float64, layout.EMFSize[dir])
	)
	Pack(scratch, arrays, layout.Segments(types.EMF, dir, Send))
	Unpack(scratch, arrays, layout.Segments(types.EMF, dir, Recv))
}
