package bvals

import (
	"errors"
	"fmt"

	"github.com/notargets/blockmhd/comm"
	"github.com/notargets/blockmhd/grid"
	"github.com/notargets/blockmhd/types"
)

var (
	ErrInvalidFlag        = errors.New("invalid boundary flag")
	ErrInvalidDirection   = errors.New("invalid boundary direction")
	ErrIllegalEnrollment  = errors.New("illegal boundary function enrollment")
	ErrUnresolvedNeighbor = errors.New("unresolved neighbor block")
)

// BoundaryKind is what happens on a face without a neighbor block.
type BoundaryKind uint8

const (
	PassThrough BoundaryKind = iota // Filled by exchange, or left alone
	Reflect
	Outflow
	UserDefined
)

func (bk BoundaryKind) String() string {
	return [...]string{"PassThrough", "Reflect", "Outflow", "UserDefined"}[bk]
}

type HydroBoundaryFunc func(pmb *grid.MeshBlock, dst *grid.Array)
type FieldBoundaryFunc func(pmb *grid.MeshBlock, dst *grid.InterfaceField)
type EMFBoundaryFunc func(pmb *grid.MeshBlock, dst *grid.EdgeFlux)

// BoundaryValues owns the boundary buffers of one block and runs its side of
// every exchange.
type BoundaryValues struct {
	pmb      *grid.MeshBlock
	layout   *Layout
	comm     *comm.Comm
	nDirs    int
	kinds    [types.NumDirections]BoundaryKind
	handlers [types.NumDirections]Handler
	hydro    *exchange
	field    *exchange
	emf      *exchange
}

// NewBoundaryValues classifies the block's boundary flags and allocates its
// buffers. Neighbors are connected afterwards with Link. c may be nil when
// the block has no neighbor on another rank.
func NewBoundaryValues(pmb *grid.MeshBlock, layout *Layout, c *comm.Comm) (bv *BoundaryValues, err error) {
	if layout.Nx1 != pmb.Nx1 || layout.Nx2 != pmb.Nx2 || layout.Nx3 != pmb.Nx3 ||
		layout.NGhost != pmb.NGhost {
		err = fmt.Errorf("%w: layout [%d,%d,%d] ghost %d does not fit block %s",
			ErrInvalidLayout, layout.Nx1, layout.Nx2, layout.Nx3, layout.NGhost, pmb)
		return
	}
	bv = &BoundaryValues{
		pmb:    pmb,
		layout: layout,
		comm:   c,
		nDirs:  layout.NDirs,
	}
	for d := types.Direction(0); int(d) < bv.nDirs; d++ {
		switch flag := pmb.BlockBCs[d]; flag {
		case types.BC_Reflect:
			bv.kinds[d], bv.handlers[d] = Reflect, &reflectHandler{dir: d, layout: layout}
		case types.BC_Outflow:
			bv.kinds[d], bv.handlers[d] = Outflow, &outflowHandler{dir: d, layout: layout}
		case types.BC_Block, types.BC_Periodic:
			bv.kinds[d], bv.handlers[d] = PassThrough, noopHandler{}
		case types.BC_User:
			bv.kinds[d], bv.handlers[d] = UserDefined, &userHandler{}
		default:
			err = fmt.Errorf("%w: flag %d on %s of %s", ErrInvalidFlag, int(flag), d, pmb)
			bv = nil
			return
		}
	}
	bv.hydro = newExchange(types.Hydro, layout)
	if pmb.B != nil {
		bv.field = newExchange(types.Field, layout)
	}
	if pmb.E != nil {
		bv.emf = newExchange(types.EMF, layout)
	}
	return
}

func (bv *BoundaryValues) Block() *grid.MeshBlock { return bv.pmb }

func (bv *BoundaryValues) Layout() *Layout { return bv.layout }

func (bv *BoundaryValues) Kind(d types.Direction) BoundaryKind { return bv.kinds[d] }

// Link selects the transport of every direction with a neighbor block.
// lookup resolves blocks of this rank by global id.
func (bv *BoundaryValues) Link(lookup func(gid int) *BoundaryValues) (err error) {
	for d := types.Direction(0); int(d) < bv.nDirs; d++ {
		nb := bv.pmb.Neighbor[d]
		switch nb.Kind {
		case grid.Local:
			peer := lookup(nb.GID)
			if peer == nil {
				return fmt.Errorf("%w: block %d on %s of %s", ErrUnresolvedNeighbor, nb.GID, d, bv.pmb)
			}
			for _, ex := range bv.exchanges() {
				pex := peer.exchangeOf(ex.kind)
				if pex == nil {
					return fmt.Errorf("%w: block %d carries no %s data", ErrUnresolvedNeighbor, nb.GID, ex.kind)
				}
				ex.link[d] = &comm.Local{Peer: pex.recv[d.Opposite()]}
			}
		case grid.Remote:
			if bv.comm == nil {
				return fmt.Errorf("%w: block %d on rank %d needs a communicator", ErrUnresolvedNeighbor,
					nb.GID, nb.Rank)
			}
			for _, ex := range bv.exchanges() {
				ex.link[d] = &comm.Message{Comm: bv.comm, Peer: nb.Rank}
			}
		}
	}
	return
}

func (bv *BoundaryValues) exchanges() (exs []*exchange) {
	for _, ex := range []*exchange{bv.hydro, bv.field, bv.emf} {
		if ex != nil {
			exs = append(exs, ex)
		}
	}
	return
}

func (bv *BoundaryValues) exchangeOf(kind types.FieldKind) *exchange {
	switch kind {
	case types.Hydro:
		return bv.hydro
	case types.Field:
		return bv.field
	}
	return bv.emf
}

func (bv *BoundaryValues) checkEnrollment(d types.Direction) (h *userHandler, err error) {
	if !d.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDirection, int(d))
	}
	if int(d) >= bv.nDirs {
		return nil, fmt.Errorf("%w: %s is not active on a block of size [%d,%d,%d]",
			ErrInvalidDirection, d, bv.pmb.Nx1, bv.pmb.Nx2, bv.pmb.Nx3)
	}
	if flag := bv.pmb.Mesh.BCs[d]; flag != types.BC_User {
		return nil, fmt.Errorf("%w: mesh boundary flag on %s is %s, not user",
			ErrIllegalEnrollment, d, flag)
	}
	if bv.pmb.Neighbor[d].Exists() {
		return nil, fmt.Errorf("%w: %s of %s has neighbor block %d",
			ErrIllegalEnrollment, d, bv.pmb, bv.pmb.Neighbor[d].GID)
	}
	h = bv.handlers[d].(*userHandler)
	return
}

func (bv *BoundaryValues) EnrollHydroBoundaryFunction(d types.Direction, fn HydroBoundaryFunc) (err error) {
	var h *userHandler
	if h, err = bv.checkEnrollment(d); err == nil {
		h.hydro = fn
	}
	return
}

func (bv *BoundaryValues) EnrollFieldBoundaryFunction(d types.Direction, fn FieldBoundaryFunc) (err error) {
	var h *userHandler
	if h, err = bv.checkEnrollment(d); err == nil {
		h.field = fn
	}
	return
}

func (bv *BoundaryValues) EnrollEMFBoundaryFunction(d types.Direction, fn EMFBoundaryFunc) (err error) {
	var h *userHandler
	if h, err = bv.checkEnrollment(d); err == nil {
		h.emf = fn
	}
	return
}
