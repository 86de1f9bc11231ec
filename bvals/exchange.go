package bvals

import (
	"fmt"

	"github.com/notargets/blockmhd/comm"
	"github.com/notargets/blockmhd/grid"
	"github.com/notargets/blockmhd/types"
)

// exchange holds the buffers of one field kind. A nil link marks a face
// without a neighbor block.
type exchange struct {
	kind   types.FieldKind
	layout *Layout
	send   [types.NumDirections][]float64
	recv   [types.NumDirections]*comm.Slot
	link   [types.NumDirections]comm.Transport
}

func newExchange(kind types.FieldKind, layout *Layout) (ex *exchange) {
	ex = &exchange{kind: kind, layout: layout}
	for d := types.Direction(0); int(d) < layout.NDirs; d++ {
		size := layout.BufferSize(kind, d)
		ex.send[d] = make([]float64, size)
		ex.recv[d] = comm.NewSlot(size)
	}
	return
}

func (ex *exchange) startReceiving(pmb *grid.MeshBlock, flag int) {
	for d := types.Direction(0); int(d) < ex.layout.NDirs; d++ {
		if ex.link[d] == nil {
			continue
		}
		ex.link[d].PostReceive(ex.recv[d], comm.CreateTag(pmb.LID, flag, int(d), int(ex.kind), 0, 0))
	}
}

func (ex *exchange) loadAndSend(pmb *grid.MeshBlock, d types.Direction, arrays []*grid.Array, flag int) {
	if ex.link[d] == nil {
		return
	}
	n := Pack(ex.send[d], arrays, ex.layout.Segments(ex.kind, d, Send))
	if n != len(ex.send[d]) {
		panic(fmt.Errorf("%s buffer on %s packed %d of %d values", ex.kind, d, n, len(ex.send[d])))
	}
	nb := pmb.Neighbor[d]
	ex.link[d].Send(ex.send[d], comm.CreateTag(nb.LID, flag, int(d.Opposite()), int(ex.kind), 0, 0))
}

// receiveAndSet unpacks the neighbor data of direction d, or reports false
// for a face with no neighbor so the caller can apply the boundary function.
func (ex *exchange) receiveAndSet(d types.Direction, arrays []*grid.Array) bool {
	if ex.link[d] == nil {
		return false
	}
	slot := ex.recv[d]
	ex.link[d].WaitReceive(slot)
	Unpack(slot.Buf, arrays, ex.layout.Segments(ex.kind, d, Recv))
	slot.Flag.Clear()
	return true
}

func (ex *exchange) waitSend(d types.Direction) {
	if ex.link[d] != nil {
		ex.link[d].WaitSend()
	}
}

func (bv *BoundaryValues) checkDirection(d types.Direction) {
	if !d.Valid() || int(d) >= bv.nDirs {
		panic(fmt.Errorf("%w: %s on a block with %d active directions", ErrInvalidDirection, d, bv.nDirs))
	}
}

func fieldArrays(f *grid.InterfaceField) []*grid.Array {
	return []*grid.Array{f.X1f, f.X2f, f.X3f}
}

// StartReceivingHydro posts the receives of one exchange cycle.
func (bv *BoundaryValues) StartReceivingHydro(flag int) {
	bv.hydro.startReceiving(bv.pmb, flag)
}

// LoadAndSendHydro packs the cells next to face d and hands them to the
// neighbor. Faces without a neighbor send nothing.
func (bv *BoundaryValues) LoadAndSendHydro(d types.Direction, src *grid.Array, flag int) {
	bv.checkDirection(d)
	bv.hydro.loadAndSend(bv.pmb, d, []*grid.Array{src}, flag)
}

// ReceiveAndSetHydro fills the ghost cells beyond face d, from the neighbor
// when there is one and from the boundary function otherwise.
func (bv *BoundaryValues) ReceiveAndSetHydro(d types.Direction, dst *grid.Array) bool {
	bv.checkDirection(d)
	if !bv.hydro.receiveAndSet(d, []*grid.Array{dst}) {
		bv.handlers[d].FillHydro(bv.pmb, dst)
	}
	return true
}

func (bv *BoundaryValues) WaitSendHydro(d types.Direction) {
	bv.checkDirection(d)
	bv.hydro.waitSend(d)
}

func (bv *BoundaryValues) fieldExchange() *exchange {
	if bv.field == nil {
		panic(fmt.Errorf("block %s has no magnetic field", bv.pmb))
	}
	return bv.field
}

func (bv *BoundaryValues) StartReceivingField(flag int) {
	bv.fieldExchange().startReceiving(bv.pmb, flag)
}

func (bv *BoundaryValues) LoadAndSendField(d types.Direction, src *grid.InterfaceField, flag int) {
	bv.checkDirection(d)
	bv.fieldExchange().loadAndSend(bv.pmb, d, fieldArrays(src), flag)
}

func (bv *BoundaryValues) ReceiveAndSetField(d types.Direction, dst *grid.InterfaceField) bool {
	bv.checkDirection(d)
	if !bv.fieldExchange().receiveAndSet(d, fieldArrays(dst)) {
		bv.handlers[d].FillField(bv.pmb, dst)
	}
	return true
}

func (bv *BoundaryValues) WaitSendField(d types.Direction) {
	bv.checkDirection(d)
	bv.fieldExchange().waitSend(d)
}

// The edge field exchange covers all active directions at once and does
// nothing in 1D.

func (bv *BoundaryValues) StartReceivingEMF(flag int) {
	if bv.emf == nil {
		return
	}
	bv.emf.startReceiving(bv.pmb, flag)
}

func (bv *BoundaryValues) LoadAndSendEMF(src *grid.EdgeFlux, flag int) {
	if bv.emf == nil {
		return
	}
	arrays := src.Arrays()
	for d := types.Direction(0); int(d) < bv.nDirs; d++ {
		bv.emf.loadAndSend(bv.pmb, d, arrays, flag)
	}
}

func (bv *BoundaryValues) ReceiveAndSetEMF(dst *grid.EdgeFlux) bool {
	if bv.emf == nil {
		return true
	}
	arrays := dst.Arrays()
	for d := types.Direction(0); int(d) < bv.nDirs; d++ {
		if !bv.emf.receiveAndSet(d, arrays) {
			bv.handlers[d].FillEMF(bv.pmb, dst)
		}
	}
	return true
}

// WaitSendEMF waits on the sends to blocks of other ranks, the only ones
// that complete asynchronously.
func (bv *BoundaryValues) WaitSendEMF() {
	if bv.emf == nil {
		return
	}
	for d := types.Direction(0); int(d) < bv.nDirs; d++ {
		if bv.pmb.Neighbor[d].Kind == grid.Remote {
			bv.emf.waitSend(d)
		}
	}
}
