package comm

import "fmt"

// Transport moves one direction's boundary buffer to the neighbor block and
// delivers the neighbor's buffer into the local receive slot.
type Transport interface {
	// PostReceive arms recv for the exchange identified by tag.
	PostReceive(recv *Slot, tag int)
	// Send delivers buf to the neighbor under tag.
	Send(buf []float64, tag int)
	// WaitReceive returns once recv holds the neighbor's data with its flag set.
	WaitReceive(recv *Slot)
	// WaitSend returns once the last sent buffer may be reused.
	WaitSend()
}

// Local copies straight into the receive slot of a block in this process.
type Local struct {
	Peer *Slot
}

func (l *Local) PostReceive(recv *Slot, tag int) {}

func (l *Local) Send(buf []float64, tag int) {
	l.Peer.Flag.Produce(func() {
		copy(l.Peer.Buf, buf)
	})
}

func (l *Local) WaitReceive(recv *Slot) { recv.Flag.Wait() }

func (l *Local) WaitSend() {}

// Message exchanges with a block owned by another rank.
type Message struct {
	Comm *Comm
	Peer int // Rank of the neighbor
	send *Request
}

func (m *Message) PostReceive(recv *Slot, tag int) {
	recv.req = m.Comm.Irecv(m.Peer, tag, recv.Buf)
}

func (m *Message) Send(buf []float64, tag int) {
	m.send = m.Comm.Isend(m.Peer, tag, buf)
}

func (m *Message) WaitReceive(recv *Slot) {
	if recv.Flag.IsSet() {
		return
	}
	if recv.req == nil {
		panic(fmt.Errorf("receive from rank %d waited on before it was posted", m.Peer))
	}
	recv.req.Wait()
	recv.req = nil
	recv.Flag.Set()
}

func (m *Message) WaitSend() {
	if m.send != nil {
		m.send.Wait()
		m.send = nil
	}
}
