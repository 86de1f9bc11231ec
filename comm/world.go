package comm

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// World is an in-process message passing fabric connecting Size ranks.
// Messages are matched on source, destination and tag, first in first out.
// A send completes once the receiver has copied the data out of the send
// buffer, so the sender must not touch the buffer until then. Errors are
// fatal, there are no error returns.
type World struct {
	ID     uuid.UUID
	Size   int
	mu     sync.Mutex
	cond   *sync.Cond
	queues map[envelopeKey][]*envelope
}

type envelopeKey struct {
	src, dst, tag int
}

type envelope struct {
	buf  []float64
	done chan struct{}
}

func NewWorld(size int) (w *World) {
	if size < 1 {
		panic(fmt.Errorf("world size must be positive, have %d", size))
	}
	w = &World{
		ID:     uuid.New(),
		Size:   size,
		queues: make(map[envelopeKey][]*envelope),
	}
	w.cond = sync.NewCond(&w.mu)
	return
}

// Comm returns the endpoint of one rank.
func (w *World) Comm(rank int) *Comm {
	w.checkRank(rank)
	return &Comm{world: w, Rank: rank}
}

func (w *World) checkRank(rank int) {
	if rank < 0 || rank >= w.Size {
		panic(fmt.Errorf("world %s: rank %d out of range [0,%d)", w.ID, rank, w.Size))
	}
}

func (w *World) post(key envelopeKey, env *envelope) {
	w.mu.Lock()
	w.queues[key] = append(w.queues[key], env)
	w.mu.Unlock()
	w.cond.Broadcast()
}

func (w *World) take(key envelopeKey) (env *envelope) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for len(w.queues[key]) == 0 {
		w.cond.Wait()
	}
	q := w.queues[key]
	env = q[0]
	if len(q) == 1 {
		delete(w.queues, key)
	} else {
		w.queues[key] = q[1:]
	}
	return
}

// Pending is the number of posted messages not yet received.
func (w *World) Pending() (n int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, q := range w.queues {
		n += len(q)
	}
	return
}

type Comm struct {
	world *World
	Rank  int
}

func (c *Comm) World() *World { return c.world }

// Isend posts buf to rank dst under tag and returns at once.
func (c *Comm) Isend(dst, tag int, buf []float64) (r *Request) {
	c.world.checkRank(dst)
	env := &envelope{buf: buf, done: make(chan struct{})}
	c.world.post(envelopeKey{src: c.Rank, dst: dst, tag: tag}, env)
	return &Request{done: env.done}
}

// Irecv arranges for the next message from src under tag to be copied into
// buf. The lengths must match.
func (c *Comm) Irecv(src, tag int, buf []float64) (r *Request) {
	c.world.checkRank(src)
	var (
		key = envelopeKey{src: src, dst: c.Rank, tag: tag}
		w   = c.world
	)
	r = &Request{done: make(chan struct{})}
	go func() {
		env := w.take(key)
		if len(env.buf) != len(buf) {
			panic(fmt.Errorf("world %s: message from rank %d to rank %d tag %d has %d values, receive buffer holds %d",
				w.ID, key.src, key.dst, key.tag, len(env.buf), len(buf)))
		}
		copy(buf, env.buf)
		close(env.done)
		close(r.done)
	}()
	return
}

// Request tracks one nonblocking send or receive.
type Request struct {
	done chan struct{}
}

func (r *Request) Wait() { <-r.done }

// Test reports completion without blocking.
func (r *Request) Test() bool {
	select {
	case <-r.done:
		return true
	default:
		return false
	}
}
