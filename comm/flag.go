package comm

import "sync"

// Flag is the completion flag of one receive buffer. The producer sets it
// once per exchange cycle and the consumer clears it once.
type Flag struct {
	mu   sync.Mutex
	cond *sync.Cond
	set  bool
}

func NewFlag() (f *Flag) {
	f = &Flag{}
	f.cond = sync.NewCond(&f.mu)
	return
}

func (f *Flag) IsSet() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.set
}

func (f *Flag) Set() {
	f.mu.Lock()
	f.set = true
	f.mu.Unlock()
	f.cond.Broadcast()
}

// Produce waits until the flag is clear, runs fill and sets the flag. fill
// owns the guarded buffer while it runs.
func (f *Flag) Produce(fill func()) {
	f.mu.Lock()
	for f.set {
		f.cond.Wait()
	}
	fill()
	f.set = true
	f.mu.Unlock()
	f.cond.Broadcast()
}

// Wait blocks until the flag is set.
func (f *Flag) Wait() {
	f.mu.Lock()
	for !f.set {
		f.cond.Wait()
	}
	f.mu.Unlock()
}

func (f *Flag) Clear() {
	f.mu.Lock()
	f.set = false
	f.mu.Unlock()
	f.cond.Broadcast()
}

// Slot is a receive buffer together with its completion flag.
type Slot struct {
	Buf  []float64
	Flag *Flag
	req  *Request
}

func NewSlot(size int) *Slot {
	return &Slot{
		Buf:  make([]float64, size),
		Flag: NewFlag(),
	}
}
