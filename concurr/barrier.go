package concurr

import "sync"

// Barrier is a reusable rendezvous point for a fixed number of goroutines
type Barrier struct {
	mu    sync.Mutex
	cond  *sync.Cond
	n     int
	count int
	gen   uint64
}

func NewBarrier(n int) (b *Barrier) {
	b = &Barrier{n: n}
	b.cond = sync.NewCond(&b.mu)
	return
}

// Wait blocks until all n participants have called Wait for this generation
func (b *Barrier) Wait() {
	b.mu.Lock()
	defer b.mu.Unlock()
	gen := b.gen
	b.count++
	if b.count == b.n {
		b.count = 0
		b.gen++
		b.cond.Broadcast()
		return
	}
	for gen == b.gen {
		b.cond.Wait()
	}
}
