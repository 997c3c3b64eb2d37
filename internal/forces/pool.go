package forces

import "sync"

// Accumulator holds the net force on every node for one tick.
type Accumulator []Vec

// Pool recycles accumulators between ticks. An accumulator taken with Get
// belongs to the caller until it is handed back with Put.
type Pool struct {
	pool sync.Pool
}

func NewPool() *Pool {
	return &Pool{}
}

// Get returns a zeroed accumulator of length n.
func (p *Pool) Get(n int) Accumulator {
	if v, ok := p.pool.Get().(*Accumulator); ok && cap(*v) >= n {
		acc := (*v)[:n]
		clear(acc)
		return acc
	}
	return make(Accumulator, n)
}

func (p *Pool) Put(acc Accumulator) {
	if acc == nil {
		return
	}
	clear(acc)
	p.pool.Put(&acc)
}
