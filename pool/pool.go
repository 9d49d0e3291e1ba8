// Package pool provides a bounded free-list of reusable objects, used to hand
// preallocated buffers to loggers so hot-path creation never allocates.
package pool

import (
	"sync"
)

// Config describes how a pool creates and recycles objects.
type Config[T any] struct {
	// Max bounds the objects alive at once, free and in use. Zero is unbounded.
	Max int
	// New allocates and initializes one object. Required.
	New func() T
	// Reset prepares a returned object for reuse. Optional.
	Reset func(T) T
}

// Pool is a mutex-guarded free-list. The most recently returned object is
// handed out first, so a steady Take/Put cycle never reallocates the list.
type Pool[T any] struct {
	mu    sync.Mutex
	free  []T
	inUse int
	max   int
	newFn func() T
	reset func(T) T
}

// New creates an empty pool. It panics when cfg.New is nil.
func New[T any](cfg Config[T]) *Pool[T] {
	if cfg.New == nil {
		panic("pool: Config.New is required")
	}
	limit := cfg.Max
	if limit < 0 {
		limit = 0
	}
	p := &Pool[T]{
		max:   limit,
		newFn: cfg.New,
		reset: cfg.Reset,
	}
	if limit > 0 {
		p.free = make([]T, 0, limit)
	}
	return p
}

// Prealloc fills the free-list up to n objects, never exceeding Max.
// It returns the number of objects allocated.
func (p *Pool[T]) Prealloc(n int) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	added := 0
	for len(p.free) < n {
		if p.max > 0 && len(p.free)+p.inUse >= p.max {
			break
		}
		p.free = append(p.free, p.newFn())
		added++
	}
	return added
}

// Take hands out a free object, allocating one while under Max.
// It returns false when Max objects are already in use.
func (p *Pool[T]) Take() (T, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.free) > 0 {
		last := len(p.free) - 1
		obj := p.free[last]
		var zero T
		p.free[last] = zero
		p.free = p.free[:last]
		p.inUse++
		return obj, true
	}

	if p.max > 0 && p.inUse >= p.max {
		var zero T
		return zero, false
	}
	p.inUse++
	return p.newFn(), true
}

// Put returns an object. Objects beyond the pool's bound are discarded.
func (p *Pool[T]) Put(obj T) {
	if p.reset != nil {
		obj = p.reset(obj)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.inUse > 0 {
		p.inUse--
	}
	if p.max > 0 && len(p.free)+p.inUse >= p.max {
		return
	}
	p.free = append(p.free, obj)
}

// InUse returns the number of objects currently taken.
func (p *Pool[T]) InUse() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.inUse
}

// Free returns the number of objects ready to be taken without allocating.
func (p *Pool[T]) Free() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.free)
}

// Max returns the configured bound, zero for unbounded.
func (p *Pool[T]) Max() int {
	return p.max
}

// NewBuffers creates a pool of byte buffers with capacity size. The returned
// pool satisfies cclog.BufferSource.
func NewBuffers(size, limit int) *Pool[[]byte] {
	return New(Config[[]byte]{
		Max: limit,
		New: func() []byte {
			return make([]byte, 0, size)
		},
		Reset: func(b []byte) []byte {
			return b[:0]
		},
	})
}
