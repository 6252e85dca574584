package internal

import (
	"sync"
)

// SlicePool is a pool of reusable slices of T. Slices returned by Get always have a length of zero.
type SlicePool[T any] struct {
	p sync.Pool
}

// NewSlicePool creates a SlicePool whose new slices are pre-allocated with the capacity passed.
func NewSlicePool[T any](capacity int) *SlicePool[T] {
	return &SlicePool[T]{p: sync.Pool{
		New: func() interface{} {
			s := make([]T, 0, capacity)
			return &s
		},
	}}
}

// Get retrieves a slice from the pool.
func (p *SlicePool[T]) Get() *[]T {
	s := p.p.Get().(*[]T)
	*s = (*s)[:0]
	return s
}

// Put returns a slice to the pool. Elements are zeroed so the pool does not keep them alive.
func (p *SlicePool[T]) Put(s *[]T) {
	if s == nil {
		return
	}
	clear(*s)
	*s = (*s)[:0]
	p.p.Put(s)
}
