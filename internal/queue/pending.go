package queue

import "container/list"

// Entry is anything the pending queue can hold: a handle, not the
// owned value itself. The queue never reads or mutates T's fields; it
// only orders handles.
type Entry interface {
	comparable
}

// Pending is a FIFO of T awaiting further processing, backed by
// container/list so removal from the middle (a request that never
// advances past a partial submit is still at the head, but this keeps
// the door open for arbitrary removal) stays O(1) once you hold the
// element. The queue does not own the values it holds — callers retain
// ownership and are responsible for their lifetime.
type Pending[T Entry] struct {
	l    *list.List
	elem map[T]*list.Element
}

// NewPending creates an empty pending queue.
func NewPending[T Entry]() *Pending[T] {
	return &Pending[T]{
		l:    list.New(),
		elem: make(map[T]*list.Element),
	}
}

// PushBack appends v to the tail of the queue.
func (p *Pending[T]) PushBack(v T) {
	p.elem[v] = p.l.PushBack(v)
}

// Front returns the head of the queue and whether the queue is non-empty.
func (p *Pending[T]) Front() (T, bool) {
	var zero T
	e := p.l.Front()
	if e == nil {
		return zero, false
	}
	return e.Value.(T), true
}

// Remove removes v from the queue. A no-op if v is not present.
func (p *Pending[T]) Remove(v T) {
	e, ok := p.elem[v]
	if !ok {
		return
	}
	p.l.Remove(e)
	delete(p.elem, v)
}

// Len returns the number of entries currently queued.
func (p *Pending[T]) Len() int {
	return p.l.Len()
}

// Empty reports whether the queue has no entries.
func (p *Pending[T]) Empty() bool {
	return p.l.Len() == 0
}
