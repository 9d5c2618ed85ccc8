// Package queue provides an unbounded FIFO queue drained by a single consumer goroutine.
package queue

import "sync"

// Unbounded is a FIFO queue whose producers never block.
type Unbounded[T any] struct {
	mu     sync.Mutex
	cond   *sync.Cond
	items  []T
	closed bool
}

// New creates an empty queue.
func New[T any]() *Unbounded[T] {
	q := &Unbounded[T]{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Push appends v and returns the queue length after the push.
// It returns 0 if the queue is closed and v was dropped.
func (q *Unbounded[T]) Push(v T) int {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return 0
	}
	q.items = append(q.items, v)
	q.cond.Signal()
	return len(q.items)
}

// Pop blocks until an item is available and returns it.
// Once the queue is closed, remaining items are still returned; ok is false after the last one.
func (q *Unbounded[T]) Pop() (v T, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for len(q.items) == 0 && !q.closed {
		q.cond.Wait()
	}
	if len(q.items) == 0 {
		return v, false
	}

	v = q.items[0]
	var zero T
	q.items[0] = zero
	q.items = q.items[1:]
	return v, true
}

// Close stops accepting items. Items already queued are still delivered by Pop.
func (q *Unbounded[T]) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.closed = true
	q.cond.Broadcast()
}

// Discard closes the queue and drops every queued item.
func (q *Unbounded[T]) Discard() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.closed = true
	q.items = nil
	q.cond.Broadcast()
}

// Len returns the number of queued items.
func (q *Unbounded[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
