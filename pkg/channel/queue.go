// Package channel provides the non-blocking FIFO queues that connect the GUI and
// the plugin side of the bridge.
package channel

import (
	"errors"
	"slices"
	"sync"
)

var (
	// ErrClosed is returned when sending on a queue that has been torn down.
	ErrClosed = errors.New("channel: closed")
	// ErrFull is returned when a bounded queue rejects a new message.
	ErrFull = errors.New("channel: full")
)

// Queue is a multi-producer FIFO queue whose operations never wait on the other
// side. A bounded queue rejects new messages when full instead of blocking the
// producer.
type Queue[T any] struct {
	mu       sync.Mutex
	items    []T
	head     int
	capacity int
	closed   bool
}

// NewQueue creates a queue holding at most capacity messages. A capacity of zero
// or less makes the queue unbounded.
func NewQueue[T any](capacity int) *Queue[T] {
	if capacity < 0 {
		capacity = 0
	}
	initial := capacity
	if initial == 0 || initial > 64 {
		initial = 64
	}
	return &Queue[T]{
		items:    make([]T, 0, initial),
		capacity: capacity,
	}
}

// Send appends a message to the tail of the queue.
func (q *Queue[T]) Send(item T) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrClosed
	}
	if q.capacity > 0 && len(q.items)-q.head >= q.capacity {
		return ErrFull
	}

	// Reclaim the consumed prefix before growing the backing array.
	if q.head > 0 && len(q.items) == cap(q.items) {
		n := copy(q.items, q.items[q.head:])
		clear(q.items[n:])
		q.items = q.items[:n]
		q.head = 0
	}
	q.items = append(q.items, item)
	return nil
}

// TryRecv removes and returns the message at the head of the queue. It reports
// false when the queue is empty or closed.
func (q *Queue[T]) TryRecv() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	var zero T
	if q.head >= len(q.items) {
		return zero, false
	}

	item := q.items[q.head]
	q.items[q.head] = zero
	q.head++
	if q.head == len(q.items) {
		q.items = q.items[:0]
		q.head = 0
	}
	return item, true
}

// Grow makes room for at least n more messages without reallocating.
func (q *Queue[T]) Grow(n int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if n > 0 {
		q.items = slices.Grow(q.items, n)
	}
}

// Len returns the number of queued messages.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items) - q.head
}

// IsEmpty reports whether the queue holds no messages.
func (q *Queue[T]) IsEmpty() bool {
	return q.Len() == 0
}

// Cap returns the queue bound, or zero for an unbounded queue.
func (q *Queue[T]) Cap() int {
	return q.capacity
}

// Close tears the queue down. Queued messages are discarded and later sends
// fail with ErrClosed. Closing twice is a no-op.
func (q *Queue[T]) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.closed = true
	clear(q.items)
	q.items = q.items[:0]
	q.head = 0
}

// Closed reports whether the queue has been closed.
func (q *Queue[T]) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}
