package hostlink

import "sync/atomic"

// DefaultQueueSize is the default capacity of the receive queue.
const DefaultQueueSize = 1024

// Queue is a bounded FIFO of bytes between a single producer (the port
// reader) and a single consumer (the Link). Neither side ever blocks:
// Push drops the byte when the queue is full, Pull reports empty.
type Queue struct {
	ch      chan byte
	dropped atomic.Uint64
}

// NewQueue creates a Queue. A non-positive capacity selects DefaultQueueSize.
func NewQueue(capacity int) *Queue {
	if capacity <= 0 {
		capacity = DefaultQueueSize
	}
	return &Queue{ch: make(chan byte, capacity)}
}

// Push appends a byte. It returns false if the queue is full and
// the byte was dropped.
func (q *Queue) Push(b byte) bool {
	select {
	case q.ch <- b:
		return true
	default:
		q.dropped.Add(1)
		return false
	}
}

// Pull removes the oldest byte. It returns false if the queue is empty.
func (q *Queue) Pull() (byte, bool) {
	select {
	case b := <-q.ch:
		return b, true
	default:
		return 0, false
	}
}

// Len returns the number of queued bytes.
func (q *Queue) Len() int {
	return len(q.ch)
}

// Cap returns the capacity.
func (q *Queue) Cap() int {
	return cap(q.ch)
}

// Dropped returns the number of bytes dropped because the queue was full.
func (q *Queue) Dropped() uint64 {
	return q.dropped.Load()
}
