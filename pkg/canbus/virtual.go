package canbus

import (
	"sync"
	"time"
)

// DefaultVirtualSize is the default depth of the Virtual queues.
const DefaultVirtualSize = 64

// Virtual is an in-memory Bus. Frames injected with Deliver are
// received by TryReceive, frames sent appear on Transmitted.
// With nobody draining Transmitted, Send times out like a bus
// without any other node to acknowledge.
type Virtual struct {
	rx chan Frame
	tx chan Frame

	closeOnce sync.Once
	closed    chan struct{}
}

// NewVirtual creates a Virtual bus. A non-positive size selects DefaultVirtualSize.
func NewVirtual(size int) *Virtual {
	if size <= 0 {
		size = DefaultVirtualSize
	}
	return &Virtual{
		rx:     make(chan Frame, size),
		tx:     make(chan Frame, size),
		closed: make(chan struct{}),
	}
}

// Deliver puts a frame on the bus as if sent by another node.
// It returns false if the receive queue is full or the bus is closed.
func (v *Virtual) Deliver(f Frame) bool {
	select {
	case <-v.closed:
		return false
	default:
	}
	select {
	case v.rx <- f:
		return true
	default:
		return false
	}
}

// Transmitted returns the frames sent on the bus.
func (v *Virtual) Transmitted() <-chan Frame {
	return v.tx
}

// Send implements Bus.
func (v *Virtual) Send(f Frame, timeout time.Duration) error {
	if err := f.Validate(); err != nil {
		return err
	}
	select {
	case <-v.closed:
		return ErrClosed
	case v.tx <- f:
		return nil
	default:
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-v.closed:
		return ErrClosed
	case v.tx <- f:
		return nil
	case <-timer.C:
		return ErrTimeout
	}
}

// TryReceive implements Bus.
func (v *Virtual) TryReceive() (Frame, bool, error) {
	select {
	case f := <-v.rx:
		return f, true, nil
	default:
	}
	select {
	case <-v.closed:
		return Frame{}, false, ErrClosed
	default:
		return Frame{}, false, nil
	}
}

// Close implements Bus.
func (v *Virtual) Close() error {
	v.closeOnce.Do(func() { close(v.closed) })
	return nil
}
