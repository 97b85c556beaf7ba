package hostlink

import (
	"context"
	"io"

	"github.com/golang/glog"

	fx "github.com/robotalks/knobbridge/pkg/framework"
)

// RawWriter writes unframed bytes back to the host.
type RawWriter interface {
	WriteRaw([]byte) error
}

// Ingress is the receiving side of the port. It runs in its own
// goroutine and only ever touches the Queue (and the echo writer).
type Ingress struct {
	Reader io.Reader
	Queue  *Queue
	// Echo, when set, retransmits every received byte immediately.
	// It's a loopback diagnostic independent of message routing.
	Echo RawWriter
	// BufferSize is the size of a single read, 64 if not set.
	BufferSize int
}

// Receive takes bytes delivered by the port. Bytes that don't fit
// in the Queue are dropped.
func (i *Ingress) Receive(p []byte) {
	for _, b := range p {
		i.Queue.Push(b)
	}
	if i.Echo != nil {
		if err := i.Echo.WriteRaw(p); err != nil {
			glog.Warningf("host link: echo error: %v", err)
		}
	}
}

// Name implements Named.
func (i *Ingress) Name() string {
	return "host-ingress"
}

// Run implements Runnable. It returns when the reader fails; if the
// reader is an io.Closer it is closed to unblock Read on cancellation.
func (i *Ingress) Run(ctx context.Context) error {
	size := i.BufferSize
	if size <= 0 {
		size = 64
	}
	buf := make([]byte, size)
	readLoop := func() error {
		for {
			n, err := i.Reader.Read(buf)
			if n > 0 {
				i.Receive(buf[:n])
			}
			if err != nil {
				return err
			}
		}
	}
	if closer, ok := i.Reader.(io.Closer); ok {
		return fx.RunWithContextCloser(ctx, closer, readLoop)
	}
	return fx.RunWithContext(ctx, readLoop)
}
