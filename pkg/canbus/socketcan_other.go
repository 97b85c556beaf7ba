//go:build !linux

package canbus

import (
	"errors"
	"time"
)

// SocketCAN is only available on linux.
type SocketCAN struct{}

var errNotSupported = errors.New("SocketCAN is only supported on linux")

// OpenSocketCAN always fails on this platform.
func OpenSocketCAN(iface string) (*SocketCAN, error) {
	return nil, errNotSupported
}

// Send implements Bus.
func (s *SocketCAN) Send(Frame, time.Duration) error { return errNotSupported }

// TryReceive implements Bus.
func (s *SocketCAN) TryReceive() (Frame, bool, error) { return Frame{}, false, errNotSupported }

// Close implements Bus.
func (s *SocketCAN) Close() error { return nil }
