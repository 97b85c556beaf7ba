package canbus

import (
	"errors"
	"fmt"
	"time"
)

// Bus errors.
var (
	ErrTimeout = errors.New("CAN transmit timeout")
	ErrClosed  = errors.New("CAN bus closed")
)

// Bus is a CAN controller. It's used from a single goroutine.
type Bus interface {
	// Send queues a frame for transmission, waiting at most timeout
	// for room in the controller.
	Send(f Frame, timeout time.Duration) error
	// TryReceive returns a received frame without waiting. An error
	// frame consumed from the controller is reported as ErrErrorFrame.
	TryReceive() (Frame, bool, error)
	Close() error
}

// VirtualInterface is the interface name which selects the in-memory bus.
const VirtualInterface = "virtual"

// Open opens the bus on a network interface, or a Virtual bus.
// Errors are fatal at startup.
func Open(iface string) (Bus, error) {
	if iface == VirtualInterface {
		return NewVirtual(0), nil
	}
	bus, err := OpenSocketCAN(iface)
	if err != nil {
		return nil, fmt.Errorf("open CAN interface %s: %w", iface, err)
	}
	return bus, nil
}
