// Package canbus talks to a classical CAN bus and adapts frames to
// telemetry messages.
package canbus

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Frame is a classical CAN 2.0A/2.0B frame.
type Frame struct {
	ID       uint32
	Extended bool
	RTR      bool
	Len      uint8
	Data     [8]byte
}

// Identifier limits.
const (
	MaxStdID = 0x7FF
	MaxExtID = 0x1FFFFFFF
)

// FrameSize is the size of struct can_frame used by SocketCAN.
const FrameSize = 16

const (
	canEffFlag = 0x80000000
	canRtrFlag = 0x40000000
	canErrFlag = 0x20000000
)

// Frame errors.
var (
	ErrInvalidID  = errors.New("invalid CAN identifier")
	ErrInvalidLen = errors.New("invalid CAN data length")
	ErrErrorFrame = errors.New("CAN error frame")
)

// Validate checks the identifier against the frame format and the length.
func (f Frame) Validate() error {
	if f.Len > 8 {
		return ErrInvalidLen
	}
	if f.Extended && f.ID > MaxExtID || !f.Extended && f.ID > MaxStdID {
		return ErrInvalidID
	}
	return nil
}

// Payload returns the valid data bytes.
func (f Frame) Payload() []byte {
	n := f.Len
	if n > 8 {
		n = 8
	}
	return f.Data[:n]
}

// String implements fmt.Stringer.
func (f Frame) String() string {
	if f.RTR {
		return fmt.Sprintf("0x%03x RTR", f.ID)
	}
	return fmt.Sprintf("0x%03x [%d] % x", f.ID, f.Len, f.Payload())
}

// MarshalBinary encodes the frame as struct can_frame (little-endian).
func (f Frame) MarshalBinary() ([]byte, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	id := f.ID
	if f.Extended {
		id |= canEffFlag
	}
	if f.RTR {
		id |= canRtrFlag
	}
	buf := make([]byte, FrameSize)
	binary.LittleEndian.PutUint32(buf[0:4], id)
	buf[4] = f.Len
	copy(buf[8:], f.Data[:])
	return buf, nil
}

// UnmarshalBinary decodes struct can_frame. Error frames reported by
// the controller are rejected with ErrErrorFrame.
func (f *Frame) UnmarshalBinary(data []byte) error {
	if len(data) < FrameSize {
		return fmt.Errorf("need %d bytes, got %d", FrameSize, len(data))
	}
	id := binary.LittleEndian.Uint32(data[0:4])
	if id&canErrFlag != 0 {
		return ErrErrorFrame
	}
	f.Extended = id&canEffFlag != 0
	f.RTR = id&canRtrFlag != 0
	if f.Extended {
		f.ID = id & MaxExtID
	} else {
		f.ID = id & MaxStdID
	}
	f.Len = data[4]
	copy(f.Data[:], data[8:FrameSize])
	return f.Validate()
}
