package telemetry

import (
	"encoding/binary"
	"errors"
)

// WireSize is the encoded size of a Message:
// 1 byte domain, 2 bytes id (little-endian), 8 bytes payload.
const WireSize = 1 + 2 + PayloadSize

// ErrInvalidSize indicates the encoded message has the wrong length.
var ErrInvalidSize = errors.New("invalid message size")

// AppendBinary appends the wire encoding to b.
func (m Message) AppendBinary(b []byte) []byte {
	b = append(b, byte(m.Domain), byte(m.ID), byte(m.ID>>8))
	return append(b, m.Data[:]...)
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (m Message) MarshalBinary() ([]byte, error) {
	return m.AppendBinary(make([]byte, 0, WireSize)), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (m *Message) UnmarshalBinary(data []byte) error {
	if len(data) != WireSize {
		return ErrInvalidSize
	}
	m.Domain = Domain(data[0])
	m.ID = binary.LittleEndian.Uint16(data[1:3])
	copy(m.Data[:], data[3:])
	return nil
}
