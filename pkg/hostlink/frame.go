package hostlink

import (
	"io"
	"time"

	"github.com/robotalks/knobbridge/pkg/telemetry"
)

// Frame layout constants.
const (
	FrameHeaderSize  = 2
	FrameTrailerSize = 3
	FrameSize        = FrameHeaderSize + telemetry.WireSize + FrameTrailerSize
	FrameSync        = 0x7E
)

// FrameSeq defines the type of frame sequence number.
type FrameSeq byte

// NewFrameSeq creates a random frame sequence number.
func NewFrameSeq() FrameSeq {
	return FrameSeq(byte(time.Now().UnixNano())).Next()
}

// Next calculates the next sequence number.
func (s FrameSeq) Next() FrameSeq {
	n := byte(s) + 1
	if n == 0 || n >= 0xf0 {
		n = 1
	}
	return FrameSeq(n)
}

// IsValid checks if it's a valid sequence number.
func (s FrameSeq) IsValid() bool {
	n := byte(s)
	return n > 0 && n < 0xf0
}

// Frame is one message on the host link.
type Frame struct {
	Seq     FrameSeq
	Message telemetry.Message
}

// Bytes returns encoded bytes for sending.
func (f *Frame) Bytes() []byte {
	b := make([]byte, 0, FrameSize)
	b = append(b, FrameSize, byte(f.Seq))
	b = f.Message.AppendBinary(b)
	crc := CRC16(b)
	return append(b, byte(crc>>8), byte(crc), FrameSync)
}

// WriteTo writes encoded bytes in a single Write call.
func (f *Frame) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(f.Bytes())
	return int64(n), err
}
