package hostlink

import "github.com/robotalks/knobbridge/pkg/telemetry"

// SyncState indicates the state of the byte stream.
type SyncState int

const (
	// SyncStateSyncing means the parser is hunting for a sync byte.
	SyncStateSyncing SyncState = 0
	// SyncStateReady means the stream is synchronized and ready for frames.
	SyncStateReady SyncState = 0x01
	// SyncStateReceiving means a frame is partially received.
	SyncStateReceiving SyncState = 0x02
)

// IsReady indicates if the stream is synchronized.
func (s SyncState) IsReady() bool {
	return s&SyncStateReady != 0
}

// IsReceiving indicates if it's in the middle of a frame.
func (s SyncState) IsReceiving() bool {
	return s&SyncStateReceiving != 0
}

// ParseResult indicates the result after one parsing step.
type ParseResult struct {
	State SyncState
	Frame *Frame
	Err   error
}

type parseState int

const (
	stateLen     parseState = iota // waiting for frame length
	stateSync                      // hunting for sync byte
	stateSeq                       // waiting for frame seq
	stateBody                      // waiting for message bytes
	stateCRCHi                     // waiting for crc high byte
	stateCRCLo                     // waiting for crc low byte
	stateTrailer                   // waiting for trailing sync byte
)

// Parser parses bytes received. The zero value is ready for use and
// assumes the stream starts at a frame boundary.
type Parser struct {
	state   parseState
	buf     [FrameHeaderSize + telemetry.WireSize]byte
	recvLen int
	crc     uint16

	// last accepted frame, without crc and trailer
	last     [FrameHeaderSize + telemetry.WireSize]byte
	haveLast bool
}

// State gets the current sync state.
func (p *Parser) State() SyncState {
	switch p.state {
	case stateSync:
		return SyncStateSyncing
	case stateLen:
		return SyncStateReady
	}
	return SyncStateReady | SyncStateReceiving
}

// Parse consumes one byte.
func (p *Parser) Parse(b byte) (pr ParseResult) {
	pr.Frame, pr.Err = p.parseByte(b)
	pr.State = p.State()
	return
}

func (p *Parser) parseByte(b byte) (*Frame, error) {
	switch p.state {
	case stateSync:
		if b == FrameSync {
			p.state = stateLen
		}
	case stateLen:
		if b == FrameSync {
			return nil, nil
		}
		if b != FrameSize {
			return p.resync(b, ErrFrameLength)
		}
		p.buf[0], p.recvLen = b, 1
		p.state = stateSeq
	case stateSeq:
		if !FrameSeq(b).IsValid() {
			return p.resync(b, ErrFrameSeq)
		}
		p.buf[1], p.recvLen = b, 2
		p.state = stateBody
	case stateBody:
		p.buf[p.recvLen] = b
		p.recvLen++
		if p.recvLen >= len(p.buf) {
			p.state = stateCRCHi
		}
	case stateCRCHi:
		p.crc = uint16(b) << 8
		p.state = stateCRCLo
	case stateCRCLo:
		p.crc |= uint16(b)
		if p.crc != CRC16(p.buf[:]) {
			return p.resync(b, ErrFrameCRC)
		}
		p.state = stateTrailer
	case stateTrailer:
		if b != FrameSync {
			return p.resync(b, ErrFrameTrailer)
		}
		return p.frameReady()
	}
	return nil, nil
}

// resync drops the partial frame. The offending byte may itself
// be the sync byte which starts the next frame. The stream is broken
// here, so the next frame is never taken for a duplicate.
func (p *Parser) resync(b byte, err error) (*Frame, error) {
	if b == FrameSync {
		p.state = stateLen
	} else {
		p.state = stateSync
	}
	p.recvLen = 0
	p.haveLast = false
	return nil, err
}

// frameReady accepts the buffered frame. A frame is a duplicate only
// if both seq and message repeat the last one: a restarted sender may
// reuse the seq for a different message.
func (p *Parser) frameReady() (*Frame, error) {
	p.state, p.recvLen = stateLen, 0
	if p.haveLast && p.buf == p.last {
		return nil, ErrFrameDuplicate
	}
	f := &Frame{Seq: FrameSeq(p.buf[1])}
	if err := f.Message.UnmarshalBinary(p.buf[FrameHeaderSize:]); err != nil {
		p.haveLast = false
		return nil, err
	}
	p.last, p.haveLast = p.buf, true
	return f, nil
}
