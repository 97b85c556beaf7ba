package hostlink

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/knobbridge/pkg/telemetry"
)

func frameBytes(seq byte, m telemetry.Message) []byte {
	f := Frame{Seq: FrameSeq(seq), Message: m}
	return f.Bytes()
}

type parserTestStep struct {
	in     []byte
	frames []*Frame
	errs   []error
	final  SyncState
}

type parserTestBuilder struct {
	steps []parserTestStep
}

func parserSteps() *parserTestBuilder {
	return &parserTestBuilder{}
}

func (b *parserTestBuilder) feed(in ...byte) *parserTestBuilder {
	b.steps = append(b.steps, parserTestStep{in: in, final: SyncStateReady})
	return b
}

func (b *parserTestBuilder) frame(seq byte, m telemetry.Message) *parserTestBuilder {
	s := &b.steps[len(b.steps)-1]
	s.frames = append(s.frames, &Frame{Seq: FrameSeq(seq), Message: m})
	return b
}

func (b *parserTestBuilder) fails(errs ...error) *parserTestBuilder {
	s := &b.steps[len(b.steps)-1]
	s.errs = append(s.errs, errs...)
	return b
}

func (b *parserTestBuilder) ends(state SyncState) *parserTestBuilder {
	b.steps[len(b.steps)-1].final = state
	return b
}

func concat(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func TestParser(t *testing.T) {
	knobInc := telemetry.NewLocal(telemetry.KnobIncrement)
	identify := telemetry.NewLocal(telemetry.IdentifyLeaderFollower)
	canMsg := telemetry.NewCanBus(0x7e, []byte{FrameSync, FrameSync, 0, FrameSync})

	corrupted := frameBytes(3, knobInc)
	corrupted[5] ^= 0xff

	testCases := []struct {
		name  string
		steps []parserTestStep
	}{
		{
			name: "frames back to back",
			steps: parserSteps().
				feed(concat(frameBytes(1, knobInc), frameBytes(2, canMsg))...).
				frame(1, knobInc).frame(2, canMsg).
				steps,
		},
		{
			name: "leading sync bytes",
			steps: parserSteps().
				feed(concat([]byte{FrameSync, FrameSync}, frameBytes(1, knobInc))...).
				frame(1, knobInc).
				steps,
		},
		{
			name: "partial frame",
			steps: parserSteps().
				feed(frameBytes(1, knobInc)[:7]...).ends(SyncStateReady | SyncStateReceiving).
				feed(frameBytes(1, knobInc)[7:]...).frame(1, knobInc).
				steps,
		},
		{
			name: "garbage then resync",
			steps: parserSteps().
				feed(0x01, 0x02, 0x03).fails(ErrFrameLength).ends(SyncStateSyncing).
				feed(concat([]byte{FrameSync}, frameBytes(1, knobInc))...).frame(1, knobInc).
				steps,
		},
		{
			name: "crc mismatch",
			steps: parserSteps().
				feed(corrupted...).fails(ErrFrameCRC).
				feed(frameBytes(4, knobInc)...).frame(4, knobInc).
				steps,
		},
		{
			name: "invalid seq",
			steps: parserSteps().
				feed(16, 0xf3).fails(ErrFrameSeq).ends(SyncStateSyncing).
				steps,
		},
		{
			name: "missing trailer",
			steps: parserSteps().
				feed(frameBytes(1, knobInc)[:FrameSize-1]...).ends(SyncStateReady | SyncStateReceiving).
				feed(0x00).fails(ErrFrameTrailer).ends(SyncStateSyncing).
				steps,
		},
		{
			name: "duplicated frame",
			steps: parserSteps().
				feed(frameBytes(9, knobInc)...).frame(9, knobInc).
				feed(frameBytes(9, knobInc)...).fails(ErrFrameDuplicate).
				feed(frameBytes(10, knobInc)...).frame(10, knobInc).
				steps,
		},
		{
			name: "restarted sender reuses seq",
			steps: parserSteps().
				feed(frameBytes(42, knobInc)...).frame(42, knobInc).
				feed(frameBytes(42, identify)...).frame(42, identify).
				steps,
		},
		{
			name: "resync forgets last frame",
			steps: parserSteps().
				feed(frameBytes(42, identify)...).frame(42, identify).
				feed(0x01).fails(ErrFrameLength).ends(SyncStateSyncing).
				feed(concat([]byte{FrameSync}, frameBytes(42, identify))...).frame(42, identify).
				steps,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var parser Parser
			for n, s := range tc.steps {
				var frames []*Frame
				var errs []error
				var pr ParseResult
				for _, b := range s.in {
					pr = parser.Parse(b)
					if pr.Frame != nil {
						frames = append(frames, pr.Frame)
					}
					if pr.Err != nil {
						errs = append(errs, pr.Err)
					}
				}
				require.Equalf(t, s.frames, frames, "steps[%d] frames mismatch", n)
				require.Equalf(t, s.errs, errs, "steps[%d] errors mismatch", n)
				require.Equalf(t, s.final, pr.State, "steps[%d] final state mismatch", n)
			}
		})
	}
}

func TestSyncState(t *testing.T) {
	require.False(t, SyncStateSyncing.IsReady())
	require.False(t, SyncStateSyncing.IsReceiving())
	require.True(t, SyncStateReady.IsReady())
	require.False(t, SyncStateReady.IsReceiving())
	require.True(t, (SyncStateReady | SyncStateReceiving).IsReady())
	require.True(t, (SyncStateReady | SyncStateReceiving).IsReceiving())
}
