package hostlink

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/knobbridge/pkg/telemetry"
)

func TestCRC16(t *testing.T) {
	require.Equal(t, uint16(0xFFFF), CRC16(nil))
	require.Equal(t, uint16(0x6F91), CRC16([]byte("123456789")))
}

func TestFrameSeq(t *testing.T) {
	for s := byte(0xff); s >= byte(0xf0); s-- {
		require.False(t, FrameSeq(s).IsValid())
		require.Equal(t, FrameSeq(1), FrameSeq(s).Next())
	}
	for s := byte(1); s < byte(0xf0); s++ {
		require.True(t, FrameSeq(s).IsValid())
		if s+1 < 0xf0 {
			require.Equal(t, FrameSeq(s+1), FrameSeq(s).Next())
		} else {
			require.Equal(t, FrameSeq(1), FrameSeq(s).Next())
		}
	}
	require.False(t, FrameSeq(0).IsValid())
	require.Equal(t, FrameSeq(1), FrameSeq(0).Next())
	require.True(t, NewFrameSeq().IsValid())
}

func TestFrame(t *testing.T) {
	testCases := []struct {
		name   string
		frame  Frame
		expect []byte
	}{
		{
			name:  "local event",
			frame: Frame{Seq: 1, Message: telemetry.NewLocal(telemetry.KnobIncrement)},
			expect: []byte{
				16, 1,
				0x02, 0x03, 0x00, 0, 0, 0, 0, 0, 0, 0, 0,
				0x30, 0xda, FrameSync,
			},
		},
		{
			name:  "can message",
			frame: Frame{Seq: 2, Message: telemetry.NewCanBus(0x123, []byte{1, 2, 3, 4, 5, 6, 7, 8})},
			expect: []byte{
				16, 2,
				0x01, 0x23, 0x01, 1, 2, 3, 4, 5, 6, 7, 8,
				0x46, 0x68, FrameSync,
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expect, tc.frame.Bytes())
			require.Len(t, tc.expect, FrameSize)
			var buf bytes.Buffer
			n, err := tc.frame.WriteTo(&buf)
			require.NoError(t, err)
			require.Equal(t, tc.expect, buf.Bytes())
			require.Equal(t, int64(FrameSize), n)
		})
	}
}
