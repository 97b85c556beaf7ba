package canbus

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFrameValidate(t *testing.T) {
	testCases := []struct {
		name  string
		frame Frame
		err   error
	}{
		{"standard", Frame{ID: MaxStdID, Len: 8}, nil},
		{"standard id too large", Frame{ID: MaxStdID + 1}, ErrInvalidID},
		{"extended", Frame{ID: MaxExtID, Extended: true}, nil},
		{"extended id too large", Frame{ID: MaxExtID + 1, Extended: true}, ErrInvalidID},
		{"length", Frame{ID: 1, Len: 9}, ErrInvalidLen},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.err, tc.frame.Validate())
		})
	}
}

func TestFrameBinary(t *testing.T) {
	testCases := []struct {
		name    string
		frame   Frame
		encoded []byte
	}{
		{
			name:  "standard",
			frame: Frame{ID: 0x123, Len: 3, Data: [8]byte{1, 2, 3}},
			encoded: []byte{
				0x23, 0x01, 0x00, 0x00, 3, 0, 0, 0,
				1, 2, 3, 0, 0, 0, 0, 0,
			},
		},
		{
			name:  "extended",
			frame: Frame{ID: 0x12345, Extended: true, Len: 8, Data: [8]byte{1, 2, 3, 4, 5, 6, 7, 8}},
			encoded: []byte{
				0x45, 0x23, 0x01, 0x80, 8, 0, 0, 0,
				1, 2, 3, 4, 5, 6, 7, 8,
			},
		},
		{
			name:  "remote",
			frame: Frame{ID: 0x7ff, RTR: true},
			encoded: []byte{
				0xff, 0x07, 0x00, 0x40, 0, 0, 0, 0,
				0, 0, 0, 0, 0, 0, 0, 0,
			},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			encoded, err := tc.frame.MarshalBinary()
			require.NoError(t, err)
			require.Equal(t, tc.encoded, encoded)
			var f Frame
			require.NoError(t, f.UnmarshalBinary(tc.encoded))
			require.Equal(t, tc.frame, f)
		})
	}
}

func TestFrameUnmarshalErrors(t *testing.T) {
	var f Frame
	require.Error(t, f.UnmarshalBinary(make([]byte, 8)))
	require.Equal(t, ErrErrorFrame, f.UnmarshalBinary([]byte{
		0x04, 0x00, 0x00, 0x20, 8, 0, 0, 0,
		0, 0, 0, 0, 0, 0, 0, 0,
	}))
	require.Equal(t, ErrInvalidLen, f.UnmarshalBinary([]byte{
		0x01, 0x00, 0x00, 0x00, 9, 0, 0, 0,
		0, 0, 0, 0, 0, 0, 0, 0,
	}))
	_, err := Frame{ID: 0x800}.MarshalBinary()
	require.Equal(t, ErrInvalidID, err)
}

func TestFramePayload(t *testing.T) {
	f := Frame{ID: 1, Len: 2, Data: [8]byte{1, 2, 3}}
	require.Equal(t, []byte{1, 2}, f.Payload())
	require.Equal(t, "0x001 [2] 01 02", f.String())
	require.Equal(t, "0x001 RTR", Frame{ID: 1, RTR: true}.String())
}
