package comm

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

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
}

func TestFrameEncode(t *testing.T) {
	testCases := []struct {
		name   string
		frame  Frame
		expect []byte
	}{
		{"no data", Frame{Seq: FrameSeq(1)}, []byte{1, 0}},
		{"small data", Frame{Seq: FrameSeq(2), Data: []byte{7}}, []byte{2, 1, 7}},
		{"more data", Frame{Seq: FrameSeq(3), Data: []byte{1, 2, 3, 4, 5, 6, 7, 8}}, []byte{3, 8, 1, 2, 3, 4, 5, 6, 7, 8}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expect, tc.frame.Bytes())
			var buf bytes.Buffer
			n, err := tc.frame.WriteTo(&buf)
			require.NoError(t, err)
			require.Equal(t, tc.expect, buf.Bytes())
			require.Equal(t, len(tc.expect), n)
		})
	}
}
