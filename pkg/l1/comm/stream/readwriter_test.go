package stream

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReadWriterRoundtrip(t *testing.T) {
	var buf bytes.Buffer
	rw := New(&buf)
	require.NoError(t, rw.WriteFrame([]byte{1, 2, 3}))
	require.Equal(t, []byte{3, 0, 0, 0, 1, 2, 3}, buf.Bytes())
	frame, err := rw.ReadFrame()
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2, 3}, frame)
}

func TestReadWriterEmptyFrame(t *testing.T) {
	var buf bytes.Buffer
	rw := New(&buf)
	require.NoError(t, rw.WriteFrame(nil))
	frame, err := rw.ReadFrame()
	require.NoError(t, err)
	require.Empty(t, frame)
}

func TestReadWriterShortRead(t *testing.T) {
	buf := bytes.NewBuffer([]byte{5, 0, 0, 0, 1, 2})
	rw := New(buf)
	_, err := rw.ReadFrame()
	require.Equal(t, io.ErrUnexpectedEOF, err)
}
