package l1

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/microbots/reflex.go/pkg/l0/funcs"
)

func TestRequestBuild(t *testing.T) {
	b, err := NewRequest().
		PushArray(10, 20).
		Invoke(42).
		Respond().
		Bytes()
	require.NoError(t, err)
	require.Equal(t, []byte{funcs.IDPushArray, 2, 10, 20, 42, funcs.IDSendResponse}, b)

	b, err = NewRequest().QueryInterface().Bytes()
	require.NoError(t, err)
	require.Equal(t, []byte{funcs.IDQueryInterface}, b)
}

func TestRequestPush16(t *testing.T) {
	b, err := NewRequest().Push16(0x1234).Bytes()
	require.NoError(t, err)
	// low byte first in the operand: reversed pushing leaves the low
	// byte on top of the device stack for Pop16
	require.Equal(t, []byte{funcs.IDPushArray, 2, 0x34, 0x12}, b)
}

func TestRequestTooLong(t *testing.T) {
	r := NewRequest()
	for i := 0; i <= MaxRequestLen; i++ {
		r.Invoke(4)
	}
	_, err := r.Bytes()
	require.Equal(t, ErrRequestTooLong, err)
}
