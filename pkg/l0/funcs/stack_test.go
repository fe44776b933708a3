package funcs

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStackRoundtrip(t *testing.T) {
	var s ParamStack
	for length := 0; length <= StackDepth; length++ {
		seq := make([]int8, length)
		for i := range seq {
			seq[i] = int8(i*7 + length)
			require.True(t, s.Push(seq[i]))
		}
		require.Equal(t, length, s.Depth())
		for i := length - 1; i >= 0; i-- {
			b, ok := s.Pop()
			require.True(t, ok)
			require.Equal(t, seq[i], b)
		}
		require.Equal(t, 0, s.Depth())
	}
}

func TestStackOverflow(t *testing.T) {
	var s ParamStack
	for i := 0; i < StackDepth; i++ {
		require.True(t, s.Push(int8(i)))
	}
	require.False(t, s.Push(99))
	require.Equal(t, StackDepth, s.Depth())
	b, ok := s.Pop()
	require.True(t, ok)
	// the last pushed value, 128, wraps to -128 as a signed byte
	want := StackDepth - 1
	require.Equal(t, int8(want), b)
}

func TestStackUnderflow(t *testing.T) {
	var s ParamStack
	b, ok := s.Pop()
	require.False(t, ok)
	require.Equal(t, int8(-1), b)
	require.Equal(t, 0, s.Depth())
}

func TestStack16Roundtrip(t *testing.T) {
	var s ParamStack
	values := []int16{0, 1, -1, 127, 128, -128, 255, 256, 0x1234, -0x1234, 32767, -32768}
	for v := int16(-32768); ; v += 251 {
		values = append(values, v)
		if v > 32500 {
			break
		}
	}
	for _, v := range values {
		require.True(t, s.Push16(v))
		w, ok := s.Pop16()
		require.True(t, ok)
		require.Equalf(t, v, w, "roundtrip of %d", v)
		require.Equal(t, 0, s.Depth())
	}
}

func TestStack16ByteOrder(t *testing.T) {
	var s ParamStack
	require.True(t, s.Push16(0x1234))
	// low byte is on top
	lo, ok := s.Pop()
	require.True(t, ok)
	require.Equal(t, int8(0x34), lo)
	hi, ok := s.Pop()
	require.True(t, ok)
	require.Equal(t, int8(0x12), hi)
}

func TestStack16Bounds(t *testing.T) {
	var s ParamStack
	for i := 0; i < StackDepth-1; i++ {
		require.True(t, s.Push(0))
	}
	// one free slot is not enough for a 16-bit push
	require.False(t, s.Push16(0x0102))
	require.Equal(t, StackDepth-1, s.Depth())

	s = ParamStack{}
	require.True(t, s.Push(5))
	// one byte is not enough for a 16-bit pop
	w, ok := s.Pop16()
	require.False(t, ok)
	require.Equal(t, int16(-1), w)
	require.Equal(t, 1, s.Depth())
}
