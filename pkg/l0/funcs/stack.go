package funcs

// StackDepth is the capacity of the parameter stack in bytes.
const StackDepth = 129

// ParamStack is a fixed-capacity LIFO byte store used to pass
// arguments into and results out of invoked functions. Values are
// signed bytes; the only other wire width is 16-bit, stored as two
// bytes. The zero value is an empty stack ready for use.
type ParamStack struct {
	data [StackDepth]int8
	top  int
}

// Depth returns the number of bytes currently on the stack.
func (s *ParamStack) Depth() int {
	return s.top
}

// Push adds one byte on top of the stack. It reports false when the
// stack is at capacity, leaving it unchanged.
func (s *ParamStack) Push(b int8) bool {
	if s.top == StackDepth {
		return false
	}
	s.data[s.top] = b
	s.top++
	return true
}

// Pop removes and returns the top byte. When the stack is empty it
// reports false and returns the -1 sentinel without mutating state.
func (s *ParamStack) Pop() (int8, bool) {
	if s.top == 0 {
		return -1, false
	}
	s.top--
	return s.data[s.top], true
}

// Push16 pushes a 16-bit value as two bytes, high byte first. It
// reports false and leaves the stack unchanged unless two slots are
// free.
func (s *ParamStack) Push16(w int16) bool {
	if s.top > StackDepth-2 {
		return false
	}
	s.data[s.top] = int8(w >> 8)
	s.data[s.top+1] = int8(w)
	s.top += 2
	return true
}

// Pop16 pops the low byte then the high byte of a 16-bit value and
// reconstructs it. It reports false and returns the -1 sentinel
// unless two bytes are present.
func (s *ParamStack) Pop16() (int16, bool) {
	if s.top < 2 {
		return -1, false
	}
	lo, hi := s.data[s.top-1], s.data[s.top-2]
	s.top -= 2
	return int16(hi)<<8 | int16(uint8(lo)), true
}
