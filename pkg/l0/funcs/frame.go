package funcs

// Frame is the cursor over one inbound frame. The dispatch loop reads
// opcode bytes from it; opcode handlers receive the same cursor to
// consume trailing operand bytes, and the loop resumes at whatever
// position a handler leaves.
type Frame struct {
	data []byte
	pos  int
}

// NewFrame wraps raw frame bytes with a cursor at the start.
func NewFrame(data []byte) *Frame {
	return &Frame{data: data}
}

func (f *Frame) reset(data []byte) {
	f.data, f.pos = data, 0
}

// Next consumes and returns the byte at the cursor. ok is false at
// the frame top.
func (f *Frame) Next() (b byte, ok bool) {
	if f.pos == len(f.data) {
		return 0, false
	}
	b = f.data[f.pos]
	f.pos++
	return b, true
}

// Take consumes the next n bytes. ok is false, and the cursor does
// not move, when fewer than n bytes remain.
func (f *Frame) Take(n int) (b []byte, ok bool) {
	if n < 0 || n > len(f.data)-f.pos {
		return nil, false
	}
	b = f.data[f.pos : f.pos+n]
	f.pos += n
	return b, true
}

// Remaining returns the number of bytes before the frame top.
func (f *Frame) Remaining() int {
	return len(f.data) - f.pos
}

// Done reports whether the cursor reached the frame top.
func (f *Frame) Done() bool {
	return f.pos == len(f.data)
}

// SkipToEnd moves the cursor to the frame top, terminating the
// dispatch loop after the current handler returns.
func (f *Frame) SkipToEnd() {
	f.pos = len(f.data)
}
