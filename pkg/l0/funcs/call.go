package funcs

// Call is the invocation context handed to handlers: controlled
// access to the parameter stack, the frame cursor and response
// emission. A Call is only valid for the duration of the invocation.
type Call struct {
	d *Dispatcher
}

// Sequence returns the caller sequence echoed in response frames.
func (c *Call) Sequence() byte {
	return c.d.seq
}

// Frame returns the cursor over the executing frame. Handlers that
// consume operand bytes advance it before returning.
func (c *Call) Frame() *Frame {
	return &c.d.frame
}

// Push pushes one byte, reporting StackOverflow to the host when the
// stack is at capacity.
func (c *Call) Push(b int8) bool {
	return c.d.push(b)
}

// Pop pops one byte, reporting StackUnderflow to the host and
// returning the -1 sentinel when the stack is empty.
func (c *Call) Pop() int8 {
	b, _ := c.d.pop()
	return b
}

// Push16 pushes a 16-bit value, reporting StackOverflow unless two
// slots are free.
func (c *Call) Push16(w int16) bool {
	if !c.d.stack.Push16(w) {
		c.d.report(KindStackOverflow)
		return false
	}
	return true
}

// Pop16 pops a 16-bit value, reporting StackUnderflow and returning
// the -1 sentinel unless two bytes are present.
func (c *Call) Pop16() int16 {
	w, ok := c.d.stack.Pop16()
	if !ok {
		c.d.report(KindStackUnderflow)
	}
	return w
}

// Depth returns the current parameter stack depth.
func (c *Call) Depth() int {
	return c.d.stack.Depth()
}

// SendResponse sends a one-byte response from the top of the stack.
func (c *Call) SendResponse() {
	c.d.sendResponse()
}

// SendResponseCount pops a count then that many payload bytes and
// sends them as one response frame.
func (c *Call) SendResponseCount() {
	c.d.sendResponseCount()
}

// Error reports a frame-scoped error to the host.
func (c *Call) Error(kind ErrorKind) {
	c.d.report(kind)
}
