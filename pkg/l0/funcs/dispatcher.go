package funcs

import (
	"github.com/golang/glog"
)

// Leading byte of outbound frame payloads.
const (
	// FrameResponse tags a response frame:
	// [FrameResponse][callerSeq][n][payload x n].
	FrameResponse byte = 0x7d
	// FrameError tags an error frame: [FrameError][kind].
	FrameError byte = 0x7e
	// FrameEvent tags a device-initiated frame not correlated to any
	// request.
	FrameEvent byte = 0x7f
)

// Transport delivers outbound frames to the host. Byte framing,
// checksums and delivery ordering belong to the transport; it must
// also serialize inbound delivery so one frame is fully executed
// before the next one starts.
type Transport interface {
	// SendFrame sends a complete outbound frame payload.
	SendFrame(data []byte) error
	// SendError sends an error frame tagged with the kind.
	SendError(kind ErrorKind) error
}

// Dispatcher owns the function table, interface registry, parameter
// stack and per-frame execution state. It interprets inbound frames
// as opcode streams and invokes bound handlers. A Dispatcher is not
// reentrant: frames must be delivered one at a time.
type Dispatcher struct {
	transport Transport

	table    FunctionTable
	registry InterfaceRegistry
	stack    ParamStack

	// transient, valid only while a frame executes
	frame Frame
	seq   byte
	call  Call

	respBuf [3 + StackDepth]byte
}

// NewDispatcher creates a Dispatcher with the built-in operations
// installed in the reserved slots.
func NewDispatcher(t Transport) *Dispatcher {
	d := &Dispatcher{transport: t}
	d.call.d = d
	d.table.Put(IDQueryInterface, HandlerFunc(func(c *Call) { c.d.queryInterface() }))
	d.table.Put(IDPushArray, HandlerFunc(func(c *Call) { c.d.pushArray() }))
	d.table.Put(IDSendResponse, HandlerFunc(func(c *Call) { c.d.sendResponse() }))
	d.table.Put(IDSendResponseCount, HandlerFunc(func(c *Call) { c.d.sendResponseCount() }))
	return d
}

// SetTransport replaces the transport. Only for wiring during
// initialization, before any frame is processed.
func (d *Dispatcher) SetTransport(t Transport) {
	d.transport = t
}

// Stack exposes the parameter stack for local use during
// initialization and tests.
func (d *Dispatcher) Stack() *ParamStack {
	return &d.stack
}

// Table exposes the function table for read-only queries.
func (d *Dispatcher) Table() *FunctionTable {
	return &d.table
}

// Registry exposes the interface registry for read-only queries.
func (d *Dispatcher) Registry() *InterfaceRegistry {
	return &d.registry
}

// Bind registers the interface if unseen and assigns the next free
// function id to h. On conflict the id is still consumed, the
// existing handler stays dispatchable and the error reports the
// fault. Errors are also signaled through the transport when one is
// attached, so observing hosts see bind faults too.
func (d *Dispatcher) Bind(ifc InterfaceID, h Handler) (byte, error) {
	if d.table.Full() {
		d.reportErr(ErrTableFull)
		return 0, ErrTableFull
	}
	if _, err := d.registry.Register(ifc, d.table.NextID()); err != nil {
		d.reportErr(err)
		return 0, err
	}
	id, err := d.table.Bind(h)
	if err != nil {
		d.reportErr(err)
	}
	return id, err
}

// BindNamed is a convenience form of Bind taking the interface id as
// a string. It panics when the id is not exactly 5 characters, which
// is a wiring mistake rather than a runtime condition.
func (d *Dispatcher) BindNamed(ifc string, h Handler) (byte, error) {
	id, ok := InterfaceIDOf(ifc)
	if !ok {
		panic("interface id must be 5 characters: " + ifc)
	}
	return d.Bind(id, h)
}

// Execute runs one inbound frame to completion: each byte at the
// cursor selects a dispatch slot, and handlers may consume further
// operand bytes through the shared cursor before the loop resumes.
func (d *Dispatcher) Execute(seq byte, frame []byte) {
	if glog.V(3) {
		glog.Infof("EXEC seq=%d len=%d", seq, len(frame))
	}
	d.frame.reset(frame)
	d.seq = seq
	for {
		id, ok := d.frame.Next()
		if !ok {
			break
		}
		d.dispatch(id)
	}
	d.frame.reset(nil)
}

func (d *Dispatcher) dispatch(id byte) {
	h := d.table.Lookup(id)
	if h == nil {
		d.report(KindFunctionNotFound)
		return
	}
	h.Invoke(&d.call)
}

func (d *Dispatcher) report(kind ErrorKind) {
	glog.V(2).Infof("ERR %v", kind)
	if d.transport != nil {
		if err := d.transport.SendError(kind); err != nil {
			glog.Warningf("send error frame: %v", err)
		}
	}
}

func (d *Dispatcher) reportErr(err error) {
	if de, ok := err.(*DispatchError); ok {
		d.report(de.Kind)
	}
}

func (d *Dispatcher) push(b int8) bool {
	if !d.stack.Push(b) {
		d.report(KindStackOverflow)
		return false
	}
	return true
}

func (d *Dispatcher) pop() (int8, bool) {
	b, ok := d.stack.Pop()
	if !ok {
		d.report(KindStackUnderflow)
	}
	return b, ok
}

// pushArray consumes a length byte L and the following L operand
// bytes, pushing them reversed so that L subsequent pops yield them
// in original left-to-right order.
func (d *Dispatcher) pushArray() {
	length, ok := d.frame.Next()
	if !ok {
		d.report(KindFrameTooSmall)
		return
	}
	data, ok := d.frame.Take(int(length))
	if !ok {
		// Operand exceeds the frame; drop the rest of the frame so
		// the operand region is not reinterpreted as opcodes.
		d.report(KindFrameTooSmall)
		d.frame.SkipToEnd()
		return
	}
	for i := int(length) - 1; i >= 0; i-- {
		d.push(int8(data[i]))
	}
}

// sendResponseCount pops a count n, then n payload bytes in pop
// order, and sends them as one response frame.
func (d *Dispatcher) sendResponseCount() {
	count, ok := d.pop()
	if !ok {
		return
	}
	n := int(count)
	if n < 0 {
		n = 0
	}
	buf := d.respBuf[:3+n]
	buf[0] = FrameResponse
	buf[1] = d.seq
	buf[2] = byte(count)
	for i := 0; i < n; i++ {
		v, ok := d.pop()
		if !ok {
			return
		}
		buf[3+i] = byte(v)
	}
	if d.transport != nil {
		if err := d.transport.SendFrame(buf); err != nil {
			glog.Warningf("send response frame: %v", err)
		}
	}
}

// sendResponse sends a one-byte response already on the stack.
func (d *Dispatcher) sendResponse() {
	if !d.push(1) {
		return
	}
	d.sendResponseCount()
}

// queryInterface answers discovery (function id 0): for every
// registered interface, in registration order, push the identifier
// reversed then its start id; finally push the total payload length
// and emit via sendResponseCount.
func (d *Dispatcher) queryInterface() {
	records := d.registry.Records()
	for _, rec := range records {
		for i := InterfaceIDLen - 1; i >= 0; i-- {
			d.push(int8(rec.ID[i]))
		}
		d.push(int8(rec.Start))
	}
	d.push(int8((InterfaceIDLen + 1) * len(records)))
	d.sendResponseCount()
}
