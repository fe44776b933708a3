package funcs

// TableSize is the number of dispatch slots (function ids 0..254).
const TableSize = 255

// FirstBindableID is the first id assignable by Bind. Ids below it
// are reserved for the built-in operations.
const FirstBindableID = 4

// Reserved function ids of the built-in operations.
const (
	IDQueryInterface byte = iota
	IDPushArray
	IDSendResponse
	IDSendResponseCount
)

// Handler is a function bound into the dispatch table.
type Handler interface {
	Invoke(*Call)
}

// HandlerFunc is func type of Handler.
type HandlerFunc func(*Call)

// Invoke implements Handler.
func (f HandlerFunc) Invoke(c *Call) {
	f(c)
}

// FunctionTable maps one-byte function ids to handlers. Bind assigns
// ids strictly increasing from FirstBindableID; ids are never reused
// and bindings are never removed. The zero value is an empty table.
type FunctionTable struct {
	slots [TableSize]Handler
	next  int
}

// NextID returns the id the next successful Bind would assign. Only
// meaningful while !Full().
func (t *FunctionTable) NextID() byte {
	if t.next < FirstBindableID {
		return FirstBindableID
	}
	return byte(t.next)
}

// Full reports whether all bindable ids are consumed.
func (t *FunctionTable) Full() bool {
	return t.next >= TableSize
}

// Occupied reports whether a handler is bound at id.
func (t *FunctionTable) Occupied(id byte) bool {
	return int(id) < TableSize && t.slots[id] != nil
}

// Put installs a handler at a fixed id. It is used for the reserved
// built-in slots, not for Bind-assigned ids.
func (t *FunctionTable) Put(id byte, h Handler) {
	t.slots[id] = h
}

// Bind assigns the next free id to h. The id is consumed even on
// conflict: when the slot is already occupied the existing handler
// stays dispatchable, the returned id is unchanged and
// ErrFunctionConflict reports the fault. Binding is best-effort, not
// transactional.
func (t *FunctionTable) Bind(h Handler) (byte, error) {
	if t.next < FirstBindableID {
		t.next = FirstBindableID
	}
	if t.Full() {
		return 0, ErrTableFull
	}
	id := byte(t.next)
	t.next++
	if t.slots[id] != nil {
		return id, ErrFunctionConflict
	}
	t.slots[id] = h
	return id, nil
}

// Lookup returns the handler bound at id, nil for empty slots.
func (t *FunctionTable) Lookup(id byte) Handler {
	if int(id) >= TableSize {
		return nil
	}
	return t.slots[id]
}
