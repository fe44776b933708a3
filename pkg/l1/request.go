package l1

import (
	"errors"

	"github.com/microbots/reflex.go/pkg/l0/funcs"
)

// MaxRequestLen is the maximum opcode frame length a transport is
// guaranteed to carry (one length byte with the high bit reserved).
const MaxRequestLen = 0x7f

// ErrRequestTooLong indicates the built frame exceeds MaxRequestLen.
var ErrRequestTooLong = errors.New("request too long")

// Request builds an opcode frame for remote invocation. Methods
// append opcodes and operands; the zero value is an empty request.
type Request struct {
	buf []byte
}

// NewRequest creates an empty Request.
func NewRequest() *Request {
	return &Request{}
}

// Invoke appends a bare function id.
func (r *Request) Invoke(id byte) *Request {
	r.buf = append(r.buf, id)
	return r
}

// PushArray appends the array-push opcode with its length byte and
// data, leaving the bytes on the device parameter stack so that pops
// yield them in left-to-right order.
func (r *Request) PushArray(data ...byte) *Request {
	r.buf = append(r.buf, funcs.IDPushArray, byte(len(data)))
	r.buf = append(r.buf, data...)
	return r
}

// Push appends an array-push of one byte.
func (r *Request) Push(b byte) *Request {
	return r.PushArray(b)
}

// Push16 appends an array-push leaving a 16-bit value on the device
// stack: low byte first in the operand so the high byte sits below
// the low byte, as Pop16 expects.
func (r *Request) Push16(w int16) *Request {
	return r.PushArray(byte(w), byte(w>>8))
}

// Raw appends opcode bytes verbatim.
func (r *Request) Raw(data ...byte) *Request {
	r.buf = append(r.buf, data...)
	return r
}

// Respond appends the one-byte response opcode.
func (r *Request) Respond() *Request {
	return r.Invoke(funcs.IDSendResponse)
}

// RespondCount appends the counted response opcode.
func (r *Request) RespondCount() *Request {
	return r.Invoke(funcs.IDSendResponseCount)
}

// QueryInterface appends the discovery opcode.
func (r *Request) QueryInterface() *Request {
	return r.Invoke(funcs.IDQueryInterface)
}

// Len returns the current frame length.
func (r *Request) Len() int {
	return len(r.buf)
}

// Bytes returns the built opcode frame.
func (r *Request) Bytes() ([]byte, error) {
	if len(r.buf) > MaxRequestLen {
		return nil, ErrRequestTooLong
	}
	return r.buf, nil
}
