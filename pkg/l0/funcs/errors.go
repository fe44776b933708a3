package funcs

import (
	"fmt"
)

// ErrorKind identifies a frame-scoped dispatch error reported to the
// host through the transport.
type ErrorKind byte

// Dispatch error kinds.
const (
	// KindFunctionConflict indicates Bind targeted an occupied slot.
	KindFunctionConflict ErrorKind = iota + 1
	// KindFunctionNotFound indicates dispatch of an unbound id.
	KindFunctionNotFound
	// KindStackOverflow indicates a push on a full parameter stack.
	KindStackOverflow
	// KindStackUnderflow indicates a pop on an empty parameter stack.
	KindStackUnderflow
	// KindFrameTooSmall indicates an operand exceeded the frame bounds.
	KindFrameTooSmall
	// KindRegistryFull indicates the interface registry is at capacity.
	KindRegistryFull
	// KindTableFull indicates all bindable function ids are consumed.
	KindTableFull
)

// String implements fmt.Stringer.
func (k ErrorKind) String() string {
	switch k {
	case KindFunctionConflict:
		return "function conflict"
	case KindFunctionNotFound:
		return "function not found"
	case KindStackOverflow:
		return "stack overflow"
	case KindStackUnderflow:
		return "stack underflow"
	case KindFrameTooSmall:
		return "frame too small"
	case KindRegistryFull:
		return "registry full"
	case KindTableFull:
		return "table full"
	}
	return fmt.Sprintf("error kind %d", byte(k))
}

// DispatchError wraps an ErrorKind for local callers.
type DispatchError struct {
	Kind ErrorKind
}

// Error implements error.
func (e *DispatchError) Error() string {
	return e.Kind.String()
}

var (
	// ErrFunctionConflict is returned by Bind on an occupied slot.
	ErrFunctionConflict = &DispatchError{Kind: KindFunctionConflict}
	// ErrRegistryFull is returned when no interface record can be added.
	ErrRegistryFull = &DispatchError{Kind: KindRegistryFull}
	// ErrTableFull is returned when no function id can be assigned.
	ErrTableFull = &DispatchError{Kind: KindTableFull}
)
