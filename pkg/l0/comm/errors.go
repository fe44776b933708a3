package comm

import (
	"errors"
	"fmt"

	"github.com/microbots/reflex.go/pkg/l0/funcs"
)

var (
	// ErrNotReady indicates the FIFO is not ready for communication.
	ErrNotReady = errors.New("not ready")
	// ErrNoReply indicates no reply received from peer.
	// This happens when a reply is received for a latter request, and
	// all previous requests fail with this error.
	ErrNoReply = errors.New("no reply")
)

// RemoteError wraps an error kind reported by the device in an error
// frame.
type RemoteError struct {
	Kind funcs.ErrorKind
}

// Error implements error.
func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote error: %v", e.Kind)
}
