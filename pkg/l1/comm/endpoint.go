package comm

import (
	"context"
	"io"

	fx "github.com/microbots/reflex.go/pkg/framework"
	"github.com/microbots/reflex.go/pkg/l0/funcs"
)

// Endpoint serves a dispatcher over a FrameReadWriter (device side).
// Inbound frames are [seq][opcodes...]; outbound response and error
// payloads are written as-is. Frames are executed one at a time from
// the Run loop.
type Endpoint struct {
	ReadWriter FrameReadWriter
	Dispatcher *funcs.Dispatcher
}

// NewEndpoint creates an Endpoint and attaches itself as the
// dispatcher's transport.
func NewEndpoint(rw FrameReadWriter, d *funcs.Dispatcher) *Endpoint {
	e := &Endpoint{ReadWriter: rw, Dispatcher: d}
	d.SetTransport(e)
	return e
}

// SendFrame implements funcs.Transport.
func (e *Endpoint) SendFrame(data []byte) error {
	return e.ReadWriter.WriteFrame(data)
}

// SendError implements funcs.Transport.
func (e *Endpoint) SendError(kind funcs.ErrorKind) error {
	return e.ReadWriter.WriteFrame([]byte{funcs.FrameError, byte(kind)})
}

// Run implements Runnable.
func (e *Endpoint) Run(ctx context.Context) error {
	return fx.RunWithContextCloser(ctx, e, func() error {
		for {
			pkt, err := e.ReadWriter.ReadFrame()
			if err != nil {
				return err
			}
			if len(pkt) == 0 {
				continue
			}
			e.Dispatcher.Execute(pkt[0], pkt[1:])
		}
	})
}

// Close implements Closer.
func (e *Endpoint) Close() error {
	if closer, ok := e.ReadWriter.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
