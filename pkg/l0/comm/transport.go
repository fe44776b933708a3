package comm

import (
	"context"
	"io"

	"github.com/microbots/reflex.go/pkg/l0/funcs"
)

// Transport adapts a FIFO to the dispatch engine's transport
// contract: outbound response/error frames go through SendFrame and
// SendError, inbound frames are executed on the attached Dispatcher.
// Because the FIFO delivers frames synchronously from its Run loop,
// one frame is fully executed before the next is parsed.
type Transport struct {
	FIFO *FIFO
}

// NewTransport creates a Transport over a byte stream.
func NewTransport(rw io.ReadWriter) *Transport {
	return &Transport{FIFO: NewFIFO(rw)}
}

// Serve attaches the dispatcher to inbound frames.
func (t *Transport) Serve(d *funcs.Dispatcher) *Transport {
	d.SetTransport(t)
	t.FIFO.Handler = HandleFrameFunc(func(_ context.Context, f *Frame) {
		d.Execute(byte(f.Seq), f.Data)
	})
	return t
}

// SendFrame implements funcs.Transport.
func (t *Transport) SendFrame(data []byte) error {
	return t.FIFO.Send(&Frame{Data: data})
}

// SendError implements funcs.Transport.
func (t *Transport) SendError(kind funcs.ErrorKind) error {
	return t.FIFO.Send(&Frame{Data: []byte{funcs.FrameError, byte(kind)}})
}

// Run wraps FIFO.Run to implement Runnable.
func (t *Transport) Run(ctx context.Context) error {
	return t.FIFO.Run(ctx)
}
