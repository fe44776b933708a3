package comm

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/microbots/reflex.go/pkg/l0/funcs"
	"github.com/microbots/reflex.go/pkg/l1"
)

type chanReadWriter struct {
	in  chan []byte
	out chan []byte

	closeOnce sync.Once
}

func (rw *chanReadWriter) ReadFrame() ([]byte, error) {
	pkt, ok := <-rw.in
	if !ok {
		return nil, io.EOF
	}
	return pkt, nil
}

func (rw *chanReadWriter) WriteFrame(pkt []byte) error {
	rw.out <- pkt
	return nil
}

func (rw *chanReadWriter) Close() error {
	rw.closeOnce.Do(func() { close(rw.in) })
	return nil
}

func newReadWriterPair() (host, dev *chanReadWriter) {
	toHost := make(chan []byte, 16)
	toDev := make(chan []byte, 16)
	host = &chanReadWriter{in: toHost, out: toDev}
	dev = &chanReadWriter{in: toDev, out: toHost}
	return
}

func TestConnEndpointRoundtrip(t *testing.T) {
	hostRW, devRW := newReadWriterPair()

	d := funcs.NewDispatcher(nil)
	addOne, err := d.BindNamed("DEMO1", funcs.HandlerFunc(func(c *funcs.Call) {
		v := c.Pop()
		if c.Push(v + 1) {
			c.SendResponse()
		}
	}))
	require.NoError(t, err)

	ep := NewEndpoint(devRW, d)
	conn := NewConn(hostRW)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go ep.Run(ctx)
	go conn.Run(ctx)

	res := <-conn.Do(l1.NewRequest().Push(41).Invoke(addOne)).ResultChan()
	require.NoError(t, res.Err)
	require.Equal(t, []byte{42}, res.Payload)

	infos, err := l1.Discover(ctx, conn)
	require.NoError(t, err)
	require.Equal(t, []l1.InterfaceInfo{{ID: "DEMO1", Start: addOne}}, infos)

	res = <-conn.Do(l1.NewRequest().Invoke(200)).ResultChan()
	require.Error(t, res.Err)
	derr, ok := res.Err.(*funcs.DispatchError)
	require.True(t, ok)
	require.Equal(t, funcs.KindFunctionNotFound, derr.Kind)
}

func TestConnExpiration(t *testing.T) {
	hostRW, _ := newReadWriterPair()
	conn := NewConn(hostRW)
	conn.Expiration = 20 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go conn.Run(ctx)

	res := <-conn.Do(l1.NewRequest().Invoke(10)).ResultChan()
	require.Equal(t, context.DeadlineExceeded, res.Err)
}

func TestConnWriteError(t *testing.T) {
	conn := NewConn(&failReadWriter{})
	res := <-conn.Do(l1.NewRequest().Invoke(10)).ResultChan()
	require.Equal(t, io.ErrClosedPipe, res.Err)
}

type failReadWriter struct{}

func (rw *failReadWriter) ReadFrame() ([]byte, error) {
	return nil, io.EOF
}

func (rw *failReadWriter) WriteFrame([]byte) error {
	return io.ErrClosedPipe
}
