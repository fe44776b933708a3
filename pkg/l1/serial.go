package l1

import (
	l0 "github.com/microbots/reflex.go/pkg/l0/comm"
)

// SerialConn adapts an L0 comm.Client (sequence-synchronized byte
// stream) to DeviceConn.
type SerialConn struct {
	Client *l0.Client
}

// NewSerialConn wraps an L0 client.
func NewSerialConn(client *l0.Client) *SerialConn {
	return &SerialConn{Client: client}
}

// Do implements DeviceConn.
func (c *SerialConn) Do(req *Request) CallFuture {
	ch := make(futureChan, 1)
	data, err := req.Bytes()
	if err != nil {
		ch <- Result{Err: err}
		return ch
	}
	cmd := c.Client.Do(data)
	go func() {
		r := <-cmd.ResultChan()
		ch <- Result{Payload: r.Payload, Err: r.Err}
	}()
	return ch
}

type futureChan chan Result

// ResultChan implements CallFuture.
func (f futureChan) ResultChan() <-chan Result {
	return f
}
