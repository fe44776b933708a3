package comm

import (
	"container/list"
	"context"
	"io"
	"sync"
	"time"

	fx "github.com/microbots/reflex.go/pkg/framework"
	"github.com/microbots/reflex.go/pkg/l0/funcs"
	"github.com/microbots/reflex.go/pkg/l1"
)

// DefaultExpiration is the default expiration expecting a result.
const DefaultExpiration = 1 * time.Second

// Conn provides l1.DeviceConn over a FrameReadWriter (host side).
// Requests are written as [seq][opcodes...] and responses correlated
// by the caller sequence echoed in the response payload.
type Conn struct {
	Expiration time.Duration

	rw       FrameReadWriter
	seq      byte
	pending  list.List
	seqMap   map[byte]*callFuture
	lock     sync.Mutex
	sendLock sync.Mutex
}

// NewConn creates a Conn with defaults.
func NewConn(rw FrameReadWriter) *Conn {
	return &Conn{
		Expiration: DefaultExpiration,
		rw:         rw,
		seqMap:     make(map[byte]*callFuture),
	}
}

// Do implements DeviceConn.
func (c *Conn) Do(req *l1.Request) l1.CallFuture {
	f := &callFuture{result: make(chan l1.Result, 1)}
	data, err := req.Bytes()
	if err != nil {
		f.complete(l1.Result{Err: err})
		return f
	}

	c.lock.Lock()
	c.seq++
	if c.seq == 0 {
		c.seq++
	}
	f.seq = c.seq
	f.expireAt = time.Now().Add(c.Expiration)
	// a stale future on the same seq is long expired, drop it
	if old := c.seqMap[f.seq]; old != nil {
		c.pending.Remove(old.elem)
		old.complete(l1.Result{Err: context.DeadlineExceeded})
	}
	f.elem = c.pending.PushBack(f)
	c.seqMap[f.seq] = f
	c.lock.Unlock()

	frame := make([]byte, len(data)+1)
	frame[0] = f.seq
	copy(frame[1:], data)
	c.sendLock.Lock()
	err = c.rw.WriteFrame(frame)
	c.sendLock.Unlock()
	if err != nil {
		c.remove(f)
		f.complete(l1.Result{Err: err})
	}
	return f
}

// Run reads frames and completes pending futures. It implements
// Runnable and also purges expired futures periodically. A ReadWriter
// which is itself a Runnable (MQTT) is run alongside.
func (c *Conn) Run(ctx context.Context) error {
	purgeCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go c.purgeLoop(purgeCtx)
	if r, ok := c.rw.(fx.Runnable); ok {
		go r.Run(purgeCtx)
	}
	return fx.RunWithContextCloser(ctx, c, func() error {
		for {
			pkt, err := c.rw.ReadFrame()
			if err != nil {
				return err
			}
			c.handleFrame(pkt)
		}
	})
}

// Close implements Closer.
func (c *Conn) Close() error {
	if closer, ok := c.rw.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

func (c *Conn) handleFrame(pkt []byte) {
	if len(pkt) == 0 {
		return
	}
	switch pkt[0] {
	case funcs.FrameResponse:
		if len(pkt) < 3 {
			return
		}
		if f := c.take(pkt[1]); f != nil {
			f.complete(l1.Result{Payload: pkt[3:]})
		}
	case funcs.FrameError:
		if len(pkt) < 2 {
			return
		}
		// error frames carry no caller sequence; attribute to the
		// oldest in-flight request
		if f := c.takeOldest(); f != nil {
			f.complete(l1.Result{Err: &funcs.DispatchError{Kind: funcs.ErrorKind(pkt[1])}})
		}
	}
}

func (c *Conn) take(seq byte) *callFuture {
	c.lock.Lock()
	defer c.lock.Unlock()
	f := c.seqMap[seq]
	if f != nil {
		c.pending.Remove(f.elem)
		delete(c.seqMap, seq)
	}
	return f
}

func (c *Conn) takeOldest() *callFuture {
	c.lock.Lock()
	defer c.lock.Unlock()
	elem := c.pending.Front()
	if elem == nil {
		return nil
	}
	f := elem.Value.(*callFuture)
	c.pending.Remove(elem)
	delete(c.seqMap, f.seq)
	return f
}

func (c *Conn) remove(f *callFuture) {
	c.lock.Lock()
	defer c.lock.Unlock()
	if _, ok := c.seqMap[f.seq]; ok {
		c.pending.Remove(f.elem)
		delete(c.seqMap, f.seq)
	}
}

func (c *Conn) purgeLoop(ctx context.Context) {
	ticker := time.NewTicker(c.Expiration / 2)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.purgeExpired(time.Now())
		}
	}
}

func (c *Conn) purgeExpired(now time.Time) {
	c.lock.Lock()
	defer c.lock.Unlock()
	for c.pending.Len() > 0 {
		elem := c.pending.Front()
		f := elem.Value.(*callFuture)
		if f.expireAt.After(now) {
			break
		}
		c.pending.Remove(elem)
		delete(c.seqMap, f.seq)
		f.complete(l1.Result{Err: context.DeadlineExceeded})
	}
}

type callFuture struct {
	seq      byte
	expireAt time.Time
	elem     *list.Element
	result   chan l1.Result
	once     sync.Once
}

func (f *callFuture) complete(r l1.Result) {
	f.once.Do(func() {
		f.result <- r
		close(f.result)
	})
}

// ResultChan implements CallFuture.
func (f *callFuture) ResultChan() <-chan l1.Result {
	return f.result
}
