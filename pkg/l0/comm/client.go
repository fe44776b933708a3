package comm

import (
	"context"
	"sync"

	"github.com/microbots/reflex.go/pkg/l0/funcs"
)

// Result is the result of a request using Do.
type Result struct {
	Err     error
	Payload []byte
}

// Client provides host side operations over FIFO: it sends opcode
// frames and correlates response frames by the caller sequence echoed
// in the response payload.
type Client struct {
	fifo     *FIFO
	eventCh  chan *Frame
	stateCh  chan SyncState
	cmdsHead *Command
	cmdsTail *Command
	cmdsLock sync.Mutex
}

// Command represents a pending request waiting for reply.
type Command struct {
	requestSeq FrameSeq
	resultCh   chan Result
	next       *Command
}

// RequestSeq returns the request frame seq.
func (c *Command) RequestSeq() FrameSeq {
	return c.requestSeq
}

// ResultChan returns the chan to retrieve result.
func (c *Command) ResultChan() <-chan Result {
	return c.resultCh
}

// NewClient creates client and wraps the fifo.
func NewClient(fifo *FIFO) *Client {
	c := &Client{
		fifo:    fifo,
		eventCh: make(chan *Frame, 1),
		stateCh: make(chan SyncState, 1),
	}
	c.fifo.Handler = c
	c.fifo.Notifier = StateChangedFunc(func(ctx context.Context, state SyncState) {
		c.stateCh <- state
	})
	return c
}

// FIFO gets wrapped FIFO.
func (c *Client) FIFO() *FIFO {
	return c.fifo
}

// StateChan retrieves the state reporting chan.
func (c *Client) StateChan() <-chan SyncState {
	return c.stateCh
}

// EventChan retrieves the chan reporting frames not correlated to a
// pending request.
func (c *Client) EventChan() <-chan *Frame {
	return c.eventCh
}

// DoWith sends an opcode frame and expects a result in the provided chan.
func (c *Client) DoWith(opcodes []byte, ch chan Result) *Command {
	cmd := &Command{resultCh: ch}
	frame := &Frame{Data: opcodes}

	c.cmdsLock.Lock()
	defer c.cmdsLock.Unlock()
	err := c.fifo.Send(frame)
	cmd.requestSeq = frame.Seq
	if err != nil {
		cmd.resultCh <- Result{Err: err}
		return cmd
	}
	if c.cmdsHead == nil {
		c.cmdsHead = cmd
	} else {
		c.cmdsTail.next = cmd
	}
	c.cmdsTail = cmd
	return cmd
}

// Do sends an opcode frame and returns a Command for result.
func (c *Client) Do(opcodes []byte) *Command {
	return c.DoWith(opcodes, make(chan Result, 1))
}

// HandleFrame implements FrameHandler.
func (c *Client) HandleFrame(ctx context.Context, f *Frame) {
	if len(f.Data) == 0 {
		// nothing to interpret.
		return
	}
	switch f.Data[0] {
	case funcs.FrameResponse:
		if len(f.Data) < 3 {
			// truncated response frame.
			return
		}
		c.completeResponse(FrameSeq(f.Data[1]), f.Data[3:])
	case funcs.FrameError:
		if len(f.Data) < 2 {
			return
		}
		c.failOldest(&RemoteError{Kind: funcs.ErrorKind(f.Data[1])}, f)
	default:
		c.eventCh <- f
	}
}

func (c *Client) completeResponse(reqSeq FrameSeq, payload []byte) {
	c.cmdsLock.Lock()
	head := c.cmdsHead
	curr := c.cmdsHead
	for ; curr != nil; curr = curr.next {
		if curr.requestSeq == reqSeq {
			if c.cmdsHead = curr.next; c.cmdsHead == nil {
				c.cmdsTail = nil
			}
			curr.next = nil
			break
		}
	}
	c.cmdsLock.Unlock()
	if curr == nil {
		return
	}
	for ; head != curr; head = head.next {
		head.resultCh <- Result{Err: ErrNoReply}
	}
	curr.resultCh <- Result{Payload: payload}
}

// failOldest fails the oldest pending request with err. Error frames
// carry no caller sequence, so the oldest in-flight request is the
// best attribution; with none pending the frame goes to EventChan.
func (c *Client) failOldest(err error, f *Frame) {
	c.cmdsLock.Lock()
	cmd := c.cmdsHead
	if cmd != nil {
		if c.cmdsHead = cmd.next; c.cmdsHead == nil {
			c.cmdsTail = nil
		}
		cmd.next = nil
	}
	c.cmdsLock.Unlock()
	if cmd == nil {
		c.eventCh <- f
		return
	}
	cmd.resultCh <- Result{Err: err}
}

// Run wraps FIFO.Run to implement Runnable.
func (c *Client) Run(ctx context.Context) error {
	return c.fifo.Run(ctx)
}
