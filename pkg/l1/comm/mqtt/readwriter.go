package mqtt

import (
	"context"
	"io"

	"github.com/microbots/reflex.go/pkg/l1"
)

// ReadWriter implements comm.FrameReadWriter over a Queue. Each frame
// maps to one publish on PubTopic; received messages on SubTopic are
// delivered as frames.
type ReadWriter struct {
	Queue    *Queue
	SubTopic string
	PubTopic string

	frameCh chan []byte
}

// NewReadWriter creates the ReadWriter.
func NewReadWriter(q *Queue) *ReadWriter {
	return &ReadWriter{Queue: q, frameCh: make(chan []byte, 1)}
}

// WithTopics specifies the topics.
func (p *ReadWriter) WithTopics(sub, pub string) *ReadWriter {
	p.SubTopic, p.PubTopic = sub, pub
	return p
}

// ForHost sets topics using the default convention for the host side:
// SubTopic = ref/rsp
// PubTopic = ref/cmd
func (p *ReadWriter) ForHost(ref l1.DeviceRef) *ReadWriter {
	prefix := ref.Name()
	return p.WithTopics(prefix+"/rsp", prefix+"/cmd")
}

// ForDevice sets topics using the default convention for the device:
// SubTopic = ref/cmd
// PubTopic = ref/rsp
func (p *ReadWriter) ForDevice(ref l1.DeviceRef) *ReadWriter {
	prefix := ref.Name()
	return p.WithTopics(prefix+"/cmd", prefix+"/rsp")
}

// ReadFrame implements FrameReader.
func (p *ReadWriter) ReadFrame() ([]byte, error) {
	frame, ok := <-p.frameCh
	if !ok {
		return nil, io.EOF
	}
	return frame, nil
}

// WriteFrame implements FrameWriter.
func (p *ReadWriter) WriteFrame(frame []byte) error {
	token := p.Queue.Pub(p.PubTopic, frame)
	token.Wait()
	return token.Error()
}

// Run implements Runnable. It keeps the subscription alive until the
// context is done. The subscription is torn down before the frame
// channel closes so no in-flight delivery sends on a closed channel.
func (p *ReadWriter) Run(ctx context.Context) error {
	sub := p.Queue.Sub(p.SubTopic, p.handleMsg)
	<-ctx.Done()
	sub.Close()
	close(p.frameCh)
	return ctx.Err()
}

func (p *ReadWriter) handleMsg(_ string, payload []byte) {
	p.frameCh <- payload
}
