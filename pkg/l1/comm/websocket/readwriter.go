// Package websocket provides a frame transport over websocket.
package websocket

import "golang.org/x/net/websocket"

// ReadWriter implements comm.FrameReadWriter. Each frame maps to one
// binary websocket message.
type ReadWriter websocket.Conn

// New wraps websocket.Conn.
func New(conn *websocket.Conn) *ReadWriter {
	return (*ReadWriter)(conn)
}

// ReadFrame implements FrameReader.
func (p *ReadWriter) ReadFrame() (frame []byte, err error) {
	err = websocket.Message.Receive((*websocket.Conn)(p), &frame)
	return
}

// WriteFrame implements FrameWriter.
func (p *ReadWriter) WriteFrame(frame []byte) error {
	return websocket.Message.Send((*websocket.Conn)(p), frame)
}

// Close implements io.Closer.
func (p *ReadWriter) Close() error {
	return (*websocket.Conn)(p).Close()
}
