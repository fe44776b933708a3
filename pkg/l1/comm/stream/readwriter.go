// Package stream provides a frame transport over byte streams.
package stream

import (
	"encoding/binary"
	"io"
)

// ReadWriter implements comm.FrameReadWriter over an io.ReadWriter.
// Each frame is prefixed by a 4-byte little-endian length.
type ReadWriter struct {
	io.ReadWriter
}

// New creates a ReadWriter over an io.ReadWriter.
func New(s io.ReadWriter) *ReadWriter {
	return &ReadWriter{s}
}

// ReadFrame implements FrameReader.
func (p *ReadWriter) ReadFrame() ([]byte, error) {
	var size uint32
	if err := binary.Read(p, binary.LittleEndian, &size); err != nil {
		return nil, err
	}
	frame := make([]byte, size)
	_, err := io.ReadFull(p, frame)
	return frame, err
}

// WriteFrame implements FrameWriter.
func (p *ReadWriter) WriteFrame(frame []byte) error {
	if err := binary.Write(p, binary.LittleEndian, uint32(len(frame))); err != nil {
		return err
	}
	_, err := p.Write(frame)
	return err
}

// Close implements io.Closer when the underlying stream supports it.
func (p *ReadWriter) Close() error {
	if closer, ok := p.ReadWriter.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
