package comm

// FrameReader reads whole frames in bytes.
type FrameReader interface {
	ReadFrame() ([]byte, error)
}

// FrameWriter writes whole frames in bytes.
type FrameWriter interface {
	WriteFrame([]byte) error
}

// FrameReadWriter reads/writes whole frames in bytes. Unlike the L0
// byte-stream transport, implementations carry message boundaries
// themselves (length prefix, websocket message, MQTT publish), so no
// sync handshake is needed.
type FrameReadWriter interface {
	FrameReader
	FrameWriter
}
