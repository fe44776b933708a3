package comm

// The L0 transport is communicated between device firmware and a host
// over a peer-to-peer byte channel (e.g. serial port) and focuses on
// robustness of data transferring: the communication is recoverable
// from errors through a simple sequence based synchronization
// mechanism. It provides limited transfer error detection based on
// sequence check but doesn't do any bit verification (CRC/Checksum)
// for simplicity and to be lightweighted. If needed, parity bits can
// be enabled on the serial port for verification.
//
// Each frame on the wire is [seq][len][data x len] with len < 0x80.
// The frame data is opaque to this package: inbound frames carry
// opcode streams for the dispatch engine, outbound frames carry
// response and error payloads.

import (
	"io"
	"time"
)

// FrameSeq defines the type of frame sequence number.
type FrameSeq byte

// NewFrameSeq creates a random frame sequence number.
func NewFrameSeq() FrameSeq {
	return FrameSeq(byte(time.Now().UnixNano())).Next()
}

// Next calculates the next sequence number.
func (s FrameSeq) Next() FrameSeq {
	n := byte(s) + 1
	if n == 0 || n >= 0xf0 {
		n = 1
	}
	return FrameSeq(n)
}

// IsValid checks if it's a valid sequence number.
func (s FrameSeq) IsValid() bool {
	n := byte(s)
	return n > 0 && n < 0xf0
}

// MaxFrameData is the maximum data length of one frame. Length bytes
// with the high bit set are invalid and trigger a resync.
const MaxFrameData = 0x7f

// Frame contains the information of a parsed frame.
type Frame struct {
	Seq  FrameSeq
	Data []byte
}

// Bytes returns encoded bytes for sending.
func (f *Frame) Bytes() []byte {
	b := make([]byte, len(f.Data)+2)
	b[0], b[1] = byte(f.Seq), byte(len(f.Data))
	copy(b[2:], f.Data)
	return b
}

// WriteTo writes encoded bytes.
func (f *Frame) WriteTo(w io.Writer) (n int, err error) {
	if n, err = w.Write([]byte{byte(f.Seq), byte(len(f.Data))}); err != nil {
		return
	}
	if len(f.Data) > 0 {
		var n1 int
		n1, err = w.Write(f.Data)
		n += n1
	}
	return
}
