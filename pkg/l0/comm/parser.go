package comm

// Parser parses bytes received.
type Parser struct {
	peerSeq FrameSeq
	state   parseState
	frame   *Frame
	recvLen byte
}

// SyncState indicates the state of communication.
type SyncState int

const (
	// SyncStateSyncing means the communication is not synchronized.
	SyncStateSyncing SyncState = 0
	// SyncStateReady means the communication is synchronized and ready for frames.
	SyncStateReady SyncState = 0x01
	// SyncStateReceiving means there's on-going communication for syncing or a frame.
	SyncStateReceiving SyncState = 0x02
)

// IsReady indicates if the communication is ready for frames.
func (s SyncState) IsReady() bool {
	return s&SyncStateReady != 0
}

// IsReceiving indicates if it's in the middle of syncing or receiving a frame.
func (s SyncState) IsReceiving() bool {
	return s&SyncStateReceiving != 0
}

// TimerAction defines what to do with timer.
type TimerAction int

const (
	// TimerNoChange indicates keep the timer as-is.
	TimerNoChange TimerAction = iota
	// TimerRestart to restart the timer.
	TimerRestart
	// TimerStop to stop/cancel the timer.
	TimerStop
)

// ParseResult indicates the result after one parsing step.
type ParseResult struct {
	Sync  byte
	State SyncState
	Frame *Frame
}

// WhatAboutTimer decides what to do with timer.
func (r ParseResult) WhatAboutTimer() TimerAction {
	if r.State.IsReceiving() || r.Sync == syncREQ {
		return TimerRestart
	}
	if r.State.IsReady() {
		return TimerStop
	}
	return TimerNoChange
}

type parseState int

const (
	stateSyncAck    parseState = iota // sync req sent, waiting for syncACK
	stateSyncReqSeq                   // waiting for sync seq after syncREQ
	stateSyncAckSeq                   // waiting for sync seq after syncACK
	stateFrameSeq                     // waiting for frame seq
	stateFrameAck                     // recv ack in FrameSeq, validate seq
	stateFrameLen                     // waiting for frame length
	stateFrameData                    // waiting for frame data
)

const (
	syncREQ byte = 0xff
	syncACK byte = 0xfe
)

// State gets the current sync state.
func (p *Parser) State() SyncState {
	if p.state == stateSyncAck {
		return SyncStateSyncing
	}
	if p.state == stateFrameSeq {
		return SyncStateReady
	}
	if p.state > stateFrameSeq {
		return SyncStateReady | SyncStateReceiving
	}
	return SyncStateSyncing | SyncStateReceiving
}

// Reset resets the internal state of parser.
func (p *Parser) Reset() (pr ParseResult) {
	p.frame = nil
	pr.Sync, pr.Frame = p.resync()
	pr.State = p.State()
	return
}

// Parse consumes one byte.
func (p *Parser) Parse(b byte) (pr ParseResult) {
	pr.Sync, pr.Frame = p.parseByte(b)
	pr.State = p.State()
	return
}

// Timeout notifies the parser timer expires.
func (p *Parser) Timeout() (pr ParseResult) {
	if p.state != stateFrameSeq {
		pr.Sync, pr.Frame = p.resync()
	}
	pr.State = p.State()
	return
}

func (p *Parser) parseByte(b byte) (syncCmd byte, f *Frame) {
	switch p.state {
	case stateSyncAck:
		switch b {
		case syncREQ:
			p.state = stateSyncReqSeq
		case syncACK:
			p.state = stateSyncAckSeq
		}
	case stateSyncReqSeq:
		if seq := FrameSeq(b); seq.IsValid() {
			p.peerSeq, p.state = seq, stateFrameSeq
			syncCmd = syncACK
			return
		}
		return p.resync()
	case stateSyncAckSeq:
		if seq := FrameSeq(b); seq.IsValid() {
			p.peerSeq, p.state = seq, stateFrameSeq
			return
		}
		return p.resync()
	case stateFrameSeq:
		if b == syncREQ {
			p.state = stateSyncReqSeq
			return
		}
		if b == syncACK {
			p.state = stateFrameAck
			return
		}
		if b != byte(p.peerSeq) {
			return p.resync()
		}
		p.frame = &Frame{Seq: p.peerSeq}
		p.peerSeq = p.peerSeq.Next()
		p.state = stateFrameLen
	case stateFrameAck:
		if b != byte(p.peerSeq) {
			return p.resync()
		}
		p.state = stateFrameSeq
	case stateFrameLen:
		if b > MaxFrameData {
			return p.resync()
		}
		if b == 0 {
			return p.frameReady()
		}
		p.frame.Data, p.recvLen = make([]byte, b), 0
		p.state = stateFrameData
	case stateFrameData:
		p.frame.Data[p.recvLen] = b
		p.recvLen++
		if p.recvLen >= byte(len(p.frame.Data)) {
			return p.frameReady()
		}
	}
	return
}

func (p *Parser) resync() (byte, *Frame) {
	p.state = stateSyncAck
	return syncREQ, nil
}

func (p *Parser) frameReady() (syncCmd byte, f *Frame) {
	p.state = stateFrameSeq
	f, p.frame = p.frame, nil
	return
}
