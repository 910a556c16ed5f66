package wire

// ReceptionState is the cursor of a Parser.
type ReceptionState uint8

// Reception states.
const (
	ReceiveMagicByte1 ReceptionState = iota // discarding bytes until MagicByte1
	ReceiveMagicByte2                       // MagicByte1 seen, expecting MagicByte2
	ReceiveHeader                           // receiving type and length
	ReceivePayload                          // receiving payload bytes
)

func (s ReceptionState) String() string {
	switch s {
	case ReceiveMagicByte1:
		return "RECEIVE_MAGIC_BYTE_1"
	case ReceiveMagicByte2:
		return "RECEIVE_MAGIC_BYTE_2"
	case ReceiveHeader:
		return "RECEIVE_HEADER"
	case ReceivePayload:
		return "RECEIVE_PAYLOAD"
	}
	return "INVALID"
}

// ParseResult indicates the result after one parsing step.
type ParseResult uint8

// Parse results.
const (
	Incomplete ParseResult = iota
	Complete
)

func (r ParseResult) String() string {
	if r == Complete {
		return "COMPLETE"
	}
	return "INCOMPLETE"
}

// Parser assembles messages from a byte stream, one byte at a time.
// The zero value is ready to use.
type Parser struct {
	state       ReceptionState
	headerBytes uint8
	toReceive   uint8
	msg         Message
}

// State gets the current reception state.
func (p *Parser) State() ReceptionState {
	return p.state
}

// IsIdle indicates the parser is between messages.
func (p *Parser) IsIdle() bool {
	return p.state == ReceiveMagicByte1
}

// PayloadBytesToReceive returns the count of payload bytes still expected.
func (p *Parser) PayloadBytesToReceive() int {
	return int(p.toReceive)
}

// Message returns the last completed message. It is only valid after
// Parse returned Complete and until the next call to Parse.
func (p *Parser) Message() *Message {
	return &p.msg
}

// Reset drops any partially received message.
func (p *Parser) Reset() {
	p.resync()
}

// Parse consumes one byte.
func (p *Parser) Parse(b byte) ParseResult {
	switch p.state {
	case ReceiveMagicByte1:
		if b == MagicByte1 {
			p.state = ReceiveMagicByte2
		}
	case ReceiveMagicByte2:
		switch b {
		case MagicByte2:
			p.state, p.headerBytes = ReceiveHeader, 0
		case MagicByte1:
			// the previous MagicByte1 was noise, this one may start a message.
		default:
			p.resync()
		}
	case ReceiveHeader:
		if p.headerBytes == 0 {
			if t := Type(b); t.IsValid() {
				p.msg.Type, p.headerBytes = t, 1
			} else {
				p.resync()
			}
			return Incomplete
		}
		if b > MaxPayloadSize {
			p.resync()
			return Incomplete
		}
		p.msg.size = b
		if b == 0 {
			return p.complete()
		}
		p.toReceive, p.state = b, ReceivePayload
	case ReceivePayload:
		p.msg.payload[p.msg.size-p.toReceive] = b
		p.toReceive--
		if p.toReceive == 0 {
			return p.complete()
		}
	}
	return Incomplete
}

func (p *Parser) resync() {
	p.state, p.headerBytes, p.toReceive = ReceiveMagicByte1, 0, 0
}

func (p *Parser) complete() ParseResult {
	p.resync()
	return Complete
}
