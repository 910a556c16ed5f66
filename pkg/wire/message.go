package wire

import (
	"fmt"
	"io"
)

// Framing constants.
const (
	MagicByte1 byte = 0x4e
	MagicByte2 byte = 0x53

	// HeaderSize is the size of Type and Length.
	HeaderSize = 2
	// MaxPayloadSize is the largest payload a message may carry.
	MaxPayloadSize = 24
	// MaxMessageSize is the largest encoded message.
	MaxMessageSize = 2 + HeaderSize + MaxPayloadSize
)

// Type identifies the kind of a message.
type Type uint8

// Type classes.
const (
	// MaxApplicationType is the largest type available to the application.
	MaxApplicationType Type = 0x1f

	typeProtocolMask Type = 0x80
)

// Protocol message types.
const (
	// TypeAnnounce travels rightwards during discovery.
	// Payload: [sender peer id, peer count so far].
	TypeAnnounce Type = typeProtocolMask | 0x00
	// TypeAnnounceReply is reflected by the right-most badge.
	// Payload: [final peer count].
	TypeAnnounceReply Type = typeProtocolMask | 0x01
	// TypeMonitor ends the sender's turn and hands it to the receiver.
	// It is also the heartbeat of a running chain. No payload.
	TypeMonitor Type = typeProtocolMask | 0x02
)

// IsProtocol indicates the type is reserved by the link protocol.
func (t Type) IsProtocol() bool {
	return t&typeProtocolMask != 0
}

// IsApplication indicates the type belongs to the application.
func (t Type) IsApplication() bool {
	return t <= MaxApplicationType
}

// IsValid checks the type is either a known protocol type or
// an application type.
func (t Type) IsValid() bool {
	switch t {
	case TypeAnnounce, TypeAnnounceReply, TypeMonitor:
		return true
	}
	return t.IsApplication()
}

func (t Type) String() string {
	switch t {
	case TypeAnnounce:
		return "ANNOUNCE"
	case TypeAnnounceReply:
		return "ANNOUNCE_REPLY"
	case TypeMonitor:
		return "MONITOR"
	}
	if t.IsApplication() {
		return fmt.Sprintf("APP(%d)", byte(t))
	}
	return fmt.Sprintf("INVALID(0x%02x)", byte(t))
}

// Message is a type and a bounded payload.
// The payload is stored inline so a Message never allocates.
type Message struct {
	Type Type

	size    uint8
	payload [MaxPayloadSize]byte
}

// NewMessage creates a Message, copying the payload.
func NewMessage(t Type, payload ...byte) (Message, error) {
	m := Message{Type: t}
	if !t.IsValid() {
		return m, &InvalidTypeError{Type: t}
	}
	err := m.SetPayload(payload)
	return m, err
}

// SetPayload copies the payload into the message.
func (m *Message) SetPayload(p []byte) error {
	if len(p) > MaxPayloadSize {
		return ErrPayloadTooLarge
	}
	m.size = uint8(copy(m.payload[:], p))
	return nil
}

// Payload returns the payload. The slice refers to the message storage.
func (m *Message) Payload() []byte {
	return m.payload[:m.size]
}

// Size returns the payload size.
func (m *Message) Size() int {
	return int(m.size)
}

// EncodedSize returns the number of bytes on the wire.
func (m *Message) EncodedSize() int {
	return 2 + HeaderSize + int(m.size)
}

// AppendTo appends the encoded message to b.
func (m *Message) AppendTo(b []byte) []byte {
	b = append(b, MagicByte1, MagicByte2, byte(m.Type), m.size)
	return append(b, m.payload[:m.size]...)
}

// Bytes returns encoded bytes for sending.
func (m *Message) Bytes() []byte {
	return m.AppendTo(make([]byte, 0, m.EncodedSize()))
}

// WriteTo writes the encoded message with a single Write so a message is
// never interleaved on a link.
func (m *Message) WriteTo(w io.Writer) (int64, error) {
	var buf [MaxMessageSize]byte
	n, err := w.Write(m.AppendTo(buf[:0]))
	return int64(n), err
}

func (m Message) String() string {
	return fmt.Sprintf("%s %x", m.Type, m.payload[:m.size])
}
