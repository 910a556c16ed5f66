// Package msgs defines the telemetry messages published about badges.
package msgs

import (
	"github.com/golang/protobuf/proto"
)

// EventKind identifies what happened.
type EventKind uint32

// Event kinds.
const (
	EventUnknown EventKind = iota
	EventStateChanged
	EventDisconnection
	EventPairingBegin
	EventPairingEnd
	EventMessageReceived
	EventMessageSent
)

func (k EventKind) String() string {
	switch k {
	case EventStateChanged:
		return "state-changed"
	case EventDisconnection:
		return "disconnection"
	case EventPairingBegin:
		return "pairing-begin"
	case EventPairingEnd:
		return "pairing-end"
	case EventMessageReceived:
		return "message-received"
	case EventMessageSent:
		return "message-sent"
	}
	return "unknown"
}

// Event is something that happened on a badge.
type Event struct {
	Badge       string `protobuf:"bytes,1,opt,name=badge,proto3" json:"badge,omitempty"`
	Kind        uint32 `protobuf:"varint,2,opt,name=kind,proto3" json:"kind,omitempty"`
	TimeMs      uint64 `protobuf:"varint,3,opt,name=time_ms,proto3" json:"time_ms,omitempty"`
	FromState   string `protobuf:"bytes,4,opt,name=from_state,proto3" json:"from_state,omitempty"`
	State       string `protobuf:"bytes,5,opt,name=state,proto3" json:"state,omitempty"`
	PeerID      uint32 `protobuf:"varint,6,opt,name=peer_id,proto3" json:"peer_id,omitempty"`
	PeerCount   uint32 `protobuf:"varint,7,opt,name=peer_count,proto3" json:"peer_count,omitempty"`
	MessageType uint32 `protobuf:"varint,8,opt,name=message_type,proto3" json:"message_type,omitempty"`
	Payload     []byte `protobuf:"bytes,9,opt,name=payload,proto3" json:"payload,omitempty"`
}

// EventKind gets the typed kind.
func (m *Event) EventKind() EventKind { return EventKind(m.Kind) }

// ProtoMessage implements proto.Message.
func (m *Event) ProtoMessage() {}

// Reset implements proto.Message.
func (m *Event) Reset() { *m = Event{} }

// String implements proto.Message.
func (m *Event) String() string { return proto.CompactTextString(m) }

// Encode serializes the event.
func (m *Event) Encode() ([]byte, error) {
	return proto.Marshal(m)
}

// DecodeEvent parses a serialized event.
func DecodeEvent(data []byte) (*Event, error) {
	m := &Event{}
	if err := proto.Unmarshal(data, m); err != nil {
		return nil, err
	}
	return m, nil
}
