package network

import (
	"time"

	"github.com/nsec/badge.go/pkg/wire"
)

// AbsoluteTimeMs is a monotonic timestamp in milliseconds.
type AbsoluteTimeMs uint64

// TimeMs converts a time to AbsoluteTimeMs.
func TimeMs(t time.Time) AbsoluteTimeMs {
	return AbsoluteTimeMs(t.UnixNano() / int64(time.Millisecond))
}

// DurationMs converts a duration to milliseconds.
func DurationMs(d time.Duration) AbsoluteTimeMs {
	if d <= 0 {
		return 0
	}
	return AbsoluteTimeMs(d / time.Millisecond)
}

// PeerID is the ordinal position of a badge in the chain.
type PeerID uint8

// Peer limits.
const (
	// MaxPeers is the number of distinct peer ids.
	MaxPeers = 32
	// MaxPeerCount is the largest chain supported.
	MaxPeerCount = MaxPeers - 1
)

// IsValid checks the id fits the 5-bit range.
func (id PeerID) IsValid() bool {
	return id < MaxPeers
}

// WireState is the state of the wire protocol.
type WireState uint8

// Wire protocol states.
const (
	// StateUnconnected means no neighbor is present, or a session was reset.
	StateUnconnected WireState = iota
	// StateWaitToSendAnnounce lets neighbors start listening before the
	// left-most badge initiates discovery.
	StateWaitToSendAnnounce
	// StateDiscovery establishes the peer id and peer count.
	StateDiscovery
	// StateRunning is application controlled with automatic monitoring.
	StateRunning
)

func (s WireState) String() string {
	switch s {
	case StateUnconnected:
		return "UNCONNECTED"
	case StateWaitToSendAnnounce:
		return "WAIT_TO_SEND_ANNOUNCE"
	case StateDiscovery:
		return "DISCOVERY"
	case StateRunning:
		return "RUNNING"
	}
	return "INVALID"
}

// Action tells the engine what to do with a received application message.
type Action uint8

// Application message actions.
const (
	// ActionSwallow consumes the message.
	ActionSwallow Action = iota
	// ActionForward relays the message unchanged to the next badge.
	ActionForward
	// ActionReset aborts the session.
	ActionReset
)

func (a Action) String() string {
	switch a {
	case ActionSwallow:
		return "SWALLOW"
	case ActionForward:
		return "FORWARD"
	case ActionReset:
		return "RESET"
	}
	return "INVALID"
}

// EnqueueResult is the result of EnqueueMessage.
type EnqueueResult uint8

// Enqueue results.
const (
	EnqueueQueued EnqueueResult = iota
	// EnqueueUnconnected is returned unless the wire protocol is running.
	EnqueueUnconnected
	// EnqueueFull is returned while a message is already pending.
	EnqueueFull
	// EnqueueInvalid is returned for a bad direction, a protocol type,
	// or a payload larger than wire.MaxPayloadSize.
	EnqueueInvalid
)

func (r EnqueueResult) String() string {
	switch r {
	case EnqueueQueued:
		return "QUEUED"
	case EnqueueUnconnected:
		return "UNCONNECTED"
	case EnqueueFull:
		return "FULL"
	case EnqueueInvalid:
		return "INVALID"
	}
	return "UNKNOWN"
}

// Notifier receives the events of the engine. Callbacks run synchronously
// inside Handler.Run and must not call into the engine, except for
// EnqueueMessage.
type Notifier interface {
	// OnDisconnection is called when a session is torn down.
	OnDisconnection()
	// OnPairingBegin is called when this badge starts discovery.
	OnPairingBegin()
	// OnPairingEnd is called when discovery completes on this badge.
	OnPairingEnd(id PeerID, peerCount uint8)
	// OnMessageReceived decides the fate of an application message.
	// The payload is only valid during the call.
	OnMessageReceived(t wire.Type, payload []byte) Action
	// OnMessageSent is called once the pending message left the slot.
	OnMessageSent()
}

// StateObserver is optionally implemented by a Notifier to be told about
// every wire protocol state transition.
type StateObserver interface {
	OnStateChanged(from, to WireState)
}

// NotifierFuncs is the func form of Notifier. Nil funcs are ignored and
// received messages are swallowed if OnMessageReceivedFunc is nil.
type NotifierFuncs struct {
	OnDisconnectionFunc   func()
	OnPairingBeginFunc    func()
	OnPairingEndFunc      func(PeerID, uint8)
	OnMessageReceivedFunc func(wire.Type, []byte) Action
	OnMessageSentFunc     func()
}

// OnDisconnection implements Notifier.
func (f *NotifierFuncs) OnDisconnection() {
	if fn := f.OnDisconnectionFunc; fn != nil {
		fn()
	}
}

// OnPairingBegin implements Notifier.
func (f *NotifierFuncs) OnPairingBegin() {
	if fn := f.OnPairingBeginFunc; fn != nil {
		fn()
	}
}

// OnPairingEnd implements Notifier.
func (f *NotifierFuncs) OnPairingEnd(id PeerID, peerCount uint8) {
	if fn := f.OnPairingEndFunc; fn != nil {
		fn(id, peerCount)
	}
}

// OnMessageReceived implements Notifier.
func (f *NotifierFuncs) OnMessageReceived(t wire.Type, payload []byte) Action {
	if fn := f.OnMessageReceivedFunc; fn != nil {
		return fn(t, payload)
	}
	return ActionSwallow
}

// OnMessageSent implements Notifier.
func (f *NotifierFuncs) OnMessageSent() {
	if fn := f.OnMessageSentFunc; fn != nil {
		fn()
	}
}

// MultiNotifier dispatches events to multiple notifiers. The first one
// decides the Action of received messages, the others only observe.
type MultiNotifier []Notifier

// OnDisconnection implements Notifier.
func (m MultiNotifier) OnDisconnection() {
	for _, n := range m {
		n.OnDisconnection()
	}
}

// OnPairingBegin implements Notifier.
func (m MultiNotifier) OnPairingBegin() {
	for _, n := range m {
		n.OnPairingBegin()
	}
}

// OnPairingEnd implements Notifier.
func (m MultiNotifier) OnPairingEnd(id PeerID, peerCount uint8) {
	for _, n := range m {
		n.OnPairingEnd(id, peerCount)
	}
}

// OnMessageReceived implements Notifier.
func (m MultiNotifier) OnMessageReceived(t wire.Type, payload []byte) Action {
	action := ActionSwallow
	for i, n := range m {
		if a := n.OnMessageReceived(t, payload); i == 0 {
			action = a
		}
	}
	return action
}

// OnMessageSent implements Notifier.
func (m MultiNotifier) OnMessageSent() {
	for _, n := range m {
		n.OnMessageSent()
	}
}

// OnStateChanged implements StateObserver.
func (m MultiNotifier) OnStateChanged(from, to WireState) {
	for _, n := range m {
		if o, ok := n.(StateObserver); ok {
			o.OnStateChanged(from, to)
		}
	}
}
