package network

import (
	"github.com/golang/glog"

	fx "github.com/nsec/badge.go/pkg/framework"
	"github.com/nsec/badge.go/pkg/link"
	"github.com/nsec/badge.go/pkg/wire"
)

// Handler is the protocol engine of one badge.
type Handler struct {
	// Name prefixes log lines.
	Name string

	notifier Notifier
	sensor   link.Sensor
	ports    link.Ports
	parsers  [2]wire.Parser

	waitTicks        uint8
	monitorTimeout   AbsoluteTimeMs
	discoveryTimeout AbsoluteTimeMs

	stateEnteredMs AbsoluteTimeMs
	lastMonitorMs  AbsoluteTimeMs

	leftConnected  bool
	rightConnected bool
	position       link.Position
	state          WireState
	// direction of the wave front by the time the next message arrives.
	waveFront link.Direction
	listening link.Direction
	holdsTurn bool
	// an application message was relayed since the last turn.
	relayed bool
	// runs spent in StateWaitToSendAnnounce.
	ticksInState uint8

	peerID    PeerID
	peerCount uint8

	pending pendingMessage
}

// Status is a snapshot of the engine.
type Status struct {
	State              WireState
	Position           link.Position
	PeerID             PeerID
	PeerCount          uint8
	WaveFrontDirection link.Direction
	ListeningSide      link.Direction
	HoldsTurn          bool
	HasPendingMessage  bool
}

type checkConnectionsResult uint8

const (
	noChange checkConnectionsResult = iota
	topologyChanged
)

// New creates a Handler with the default configuration.
func New(ports link.Ports, sensor link.Sensor, notifier Notifier) *Handler {
	if notifier == nil {
		notifier = &NotifierFuncs{}
	}
	h := &Handler{
		notifier: notifier,
		sensor:   sensor,
		ports:    ports,
	}
	h.SetConfig(&defaultConfig)
	h.reset()
	return h
}

// SetConfig applies timing configuration.
func (h *Handler) SetConfig(c *Config) {
	ticks := c.WaitToAnnounceTicks
	if ticks < 0 {
		ticks = 0
	} else if ticks > 0xff {
		ticks = 0xff
	}
	h.waitTicks = uint8(ticks)
	h.monitorTimeout = DurationMs(c.MonitorTimeout)
	h.discoveryTimeout = DurationMs(c.DiscoveryTimeout)
}

// State gets the wire protocol state.
func (h *Handler) State() WireState {
	return h.state
}

// Position gets the position sensed the last time connectivity changed.
func (h *Handler) Position() link.Position {
	return h.position
}

// PeerID gets the id of this badge. It's zero unless running.
func (h *Handler) PeerID() PeerID {
	if h.state != StateRunning {
		return 0
	}
	return h.peerID
}

// PeerCount gets the number of badges in the chain. It's zero unless running.
func (h *Handler) PeerCount() uint8 {
	if h.state != StateRunning {
		return 0
	}
	return h.peerCount
}

// WaveFrontDirection gets the direction of the wave front by the time
// the next message is received.
func (h *Handler) WaveFrontDirection() link.Direction {
	return h.waveFront
}

// ListeningSide gets the side the next protocol message is expected from.
func (h *Handler) ListeningSide() link.Direction {
	return h.listening
}

// HoldsTurn indicates this badge is allowed to transmit.
func (h *Handler) HoldsTurn() bool {
	return h.holdsTurn
}

// HasPendingMessage indicates the outgoing slot is busy.
func (h *Handler) HasPendingMessage() bool {
	return h.pending.present
}

// Status takes a snapshot.
func (h *Handler) Status() Status {
	return Status{
		State:              h.state,
		Position:           h.position,
		PeerID:             h.PeerID(),
		PeerCount:          h.PeerCount(),
		WaveFrontDirection: h.waveFront,
		ListeningSide:      h.listening,
		HoldsTurn:          h.holdsTurn,
		HasPendingMessage:  h.pending.present,
	}
}

// Run advances the protocol. It must be called periodically.
func (h *Handler) Run(now AbsoluteTimeMs) {
	if h.state == StateUnconnected {
		if h.checkConnections() == topologyChanged && h.position.IsConnected() {
			h.connect(now)
		}
		return
	}

	// Sense only between messages so a bouncing contact in the
	// middle of a message doesn't tear the session down.
	if h.parsers[h.listening].IsIdle() && h.checkConnections() == topologyChanged {
		h.abort("topology changed, now " + h.position.String())
		return
	}

	switch h.state {
	case StateWaitToSendAnnounce:
		if h.ticksInState < h.waitTicks {
			h.ticksInState++
			return
		}
		h.peerID, h.peerCount = 0, 1
		h.send(link.Right, wire.TypeAnnounce, 0, 1)
		h.waveFront = link.Left
		h.listen(link.Right)
		h.enterDiscovery(now)
	case StateDiscovery:
		if now > h.stateEnteredMs+h.discoveryTimeout {
			h.abort("discovery timeout")
			return
		}
		h.receive(now)
	case StateRunning:
		h.receive(now)
	}

	if h.state == StateRunning {
		if h.holdsTurn {
			h.takeTurn()
		}
		h.checkMonitor(now)
	}
}

// Control implements fx.Controller.
func (h *Handler) Control(cc fx.ControlContext) error {
	h.Run(TimeMs(cc.Time()))
	return nil
}

// AddToLoop implements fx.LoopAdder.
func (h *Handler) AddToLoop(l *fx.Loop) {
	l.AddController(fx.PrLvControl, h)
}

func (h *Handler) connect(now AbsoluteTimeMs) {
	if h.position == link.LeftMost {
		h.ticksInState = 0
		h.setState(StateWaitToSendAnnounce, now)
		return
	}
	h.waveFront = link.Right
	h.listen(link.Left)
	h.enterDiscovery(now)
}

func (h *Handler) enterDiscovery(now AbsoluteTimeMs) {
	h.setState(StateDiscovery, now)
	h.notifier.OnPairingBegin()
}

func (h *Handler) setState(state WireState, now AbsoluteTimeMs) {
	from := h.state
	h.state, h.stateEnteredMs = state, now
	if glog.V(1) {
		glog.Infof("[%s] wire protocol state: %s -> %s", h.Name, from, state)
	}
	if o, ok := h.notifier.(StateObserver); ok && from != state {
		o.OnStateChanged(from, state)
	}
}

func (h *Handler) checkConnections() checkConnectionsResult {
	var left, right bool
	if h.sensor != nil {
		left, right = h.sensor.LeftConnected(), h.sensor.RightConnected()
	}
	if left == h.leftConnected && right == h.rightConnected {
		return noChange
	}
	h.leftConnected, h.rightConnected = left, right
	h.position = link.Classify(left, right)
	if glog.V(1) {
		glog.Infof("[%s] position: %s", h.Name, h.position)
	}
	return topologyChanged
}

// abort resets the session and notifies a disconnection.
func (h *Handler) abort(reason string) {
	glog.Warningf("[%s] reset in %s: %s", h.Name, h.state, reason)
	wasConnected := h.state != StateUnconnected
	h.reset()
	if wasConnected {
		h.notifier.OnDisconnection()
	}
}

func (h *Handler) reset() {
	if h.state != StateUnconnected {
		h.setState(StateUnconnected, h.stateEnteredMs)
	}
	h.leftConnected, h.rightConnected = false, false
	h.position = link.Unknown
	h.waveFront = link.Right
	h.holdsTurn, h.relayed = false, false
	h.ticksInState = 0
	h.peerID, h.peerCount = 0, 0
	h.pending.clear()
	h.parsers[link.Right].Reset()
	h.listen(link.Left)
}

func (h *Handler) listen(side link.Direction) {
	h.listening = side
	h.parsers[side].Reset()
	if port := h.ports.On(side); port != nil {
		port.Listen()
	}
}

func (h *Handler) reverseWaveFront() {
	h.waveFront = h.waveFront.Opposite()
	h.listen(h.waveFront.Opposite())
}

// receive parses bytes from the listening side and dispatches
// completed messages.
func (h *Handler) receive(now AbsoluteTimeMs) {
	side := h.listening
	port := h.ports.On(side)
	if port == nil {
		return
	}
	parser := &h.parsers[side]
	for port.Available() > 0 {
		b, err := port.ReadByte()
		if err != nil {
			glog.Warningf("[%s] read %s: %v", h.Name, side, err)
			return
		}
		if parser.Parse(b) != wire.Complete {
			continue
		}
		msg := parser.Message()
		if glog.V(2) {
			glog.Infof("[%s] RCV %s from %s", h.Name, msg, side)
		}
		switch h.state {
		case StateDiscovery:
			h.handleDiscoveryMessage(side, msg, now)
		case StateRunning:
			h.handleRunningMessage(side, msg, now)
		}
		if h.state == StateUnconnected || h.listening != side {
			return
		}
	}
}

func (h *Handler) send(dir link.Direction, t wire.Type, payload ...byte) {
	msg := wire.Message{Type: t}
	if err := msg.SetPayload(payload); err != nil {
		glog.Errorf("[%s] send %s: %v", h.Name, t, err)
		return
	}
	h.write(dir, &msg)
}

func (h *Handler) write(dir link.Direction, msg *wire.Message) {
	port := h.ports.On(dir)
	if port == nil {
		return
	}
	if glog.V(2) {
		glog.Infof("[%s] SND %s to %s", h.Name, msg, dir)
	}
	if _, err := msg.WriteTo(port); err != nil {
		glog.Warningf("[%s] write %s: %v", h.Name, dir, err)
	}
}
