package network

import (
	"fmt"

	"github.com/golang/glog"

	"github.com/nsec/badge.go/pkg/link"
	"github.com/nsec/badge.go/pkg/wire"
)

// pendingMessage is the single outgoing slot.
type pendingMessage struct {
	present bool
	dir     link.Direction
	msg     wire.Message
}

func (p *pendingMessage) clear() {
	p.present = false
}

// EnqueueMessage stores an application message to be sent in the
// specified direction on the next suitable turn.
func (h *Handler) EnqueueMessage(dir link.Direction, t wire.Type, payload []byte) EnqueueResult {
	if h.state != StateRunning {
		return EnqueueUnconnected
	}
	if !dir.IsValid() || !t.IsApplication() || len(payload) > wire.MaxPayloadSize {
		return EnqueueInvalid
	}
	if h.pending.present {
		return EnqueueFull
	}
	h.pending.msg.Type = t
	if err := h.pending.msg.SetPayload(payload); err != nil {
		return EnqueueInvalid
	}
	h.pending.dir, h.pending.present = dir, true
	return EnqueueQueued
}

// takeTurn sends what this badge has to say and passes the turn on.
// At most one application message goes out per turn, relayed or own,
// so a turn never carries more than a receive buffer can hold.
func (h *Handler) takeTurn() {
	h.holdsTurn = false
	if !h.position.HasNeighbor(h.waveFront) {
		// end of the chain, reflect.
		h.waveFront = h.waveFront.Opposite()
	}
	if h.pending.present {
		switch {
		case !h.position.HasNeighbor(h.pending.dir):
			glog.Warningf("[%s] no neighbor on %s, dropped %s", h.Name, h.pending.dir, h.pending.msg)
			h.drainPending()
		case h.pending.dir != h.waveFront:
		case h.relayed:
			if glog.V(2) {
				glog.Infof("[%s] relayed this turn, %s deferred", h.Name, h.pending.msg)
			}
		default:
			h.write(h.pending.dir, &h.pending.msg)
			h.drainPending()
		}
	}
	h.relayed = false
	h.send(h.waveFront, wire.TypeMonitor)
	h.reverseWaveFront()
}

func (h *Handler) drainPending() {
	h.pending.clear()
	h.notifier.OnMessageSent()
}

func (h *Handler) handleRunningMessage(from link.Direction, msg *wire.Message, now AbsoluteTimeMs) {
	switch {
	case msg.Type == wire.TypeMonitor:
		h.lastMonitorMs = now
		h.holdsTurn = true
	case msg.Type.IsApplication():
		switch action := h.notifier.OnMessageReceived(msg.Type, msg.Payload()); action {
		case ActionSwallow:
		case ActionForward:
			if to := from.Opposite(); h.position.HasNeighbor(to) {
				h.write(to, msg)
				h.relayed = true
			}
		case ActionReset:
			h.abort(fmt.Sprintf("application reset on %s", msg.Type))
		default:
			h.abort(fmt.Sprintf("unknown action %d on %s", action, msg.Type))
		}
	case msg.Type == wire.TypeAnnounce && from == link.Left:
		// a new discovery started on the left.
		announce := *msg
		h.abort("rediscovery")
		h.checkConnections()
		if !h.position.IsConnected() {
			return
		}
		h.connect(now)
		if h.state == StateDiscovery {
			h.handleDiscoveryMessage(from, &announce, now)
		}
	default:
		h.abort(fmt.Sprintf("unexpected %s from %s", msg.Type, from))
	}
}

// checkMonitor aborts a session not receiving the turn in time.
func (h *Handler) checkMonitor(now AbsoluteTimeMs) {
	if now <= h.lastMonitorMs+h.monitorTimeout {
		return
	}
	if h.checkConnections() == topologyChanged {
		glog.Warningf("[%s] monitor timeout, position is now %s", h.Name, h.position)
	}
	h.abort(fmt.Sprintf("no monitor message since %dms", now-h.lastMonitorMs))
}
