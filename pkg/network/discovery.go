package network

import (
	"fmt"

	"github.com/golang/glog"

	"github.com/nsec/badge.go/pkg/link"
	"github.com/nsec/badge.go/pkg/wire"
)

func (h *Handler) handleDiscoveryMessage(from link.Direction, msg *wire.Message, now AbsoluteTimeMs) {
	switch {
	case msg.Type == wire.TypeAnnounce && from == link.Left:
		p := msg.Payload()
		if len(p) != 2 || p[0] >= MaxPeerCount-1 || p[1] != p[0]+1 {
			h.abort(fmt.Sprintf("invalid announce %s", msg))
			return
		}
		h.peerID, h.peerCount = PeerID(p[0]+1), p[1]+1
		if h.position.HasNeighbor(link.Right) {
			h.send(link.Right, wire.TypeAnnounce, byte(h.peerID), h.peerCount)
			h.waveFront = link.Left
			h.listen(link.Right)
			return
		}
		// right-most, the sweep is reflected.
		h.send(link.Left, wire.TypeAnnounceReply, h.peerCount)
		h.enterRunning(now)
	case msg.Type == wire.TypeAnnounceReply && from == link.Right:
		p := msg.Payload()
		if len(p) != 1 || p[0] <= uint8(h.peerID) || p[0] > MaxPeerCount {
			h.abort(fmt.Sprintf("invalid announce reply %s", msg))
			return
		}
		h.peerCount = p[0]
		if h.position.HasNeighbor(link.Left) {
			h.send(link.Left, wire.TypeAnnounceReply, h.peerCount)
		}
		h.enterRunning(now)
	default:
		h.abort(fmt.Sprintf("unexpected %s from %s", msg.Type, from))
	}
}

func (h *Handler) enterRunning(now AbsoluteTimeMs) {
	h.lastMonitorMs = now
	h.waveFront = link.Right
	h.holdsTurn = h.peerID == 0
	if !h.holdsTurn {
		h.listen(link.Left)
	}
	h.setState(StateRunning, now)
	if glog.V(1) {
		glog.Infof("[%s] paired: id %d of %d", h.Name, h.peerID, h.peerCount)
	}
	h.notifier.OnPairingEnd(h.peerID, h.peerCount)
}
