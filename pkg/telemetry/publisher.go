// Package telemetry publishes engine events of badges to observers
// outside the Loop, such as an MQTT broker or websocket clients.
package telemetry

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/golang/glog"

	fx "github.com/nsec/badge.go/pkg/framework"
	"github.com/nsec/badge.go/pkg/network"
	"github.com/nsec/badge.go/pkg/telemetry/msgs"
	"github.com/nsec/badge.go/pkg/wire"
)

// PacketWriter writes packets in bytes. source is the name of the badge
// the packet is about.
type PacketWriter interface {
	WritePacket(source string, pkt []byte) error
}

// PacketWriterFunc is the func form of PacketWriter.
type PacketWriterFunc func(source string, pkt []byte) error

// WritePacket implements PacketWriter.
func (f PacketWriterFunc) WritePacket(source string, pkt []byte) error {
	return f(source, pkt)
}

// MultiWriter writes packets to all writers.
type MultiWriter []PacketWriter

// WritePacket implements PacketWriter.
func (w MultiWriter) WritePacket(source string, pkt []byte) error {
	var errs fx.AggregatedError
	for _, writer := range w {
		errs.Add(writer.WritePacket(source, pkt))
	}
	return errs.Aggregate()
}

// DefaultQueueSize is the number of events buffered by a Publisher.
const DefaultQueueSize = 256

// Publisher encodes events and writes them out of the Loop.
// Notifiers never block: events are dropped when the queue is full.
type Publisher struct {
	Writer PacketWriter
	Clock  func() time.Time

	events  chan *msgs.Event
	dropped uint64
}

// NewPublisher creates a Publisher.
func NewPublisher(w PacketWriter, queueSize int) *Publisher {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	return &Publisher{Writer: w, Clock: time.Now, events: make(chan *msgs.Event, queueSize)}
}

// Dropped gets the number of events dropped.
func (p *Publisher) Dropped() uint64 {
	return atomic.LoadUint64(&p.dropped)
}

// For creates the notifier of one badge.
func (p *Publisher) For(badge string) *BadgeNotifier {
	return &BadgeNotifier{publisher: p, badge: badge}
}

// Run implements fx.Runnable.
func (p *Publisher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-p.events:
			p.write(ev)
		}
	}
}

func (p *Publisher) write(ev *msgs.Event) {
	data, err := ev.Encode()
	if err != nil {
		glog.Errorf("encode event %s: %v", ev, err)
		return
	}
	if err := p.Writer.WritePacket(ev.Badge, data); err != nil {
		glog.Warningf("publish event %s: %v", ev.EventKind(), err)
	}
}

func (p *Publisher) publish(ev *msgs.Event) {
	ev.TimeMs = uint64(network.TimeMs(p.Clock()))
	select {
	case p.events <- ev:
	default:
		if n := atomic.AddUint64(&p.dropped, 1); n == 1 || n%100 == 0 {
			glog.Warningf("telemetry queue full, %d events dropped", n)
		}
	}
}

// BadgeNotifier converts engine events of a badge into telemetry events.
// It observes only: received messages are swallowed, so it must not be
// the first of a network.MultiNotifier.
type BadgeNotifier struct {
	publisher *Publisher
	badge     string
}

func (n *BadgeNotifier) event(kind msgs.EventKind) *msgs.Event {
	return &msgs.Event{Badge: n.badge, Kind: uint32(kind)}
}

// OnDisconnection implements network.Notifier.
func (n *BadgeNotifier) OnDisconnection() {
	n.publisher.publish(n.event(msgs.EventDisconnection))
}

// OnPairingBegin implements network.Notifier.
func (n *BadgeNotifier) OnPairingBegin() {
	n.publisher.publish(n.event(msgs.EventPairingBegin))
}

// OnPairingEnd implements network.Notifier.
func (n *BadgeNotifier) OnPairingEnd(id network.PeerID, peerCount uint8) {
	ev := n.event(msgs.EventPairingEnd)
	ev.PeerID, ev.PeerCount = uint32(id), uint32(peerCount)
	n.publisher.publish(ev)
}

// OnMessageReceived implements network.Notifier.
func (n *BadgeNotifier) OnMessageReceived(t wire.Type, payload []byte) network.Action {
	ev := n.event(msgs.EventMessageReceived)
	ev.MessageType = uint32(t)
	ev.Payload = append([]byte(nil), payload...)
	n.publisher.publish(ev)
	return network.ActionSwallow
}

// OnMessageSent implements network.Notifier.
func (n *BadgeNotifier) OnMessageSent() {
	n.publisher.publish(n.event(msgs.EventMessageSent))
}

// OnStateChanged implements network.StateObserver.
func (n *BadgeNotifier) OnStateChanged(from, to network.WireState) {
	ev := n.event(msgs.EventStateChanged)
	ev.FromState, ev.State = from.String(), to.String()
	n.publisher.publish(ev)
}
