package mqtt

import (
	"context"

	"github.com/golang/glog"

	"github.com/nsec/badge.go/pkg/telemetry/msgs"
)

// EventWriter publishes packets of encoded events. Events of a badge go
// to Topic/<badge>.
type EventWriter struct {
	Queue *Queue
	Topic string
}

// NewEventWriter creates an EventWriter.
func NewEventWriter(q *Queue, topic string) *EventWriter {
	return &EventWriter{Queue: q, Topic: topic}
}

// WritePacket implements telemetry.PacketWriter.
func (w *EventWriter) WritePacket(source string, pkt []byte) error {
	token := w.Queue.Pub(w.TopicOf(source), pkt)
	token.Wait()
	return token.Error()
}

// TopicOf gets the topic of events from the badge source.
func (w *EventWriter) TopicOf(source string) string {
	if source == "" {
		return w.Topic
	}
	return w.Topic + "/" + source
}

// EventHandler handles a decoded event.
type EventHandler func(*msgs.Event)

// EventReader subscribes events of all badges.
type EventReader struct {
	Queue   *Queue
	Topic   string
	Handler EventHandler
}

// Run implements fx.Runnable.
func (r *EventReader) Run(ctx context.Context) error {
	sub := r.Queue.Sub(r.Topic+"/#", func(topic string, payload []byte) {
		ev, err := msgs.DecodeEvent(payload)
		if err != nil {
			glog.Warningf("invalid event on %q: %v", topic, err)
			return
		}
		r.Handler(ev)
	})
	defer sub.Close()
	<-ctx.Done()
	return ctx.Err()
}
