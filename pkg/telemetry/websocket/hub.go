// Package websocket streams telemetry packets to websocket clients.
package websocket

import (
	"context"
	"net"
	"net/http"
	"sync"

	"github.com/golang/glog"
	"golang.org/x/net/websocket"

	fx "github.com/nsec/badge.go/pkg/framework"
)

// ClientQueueSize is the number of packets buffered per client.
const ClientQueueSize = 64

// Hub broadcasts packets to all connected clients. A client too slow to
// keep up loses packets.
type Hub struct {
	lock    sync.Mutex
	clients map[*client]struct{}
}

type client struct {
	conn *websocket.Conn
	pkts chan []byte
}

// NewHub creates a Hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[*client]struct{})}
}

// Clients gets the number of connected clients.
func (h *Hub) Clients() int {
	h.lock.Lock()
	defer h.lock.Unlock()
	return len(h.clients)
}

// WritePacket implements telemetry.PacketWriter. Clients get packets of
// all badges.
func (h *Hub) WritePacket(source string, pkt []byte) error {
	h.lock.Lock()
	defer h.lock.Unlock()
	for c := range h.clients {
		select {
		case c.pkts <- pkt:
		default:
			glog.V(2).Infof("websocket client %s is slow, packet dropped", c.conn.Request().RemoteAddr)
		}
	}
	return nil
}

// Handler serves the websocket endpoint.
func (h *Hub) Handler() http.Handler {
	return websocket.Handler(h.serve)
}

func (h *Hub) serve(conn *websocket.Conn) {
	c := &client{conn: conn, pkts: make(chan []byte, ClientQueueSize)}
	h.lock.Lock()
	h.clients[c] = struct{}{}
	h.lock.Unlock()
	glog.V(1).Infof("websocket client %s connected", conn.Request().RemoteAddr)

	defer func() {
		h.lock.Lock()
		delete(h.clients, c)
		h.lock.Unlock()
		conn.Close()
		glog.V(1).Infof("websocket client %s disconnected", conn.Request().RemoteAddr)
	}()

	// detect clients going away, nothing is expected from them.
	closed := make(chan struct{})
	go func() {
		var discard []byte
		for websocket.Message.Receive(conn, &discard) == nil {
		}
		close(closed)
	}()

	for {
		select {
		case <-closed:
			return
		case pkt := <-c.pkts:
			if err := websocket.Message.Send(conn, pkt); err != nil {
				glog.Warningf("websocket send: %v", err)
				return
			}
		}
	}
}

// Server serves a Hub over HTTP.
type Server struct {
	Addr string
	Path string
	Hub  *Hub
}

// DefaultPath is the endpoint of the event stream.
const DefaultPath = "/events"

// Run implements fx.Runnable.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return err
	}
	path := s.Path
	if path == "" {
		path = DefaultPath
	}
	mux := http.NewServeMux()
	mux.Handle(path, s.Hub.Handler())
	glog.Infof("serving events on ws://%s%s", ln.Addr(), path)
	return fx.RunWithContextCloser(ctx, ln, func() error {
		return http.Serve(ln, mux)
	})
}
