package websocket

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/net/websocket"
)

func TestHubBroadcast(t *testing.T) {
	hub := NewHub()
	srv := httptest.NewServer(hub.Handler())
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, err := websocket.Dial(url, "", srv.URL)
	require.NoError(t, err)
	defer conn.Close()

	deadline := time.Now().Add(time.Second)
	for hub.Clients() == 0 {
		require.True(t, time.Now().Before(deadline), "client not registered")
		time.Sleep(time.Millisecond)
	}

	require.NoError(t, hub.WritePacket("badge01", []byte{1, 2, 3}))
	var pkt []byte
	conn.SetReadDeadline(time.Now().Add(time.Second))
	require.NoError(t, websocket.Message.Receive(conn, &pkt))
	require.Equal(t, []byte{1, 2, 3}, pkt)

	conn.Close()
	deadline = time.Now().Add(time.Second)
	for hub.Clients() != 0 {
		require.True(t, time.Now().Before(deadline), "client not removed")
		time.Sleep(time.Millisecond)
	}
}
