package msgs

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEventEncoding(t *testing.T) {
	ev := &Event{
		Badge:       "badge01",
		Kind:        uint32(EventPairingEnd),
		TimeMs:      1234,
		State:       "RUNNING",
		PeerID:      1,
		PeerCount:   3,
		MessageType: 5,
		Payload:     []byte{0xaa},
	}
	data, err := ev.Encode()
	require.NoError(t, err)
	decoded, err := DecodeEvent(data)
	require.NoError(t, err)
	require.Equal(t, ev.Badge, decoded.Badge)
	require.Equal(t, EventPairingEnd, decoded.EventKind())
	require.Equal(t, ev.PeerCount, decoded.PeerCount)
	require.Equal(t, ev.Payload, decoded.Payload)
	require.Contains(t, decoded.String(), `badge:"badge01"`)

	_, err = DecodeEvent([]byte{0xff, 0xff})
	require.Error(t, err)
}
