package wire

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMessage(t *testing.T) {
	testCases := []struct {
		name    string
		typ     Type
		payload []byte
		expect  []byte
	}{
		{"no payload", TypeMonitor, nil, []byte{MagicByte1, MagicByte2, 0x82, 0}},
		{"announce", TypeAnnounce, []byte{0, 1}, []byte{MagicByte1, MagicByte2, 0x80, 2, 0, 1}},
		{"application", 5, []byte{0xaa}, []byte{MagicByte1, MagicByte2, 5, 1, 0xaa}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			msg, err := NewMessage(tc.typ, tc.payload...)
			require.NoError(t, err)
			require.Equal(t, tc.expect, msg.Bytes())
			require.Equal(t, len(tc.expect), msg.EncodedSize())
			var buf bytes.Buffer
			n, err := msg.WriteTo(&buf)
			require.NoError(t, err)
			require.Equal(t, tc.expect, buf.Bytes())
			require.Equal(t, int64(len(tc.expect)), n)
		})
	}
}

func TestMessageErrors(t *testing.T) {
	_, err := NewMessage(1, make([]byte, MaxPayloadSize+1)...)
	require.Equal(t, ErrPayloadTooLarge, err)
	_, err = NewMessage(0x40)
	require.Error(t, err)
	require.IsType(t, &InvalidTypeError{}, err)
}

func TestType(t *testing.T) {
	require.True(t, TypeAnnounce.IsProtocol())
	require.False(t, TypeAnnounce.IsApplication())
	require.True(t, Type(5).IsApplication())
	require.False(t, Type(5).IsProtocol())
	require.False(t, Type(0x20).IsValid())
	require.False(t, Type(0x83).IsValid())
	require.Equal(t, "APP(5)", Type(5).String())
	require.Equal(t, "MONITOR", TypeMonitor.String())
}
