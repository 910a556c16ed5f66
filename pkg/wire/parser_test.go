package wire

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

type parserTestSequence struct {
	in     []byte
	state  ReceptionState
	result ParseResult
	msg    *Message
}

type parserTestSequenceBuilder struct {
	seq []parserTestSequence
}

func parserTestSequences() *parserTestSequenceBuilder {
	return &parserTestSequenceBuilder{}
}

func (b *parserTestSequenceBuilder) on(in ...byte) *parserTestSequenceBuilder {
	b.seq = append(b.seq, parserTestSequence{in: in})
	return b
}

func (b *parserTestSequenceBuilder) stays(state ReceptionState) *parserTestSequenceBuilder {
	b.seq[len(b.seq)-1].state = state
	return b
}

func (b *parserTestSequenceBuilder) message(t Type, payload ...byte) *parserTestSequenceBuilder {
	msg, err := NewMessage(t, payload...)
	if err != nil {
		panic(err)
	}
	s := &b.seq[len(b.seq)-1]
	s.result, s.msg, s.state = Complete, &msg, ReceiveMagicByte1
	return b
}

func (b *parserTestSequenceBuilder) build() []parserTestSequence {
	return b.seq
}

func TestParser(t *testing.T) {
	testCases := []struct {
		name string
		seq  []parserTestSequence
	}{
		{
			name: "empty payload",
			seq: parserTestSequences().
				on(MagicByte1, MagicByte2, 3, 0).message(3).
				build(),
		},
		{
			name: "payload",
			seq: parserTestSequences().
				on(MagicByte1, MagicByte2, 5, 1, 0xaa).message(5, 0xaa).
				on(MagicByte1, MagicByte2, byte(TypeAnnounce), 2, 0, 1).message(TypeAnnounce, 0, 1).
				build(),
		},
		{
			name: "skip leading noise",
			seq: parserTestSequences().
				on(1, 2, 3, MagicByte2, 0xff).stays(ReceiveMagicByte1).
				on(MagicByte1, MagicByte2, byte(TypeMonitor), 0).message(TypeMonitor).
				build(),
		},
		{
			name: "bad second magic byte",
			seq: parserTestSequences().
				on(MagicByte1, 0x00).stays(ReceiveMagicByte1).
				on(MagicByte2, 2, 0).stays(ReceiveMagicByte1).
				on(MagicByte1, MagicByte2, 2, 0).message(2).
				build(),
		},
		{
			name: "repeated first magic byte",
			seq: parserTestSequences().
				on(MagicByte1, MagicByte1).stays(ReceiveMagicByte2).
				on(MagicByte2, 7, 1, 9).message(7, 9).
				build(),
		},
		{
			name: "oversize length",
			seq: parserTestSequences().
				on(MagicByte1, MagicByte2, 1, MaxPayloadSize+1).stays(ReceiveMagicByte1).
				on(1, 2, 3).stays(ReceiveMagicByte1).
				on(MagicByte1, MagicByte2, 1, 1, 4).message(1, 4).
				build(),
		},
		{
			name: "invalid type",
			seq: parserTestSequences().
				on(MagicByte1, MagicByte2, 0x40).stays(ReceiveMagicByte1).
				on(0, MagicByte1, MagicByte2, 0x1f, 0).message(0x1f).
				build(),
		},
		{
			name: "truncated",
			seq: parserTestSequences().
				on(MagicByte1).stays(ReceiveMagicByte2).
				on(MagicByte2).stays(ReceiveHeader).
				on(4).stays(ReceiveHeader).
				on(3, 1, 2).stays(ReceivePayload).
				on(3).message(4, 1, 2, 3).
				build(),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var parser Parser
			for n, s := range tc.seq {
				var pr ParseResult
				for i, b := range s.in {
					pr = parser.Parse(b)
					if i+1 < len(s.in) {
						require.Equalf(t, Incomplete, pr, "seq[%d][%d] unexpected result", n, i)
					}
				}
				require.Equalf(t, s.result, pr, "seq[%d] result mismatch", n)
				require.Equalf(t, s.state, parser.State(), "seq[%d] state mismatch", n)
				if s.msg != nil {
					require.Equalf(t, s.msg.Type, parser.Message().Type, "seq[%d] type mismatch", n)
					require.Equalf(t, s.msg.Payload(), parser.Message().Payload(), "seq[%d] payload mismatch", n)
				}
			}
		})
	}
}

func TestParserRoundTrip(t *testing.T) {
	types := []Type{0, 5, MaxApplicationType, TypeAnnounce, TypeAnnounceReply, TypeMonitor}
	for _, typ := range types {
		for size := 0; size <= MaxPayloadSize; size++ {
			t.Run(fmt.Sprintf("%s/%d", typ, size), func(t *testing.T) {
				payload := make([]byte, size)
				for i := range payload {
					payload[i] = byte(i*7) ^ MagicByte1
				}
				msg, err := NewMessage(typ, payload...)
				require.NoError(t, err)

				var parser Parser
				encoded := msg.Bytes()
				for i, b := range encoded {
					pr := parser.Parse(b)
					if i+1 < len(encoded) {
						require.Equal(t, Incomplete, pr)
						if parser.State() == ReceivePayload {
							require.NotZero(t, parser.PayloadBytesToReceive())
						} else {
							require.Zero(t, parser.PayloadBytesToReceive())
						}
					} else {
						require.Equal(t, Complete, pr)
					}
				}
				require.True(t, parser.IsIdle())
				require.Equal(t, typ, parser.Message().Type)
				require.Equal(t, payload, parser.Message().Payload())
			})
		}
	}
}

func TestParserNeverCompletesOnCorruptedMagic(t *testing.T) {
	msg, err := NewMessage(3, 1, 2, 3)
	require.NoError(t, err)
	encoded := msg.Bytes()
	for corrupt := 0; corrupt < 2; corrupt++ {
		stream := append([]byte(nil), encoded...)
		stream[corrupt] ^= 0xff
		var parser Parser
		for _, b := range stream {
			require.Equal(t, Incomplete, parser.Parse(b))
		}
	}
	for cut := 0; cut < len(encoded); cut++ {
		var parser Parser
		for _, b := range encoded[:cut] {
			require.Equal(t, Incomplete, parser.Parse(b))
		}
	}
}

func TestParserReset(t *testing.T) {
	var parser Parser
	parser.Parse(MagicByte1)
	parser.Parse(MagicByte2)
	parser.Parse(1)
	parser.Parse(4)
	require.Equal(t, ReceivePayload, parser.State())
	parser.Reset()
	require.Equal(t, ReceiveMagicByte1, parser.State())
	require.Zero(t, parser.PayloadBytesToReceive())
}
