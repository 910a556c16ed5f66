package sim

import (
	"io"

	"github.com/nsec/badge.go/pkg/link"
)

// RxBufferSize is the capacity of the receive buffer of a Port.
const RxBufferSize = 64

// Port is a simulated half-duplex serial connector.
type Port struct {
	badge *Badge
	dir   link.Direction
	peer  *Port

	rx      [RxBufferSize]byte
	rxStart int
	rxLen   int

	// Dropped counts bytes lost because the receiving side was not
	// listening or the buffer was full.
	Dropped int
}

// Write implements io.Writer. Like a real UART, writing never fails:
// bytes sent to nobody are lost.
func (p *Port) Write(b []byte) (int, error) {
	if peer := p.peer; peer != nil {
		peer.receive(b)
	}
	return len(b), nil
}

// Listen implements link.Port. Bytes buffered by either port are dropped.
func (p *Port) Listen() {
	p.badge.listening = p.dir
	p.badge.ports[link.Left].flush()
	p.badge.ports[link.Right].flush()
}

// Available implements link.Port.
func (p *Port) Available() int {
	return p.rxLen
}

// ReadByte implements link.Port.
func (p *Port) ReadByte() (byte, error) {
	if p.rxLen == 0 {
		return 0, io.EOF
	}
	b := p.rx[p.rxStart]
	p.rxStart = (p.rxStart + 1) % RxBufferSize
	p.rxLen--
	return b, nil
}

// Plugged indicates a peer is connected.
func (p *Port) Plugged() bool {
	return p.peer != nil
}

func (p *Port) receive(b []byte) {
	if p.badge.listening != p.dir {
		p.Dropped += len(b)
		return
	}
	for _, c := range b {
		if p.rxLen == RxBufferSize {
			p.Dropped++
			continue
		}
		p.rx[(p.rxStart+p.rxLen)%RxBufferSize] = c
		p.rxLen++
	}
}

func (p *Port) flush() {
	p.rxStart, p.rxLen = 0, 0
}
