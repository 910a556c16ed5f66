// Package stream implements link ports over byte streams, e.g. serial
// devices or sockets.
package stream

import (
	"context"
	"io"
	"io/ioutil"
	"strings"
	"sync"

	"github.com/golang/glog"

	fx "github.com/nsec/badge.go/pkg/framework"
	"github.com/nsec/badge.go/pkg/link"
)

// RxBufferSize is the capacity of the receive buffer of a Port.
const RxBufferSize = 64

// SenseLine reports the presence of a neighbor on one connector.
type SenseLine interface {
	Connected() bool
}

// SenseFunc is the func form of SenseLine.
type SenseFunc func() bool

// Connected implements SenseLine.
func (f SenseFunc) Connected() bool {
	return f()
}

// GPIOLine is the path of a sysfs GPIO value file, "1" when a neighbor
// is plugged in.
type GPIOLine string

// Connected implements SenseLine.
func (l GPIOLine) Connected() bool {
	data, err := ioutil.ReadFile(string(l))
	if err != nil {
		if glog.V(2) {
			glog.Infof("sense line %s: %v", string(l), err)
		}
		return false
	}
	return strings.TrimSpace(string(data)) == "1"
}

// Ports drives both connectors of a badge. A nil stream is a connector
// with nothing plugged in, and a stream which failed is unplugged for
// good. Without a sense line, a working stream reads as connected.
type Ports struct {
	Name string

	ports     [2]*Port
	lock      sync.Mutex
	listening link.Direction
}

// Port is one connector over a stream. Reading happens in the
// background, bytes are kept only while the Port is listening.
type Port struct {
	owner  *Ports
	dir    link.Direction
	stream io.ReadWriter
	sense  SenseLine
	lost   bool

	rx      [RxBufferSize]byte
	rxStart int
	rxLen   int
	dropped int
}

// New creates Ports over the left and right streams.
func New(name string, left, right io.ReadWriter) *Ports {
	p := &Ports{Name: name}
	p.ports[link.Left] = &Port{owner: p, dir: link.Left, stream: left}
	p.ports[link.Right] = &Port{owner: p, dir: link.Right, stream: right}
	return p
}

// Port gets the connector in the specified direction.
func (p *Ports) Port(dir link.Direction) *Port {
	return p.ports[dir]
}

// Ports gets both connectors for the engine.
func (p *Ports) Ports() link.Ports {
	return link.Ports{Left: p.ports[link.Left], Right: p.ports[link.Right]}
}

// SetSenseLines sets the presence sense lines, nil for none.
func (p *Ports) SetSenseLines(left, right SenseLine) *Ports {
	p.lock.Lock()
	defer p.lock.Unlock()
	p.ports[link.Left].sense = left
	p.ports[link.Right].sense = right
	return p
}

// LeftConnected implements link.Sensor.
func (p *Ports) LeftConnected() bool {
	return p.connected(link.Left)
}

// RightConnected implements link.Sensor.
func (p *Ports) RightConnected() bool {
	return p.connected(link.Right)
}

func (p *Ports) connected(dir link.Direction) bool {
	p.lock.Lock()
	port := p.ports[dir]
	usable, sense := port.stream != nil && !port.lost, port.sense
	p.lock.Unlock()
	if !usable {
		return false
	}
	return sense == nil || sense.Connected()
}

// Run implements fx.Runnable. It reads both streams until ctx is done
// or a stream fails. Streams which are io.Closer are closed on return.
func (p *Ports) Run(ctx context.Context) error {
	runner := fx.NewRunnerWith(ctx)
	for _, port := range p.ports {
		if port.stream != nil {
			runner.Go(fx.RunFunc(port.run))
		}
	}
	return runner.Wait()
}

func (p *Port) run(ctx context.Context) error {
	if closer, ok := p.stream.(io.Closer); ok {
		return fx.RunWithContextCloser(ctx, closer, func() error {
			return p.readLoop(ctx)
		})
	}
	return p.readLoop(ctx)
}

func (p *Port) readLoop(ctx context.Context) error {
	buf := make([]byte, RxBufferSize)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		n, err := p.stream.Read(buf)
		if n > 0 {
			p.receive(buf[:n])
		}
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			glog.Errorf("[%s] read %s: %v", p.owner.Name, p.dir, err)
			p.setLost()
			return err
		}
	}
}

func (p *Port) setLost() {
	p.owner.lock.Lock()
	defer p.owner.lock.Unlock()
	p.lost = true
	p.rxStart, p.rxLen = 0, 0
}

// Write implements io.Writer. Bytes written to an unplugged connector
// are lost.
func (p *Port) Write(b []byte) (int, error) {
	p.owner.lock.Lock()
	unplugged := p.stream == nil || p.lost
	p.owner.lock.Unlock()
	if unplugged {
		return len(b), nil
	}
	return p.stream.Write(b)
}

// Listen implements link.Port. Bytes buffered by either port are dropped.
func (p *Port) Listen() {
	p.owner.lock.Lock()
	defer p.owner.lock.Unlock()
	p.owner.listening = p.dir
	for _, port := range p.owner.ports {
		port.rxStart, port.rxLen = 0, 0
	}
}

// Available implements link.Port.
func (p *Port) Available() int {
	p.owner.lock.Lock()
	defer p.owner.lock.Unlock()
	return p.rxLen
}

// ReadByte implements link.Port.
func (p *Port) ReadByte() (byte, error) {
	p.owner.lock.Lock()
	defer p.owner.lock.Unlock()
	if p.rxLen == 0 {
		return 0, io.EOF
	}
	b := p.rx[p.rxStart]
	p.rxStart = (p.rxStart + 1) % RxBufferSize
	p.rxLen--
	return b, nil
}

// Dropped gets the count of bytes lost because the port was not
// listening or the buffer was full.
func (p *Port) Dropped() int {
	p.owner.lock.Lock()
	defer p.owner.lock.Unlock()
	return p.dropped
}

func (p *Port) receive(b []byte) {
	p.owner.lock.Lock()
	defer p.owner.lock.Unlock()
	if p.owner.listening != p.dir {
		p.dropped += len(b)
		return
	}
	for _, c := range b {
		if p.rxLen == RxBufferSize {
			p.dropped++
			continue
		}
		p.rx[(p.rxStart+p.rxLen)%RxBufferSize] = c
		p.rxLen++
	}
}
