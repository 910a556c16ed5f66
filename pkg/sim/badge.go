package sim

import (
	"github.com/nsec/badge.go/pkg/link"
	"github.com/nsec/badge.go/pkg/network"
)

// Stepper runs on every step of a Badge, after its engine.
type Stepper interface {
	Step(now network.AbsoluteTimeMs)
}

// StepFunc is the func form of Stepper.
type StepFunc func(network.AbsoluteTimeMs)

// Step implements Stepper.
func (f StepFunc) Step(now network.AbsoluteTimeMs) {
	f(now)
}

// Badge is a simulated badge: two ports, presence sensing and an engine.
type Badge struct {
	Name    string
	Handler *network.Handler

	ports     [2]*Port
	listening link.Direction
	steppers  []Stepper
}

func newBadge(name string, conf *network.Config, notifier network.Notifier) *Badge {
	b := &Badge{Name: name}
	for _, dir := range []link.Direction{link.Left, link.Right} {
		b.ports[dir] = &Port{badge: b, dir: dir}
	}
	b.Handler = conf.NewHandler(b.Ports(), b, notifier)
	b.Handler.Name = name
	return b
}

// Ports gets both connectors.
func (b *Badge) Ports() link.Ports {
	return link.Ports{Left: b.ports[link.Left], Right: b.ports[link.Right]}
}

// Port gets the connector in the specified direction.
func (b *Badge) Port(dir link.Direction) *Port {
	return b.ports[dir]
}

// LeftConnected implements link.Sensor.
func (b *Badge) LeftConnected() bool {
	return b.ports[link.Left].Plugged()
}

// RightConnected implements link.Sensor.
func (b *Badge) RightConnected() bool {
	return b.ports[link.Right].Plugged()
}

// ListeningSide gets the port currently receiving.
func (b *Badge) ListeningSide() link.Direction {
	return b.listening
}

// Attach adds steppers to run after the engine.
func (b *Badge) Attach(steppers ...Stepper) *Badge {
	b.steppers = append(b.steppers, steppers...)
	return b
}

// Step runs the engine and the attached steppers once.
func (b *Badge) Step(now network.AbsoluteTimeMs) {
	b.Handler.Run(now)
	for _, s := range b.steppers {
		s.Step(now)
	}
}
