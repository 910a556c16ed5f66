package sim

import (
	"context"
	"fmt"

	"github.com/golang/glog"

	fx "github.com/nsec/badge.go/pkg/framework"
	"github.com/nsec/badge.go/pkg/link"
	"github.com/nsec/badge.go/pkg/network"
)

// NotifierFactory creates the notifier of the badge at index i.
type NotifierFactory func(i int, name string) network.Notifier

// Chain is a line of simulated badges. Badge 0 is the left-most one.
// A Chain is not safe for concurrent use: on a Loop, use Do.
type Chain struct {
	NetworkConfig *network.Config
	NewNotifier   NotifierFactory

	badges []*Badge
}

// NewChain creates an empty chain.
func NewChain(conf *network.Config, factory NotifierFactory) *Chain {
	if conf == nil {
		conf = network.Default()
	}
	return &Chain{NetworkConfig: conf, NewNotifier: factory}
}

// Len gets the number of badges.
func (c *Chain) Len() int {
	return len(c.badges)
}

// Badge gets the badge at index i.
func (c *Chain) Badge(i int) (*Badge, error) {
	if i < 0 || i >= len(c.badges) {
		return nil, ErrNoSuchBadge
	}
	return c.badges[i], nil
}

// Badges gets all badges from left to right.
func (c *Chain) Badges() []*Badge {
	return c.badges
}

// Append adds an unplugged badge at the right end.
func (c *Chain) Append() *Badge {
	i := len(c.badges)
	name := fmt.Sprintf("badge%02d", i)
	var notifier network.Notifier
	if c.NewNotifier != nil {
		notifier = c.NewNotifier(i, name)
	}
	b := newBadge(name, c.NetworkConfig, notifier)
	c.badges = append(c.badges, b)
	return b
}

// Connect plugs the right port of badge i into the left port of badge i+1.
func (c *Chain) Connect(i int) error {
	left, right, err := c.pair(i)
	if err != nil {
		return err
	}
	lp, rp := left.ports[link.Right], right.ports[link.Left]
	if lp.Plugged() {
		return &PortError{Badge: left.Name, Direction: link.Right, Plugged: true}
	}
	if rp.Plugged() {
		return &PortError{Badge: right.Name, Direction: link.Left, Plugged: true}
	}
	lp.peer, rp.peer = rp, lp
	glog.V(1).Infof("connected %s and %s", left.Name, right.Name)
	return nil
}

// Split unplugs badge i from badge i+1.
func (c *Chain) Split(i int) error {
	left, right, err := c.pair(i)
	if err != nil {
		return err
	}
	lp, rp := left.ports[link.Right], right.ports[link.Left]
	if lp.peer != rp {
		return &PortError{Badge: left.Name, Direction: link.Right}
	}
	lp.peer, rp.peer = nil, nil
	lp.flush()
	rp.flush()
	glog.V(1).Infof("split %s and %s", left.Name, right.Name)
	return nil
}

// ConnectAll plugs every pair of adjacent badges not plugged yet.
func (c *Chain) ConnectAll() {
	for i := 0; i+1 < len(c.badges); i++ {
		if !c.badges[i].ports[link.Right].Plugged() {
			c.Connect(i)
		}
	}
}

// Step runs every badge once, from left to right.
func (c *Chain) Step(now network.AbsoluteTimeMs) {
	for _, b := range c.badges {
		b.Step(now)
	}
}

func (c *Chain) pair(i int) (*Badge, *Badge, error) {
	left, err := c.Badge(i)
	if err != nil {
		return nil, nil, err
	}
	right, err := c.Badge(i + 1)
	if err != nil {
		return nil, nil, ErrNotAdjacent
	}
	return left, right, nil
}

// Control implements fx.Controller. It applies requests posted by Do
// before stepping the chain.
func (c *Chain) Control(cc fx.ControlContext) error {
	cc.Messages().ProcessMessages(fx.ProcessMessageFunc(func(mc fx.MessageProcessingContext) {
		if req, ok := mc.CurrentMessage().(*Request); ok {
			mc.MessageTaken()
			req.apply(c)
		}
	}))
	c.Step(network.TimeMs(cc.Time()))
	return nil
}

// AddToLoop implements fx.LoopAdder.
func (c *Chain) AddToLoop(l *fx.Loop) {
	l.AddController(fx.PrLvControl, c)
}

// Request runs a func on the Loop owning a Chain.
type Request struct {
	Fn func(*Chain) error

	done chan error
}

func (r *Request) apply(c *Chain) {
	err := r.Fn(c)
	if r.done != nil {
		r.done <- err
	}
}

// Do runs fn on the Loop driving the chain and waits for its result.
func Do(ctx context.Context, l fx.LoopControl, fn func(*Chain) error) error {
	req := &Request{Fn: fn, done: make(chan error, 1)}
	l.PostMessage(req)
	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-req.done:
		return err
	}
}
