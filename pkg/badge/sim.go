package badge

import (
	"github.com/nsec/badge.go/pkg/network"
	"github.com/nsec/badge.go/pkg/sim"
)

// ObserverFactory creates an extra notifier for the badge named name.
type ObserverFactory func(name string) network.Notifier

// SimulatedChain is a simulated chain running an App on each badge.
type SimulatedChain struct {
	*sim.Chain
	Apps []*App

	baseID    string
	observers ObserverFactory
}

// NewSimulatedChain creates n connected badges. Badge ids derive from
// baseID. observers may be nil.
func NewSimulatedChain(n int, conf *network.Config, baseID string, observers ObserverFactory) *SimulatedChain {
	c := &SimulatedChain{baseID: baseID, observers: observers}
	c.Chain = sim.NewChain(conf, c.newNotifier)
	for i := 0; i < n; i++ {
		c.Append()
	}
	c.ConnectAll()
	return c
}

// Append adds an unplugged badge running an App at the right end.
func (c *SimulatedChain) Append() *sim.Badge {
	b := c.Chain.Append()
	c.Apps[len(c.Apps)-1].SetEngine(b.Handler)
	return b
}

// App gets the App of badge i.
func (c *SimulatedChain) App(i int) (*App, error) {
	if i < 0 || i >= len(c.Apps) {
		return nil, sim.ErrNoSuchBadge
	}
	return c.Apps[i], nil
}

func (c *SimulatedChain) newNotifier(i int, name string) network.Notifier {
	app := New(name, IDFromString(c.baseID+"/"+name))
	c.Apps = append(c.Apps, app)
	if c.observers == nil {
		return app
	}
	return network.MultiNotifier{app, c.observers(name)}
}
