package main

//go-build: CGO_ENABLED=0

import (
	"flag"
	"time"

	"github.com/golang/glog"

	"github.com/nsec/badge.go/pkg/badge"
	"github.com/nsec/badge.go/pkg/env"
	fx "github.com/nsec/badge.go/pkg/framework"
	"github.com/nsec/badge.go/pkg/network"
	"github.com/nsec/badge.go/pkg/sim"
	"github.com/nsec/badge.go/pkg/telemetry"
	"github.com/nsec/badge.go/pkg/telemetry/mqtt"
	"github.com/nsec/badge.go/pkg/telemetry/websocket"
)

var statusInterval = 5 * time.Second

func init() {
	env.SetupFlags()
	network.SetupFlags()
	sim.SetupFlags()
	mqtt.SetupFlags()
	websocket.SetupFlags()
	flag.DurationVar(&statusInterval, "status-interval", statusInterval, "Interval of status logs, 0 disables them.")
}

func main() {
	flag.Parse()
	defer glog.Flush()

	runner := fx.NewRunner().HandleSignals()

	var writers telemetry.MultiWriter
	if conf := mqtt.Default(); conf.Enabled() {
		q, err := conf.NewQueue()
		if err != nil {
			glog.Exitf("mqtt: %v", err)
		}
		defer q.Close()
		writers = append(writers, mqtt.NewEventWriter(q, conf.Topic))
	}
	if conf := websocket.Default(); conf.Enabled() {
		server := conf.NewServer()
		writers = append(writers, server.Hub)
		runner.Go(fx.NamedRun("websocket", server))
	}

	var observers badge.ObserverFactory
	if len(writers) > 0 {
		publisher := telemetry.NewPublisher(writers, telemetry.DefaultQueueSize)
		observers = func(name string) network.Notifier { return publisher.For(name) }
		runner.Go(fx.NamedRun("telemetry", publisher))
	}

	simConf := sim.Default()
	chain := badge.NewSimulatedChain(simConf.Badges, network.Default(), env.BadgeID(), observers)
	loop := fx.NewLoop()
	loop.Interval = simConf.Interval
	loop.Add(chain)
	if statusInterval > 0 {
		loop.AddController(fx.PrLvPostProc, statusLogger(chain, statusInterval))
	}
	runner.Go(fx.NamedRun("loop", loop))

	if err := runner.Wait(); err != nil {
		glog.Exit(err)
	}
}

func statusLogger(chain *badge.SimulatedChain, interval time.Duration) fx.Controller {
	var last time.Time
	return fx.ControlFunc(func(cc fx.ControlContext) error {
		if cc.Time().Sub(last) < interval {
			return nil
		}
		last = cc.Time()
		for i, b := range chain.Badges() {
			st, app := b.Handler.Status(), chain.Apps[i].Status()
			glog.Infof("%s %s %s id=%d/%d app=%s level=%d", b.Name, st.State, st.Position, st.PeerID, st.PeerCount, app.State, app.SocialLevel)
		}
		return nil
	})
}
