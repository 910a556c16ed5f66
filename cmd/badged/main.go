package main

//go-build: CGO_ENABLED=0

import (
	"flag"
	"io"
	"os"

	"github.com/golang/glog"

	"github.com/nsec/badge.go/pkg/badge"
	"github.com/nsec/badge.go/pkg/env"
	fx "github.com/nsec/badge.go/pkg/framework"
	"github.com/nsec/badge.go/pkg/link/stream"
	"github.com/nsec/badge.go/pkg/network"
	"github.com/nsec/badge.go/pkg/telemetry"
	"github.com/nsec/badge.go/pkg/telemetry/mqtt"
)

var (
	leftDevice  string
	rightDevice string
	leftSense   string
	rightSense  string
)

func init() {
	env.SetupFlags()
	network.SetupFlags()
	mqtt.SetupFlags()
	flag.StringVar(&leftDevice, "left", leftDevice, "Serial device of the left connector, already in raw mode.")
	flag.StringVar(&rightDevice, "right", rightDevice, "Serial device of the right connector, already in raw mode.")
	flag.StringVar(&leftSense, "left-sense", leftSense, "GPIO value file of the left presence sense line.")
	flag.StringVar(&rightSense, "right-sense", rightSense, "GPIO value file of the right presence sense line.")
}

func senseLine(path string) stream.SenseLine {
	if path == "" {
		return nil
	}
	return stream.GPIOLine(path)
}

func openDevice(path string) io.ReadWriter {
	if path == "" {
		return nil
	}
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		glog.Exitf("open %s: %v", path, err)
	}
	return f
}

func main() {
	flag.Parse()
	defer glog.Flush()

	id := env.BadgeID()
	ports := stream.New(id, openDevice(leftDevice), openDevice(rightDevice)).
		SetSenseLines(senseLine(leftSense), senseLine(rightSense))
	if leftDevice != "" && rightDevice != "" && (leftSense == "" || rightSense == "") {
		glog.Warning("both connectors without sense lines always read as MIDDLE, no badge will announce")
	}
	app := badge.New(id, badge.IDFromString(id))

	runner := fx.NewRunner().HandleSignals()
	var notifier network.Notifier = app
	if conf := mqtt.Default(); conf.Enabled() {
		q, err := conf.NewQueue()
		if err != nil {
			glog.Exitf("mqtt: %v", err)
		}
		defer q.Close()
		publisher := telemetry.NewPublisher(mqtt.NewEventWriter(q, conf.Topic), telemetry.DefaultQueueSize)
		notifier = network.MultiNotifier{app, publisher.For(id)}
		runner.Go(fx.NamedRun("telemetry", publisher))
	}

	handler := network.Default().NewHandler(ports.Ports(), ports, notifier)
	handler.Name = id
	app.SetEngine(handler)

	runner.Go(
		fx.NamedRun("ports", ports),
		fx.NamedRun("loop", fx.NewLoop().Add(handler)),
	)
	if err := runner.Wait(); err != nil {
		glog.Exit(err)
	}
}
