package main

import (
	"flag"
	"log"

	fx "github.com/nsec/badge.go/pkg/framework"
	"github.com/nsec/badge.go/pkg/telemetry/mqtt"
	"github.com/nsec/badge.go/pkg/telemetry/msgs"
)

func init() {
	mqtt.SetupFlags()
}

func main() {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds)

	conf := mqtt.Default()
	if !conf.Enabled() {
		log.Fatalln("MQTT broker URL required, use -mqtt or BADGE_MQTT_URL")
	}
	q, err := conf.NewQueue()
	if err != nil {
		log.Fatalln(err)
	}
	defer q.Close()

	reader := &mqtt.EventReader{
		Queue: q,
		Topic: conf.Topic,
		Handler: func(ev *msgs.Event) {
			log.Printf("%s: [%s] %s", ev.Badge, ev.EventKind(), ev.String())
		},
	}
	err = fx.NewRunner().
		HandleSignals().
		Go(fx.NamedRun("events", reader)).
		Wait()
	if err != nil {
		log.Fatalln(err)
	}
}
