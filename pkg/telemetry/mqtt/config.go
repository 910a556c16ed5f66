package mqtt

import (
	"flag"
	"os"
)

// Config defines the broker connection.
type Config struct {
	// URL is the broker, empty disables MQTT.
	URL string
	// Topic is where events are published, relative to the URL path.
	Topic string
}

// DefaultTopic is the default event topic.
const DefaultTopic = "badges/events"

var defaultConfig = Config{Topic: DefaultTopic}

func init() {
	if val := os.Getenv("BADGE_MQTT_URL"); val != "" {
		defaultConfig.URL = val
	}
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.URL, "mqtt", defaultConfig.URL, "MQTT broker URL, e.g. mqtt://localhost:1883/nsec.")
	flag.StringVar(&defaultConfig.Topic, "mqtt-topic", defaultConfig.Topic, "MQTT topic of events.")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// Enabled indicates a broker is configured.
func (c *Config) Enabled() bool {
	return c.URL != ""
}

// NewQueue creates a Queue and connects it.
func (c *Config) NewQueue() (*Queue, error) {
	q, err := NewQueueFromURL(c.URL)
	if err != nil {
		return nil, err
	}
	if err := q.Connect(); err != nil {
		return nil, err
	}
	return q, nil
}
