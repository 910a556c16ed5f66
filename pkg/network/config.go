package network

import (
	"flag"
	"time"

	"github.com/nsec/badge.go/pkg/link"
)

// Config defines the timing of the wire protocol.
type Config struct {
	// WaitToAnnounceTicks is the number of runs the left-most badge waits
	// before announcing, so neighbors are listening.
	WaitToAnnounceTicks int
	// MonitorTimeout is the longest time without receiving the turn
	// before the session is considered lost.
	MonitorTimeout time.Duration
	// DiscoveryTimeout is the longest time spent in discovery.
	DiscoveryTimeout time.Duration
}

// Defaults
const (
	DefaultWaitToAnnounceTicks = 3
	DefaultMonitorTimeout      = 1000 * time.Millisecond
	DefaultDiscoveryTimeout    = 2000 * time.Millisecond
)

var defaultConfig = Config{
	WaitToAnnounceTicks: DefaultWaitToAnnounceTicks,
	MonitorTimeout:      DefaultMonitorTimeout,
	DiscoveryTimeout:    DefaultDiscoveryTimeout,
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.IntVar(&defaultConfig.WaitToAnnounceTicks, "wait-ticks", defaultConfig.WaitToAnnounceTicks, "Ticks the left-most badge waits before announcing.")
	flag.DurationVar(&defaultConfig.MonitorTimeout, "monitor-timeout", defaultConfig.MonitorTimeout, "Reset a running session not receiving the turn within this duration.")
	flag.DurationVar(&defaultConfig.DiscoveryTimeout, "discovery-timeout", defaultConfig.DiscoveryTimeout, "Reset a discovery not completing within this duration.")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a config with defaults.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// NewHandler creates a Handler using the config.
func (c *Config) NewHandler(ports link.Ports, sensor link.Sensor, notifier Notifier) *Handler {
	h := New(ports, sensor, notifier)
	h.SetConfig(c)
	return h
}
