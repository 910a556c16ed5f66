package sim

import (
	"flag"
	"os"
	"strconv"
	"time"

	"github.com/nsec/badge.go/pkg/network"
)

// Config defines a simulation.
type Config struct {
	// Badges is the number of badges created, all connected.
	Badges int
	// Interval is the tick of the Loop.
	Interval time.Duration
}

var defaultConfig = Config{
	Badges:   3,
	Interval: 10 * time.Millisecond,
}

func init() {
	if val := os.Getenv("BADGE_SIM_BADGES"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			defaultConfig.Badges = n
		}
	}
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.IntVar(&defaultConfig.Badges, "badges", defaultConfig.Badges, "Number of simulated badges.")
	flag.DurationVar(&defaultConfig.Interval, "tick", defaultConfig.Interval, "Simulation tick.")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewChain creates a chain with the configured number of badges,
// all connected.
func (c *Config) NewChain(conf *network.Config, factory NotifierFactory) *Chain {
	chain := NewChain(conf, factory)
	for i := 0; i < c.Badges; i++ {
		chain.Append()
	}
	chain.ConnectAll()
	return chain
}
