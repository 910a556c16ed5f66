package websocket

import (
	"flag"
	"os"
)

// Config defines the websocket endpoint.
type Config struct {
	// Addr is the listen address, empty disables the endpoint.
	Addr string
	Path string
}

var defaultConfig = Config{Path: DefaultPath}

func init() {
	if val := os.Getenv("BADGE_WS_ADDR"); val != "" {
		defaultConfig.Addr = val
	}
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.Addr, "ws", defaultConfig.Addr, "Serve events over websocket on this address, e.g. :8080.")
	flag.StringVar(&defaultConfig.Path, "ws-path", defaultConfig.Path, "Path of the websocket endpoint.")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// Enabled indicates the endpoint is configured.
func (c *Config) Enabled() bool {
	return c.Addr != ""
}

// NewServer creates a Server with a new Hub.
func (c *Config) NewServer() *Server {
	return &Server{Addr: c.Addr, Path: c.Path, Hub: NewHub()}
}
