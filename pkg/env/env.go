// Package env provides the identity of the badge running this process.
package env

import (
	"flag"
	"os"

	"github.com/denisbrodbeck/machineid"
)

// AppID scopes the protected machine id so it can't be correlated with
// ids derived by other applications.
const AppID = "nsec-badge"

// Config defines the identity of the badge.
type Config struct {
	// BadgeID overrides the machine derived id.
	BadgeID string
}

var defaultConfig Config

func init() {
	defaultConfig.BadgeID = os.Getenv("BADGE_ID")
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.BadgeID, "badge-id", defaultConfig.BadgeID, "Badge id, defaults to one derived from the machine id.")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// ID gets the configured badge id, or derives one from the machine id.
func (c *Config) ID() (string, error) {
	if c.BadgeID != "" {
		return c.BadgeID, nil
	}
	return machineid.ProtectedID(AppID)
}

// BadgeID gets the badge id from the default config, and panics if the
// machine id is not available.
func BadgeID() string {
	id, err := defaultConfig.ID()
	if err != nil {
		panic(err)
	}
	return id
}
