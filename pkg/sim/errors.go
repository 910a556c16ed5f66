package sim

import (
	"errors"
	"fmt"

	"github.com/nsec/badge.go/pkg/link"
)

var (
	// ErrNoSuchBadge indicates the badge index is out of the chain.
	ErrNoSuchBadge = errors.New("no such badge")
	// ErrNotAdjacent indicates connectors of badges which are not next
	// to each other in the chain.
	ErrNotAdjacent = errors.New("badges are not adjacent")
)

// PortError is returned when a connector is not in the expected state.
type PortError struct {
	Badge     string
	Direction link.Direction
	Plugged   bool
}

// Error implements error.
func (e *PortError) Error() string {
	if e.Plugged {
		return fmt.Sprintf("%s: %s port already plugged", e.Badge, e.Direction)
	}
	return fmt.Sprintf("%s: %s port not plugged", e.Badge, e.Direction)
}
