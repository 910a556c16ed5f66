package wire

import (
	"errors"
	"fmt"
)

var (
	// ErrPayloadTooLarge indicates a payload exceeds MaxPayloadSize.
	ErrPayloadTooLarge = errors.New("payload too large")
)

// InvalidTypeError reports a type which can't be put on the wire.
type InvalidTypeError struct {
	Type Type
}

// Error implements error.
func (e *InvalidTypeError) Error() string {
	return fmt.Sprintf("invalid message type 0x%02x", byte(e.Type))
}
