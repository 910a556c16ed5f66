package badge

import (
	"crypto/sha256"
	"encoding/hex"
)

// IDSize is the size of a badge id on the wire.
const IDSize = 8

// ID identifies a badge.
type ID [IDSize]byte

// IDFromString derives an ID from any string, e.g. a machine id.
func IDFromString(s string) ID {
	var id ID
	sum := sha256.Sum256([]byte(s))
	copy(id[:], sum[:])
	return id
}

func (id ID) String() string {
	return hex.EncodeToString(id[:])
}
