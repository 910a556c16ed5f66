// Package link abstracts the physical side of a badge: the two half-duplex
// serial connectors and the presence sense lines next to them.
package link

import "io"

// Direction is the relative position of a peer.
type Direction uint8

// Directions.
const (
	Left Direction = iota
	Right
)

// Opposite returns the other direction.
func (d Direction) Opposite() Direction {
	if d == Left {
		return Right
	}
	return Left
}

// IsValid checks if the value is a defined direction.
func (d Direction) IsValid() bool {
	return d == Left || d == Right
}

func (d Direction) String() string {
	switch d {
	case Left:
		return "LEFT"
	case Right:
		return "RIGHT"
	}
	return "INVALID"
}

// Sensor reports presence of neighbors on both connectors.
// A missing sense line reads as not connected.
type Sensor interface {
	LeftConnected() bool
	RightConnected() bool
}

// Port is one half-duplex serial connector.
//
// Only one port of a badge receives at a time: calling Listen on a port
// stops the other one, and bytes arriving on a port which is not listening
// are lost.
type Port interface {
	io.Writer
	// Listen makes this port the receiving one.
	Listen()
	// Available returns the count of received bytes ready to be read.
	Available() int
	// ReadByte reads one received byte.
	ReadByte() (byte, error)
}

// Ports bundles both connectors of a badge.
type Ports struct {
	Left  Port
	Right Port
}

// On returns the port in the specified direction.
func (p *Ports) On(d Direction) Port {
	if d == Left {
		return p.Left
	}
	return p.Right
}
