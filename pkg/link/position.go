package link

// Position is the structural role of a badge in the chain.
type Position uint8

// Positions, encoded as a bit per connected side.
const (
	Unknown   Position = 0x0
	LeftMost  Position = 0x1
	RightMost Position = 0x2
	Middle    Position = 0x3
)

// Classify derives the position from sensed presence.
func Classify(left, right bool) Position {
	var p Position
	if right {
		p |= LeftMost
	}
	if left {
		p |= RightMost
	}
	return p
}

// HasNeighbor indicates a neighbor is present in the direction.
func (p Position) HasNeighbor(d Direction) bool {
	if d == Left {
		return p&RightMost != 0
	}
	return p&LeftMost != 0
}

// IsConnected indicates at least one neighbor is present.
func (p Position) IsConnected() bool {
	return p != Unknown
}

func (p Position) String() string {
	switch p {
	case Unknown:
		return "UNKNOWN"
	case LeftMost:
		return "LEFT_MOST"
	case RightMost:
		return "RIGHT_MOST"
	case Middle:
		return "MIDDLE"
	}
	return "INVALID"
}

// SensePosition samples a Sensor and classifies the result.
func SensePosition(s Sensor) Position {
	if s == nil {
		return Unknown
	}
	return Classify(s.LeftConnected(), s.RightConnected())
}
