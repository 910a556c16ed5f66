package link

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type staticSensor struct {
	left, right bool
}

func (s staticSensor) LeftConnected() bool  { return s.left }
func (s staticSensor) RightConnected() bool { return s.right }

func TestClassify(t *testing.T) {
	testCases := []struct {
		left, right bool
		expect      Position
		hasLeft     bool
		hasRight    bool
	}{
		{false, false, Unknown, false, false},
		{true, false, RightMost, true, false},
		{false, true, LeftMost, false, true},
		{true, true, Middle, true, true},
	}
	for _, tc := range testCases {
		t.Run(tc.expect.String(), func(t *testing.T) {
			for i := 0; i < 3; i++ {
				pos := Classify(tc.left, tc.right)
				require.Equal(t, tc.expect, pos)
				require.Equal(t, tc.hasLeft, pos.HasNeighbor(Left))
				require.Equal(t, tc.hasRight, pos.HasNeighbor(Right))
				require.Equal(t, tc.left || tc.right, pos.IsConnected())
			}
			require.Equal(t, tc.expect, SensePosition(staticSensor{tc.left, tc.right}))
		})
	}
}

func TestSensePositionNoHardware(t *testing.T) {
	require.Equal(t, Unknown, SensePosition(nil))
}

func TestDirection(t *testing.T) {
	require.Equal(t, Right, Left.Opposite())
	require.Equal(t, Left, Right.Opposite())
	require.True(t, Left.IsValid())
	require.True(t, Right.IsValid())
	require.False(t, Direction(2).IsValid())
	require.Equal(t, "LEFT", Left.String())
	require.Equal(t, "RIGHT", Right.String())
	require.Equal(t, "INVALID", Direction(7).String())
}
