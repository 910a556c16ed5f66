package sh

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nsec/badge.go/pkg/badge"
	fx "github.com/nsec/badge.go/pkg/framework"
	"github.com/nsec/badge.go/pkg/link"
	"github.com/nsec/badge.go/pkg/network"
)

func TestParseDirection(t *testing.T) {
	testCases := []struct {
		in  string
		dir link.Direction
		ok  bool
	}{
		{"l", link.Left, true},
		{"Left", link.Left, true},
		{"r", link.Right, true},
		{"RIGHT", link.Right, true},
		{"up", 0, false},
		{"", 0, false},
	}
	for _, tc := range testCases {
		dir, err := parseDirection(tc.in)
		if !tc.ok {
			require.Error(t, err, tc.in)
			continue
		}
		require.NoError(t, err, tc.in)
		require.Equal(t, tc.dir, dir, tc.in)
	}
}

func TestShellStatus(t *testing.T) {
	chain := badge.NewSimulatedChain(3, network.NewConfig(), "shell", nil)
	loop := fx.NewLoop()
	loop.Interval = time.Millisecond
	loop.Add(chain)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go loop.Run(ctx)

	s := &Shell{Chain: chain, Loop: loop}
	var statuses []BadgeStatus
	for deadline := time.Now().Add(5 * time.Second); ; {
		var err error
		statuses, err = s.Status()
		require.NoError(t, err)
		require.Len(t, statuses, 3)
		idle := true
		for _, st := range statuses {
			idle = idle && st.App.State == badge.StateIdle
		}
		if idle {
			break
		}
		require.True(t, time.Now().Before(deadline), "chain not idle")
		time.Sleep(10 * time.Millisecond)
	}
	for i, st := range statuses {
		require.Equal(t, network.StateRunning, st.Network.State)
		require.EqualValues(t, i, st.Network.PeerID)
		require.EqualValues(t, 2, st.App.SocialLevel)
		line := FormatStatus(st)
		require.True(t, strings.HasPrefix(line, st.Name), line)
		require.Contains(t, line, "level=2")
	}

	require.NoError(t, s.Do(func(c *badge.SimulatedChain) error { return c.Split(1) }))
	require.Error(t, s.Do(func(c *badge.SimulatedChain) error { return c.Split(5) }))
}
