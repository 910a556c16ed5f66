package badge_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nsec/badge.go/pkg/badge"
	"github.com/nsec/badge.go/pkg/link"
	"github.com/nsec/badge.go/pkg/network"
	"github.com/nsec/badge.go/pkg/wire"
)

type appChain struct {
	chain *badge.SimulatedChain
	apps  []*badge.App
	now   network.AbsoluteTimeMs
}

func newAppChain(n int) *appChain {
	chain := badge.NewSimulatedChain(n, network.NewConfig(), "test", nil)
	return &appChain{chain: chain, apps: chain.Apps}
}

func (ac *appChain) stepUntilIdle(t *testing.T, limit network.AbsoluteTimeMs) {
	deadline := ac.now + limit
	for {
		idle := true
		for _, app := range ac.apps {
			idle = idle && app.State() == badge.StateIdle
		}
		if idle {
			return
		}
		require.True(t, ac.now < deadline, "not idle after %dms", limit)
		ac.chain.Step(ac.now)
		ac.now += 10
	}
}

func TestIDExchange(t *testing.T) {
	for _, n := range []int{2, 3, 5, 7, 12, network.MaxPeerCount} {
		t.Run(fmt.Sprintf("%d badges", n), func(t *testing.T) {
			ac := newAppChain(n)
			ac.stepUntilIdle(t, network.AbsoluteTimeMs(100*n*n+1000))
			for i, app := range ac.apps {
				status := app.Status()
				require.Equal(t, n-1, status.KnownBadges, "badge %d", i)
				require.EqualValues(t, n-1, status.NewBadgesDiscovered, "badge %d", i)
				require.EqualValues(t, n-1, app.SocialLevel(), "badge %d", i)
				for j, other := range ac.apps {
					require.Equal(t, i != j, app.Knows(other.ID))
				}
			}
			for i, b := range ac.chain.Badges() {
				require.Zero(t, b.Port(link.Left).Dropped, "badge %d", i)
				require.Zero(t, b.Port(link.Right).Dropped, "badge %d", i)
			}
		})
	}
}

func TestIDExchangeAfterRejoin(t *testing.T) {
	ac := newAppChain(3)
	ac.stepUntilIdle(t, 3000)

	// meeting the same badges again doesn't raise the social level.
	require.NoError(t, ac.chain.Split(0))
	ac.chain.Step(ac.now)
	ac.now += 10
	require.Equal(t, badge.StateUnconnected, ac.apps[0].State())
	require.NoError(t, ac.chain.Connect(0))
	ac.stepUntilIdle(t, 5000)
	for _, app := range ac.apps {
		require.EqualValues(t, 2, app.SocialLevel())
		require.Zero(t, app.Status().NewBadgesDiscovered)
	}
}

type fakeEngine struct {
	sent []link.Direction
}

func (e *fakeEngine) EnqueueMessage(dir link.Direction, t wire.Type, payload []byte) network.EnqueueResult {
	e.sent = append(e.sent, dir)
	return network.EnqueueQueued
}

func TestAppSendOrder(t *testing.T) {
	testCases := []struct {
		name  string
		id    network.PeerID
		count uint8
		dirs  []link.Direction
	}{
		{"left-most", 0, 3, []link.Direction{link.Right}},
		{"middle", 1, 3, []link.Direction{link.Right, link.Left}},
		{"right-most", 2, 3, []link.Direction{link.Left}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var e fakeEngine
			app := badge.New("test", badge.IDFromString("test"))
			app.SetEngine(&e)
			app.OnPairingEnd(tc.id, tc.count)
			require.Equal(t, badge.StateExchangingIDs, app.State())
			for range tc.dirs {
				app.OnMessageSent()
			}
			require.Equal(t, tc.dirs, e.sent)
		})
	}
}

func TestAppMessageGate(t *testing.T) {
	app := badge.New("test", badge.IDFromString("test"))
	app.SetEngine(&fakeEngine{})
	other := badge.IDFromString("other")

	// ids travel along the chain even when not exchanging.
	require.Equal(t, network.ActionForward, app.OnMessageReceived(badge.MessageBadgeID, other[:]))
	require.False(t, app.Knows(other))
	require.Equal(t, network.ActionSwallow, app.OnMessageReceived(7, nil))
	require.Equal(t, network.ActionReset, app.OnMessageReceived(badge.MessageBadgeID, other[:3]))

	app.OnPairingEnd(0, 2)
	require.Equal(t, network.ActionForward, app.OnMessageReceived(badge.MessageBadgeID, other[:]))
	require.True(t, app.Knows(other))
	require.Equal(t, badge.StateExchangingIDs, app.State())
	app.OnMessageSent()
	require.Equal(t, badge.StateIdle, app.State())
	require.EqualValues(t, 1, app.SocialLevel())
}

func TestKnownBadgesBounded(t *testing.T) {
	app := badge.New("test", badge.IDFromString("test"))
	app.OnPairingEnd(0, network.MaxPeerCount)
	for i := 0; i < badge.MaxKnownBadges+10; i++ {
		id := badge.IDFromString(fmt.Sprint(i))
		app.OnMessageReceived(badge.MessageBadgeID, id[:])
	}
	require.Equal(t, badge.MaxKnownBadges, app.Status().KnownBadges)
	first := badge.IDFromString("0")
	last := badge.IDFromString(fmt.Sprint(badge.MaxKnownBadges + 9))
	require.False(t, app.Knows(first))
	require.True(t, app.Knows(last))
}
