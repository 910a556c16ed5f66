// Package badge is the application of a badge on top of the link-layer
// protocol: badges of a chain exchange their ids and the social level
// grows with every badge met for the first time.
package badge

import (
	"github.com/golang/glog"

	"github.com/nsec/badge.go/pkg/link"
	"github.com/nsec/badge.go/pkg/network"
	"github.com/nsec/badge.go/pkg/wire"
)

// Application message types.
const (
	// MessageBadgeID carries the ID of the originating badge.
	MessageBadgeID wire.Type = 1
)

// Limits.
const (
	// MaxKnownBadges is the number of badge ids remembered.
	MaxKnownBadges = 64
	// MaxSocialLevel caps the social level.
	MaxSocialLevel = 100
)

// Engine is what the App needs from the protocol engine.
type Engine interface {
	EnqueueMessage(dir link.Direction, t wire.Type, payload []byte) network.EnqueueResult
}

// State is the state of the network part of the application.
type State uint8

// Application states.
const (
	StateUnconnected State = iota
	StateExchangingIDs
	StateIdle
)

func (s State) String() string {
	switch s {
	case StateUnconnected:
		return "UNCONNECTED"
	case StateExchangingIDs:
		return "EXCHANGING_IDS"
	case StateIdle:
		return "IDLE"
	}
	return "INVALID"
}

// App implements network.Notifier.
type App struct {
	Name string
	ID   ID

	engine Engine
	state  State

	peerID    network.PeerID
	peerCount uint8

	// exchange in progress.
	idsReceived         uint8
	newBadgesDiscovered uint8
	sendLeftAfterSent   bool
	oursSent            bool

	known      [MaxKnownBadges]ID
	knownCount int
	knownNext  int

	socialLevel uint8
}

// Status is a snapshot of the App.
type Status struct {
	State               State
	SocialLevel         uint8
	KnownBadges         int
	NewBadgesDiscovered uint8
}

// New creates an App.
func New(name string, id ID) *App {
	return &App{Name: name, ID: id}
}

// SetEngine sets the engine used to send messages.
func (a *App) SetEngine(e Engine) {
	a.engine = e
}

// State gets the application state.
func (a *App) State() State {
	return a.state
}

// SocialLevel gets the social level.
func (a *App) SocialLevel() uint8 {
	return a.socialLevel
}

// Knows indicates the badge with id was met before.
func (a *App) Knows(id ID) bool {
	for i := 0; i < a.knownCount; i++ {
		if a.known[i] == id {
			return true
		}
	}
	return false
}

// Status takes a snapshot.
func (a *App) Status() Status {
	return Status{
		State:               a.state,
		SocialLevel:         a.socialLevel,
		KnownBadges:         a.knownCount,
		NewBadgesDiscovered: a.newBadgesDiscovered,
	}
}

// OnDisconnection implements network.Notifier.
func (a *App) OnDisconnection() {
	a.setState(StateUnconnected)
}

// OnPairingBegin implements network.Notifier.
func (a *App) OnPairingBegin() {
	a.setState(StateUnconnected)
}

// OnPairingEnd implements network.Notifier.
func (a *App) OnPairingEnd(id network.PeerID, peerCount uint8) {
	a.peerID, a.peerCount = id, peerCount
	a.idsReceived, a.newBadgesDiscovered = 0, 0
	a.sendLeftAfterSent, a.oursSent = false, false
	a.setState(StateExchangingIDs)

	dir := link.Right
	if uint8(id)+1 == peerCount {
		dir = link.Left
	} else {
		a.sendLeftAfterSent = id > 0
	}
	a.send(dir)
}

// OnMessageReceived implements network.Notifier.
func (a *App) OnMessageReceived(t wire.Type, payload []byte) network.Action {
	if t != MessageBadgeID {
		glog.V(1).Infof("[%s] ignored message %s", a.Name, t)
		return network.ActionSwallow
	}
	if len(payload) != IDSize {
		glog.Warningf("[%s] badge id of %d bytes", a.Name, len(payload))
		return network.ActionReset
	}
	if a.state != StateExchangingIDs {
		return network.ActionForward
	}
	var id ID
	copy(id[:], payload)
	if a.discovered(id) {
		a.newBadgesDiscovered++
	}
	a.idsReceived++
	a.checkDone()
	return network.ActionForward
}

// OnMessageSent implements network.Notifier.
func (a *App) OnMessageSent() {
	if a.state != StateExchangingIDs {
		return
	}
	if a.sendLeftAfterSent {
		a.sendLeftAfterSent = false
		a.send(link.Left)
		return
	}
	a.oursSent = true
	a.checkDone()
}

// OnStateChanged implements network.StateObserver.
func (a *App) OnStateChanged(from, to network.WireState) {
	glog.V(2).Infof("[%s] network %s -> %s", a.Name, from, to)
}

func (a *App) send(dir link.Direction) {
	if a.engine == nil {
		return
	}
	if res := a.engine.EnqueueMessage(dir, MessageBadgeID, a.ID[:]); res != network.EnqueueQueued {
		glog.Warningf("[%s] send id %s: %s", a.Name, dir, res)
	}
}

// discovered records id and returns true if it wasn't known. The oldest
// id is forgotten when the storage is full.
func (a *App) discovered(id ID) bool {
	if id == a.ID || a.Knows(id) {
		return false
	}
	a.known[a.knownNext] = id
	a.knownNext = (a.knownNext + 1) % MaxKnownBadges
	if a.knownCount < MaxKnownBadges {
		a.knownCount++
	}
	return true
}

func (a *App) checkDone() {
	if !a.oursSent || a.idsReceived+1 < a.peerCount {
		return
	}
	level := int(a.socialLevel) + int(a.newBadgesDiscovered)
	if level > MaxSocialLevel {
		level = MaxSocialLevel
	}
	a.socialLevel = uint8(level)
	glog.Infof("[%s] met %d new badges, social level %d", a.Name, a.newBadgesDiscovered, a.socialLevel)
	a.setState(StateIdle)
}

func (a *App) setState(s State) {
	if a.state != s {
		glog.V(1).Infof("[%s] app state: %s -> %s", a.Name, a.state, s)
		a.state = s
	}
}
