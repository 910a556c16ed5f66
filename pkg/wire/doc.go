// Package wire provides the inter-badge message format.
package wire

// Badges are chained through half-duplex serial links. Every message on a
// link is framed as:
//
//	[MagicByte1][MagicByte2][Type][Length][Payload ...]
//
// The two magic bytes let a receiver find the start of a message after
// joining a stream mid-way or after corruption. There is no checksum: a
// damaged message is either resynchronized away by the framing or rejected
// by the protocol state machine, which resets the session.
//
// Types with the high bit set are reserved for the link protocol itself
// (discovery and turn passing). Types 0 to MaxApplicationType are left to
// the application.
