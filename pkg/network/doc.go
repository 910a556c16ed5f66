// Package network implements the link-layer protocol engine of a badge.
//
// A badge is linked to at most two neighbors, one through each of its
// half-duplex serial ports. Linked badges form a chain and the engine
// running on every badge cooperates with its neighbors to:
//
//   - discover the chain: the left-most badge announces itself, every badge
//     takes the next ordinal peer id and forwards the announce to the right,
//     and the right-most badge reflects the final peer count back to the left;
//   - circulate a turn: a MONITOR message travels from badge to badge and
//     bounces at both chain ends. Only the badge holding the turn originates
//     application messages, others relay or consume them;
//   - detect topology changes, either from the presence sense lines or from
//     the turn not coming back in time, and restart discovery.
//
// The engine never blocks and owns no goroutine. Handler.Run is expected to
// be invoked periodically and Handler.EnqueueMessage between two runs, from
// the same goroutine.
package network
