// Package refuel implements the pump-side refueling transaction: a player
// standing at a station requests a fill for the vehicle in front of them,
// receives a priced offer dialog, and on acceptance pays up front while the
// tank fills over time.
//
// Each player holds at most one session. Sessions live in an explicit table
// keyed by player, carry a tagged pending-dialog kind instead of callbacks,
// and expire after a configured timeout so an abandoned pump never wedges
// the player.
package refuel
