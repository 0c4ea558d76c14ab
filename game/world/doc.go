// Package world holds the live simulation state shared by the fuel and
// refuel engines.
//
// The world package implements:
//   - The entity registry for vehicles and players
//   - Planar geometry queries (distance, nearest vehicle in front)
//   - A typed event bus for engine-start guards and lifecycle events
//   - Interaction zones and map markers registered by the station registry
//
// Core Types:
//
// World is the registry; Vehicle and Player are value snapshots handed to
// callers, mutated only through World methods so concurrent engines never
// share live entity pointers. Bus carries the events the engines subscribe
// to: engine-start requests (guarded), engine-started confirmations,
// player-entered-vehicle, and distance-traveled.
//
// Usage:
//
//	w := world.New()
//	w.SpawnVehicle(world.Vehicle{ID: "veh_1", Model: "sultan"})
//	decision := w.RequestEngineStart("veh_1", "player_1")
//	if !decision.Accepted {
//		log.Println(decision.Reason)
//	}
package world
