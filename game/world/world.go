package world

import (
	"errors"
	"sync"
)

var (
	ErrVehicleNotFound = errors.New("vehicle not found")
	ErrPlayerNotFound  = errors.New("player not found")
)

// World is the registry of live vehicles and players plus the event bus and
// interaction zones. All access is mutex-guarded; entity state leaves the
// registry only as value snapshots.
type World struct {
	mu sync.RWMutex

	vehicles     map[VehicleID]*Vehicle
	vehicleOrder []VehicleID
	players      map[PlayerID]*Player

	zones   []Zone
	markers []Marker

	bus Bus
}

// New creates an empty world.
func New() *World {
	return &World{
		vehicles: make(map[VehicleID]*Vehicle),
		players:  make(map[PlayerID]*Player),
	}
}

// Events returns the event bus for handler registration.
func (w *World) Events() *Bus {
	return &w.bus
}

// SpawnVehicle adds a vehicle to the simulation. Re-spawning an existing ID
// overwrites the previous entity.
func (w *World) SpawnVehicle(v Vehicle) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, exists := w.vehicles[v.ID]; !exists {
		w.vehicleOrder = append(w.vehicleOrder, v.ID)
	}
	stored := v
	w.vehicles[v.ID] = &stored
}

// RemoveVehicle despawns a vehicle. Snapshots held by callers become stale;
// Vehicle() reports the entity as gone afterwards.
func (w *World) RemoveVehicle(id VehicleID) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, exists := w.vehicles[id]; !exists {
		return
	}
	delete(w.vehicles, id)
	for i, vid := range w.vehicleOrder {
		if vid == id {
			w.vehicleOrder = append(w.vehicleOrder[:i], w.vehicleOrder[i+1:]...)
			break
		}
	}
}

// Vehicle returns a snapshot of the vehicle, or false if it is not simulated.
func (w *World) Vehicle(id VehicleID) (Vehicle, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	v, ok := w.vehicles[id]
	if !ok {
		return Vehicle{}, false
	}
	return *v, true
}

// Vehicles returns snapshots of all simulated vehicles in stable spawn order.
func (w *World) Vehicles() []Vehicle {
	w.mu.RLock()
	defer w.mu.RUnlock()

	result := make([]Vehicle, 0, len(w.vehicleOrder))
	for _, id := range w.vehicleOrder {
		if v, ok := w.vehicles[id]; ok {
			result = append(result, *v)
		}
	}
	return result
}

// MoveVehicle updates a vehicle's position and rotation.
func (w *World) MoveVehicle(id VehicleID, pos, rot Vec3) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	v, ok := w.vehicles[id]
	if !ok {
		return ErrVehicleNotFound
	}
	v.Position = pos
	v.Rotation = rot
	return nil
}

// SpawnPlayer adds a player to the world.
func (w *World) SpawnPlayer(p Player) {
	w.mu.Lock()
	defer w.mu.Unlock()

	stored := p
	w.players[p.ID] = &stored
}

// RemovePlayer disconnects a player.
func (w *World) RemovePlayer(id PlayerID) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.players, id)
}

// Player returns a snapshot of the player, or false if not connected.
func (w *World) Player(id PlayerID) (Player, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	p, ok := w.players[id]
	if !ok {
		return Player{}, false
	}
	return *p, true
}

// MovePlayer updates a player's position and rotation.
func (w *World) MovePlayer(id PlayerID, pos, rot Vec3) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	p, ok := w.players[id]
	if !ok {
		return ErrPlayerNotFound
	}
	p.Position = pos
	p.Rotation = rot
	return nil
}

// EnterVehicle seats a player in a vehicle and emits the entered event.
func (w *World) EnterVehicle(playerID PlayerID, vehicleID VehicleID) error {
	w.mu.Lock()
	p, okP := w.players[playerID]
	v, okV := w.vehicles[vehicleID]
	if !okP {
		w.mu.Unlock()
		return ErrPlayerNotFound
	}
	if !okV {
		w.mu.Unlock()
		return ErrVehicleNotFound
	}
	p.VehicleID = vehicleID
	playerSnap, vehicleSnap := *p, *v
	w.mu.Unlock()

	w.bus.emitPlayerEnteredVehicle(playerSnap, vehicleSnap)
	return nil
}

// ExitVehicle puts a player back on foot.
func (w *World) ExitVehicle(playerID PlayerID) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	p, ok := w.players[playerID]
	if !ok {
		return ErrPlayerNotFound
	}
	p.VehicleID = ""
	return nil
}

// RequestEngineStart runs the guard chain for an off-to-on engine
// transition. When every guard accepts, the engine is flipped on and the
// engine-started event fires with the requesting player.
func (w *World) RequestEngineStart(vehicleID VehicleID, playerID PlayerID) EngineStartDecision {
	w.mu.RLock()
	v, okV := w.vehicles[vehicleID]
	var vehicleSnap Vehicle
	if okV {
		vehicleSnap = *v
	}
	p, okP := w.players[playerID]
	var playerSnap Player
	if okP {
		playerSnap = *p
	}
	w.mu.RUnlock()

	if !okV {
		return EngineStartDecision{Accepted: false, Reason: "vehicle not found"}
	}

	if decision := w.bus.runEngineStartGuards(vehicleSnap); !decision.Accepted {
		return decision
	}

	w.mu.Lock()
	if v, ok := w.vehicles[vehicleID]; ok {
		v.EngineOn = true
		vehicleSnap = *v
	}
	w.mu.Unlock()

	w.bus.emitEngineStarted(vehicleSnap, playerSnap)
	return EngineStartDecision{Accepted: true}
}

// StopEngine forces a vehicle's engine off. Used by the consumption sweep
// when the tank runs dry and by clients shutting the engine down.
func (w *World) StopEngine(vehicleID VehicleID) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	v, ok := w.vehicles[vehicleID]
	if !ok {
		return ErrVehicleNotFound
	}
	v.EngineOn = false
	return nil
}
