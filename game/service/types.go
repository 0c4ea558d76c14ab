package service

import (
	"time"

	"github.com/openrp/fuel-stations/game/world"
)

// SpawnVehicleRequest creates a vehicle in the simulation
type SpawnVehicleRequest struct {
	ID       string     `json:"id"`
	Model    string     `json:"model"`
	Position world.Vec3 `json:"position"`
	Rotation world.Vec3 `json:"rotation"`
}

// SpawnPlayerRequest connects a player to the simulation
type SpawnPlayerRequest struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	Position world.Vec3 `json:"position"`
	Cash     float64    `json:"cash,omitempty"`
}

// VehicleStatus is the wire view of a vehicle, fuel included when known
type VehicleStatus struct {
	ID        string     `json:"id"`
	Model     string     `json:"model"`
	Position  world.Vec3 `json:"position"`
	Rotation  world.Vec3 `json:"rotation"`
	EngineOn  bool       `json:"engine_on"`
	Fuel      *float64   `json:"fuel,omitempty"`
	Refueling bool       `json:"refueling"`
}

// PlayerStatus is the wire view of a player
type PlayerStatus struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Position  world.Vec3 `json:"position"`
	VehicleID string     `json:"vehicle_id,omitempty"`
	Cash      float64    `json:"cash"`
}

// EngineStartResult reports the outcome of an engine start request
type EngineStartResult struct {
	Accepted bool   `json:"accepted"`
	Reason   string `json:"reason,omitempty"`
}

// InteractResult reports whether a zone interaction fired
type InteractResult struct {
	Triggered bool `json:"triggered"`
}

// RefuelOffer is the wire view of a refuel session
type RefuelOffer struct {
	PlayerID    string    `json:"player_id"`
	VehicleID   string    `json:"vehicle_id"`
	UnitPrice   float64   `json:"unit_price"`
	MaxFillable int       `json:"max_fillable"`
	ExpiresAt   time.Time `json:"expires_at"`
	Filling     bool      `json:"filling"`
	FillAmount  int       `json:"fill_amount,omitempty"`
}

// StationInfo is the wire view of a configured station
type StationInfo struct {
	UID      string     `json:"uid"`
	Name     string     `json:"name"`
	Position world.Vec3 `json:"position"`
	Blip     bool       `json:"blip"`
}
