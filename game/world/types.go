package world

// PlayerID identifies a connected player.
type PlayerID string

// VehicleID identifies a simulated vehicle.
type VehicleID string

// Vec3 represents a world position or rotation in degrees/units.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Vehicle is a snapshot of a simulated vehicle. Callers receive copies;
// mutations go through World methods.
type Vehicle struct {
	ID       VehicleID `json:"id"`
	Model    string    `json:"model"`
	Position Vec3      `json:"position"`
	Rotation Vec3      `json:"rotation"`
	EngineOn bool      `json:"engine_on"`
}

// Player is a snapshot of a connected player. VehicleID is empty while the
// player is on foot.
type Player struct {
	ID        PlayerID  `json:"id"`
	Name      string    `json:"name"`
	Position  Vec3      `json:"position"`
	Rotation  Vec3      `json:"rotation"`
	VehicleID VehicleID `json:"vehicle_id,omitempty"`
}

// EngineStartDecision is the outcome of the engine-start guard chain.
type EngineStartDecision struct {
	Accepted bool   `json:"accepted"`
	Reason   string `json:"reason,omitempty"`
}
