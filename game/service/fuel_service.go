package service

import (
	"context"

	"github.com/openrp/fuel-stations/game/config"
	"github.com/openrp/fuel-stations/game/refuel"
	"github.com/openrp/fuel-stations/game/world"
)

// FuelService defines all operations exposed by the server
type FuelService interface {
	// Vehicle Management
	SpawnVehicle(ctx context.Context, req SpawnVehicleRequest) (*VehicleStatus, error)
	RemoveVehicle(ctx context.Context, vehicleID string) error
	GetVehicle(ctx context.Context, vehicleID string) (*VehicleStatus, error)
	ListVehicles(ctx context.Context) ([]*VehicleStatus, error)
	MoveVehicle(ctx context.Context, vehicleID string, pos, rot world.Vec3) error
	StartEngine(ctx context.Context, vehicleID, playerID string) (*EngineStartResult, error)
	StopEngine(ctx context.Context, vehicleID string) error

	// Player Management
	SpawnPlayer(ctx context.Context, req SpawnPlayerRequest) (*PlayerStatus, error)
	RemovePlayer(ctx context.Context, playerID string) error
	GetPlayer(ctx context.Context, playerID string) (*PlayerStatus, error)
	MovePlayer(ctx context.Context, playerID string, pos, rot world.Vec3) error
	EnterVehicle(ctx context.Context, playerID, vehicleID string) error
	ExitVehicle(ctx context.Context, playerID string) error
	Interact(ctx context.Context, playerID string) (*InteractResult, error)

	// Refueling
	RequestRefuel(ctx context.Context, playerID string) (*RefuelOffer, error)
	AcceptOffer(ctx context.Context, playerID string, amount int) error
	DeclineOffer(ctx context.Context, playerID string) error
	CancelRefuel(ctx context.Context, playerID string) error
	GetRefuelSession(ctx context.Context, playerID string) (*RefuelOffer, error)

	// Stations & Configuration
	ListStations(ctx context.Context) ([]*StationInfo, error)
	ListProfiles(ctx context.Context) ([]*config.ProfileInfo, error)

	// Admin
	SetFuel(ctx context.Context, vehicleID string, fuel float64) (*VehicleStatus, error)
	Deposit(ctx context.Context, playerID string, amount float64) (float64, error)
}

// FuelEngine is the slice of the consumption engine the service needs
type FuelEngine interface {
	Fuel(ctx context.Context, id world.VehicleID) (float64, bool, error)
	SetFuel(ctx context.Context, id world.VehicleID, fuel float64) error
	IsRefueling(id world.VehicleID) bool
	Forget(id world.VehicleID)
}

// RefuelEngine is the slice of the transaction engine the service needs
type RefuelEngine interface {
	Request(ctx context.Context, playerID world.PlayerID) (refuel.Session, error)
	AcceptDialog(ctx context.Context, playerID world.PlayerID, amount int) error
	CancelDialog(ctx context.Context, playerID world.PlayerID) error
	Cancel(ctx context.Context, playerID world.PlayerID) error
	Session(playerID world.PlayerID) (refuel.Session, bool)
}

// ProfileManager handles profile discovery
type ProfileManager interface {
	ListProfiles() ([]*config.ProfileInfo, error)
}
