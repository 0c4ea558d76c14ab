package storage

import (
	"context"
	"errors"

	"github.com/openrp/fuel-stations/game/world"
)

var (
	// ErrInsufficientFunds is returned by Wallet.Debit when the balance does
	// not cover the amount.
	ErrInsufficientFunds = errors.New("insufficient funds")
)

// FuelRecord is the persisted fuel bookkeeping for one vehicle.
type FuelRecord struct {
	VehicleID world.VehicleID `bson:"vehicle_id" json:"vehicle_id"`
	Fuel      float64         `bson:"fuel" json:"fuel"`
}

// Ledger reads and writes per-vehicle fuel records.
type Ledger interface {
	// FuelRecord returns the record for a vehicle, with ok=false when no
	// record exists yet.
	FuelRecord(ctx context.Context, id world.VehicleID) (FuelRecord, bool, error)

	// SetFuel writes the fuel value for a vehicle, creating the record if
	// absent.
	SetFuel(ctx context.Context, id world.VehicleID, fuel float64) error
}

// Wallet manages per-player cash balances.
type Wallet interface {
	// Balance returns the player's cash. Unknown players hold zero.
	Balance(ctx context.Context, id world.PlayerID) (float64, error)

	// Debit removes amount from the player's balance, returning
	// ErrInsufficientFunds without mutation when the balance is too low.
	Debit(ctx context.Context, id world.PlayerID, amount float64) error

	// Credit adds amount to the player's balance.
	Credit(ctx context.Context, id world.PlayerID, amount float64) error
}
