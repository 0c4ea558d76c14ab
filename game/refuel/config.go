package refuel

import (
	"fmt"
	"time"
)

// Config tunes the refueling transaction.
type Config struct {
	// MaximumFuel is the tank capacity offers are computed against.
	MaximumFuel float64 `json:"maximum_fuel"`

	// PricePerUnit is the cash cost of one unit of fuel.
	PricePerUnit float64 `json:"price_per_unit"`

	// MinPurchase is the smallest fillable amount worth offering. Requests
	// that cannot buy more than this are rejected.
	MinPurchase float64 `json:"min_purchase"`

	// FullThreshold is the fuel level at and above which the tank counts as
	// full and requests are rejected.
	FullThreshold float64 `json:"full_threshold"`

	// ResetTimeout is how long an unanswered offer stays valid.
	ResetTimeout time.Duration `json:"reset_timeout"`

	// FillTimePerUnit is the wall-clock time one unit of fuel takes to pump.
	FillTimePerUnit time.Duration `json:"fill_time_per_unit"`

	// TriggerRadius is the interaction radius around a station pump.
	TriggerRadius float64 `json:"trigger_radius"`

	// MaxPumpDistance is the farthest a vehicle may sit from the player and
	// still be refueled.
	MaxPumpDistance float64 `json:"max_pump_distance"`
}

// DefaultConfig returns the stock tuning: $2 per unit, 600ms fill time per
// unit, offers valid for a minute.
func DefaultConfig() Config {
	return Config{
		MaximumFuel:     100,
		PricePerUnit:    2,
		MinPurchase:     2,
		FullThreshold:   99,
		ResetTimeout:    60 * time.Second,
		FillTimePerUnit: 600 * time.Millisecond,
		TriggerRadius:   2,
		MaxPumpDistance: 4,
	}
}

// Validate checks the tuning.
func (c Config) Validate() error {
	if c.MaximumFuel <= 0 {
		return fmt.Errorf("maximum_fuel must be positive, got %v", c.MaximumFuel)
	}
	if c.PricePerUnit <= 0 {
		return fmt.Errorf("price_per_unit must be positive, got %v", c.PricePerUnit)
	}
	if c.MinPurchase < 0 {
		return fmt.Errorf("min_purchase must not be negative, got %v", c.MinPurchase)
	}
	if c.FullThreshold <= 0 || c.FullThreshold > c.MaximumFuel {
		return fmt.Errorf("full_threshold must be within (0, %v], got %v", c.MaximumFuel, c.FullThreshold)
	}
	if c.ResetTimeout <= 0 {
		return fmt.Errorf("reset_timeout must be positive, got %v", c.ResetTimeout)
	}
	if c.FillTimePerUnit <= 0 {
		return fmt.Errorf("fill_time_per_unit must be positive, got %v", c.FillTimePerUnit)
	}
	if c.TriggerRadius <= 0 {
		return fmt.Errorf("trigger_radius must be positive, got %v", c.TriggerRadius)
	}
	if c.MaxPumpDistance <= 0 {
		return fmt.Errorf("max_pump_distance must be positive, got %v", c.MaxPumpDistance)
	}
	return nil
}
