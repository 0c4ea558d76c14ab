package fuel

import (
	"fmt"
	"time"
)

// Config tunes the consumption sweep.
type Config struct {
	// MaximumFuel is the tank capacity. Fuel is clamped to [0, MaximumFuel].
	MaximumFuel float64 `json:"maximum_fuel"`

	// LossPerTick is the fuel burned per sweep while the engine runs.
	LossPerTick float64 `json:"loss_per_tick"`

	// TickInterval is the time between consumption sweeps.
	TickInterval time.Duration `json:"tick_interval"`

	// InitialFuel is assigned to vehicles with no ledger record.
	InitialFuel float64 `json:"initial_fuel"`

	// PersistInterval is the minimum time between ledger writes for a
	// vehicle during steady-state driving.
	PersistInterval time.Duration `json:"persist_interval"`

	// DistanceThreshold is the minimum planar movement between ticks that
	// triggers a distance-traveled event.
	DistanceThreshold float64 `json:"distance_threshold"`
}

// DefaultConfig returns the stock tuning: a 100 unit tank burning 0.15 per
// 5 second tick, persisted every 15 seconds.
func DefaultConfig() Config {
	return Config{
		MaximumFuel:       100,
		LossPerTick:       0.15,
		TickInterval:      5 * time.Second,
		InitialFuel:       100,
		PersistInterval:   15 * time.Second,
		DistanceThreshold: 5,
	}
}

// Validate checks the tuning for values the sweep cannot operate with.
func (c Config) Validate() error {
	if c.MaximumFuel <= 0 {
		return fmt.Errorf("maximum_fuel must be positive, got %v", c.MaximumFuel)
	}
	if c.LossPerTick < 0 {
		return fmt.Errorf("loss_per_tick must not be negative, got %v", c.LossPerTick)
	}
	if c.TickInterval <= 0 {
		return fmt.Errorf("tick_interval must be positive, got %v", c.TickInterval)
	}
	if c.InitialFuel < 0 || c.InitialFuel > c.MaximumFuel {
		return fmt.Errorf("initial_fuel must be within [0, %v], got %v", c.MaximumFuel, c.InitialFuel)
	}
	if c.PersistInterval <= 0 {
		return fmt.Errorf("persist_interval must be positive, got %v", c.PersistInterval)
	}
	if c.DistanceThreshold < 0 {
		return fmt.Errorf("distance_threshold must not be negative, got %v", c.DistanceThreshold)
	}
	return nil
}
