package fuel

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/openrp/fuel-stations/game/world"
	"github.com/openrp/fuel-stations/storage"
)

// Notifier delivers short status messages to a player's screen.
type Notifier interface {
	Notify(id world.PlayerID, message string)
}

// Observer receives fuel gauge updates for broadcast to clients.
type Observer interface {
	FuelUpdated(v world.Vehicle, fuel float64)
}

// vehicleAux is the engine's working state for one vehicle. The fuel value
// here is authoritative between ledger writes.
type vehicleAux struct {
	fuel        float64
	loaded      bool
	lastPos     world.Vec3
	hasLastPos  bool
	nextPersist time.Time
	refueling   bool
}

// Engine runs the consumption sweep and owns per-vehicle auxiliary state.
type Engine struct {
	cfg      Config
	world    *world.World
	ledger   storage.Ledger
	notifier Notifier
	observer Observer
	log      zerolog.Logger

	mu  sync.Mutex
	aux map[world.VehicleID]*vehicleAux

	now func() time.Time
}

// New creates a consumption engine. Notifier and observer may be nil.
func New(cfg Config, w *world.World, ledger storage.Ledger, notifier Notifier, observer Observer, log zerolog.Logger) *Engine {
	return &Engine{
		cfg:      cfg,
		world:    w,
		ledger:   ledger,
		notifier: notifier,
		observer: observer,
		log:      log.With().Str("component", "fuel").Logger(),
		aux:      make(map[world.VehicleID]*vehicleAux),
		now:      time.Now,
	}
}

// Bind registers the engine's world event handlers: the engine-start guard,
// the post-start dry-tank check, and the seat-entry gauge sync.
func (e *Engine) Bind() {
	bus := e.world.Events()
	bus.OnEngineStartRequested(e.GateEngineStart)

	// Engine starts can race the sweep draining the last of the tank, so a
	// start that slipped past the guard is re-checked and reverted here.
	// A vehicle with no fuel record counts as empty at this point.
	bus.OnEngineStarted(func(v world.Vehicle, p world.Player) {
		fuel, ok, err := e.Fuel(context.Background(), v.ID)
		if err != nil {
			e.log.Error().Err(err).Str("vehicle", string(v.ID)).Msg("fuel lookup failed")
			return
		}
		if ok && fuel > 0 {
			return
		}
		if err := e.world.StopEngine(v.ID); err != nil {
			return
		}
		if e.notifier != nil && p.ID != "" {
			e.notifier.Notify(p.ID, "Fuel is empty.")
		}
	})

	bus.OnPlayerEnteredVehicle(func(p world.Player, v world.Vehicle) {
		fuel, ok, err := e.Fuel(context.Background(), v.ID)
		if err != nil || !ok {
			return
		}
		if e.observer != nil {
			e.observer.FuelUpdated(v, fuel)
		}
	})
}

// Run drives the consumption sweep until the context is cancelled.
func (e *Engine) Run(ctx context.Context) error {
	ticker := time.NewTicker(e.cfg.TickInterval)
	defer ticker.Stop()

	e.log.Info().
		Dur("interval", e.cfg.TickInterval).
		Float64("loss_per_tick", e.cfg.LossPerTick).
		Msg("consumption sweep started")

	for {
		select {
		case <-ctx.Done():
			e.log.Info().Msg("consumption sweep stopped")
			return ctx.Err()
		case <-ticker.C:
			e.Sweep(ctx)
		}
	}
}

// Sweep ticks every simulated vehicle once.
func (e *Engine) Sweep(ctx context.Context) {
	now := e.now()
	for _, v := range e.world.Vehicles() {
		if err := e.tick(ctx, v, now); err != nil {
			e.log.Error().Err(err).Str("vehicle", string(v.ID)).Msg("tick failed")
		}
	}
}

// tick advances one vehicle by one consumption step.
func (e *Engine) tick(ctx context.Context, v world.Vehicle, now time.Time) error {
	e.mu.Lock()
	aux := e.aux[v.ID]
	if aux == nil {
		aux = &vehicleAux{}
		e.aux[v.ID] = aux
	}
	e.mu.Unlock()

	fresh, err := e.ensureLoaded(ctx, v.ID, aux)
	if err != nil {
		return err
	}
	if fresh {
		// First sight of a vehicle with no record: persist the initial
		// fill and skip burn and distance until the next sweep.
		e.mu.Lock()
		fuel := aux.fuel
		aux.nextPersist = now.Add(e.cfg.PersistInterval)
		e.mu.Unlock()
		if e.observer != nil {
			e.observer.FuelUpdated(v, fuel)
		}
		return e.ledger.SetFuel(ctx, v.ID, fuel)
	}

	e.mu.Lock()
	if !v.EngineOn {
		fuel := aux.fuel
		e.mu.Unlock()
		if e.observer != nil {
			e.observer.FuelUpdated(v, fuel)
		}
		return nil
	}

	var traveled float64
	hadLastPos := aux.hasLastPos
	if hadLastPos {
		traveled = world.PlanarDistance(aux.lastPos, v.Position)
	}

	aux.fuel -= e.cfg.LossPerTick
	ranDry := aux.fuel <= 0
	if ranDry {
		aux.fuel = 0
	}
	fuel := aux.fuel

	// The reference position advances only when the threshold fires, so
	// short hops accumulate across ticks.
	crossed := hadLastPos && traveled >= e.cfg.DistanceThreshold
	if !hadLastPos || crossed {
		aux.lastPos = v.Position
		aux.hasLastPos = true
	}

	persist := !now.Before(aux.nextPersist)
	if persist {
		aux.nextPersist = now.Add(e.cfg.PersistInterval)
	}
	e.mu.Unlock()

	if crossed {
		e.world.Events().EmitDistanceTraveled(v, traveled)
	}

	if ranDry {
		if err := e.world.StopEngine(v.ID); err != nil {
			e.log.Warn().Err(err).Str("vehicle", string(v.ID)).Msg("engine stop on empty tank failed")
		}
	}
	if e.observer != nil {
		e.observer.FuelUpdated(v, fuel)
	}

	if persist {
		if err := e.ledger.SetFuel(ctx, v.ID, fuel); err != nil {
			return err
		}
	}
	return nil
}

// ensureLoaded pulls the ledger record into the aux table on first sight of
// a vehicle. Vehicles with no record start with the configured initial fuel;
// the returned bool reports that fresh initialization.
func (e *Engine) ensureLoaded(ctx context.Context, id world.VehicleID, aux *vehicleAux) (bool, error) {
	e.mu.Lock()
	if aux.loaded {
		e.mu.Unlock()
		return false, nil
	}
	e.mu.Unlock()

	rec, ok, err := e.ledger.FuelRecord(ctx, id)
	if err != nil {
		return false, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if aux.loaded {
		return false, nil
	}
	if ok {
		aux.fuel = clamp(rec.Fuel, 0, e.cfg.MaximumFuel)
	} else {
		aux.fuel = e.cfg.InitialFuel
	}
	aux.loaded = true
	return !ok, nil
}

// GateEngineStart is the consumption engine's engine-start guard. Starts are
// rejected on an empty tank or while a refuel transaction holds the vehicle.
func (e *Engine) GateEngineStart(v world.Vehicle) world.EngineStartDecision {
	if v.EngineOn {
		return world.EngineStartDecision{Accepted: true}
	}

	e.mu.Lock()
	aux := e.aux[v.ID]
	refueling := aux != nil && aux.refueling
	e.mu.Unlock()

	if refueling {
		return world.EngineStartDecision{Accepted: false, Reason: "Vehicle is currently refueling."}
	}
	if !e.HasFuel(context.Background(), v.ID) {
		return world.EngineStartDecision{Accepted: false, Reason: "Fuel is empty."}
	}
	return world.EngineStartDecision{Accepted: true}
}

// HasFuel reports whether the vehicle's tank holds any fuel. Unknown
// vehicles count as fueled because they load with initial fuel.
func (e *Engine) HasFuel(ctx context.Context, id world.VehicleID) bool {
	fuel, ok, err := e.Fuel(ctx, id)
	if err != nil {
		e.log.Error().Err(err).Str("vehicle", string(id)).Msg("fuel lookup failed")
		return false
	}
	return !ok || fuel > 0
}

// Fuel returns the current working fuel value for a vehicle. ok is false
// when the vehicle has never been seen and holds no ledger record.
func (e *Engine) Fuel(ctx context.Context, id world.VehicleID) (float64, bool, error) {
	e.mu.Lock()
	if aux := e.aux[id]; aux != nil && aux.loaded {
		fuel := aux.fuel
		e.mu.Unlock()
		return fuel, true, nil
	}
	e.mu.Unlock()

	rec, ok, err := e.ledger.FuelRecord(ctx, id)
	if err != nil || !ok {
		return 0, false, err
	}
	return clamp(rec.Fuel, 0, e.cfg.MaximumFuel), true, nil
}

// AddFuel credits fuel to a vehicle's tank, clamped at capacity, and
// persists immediately. Used by completed refuel transactions.
func (e *Engine) AddFuel(ctx context.Context, id world.VehicleID, amount float64) error {
	fuel, ok, err := e.Fuel(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		fuel = e.cfg.InitialFuel
	}
	return e.SetFuel(ctx, id, fuel+amount)
}

// SetFuel overwrites a vehicle's fuel, clamped to [0, MaximumFuel], and
// persists immediately.
func (e *Engine) SetFuel(ctx context.Context, id world.VehicleID, fuel float64) error {
	fuel = clamp(fuel, 0, e.cfg.MaximumFuel)

	e.mu.Lock()
	aux := e.aux[id]
	if aux == nil {
		aux = &vehicleAux{}
		e.aux[id] = aux
	}
	aux.fuel = fuel
	aux.loaded = true
	aux.nextPersist = e.now().Add(e.cfg.PersistInterval)
	e.mu.Unlock()

	if err := e.ledger.SetFuel(ctx, id, fuel); err != nil {
		return err
	}

	if v, ok := e.world.Vehicle(id); ok && e.observer != nil {
		e.observer.FuelUpdated(v, fuel)
	}
	return nil
}

// SetRefueling marks or clears the refueling hold on a vehicle. While held,
// engine starts are rejected; the sweep keeps running as normal.
func (e *Engine) SetRefueling(id world.VehicleID, refueling bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	aux := e.aux[id]
	if aux == nil {
		aux = &vehicleAux{}
		e.aux[id] = aux
	}
	aux.refueling = refueling
}

// IsRefueling reports whether a refuel transaction currently holds the
// vehicle.
func (e *Engine) IsRefueling(id world.VehicleID) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	aux := e.aux[id]
	return aux != nil && aux.refueling
}

// Forget drops a vehicle's auxiliary state. Called when a vehicle is
// removed from the simulation; the ledger record stays.
func (e *Engine) Forget(id world.VehicleID) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.aux, id)
}

// MaximumFuel exposes the tank capacity the engine enforces.
func (e *Engine) MaximumFuel() float64 {
	return e.cfg.MaximumFuel
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
