package world

import "sync"

// EngineStartGuard inspects a vehicle snapshot and accepts or rejects an
// engine-start request. Guards must not mutate world state.
type EngineStartGuard func(v Vehicle) EngineStartDecision

// Bus is the in-process event bus connecting the world registry to the fuel
// and refuel engines. Handlers run synchronously on the emitting goroutine.
type Bus struct {
	mu sync.RWMutex

	startGuards []EngineStartGuard
	started     []func(v Vehicle, p Player)
	entered     []func(p Player, v Vehicle)
	distance    []func(v Vehicle, dist float64)
}

// OnEngineStartRequested registers a guard consulted before any engine
// transitions from off to on.
func (b *Bus) OnEngineStartRequested(guard EngineStartGuard) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.startGuards = append(b.startGuards, guard)
}

// OnEngineStarted registers a handler fired after an engine start was
// accepted and applied.
func (b *Bus) OnEngineStarted(fn func(v Vehicle, p Player)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.started = append(b.started, fn)
}

// OnPlayerEnteredVehicle registers a handler fired when a player takes a seat.
func (b *Bus) OnPlayerEnteredVehicle(fn func(p Player, v Vehicle)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entered = append(b.entered, fn)
}

// OnDistanceTraveled registers a handler for the distance side channel
// emitted by the consumption sweep. Independent of fuel math.
func (b *Bus) OnDistanceTraveled(fn func(v Vehicle, dist float64)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.distance = append(b.distance, fn)
}

// EmitDistanceTraveled notifies distance subscribers.
func (b *Bus) EmitDistanceTraveled(v Vehicle, dist float64) {
	b.mu.RLock()
	handlers := b.distance
	b.mu.RUnlock()

	for _, fn := range handlers {
		fn(v, dist)
	}
}

func (b *Bus) runEngineStartGuards(v Vehicle) EngineStartDecision {
	b.mu.RLock()
	guards := b.startGuards
	b.mu.RUnlock()

	for _, guard := range guards {
		if decision := guard(v); !decision.Accepted {
			return decision
		}
	}
	return EngineStartDecision{Accepted: true}
}

func (b *Bus) emitEngineStarted(v Vehicle, p Player) {
	b.mu.RLock()
	handlers := b.started
	b.mu.RUnlock()

	for _, fn := range handlers {
		fn(v, p)
	}
}

func (b *Bus) emitPlayerEnteredVehicle(p Player, v Vehicle) {
	b.mu.RLock()
	handlers := b.entered
	b.mu.RUnlock()

	for _, fn := range handlers {
		fn(p, v)
	}
}
