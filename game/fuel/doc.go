// Package fuel implements continuous fuel consumption for simulated
// vehicles. A single sweep goroutine walks every vehicle on a fixed tick,
// burns fuel while the engine runs, forces the engine off when the tank
// runs dry, and batches ledger writes so steady-state driving does not
// hammer the store.
//
// The engine also owns the per-vehicle refueling flag: while a refuel
// transaction is filling a tank, consumption for that vehicle is paused
// and engine starts are rejected.
package fuel
