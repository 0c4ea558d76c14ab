package storage

import (
	"context"
	"sync"

	"github.com/openrp/fuel-stations/game/world"
)

// MemoryStore keeps fuel records and balances in process memory. It backs
// tests and servers running without a database.
type MemoryStore struct {
	mu       sync.Mutex
	records  map[world.VehicleID]FuelRecord
	balances map[world.PlayerID]float64
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records:  make(map[world.VehicleID]FuelRecord),
		balances: make(map[world.PlayerID]float64),
	}
}

// FuelRecord implements Ledger.
func (s *MemoryStore) FuelRecord(ctx context.Context, id world.VehicleID) (FuelRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	return rec, ok, nil
}

// SetFuel implements Ledger.
func (s *MemoryStore) SetFuel(ctx context.Context, id world.VehicleID, fuel float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[id] = FuelRecord{VehicleID: id, Fuel: fuel}
	return nil
}

// DeleteFuelRecord removes a vehicle's record. Used when vehicles are
// permanently destroyed.
func (s *MemoryStore) DeleteFuelRecord(id world.VehicleID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, id)
}

// Balance implements Wallet.
func (s *MemoryStore) Balance(ctx context.Context, id world.PlayerID) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.balances[id], nil
}

// Debit implements Wallet.
func (s *MemoryStore) Debit(ctx context.Context, id world.PlayerID, amount float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.balances[id] < amount {
		return ErrInsufficientFunds
	}
	s.balances[id] -= amount
	return nil
}

// Credit implements Wallet.
func (s *MemoryStore) Credit(ctx context.Context, id world.PlayerID, amount float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.balances[id] += amount
	return nil
}
