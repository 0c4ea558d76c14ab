package storage

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/openrp/fuel-stations/game/world"
)

func TestMemoryStoreFuelRecords(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	t.Run("missing record", func(t *testing.T) {
		_, ok, err := store.FuelRecord(ctx, "ghost")
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("round trip", func(t *testing.T) {
		require.NoError(t, store.SetFuel(ctx, "v1", 42.5))

		rec, ok, err := store.FuelRecord(ctx, "v1")
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, world.VehicleID("v1"), rec.VehicleID)
		require.Equal(t, 42.5, rec.Fuel)
	})

	t.Run("overwrite", func(t *testing.T) {
		require.NoError(t, store.SetFuel(ctx, "v1", 10))

		rec, _, err := store.FuelRecord(ctx, "v1")
		require.NoError(t, err)
		require.Equal(t, 10.0, rec.Fuel)
	})

	t.Run("delete", func(t *testing.T) {
		store.DeleteFuelRecord("v1")

		_, ok, err := store.FuelRecord(ctx, "v1")
		require.NoError(t, err)
		require.False(t, ok)
	})
}

func TestMemoryStoreWallet(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	t.Run("unknown player starts at zero", func(t *testing.T) {
		balance, err := store.Balance(ctx, "p1")
		require.NoError(t, err)
		require.Zero(t, balance)
	})

	t.Run("credit then debit", func(t *testing.T) {
		require.NoError(t, store.Credit(ctx, "p1", 100))
		require.NoError(t, store.Debit(ctx, "p1", 60))

		balance, err := store.Balance(ctx, "p1")
		require.NoError(t, err)
		require.Equal(t, 40.0, balance)
	})

	t.Run("overdraw rejected without mutation", func(t *testing.T) {
		err := store.Debit(ctx, "p1", 40.01)
		require.ErrorIs(t, err, ErrInsufficientFunds)

		balance, err := store.Balance(ctx, "p1")
		require.NoError(t, err)
		require.Equal(t, 40.0, balance)
	})

	t.Run("exact balance debit", func(t *testing.T) {
		require.NoError(t, store.Debit(ctx, "p1", 40))

		balance, err := store.Balance(ctx, "p1")
		require.NoError(t, err)
		require.Zero(t, balance)
	})
}

func TestMemoryStoreConcurrentWallet(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Credit(ctx, "p1", 100))

	// 100 one-unit credits and 100 one-unit debits race; every debit has
	// cover, so none may fail and the balance must land where it started.
	var wg sync.WaitGroup
	errs := make(chan error, 200)
	for i := 0; i < 100; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			errs <- store.Credit(ctx, "p1", 1)
		}()
		go func() {
			defer wg.Done()
			errs <- store.Debit(ctx, "p1", 1)
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	balance, err := store.Balance(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, 100.0, balance)
}
