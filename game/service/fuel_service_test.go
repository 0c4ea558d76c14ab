package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openrp/fuel-stations/game/config"
	"github.com/openrp/fuel-stations/game/fuel"
	"github.com/openrp/fuel-stations/game/refuel"
	"github.com/openrp/fuel-stations/game/station"
	"github.com/openrp/fuel-stations/game/world"
	"github.com/openrp/fuel-stations/storage"
)

type staticProfiles struct{}

func (staticProfiles) ListProfiles() ([]*config.ProfileInfo, error) {
	return []*config.ProfileInfo{{ProfileID: "classic", Name: "Classic"}}, nil
}

// newTestService wires the full stack against in-memory storage: one
// station at the origin, no vehicles or players yet.
func newTestService(t *testing.T) (FuelService, *world.World, *storage.MemoryStore) {
	t.Helper()

	w := world.New()
	store := storage.NewMemoryStore()
	log := zerolog.Nop()

	fuelCfg := fuel.DefaultConfig()
	fuelEngine := fuel.New(fuelCfg, w, store, nil, nil, log)
	fuelEngine.Bind()

	refuelCfg := refuel.DefaultConfig()
	refuelCfg.FillTimePerUnit = time.Millisecond
	refuelEngine := refuel.New(refuelCfg, w, fuelEngine, store, nil, nil, log)

	registry := station.NewRegistry([]station.Station{
		{UID: "s1", Name: "Test Pump", Blip: true},
	}, log)
	registry.Bind(w, refuelCfg.TriggerRadius, func(p world.Player) {
		_, _ = refuelEngine.Request(context.Background(), p.ID)
	})

	svc := NewFuelService(w, fuelEngine, refuelEngine, registry, store, staticProfiles{})
	return svc, w, store
}

func TestSpawnAndListVehicles(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	status, err := svc.SpawnVehicle(ctx, SpawnVehicleRequest{ID: "v1", Model: "sedan", Position: world.Vec3{X: 5}})
	require.NoError(t, err)
	assert.Equal(t, "v1", status.ID)
	assert.False(t, status.EngineOn)

	_, err = svc.SpawnVehicle(ctx, SpawnVehicleRequest{ID: "", Model: "sedan"})
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = svc.SpawnVehicle(ctx, SpawnVehicleRequest{ID: "v2"})
	assert.ErrorIs(t, err, ErrInvalidRequest)

	vehicles, err := svc.ListVehicles(ctx)
	require.NoError(t, err)
	require.Len(t, vehicles, 1)
	assert.Equal(t, "v1", vehicles[0].ID)
}

func TestVehicleLifecycle(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.SpawnVehicle(ctx, SpawnVehicleRequest{ID: "v1", Model: "sedan"})
	require.NoError(t, err)

	require.NoError(t, svc.MoveVehicle(ctx, "v1", world.Vec3{X: 10}, world.Vec3{}))
	status, err := svc.GetVehicle(ctx, "v1")
	require.NoError(t, err)
	assert.Equal(t, 10.0, status.Position.X)

	require.NoError(t, svc.RemoveVehicle(ctx, "v1"))
	_, err = svc.GetVehicle(ctx, "v1")
	assert.ErrorIs(t, err, world.ErrVehicleNotFound)
	assert.ErrorIs(t, svc.RemoveVehicle(ctx, "v1"), world.ErrVehicleNotFound)
}

func TestEngineStartThroughGuard(t *testing.T) {
	svc, _, store := newTestService(t)
	ctx := context.Background()

	_, err := svc.SpawnVehicle(ctx, SpawnVehicleRequest{ID: "v1", Model: "sedan"})
	require.NoError(t, err)

	result, err := svc.StartEngine(ctx, "v1", "p1")
	require.NoError(t, err)
	assert.True(t, result.Accepted)

	require.NoError(t, svc.StopEngine(ctx, "v1"))

	// Drain the tank; the guard must now reject.
	require.NoError(t, store.SetFuel(ctx, "v2", 0))
	_, err = svc.SpawnVehicle(ctx, SpawnVehicleRequest{ID: "v2", Model: "sedan"})
	require.NoError(t, err)

	result, err = svc.StartEngine(ctx, "v2", "p1")
	require.NoError(t, err)
	assert.False(t, result.Accepted)
	assert.NotEmpty(t, result.Reason)

	_, err = svc.StartEngine(ctx, "ghost", "p1")
	assert.ErrorIs(t, err, world.ErrVehicleNotFound)
}

func TestPlayerLifecycle(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	status, err := svc.SpawnPlayer(ctx, SpawnPlayerRequest{ID: "p1", Name: "Avery", Cash: 300})
	require.NoError(t, err)
	assert.Equal(t, 300.0, status.Cash)

	_, err = svc.SpawnVehicle(ctx, SpawnVehicleRequest{ID: "v1", Model: "sedan"})
	require.NoError(t, err)
	require.NoError(t, svc.EnterVehicle(ctx, "p1", "v1"))

	status, err = svc.GetPlayer(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "v1", status.VehicleID)

	require.NoError(t, svc.ExitVehicle(ctx, "p1"))
	require.NoError(t, svc.RemovePlayer(ctx, "p1"))
	_, err = svc.GetPlayer(ctx, "p1")
	assert.ErrorIs(t, err, world.ErrPlayerNotFound)
}

func TestRefuelFlowThroughService(t *testing.T) {
	svc, _, store := newTestService(t)
	ctx := context.Background()

	// Player on foot at the pump, half-full vehicle one unit in front.
	_, err := svc.SpawnPlayer(ctx, SpawnPlayerRequest{ID: "p1", Name: "Avery", Cash: 500})
	require.NoError(t, err)
	require.NoError(t, store.SetFuel(ctx, "v1", 50))
	_, err = svc.SpawnVehicle(ctx, SpawnVehicleRequest{ID: "v1", Model: "sedan", Position: world.Vec3{Y: 1}})
	require.NoError(t, err)

	offer, err := svc.RequestRefuel(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 50, offer.MaxFillable)
	assert.Equal(t, 2.0, offer.UnitPrice)

	got, err := svc.GetRefuelSession(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, offer.VehicleID, got.VehicleID)

	require.NoError(t, svc.AcceptOffer(ctx, "p1", 20))

	balance, err := store.Balance(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 460.0, balance)

	require.Eventually(t, func() bool {
		status, err := svc.GetVehicle(ctx, "v1")
		return err == nil && status.Fuel != nil && *status.Fuel == 70
	}, time.Second, 5*time.Millisecond)
}

func TestDeclineAndCancelRefuel(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.SpawnPlayer(ctx, SpawnPlayerRequest{ID: "p1", Name: "Avery", Cash: 500})
	require.NoError(t, err)
	_, err = svc.SpawnVehicle(ctx, SpawnVehicleRequest{ID: "v1", Model: "sedan", Position: world.Vec3{Y: 1}})
	require.NoError(t, err)
	_, err = svc.SetFuel(ctx, "v1", 50)
	require.NoError(t, err)

	_, err = svc.RequestRefuel(ctx, "p1")
	require.NoError(t, err)
	require.NoError(t, svc.DeclineOffer(ctx, "p1"))

	_, err = svc.GetRefuelSession(ctx, "p1")
	assert.ErrorIs(t, err, refuel.ErrNoSession)

	_, err = svc.RequestRefuel(ctx, "p1")
	require.NoError(t, err)
	require.NoError(t, svc.CancelRefuel(ctx, "p1"))

	_, err = svc.GetRefuelSession(ctx, "p1")
	assert.ErrorIs(t, err, refuel.ErrNoSession)
}

func TestInteractTriggersPump(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.SpawnPlayer(ctx, SpawnPlayerRequest{ID: "p1", Name: "Avery", Cash: 500})
	require.NoError(t, err)
	_, err = svc.SpawnVehicle(ctx, SpawnVehicleRequest{ID: "v1", Model: "sedan", Position: world.Vec3{Y: 1}})
	require.NoError(t, err)
	_, err = svc.SetFuel(ctx, "v1", 50)
	require.NoError(t, err)

	// Standing on the station zone triggers a refuel request.
	result, err := svc.Interact(ctx, "p1")
	require.NoError(t, err)
	assert.True(t, result.Triggered)

	offer, err := svc.GetRefuelSession(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "v1", offer.VehicleID)

	_, err = svc.Interact(ctx, "ghost")
	assert.ErrorIs(t, err, world.ErrPlayerNotFound)
}

func TestStationsAndProfiles(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	stations, err := svc.ListStations(ctx)
	require.NoError(t, err)
	require.Len(t, stations, 1)
	assert.Equal(t, "Test Pump", stations[0].Name)

	profiles, err := svc.ListProfiles(ctx)
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	assert.Equal(t, "classic", profiles[0].ProfileID)
}

func TestAdminSetFuelAndDeposit(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.SpawnVehicle(ctx, SpawnVehicleRequest{ID: "v1", Model: "sedan"})
	require.NoError(t, err)

	status, err := svc.SetFuel(ctx, "v1", 42)
	require.NoError(t, err)
	require.NotNil(t, status.Fuel)
	assert.Equal(t, 42.0, *status.Fuel)

	// Clamped at capacity.
	status, err = svc.SetFuel(ctx, "v1", 9999)
	require.NoError(t, err)
	assert.Equal(t, 100.0, *status.Fuel)

	_, err = svc.SetFuel(ctx, "ghost", 10)
	assert.ErrorIs(t, err, world.ErrVehicleNotFound)

	_, err = svc.SpawnPlayer(ctx, SpawnPlayerRequest{ID: "p1", Name: "Avery"})
	require.NoError(t, err)

	balance, err := svc.Deposit(ctx, "p1", 250)
	require.NoError(t, err)
	assert.Equal(t, 250.0, balance)

	_, err = svc.Deposit(ctx, "p1", -5)
	assert.ErrorIs(t, err, ErrInvalidRequest)
}
