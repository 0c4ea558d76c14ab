package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/openrp/fuel-stations/game/config"
	"github.com/openrp/fuel-stations/game/refuel"
	"github.com/openrp/fuel-stations/game/station"
	"github.com/openrp/fuel-stations/game/world"
	"github.com/openrp/fuel-stations/storage"
)

// ErrInvalidRequest marks caller mistakes the transports map to 400s.
var ErrInvalidRequest = errors.New("invalid request")

// fuelServiceImpl implements the FuelService interface
type fuelServiceImpl struct {
	world    *world.World
	fuel     FuelEngine
	refuel   RefuelEngine
	stations *station.Registry
	wallet   storage.Wallet
	profiles ProfileManager
}

// NewFuelService creates a new service instance
func NewFuelService(w *world.World, fuelEngine FuelEngine, refuelEngine RefuelEngine, stations *station.Registry, wallet storage.Wallet, profiles ProfileManager) FuelService {
	return &fuelServiceImpl{
		world:    w,
		fuel:     fuelEngine,
		refuel:   refuelEngine,
		stations: stations,
		wallet:   wallet,
		profiles: profiles,
	}
}

func (s *fuelServiceImpl) SpawnVehicle(ctx context.Context, req SpawnVehicleRequest) (*VehicleStatus, error) {
	if req.ID == "" {
		return nil, fmt.Errorf("%w: vehicle id is required", ErrInvalidRequest)
	}
	if req.Model == "" {
		return nil, fmt.Errorf("%w: vehicle model is required", ErrInvalidRequest)
	}

	s.world.SpawnVehicle(world.Vehicle{
		ID:       world.VehicleID(req.ID),
		Model:    req.Model,
		Position: req.Position,
		Rotation: req.Rotation,
	})
	return s.vehicleStatus(ctx, world.VehicleID(req.ID))
}

func (s *fuelServiceImpl) RemoveVehicle(ctx context.Context, vehicleID string) error {
	id := world.VehicleID(vehicleID)
	if _, ok := s.world.Vehicle(id); !ok {
		return world.ErrVehicleNotFound
	}
	s.world.RemoveVehicle(id)
	s.fuel.Forget(id)
	return nil
}

func (s *fuelServiceImpl) GetVehicle(ctx context.Context, vehicleID string) (*VehicleStatus, error) {
	return s.vehicleStatus(ctx, world.VehicleID(vehicleID))
}

func (s *fuelServiceImpl) ListVehicles(ctx context.Context) ([]*VehicleStatus, error) {
	vehicles := s.world.Vehicles()
	result := make([]*VehicleStatus, 0, len(vehicles))
	for _, v := range vehicles {
		status, err := s.vehicleStatus(ctx, v.ID)
		if err != nil {
			// Despawned between enumeration and lookup.
			continue
		}
		result = append(result, status)
	}
	return result, nil
}

func (s *fuelServiceImpl) MoveVehicle(ctx context.Context, vehicleID string, pos, rot world.Vec3) error {
	return s.world.MoveVehicle(world.VehicleID(vehicleID), pos, rot)
}

func (s *fuelServiceImpl) StartEngine(ctx context.Context, vehicleID, playerID string) (*EngineStartResult, error) {
	if _, ok := s.world.Vehicle(world.VehicleID(vehicleID)); !ok {
		return nil, world.ErrVehicleNotFound
	}
	decision := s.world.RequestEngineStart(world.VehicleID(vehicleID), world.PlayerID(playerID))
	return &EngineStartResult{Accepted: decision.Accepted, Reason: decision.Reason}, nil
}

func (s *fuelServiceImpl) StopEngine(ctx context.Context, vehicleID string) error {
	return s.world.StopEngine(world.VehicleID(vehicleID))
}

func (s *fuelServiceImpl) SpawnPlayer(ctx context.Context, req SpawnPlayerRequest) (*PlayerStatus, error) {
	if req.ID == "" {
		return nil, fmt.Errorf("%w: player id is required", ErrInvalidRequest)
	}

	s.world.SpawnPlayer(world.Player{
		ID:       world.PlayerID(req.ID),
		Name:     req.Name,
		Position: req.Position,
	})
	if req.Cash > 0 {
		if err := s.wallet.Credit(ctx, world.PlayerID(req.ID), req.Cash); err != nil {
			return nil, fmt.Errorf("failed to seed cash: %w", err)
		}
	}
	return s.playerStatus(ctx, world.PlayerID(req.ID))
}

func (s *fuelServiceImpl) RemovePlayer(ctx context.Context, playerID string) error {
	id := world.PlayerID(playerID)
	if _, ok := s.world.Player(id); !ok {
		return world.ErrPlayerNotFound
	}
	// Pre-payment sessions die with the player; a running fill completes on
	// its own timer.
	_ = s.refuel.Cancel(ctx, id)
	s.world.RemovePlayer(id)
	return nil
}

func (s *fuelServiceImpl) GetPlayer(ctx context.Context, playerID string) (*PlayerStatus, error) {
	return s.playerStatus(ctx, world.PlayerID(playerID))
}

func (s *fuelServiceImpl) MovePlayer(ctx context.Context, playerID string, pos, rot world.Vec3) error {
	return s.world.MovePlayer(world.PlayerID(playerID), pos, rot)
}

func (s *fuelServiceImpl) EnterVehicle(ctx context.Context, playerID, vehicleID string) error {
	return s.world.EnterVehicle(world.PlayerID(playerID), world.VehicleID(vehicleID))
}

func (s *fuelServiceImpl) ExitVehicle(ctx context.Context, playerID string) error {
	return s.world.ExitVehicle(world.PlayerID(playerID))
}

func (s *fuelServiceImpl) Interact(ctx context.Context, playerID string) (*InteractResult, error) {
	if _, ok := s.world.Player(world.PlayerID(playerID)); !ok {
		return nil, world.ErrPlayerNotFound
	}
	return &InteractResult{Triggered: s.world.Interact(world.PlayerID(playerID))}, nil
}

func (s *fuelServiceImpl) RequestRefuel(ctx context.Context, playerID string) (*RefuelOffer, error) {
	session, err := s.refuel.Request(ctx, world.PlayerID(playerID))
	if err != nil {
		return nil, err
	}
	offer := toRefuelOffer(session)
	return &offer, nil
}

func (s *fuelServiceImpl) AcceptOffer(ctx context.Context, playerID string, amount int) error {
	return s.refuel.AcceptDialog(ctx, world.PlayerID(playerID), amount)
}

func (s *fuelServiceImpl) DeclineOffer(ctx context.Context, playerID string) error {
	return s.refuel.CancelDialog(ctx, world.PlayerID(playerID))
}

func (s *fuelServiceImpl) CancelRefuel(ctx context.Context, playerID string) error {
	return s.refuel.Cancel(ctx, world.PlayerID(playerID))
}

func (s *fuelServiceImpl) GetRefuelSession(ctx context.Context, playerID string) (*RefuelOffer, error) {
	session, ok := s.refuel.Session(world.PlayerID(playerID))
	if !ok {
		return nil, refuel.ErrNoSession
	}
	offer := toRefuelOffer(session)
	return &offer, nil
}

func (s *fuelServiceImpl) ListStations(ctx context.Context) ([]*StationInfo, error) {
	stations := s.stations.Stations()
	result := make([]*StationInfo, 0, len(stations))
	for _, st := range stations {
		result = append(result, &StationInfo{
			UID:      st.UID,
			Name:     st.Name,
			Position: st.Position,
			Blip:     st.Blip,
		})
	}
	return result, nil
}

func (s *fuelServiceImpl) ListProfiles(ctx context.Context) ([]*config.ProfileInfo, error) {
	return s.profiles.ListProfiles()
}

func (s *fuelServiceImpl) SetFuel(ctx context.Context, vehicleID string, fuel float64) (*VehicleStatus, error) {
	id := world.VehicleID(vehicleID)
	if _, ok := s.world.Vehicle(id); !ok {
		return nil, world.ErrVehicleNotFound
	}
	if err := s.fuel.SetFuel(ctx, id, fuel); err != nil {
		return nil, fmt.Errorf("failed to set fuel: %w", err)
	}
	return s.vehicleStatus(ctx, id)
}

func (s *fuelServiceImpl) Deposit(ctx context.Context, playerID string, amount float64) (float64, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("%w: deposit amount must be positive", ErrInvalidRequest)
	}
	id := world.PlayerID(playerID)
	if err := s.wallet.Credit(ctx, id, amount); err != nil {
		return 0, fmt.Errorf("failed to credit: %w", err)
	}
	return s.wallet.Balance(ctx, id)
}

func (s *fuelServiceImpl) vehicleStatus(ctx context.Context, id world.VehicleID) (*VehicleStatus, error) {
	v, ok := s.world.Vehicle(id)
	if !ok {
		return nil, world.ErrVehicleNotFound
	}

	status := &VehicleStatus{
		ID:        string(v.ID),
		Model:     v.Model,
		Position:  v.Position,
		Rotation:  v.Rotation,
		EngineOn:  v.EngineOn,
		Refueling: s.fuel.IsRefueling(v.ID),
	}
	if fuel, tracked, err := s.fuel.Fuel(ctx, v.ID); err == nil && tracked {
		status.Fuel = &fuel
	}
	return status, nil
}

func (s *fuelServiceImpl) playerStatus(ctx context.Context, id world.PlayerID) (*PlayerStatus, error) {
	p, ok := s.world.Player(id)
	if !ok {
		return nil, world.ErrPlayerNotFound
	}

	cash, err := s.wallet.Balance(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to read balance: %w", err)
	}
	return &PlayerStatus{
		ID:        string(p.ID),
		Name:      p.Name,
		Position:  p.Position,
		VehicleID: string(p.VehicleID),
		Cash:      cash,
	}, nil
}

func toRefuelOffer(s refuel.Session) RefuelOffer {
	return RefuelOffer{
		PlayerID:    string(s.Player),
		VehicleID:   string(s.Vehicle),
		UnitPrice:   s.UnitPrice,
		MaxFillable: s.MaxFillable,
		ExpiresAt:   s.ExpiresAt,
		Filling:     s.Filling,
		FillAmount:  s.FillAmount,
	}
}
