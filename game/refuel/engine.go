package refuel

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/openrp/fuel-stations/game/world"
	"github.com/openrp/fuel-stations/storage"
)

var (
	// ErrInVehicle rejects requests from seated players.
	ErrInVehicle = errors.New("cannot refuel while seated in a vehicle")

	// ErrAlreadyRefueling rejects a request while the player holds a live
	// session or the target vehicle is mid-fill.
	ErrAlreadyRefueling = errors.New("a refuel is already in progress")

	// ErrNoVehicleNearby means no vehicle sits in front of the pump.
	ErrNoVehicleNearby = errors.New("no vehicle close enough to the pump")

	// ErrEngineOn rejects refueling a running vehicle.
	ErrEngineOn = errors.New("engine must be off to refuel")

	// ErrTooFar means the player stands too far from the vehicle.
	ErrTooFar = errors.New("vehicle too far from the pump")

	// ErrTankFull means the tank is at or above the full threshold, or the
	// vehicle carries no fuel record to fill against.
	ErrTankFull = errors.New("tank is already full")

	// ErrCannotAfford means the player's cash buys no more than the minimum
	// purchase.
	ErrCannotAfford = errors.New("cannot afford enough fuel")

	// ErrNoSession means no live session or pending dialog exists.
	ErrNoSession = errors.New("no pending refuel session")
)

// VehicleFuel is the slice of the consumption engine the transaction needs:
// the refueling hold and tank access.
type VehicleFuel interface {
	IsRefueling(id world.VehicleID) bool
	SetRefueling(id world.VehicleID, refueling bool)
	Fuel(ctx context.Context, id world.VehicleID) (float64, bool, error)
	AddFuel(ctx context.Context, id world.VehicleID, amount float64) error
}

// Notifier delivers short status messages to a player's screen.
type Notifier interface {
	Notify(id world.PlayerID, message string)
}

// Dialog is a yes/no prompt shown to a player. The client answers with an
// accept (carrying a chosen amount) or a cancel.
type Dialog struct {
	Header      string  `json:"header"`
	Summary     string  `json:"summary"`
	MaxFillable int     `json:"max_fillable"`
	UnitPrice   float64 `json:"unit_price"`
	AcceptText  string  `json:"accept_text"`
	DeclineText string  `json:"decline_text"`
}

// Progress is a timed progress bar shown to a player.
type Progress struct {
	ID       string        `json:"id"`
	Label    string        `json:"label"`
	Position world.Vec3    `json:"position"`
	Duration time.Duration `json:"duration"`
}

// DialogChannel pushes dialogs and progress bars to clients.
type DialogChannel interface {
	ShowDialog(p world.Player, d Dialog)
	ShowProgress(p world.Player, pr Progress)
	ClearProgress(id world.PlayerID, progressID string)
}

// Engine runs refuel transactions. One session per player, held in an
// explicit table with lazy expiry.
type Engine struct {
	cfg      Config
	world    *world.World
	fuel     VehicleFuel
	wallet   storage.Wallet
	notifier Notifier
	dialogs  DialogChannel
	log      zerolog.Logger

	mu       sync.Mutex
	sessions map[world.PlayerID]*Session

	now func() time.Time
}

// New creates a refuel engine. Notifier and dialogs may be nil.
func New(cfg Config, w *world.World, fuel VehicleFuel, wallet storage.Wallet, notifier Notifier, dialogs DialogChannel, log zerolog.Logger) *Engine {
	return &Engine{
		cfg:      cfg,
		world:    w,
		fuel:     fuel,
		wallet:   wallet,
		notifier: notifier,
		dialogs:  dialogs,
		log:      log.With().Str("component", "refuel").Logger(),
		sessions: make(map[world.PlayerID]*Session),
		now:      time.Now,
	}
}

// Request opens a refuel transaction for a player standing at a pump. On
// success an offer dialog is pushed to the player and the returned session
// carries the priced offer.
func (e *Engine) Request(ctx context.Context, playerID world.PlayerID) (Session, error) {
	player, ok := e.world.Player(playerID)
	if !ok {
		return Session{}, world.ErrPlayerNotFound
	}
	if player.VehicleID != "" {
		e.notify(playerID, "Exit the vehicle before refueling.")
		return Session{}, ErrInVehicle
	}

	now := e.now()
	e.mu.Lock()
	if s, exists := e.sessions[playerID]; exists {
		if !s.expired(now) {
			e.mu.Unlock()
			e.notify(playerID, "You are already refilling.")
			return Session{}, ErrAlreadyRefueling
		}
		delete(e.sessions, playerID)
	}
	e.mu.Unlock()

	vehicle, found := world.NearestVehicle(player.Position, player.Rotation, e.world.Vehicles(), e.cfg.TriggerRadius)
	if !found {
		e.notify(playerID, "No vehicle in range of the pump.")
		return Session{}, ErrNoVehicleNearby
	}
	if vehicle.EngineOn {
		e.notify(playerID, "Turn the engine off first.")
		return Session{}, ErrEngineOn
	}
	if e.fuel.IsRefueling(vehicle.ID) {
		e.notify(playerID, "This vehicle is already refueling.")
		return Session{}, ErrAlreadyRefueling
	}
	if world.PlanarDistance(player.Position, vehicle.Position) > e.cfg.MaxPumpDistance {
		e.notify(playerID, "Move closer to the vehicle.")
		return Session{}, ErrTooFar
	}

	current, tracked, err := e.fuel.Fuel(ctx, vehicle.ID)
	if err != nil {
		return Session{}, fmt.Errorf("fuel lookup failed: %w", err)
	}
	if !tracked || current >= e.cfg.FullThreshold {
		e.notify(playerID, "The tank is already full.")
		return Session{}, ErrTankFull
	}

	cash, err := e.wallet.Balance(ctx, playerID)
	if err != nil {
		return Session{}, fmt.Errorf("balance lookup failed: %w", err)
	}

	missing := e.cfg.MaximumFuel - current
	if cash < missing*e.cfg.PricePerUnit {
		missing = missing - e.cfg.PricePerUnit*cash
	}
	if missing <= e.cfg.MinPurchase {
		e.notify(playerID, "You cannot afford to refuel.")
		return Session{}, ErrCannotAfford
	}
	maxFillable := int(math.Floor(missing))

	session := &Session{
		Player:      playerID,
		Vehicle:     vehicle.ID,
		UnitPrice:   e.cfg.PricePerUnit,
		MaxFillable: maxFillable,
		ExpiresAt:   now.Add(e.cfg.ResetTimeout),
		dialog:      dialogOffer,
	}

	e.mu.Lock()
	e.sessions[playerID] = session
	e.mu.Unlock()

	if e.dialogs != nil {
		e.dialogs.ShowDialog(player, Dialog{
			Header:      "Refuel Vehicle",
			Summary:     fmt.Sprintf("Refuel your %s for $%.0f per unit? Up to %d fuel.", vehicle.Model, session.UnitPrice, maxFillable),
			MaxFillable: maxFillable,
			UnitPrice:   session.UnitPrice,
			AcceptText:  "Refuel",
			DeclineText: "Walk Away",
		})
	}

	e.log.Info().
		Str("player", string(playerID)).
		Str("vehicle", string(vehicle.ID)).
		Int("max_fillable", maxFillable).
		Float64("unit_price", session.UnitPrice).
		Msg("refuel offered")
	return *session, nil
}

// AcceptDialog answers the player's pending dialog with a chosen amount.
// For an offer dialog this starts the fill. Stale acknowledgments are
// absorbed as ErrNoSession.
func (e *Engine) AcceptDialog(ctx context.Context, playerID world.PlayerID, amount int) error {
	e.mu.Lock()
	s, exists := e.sessions[playerID]
	if !exists || s.dialog == dialogNone {
		e.mu.Unlock()
		return ErrNoSession
	}
	if s.expired(e.now()) {
		delete(e.sessions, playerID)
		e.mu.Unlock()
		e.notify(playerID, "The offer expired. Try again.")
		return ErrNoSession
	}
	kind := s.dialog
	s.dialog = dialogNone
	e.mu.Unlock()

	switch kind {
	case dialogOffer:
		return e.Start(ctx, playerID, amount)
	default:
		return ErrNoSession
	}
}

// CancelDialog answers the player's pending dialog negatively and discards
// the session. Safe to call with nothing pending.
func (e *Engine) CancelDialog(ctx context.Context, playerID world.PlayerID) error {
	e.mu.Lock()
	s, exists := e.sessions[playerID]
	if exists && !s.Filling {
		delete(e.sessions, playerID)
	}
	e.mu.Unlock()
	return nil
}

// Start takes payment for the accepted offer and begins the timed fill.
// The client-chosen amount is clamped to the session's ceiling here, since
// tank state may have moved since the offer.
func (e *Engine) Start(ctx context.Context, playerID world.PlayerID, amount int) error {
	now := e.now()
	e.mu.Lock()
	s, exists := e.sessions[playerID]
	if !exists || s.Filling {
		e.mu.Unlock()
		e.notify(playerID, "Try again.")
		return ErrNoSession
	}
	if s.expired(now) {
		delete(e.sessions, playerID)
		e.mu.Unlock()
		e.notify(playerID, "The offer expired. Try again.")
		return ErrNoSession
	}
	session := *s
	e.mu.Unlock()

	if amount <= 0 || amount > session.MaxFillable {
		amount = session.MaxFillable
	}

	vehicle, ok := e.world.Vehicle(session.Vehicle)
	if !ok {
		e.dropSession(playerID)
		return world.ErrVehicleNotFound
	}
	if e.fuel.IsRefueling(session.Vehicle) {
		e.dropSession(playerID)
		e.notify(playerID, "This vehicle is already refueling.")
		return ErrAlreadyRefueling
	}
	// Engine flipped on since the offer. The session survives so the player
	// can turn it off and accept again.
	if vehicle.EngineOn {
		e.mu.Lock()
		if s, still := e.sessions[playerID]; still {
			s.dialog = dialogOffer
		}
		e.mu.Unlock()
		e.notify(playerID, "Turn the engine off first.")
		return ErrEngineOn
	}

	cost := session.UnitPrice * float64(amount)
	if err := e.wallet.Debit(ctx, playerID, cost); err != nil {
		e.dropSession(playerID)
		if errors.Is(err, storage.ErrInsufficientFunds) {
			e.notify(playerID, "You cannot afford to refuel.")
			return ErrCannotAfford
		}
		return fmt.Errorf("payment failed: %w", err)
	}

	duration := time.Duration(amount) * e.cfg.FillTimePerUnit

	e.mu.Lock()
	s, exists = e.sessions[playerID]
	if !exists {
		e.mu.Unlock()
		return ErrNoSession
	}
	s.Filling = true
	s.FillAmount = amount
	s.fill = scheduleFill(duration, func() { e.completeFill(playerID) })
	e.mu.Unlock()

	e.fuel.SetRefueling(session.Vehicle, true)

	if e.dialogs != nil {
		player, _ := e.world.Player(playerID)
		e.dialogs.ShowProgress(player, Progress{
			ID:       progressID(playerID),
			Label:    "Refueling...",
			Position: vehicle.Position,
			Duration: duration,
		})
	}

	e.log.Info().
		Str("player", string(playerID)).
		Str("vehicle", string(session.Vehicle)).
		Int("fuel", amount).
		Float64("cost", cost).
		Dur("duration", duration).
		Msg("refuel started")
	return nil
}

// completeFill lands the purchased fuel when the fill timer fires. The
// payment stays spent even when the vehicle despawned mid-fill.
func (e *Engine) completeFill(playerID world.PlayerID) {
	e.mu.Lock()
	s, exists := e.sessions[playerID]
	if !exists || !s.Filling {
		e.mu.Unlock()
		return
	}
	session := *s
	delete(e.sessions, playerID)
	e.mu.Unlock()

	e.fuel.SetRefueling(session.Vehicle, false)

	if e.dialogs != nil {
		e.dialogs.ClearProgress(playerID, progressID(playerID))
	}

	cost := session.UnitPrice * float64(session.FillAmount)
	if _, stillHere := e.world.Player(playerID); stillHere {
		e.notify(playerID, fmt.Sprintf("Refueled %d fuel for $%.0f.", session.FillAmount, cost))
	}

	ctx := context.Background()
	if _, ok := e.world.Vehicle(session.Vehicle); !ok {
		e.log.Warn().
			Str("player", string(playerID)).
			Str("vehicle", string(session.Vehicle)).
			Msg("vehicle vanished during fill")
		return
	}

	if err := e.fuel.AddFuel(ctx, session.Vehicle, float64(session.FillAmount)); err != nil {
		e.log.Error().Err(err).
			Str("vehicle", string(session.Vehicle)).
			Msg("fuel credit failed")
		return
	}

	e.log.Info().
		Str("player", string(playerID)).
		Str("vehicle", string(session.Vehicle)).
		Int("fuel", session.FillAmount).
		Msg("refuel completed")
}

// Cancel discards the player's pre-payment session. Idempotent when no
// session exists. A running fill cannot be cancelled; it already charged
// and will run to completion.
func (e *Engine) Cancel(ctx context.Context, playerID world.PlayerID) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, exists := e.sessions[playerID]
	if !exists {
		return nil
	}
	if s.Filling {
		return ErrAlreadyRefueling
	}
	delete(e.sessions, playerID)
	return nil
}

// Session returns a snapshot of the player's current transaction, expired
// sessions excluded.
func (e *Engine) Session(playerID world.PlayerID) (Session, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, exists := e.sessions[playerID]
	if !exists || s.expired(e.now()) {
		return Session{}, false
	}
	return *s, true
}

// Close stops all outstanding fill timers and releases their vehicle holds.
// Fills interrupted by shutdown are not credited or refunded; the up-front
// payment model means crash recovery owes nothing either way.
func (e *Engine) Close() {
	e.mu.Lock()
	sessions := make([]*Session, 0, len(e.sessions))
	for _, s := range e.sessions {
		sessions = append(sessions, s)
	}
	e.sessions = make(map[world.PlayerID]*Session)
	e.mu.Unlock()

	for _, s := range sessions {
		if s.Filling && s.fill.Cancel() {
			e.fuel.SetRefueling(s.Vehicle, false)
		}
	}
}

func (e *Engine) dropSession(playerID world.PlayerID) {
	e.mu.Lock()
	delete(e.sessions, playerID)
	e.mu.Unlock()
}

func (e *Engine) notify(playerID world.PlayerID, message string) {
	if e.notifier != nil {
		e.notifier.Notify(playerID, message)
	}
}

func progressID(playerID world.PlayerID) string {
	return "refuel-" + string(playerID)
}
