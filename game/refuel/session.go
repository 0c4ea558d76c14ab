package refuel

import (
	"time"

	"github.com/openrp/fuel-stations/game/world"
)

// dialogKind tags the dialog a session is waiting on. Dispatch happens on
// the tag so session state stays inspectable instead of carrying callbacks.
type dialogKind int

const (
	dialogNone dialogKind = iota
	// dialogOffer awaits the player's answer to a priced refuel offer.
	dialogOffer
)

// Session is one player's in-flight refuel transaction. UnitPrice is fixed
// at creation; MaxFillable bounds the amount the player may accept.
type Session struct {
	Player      world.PlayerID  `json:"player"`
	Vehicle     world.VehicleID `json:"vehicle"`
	UnitPrice   float64         `json:"unit_price"`
	MaxFillable int             `json:"max_fillable"`
	ExpiresAt   time.Time       `json:"expires_at"`
	Filling     bool            `json:"filling"`
	FillAmount  int             `json:"fill_amount,omitempty"`

	dialog dialogKind
	fill   *fillTask
}

// expired reports whether the offer window has passed. Sessions that
// progressed to filling never expire; the fill timer ends them.
func (s *Session) expired(now time.Time) bool {
	return !s.Filling && now.After(s.ExpiresAt)
}

// fillTask is a cancellable handle on the scheduled completion of a fill.
// Gameplay never cancels a running fill, but shutdown does.
type fillTask struct {
	timer *time.Timer
}

func scheduleFill(d time.Duration, complete func()) *fillTask {
	return &fillTask{timer: time.AfterFunc(d, complete)}
}

// Cancel stops the pending completion. Returns false when the completion
// already fired or was cancelled before.
func (t *fillTask) Cancel() bool {
	if t == nil || t.timer == nil {
		return false
	}
	return t.timer.Stop()
}
