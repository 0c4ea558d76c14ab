// Package station holds the static registry of fuel stations and wires
// each one into the world as an interaction zone and map marker.
package station

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/openrp/fuel-stations/game/world"
)

// Station is one configured refueling location.
type Station struct {
	UID      string     `json:"uid"`
	Name     string     `json:"name"`
	Position world.Vec3 `json:"position"`

	// Blip toggles the persistent map marker. Interior pumps skip it.
	Blip bool `json:"blip"`
}

// Registry is the static list of stations. Read-only after Bind.
type Registry struct {
	stations []Station
	log      zerolog.Logger
}

// NewRegistry creates a registry over the configured stations.
func NewRegistry(stations []Station, log zerolog.Logger) *Registry {
	return &Registry{
		stations: stations,
		log:      log.With().Str("component", "station").Logger(),
	}
}

// Stations returns the configured stations.
func (r *Registry) Stations() []Station {
	result := make([]Station, len(r.stations))
	copy(result, r.stations)
	return result
}

// Station returns the station with the given UID.
func (r *Registry) Station(uid string) (Station, bool) {
	for _, s := range r.stations {
		if s.UID == uid {
			return s, true
		}
	}
	return Station{}, false
}

// Bind registers every station as an interaction zone with the given
// trigger radius, plus a map marker for stations that want one. The
// onTrigger callback fires when a player uses a pump.
func (r *Registry) Bind(w *world.World, triggerRadius float64, onTrigger func(p world.Player)) {
	for i, s := range r.stations {
		uid := s.UID
		if uid == "" {
			uid = fmt.Sprintf("fuel-station-%d", i)
		}

		w.RegisterZone(world.Zone{
			UID:         uid,
			Position:    s.Position,
			Radius:      triggerRadius,
			Description: "Refuel Vehicle",
			OnEnter:     onTrigger,
		})

		if s.Blip {
			w.RegisterMarker(world.Marker{
				UID:      uid + "-blip",
				Text:     s.Name,
				Position: s.Position,
				Sprite:   361,
				Color:    1,
				Scale:    1,
			})
		}
	}

	r.log.Info().Int("stations", len(r.stations)).Msg("stations registered")
}
