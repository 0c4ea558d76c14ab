package world

// Zone is a proximity-triggered interaction point, e.g. a fuel pump.
type Zone struct {
	UID         string
	Position    Vec3
	Radius      float64
	Description string
	OnEnter     func(p Player)
}

// Marker is a persistent map marker shown to all clients.
type Marker struct {
	UID      string
	Text     string
	Position Vec3
	Sprite   int
	Color    int
	Scale    float64
}

// RegisterZone adds an interaction zone. Zones are static after startup.
func (w *World) RegisterZone(z Zone) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.zones = append(w.zones, z)
}

// RegisterMarker adds a map marker.
func (w *World) RegisterMarker(m Marker) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.markers = append(w.markers, m)
}

// Markers returns all registered map markers.
func (w *World) Markers() []Marker {
	w.mu.RLock()
	defer w.mu.RUnlock()

	result := make([]Marker, len(w.markers))
	copy(result, w.markers)
	return result
}

// Interact triggers the nearest zone covering the player's position. Returns
// false when the player stands in no zone.
func (w *World) Interact(playerID PlayerID) bool {
	w.mu.RLock()
	p, ok := w.players[playerID]
	if !ok {
		w.mu.RUnlock()
		return false
	}
	playerSnap := *p

	var target *Zone
	bestDist := 0.0
	for i := range w.zones {
		z := &w.zones[i]
		d := PlanarDistance(playerSnap.Position, z.Position)
		if d > z.Radius {
			continue
		}
		if target == nil || d < bestDist {
			target = z
			bestDist = d
		}
	}
	w.mu.RUnlock()

	if target == nil || target.OnEnter == nil {
		return false
	}
	target.OnEnter(playerSnap)
	return true
}
