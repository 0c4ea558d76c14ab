package websocket

import (
	"github.com/openrp/fuel-stations/game/refuel"
	"github.com/openrp/fuel-stations/game/world"
)

// Gateway adapts the hub to the collaborator interfaces the simulation
// engines push through: notifications, fuel gauge updates, dialogs, and
// progress bars.
type Gateway struct {
	hub *Hub
}

// NewGateway wraps a hub.
func NewGateway(hub *Hub) *Gateway {
	return &Gateway{hub: hub}
}

// Notify implements the notifier used by both engines.
func (g *Gateway) Notify(id world.PlayerID, message string) {
	g.hub.SendToPlayer(id, "notification", map[string]string{"message": message})
}

// FuelUpdated implements the consumption engine's observer. Gauge state is
// world-visible, so it broadcasts.
func (g *Gateway) FuelUpdated(v world.Vehicle, fuel float64) {
	g.hub.Broadcast("fuel_update", map[string]interface{}{
		"vehicle_id": v.ID,
		"fuel":       fuel,
		"position":   v.Position,
	})
}

// ShowDialog implements the refuel engine's dialog channel.
func (g *Gateway) ShowDialog(p world.Player, d refuel.Dialog) {
	g.hub.SendToPlayer(p.ID, "dialog", d)
}

// ShowProgress implements the refuel engine's dialog channel.
func (g *Gateway) ShowProgress(p world.Player, pr refuel.Progress) {
	g.hub.SendToPlayer(p.ID, "progress", map[string]interface{}{
		"id":          pr.ID,
		"label":       pr.Label,
		"position":    pr.Position,
		"duration_ms": pr.Duration.Milliseconds(),
	})
}

// ClearProgress implements the refuel engine's dialog channel.
func (g *Gateway) ClearProgress(id world.PlayerID, progressID string) {
	g.hub.SendToPlayer(id, "clear_progress", map[string]string{"id": progressID})
}
