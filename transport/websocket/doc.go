// Package websocket provides the real-time transport between the server
// and connected game clients.
//
// The websocket package implements:
//   - Per-player WebSocket connections with ping/pong keepalive
//   - Server pushes: notifications, fuel gauge updates, dialogs, progress
//   - Client answers to dialogs (accept with amount, cancel)
//   - Connection lifecycle management
//
// Architecture:
//
// The package uses a hub-and-spoke model where a central Hub manages all
// WebSocket connections, keyed by player. Each connection is handled by a
// dedicated read and write goroutine pair. The Gateway type adapts the hub
// to the collaborator interfaces the simulation engines push through, so
// the engines never see the transport directly.
//
// Message Protocol:
//
// Messages are JSON envelopes {type, player_id, data} in both directions:
//   - Outgoing: notification, fuel_update, dialog, progress, clear_progress
//   - Incoming: dialog_accept {amount}, dialog_cancel
//
// Players identify themselves via query parameter (?player=p1) when
// establishing the connection. A player may hold several connections;
// pushes fan out to all of them, while fuel gauge updates broadcast to
// everyone.
//
// Usage:
//
//	hub := websocket.NewHub(logger)
//	hub.SetDialogHandler(refuelEngine)
//	go hub.Run(ctx)
//
//	gateway := websocket.NewGateway(hub)
//	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
//		hub.ServeWS(w, r, world.PlayerID(r.URL.Query().Get("player")))
//	})
package websocket
