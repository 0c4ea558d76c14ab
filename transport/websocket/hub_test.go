package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/openrp/fuel-stations/game/refuel"
	"github.com/openrp/fuel-stations/game/world"
)

func TestNewHub(t *testing.T) {
	hub := NewHub(zerolog.Nop())

	if hub == nil {
		t.Fatal("NewHub() returned nil")
	}
	if hub.players == nil {
		t.Error("Hub players map is nil")
	}
	if hub.inbound == nil {
		t.Error("Hub inbound channel is nil")
	}
	if hub.register == nil {
		t.Error("Hub register channel is nil")
	}
	if hub.unregister == nil {
		t.Error("Hub unregister channel is nil")
	}
}

func TestHubRegisterClient(t *testing.T) {
	hub := NewHub(zerolog.Nop())

	client := &Client{
		hub:      hub,
		playerID: "p1",
		send:     make(chan []byte, 256),
	}

	hub.registerClient(client)

	if _, exists := hub.players["p1"]; !exists {
		t.Error("Player entry was not created")
	}
	if !hub.players["p1"][client] {
		t.Error("Client was not registered for player")
	}
	if len(hub.players["p1"]) != 1 {
		t.Errorf("Expected 1 connection for player, got %d", len(hub.players["p1"]))
	}
}

func TestHubUnregisterClient(t *testing.T) {
	hub := NewHub(zerolog.Nop())

	client := &Client{
		hub:      hub,
		playerID: "p1",
		send:     make(chan []byte, 256),
	}

	hub.registerClient(client)
	hub.unregisterClient(client)

	if _, exists := hub.players["p1"]; exists {
		t.Error("Player entry should have been cleaned up after last connection unregistered")
	}
}

func TestHubMultipleConnectionsPerPlayer(t *testing.T) {
	hub := NewHub(zerolog.Nop())

	client1 := &Client{hub: hub, playerID: "p1", send: make(chan []byte, 256)}
	client2 := &Client{hub: hub, playerID: "p1", send: make(chan []byte, 256)}

	hub.registerClient(client1)
	hub.registerClient(client2)

	if len(hub.players["p1"]) != 2 {
		t.Errorf("Expected 2 connections, got %d", len(hub.players["p1"]))
	}

	hub.unregisterClient(client1)

	if len(hub.players["p1"]) != 1 {
		t.Errorf("Expected 1 connection remaining, got %d", len(hub.players["p1"]))
	}
	if !hub.players["p1"][client2] {
		t.Error("client2 should still be registered")
	}
}

func TestSendToPlayer(t *testing.T) {
	hub := NewHub(zerolog.Nop())

	mine := &Client{hub: hub, playerID: "p1", send: make(chan []byte, 256)}
	other := &Client{hub: hub, playerID: "p2", send: make(chan []byte, 256)}
	hub.registerClient(mine)
	hub.registerClient(other)

	hub.SendToPlayer("p1", "notification", map[string]string{"message": "Fuel is empty."})

	select {
	case data := <-mine.send:
		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Fatalf("Failed to unmarshal message: %v", err)
		}
		if msg.Type != "notification" {
			t.Errorf("Expected type 'notification', got %s", msg.Type)
		}
		if msg.PlayerID != "p1" {
			t.Errorf("Expected player p1, got %s", msg.PlayerID)
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("No message received within timeout")
	}

	select {
	case <-other.send:
		t.Error("Message leaked to another player's connection")
	default:
	}
}

func TestBroadcastReachesAllPlayers(t *testing.T) {
	hub := NewHub(zerolog.Nop())

	c1 := &Client{hub: hub, playerID: "p1", send: make(chan []byte, 256)}
	c2 := &Client{hub: hub, playerID: "p2", send: make(chan []byte, 256)}
	hub.registerClient(c1)
	hub.registerClient(c2)

	hub.Broadcast("fuel_update", map[string]interface{}{"vehicle_id": "v1", "fuel": 42.5})

	for _, c := range []*Client{c1, c2} {
		select {
		case data := <-c.send:
			var msg Message
			if err := json.Unmarshal(data, &msg); err != nil {
				t.Fatalf("Failed to unmarshal message: %v", err)
			}
			if msg.Type != "fuel_update" {
				t.Errorf("Expected type 'fuel_update', got %s", msg.Type)
			}
		case <-time.After(100 * time.Millisecond):
			t.Error("No broadcast received within timeout")
		}
	}
}

type recordingHandler struct {
	mu      sync.Mutex
	accepts []int
	cancels int
}

func (h *recordingHandler) AcceptDialog(ctx context.Context, playerID world.PlayerID, amount int) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.accepts = append(h.accepts, amount)
	return nil
}

func (h *recordingHandler) CancelDialog(ctx context.Context, playerID world.PlayerID) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cancels++
	return nil
}

func TestDialogAnswersRoutedToHandler(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	handler := &recordingHandler{}
	hub.SetDialogHandler(handler)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.ServeWS(w, r, world.PlayerID(r.URL.Query().Get("player")))
	}))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "?player=p1"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to connect to WebSocket: %v", err)
	}
	defer conn.Close()

	accept := `{"type":"dialog_accept","data":{"amount":30}}`
	if err := conn.WriteMessage(websocket.TextMessage, []byte(accept)); err != nil {
		t.Fatalf("write accept: %v", err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"dialog_cancel"}`)); err != nil {
		t.Fatalf("write cancel: %v", err)
	}

	deadline := time.After(time.Second)
	for {
		handler.mu.Lock()
		done := len(handler.accepts) == 1 && handler.cancels == 1
		handler.mu.Unlock()
		if done {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("handler did not receive both answers: accepts=%v cancels=%d", handler.accepts, handler.cancels)
		case <-time.After(5 * time.Millisecond):
		}
	}

	handler.mu.Lock()
	defer handler.mu.Unlock()
	if handler.accepts[0] != 30 {
		t.Errorf("Expected accept amount 30, got %d", handler.accepts[0])
	}
}

func TestWebSocketLifecycle(t *testing.T) {
	hub := NewHub(zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		player := r.URL.Query().Get("player")
		if player == "" {
			player = "default"
		}
		hub.ServeWS(w, r, world.PlayerID(player))
	}))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "?player=ws-test"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to connect to WebSocket: %v", err)
	}

	time.Sleep(50 * time.Millisecond)

	hub.mu.Lock()
	registered := len(hub.players["ws-test"])
	hub.mu.Unlock()
	if registered != 1 {
		t.Errorf("Expected 1 connection for player, got %d", registered)
	}

	conn.Close()
	time.Sleep(50 * time.Millisecond)

	hub.mu.Lock()
	_, exists := hub.players["ws-test"]
	hub.mu.Unlock()
	if exists {
		t.Error("Player entry should have been cleaned up after WebSocket close")
	}
}

func TestGatewayPushes(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	gateway := NewGateway(hub)

	client := &Client{hub: hub, playerID: "p1", send: make(chan []byte, 256)}
	hub.registerClient(client)

	gateway.Notify("p1", "Refueling cancelled.")
	gateway.ShowDialog(world.Player{ID: "p1"}, refuel.Dialog{Header: "Refuel Vehicle", MaxFillable: 40, UnitPrice: 2})
	gateway.ShowProgress(world.Player{ID: "p1"}, refuel.Progress{ID: "refuel-p1", Duration: 3 * time.Second})
	gateway.ClearProgress("p1", "refuel-p1")
	gateway.FuelUpdated(world.Vehicle{ID: "v1"}, 77)

	wantTypes := []string{"notification", "dialog", "progress", "clear_progress", "fuel_update"}
	for _, want := range wantTypes {
		select {
		case data := <-client.send:
			var msg Message
			if err := json.Unmarshal(data, &msg); err != nil {
				t.Fatalf("Failed to unmarshal message: %v", err)
			}
			if msg.Type != want {
				t.Errorf("Expected type %q, got %q", want, msg.Type)
			}
		case <-time.After(100 * time.Millisecond):
			t.Fatalf("Missing %q push", want)
		}
	}
}
