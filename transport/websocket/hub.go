package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/openrp/fuel-stations/game/world"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins in development
		return true
	},
}

// Message is the wire envelope in both directions.
type Message struct {
	Type     string          `json:"type"`
	PlayerID string          `json:"player_id,omitempty"`
	Data     json.RawMessage `json:"data,omitempty"`
}

// Client represents one player's WebSocket connection
type Client struct {
	hub      *Hub
	conn     *websocket.Conn
	send     chan []byte
	playerID world.PlayerID
}

// Hub maintains the set of active clients keyed by player and routes
// outbound pushes and inbound dialog answers.
type Hub struct {
	// Guards the players map; pushes arrive from engine goroutines, not
	// just the Run loop.
	mu sync.Mutex

	// Registered clients by player ID
	players map[world.PlayerID]map[*Client]bool

	// Inbound client messages
	inbound chan inboundMessage

	// Register requests from clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	handler DialogHandler
	log     zerolog.Logger
}

// DialogHandler receives client answers to dialogs pushed by the server.
type DialogHandler interface {
	AcceptDialog(ctx context.Context, playerID world.PlayerID, amount int) error
	CancelDialog(ctx context.Context, playerID world.PlayerID) error
}

type inboundMessage struct {
	playerID world.PlayerID
	msg      Message
}

// NewHub creates a new WebSocket hub
func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		players:    make(map[world.PlayerID]map[*Client]bool),
		inbound:    make(chan inboundMessage, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		log:        log.With().Str("component", "websocket").Logger(),
	}
}

// SetDialogHandler wires the consumer of client dialog answers. Must be
// called before Run.
func (h *Hub) SetDialogHandler(handler DialogHandler) {
	h.handler = handler
}

// Run starts the hub's event loop.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case in := <-h.inbound:
			h.dispatch(ctx, in)
		}
	}
}

// ServeWS handles WebSocket requests from clients
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, playerID world.PlayerID) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := &Client{
		hub:      h,
		conn:     conn,
		send:     make(chan []byte, 256),
		playerID: playerID,
	}

	client.hub.register <- client

	go client.writePump()
	go client.readPump()
}

// SendToPlayer pushes a typed message to all of a player's connections.
// Payloads that fail to marshal are dropped with a log line.
func (h *Hub) SendToPlayer(playerID world.PlayerID, msgType string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.log.Error().Err(err).Str("type", msgType).Msg("failed to marshal payload")
		return
	}
	raw, err := json.Marshal(Message{Type: msgType, PlayerID: string(playerID), Data: data})
	if err != nil {
		h.log.Error().Err(err).Str("type", msgType).Msg("failed to marshal message")
		return
	}
	h.deliver(playerID, raw)
}

// Broadcast pushes a typed message to every connected client.
func (h *Hub) Broadcast(msgType string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.log.Error().Err(err).Str("type", msgType).Msg("failed to marshal payload")
		return
	}
	raw, err := json.Marshal(Message{Type: msgType, Data: data})
	if err != nil {
		h.log.Error().Err(err).Str("type", msgType).Msg("failed to marshal message")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, clients := range h.players {
		for client := range clients {
			select {
			case client.send <- raw:
			default:
				h.closeClientLocked(client)
			}
		}
	}
}

func (h *Hub) deliver(playerID world.PlayerID, raw []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if clients, ok := h.players[playerID]; ok {
		for client := range clients {
			select {
			case client.send <- raw:
			default:
				// Client's send channel is full, close it
				h.closeClientLocked(client)
			}
		}
	}
}

// dispatch routes one inbound client message.
func (h *Hub) dispatch(ctx context.Context, in inboundMessage) {
	switch in.msg.Type {
	case "dialog_accept":
		if h.handler == nil {
			return
		}
		var payload struct {
			Amount int `json:"amount"`
		}
		if len(in.msg.Data) > 0 {
			if err := json.Unmarshal(in.msg.Data, &payload); err != nil {
				h.log.Warn().Err(err).Str("player", string(in.playerID)).Msg("bad dialog_accept payload")
				return
			}
		}
		if err := h.handler.AcceptDialog(ctx, in.playerID, payload.Amount); err != nil {
			h.log.Debug().Err(err).Str("player", string(in.playerID)).Msg("dialog accept rejected")
		}

	case "dialog_cancel":
		if h.handler == nil {
			return
		}
		if err := h.handler.CancelDialog(ctx, in.playerID); err != nil {
			h.log.Debug().Err(err).Str("player", string(in.playerID)).Msg("dialog cancel rejected")
		}

	default:
		h.log.Debug().Str("type", in.msg.Type).Msg("unknown client message type")
	}
}

// registerClient adds a client connection for a player
func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.players[client.playerID] == nil {
		h.players[client.playerID] = make(map[*Client]bool)
	}
	h.players[client.playerID][client] = true

	h.log.Info().
		Str("player", string(client.playerID)).
		Int("connections", len(h.players[client.playerID])).
		Msg("client registered")
}

// unregisterClient removes a client connection
func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closeClientLocked(client)
}

func (h *Hub) closeClientLocked(client *Client) {
	if clients, ok := h.players[client.playerID]; ok {
		if _, ok := clients[client]; ok {
			delete(clients, client)
			close(client.send)

			// Clean up empty player entries
			if len(clients) == 0 {
				delete(h.players, client.playerID)
			}

			h.log.Info().
				Str("player", string(client.playerID)).
				Int("remaining", len(clients)).
				Msg("client unregistered")
		}
	}
}

// readPump pumps messages from the WebSocket connection to the hub
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Warn().Err(err).Str("player", string(c.playerID)).Msg("websocket read error")
			}
			break
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			c.hub.log.Warn().Err(err).Str("player", string(c.playerID)).Msg("bad client message")
			continue
		}
		c.hub.inbound <- inboundMessage{playerID: c.playerID, msg: msg}
	}
}

// writePump pumps messages from the hub to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Add queued messages to the current WebSocket message
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
