package server

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/jwebster45206/vargacet/pkg/protocol"
)

const (
	writeWait     = 10 * time.Second
	sendQueueSize = 16
)

// conn is one player's websocket with its outbound queue. Writes go
// through a single pump goroutine so broadcasts never interleave frames.
type conn struct {
	playerID string
	ws       *websocket.Conn
	send     chan []byte

	mu     sync.Mutex
	closed bool
}

func (c *conn) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// offer enqueues without blocking. Returns false when the connection is
// closed or its queue is full.
func (c *conn) offer(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

// writePump drains the send queue onto the wire. It exits when the queue
// closes or a write fails; the read side notices the dead socket and
// unregisters.
func (c *conn) writePump(logger *slog.Logger) {
	for data := range c.send {
		_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
			logger.Debug("Write failed", "player_id", c.playerID, "error", err)
			break
		}
	}
	_ = c.ws.Close()
}

// Hub tracks which players are connected to which games and fans
// messages out to them.
type Hub struct {
	mu     sync.Mutex
	games  map[uuid.UUID]map[string]*conn
	logger *slog.Logger
}

// NewHub returns an empty hub.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		games:  make(map[uuid.UUID]map[string]*conn),
		logger: logger,
	}
}

// Register attaches a player's websocket to a game, displacing any
// previous connection for the same seat.
func (h *Hub) Register(gameID uuid.UUID, playerID string, ws *websocket.Conn) *conn {
	c := &conn{playerID: playerID, ws: ws, send: make(chan []byte, sendQueueSize)}
	go c.writePump(h.logger)

	h.mu.Lock()
	players, ok := h.games[gameID]
	if !ok {
		players = make(map[string]*conn)
		h.games[gameID] = players
	}
	old := players[playerID]
	players[playerID] = c
	h.mu.Unlock()

	if old != nil {
		old.close()
	}
	h.logger.Info("Player connected", "game_id", gameID, "player_id", playerID)
	return c
}

// Unregister detaches a connection. A newer connection for the same seat
// is left alone.
func (h *Hub) Unregister(gameID uuid.UUID, playerID string, c *conn) {
	h.mu.Lock()
	if players, ok := h.games[gameID]; ok && players[playerID] == c {
		delete(players, playerID)
		if len(players) == 0 {
			delete(h.games, gameID)
		}
	}
	h.mu.Unlock()

	c.close()
	h.logger.Info("Player disconnected", "game_id", gameID, "player_id", playerID)
}

// Broadcast sends an envelope to every player in a game.
func (h *Hub) Broadcast(gameID uuid.UUID, env protocol.Envelope) {
	data, err := json.Marshal(env)
	if err != nil {
		h.logger.Error("Failed to marshal broadcast", "type", env.Type, "error", err)
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, c := range h.games[gameID] {
		h.offer(c, data)
	}
}

// BroadcastAll sends an envelope to every connected player in every game.
// Used for the global chat channel.
func (h *Hub) BroadcastAll(env protocol.Envelope) {
	data, err := json.Marshal(env)
	if err != nil {
		h.logger.Error("Failed to marshal broadcast", "type", env.Type, "error", err)
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, players := range h.games {
		for _, c := range players {
			h.offer(c, data)
		}
	}
}

// SendTo sends an envelope to a single player, if connected.
func (h *Hub) SendTo(gameID uuid.UUID, playerID string, env protocol.Envelope) {
	data, err := json.Marshal(env)
	if err != nil {
		h.logger.Error("Failed to marshal message", "type", env.Type, "error", err)
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if c, ok := h.games[gameID][playerID]; ok {
		h.offer(c, data)
	}
}

// offer enqueues without blocking; a connection too slow to drain its
// queue is dropped rather than stalling the whole game.
func (h *Hub) offer(c *conn, data []byte) {
	if !c.offer(data) {
		h.logger.Warn("Dropping slow connection", "player_id", c.playerID)
		c.close()
	}
}
