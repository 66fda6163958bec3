package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/jwebster45206/vargacet/internal/server"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The game is origin-agnostic: any client that knows a game id may join.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WSHandler upgrades /ws/game/{game_id}/player/{player_id} and hands the
// socket to the game service for the rest of the session.
type WSHandler struct {
	service *server.Service
	logger  *slog.Logger
}

func NewWSHandler(service *server.Service, logger *slog.Logger) *WSHandler {
	return &WSHandler{
		service: service,
		logger:  logger,
	}
}

func (h *WSHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	gameID, playerID, ok := parseWSPath(r.URL.Path)
	if !ok {
		http.Error(w, "Invalid websocket path", http.StatusBadRequest)
		return
	}

	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("Websocket upgrade failed", "error", err, "remote_addr", r.RemoteAddr)
		return
	}

	h.service.HandleConnection(r.Context(), ws, gameID, playerID)
}

// parseWSPath extracts the ids from /ws/game/{game_id}/player/{player_id}.
func parseWSPath(path string) (uuid.UUID, string, bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) != 5 || parts[0] != "ws" || parts[1] != "game" || parts[3] != "player" {
		return uuid.Nil, "", false
	}
	gameID, err := uuid.Parse(parts[2])
	if err != nil {
		return uuid.Nil, "", false
	}
	if parts[4] == "" {
		return uuid.Nil, "", false
	}
	return gameID, parts[4], true
}
