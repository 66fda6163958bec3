package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/jwebster45206/vargacet/internal/server"
	"github.com/jwebster45206/vargacet/pkg/game"
)

// CreateGameRequest seats the creating player in a fresh lobby.
type CreateGameRequest struct {
	PlayerID string `json:"player_id"`
}

type CreateGameResponse struct {
	GameID uuid.UUID `json:"game_id"`
}

// GameSummary is the list view of a game: enough to pick a lobby to join
// without shipping full board state.
type GameSummary struct {
	GameID      uuid.UUID   `json:"game_id"`
	Status      game.Status `json:"status"`
	PlayerCount int         `json:"player_count"`
	PlayerNames []string    `json:"player_names"`
}

// GameHandler serves the REST surface for games: create, list, and fetch
// a snapshot. Gameplay itself happens over the websocket.
type GameHandler struct {
	manager *server.Manager
	logger  *slog.Logger
}

func NewGameHandler(manager *server.Manager, logger *slog.Logger) *GameHandler {
	return &GameHandler{
		manager: manager,
		logger:  logger,
	}
}

func (h *GameHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	path := strings.TrimPrefix(r.URL.Path, "/game")
	path = strings.Trim(path, "/")

	switch {
	case r.Method == http.MethodPost && path == "":
		h.createGame(w, r)
	case r.Method == http.MethodGet && path != "":
		h.getGame(w, r, path)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *GameHandler) createGame(w http.ResponseWriter, r *http.Request) {
	var req CreateGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PlayerID == "" {
		http.Error(w, "player_id is required", http.StatusBadRequest)
		return
	}

	gs, err := h.manager.CreateGame(r.Context(), req.PlayerID)
	if err != nil {
		h.logger.Error("Failed to create game", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(CreateGameResponse{GameID: gs.GameID}); err != nil {
		h.logger.Error("Error encoding create response", "error", err)
	}
}

func (h *GameHandler) getGame(w http.ResponseWriter, r *http.Request, rawID string) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		http.Error(w, "Invalid game id", http.StatusBadRequest)
		return
	}

	room, err := h.manager.Room(r.Context(), id)
	if err != nil {
		h.logger.Error("Failed to load game", "game_id", id, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if room == nil {
		http.Error(w, "Game not found", http.StatusNotFound)
		return
	}

	snapshot, err := room.Snapshot()
	if err != nil {
		h.logger.Error("Failed to snapshot game", "game_id", id, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if err := json.NewEncoder(w).Encode(snapshot); err != nil {
		h.logger.Error("Error encoding game response", "game_id", id, "error", err)
	}
}

// ListGamesHandler serves GET /games: summaries of every known game.
type ListGamesHandler struct {
	manager *server.Manager
	logger  *slog.Logger
}

func NewListGamesHandler(manager *server.Manager, logger *slog.Logger) *ListGamesHandler {
	return &ListGamesHandler{
		manager: manager,
		logger:  logger,
	}
}

func (h *ListGamesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")

	games, err := h.manager.ListGames(r.Context())
	if err != nil {
		h.logger.Error("Failed to list games", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	summaries := make([]GameSummary, 0, len(games))
	for _, gs := range games {
		summary := GameSummary{
			GameID:      gs.GameID,
			Status:      gs.Status,
			PlayerCount: len(gs.Players),
			PlayerNames: make([]string, 0, len(gs.Players)),
		}
		for _, playerID := range gs.TurnOrder {
			if p, ok := gs.Players[playerID]; ok && p.Name != "" {
				summary.PlayerNames = append(summary.PlayerNames, p.Name)
			}
		}
		summaries = append(summaries, summary)
	}

	if err := json.NewEncoder(w).Encode(summaries); err != nil {
		h.logger.Error("Error encoding games list", "error", err)
	}
}
