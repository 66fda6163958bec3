// Package server hosts the authoritative side of the game: the room
// registry, websocket hub, and intent dispatch. Every intent is validated
// with the same pkg/game rules the clients run for prediction.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/vargacet/internal/logger"
	"github.com/jwebster45206/vargacet/internal/storage"
	"github.com/jwebster45206/vargacet/pkg/game"
)

// Options configure board setup for newly created games.
type Options struct {
	GridSize        int
	HeroesPerPlayer int
	ObstacleDensity float64
}

// Room is one live game plus the lock serializing all mutation of it.
// Intents, joins and broadcasts for a game all run under this lock, which
// gives clients a single ordered snapshot stream.
type Room struct {
	mu    sync.Mutex
	State *game.GameState
}

// Snapshot clones the room state under the room lock.
func (r *Room) Snapshot() (*game.GameState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.State.Clone()
}

// Manager owns the room registry and persistence. Games live in memory
// while hot and are written through to the store on every mutation.
type Manager struct {
	mu     sync.Mutex
	rooms  map[uuid.UUID]*Room
	store  storage.Store
	logger *slog.Logger
	opts   Options
	rng    *rand.Rand
}

// NewManager creates a game manager backed by the given store.
func NewManager(store storage.Store, logger *slog.Logger, opts Options) *Manager {
	return &Manager{
		rooms:  make(map[uuid.UUID]*Room),
		store:  store,
		logger: logger,
		opts:   opts,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// CreateGame starts a new lobby with the creating player seated.
func (m *Manager) CreateGame(ctx context.Context, playerID string) (*game.GameState, error) {
	return m.createGame(ctx, uuid.New(), playerID)
}

func (m *Manager) createGame(ctx context.Context, id uuid.UUID, playerID string) (*game.GameState, error) {
	gs := game.NewGameState(id, m.opts.GridSize, m.opts.HeroesPerPlayer)
	if playerID != "" {
		gs.AddPlayer(playerID)
	}

	m.mu.Lock()
	m.rooms[id] = &Room{State: gs}
	m.mu.Unlock()

	m.Persist(ctx, gs)
	m.logger.Info("Created game", "game_id", id, "player_id", playerID)
	return gs, nil
}

// Room returns the live room for a game, reloading it from the store if
// this process has not seen it yet. Returns (nil, nil) when the game does
// not exist anywhere.
func (m *Manager) Room(ctx context.Context, id uuid.UUID) (*Room, error) {
	m.mu.Lock()
	room, ok := m.rooms[id]
	m.mu.Unlock()
	if ok {
		return room, nil
	}

	gs, err := m.store.LoadGame(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load game %s: %w", id, err)
	}
	if gs == nil {
		return nil, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if room, ok := m.rooms[id]; ok { // lost the race to another loader
		return room, nil
	}
	room = &Room{State: gs}
	m.rooms[id] = room
	return room, nil
}

// EnsureRoom returns the room for id, creating an empty lobby when the
// game does not exist. Joining an unknown game id implicitly creates it.
func (m *Manager) EnsureRoom(ctx context.Context, id uuid.UUID) (*Room, error) {
	room, err := m.Room(ctx, id)
	if err != nil {
		return nil, err
	}
	if room != nil {
		return room, nil
	}
	if _, err := m.createGame(ctx, id, ""); err != nil {
		return nil, err
	}
	return m.Room(ctx, id)
}

// ListGames returns every known game snapshot.
func (m *Manager) ListGames(ctx context.Context) ([]*game.GameState, error) {
	return m.store.ListGames(ctx)
}

// RemoveGame drops a game from memory and the store.
func (m *Manager) RemoveGame(ctx context.Context, id uuid.UUID) {
	m.mu.Lock()
	delete(m.rooms, id)
	m.mu.Unlock()
	if err := m.store.DeleteGame(ctx, id); err != nil {
		logger.WithError(m.logger, err).Warn("Failed to delete game from store", "game_id", id)
	}
	m.logger.Info("Removed game", "game_id", id)
}

// Persist writes a snapshot through to the store. Persistence failures are
// logged, not fatal: the in-memory room remains authoritative.
func (m *Manager) Persist(ctx context.Context, gs *game.GameState) {
	if err := m.store.SaveGame(ctx, gs); err != nil {
		logger.WithError(m.logger, err).Error("Failed to persist game", "game_id", gs.GameID)
	}
}

// SetupBoard generates obstacles and places both players' heroes.
// Callers must hold the room lock.
func (m *Manager) SetupBoard(gs *game.GameState) error {
	return SetupBoard(gs, m.rng, m.opts.ObstacleDensity)
}
