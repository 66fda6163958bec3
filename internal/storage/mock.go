package storage

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/jwebster45206/vargacet/pkg/game"
)

// MockStore is an in-memory Store for tests.
type MockStore struct {
	mu    sync.Mutex
	games map[uuid.UUID]*game.GameState

	PingErr error
}

var _ Store = (*MockStore)(nil)

// NewMockStore returns an empty in-memory store.
func NewMockStore() *MockStore {
	return &MockStore{games: make(map[uuid.UUID]*game.GameState)}
}

func (m *MockStore) Ping(ctx context.Context) error { return m.PingErr }

func (m *MockStore) Close() error { return nil }

func (m *MockStore) SaveGame(ctx context.Context, gs *game.GameState) error {
	clone, err := gs.Clone()
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.games[gs.GameID] = clone
	return nil
}

func (m *MockStore) LoadGame(ctx context.Context, id uuid.UUID) (*game.GameState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	gs, ok := m.games[id]
	if !ok {
		return nil, nil
	}
	return gs.Clone()
}

func (m *MockStore) DeleteGame(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.games, id)
	return nil
}

func (m *MockStore) ListGames(ctx context.Context) ([]*game.GameState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	games := make([]*game.GameState, 0, len(m.games))
	for _, gs := range m.games {
		clone, err := gs.Clone()
		if err != nil {
			return nil, err
		}
		games = append(games, clone)
	}
	return games, nil
}
