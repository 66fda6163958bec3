package server

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/vargacet/internal/storage"
	"github.com/jwebster45206/vargacet/pkg/game"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

func testManager() (*Manager, *storage.MockStore) {
	store := storage.NewMockStore()
	m := NewManager(store, testLogger(), Options{
		GridSize:        20,
		HeroesPerPlayer: 4,
		ObstacleDensity: 0.15,
	})
	return m, store
}

func TestCreateGamePersistsAndSeats(t *testing.T) {
	m, store := testManager()
	ctx := context.Background()

	gs, err := m.CreateGame(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, game.StatusLobby, gs.Status)
	assert.Equal(t, []string{"p1"}, gs.TurnOrder)
	assert.Equal(t, 20, gs.GridSize)

	saved, err := store.LoadGame(ctx, gs.GameID)
	require.NoError(t, err)
	require.NotNil(t, saved, "created game not written through to the store")
}

func TestRoomLoadsThroughStore(t *testing.T) {
	m, store := testManager()
	ctx := context.Background()

	// A game persisted by another process.
	gs := game.NewGameState(uuid.New(), 20, 4)
	gs.AddPlayer("p1")
	require.NoError(t, store.SaveGame(ctx, gs))

	room, err := m.Room(ctx, gs.GameID)
	require.NoError(t, err)
	require.NotNil(t, room)

	snap, err := room.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, gs.GameID, snap.GameID)
	assert.Equal(t, []string{"p1"}, snap.TurnOrder)

	// Second lookup hits memory and returns the same room.
	again, err := m.Room(ctx, gs.GameID)
	require.NoError(t, err)
	assert.Same(t, room, again)
}

func TestRoomUnknownGame(t *testing.T) {
	m, _ := testManager()

	room, err := m.Room(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, room)
}

func TestEnsureRoomCreatesLobby(t *testing.T) {
	m, store := testManager()
	ctx := context.Background()
	id := uuid.New()

	room, err := m.EnsureRoom(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, room)

	snap, err := room.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, id, snap.GameID)
	assert.Equal(t, game.StatusLobby, snap.Status)
	assert.Empty(t, snap.TurnOrder)

	saved, err := store.LoadGame(ctx, id)
	require.NoError(t, err)
	assert.NotNil(t, saved)
}

func TestRemoveGame(t *testing.T) {
	m, store := testManager()
	ctx := context.Background()

	gs, err := m.CreateGame(ctx, "p1")
	require.NoError(t, err)

	m.RemoveGame(ctx, gs.GameID)

	room, err := m.Room(ctx, gs.GameID)
	require.NoError(t, err)
	assert.Nil(t, room)

	saved, err := store.LoadGame(ctx, gs.GameID)
	require.NoError(t, err)
	assert.Nil(t, saved)
}
