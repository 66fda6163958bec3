package storage

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/vargacet/pkg/game"
)

func testStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
	store := NewRedisStore(mr.Addr(), logger)
	t.Cleanup(func() { _ = store.Close() })
	return store, mr
}

func sampleGame(t *testing.T) *game.GameState {
	t.Helper()
	gs := game.NewGameState(uuid.New(), 20, 4)
	gs.AddPlayer("p1")
	gs.AddPlayer("p2")
	gs.UpdatePlayerName("p1", "Alice")
	gs.Obstacles.Add(game.Position{X: 3, Y: 9})
	gs.Players["p1"].Heroes = append(gs.Players["p1"].Heroes,
		game.NewHero("p1_hero_0", "p1", game.Position{X: 1, Y: 1}))
	return gs
}

func TestSaveAndLoadGame(t *testing.T) {
	store, _ := testStore(t)
	ctx := context.Background()
	gs := sampleGame(t)

	require.NoError(t, store.SaveGame(ctx, gs))

	loaded, err := store.LoadGame(ctx, gs.GameID)
	require.NoError(t, err)
	require.NotNil(t, loaded)

	assert.Equal(t, gs.GameID, loaded.GameID)
	assert.Equal(t, game.StatusLobby, loaded.Status)
	assert.Equal(t, []string{"p1", "p2"}, loaded.TurnOrder)
	assert.True(t, loaded.Obstacles.Contains(game.Position{X: 3, Y: 9}))

	h, owner := loaded.HeroByID("p1_hero_0")
	require.NotNil(t, h)
	assert.Equal(t, "p1", owner.ID)
	assert.Equal(t, game.Position{X: 1, Y: 1}, h.Position)
	assert.Len(t, h.Abilities, 3)
}

func TestLoadMissingGame(t *testing.T) {
	store, _ := testStore(t)

	gs, err := store.LoadGame(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, gs, "missing game should be (nil, nil)")
}

func TestSaveSetsTTL(t *testing.T) {
	store, mr := testStore(t)
	gs := sampleGame(t)

	require.NoError(t, store.SaveGame(context.Background(), gs))

	ttl := mr.TTL(gameKeyPrefix + gs.GameID.String())
	assert.Equal(t, gameTTL, ttl)
}

func TestDeleteGame(t *testing.T) {
	store, _ := testStore(t)
	ctx := context.Background()
	gs := sampleGame(t)

	require.NoError(t, store.SaveGame(ctx, gs))
	require.NoError(t, store.DeleteGame(ctx, gs.GameID))

	loaded, err := store.LoadGame(ctx, gs.GameID)
	require.NoError(t, err)
	assert.Nil(t, loaded)

	// Deleting again is not an error.
	require.NoError(t, store.DeleteGame(ctx, gs.GameID))
}

func TestListGames(t *testing.T) {
	store, mr := testStore(t)
	ctx := context.Background()

	games, err := store.ListGames(ctx)
	require.NoError(t, err)
	assert.Empty(t, games)

	a := sampleGame(t)
	b := sampleGame(t)
	require.NoError(t, store.SaveGame(ctx, a))
	require.NoError(t, store.SaveGame(ctx, b))

	// Unrelated keys are not games.
	require.NoError(t, mr.Set("other:thing", "ignored"))
	// Corrupt game entries are skipped, not fatal.
	require.NoError(t, mr.Set(gameKeyPrefix+uuid.NewString(), "{broken"))

	games, err = store.ListGames(ctx)
	require.NoError(t, err)
	assert.Len(t, games, 2)

	ids := map[uuid.UUID]bool{}
	for _, g := range games {
		ids[g.GameID] = true
	}
	assert.True(t, ids[a.GameID])
	assert.True(t, ids[b.GameID])
}

func TestWaitForConnection(t *testing.T) {
	store, _ := testStore(t)
	require.NoError(t, store.WaitForConnection(context.Background()))
}

func TestPing(t *testing.T) {
	store, mr := testStore(t)
	ctx := context.Background()

	require.NoError(t, store.Ping(ctx))

	mr.Close()
	assert.Error(t, store.Ping(ctx))
}
