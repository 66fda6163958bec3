package server

import (
	"math/rand"
	"testing"

	"github.com/google/uuid"

	"github.com/jwebster45206/vargacet/pkg/game"
)

func lobbyWithPlayers(t *testing.T, gridSize, heroes int) *game.GameState {
	t.Helper()
	gs := game.NewGameState(uuid.New(), gridSize, heroes)
	gs.AddPlayer("p1")
	gs.AddPlayer("p2")
	return gs
}

func TestSetupBoardInvariants(t *testing.T) {
	gs := lobbyWithPlayers(t, 20, 4)
	rng := rand.New(rand.NewSource(1))

	if err := SetupBoard(gs, rng, 0.15); err != nil {
		t.Fatalf("SetupBoard failed: %v", err)
	}

	for i, playerID := range gs.TurnOrder {
		player := gs.Players[playerID]
		if len(player.Heroes) != 4 {
			t.Fatalf("player %s has %d heroes, want 4", playerID, len(player.Heroes))
		}
		for _, h := range player.Heroes {
			if !gs.InBounds(h.Position) {
				t.Errorf("hero %s out of bounds at %s", h.ID, h.Position.Key())
			}
			if gs.Obstacles.Contains(h.Position) {
				t.Errorf("hero %s placed on an obstacle", h.ID)
			}
			// First joiner spawns in the top band, second in the bottom.
			if i == 0 && h.Position.Y >= spawnRows {
				t.Errorf("hero %s outside top spawn band at %s", h.ID, h.Position.Key())
			}
			if i == 1 && h.Position.Y < gs.GridSize-spawnRows {
				t.Errorf("hero %s outside bottom spawn band at %s", h.ID, h.Position.Key())
			}
		}
	}

	// No two heroes share a cell.
	seen := map[game.Position]string{}
	for _, p := range gs.Players {
		for _, h := range p.Heroes {
			if other, ok := seen[h.Position]; ok {
				t.Errorf("heroes %s and %s share cell %s", other, h.ID, h.Position.Key())
			}
			seen[h.Position] = h.ID
		}
	}

	// Obstacles stay out of both spawn bands.
	for p := range gs.Obstacles {
		if p.Y < spawnRows || p.Y >= gs.GridSize-spawnRows {
			t.Errorf("obstacle at %s inside a spawn band", p.Key())
		}
	}
	if len(gs.Obstacles) == 0 {
		t.Error("expected some obstacles at density 0.15")
	}
}

func TestSetupBoardZeroDensity(t *testing.T) {
	gs := lobbyWithPlayers(t, 20, 4)
	rng := rand.New(rand.NewSource(2))

	if err := SetupBoard(gs, rng, 0); err != nil {
		t.Fatalf("SetupBoard failed: %v", err)
	}
	if len(gs.Obstacles) != 0 {
		t.Errorf("zero density produced %d obstacles", len(gs.Obstacles))
	}
}

func TestSetupBoardRejectsBadPreconditions(t *testing.T) {
	rng := rand.New(rand.NewSource(3))

	half := game.NewGameState(uuid.New(), 20, 4)
	half.AddPlayer("p1")
	if err := SetupBoard(half, rng, 0.15); err == nil {
		t.Error("setup succeeded with one player")
	}

	tiny := lobbyWithPlayers(t, 8, 4)
	tiny.GridSize = 8
	if err := SetupBoard(tiny, rng, 0.15); err == nil {
		t.Error("setup succeeded on a grid with no room between spawn bands")
	}
}

func TestSetupBoardReplacesExistingHeroes(t *testing.T) {
	gs := lobbyWithPlayers(t, 20, 2)
	rng := rand.New(rand.NewSource(4))

	if err := SetupBoard(gs, rng, 0); err != nil {
		t.Fatal(err)
	}
	if err := SetupBoard(gs, rng, 0); err != nil {
		t.Fatal(err)
	}
	for _, p := range gs.Players {
		if len(p.Heroes) != 2 {
			t.Errorf("player %s has %d heroes after re-setup, want 2", p.ID, len(p.Heroes))
		}
	}
}
