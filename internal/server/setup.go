package server

import (
	"fmt"
	"math/rand"

	"github.com/jwebster45206/vargacet/pkg/game"
)

// spawnRows is the depth of each player's spawn band: the first player's
// heroes start in the top rows, the second player's in the bottom rows.
// Obstacles are never generated inside a spawn band.
const spawnRows = 4

// SetupBoard populates a lobby game's board: random obstacles across the
// middle of the grid, then each player's heroes scattered through their
// spawn band. Placement avoids obstacles and already-seated heroes.
func SetupBoard(gs *game.GameState, rng *rand.Rand, obstacleDensity float64) error {
	if len(gs.TurnOrder) != game.MaxPlayers {
		return fmt.Errorf("board setup needs %d players, have %d", game.MaxPlayers, len(gs.TurnOrder))
	}
	if gs.GridSize <= spawnRows*2 {
		return fmt.Errorf("grid size %d leaves no room between spawn bands", gs.GridSize)
	}

	generateObstacles(gs, rng, obstacleDensity)

	for i, playerID := range gs.TurnOrder {
		if err := placeHeroes(gs, rng, playerID, i == 0); err != nil {
			return err
		}
	}
	return nil
}

// generateObstacles blocks a fraction of the cells between the spawn
// bands. Bounded attempts so a dense setting cannot loop forever.
func generateObstacles(gs *game.GameState, rng *rand.Rand, density float64) {
	available := gs.GridSize * (gs.GridSize - spawnRows*2)
	want := int(float64(available) * density)

	placed := 0
	for attempts := 0; placed < want && attempts < want*3; attempts++ {
		p := game.Position{
			X: rng.Intn(gs.GridSize),
			Y: spawnRows + rng.Intn(gs.GridSize-spawnRows*2),
		}
		if gs.Obstacles.Contains(p) {
			continue
		}
		gs.Obstacles.Add(p)
		placed++
	}
}

// placeHeroes seats one player's heroes at random free cells in their
// spawn band.
func placeHeroes(gs *game.GameState, rng *rand.Rand, playerID string, top bool) error {
	player := gs.Players[playerID]
	player.Heroes = player.Heroes[:0]

	placed := 0
	for attempts := 0; placed < gs.HeroesPerPlayer && attempts < 100; attempts++ {
		var y int
		if top {
			y = rng.Intn(spawnRows)
		} else {
			y = gs.GridSize - spawnRows + rng.Intn(spawnRows)
		}
		p := game.Position{X: rng.Intn(gs.GridSize), Y: y}
		if gs.Obstacles.Contains(p) || gs.HeroAt(p) != nil {
			continue
		}

		id := fmt.Sprintf("%s_hero_%d", playerID, placed)
		player.Heroes = append(player.Heroes, game.NewHero(id, playerID, p))
		placed++
	}
	if placed < gs.HeroesPerPlayer {
		return fmt.Errorf("could not place all heroes for player %s", playerID)
	}
	return nil
}
