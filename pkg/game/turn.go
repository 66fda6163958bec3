package game

import "errors"

// ErrCannotStart is returned when the lobby preconditions for starting a
// game are not met.
var ErrCannotStart = errors.New("game cannot start yet")

// Start moves the game from lobby to in_progress. Both seats must be taken
// and both players named; the first player to have joined takes the first
// turn. Board setup (obstacles, hero placement) is the caller's job and must
// happen before Start.
func (gs *GameState) Start() error {
	if gs.Status != StatusLobby {
		return ErrCannotStart
	}
	if !gs.IsFull() || !gs.AllNamed() {
		return ErrCannotStart
	}
	gs.Status = StatusInProgress
	gs.CurrentTurn = gs.TurnOrder[0]
	return nil
}

// EndTurn finishes the active player's turn: the moved-hero lock is
// released, every hero's per-turn gauges (movement and action points) are
// restored to maximum, and the turn passes to the other player.
func (gs *GameState) EndTurn(playerID string) error {
	if gs.Status != StatusInProgress {
		return ErrGameNotInProgress
	}
	if playerID != gs.CurrentTurn {
		return ErrNotYourTurn
	}
	gs.MovedHeroID = ""
	gs.MovedFrom = nil
	for _, p := range gs.Players {
		for _, h := range p.Heroes {
			h.Movement.Reset()
			h.Action.Reset()
		}
	}
	if next := gs.Opponent(playerID); next != "" {
		gs.CurrentTurn = next
	}
	return nil
}

// CheckWinner evaluates the win condition: a player with no living heroes
// loses. When one area effect wipes out both sides at once, the acting
// player landed the final blow and takes the win. On a win the status
// latches to game_over and the winner id is recorded; every later movement
// or ability intent is rejected by the in-progress checks.
func (gs *GameState) CheckWinner() (string, bool) {
	if gs.Status != StatusInProgress {
		return gs.WinnerID, gs.Status == StatusGameOver
	}
	var wiped []string
	for _, id := range gs.TurnOrder {
		alive := 0
		for _, h := range gs.Players[id].Heroes {
			if h.IsAlive() {
				alive++
			}
		}
		if alive == 0 {
			wiped = append(wiped, id)
		}
	}
	if len(wiped) == 0 {
		return "", false
	}
	winner := gs.Opponent(wiped[0])
	if len(wiped) == len(gs.TurnOrder) {
		winner = gs.CurrentTurn
	}
	gs.Status = StatusGameOver
	gs.WinnerID = winner
	return winner, true
}
