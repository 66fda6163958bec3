package game

// Movement rules. Movement is a per-turn allowance: a single hero may
// relocate once per turn, and the relocation can be taken back with UndoMove
// until the turn ends. Movement points bound the path length but are not
// consumed incrementally.

// CanReach reports whether the hero may legally relocate to target this
// turn. It returns nil when the move is legal and a rule error otherwise.
func (gs *GameState) CanReach(heroID string, target Position) error {
	if gs.Status != StatusInProgress {
		return ErrGameNotInProgress
	}
	hero, owner := gs.HeroByID(heroID)
	if hero == nil || !hero.IsAlive() {
		return ErrUnknownHero
	}
	if owner.ID != gs.CurrentTurn {
		return ErrNotYourTurn
	}
	if gs.MovedHeroID != "" {
		return ErrAlreadyMoved
	}
	if !gs.InBounds(target) {
		return ErrOutOfBounds
	}
	if gs.IsObstacle(target) {
		return ErrTargetBlocked
	}
	if target == hero.Position || gs.OccupiedExcluding(target, heroID) {
		return ErrTargetOccupied
	}
	path := gs.FindPath(hero.Position, target, hero.Movement.Current, false)
	if path == nil {
		return ErrUnreachable
	}
	return nil
}

// ComputeReachableSet returns every cell the hero can legally move to this
// turn. Candidates are prefiltered by Manhattan distance, which is a lower
// bound on path length, before running the path search. The result is
// advisory (range highlighting); it is recomputed from the current snapshot
// on every call and never cached.
func (gs *GameState) ComputeReachableSet(heroID string) []Position {
	hero, _ := gs.HeroByID(heroID)
	if hero == nil {
		return nil
	}
	budget := hero.Movement.Current
	var reachable []Position
	for y := hero.Position.Y - budget; y <= hero.Position.Y+budget; y++ {
		for x := hero.Position.X - budget; x <= hero.Position.X+budget; x++ {
			p := Position{X: x, Y: y}
			if p.ManhattanDistance(hero.Position) > budget {
				continue
			}
			if gs.CanReach(heroID, p) == nil {
				reachable = append(reachable, p)
			}
		}
	}
	return reachable
}

// ApplyMove relocates the hero to target and records it as this turn's
// single move. The hero's starting cell is remembered for UndoMove.
func (gs *GameState) ApplyMove(heroID string, target Position) error {
	if err := gs.CanReach(heroID, target); err != nil {
		return err
	}
	hero, _ := gs.HeroByID(heroID)
	from := hero.Position
	hero.Position = target
	gs.MovedHeroID = heroID
	gs.MovedFrom = &from
	return nil
}

// UndoMove puts the moved hero back on its starting cell and clears the
// moved-hero lock. It is only valid before the turn ends and never affects
// ability effects already applied.
func (gs *GameState) UndoMove() error {
	if gs.Status != StatusInProgress {
		return ErrGameNotInProgress
	}
	if gs.MovedHeroID == "" || gs.MovedFrom == nil {
		return ErrNothingToUndo
	}
	hero, _ := gs.HeroByID(gs.MovedHeroID)
	if hero != nil {
		hero.Position = *gs.MovedFrom
	}
	gs.MovedHeroID = ""
	gs.MovedFrom = nil
	return nil
}
