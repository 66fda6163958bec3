package game

// Grid queries. All are pure reads over the current snapshot; the rules
// engine holds no board state of its own beyond GameState.

// InBounds reports whether p lies on the board.
func (gs *GameState) InBounds(p Position) bool {
	return p.X >= 0 && p.X < gs.GridSize && p.Y >= 0 && p.Y < gs.GridSize
}

// IsObstacle reports whether p is a blocked cell.
func (gs *GameState) IsObstacle(p Position) bool {
	return gs.Obstacles.Contains(p)
}

// HeroAt returns the living hero occupying p, or nil.
func (gs *GameState) HeroAt(p Position) *Hero {
	for _, id := range gs.TurnOrder {
		for _, h := range gs.Players[id].Heroes {
			if h.IsAlive() && h.Position == p {
				return h
			}
		}
	}
	return nil
}

// OccupiedExcluding reports whether p is occupied by any living hero other
// than the one with the given id.
func (gs *GameState) OccupiedExcluding(p Position, heroID string) bool {
	h := gs.HeroAt(p)
	return h != nil && h.ID != heroID
}
