package game

// Ability rules. Targeting requires an obstacle-free line of path: a target
// is in range iff a path of at most Range steps exists when obstacles are
// honored and occupancy is ignored. Heroes never block targeting; walls do.

// CanUseAbility reports whether the hero may legally use the ability on
// target this turn. Returns nil when legal, a rule error otherwise.
func (gs *GameState) CanUseAbility(heroID, abilityID string, target Position) error {
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
	ability := hero.AbilityByID(abilityID)
	if ability == nil {
		return ErrUnknownAbility
	}
	if hero.Action.Current < ability.ActionCost {
		return ErrInsufficientAction
	}
	if hero.Mana.Current < ability.ManaCost {
		return ErrInsufficientMana
	}
	if !gs.InBounds(target) {
		return ErrOutOfBounds
	}
	path := gs.FindPath(hero.Position, target, ability.Range, true)
	if path == nil {
		return ErrOutOfRange
	}
	return nil
}

// AffectedCells resolves the set of cells an ability hits when aimed at
// target: the target cell alone for single-target effects, otherwise every
// in-bounds cell within the effect's radius under its shape metric.
func (gs *GameState) AffectedCells(target Position, effect Effect) []Position {
	if !effect.HasArea() {
		if gs.InBounds(target) {
			return []Position{target}
		}
		return nil
	}
	r := effect.AreaRadius
	var cells []Position
	for y := target.Y - r; y <= target.Y+r; y++ {
		for x := target.X - r; x <= target.X+r; x++ {
			p := Position{X: x, Y: y}
			if !gs.InBounds(p) {
				continue
			}
			switch effect.AreaShape {
			case AreaSquare:
				if p.ChebyshevDistance(target) <= r {
					cells = append(cells, p)
				}
			default: // circle
				if p.ManhattanDistance(target) <= r {
					cells = append(cells, p)
				}
			}
		}
	}
	return cells
}

// AbilityResult reports what an applied ability did.
type AbilityResult struct {
	Affected   []Position `json:"affected"`
	DeadHeroes []*Hero    `json:"dead_heroes,omitempty"`
	WinnerID   string     `json:"winner_id,omitempty"`
}

// ApplyAbility validates and resolves an ability use. Heal clamps at the
// target's maximum; damage is the effect amount plus the caster's damage
// scalar, reduced by the target's armor, never below zero. All deaths from
// one use are resolved before the win condition is re-evaluated, and each
// dying hero appears exactly once in the result.
func (gs *GameState) ApplyAbility(heroID, abilityID string, target Position) (*AbilityResult, error) {
	if err := gs.CanUseAbility(heroID, abilityID, target); err != nil {
		return nil, err
	}
	caster, _ := gs.HeroByID(heroID)
	ability := caster.AbilityByID(abilityID)

	result := &AbilityResult{Affected: gs.AffectedCells(target, ability.Effect)}
	for _, cell := range result.Affected {
		hero := gs.HeroAt(cell)
		if hero == nil {
			continue
		}
		switch ability.Effect.Kind {
		case EffectHeal:
			hero.HP.Current += ability.Effect.Amount
			if hero.HP.Current > hero.HP.Max {
				hero.HP.Current = hero.HP.Max
			}
		case EffectDamage:
			dealt := ability.Effect.Amount + caster.Damage - hero.Armor
			if dealt < 0 {
				dealt = 0
			}
			hero.HP.Current -= dealt
			if hero.HP.Current <= 0 {
				hero.HP.Current = 0
				result.DeadHeroes = append(result.DeadHeroes, hero)
			}
		}
	}

	caster.Action.Current -= ability.ActionCost
	caster.Mana.Current -= ability.ManaCost

	// Dead heroes leave play immediately: later legality checks in the same
	// update must not see them.
	for _, dead := range result.DeadHeroes {
		gs.removeHero(dead.ID)
	}
	if winner, over := gs.CheckWinner(); over {
		result.WinnerID = winner
	}
	return result, nil
}

func (gs *GameState) removeHero(heroID string) {
	for _, p := range gs.Players {
		for i, h := range p.Heroes {
			if h.ID == heroID {
				p.Heroes = append(p.Heroes[:i], p.Heroes[i+1:]...)
				return
			}
		}
	}
}
