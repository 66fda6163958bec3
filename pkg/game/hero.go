package game

// Gauge is a bounded resource pool: hit points, movement, action points, mana.
type Gauge struct {
	Current int `json:"current"`
	Max     int `json:"max"`
}

// NewGauge returns a full gauge with the given maximum.
func NewGauge(max int) Gauge {
	return Gauge{Current: max, Max: max}
}

// Reset restores the gauge to its maximum.
func (g *Gauge) Reset() {
	g.Current = g.Max
}

// EffectKind says whether an ability hurts or heals.
type EffectKind string

const (
	EffectDamage EffectKind = "damage"
	EffectHeal   EffectKind = "heal"
)

// AreaShape selects the distance metric for an area of effect.
type AreaShape string

const (
	// AreaCircle is a Manhattan-radius disc.
	AreaCircle AreaShape = "circle"
	// AreaSquare is a Chebyshev-radius square.
	AreaSquare AreaShape = "square"
)

// Effect describes what an ability does to each hero in its affected cells.
type Effect struct {
	Kind       EffectKind `json:"kind"`
	Amount     int        `json:"amount"`
	AreaRadius int        `json:"area_of_effect,omitempty"`
	AreaShape  AreaShape  `json:"area_shape,omitempty"`
}

// HasArea reports whether the effect covers more than the target cell.
func (e Effect) HasArea() bool {
	return e.AreaRadius > 0
}

// Ability is an action a hero can take during its owner's turn.
// Range is measured in path steps (obstacle-aware), not straight-line distance.
type Ability struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Range      int    `json:"range"`
	ActionCost int    `json:"action_cost"`
	ManaCost   int    `json:"mana_cost,omitempty"`
	Effect     Effect `json:"effect"`
}

// Default hero stats. Mirrors the shipped ruleset: heroes are uniform and
// differentiated only by their ability loadout.
const (
	DefaultHP       = 10
	DefaultDamage   = 5
	DefaultMovement = 5
	DefaultArmor    = 3
	DefaultAction   = 3
	DefaultMana     = 10
)

// Hero is a single unit on the board.
type Hero struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Name      string    `json:"name,omitempty"`
	Position  Position  `json:"position"`
	HP        Gauge     `json:"hp"`
	Movement  Gauge     `json:"movement"`
	Action    Gauge     `json:"action"`
	Mana      Gauge     `json:"mana"`
	Damage    int       `json:"damage"`
	Armor     int       `json:"armor"`
	Abilities []Ability `json:"abilities,omitempty"`
}

// NewHero returns a hero with default stats and the default ability loadout.
func NewHero(id, ownerID string, pos Position) *Hero {
	return &Hero{
		ID:        id,
		OwnerID:   ownerID,
		Position:  pos,
		HP:        NewGauge(DefaultHP),
		Movement:  NewGauge(DefaultMovement),
		Action:    NewGauge(DefaultAction),
		Mana:      NewGauge(DefaultMana),
		Damage:    DefaultDamage,
		Armor:     DefaultArmor,
		Abilities: DefaultAbilities(),
	}
}

// IsAlive reports whether the hero is still in play.
func (h *Hero) IsAlive() bool {
	return h.HP.Current > 0
}

// AbilityByID returns the hero's ability with the given id, or nil.
func (h *Hero) AbilityByID(id string) *Ability {
	for i := range h.Abilities {
		if h.Abilities[i].ID == id {
			return &h.Abilities[i]
		}
	}
	return nil
}

// DefaultAbilities is the standard loadout every hero starts with.
func DefaultAbilities() []Ability {
	return []Ability{
		{
			ID:         "strike",
			Name:       "Strike",
			Range:      1,
			ActionCost: 1,
			Effect:     Effect{Kind: EffectDamage, Amount: 2},
		},
		{
			ID:         "fireball",
			Name:       "Fireball",
			Range:      4,
			ActionCost: 2,
			ManaCost:   4,
			Effect:     Effect{Kind: EffectDamage, Amount: 1, AreaRadius: 1, AreaShape: AreaCircle},
		},
		{
			ID:         "mend",
			Name:       "Mend",
			Range:      3,
			ActionCost: 1,
			ManaCost:   2,
			Effect:     Effect{Kind: EffectHeal, Amount: 4},
		},
	}
}
