package game

import (
	"encoding/json"
	"sort"

	"github.com/google/uuid"
)

// Status is the lifecycle phase of a game.
type Status string

const (
	StatusLobby      Status = "lobby"
	StatusInProgress Status = "in_progress"
	StatusGameOver   Status = "game_over"
)

// MaxPlayers is fixed at two: the ruleset has no notion of more sides.
const MaxPlayers = 2

// Player is one side of the game.
type Player struct {
	ID        string  `json:"player_id"`
	Name      string  `json:"name,omitempty"` // unset until the player introduces themselves
	Connected bool    `json:"connected"`
	Heroes    []*Hero `json:"heroes"`
}

// ObstacleSet is the immutable set of blocked cells. It serializes as a
// sorted list of "x,y" strings to match the wire format.
type ObstacleSet map[Position]struct{}

// Contains reports whether p is an obstacle.
func (s ObstacleSet) Contains(p Position) bool {
	_, ok := s[p]
	return ok
}

// Add marks p as an obstacle.
func (s ObstacleSet) Add(p Position) {
	s[p] = struct{}{}
}

func (s ObstacleSet) MarshalJSON() ([]byte, error) {
	keys := make([]string, 0, len(s))
	for p := range s {
		keys = append(keys, p.Key())
	}
	sort.Strings(keys)
	return json.Marshal(keys)
}

func (s *ObstacleSet) UnmarshalJSON(data []byte) error {
	var keys []string
	if err := json.Unmarshal(data, &keys); err != nil {
		return err
	}
	set := make(ObstacleSet, len(keys))
	for _, k := range keys {
		p, err := ParsePosition(k)
		if err != nil {
			return err
		}
		set.Add(p)
	}
	*s = set
	return nil
}

// GameState is the full authoritative state of one game. Snapshots of it are
// the only thing exchanged with clients: every update replaces the previous
// state wholesale, never a partial merge.
type GameState struct {
	GameID          uuid.UUID          `json:"game_id"`
	Players         map[string]*Player `json:"players"`
	TurnOrder       []string           `json:"turn_order"` // player ids in join order
	CurrentTurn     string             `json:"current_turn,omitempty"`
	Status          Status             `json:"status"`
	GridSize        int                `json:"grid_size"`
	Obstacles       ObstacleSet        `json:"obstacles"`
	HeroesPerPlayer int                `json:"heroes_per_player"`

	// MovedHeroID is the single hero, if any, that has moved this turn.
	// MovedFrom is where it started, kept so the move can be undone.
	MovedHeroID string    `json:"moved_hero_id,omitempty"`
	MovedFrom   *Position `json:"moved_from,omitempty"`

	WinnerID string `json:"winner_id,omitempty"`
}

// NewGameState returns an empty lobby-phase game.
func NewGameState(id uuid.UUID, gridSize, heroesPerPlayer int) *GameState {
	return &GameState{
		GameID:          id,
		Players:         make(map[string]*Player),
		Status:          StatusLobby,
		GridSize:        gridSize,
		Obstacles:       make(ObstacleSet),
		HeroesPerPlayer: heroesPerPlayer,
	}
}

// AddPlayer adds a player if there is room. The first player to join takes
// the first turn once the game starts.
func (gs *GameState) AddPlayer(playerID string) bool {
	if _, ok := gs.Players[playerID]; ok {
		return true
	}
	if len(gs.Players) >= MaxPlayers {
		return false
	}
	gs.Players[playerID] = &Player{ID: playerID, Heroes: []*Hero{}}
	gs.TurnOrder = append(gs.TurnOrder, playerID)
	return true
}

// RemovePlayer drops a player from a lobby-phase game.
func (gs *GameState) RemovePlayer(playerID string) {
	if _, ok := gs.Players[playerID]; !ok {
		return
	}
	delete(gs.Players, playerID)
	for i, id := range gs.TurnOrder {
		if id == playerID {
			gs.TurnOrder = append(gs.TurnOrder[:i], gs.TurnOrder[i+1:]...)
			break
		}
	}
	if gs.CurrentTurn == playerID {
		gs.CurrentTurn = ""
		if len(gs.TurnOrder) > 0 {
			gs.CurrentTurn = gs.TurnOrder[0]
		}
	}
}

// UpdatePlayerName sets a player's display name.
func (gs *GameState) UpdatePlayerName(playerID, name string) bool {
	p, ok := gs.Players[playerID]
	if !ok {
		return false
	}
	p.Name = name
	return true
}

// SetConnected updates a player's connection flag.
func (gs *GameState) SetConnected(playerID string, connected bool) {
	if p, ok := gs.Players[playerID]; ok {
		p.Connected = connected
	}
}

// IsFull reports whether both seats are taken.
func (gs *GameState) IsFull() bool {
	return len(gs.Players) >= MaxPlayers
}

// AllNamed reports whether every player has set a display name.
func (gs *GameState) AllNamed() bool {
	for _, p := range gs.Players {
		if p.Name == "" {
			return false
		}
	}
	return len(gs.Players) > 0
}

// HeroByID returns the hero with the given id and its owning player.
func (gs *GameState) HeroByID(id string) (*Hero, *Player) {
	for _, orderID := range gs.TurnOrder {
		p := gs.Players[orderID]
		for _, h := range p.Heroes {
			if h.ID == id {
				return h, p
			}
		}
	}
	return nil, nil
}

// PlayerName returns the display name of a player, falling back to its id.
func (gs *GameState) PlayerName(playerID string) string {
	if p, ok := gs.Players[playerID]; ok && p.Name != "" {
		return p.Name
	}
	return playerID
}

// Opponent returns the id of the other player, or "" if there is none.
func (gs *GameState) Opponent(playerID string) string {
	for _, id := range gs.TurnOrder {
		if id != playerID {
			return id
		}
	}
	return ""
}

// Clone deep-copies the state through its JSON form. Used where a caller
// needs a snapshot that later mutation must not touch.
func (gs *GameState) Clone() (*GameState, error) {
	data, err := json.Marshal(gs)
	if err != nil {
		return nil, err
	}
	var out GameState
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
