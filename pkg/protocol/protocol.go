// Package protocol defines the JSON messages exchanged between the game
// authority and its clients, and the websocket close codes with game
// semantics.
package protocol

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jwebster45206/vargacet/pkg/game"
)

// Message types. Inbound to the client: game_state, chat_message, error.
// Outbound intents: everything else.
const (
	TypeGameState   = "game_state"
	TypeChatMessage = "chat_message"
	TypeError       = "error"

	TypeMoveHero   = "move_hero"
	TypeUseAbility = "use_ability"
	TypeEndTurn    = "end_turn"
	TypeUndoMove   = "undo_move"
	TypeUpdateName = "update_name"
	TypeStartGame  = "start_game"
)

// Close codes with defined game semantics. Anything else is treated as a
// transient transport failure and retried.
const (
	CloseNormal    = 1000
	CloseRoomFull  = 4000
	CloseGameEnded = 4001
)

// IsTerminalClose reports whether a close code ends the session for good:
// an intentional close, a full room, or a finished game.
func IsTerminalClose(code int) bool {
	switch code {
	case CloseNormal, CloseRoomFull, CloseGameEnded:
		return true
	}
	return false
}

// Envelope wraps every message on the wire.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// NewEnvelope builds an envelope around a payload value.
func NewEnvelope(msgType string, payload any) (Envelope, error) {
	if payload == nil {
		return Envelope{Type: msgType}, nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("failed to marshal %s payload: %w", msgType, err)
	}
	return Envelope{Type: msgType, Payload: data}, nil
}

// Decode unmarshals the envelope payload into v.
func (e Envelope) Decode(v any) error {
	if len(e.Payload) == 0 {
		return fmt.Errorf("%s message has no payload", e.Type)
	}
	if err := json.Unmarshal(e.Payload, v); err != nil {
		return fmt.Errorf("failed to decode %s payload: %w", e.Type, err)
	}
	return nil
}

// MoveHero asks the authority to relocate a hero.
type MoveHero struct {
	HeroID   string        `json:"hero_id"`
	Position game.Position `json:"position"`
}

// UseAbility asks the authority to resolve an ability at a target cell.
type UseAbility struct {
	HeroID         string        `json:"hero_id"`
	AbilityID      string        `json:"ability_id"`
	TargetPosition game.Position `json:"target_position"`
}

// EndTurn asks the authority to pass the turn.
type EndTurn struct {
	GameID   string `json:"game_id"`
	PlayerID string `json:"player_id"`
}

// UpdateName sets the sender's display name. Lobby only.
type UpdateName struct {
	Name string `json:"name"`
}

// ErrorPayload carries a rejection back to the sender.
type ErrorPayload struct {
	Message string `json:"message"`
}

// ChatPayload is relayed verbatim between clients; the rules engine never
// interprets it.
type ChatPayload struct {
	SenderID   string    `json:"sender_id"`
	SenderName string    `json:"sender_name"`
	Content    string    `json:"content"`
	Timestamp  time.Time `json:"timestamp"`
	Channel    string    `json:"channel"`
}

// GameStatePayload is a full authoritative snapshot. It replaces the
// client's prior state wholesale. DeadHeroes lists heroes removed by the
// update that produced this snapshot. The snapshot's own winner_id latches
// at game_over; WinnerName is added on the update that newly reaches it.
type GameStatePayload struct {
	game.GameState
	DeadHeroes []*game.Hero `json:"dead_heroes,omitempty"`
	WinnerName string       `json:"winner_name,omitempty"`
}
