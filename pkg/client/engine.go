package client

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/jwebster45206/vargacet/pkg/game"
	"github.com/jwebster45206/vargacet/pkg/protocol"
)

// Engine is the prediction surface: it holds the latest authoritative
// snapshot plus the local selection, and answers legality and preview
// questions using the same rules the authority runs. It never applies an
// unconfirmed intent to its state: previews are advisory overlays only,
// and every snapshot replaces prior state wholesale.
type Engine struct {
	mu     sync.Mutex
	logger *slog.Logger
	sink   PresentationSink

	playerID string
	snapshot *game.GameState

	selectedHeroID    string
	selectedAbilityID string
}

// ErrNoSnapshot is returned when an operation needs an authoritative
// snapshot and none has arrived yet.
var ErrNoSnapshot = errors.New("no authoritative snapshot yet")

// ErrNoSelection is returned when an intent or preview needs a selected
// hero or ability.
var ErrNoSelection = errors.New("nothing selected")

// NewEngine builds a prediction engine for the given player.
func NewEngine(playerID string, sink PresentationSink, logger *slog.Logger) *Engine {
	if sink == nil {
		sink = NopSink{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{playerID: playerID, sink: sink, logger: logger}
}

// ApplySnapshot ingests an authoritative snapshot, discarding all prior
// state. Stale selections (a selected hero that no longer exists) are
// cleared silently. Presentation events (deaths, turn change, game over)
// are forwarded to the sink.
func (e *Engine) ApplySnapshot(p *protocol.GameStatePayload) {
	e.mu.Lock()
	prev := e.snapshot
	next := p.GameState
	e.snapshot = &next

	if e.selectedHeroID != "" {
		if h, _ := next.HeroByID(e.selectedHeroID); h == nil || !h.IsAlive() {
			e.selectedHeroID = ""
			e.selectedAbilityID = ""
		}
	}
	e.mu.Unlock()

	for _, dead := range p.DeadHeroes {
		e.sink.HeroDied(dead)
	}
	if prev == nil || prev.CurrentTurn != next.CurrentTurn {
		if next.CurrentTurn != "" {
			e.sink.TurnChanged(next.CurrentTurn)
		}
	}
	if next.Status == game.StatusGameOver && (prev == nil || prev.Status != game.StatusGameOver) {
		e.sink.GameOver(next.WinnerID, p.WinnerName)
	}
}

// Snapshot returns the latest authoritative state. Callers must treat it
// as read-only.
func (e *Engine) Snapshot() *game.GameState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshot
}

// PlayerID returns the local player's id.
func (e *Engine) PlayerID() string {
	return e.playerID
}

// IsMyTurn reports whether the local player holds the turn.
func (e *Engine) IsMyTurn() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshot != nil && e.snapshot.CurrentTurn == e.playerID
}

// SelectHero picks a hero for subsequent previews and intents. Switching
// heroes clears any ability selection.
func (e *Engine) SelectHero(heroID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.snapshot == nil {
		return ErrNoSnapshot
	}
	h, _ := e.snapshot.HeroByID(heroID)
	if h == nil || !h.IsAlive() {
		return game.ErrUnknownHero
	}
	if e.selectedHeroID != heroID {
		e.selectedAbilityID = ""
	}
	e.selectedHeroID = heroID
	return nil
}

// SelectAbility picks an ability of the selected hero.
func (e *Engine) SelectAbility(abilityID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.snapshot == nil {
		return ErrNoSnapshot
	}
	if e.selectedHeroID == "" {
		return ErrNoSelection
	}
	h, _ := e.snapshot.HeroByID(e.selectedHeroID)
	if h == nil || h.AbilityByID(abilityID) == nil {
		return game.ErrUnknownAbility
	}
	e.selectedAbilityID = abilityID
	return nil
}

// ClearSelection drops the hero and ability selection unconditionally.
func (e *Engine) ClearSelection() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.selectedHeroID = ""
	e.selectedAbilityID = ""
}

// Selection returns the selected hero and ability ids.
func (e *Engine) Selection() (heroID, abilityID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.selectedHeroID, e.selectedAbilityID
}

// ReachablePreview computes the movement-range highlight for the selected
// hero. Pure; recomputed from the latest snapshot on every call.
func (e *Engine) ReachablePreview() []game.Position {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.snapshot == nil || e.selectedHeroID == "" {
		return nil
	}
	return e.snapshot.ComputeReachableSet(e.selectedHeroID)
}

// AffectedPreview computes the area-of-effect highlight for the selected
// ability aimed at target. Pure; no state is touched.
func (e *Engine) AffectedPreview(target game.Position) []game.Position {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.snapshot == nil || e.selectedHeroID == "" || e.selectedAbilityID == "" {
		return nil
	}
	h, _ := e.snapshot.HeroByID(e.selectedHeroID)
	if h == nil {
		return nil
	}
	ability := h.AbilityByID(e.selectedAbilityID)
	if ability == nil {
		return nil
	}
	return e.snapshot.AffectedCells(target, ability.Effect)
}

// MoveIntent validates a move locally and, when legal, returns the intent
// envelope to send. The local snapshot is not modified; the move becomes
// real only when a snapshot reflecting it arrives.
func (e *Engine) MoveIntent(target game.Position) (protocol.Envelope, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.snapshot == nil {
		return protocol.Envelope{}, ErrNoSnapshot
	}
	if e.selectedHeroID == "" {
		return protocol.Envelope{}, ErrNoSelection
	}
	if err := e.snapshot.CanReach(e.selectedHeroID, target); err != nil {
		return protocol.Envelope{}, err
	}
	return protocol.NewEnvelope(protocol.TypeMoveHero, protocol.MoveHero{
		HeroID:   e.selectedHeroID,
		Position: target,
	})
}

// AbilityIntent validates an ability use locally and, when legal, returns
// the intent envelope to send.
func (e *Engine) AbilityIntent(target game.Position) (protocol.Envelope, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.snapshot == nil {
		return protocol.Envelope{}, ErrNoSnapshot
	}
	if e.selectedHeroID == "" || e.selectedAbilityID == "" {
		return protocol.Envelope{}, ErrNoSelection
	}
	if err := e.snapshot.CanUseAbility(e.selectedHeroID, e.selectedAbilityID, target); err != nil {
		return protocol.Envelope{}, err
	}
	return protocol.NewEnvelope(protocol.TypeUseAbility, protocol.UseAbility{
		HeroID:         e.selectedHeroID,
		AbilityID:      e.selectedAbilityID,
		TargetPosition: target,
	})
}

// EndTurnIntent returns the end-turn envelope for the local player.
func (e *Engine) EndTurnIntent() (protocol.Envelope, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.snapshot == nil {
		return protocol.Envelope{}, ErrNoSnapshot
	}
	if e.snapshot.CurrentTurn != e.playerID {
		return protocol.Envelope{}, game.ErrNotYourTurn
	}
	return protocol.NewEnvelope(protocol.TypeEndTurn, protocol.EndTurn{
		GameID:   e.snapshot.GameID.String(),
		PlayerID: e.playerID,
	})
}

// UndoIntent returns the undo-move envelope when there is a move of the
// local player's to undo.
func (e *Engine) UndoIntent() (protocol.Envelope, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.snapshot == nil {
		return protocol.Envelope{}, ErrNoSnapshot
	}
	if e.snapshot.CurrentTurn != e.playerID {
		return protocol.Envelope{}, game.ErrNotYourTurn
	}
	if e.snapshot.MovedHeroID == "" {
		return protocol.Envelope{}, game.ErrNothingToUndo
	}
	return protocol.NewEnvelope(protocol.TypeUndoMove, nil)
}
