package game

import "errors"

// Rule violations. Handlers on both ends map these onto protocol errors;
// the engine itself never half-applies an illegal action.
var (
	ErrGameNotInProgress  = errors.New("game is not in progress")
	ErrNotYourTurn        = errors.New("not your turn")
	ErrUnknownHero        = errors.New("no such hero")
	ErrUnknownAbility     = errors.New("hero does not have that ability")
	ErrAlreadyMoved       = errors.New("a hero has already moved this turn")
	ErrTargetOccupied     = errors.New("target cell is occupied")
	ErrTargetBlocked      = errors.New("target cell is blocked")
	ErrOutOfBounds        = errors.New("target is outside the grid")
	ErrUnreachable        = errors.New("no path to target within movement range")
	ErrOutOfRange         = errors.New("target is out of ability range")
	ErrInsufficientAction = errors.New("not enough action points")
	ErrInsufficientMana   = errors.New("not enough mana")
	ErrNothingToUndo      = errors.New("no move to undo")
)
