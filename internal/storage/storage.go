// Package storage persists authoritative game snapshots.
package storage

import (
	"context"

	"github.com/google/uuid"

	"github.com/jwebster45206/vargacet/pkg/game"
)

// Store is the snapshot persistence interface. LoadGame returns (nil, nil)
// when the game does not exist.
type Store interface {
	Ping(ctx context.Context) error
	Close() error

	SaveGame(ctx context.Context, gs *game.GameState) error
	LoadGame(ctx context.Context, id uuid.UUID) (*game.GameState, error)
	DeleteGame(ctx context.Context, id uuid.UUID) error
	ListGames(ctx context.Context) ([]*game.GameState, error)
}
