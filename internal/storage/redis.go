package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/vargacet/pkg/game"
)

const (
	gameKeyPrefix = "game:"
	gameTTL       = 24 * time.Hour
)

// RedisStore implements Store using Redis. Snapshots are stored as JSON
// under game:{id} with a TTL, so abandoned games age out on their own.
type RedisStore struct {
	client *redis.Client
	logger *slog.Logger
}

// Ensure RedisStore implements Store interface
var _ Store = (*RedisStore)(nil)

// NewRedisStore creates a new Redis-backed store.
func NewRedisStore(redisURL string, logger *slog.Logger) *RedisStore {
	rdb := redis.NewClient(&redis.Options{
		Addr: redisURL,
	})
	return &RedisStore{
		client: rdb,
		logger: logger,
	}
}

func (r *RedisStore) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (r *RedisStore) Close() error {
	if err := r.client.Close(); err != nil {
		r.logger.Error("Failed to close Redis connection", "error", err)
		return err
	}
	r.logger.Info("Redis connection closed")
	return nil
}

// WaitForConnection waits for Redis to become available (used during startup)
func (r *RedisStore) WaitForConnection(ctx context.Context) error {
	maxRetries := 30
	retryDelay := 2 * time.Second

	for i := 0; i < maxRetries; i++ {
		if err := r.Ping(ctx); err != nil {
			r.logger.Debug("Redis not ready yet", "error", err, "attempt", i+1)

			select {
			case <-ctx.Done():
				return fmt.Errorf("context cancelled while waiting for redis: %w", ctx.Err())
			case <-time.After(retryDelay):
				continue
			}
		}

		r.logger.Info("Redis connection established")
		return nil
	}

	return fmt.Errorf("redis did not become available after %d attempts", maxRetries)
}

func (r *RedisStore) SaveGame(ctx context.Context, gs *game.GameState) error {
	data, err := json.Marshal(gs)
	if err != nil {
		r.logger.Error("Failed to marshal game", "game_id", gs.GameID, "error", err)
		return fmt.Errorf("failed to marshal game: %w", err)
	}

	key := gameKeyPrefix + gs.GameID.String()
	if err := r.client.Set(ctx, key, string(data), gameTTL).Err(); err != nil {
		r.logger.Error("Failed to save game", "game_id", gs.GameID, "error", err)
		return fmt.Errorf("failed to save game: %w", err)
	}
	return nil
}

func (r *RedisStore) LoadGame(ctx context.Context, id uuid.UUID) (*game.GameState, error) {
	key := gameKeyPrefix + id.String()
	data, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // Not found
		}
		r.logger.Error("Failed to load game", "game_id", id, "error", err)
		return nil, fmt.Errorf("failed to load game: %w", err)
	}

	var gs game.GameState
	if err := json.Unmarshal([]byte(data), &gs); err != nil {
		r.logger.Error("Failed to unmarshal game", "game_id", id, "error", err)
		return nil, fmt.Errorf("failed to unmarshal game: %w", err)
	}
	return &gs, nil
}

func (r *RedisStore) DeleteGame(ctx context.Context, id uuid.UUID) error {
	key := gameKeyPrefix + id.String()
	if err := r.client.Del(ctx, key).Err(); err != nil {
		r.logger.Error("Failed to delete game", "game_id", id, "error", err)
		return fmt.Errorf("failed to delete game: %w", err)
	}
	return nil
}

func (r *RedisStore) ListGames(ctx context.Context) ([]*game.GameState, error) {
	var games []*game.GameState
	iter := r.client.Scan(ctx, 0, gameKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		data, err := r.client.Get(ctx, iter.Val()).Result()
		if err != nil {
			if err == redis.Nil {
				continue // Expired between scan and get
			}
			return nil, fmt.Errorf("failed to read game %s: %w", iter.Val(), err)
		}
		var gs game.GameState
		if err := json.Unmarshal([]byte(data), &gs); err != nil {
			r.logger.Warn("Skipping unreadable game", "key", iter.Val(), "error", err)
			continue
		}
		games = append(games, &gs)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan games: %w", err)
	}
	return games, nil
}
