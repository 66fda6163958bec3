package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config is the server configuration, loaded from the environment.
type Config struct {
	Port        string
	Environment string
	LogLevel    slog.Level

	RedisURL string

	// Board setup for newly created games.
	GridSize        int
	HeroesPerPlayer int
	ObstacleDensity float64 // fraction of non-spawn cells that become obstacles
}

// Load reads configuration from the environment, with a .env file as an
// optional local override.
func Load() (*Config, error) {
	// Missing .env is fine; env vars win regardless.
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    parseLogLevel(getEnv("LOG_LEVEL", "info")),
		RedisURL:    getEnv("REDIS_URL", "localhost:6379"),
	}

	var err error
	if cfg.GridSize, err = getEnvInt("GRID_SIZE", 20); err != nil {
		return nil, err
	}
	if cfg.HeroesPerPlayer, err = getEnvInt("HEROES_PER_PLAYER", 4); err != nil {
		return nil, err
	}
	if cfg.ObstacleDensity, err = getEnvFloat("OBSTACLE_DENSITY", 0.15); err != nil {
		return nil, err
	}

	if cfg.GridSize < 10 {
		return nil, fmt.Errorf("GRID_SIZE must be at least 10, got %d", cfg.GridSize)
	}
	if cfg.ObstacleDensity < 0 || cfg.ObstacleDensity > 0.5 {
		return nil, fmt.Errorf("OBSTACLE_DENSITY must be in [0, 0.5], got %v", cfg.ObstacleDensity)
	}
	return cfg, nil
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return n, nil
}

func getEnvFloat(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return f, nil
}
