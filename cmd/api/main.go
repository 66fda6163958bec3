package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jwebster45206/vargacet/internal/config"
	"github.com/jwebster45206/vargacet/internal/handlers"
	"github.com/jwebster45206/vargacet/internal/logger"
	"github.com/jwebster45206/vargacet/internal/middleware"
	"github.com/jwebster45206/vargacet/internal/server"
	"github.com/jwebster45206/vargacet/internal/storage"
	"github.com/jwebster45206/vargacet/pkg/chat"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	log := logger.Setup(cfg)

	log.Info("Starting Vargacet API",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"grid_size", cfg.GridSize,
		"heroes_per_player", cfg.HeroesPerPlayer)

	store := storage.NewRedisStore(cfg.RedisURL, log)
	storeCtx, storeCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer storeCancel()

	if err := store.WaitForConnection(storeCtx); err != nil {
		log.Error("Failed to connect to storage", "error", err)
		os.Exit(1)
	}

	manager := server.NewManager(store, log, server.Options{
		GridSize:        cfg.GridSize,
		HeroesPerPlayer: cfg.HeroesPerPlayer,
		ObstacleDensity: cfg.ObstacleDensity,
	})
	hub := server.NewHub(log)
	history := chat.NewHistory()
	service := server.NewService(manager, hub, history, log)

	mux := http.NewServeMux()

	healthHandler := handlers.NewHealthHandler(store, log)
	mux.Handle("/health", healthHandler)

	gameHandler := handlers.NewGameHandler(manager, log)
	mux.Handle("/game", gameHandler)
	mux.Handle("/game/", gameHandler)

	listHandler := handlers.NewListGamesHandler(manager, log)
	mux.Handle("/games", listHandler)

	wsHandler := handlers.NewWSHandler(service, log)
	mux.Handle("/ws/game/", wsHandler)

	handler := middleware.Logger(log, mux)
	srv := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     handler,
		ReadTimeout: 15 * time.Second,
		// WriteTimeout left unset: websocket sessions outlive any sane
		// request deadline and manage their own write deadlines.
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Server is shutting down...")

	if err := store.Close(); err != nil {
		log.Error("Error closing storage connection", "error", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	log.Info("Server exited")
}
