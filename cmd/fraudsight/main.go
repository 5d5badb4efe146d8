package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/savegress/fraudsight/internal/api"
	"github.com/savegress/fraudsight/internal/cases"
	"github.com/savegress/fraudsight/internal/config"
	"github.com/savegress/fraudsight/internal/dashboard"
	"github.com/savegress/fraudsight/internal/kv"
	"github.com/savegress/fraudsight/internal/store"
)

func main() {
	log.Println("Starting FraudSight...")

	// Load configuration
	cfg := loadConfig()

	// Open the persistence backend
	kvStore, err := openStore(cfg)
	if err != nil {
		log.Fatalf("Failed to open persistence backend: %v", err)
	}
	defer kvStore.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize the case manager from persisted state
	caseMgr, err := cases.NewManager(ctx, kvStore)
	if err != nil {
		log.Fatalf("Failed to load case manager: %v", err)
	}
	log.Printf("Loaded %d persisted cases", caseMgr.Count())

	// Initialize the UI state store and dashboard controller
	uiStore := store.New(nil)
	controller := dashboard.NewController(uiStore, cfg.Dashboard)

	// Create API server
	server := api.NewServer(cfg, controller, caseMgr, kvStore)
	server.Start()
	defer server.Stop()

	// Start HTTP server
	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      server.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("FraudSight API listening on port %d", cfg.Server.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down FraudSight...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	log.Println("FraudSight stopped")
}

func loadConfig() *config.Config {
	configPath := os.Getenv("FRAUDSIGHT_CONFIG")
	if configPath != "" {
		cfg, err := config.Load(configPath)
		if err != nil {
			log.Printf("Failed to load config from %s: %v, using defaults", configPath, err)
			return config.LoadFromEnv()
		}
		return cfg
	}
	return config.LoadFromEnv()
}

// openStore selects Redis when a URL is configured, otherwise the
// embedded SQLite backend.
func openStore(cfg *config.Config) (kv.Store, error) {
	if cfg.Redis.URL != "" {
		log.Printf("Using Redis persistence at %s", cfg.Redis.URL)
		return kv.NewRedisStore(cfg.Redis.URL)
	}
	log.Printf("Using embedded persistence at %s", cfg.Storage.DataPath)
	return kv.NewSQLiteStore(cfg.Storage.DataPath)
}
