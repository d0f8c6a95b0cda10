package main

import (
	"context"
	"log"
	"time"

	"go.uber.org/zap"

	"eralearn/internal/config"
	"eralearn/internal/database"
	"eralearn/internal/domain/session"
	"eralearn/internal/pkg/logger"
)

// Deletes database-backed sessions idle longer than SESSION_IDLE_TTL.
// Redis sessions expire on their own and need no cleanup.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	zl, err := logger.New(logger.Options{Level: cfg.LogLevel})
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer zl.Sync()

	if cfg.SessionStore == "redis" {
		zl.Info("session store is redis, nothing to clean")
		return
	}

	db, err := database.Connect(cfg.DatabaseURL, cfg.LogLevel, zl)
	if err != nil {
		zl.Fatal("db connect failed", zap.Error(err))
	}
	if err := db.AutoMigrate(&session.ActiveSession{}); err != nil {
		zl.Fatal("auto migrate failed", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	svc := session.NewService(session.NewGormStore(db), session.NewHub(), cfg.SessionIdleTTL, zl)
	n, err := svc.PurgeIdle(ctx)
	if err != nil {
		zl.Fatal("cleanup active_sessions failed", zap.Error(err))
	}

	zl.Info("session cleanup completed", zap.Int64("active_sessions", n), zap.Duration("idle_ttl", cfg.SessionIdleTTL))
}
