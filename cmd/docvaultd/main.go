package main

import (
	"log"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"docvault/internal/config"
	"docvault/internal/infra/db"
	httpinfra "docvault/internal/infra/http"
)

func main() {
	cfg := config.FromEnv()

	logger, err := buildLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync()

	store, err := db.NewStore(cfg)
	if err != nil {
		log.Fatalf("failed to init store: %v", err)
	}

	srv := httpinfra.NewServer(cfg, store, logger)
	if err := srv.Run(); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}

func buildLogger(level string) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if level != "" {
		parsed, err := zapcore.ParseLevel(level)
		if err != nil {
			return nil, err
		}
		zcfg.Level = zap.NewAtomicLevelAt(parsed)
	}
	return zcfg.Build()
}
