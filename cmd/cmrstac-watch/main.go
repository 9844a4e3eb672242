package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"cmrstac/internal/catalog"
	"cmrstac/internal/config"
	"cmrstac/internal/logger"
	"cmrstac/internal/storage"
	"cmrstac/internal/watch"
)

func main() {
	cfg, err := config.Load()
	must(err)
	must(cfg.Require("CMR_API_URL", cfg.CMRAPIURL))
	logger.Init(logger.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})

	db, err := storage.Open(cfg.DBPath)
	must(err)
	defer db.Close()

	svc := watch.NewService(catalog.NewSyncService(db, cfg), cfg)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	must(svc.Run(ctx))
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
