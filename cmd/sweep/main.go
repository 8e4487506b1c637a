package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"foldervault/internal/config"
	"foldervault/internal/repository"
	serviceFiletree "foldervault/internal/service/filetree"
	"foldervault/internal/storage/local"

	"github.com/joho/godotenv"
)

func main() {
	dryRun := flag.Bool("dry-run", false, "Report orphaned blobs without removing them")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, closeLog, err := config.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to setup logging: %v", err)
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backend, err := repository.Open(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("Failed to connect to store: %v", err)
	}
	defer backend.Close()

	blobs, err := local.New(cfg.Storage.Dir)
	if err != nil {
		log.Fatalf("Failed to open blob store: %v", err)
	}

	sweeper := serviceFiletree.NewSweepService(backend.Files, blobs, cfg.Storage.SweepGracePeriod, logger)
	result, err := sweeper.Sweep(ctx, *dryRun)
	if err != nil {
		log.Fatalf("Sweep failed: %v", err)
	}

	if *dryRun {
		for _, key := range result.Orphaned {
			log.Printf("orphan: %s", key)
		}
	}
	log.Printf("Scanned %d blobs: %d orphaned, %d removed, %d failed",
		result.Scanned, len(result.Orphaned), result.Removed, result.Failed)
}
