package main

import (
	"context"
	"flag"
	"log"

	"foldervault/internal/config"
	"foldervault/internal/repository"
	"foldervault/internal/seed"
	serviceFiletree "foldervault/internal/service/filetree"
	"foldervault/internal/storage/local"

	"github.com/joho/godotenv"
)

func main() {
	// Parse command-line flags
	dropTables := flag.Bool("drop-tables", false, "Drop all tables before seeding (fresh start)")
	schemaOnly := flag.Bool("schema-only", false, "Only set up schema, don't seed folders")
	clearData := flag.Bool("clear-data", false, "Clear all folders and files (keep schema)")
	flag.Parse()

	// Load .env file
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// SAFETY: Prevent destructive operations in production
	if cfg.Environment == "prod" && (*dropTables || *clearData) {
		log.Fatalf("BLOCKED: Cannot run destructive operations (--drop-tables or --clear-data) in production environment")
	}

	logger, closeLog, err := config.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to setup logging: %v", err)
	}
	defer closeLog()

	switch {
	case *clearData:
		log.Printf("Clearing data only (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)
	case *schemaOnly:
		log.Printf("Setting up schema only (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)
	default:
		log.Printf("Seeding store (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)
	}

	ctx := context.Background()
	backend, err := repository.Open(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("Failed to connect to store: %v", err)
	}
	defer backend.Close()

	// Drop tables if requested
	if *dropTables {
		log.Println("Dropping all tables...")
		if err := backend.DropAll(ctx); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
		log.Println("Tables dropped")
	}

	// Run schema to ensure tables exist
	log.Println("Ensuring schema is up to date...")
	if err := backend.EnsureSchema(ctx); err != nil {
		log.Fatalf("Failed to run schema: %v", err)
	}
	log.Println("Schema ready")

	// Exit early if schema-only mode (server will create the root)
	if *schemaOnly {
		log.Println("Schema setup complete (schema-only mode)")
		return
	}

	// Exit early if clear-data mode. Blobs become orphans and are reclaimed by cmd/sweep.
	if *clearData {
		log.Println("Clearing existing folders and files...")
		if err := backend.ClearData(ctx); err != nil {
			log.Fatalf("Failed to clear data: %v", err)
		}
		log.Println("Data cleared successfully")
		return
	}

	blobs, err := local.New(cfg.Storage.Dir)
	if err != nil {
		log.Fatalf("Failed to open blob store: %v", err)
	}

	// Create services
	guard := serviceFiletree.NewTreeGuard()
	cascadeService := serviceFiletree.NewCascadeService(backend.Folders, backend.Files, blobs, backend.TxManager, guard, nil, logger)
	folderService := serviceFiletree.NewFolderService(backend.Folders, backend.TxManager, cascadeService, guard, cfg.RootFolderName, logger)
	uploadService := serviceFiletree.NewUploadService(backend.Folders, backend.Files, blobs, backend.TxManager, guard, cfg.Upload, nil, logger)

	log.Println("Seeding sample folder tree...")
	folders, files, err := seed.NewTreeSeeder(folderService, uploadService, logger).Seed(ctx)
	if err != nil {
		log.Fatalf("Failed to seed: %v", err)
	}

	log.Printf("Seeding complete: %d folders, %d files", folders, files)
}
