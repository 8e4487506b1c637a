package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"foldervault/internal/config"
	"foldervault/internal/handler"
	"foldervault/internal/metrics"
	"foldervault/internal/middleware"
	"foldervault/internal/repository"
	serviceFiletree "foldervault/internal/service/filetree"
	"foldervault/internal/storage/local"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Setup structured logging
	logger, closeLog, err := config.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to setup logging: %v", err)
	}
	defer closeLog()
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
		"storage_dir", cfg.Storage.Dir,
	)

	ctx := context.Background()

	// Connect to the document store
	backend, err := repository.Open(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("Failed to connect to store: %v", err)
	}
	defer backend.Close()

	if err := backend.EnsureSchema(ctx); err != nil {
		log.Fatalf("Failed to ensure schema: %v", err)
	}
	logger.Info("store connected", "driver", backend.Driver)

	// Blob store
	blobs, err := local.New(cfg.Storage.Dir)
	if err != nil {
		log.Fatalf("Failed to open blob store: %v", err)
	}

	// Create services
	m := metrics.New()
	guard := serviceFiletree.NewTreeGuard()
	cascadeService := serviceFiletree.NewCascadeService(backend.Folders, backend.Files, blobs, backend.TxManager, guard, m, logger)
	folderService := serviceFiletree.NewFolderService(backend.Folders, backend.TxManager, cascadeService, guard, cfg.RootFolderName, logger)
	fileService := serviceFiletree.NewFileService(backend.Folders, backend.Files, blobs, backend.TxManager, guard, m, logger)
	uploadService := serviceFiletree.NewUploadService(backend.Folders, backend.Files, blobs, backend.TxManager, guard, cfg.Upload, m, logger)
	treeService := serviceFiletree.NewTreeService(backend.Folders, backend.Files, logger)

	// Bootstrap the root folder
	root, err := folderService.EnsureRoot(ctx)
	if err != nil {
		log.Fatalf("Failed to ensure root folder: %v", err)
	}
	logger.Info("root folder ready", "id", root.ID, "name", root.Name)

	logger.Info("services initialized")

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, handler.Handlers{
		Folder:  handler.NewFolderHandler(folderService, logger),
		File:    handler.NewFileHandler(fileService, cfg.PublicBaseURL, logger),
		Upload:  handler.NewUploadHandler(uploadService, cfg.Upload, cfg.PublicBaseURL, logger),
		Tree:    handler.NewTreeHandler(treeService, logger),
		Blob:    handler.NewBlobHandler(blobs, logger),
		Health:  handler.NewHealthHandler(backend.Health),
		Metrics: m.Handler(),
	})

	// Build middleware chain
	var h http.Handler = mux

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS → RequestID → RealIP → Logging → Metrics → Recovery → Routes
	h = middleware.Recovery(logger)(h)
	h = middleware.Metrics(m, mux)(h)
	h = middleware.RequestLogger(logger)(h)
	h = chimw.RealIP(h)
	h = chimw.RequestID(h)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "X-Request-Id"},
		AllowCredentials: true,
	})
	h = corsHandler.Handler(h)

	// Create HTTP server
	server := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     h,
		ReadTimeout: 5 * time.Minute, // Large multipart uploads
		IdleTimeout: 60 * time.Second,
	}

	// Start server
	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server listening", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		logger.Error("server failed", "error", err)
	case sig := <-stop:
		logger.Info("shutting down", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
	logger.Info("server stopped")
}
