// Package repository opens the document store named by DATABASE_URL and
// exposes it through the domain repository interfaces.
package repository

import (
	"context"
	"fmt"
	"log/slog"

	"foldervault/internal/config"
	"foldervault/internal/domain/repositories"
	ftRepo "foldervault/internal/domain/repositories/filetree"
	"foldervault/internal/repository/mongodb"
	mongoFiletree "foldervault/internal/repository/mongodb/filetree"
	"foldervault/internal/repository/postgres"
	postgresFiletree "foldervault/internal/repository/postgres/filetree"
)

// Backend bundles the repositories of one store
type Backend struct {
	Driver    string
	Folders   ftRepo.FolderRepository
	Files     ftRepo.FileRepository
	TxManager repositories.TransactionManager
	Health    repositories.StoreHealth

	ensureSchema func(ctx context.Context) error
	drop         func(ctx context.Context) error
	clear        func(ctx context.Context) error
	close        func()
}

// Open connects to the store selected by cfg.DatabaseURL
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Backend, error) {
	driver, err := cfg.StoreDriver()
	if err != nil {
		return nil, err
	}

	switch driver {
	case config.DriverPostgres:
		return openPostgres(ctx, cfg, logger)
	case config.DriverMongo:
		return openMongo(ctx, cfg, logger)
	default:
		return nil, fmt.Errorf("unknown store driver %q", driver)
	}
}

func openPostgres(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Backend, error) {
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	tables := postgres.NewTableNames(cfg.TablePrefix)
	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}

	return &Backend{
		Driver:       config.DriverPostgres,
		Folders:      postgresFiletree.NewFolderRepository(repoConfig),
		Files:        postgresFiletree.NewFileRepository(repoConfig),
		TxManager:    postgres.NewTransactionManager(pool, logger),
		Health:       postgres.NewStoreHealth(pool),
		ensureSchema: func(ctx context.Context) error { return postgres.EnsureSchema(ctx, pool, tables) },
		drop:         func(ctx context.Context) error { return postgres.DropTables(ctx, pool, tables) },
		clear:        func(ctx context.Context) error { return postgres.ClearData(ctx, pool, tables) },
		close:        pool.Close,
	}, nil
}

func openMongo(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Backend, error) {
	client, err := mongodb.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	txManager, err := mongodb.NewTransactionManager(ctx, client, logger)
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	db := client.Database(cfg.MongoDatabase)
	names := mongodb.NewCollectionNames(cfg.TablePrefix)
	repoConfig := &mongodb.RepositoryConfig{
		Database:    db,
		Collections: names,
		Logger:      logger,
	}

	return &Backend{
		Driver:       config.DriverMongo,
		Folders:      mongoFiletree.NewFolderRepository(repoConfig),
		Files:        mongoFiletree.NewFileRepository(repoConfig),
		TxManager:    txManager,
		Health:       mongodb.NewStoreHealth(client),
		ensureSchema: func(ctx context.Context) error { return mongodb.EnsureIndexes(ctx, db, names) },
		drop:         func(ctx context.Context) error { return mongodb.DropCollections(ctx, db, names) },
		clear:        func(ctx context.Context) error { return mongodb.ClearData(ctx, db, names) },
		close: func() {
			if err := client.Disconnect(context.Background()); err != nil {
				logger.Warn("mongo disconnect failed", "error", err)
			}
		},
	}, nil
}

// EnsureSchema creates tables or indexes if missing
func (b *Backend) EnsureSchema(ctx context.Context) error {
	return b.ensureSchema(ctx)
}

// DropAll removes all tables or collections
func (b *Backend) DropAll(ctx context.Context) error {
	return b.drop(ctx)
}

// ClearData removes all folders and files but keeps the schema
func (b *Backend) ClearData(ctx context.Context) error {
	return b.clear(ctx)
}

// Close releases the connection
func (b *Backend) Close() {
	b.close()
}
