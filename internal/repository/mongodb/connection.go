package mongodb

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// RepositoryConfig holds configuration for repository implementations
type RepositoryConfig struct {
	Database    *mongo.Database
	Collections *CollectionNames
	Logger      *slog.Logger
}

// CollectionNames holds prefixed collection names
type CollectionNames struct {
	Folders string
	Files   string
}

// NewCollectionNames creates collection names with the given prefix
func NewCollectionNames(prefix string) *CollectionNames {
	return &CollectionNames{
		Folders: prefix + "folders",
		Files:   prefix + "files",
	}
}

// Connect opens a client and verifies it with a ping
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetServerSelectionTimeout(10 * time.Second)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	return client, nil
}

// EnsureIndexes creates the lookup indexes and the single-root guard
func EnsureIndexes(ctx context.Context, db *mongo.Database, names *CollectionNames) error {
	folderIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "parentId", Value: 1}}},
		{
			// Only the root carries rootKey, so the sparse unique index allows exactly one root
			Keys:    bson.D{{Key: "rootKey", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
	}
	if _, err := db.Collection(names.Folders).Indexes().CreateMany(ctx, folderIndexes); err != nil {
		return fmt.Errorf("create folder indexes: %w", err)
	}

	fileIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "folderId", Value: 1}}},
		{
			Keys:    bson.D{{Key: "storageKey", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	if _, err := db.Collection(names.Files).Indexes().CreateMany(ctx, fileIndexes); err != nil {
		return fmt.Errorf("create file indexes: %w", err)
	}

	return nil
}

// DropCollections removes the folder and file collections
func DropCollections(ctx context.Context, db *mongo.Database, names *CollectionNames) error {
	for _, name := range []string{names.Files, names.Folders} {
		if err := db.Collection(name).Drop(ctx); err != nil {
			return fmt.Errorf("drop %s: %w", name, err)
		}
	}
	return nil
}

// ClearData deletes every document but keeps collections and indexes
func ClearData(ctx context.Context, db *mongo.Database, names *CollectionNames) error {
	for _, name := range []string{names.Files, names.Folders} {
		if _, err := db.Collection(name).DeleteMany(ctx, bson.D{}); err != nil {
			return fmt.Errorf("clear %s: %w", name, err)
		}
	}
	return nil
}
