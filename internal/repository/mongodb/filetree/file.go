package filetree

import (
	"context"
	"errors"
	"log/slog"

	"foldervault/internal/domain"
	models "foldervault/internal/domain/models/filetree"
	ftRepo "foldervault/internal/domain/repositories/filetree"
	"foldervault/internal/repository/mongodb"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoFileRepository implements the FileRepository interface
type MongoFileRepository struct {
	files   *mongo.Collection
	folders *mongo.Collection
	logger  *slog.Logger
}

// NewFileRepository creates a new file repository
func NewFileRepository(config *mongodb.RepositoryConfig) ftRepo.FileRepository {
	return &MongoFileRepository{
		files:   config.Database.Collection(config.Collections.Files),
		folders: config.Database.Collection(config.Collections.Folders),
		logger:  config.Logger,
	}
}

// Create links the file into its folder, then inserts the record
func (r *MongoFileRepository) Create(ctx context.Context, file *models.File) error {
	file.ID = uuid.NewString()

	res, err := r.folders.UpdateOne(ctx,
		bson.M{"_id": file.FolderID},
		bson.M{"$addToSet": bson.M{"files": file.ID}},
	)
	if err != nil {
		return domain.NewStorageError("link file to folder", err)
	}
	if res.MatchedCount == 0 {
		return domain.NewNotFound("folder", file.FolderID)
	}

	doc := fileDocument{
		ID:         file.ID,
		Name:       file.Name,
		Size:       file.Size,
		MimeType:   file.MimeType,
		StorageKey: file.StorageKey,
		FolderID:   file.FolderID,
		CreatedAt:  file.CreatedAt,
	}
	if _, err := r.files.InsertOne(ctx, doc); err != nil {
		if !inTransaction(ctx) {
			r.unlink(ctx, file.FolderID, []string{file.ID})
		}
		return domain.NewStorageError("create file", err)
	}

	return nil
}

func (r *MongoFileRepository) unlink(ctx context.Context, folderID string, ids []string) {
	_, err := r.folders.UpdateOne(ctx,
		bson.M{"_id": folderID},
		bson.M{"$pull": bson.M{"files": bson.M{"$in": ids}}},
	)
	if err != nil {
		r.logger.Warn("failed to unlink files", "folder_id", folderID, "count", len(ids), "error", err)
	}
}

// GetByID retrieves a file by ID
func (r *MongoFileRepository) GetByID(ctx context.Context, id string) (*models.File, error) {
	var doc fileDocument
	err := r.files.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.NewNotFound("file", id)
		}
		return nil, domain.NewStorageError("get file", err)
	}
	file := doc.toModel()
	return &file, nil
}

// ListByFolder lists files located directly in a folder
func (r *MongoFileRepository) ListByFolder(ctx context.Context, folderID string) ([]models.File, error) {
	return r.find(ctx, bson.M{"folderId": folderID})
}

// ListByFolders lists files located in any of the given folders
func (r *MongoFileRepository) ListByFolders(ctx context.Context, folderIDs []string) ([]models.File, error) {
	if len(folderIDs) == 0 {
		return []models.File{}, nil
	}
	return r.find(ctx, bson.M{"folderId": bson.M{"$in": folderIDs}})
}

// ListAll lists every file record
func (r *MongoFileRepository) ListAll(ctx context.Context) ([]models.File, error) {
	return r.find(ctx, bson.D{})
}

func (r *MongoFileRepository) find(ctx context.Context, filter any) ([]models.File, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cursor, err := r.files.Find(ctx, filter, opts)
	if err != nil {
		return nil, domain.NewStorageError("list files", err)
	}
	defer cursor.Close(ctx)

	files := make([]models.File, 0)
	for cursor.Next(ctx) {
		var doc fileDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, domain.NewStorageError("decode file", err)
		}
		files = append(files, doc.toModel())
	}
	if err := cursor.Err(); err != nil {
		return nil, domain.NewStorageError("iterate files", err)
	}

	return files, nil
}

// ListStorageKeys returns the blob keys referenced by file records
func (r *MongoFileRepository) ListStorageKeys(ctx context.Context) ([]string, error) {
	opts := options.Find().SetProjection(bson.M{"storageKey": 1})
	cursor, err := r.files.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, domain.NewStorageError("list storage keys", err)
	}
	defer cursor.Close(ctx)

	keys := make([]string, 0)
	for cursor.Next(ctx) {
		var doc struct {
			StorageKey string `bson:"storageKey"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, domain.NewStorageError("decode storage key", err)
		}
		keys = append(keys, doc.StorageKey)
	}
	if err := cursor.Err(); err != nil {
		return nil, domain.NewStorageError("iterate storage keys", err)
	}

	return keys, nil
}

// Delete removes a file record and pulls it from its folder's files.
// Both writes commit together when ctx carries a transaction.
func (r *MongoFileRepository) Delete(ctx context.Context, id string) error {
	var doc fileDocument
	err := r.files.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.NewNotFound("file", id)
		}
		return domain.NewStorageError("delete file", err)
	}

	_, err = r.folders.UpdateOne(ctx,
		bson.M{"_id": doc.FolderID},
		bson.M{"$pull": bson.M{"files": id}},
	)
	if err != nil {
		return domain.NewStorageError("unlink file", err)
	}
	return nil
}

// DeleteMany removes file records in one batch and pulls them from any folder listing them
func (r *MongoFileRepository) DeleteMany(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	_, err := r.folders.UpdateMany(ctx,
		bson.M{"files": bson.M{"$in": ids}},
		bson.M{"$pull": bson.M{"files": bson.M{"$in": ids}}},
	)
	if err != nil {
		return 0, domain.NewStorageError("unlink files", err)
	}

	res, err := r.files.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return 0, domain.NewStorageError("delete files", err)
	}
	return res.DeletedCount, nil
}
