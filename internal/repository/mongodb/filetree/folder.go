package filetree

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"foldervault/internal/domain"
	models "foldervault/internal/domain/models/filetree"
	ftRepo "foldervault/internal/domain/repositories/filetree"
	"foldervault/internal/repository/mongodb"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoFolderRepository implements the FolderRepository interface.
// Unlike the relational store, children and files are persisted on the
// folder document and kept in sync with $addToSet / $pull.
type MongoFolderRepository struct {
	folders *mongo.Collection
	logger  *slog.Logger
}

// NewFolderRepository creates a new folder repository
func NewFolderRepository(config *mongodb.RepositoryConfig) ftRepo.FolderRepository {
	return &MongoFolderRepository{
		folders: config.Database.Collection(config.Collections.Folders),
		logger:  config.Logger,
	}
}

// EnsureRoot upserts the root document. Two concurrent upserts can both miss
// and race on insert; the loser hits the rootKey index and re-reads.
func (r *MongoFolderRepository) EnsureRoot(ctx context.Context, name string) (*models.Folder, error) {
	now := time.Now().UTC()
	filter := bson.M{"rootKey": rootKey}
	update := bson.M{"$setOnInsert": bson.M{
		"_id":       uuid.NewString(),
		"parentId":  nil,
		"name":      name,
		"icon":      nil,
		"children":  []string{},
		"files":     []string{},
		"createdAt": now,
		"updatedAt": now,
	}}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var doc folderDocument
	err := r.folders.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if mongo.IsDuplicateKeyError(err) {
		err = r.folders.FindOne(ctx, filter).Decode(&doc)
	}
	if err != nil {
		return nil, domain.NewStorageError("ensure root folder", err)
	}

	return doc.toModel(), nil
}

// Create inserts the folder and links it into the parent's children.
// The parent link is written first so an unknown parent leaves nothing behind.
// Callers run it inside ExecTx; outside a transaction a failed insert is
// compensated by unlinking the child again.
func (r *MongoFolderRepository) Create(ctx context.Context, folder *models.Folder) error {
	folder.ID = uuid.NewString()

	if folder.ParentID != nil {
		res, err := r.folders.UpdateOne(ctx,
			bson.M{"_id": *folder.ParentID},
			bson.M{"$addToSet": bson.M{"children": folder.ID}},
		)
		if err != nil {
			return domain.NewStorageError("link folder to parent", err)
		}
		if res.MatchedCount == 0 {
			return domain.NewNotFound("folder", *folder.ParentID)
		}
	}

	doc := folderDocument{
		ID:        folder.ID,
		ParentID:  folder.ParentID,
		Name:      folder.Name,
		Icon:      folder.Icon,
		Children:  []string{},
		Files:     []string{},
		CreatedAt: folder.CreatedAt,
		UpdatedAt: folder.UpdatedAt,
	}
	if _, err := r.folders.InsertOne(ctx, doc); err != nil {
		if folder.ParentID != nil && !inTransaction(ctx) {
			r.unlinkChild(ctx, *folder.ParentID, folder.ID)
		}
		return domain.NewStorageError("create folder", err)
	}

	folder.Children = []string{}
	folder.Files = []string{}
	return nil
}

// inTransaction reports whether ctx carries a session; an aborted transaction
// undoes the link itself.
func inTransaction(ctx context.Context) bool {
	return mongo.SessionFromContext(ctx) != nil
}

func (r *MongoFolderRepository) unlinkChild(ctx context.Context, parentID, childID string) {
	_, err := r.folders.UpdateOne(ctx,
		bson.M{"_id": parentID},
		bson.M{"$pull": bson.M{"children": childID}},
	)
	if err != nil {
		r.logger.Warn("failed to unlink child folder", "parent_id", parentID, "child_id", childID, "error", err)
	}
}

// GetByID retrieves a folder by ID
func (r *MongoFolderRepository) GetByID(ctx context.Context, id string) (*models.Folder, error) {
	var doc folderDocument
	err := r.folders.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.NewNotFound("folder", id)
		}
		return nil, domain.NewStorageError("get folder", err)
	}
	return doc.toModel(), nil
}

// Update persists name and icon
func (r *MongoFolderRepository) Update(ctx context.Context, folder *models.Folder) error {
	res, err := r.folders.UpdateOne(ctx,
		bson.M{"_id": folder.ID},
		bson.M{"$set": bson.M{
			"name":      folder.Name,
			"icon":      folder.Icon,
			"updatedAt": folder.UpdatedAt,
		}},
	)
	if err != nil {
		return domain.NewStorageError("update folder", err)
	}
	if res.MatchedCount == 0 {
		return domain.NewNotFound("folder", folder.ID)
	}
	return nil
}

// Delete removes a single folder node; it refuses while the folder has children or files
func (r *MongoFolderRepository) Delete(ctx context.Context, id string) error {
	folder, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if len(folder.Children) > 0 || len(folder.Files) > 0 {
		return domain.NewValidationError("folder %s still contains folders or files", id)
	}

	if err := r.DetachFromParent(ctx, id); err != nil {
		return err
	}

	res, err := r.folders.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return domain.NewStorageError("delete folder", err)
	}
	if res.DeletedCount == 0 {
		return domain.NewNotFound("folder", id)
	}
	return nil
}

// DeleteMany removes a batch of folder nodes
func (r *MongoFolderRepository) DeleteMany(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	res, err := r.folders.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return 0, domain.NewStorageError("delete folders", err)
	}
	return res.DeletedCount, nil
}

// ListAll retrieves every folder in creation order
func (r *MongoFolderRepository) ListAll(ctx context.Context) ([]models.Folder, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cursor, err := r.folders.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, domain.NewStorageError("list folders", err)
	}
	defer cursor.Close(ctx)

	folders := make([]models.Folder, 0)
	for cursor.Next(ctx) {
		var doc folderDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, domain.NewStorageError("decode folder", err)
		}
		folders = append(folders, *doc.toModel())
	}
	if err := cursor.Err(); err != nil {
		return nil, domain.NewStorageError("iterate folders", err)
	}

	return folders, nil
}

// ListChildIDs queries by parentId rather than trusting the children array,
// so a child whose back-reference was lost is still found.
func (r *MongoFolderRepository) ListChildIDs(ctx context.Context, id string) ([]string, error) {
	opts := options.Find().SetProjection(bson.M{"_id": 1})
	cursor, err := r.folders.Find(ctx, bson.M{"parentId": id}, opts)
	if err != nil {
		return nil, domain.NewStorageError("list child folders", err)
	}
	defer cursor.Close(ctx)

	ids := make([]string, 0)
	for cursor.Next(ctx) {
		var doc struct {
			ID string `bson:"_id"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, domain.NewStorageError("decode child folder", err)
		}
		ids = append(ids, doc.ID)
	}
	if err := cursor.Err(); err != nil {
		return nil, domain.NewStorageError("iterate child folders", err)
	}

	return ids, nil
}

// DetachFromParent pulls id out of its parent's children. Missing folders
// and parents are ignored.
func (r *MongoFolderRepository) DetachFromParent(ctx context.Context, id string) error {
	var doc struct {
		ParentID *string `bson:"parentId"`
	}
	opts := options.FindOne().SetProjection(bson.M{"parentId": 1})
	err := r.folders.FindOne(ctx, bson.M{"_id": id}, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil
		}
		return domain.NewStorageError("get folder parent", err)
	}
	if doc.ParentID == nil {
		return nil
	}

	_, err = r.folders.UpdateOne(ctx,
		bson.M{"_id": *doc.ParentID},
		bson.M{"$pull": bson.M{"children": id}},
	)
	if err != nil {
		return domain.NewStorageError("detach folder", err)
	}
	return nil
}
