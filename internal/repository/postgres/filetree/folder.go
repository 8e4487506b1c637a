package filetree

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"foldervault/internal/domain"
	models "foldervault/internal/domain/models/filetree"
	ftRepo "foldervault/internal/domain/repositories/filetree"
	"foldervault/internal/repository/postgres"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresFolderRepository implements the FolderRepository interface.
// Children and files are derived in each SELECT from parent_id / folder_id
// rather than stored, so they can never drift from the forward links.
type PostgresFolderRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewFolderRepository creates a new folder repository
func NewFolderRepository(config *postgres.RepositoryConfig) ftRepo.FolderRepository {
	return &PostgresFolderRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// selectFolders returns the SELECT list shared by all folder reads
func (r *PostgresFolderRepository) selectFolders() string {
	return fmt.Sprintf(`
		SELECT f.id::text, f.parent_id::text, f.name, f.icon, f.created_at, f.updated_at,
			ARRAY(SELECT c.id::text FROM %[1]s c WHERE c.parent_id = f.id ORDER BY c.created_at),
			ARRAY(SELECT x.id::text FROM %[2]s x WHERE x.folder_id = f.id ORDER BY x.created_at)
		FROM %[1]s f
	`, r.tables.Folders, r.tables.Files)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanFolder(row scanner) (*models.Folder, error) {
	var folder models.Folder
	err := row.Scan(
		&folder.ID,
		&folder.ParentID,
		&folder.Name,
		&folder.Icon,
		&folder.CreatedAt,
		&folder.UpdatedAt,
		&folder.Children,
		&folder.Files,
	)
	if err != nil {
		return nil, err
	}
	if folder.Children == nil {
		folder.Children = []string{}
	}
	if folder.Files == nil {
		folder.Files = []string{}
	}
	return &folder, nil
}

// EnsureRoot inserts the root unless one exists. The partial unique index on
// parent_id IS NULL makes concurrent first boots converge on a single row.
func (r *PostgresFolderRepository) EnsureRoot(ctx context.Context, name string) (*models.Folder, error) {
	insert := fmt.Sprintf(`
		INSERT INTO %s (parent_id, name, created_at, updated_at)
		VALUES (NULL, $1, $2, $2)
		ON CONFLICT DO NOTHING
	`, r.tables.Folders)

	executor := postgres.GetExecutor(ctx, r.pool)
	tag, err := executor.Exec(ctx, insert, name, time.Now())
	if err != nil {
		return nil, domain.NewStorageError("ensure root folder", err)
	}
	if tag.RowsAffected() > 0 {
		r.logger.Info("root folder created", "name", name)
	}

	query := r.selectFolders() + ` WHERE f.parent_id IS NULL`
	root, err := scanFolder(executor.QueryRow(ctx, query))
	if err != nil {
		return nil, domain.NewStorageError("get root folder", err)
	}
	return root, nil
}

// Create creates a new folder. An unknown parent is reported as not found.
func (r *PostgresFolderRepository) Create(ctx context.Context, folder *models.Folder) error {
	if folder.ParentID != nil && !postgres.IsValidID(*folder.ParentID) {
		return domain.NewNotFound("folder", *folder.ParentID)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (parent_id, name, icon, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id::text, created_at, updated_at
	`, r.tables.Folders)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		folder.ParentID,
		folder.Name,
		folder.Icon,
		folder.CreatedAt,
		folder.UpdatedAt,
	).Scan(&folder.ID, &folder.CreatedAt, &folder.UpdatedAt)

	if err != nil {
		if postgres.IsPgForeignKeyError(err) && folder.ParentID != nil {
			return domain.NewNotFound("folder", *folder.ParentID)
		}
		return domain.NewStorageError("create folder", err)
	}

	folder.Children = []string{}
	folder.Files = []string{}
	return nil
}

// GetByID retrieves a folder by ID
func (r *PostgresFolderRepository) GetByID(ctx context.Context, id string) (*models.Folder, error) {
	if !postgres.IsValidID(id) {
		return nil, domain.NewNotFound("folder", id)
	}

	query := r.selectFolders() + ` WHERE f.id = $1`

	executor := postgres.GetExecutor(ctx, r.pool)
	folder, err := scanFolder(executor.QueryRow(ctx, query, id))
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, domain.NewNotFound("folder", id)
		}
		return nil, domain.NewStorageError("get folder", err)
	}

	return folder, nil
}

// Update persists name and icon
func (r *PostgresFolderRepository) Update(ctx context.Context, folder *models.Folder) error {
	if !postgres.IsValidID(folder.ID) {
		return domain.NewNotFound("folder", folder.ID)
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET name = $1, icon = $2, updated_at = $3
		WHERE id = $4
	`, r.tables.Folders)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query,
		folder.Name,
		folder.Icon,
		folder.UpdatedAt,
		folder.ID,
	)
	if err != nil {
		return domain.NewStorageError("update folder", err)
	}

	if result.RowsAffected() == 0 {
		return domain.NewNotFound("folder", folder.ID)
	}

	return nil
}

// Delete removes a single folder node; it fails while children or files reference it
func (r *PostgresFolderRepository) Delete(ctx context.Context, id string) error {
	if !postgres.IsValidID(id) {
		return domain.NewNotFound("folder", id)
	}

	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.Folders)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id)
	if err != nil {
		if postgres.IsPgForeignKeyError(err) {
			return domain.NewValidationError("folder %s still contains folders or files", id)
		}
		return domain.NewStorageError("delete folder", err)
	}

	if result.RowsAffected() == 0 {
		return domain.NewNotFound("folder", id)
	}

	return nil
}

// DeleteMany removes a batch of folder nodes in a single statement
func (r *PostgresFolderRepository) DeleteMany(ctx context.Context, ids []string) (int64, error) {
	ids = postgres.ValidIDs(ids)
	if len(ids) == 0 {
		return 0, nil
	}

	query := fmt.Sprintf(`DELETE FROM %s WHERE id = ANY($1::uuid[])`, r.tables.Folders)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, ids)
	if err != nil {
		if postgres.IsPgForeignKeyError(err) {
			return 0, domain.NewValidationError("folders outside the batch still reference it")
		}
		return 0, domain.NewStorageError("delete folders", err)
	}

	return result.RowsAffected(), nil
}

// ListAll retrieves every folder
func (r *PostgresFolderRepository) ListAll(ctx context.Context) ([]models.Folder, error) {
	query := r.selectFolders() + ` ORDER BY f.created_at ASC`

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query)
	if err != nil {
		return nil, domain.NewStorageError("list folders", err)
	}
	defer rows.Close()

	folders := make([]models.Folder, 0)
	for rows.Next() {
		folder, err := scanFolder(rows)
		if err != nil {
			return nil, domain.NewStorageError("scan folder", err)
		}
		folders = append(folders, *folder)
	}

	if err := rows.Err(); err != nil {
		return nil, domain.NewStorageError("iterate folders", err)
	}

	return folders, nil
}

// ListChildIDs lists the ids of immediate child folders
func (r *PostgresFolderRepository) ListChildIDs(ctx context.Context, id string) ([]string, error) {
	if !postgres.IsValidID(id) {
		return []string{}, nil
	}

	query := fmt.Sprintf(`SELECT id::text FROM %s WHERE parent_id = $1`, r.tables.Folders)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, id)
	if err != nil {
		return nil, domain.NewStorageError("list child folders", err)
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var childID string
		if err := rows.Scan(&childID); err != nil {
			return nil, domain.NewStorageError("scan child folder", err)
		}
		ids = append(ids, childID)
	}

	if err := rows.Err(); err != nil {
		return nil, domain.NewStorageError("iterate child folders", err)
	}

	return ids, nil
}

// DetachFromParent is a no-op: children are derived from parent_id,
// which disappears with the row itself.
func (r *PostgresFolderRepository) DetachFromParent(ctx context.Context, id string) error {
	return nil
}
