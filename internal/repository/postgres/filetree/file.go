package filetree

import (
	"context"
	"fmt"
	"log/slog"

	"foldervault/internal/domain"
	models "foldervault/internal/domain/models/filetree"
	ftRepo "foldervault/internal/domain/repositories/filetree"
	"foldervault/internal/repository/postgres"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresFileRepository implements the FileRepository interface
type PostgresFileRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewFileRepository creates a new file repository
func NewFileRepository(config *postgres.RepositoryConfig) ftRepo.FileRepository {
	return &PostgresFileRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

const fileColumns = `id::text, folder_id::text, name, size, mime_type, storage_key, created_at`

func scanFile(row scanner) (*models.File, error) {
	var file models.File
	err := row.Scan(
		&file.ID,
		&file.FolderID,
		&file.Name,
		&file.Size,
		&file.MimeType,
		&file.StorageKey,
		&file.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &file, nil
}

// Create stores a new file record. The folder foreign key rejects records
// for folders that were removed in the meantime.
func (r *PostgresFileRepository) Create(ctx context.Context, file *models.File) error {
	if !postgres.IsValidID(file.FolderID) {
		return domain.NewNotFound("folder", file.FolderID)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (folder_id, name, size, mime_type, storage_key, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id::text, created_at
	`, r.tables.Files)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		file.FolderID,
		file.Name,
		file.Size,
		file.MimeType,
		file.StorageKey,
		file.CreatedAt,
	).Scan(&file.ID, &file.CreatedAt)

	if err != nil {
		if postgres.IsPgForeignKeyError(err) {
			return domain.NewNotFound("folder", file.FolderID)
		}
		return domain.NewStorageError("create file", err)
	}

	return nil
}

// GetByID retrieves a file by ID
func (r *PostgresFileRepository) GetByID(ctx context.Context, id string) (*models.File, error) {
	if !postgres.IsValidID(id) {
		return nil, domain.NewNotFound("file", id)
	}

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, fileColumns, r.tables.Files)

	executor := postgres.GetExecutor(ctx, r.pool)
	file, err := scanFile(executor.QueryRow(ctx, query, id))
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, domain.NewNotFound("file", id)
		}
		return nil, domain.NewStorageError("get file", err)
	}

	return file, nil
}

// ListByFolder lists files located directly in a folder
func (r *PostgresFileRepository) ListByFolder(ctx context.Context, folderID string) ([]models.File, error) {
	return r.ListByFolders(ctx, []string{folderID})
}

// ListByFolders lists files located in any of the given folders
func (r *PostgresFileRepository) ListByFolders(ctx context.Context, folderIDs []string) ([]models.File, error) {
	folderIDs = postgres.ValidIDs(folderIDs)
	if len(folderIDs) == 0 {
		return []models.File{}, nil
	}

	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE folder_id = ANY($1::uuid[])
		ORDER BY created_at ASC
	`, fileColumns, r.tables.Files)

	return r.queryFiles(ctx, "list files", query, folderIDs)
}

// ListAll lists every file record
func (r *PostgresFileRepository) ListAll(ctx context.Context) ([]models.File, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY created_at ASC`, fileColumns, r.tables.Files)
	return r.queryFiles(ctx, "list all files", query)
}

func (r *PostgresFileRepository) queryFiles(ctx context.Context, op, query string, args ...interface{}) ([]models.File, error) {
	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		return nil, domain.NewStorageError(op, err)
	}
	defer rows.Close()

	files := make([]models.File, 0)
	for rows.Next() {
		file, err := scanFile(rows)
		if err != nil {
			return nil, domain.NewStorageError("scan file", err)
		}
		files = append(files, *file)
	}

	if err := rows.Err(); err != nil {
		return nil, domain.NewStorageError(op, err)
	}

	return files, nil
}

// ListStorageKeys returns every referenced blob key
func (r *PostgresFileRepository) ListStorageKeys(ctx context.Context) ([]string, error) {
	query := fmt.Sprintf(`SELECT storage_key FROM %s`, r.tables.Files)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query)
	if err != nil {
		return nil, domain.NewStorageError("list storage keys", err)
	}
	defer rows.Close()

	keys := make([]string, 0)
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, domain.NewStorageError("scan storage key", err)
		}
		keys = append(keys, key)
	}

	if err := rows.Err(); err != nil {
		return nil, domain.NewStorageError("list storage keys", err)
	}

	return keys, nil
}

// Delete removes a file record
func (r *PostgresFileRepository) Delete(ctx context.Context, id string) error {
	if !postgres.IsValidID(id) {
		return domain.NewNotFound("file", id)
	}

	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.Files)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id)
	if err != nil {
		return domain.NewStorageError("delete file", err)
	}

	if result.RowsAffected() == 0 {
		return domain.NewNotFound("file", id)
	}

	return nil
}

// DeleteMany removes a batch of file records in a single statement
func (r *PostgresFileRepository) DeleteMany(ctx context.Context, ids []string) (int64, error) {
	ids = postgres.ValidIDs(ids)
	if len(ids) == 0 {
		return 0, nil
	}

	query := fmt.Sprintf(`DELETE FROM %s WHERE id = ANY($1::uuid[])`, r.tables.Files)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, ids)
	if err != nil {
		return 0, domain.NewStorageError("delete files", err)
	}

	r.logger.Debug("deleted file records", "requested", len(ids), "deleted", result.RowsAffected())
	return result.RowsAffected(), nil
}
