package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureSchema creates the folder and file tables if they don't exist.
//
// files.folder_id and folders.parent_id use the default NO ACTION foreign keys:
// the check runs at the end of each statement, so deleting a whole subtree in
// one DELETE succeeds while a file or folder can never outlive its parent.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool, tables *TableNames) error {
	statements := []string{
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
				parent_id UUID REFERENCES %s(id),
				name TEXT NOT NULL CHECK (length(btrim(name)) > 0),
				icon TEXT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				CHECK (parent_id IS NULL OR parent_id <> id)
			)`, tables.Folders, tables.Folders),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
				folder_id UUID NOT NULL REFERENCES %s(id),
				name TEXT NOT NULL,
				size BIGINT NOT NULL CHECK (size >= 0),
				mime_type TEXT NOT NULL,
				storage_key TEXT NOT NULL UNIQUE,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			)`, tables.Files, tables.Folders),
		// At most one row may have a NULL parent: the root
		fmt.Sprintf(`CREATE UNIQUE INDEX IF NOT EXISTS idx_%sfolders_single_root ON %s ((parent_id IS NULL)) WHERE parent_id IS NULL`,
			tables.Prefix, tables.Folders),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%sfolders_parent ON %s (parent_id)`, tables.Prefix, tables.Folders),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%sfiles_folder ON %s (folder_id)`, tables.Prefix, tables.Files),
	}

	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// DropTables drops the file and folder tables
func DropTables(ctx context.Context, pool *pgxpool.Pool, tables *TableNames) error {
	query := fmt.Sprintf(`DROP TABLE IF EXISTS %s, %s CASCADE`, tables.Files, tables.Folders)
	if _, err := pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("drop tables: %w", err)
	}
	return nil
}

// ClearData removes every file record and every folder, root included.
// Blobs are left on disk for the sweep to reclaim.
func ClearData(ctx context.Context, pool *pgxpool.Pool, tables *TableNames) error {
	query := fmt.Sprintf(`TRUNCATE %s, %s`, tables.Files, tables.Folders)
	if _, err := pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("clear data: %w", err)
	}
	return nil
}
