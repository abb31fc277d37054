package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schemaStatements returns the DDL for the workspace tables.
// A container's children are the union of its child folders and documents;
// names are unique across both, which the store checks before inserting.
func schemaStatements(t *TableNames) []string {
	return []string{
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id         UUID PRIMARY KEY,
				parent_id  UUID REFERENCES %s(id) ON DELETE CASCADE,
				name       TEXT NOT NULL,
				created_at TIMESTAMPTZ NOT NULL DEFAULT now()
			)`, t.Folders, t.Folders),
		fmt.Sprintf(`
			CREATE UNIQUE INDEX IF NOT EXISTS %s_parent_name_idx
			ON %s (COALESCE(parent_id, '00000000-0000-0000-0000-000000000000'::uuid), name)`,
			t.Folders, t.Folders),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id         UUID PRIMARY KEY,
				folder_id  UUID REFERENCES %s(id) ON DELETE CASCADE,
				name       TEXT NOT NULL,
				content    TEXT NOT NULL DEFAULT '',
				created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
				updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
			)`, t.Documents, t.Folders),
		fmt.Sprintf(`
			CREATE UNIQUE INDEX IF NOT EXISTS %s_folder_name_idx
			ON %s (COALESCE(folder_id, '00000000-0000-0000-0000-000000000000'::uuid), name)`,
			t.Documents, t.Documents),
	}
}

// EnsureSchema creates the workspace tables if they do not exist
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool, tables *TableNames) error {
	for _, stmt := range schemaStatements(tables) {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// DropSchema removes the workspace tables. Used by the cleanup script.
func DropSchema(ctx context.Context, pool *pgxpool.Pool, tables *TableNames) error {
	stmt := fmt.Sprintf("DROP TABLE IF EXISTS %s, %s CASCADE", tables.Documents, tables.Folders)
	if _, err := pool.Exec(ctx, stmt); err != nil {
		return fmt.Errorf("drop schema: %w", err)
	}
	return nil
}
