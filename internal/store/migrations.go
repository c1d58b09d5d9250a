package store

import (
	"context"
	"database/sql"
	_ "embed"
	"strings"

	"github.com/rendis/flowmap/pkg/schema"
)

//go:embed migrations/001_initial_schema.sql
var initialSchema string

// migration is one versioned catalog schema change.
type migration struct {
	version int
	name    string
	ddl     string
}

var catalogMigrations = []migration{
	{version: 1, name: "initial_schema", ddl: initialSchema},
}

// runMigrations brings the catalog schema up to the latest version.
// Versions already recorded in schema_version are skipped, so calling this
// on every open is safe.
func runMigrations(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return storeErr("create schema_version table", err)
	}

	var current int
	row := db.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_version`)
	if err := row.Scan(&current); err != nil {
		return storeErr("read current schema version", err)
	}

	for _, m := range catalogMigrations {
		if m.version <= current {
			continue
		}
		if err := applyMigration(ctx, db, m); err != nil {
			return err
		}
	}
	return nil
}

// applyMigration executes one migration's statements and records the new
// version, all inside a single transaction.
func applyMigration(ctx context.Context, db *sql.DB, m migration) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return storeErr("begin migration transaction", err)
	}

	for _, stmt := range statements(m.ddl) {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			_ = tx.Rollback()
			return schema.NewErrorf(schema.ErrCodeStore,
				"apply migration %d (%s)", m.version, m.name).WithCause(err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO schema_version (version, name) VALUES (?, ?)`, m.version, m.name); err != nil {
		_ = tx.Rollback()
		return schema.NewErrorf(schema.ErrCodeStore, "record migration %d", m.version).WithCause(err)
	}

	if err := tx.Commit(); err != nil {
		return schema.NewErrorf(schema.ErrCodeStore, "commit migration %d", m.version).WithCause(err)
	}
	return nil
}

// statements splits an embedded DDL script on semicolons. Comment lines are
// stripped; chunks with nothing left are dropped.
func statements(ddl string) []string {
	var out []string
	for _, chunk := range strings.Split(ddl, ";") {
		var kept []string
		for _, line := range strings.Split(chunk, "\n") {
			trimmed := strings.TrimSpace(line)
			if trimmed == "" || strings.HasPrefix(trimmed, "--") {
				continue
			}
			kept = append(kept, line)
		}
		if len(kept) > 0 {
			out = append(out, strings.TrimSpace(strings.Join(kept, "\n")))
		}
	}
	return out
}

func storeErr(message string, cause error) *schema.FlowmapError {
	return schema.NewError(schema.ErrCodeStore, message).WithCause(cause)
}
