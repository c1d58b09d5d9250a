package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/tursodatabase/go-libsql"

	"github.com/rendis/flowmap/pkg/schema"
)

// LibSQLCatalog implements the Catalog interface using libSQL (embedded
// SQLite fork).
type LibSQLCatalog struct {
	db *sql.DB
}

// NewLibSQLCatalog opens a libSQL database at the given path and returns a
// Catalog. The path should be a file URI, e.g. "file:/path/to/catalog.db".
func NewLibSQLCatalog(dbPath string) (*LibSQLCatalog, error) {
	db, err := sql.Open("libsql", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open libsql: %w", err)
	}
	db.SetMaxOpenConns(1)

	// Apply connection-level PRAGMAs. Some PRAGMAs return rows so we use QueryRow.
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	}
	for _, p := range pragmas {
		var result string
		_ = db.QueryRow(p).Scan(&result)
	}

	return &LibSQLCatalog{db: db}, nil
}

// Close closes the database.
func (c *LibSQLCatalog) Close() error { return c.db.Close() }

// Migrate runs all pending database migrations.
func (c *LibSQLCatalog) Migrate(ctx context.Context) error {
	return runMigrations(ctx, c.db)
}

// --- Definitions ---

// SaveDefinition upserts a definition by name. A new definition gets an ID
// when the caller left it empty.
func (c *LibSQLCatalog) SaveDefinition(ctx context.Context, def *Definition) error {
	if def.Name == "" {
		return schema.NewError(schema.ErrCodeValidation, "definition name is required")
	}
	if def.ID == "" {
		def.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO definitions (id, name, source, graph_name, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET
		   source=excluded.source, graph_name=excluded.graph_name, updated_at=excluded.updated_at`,
		def.ID, def.Name, def.Source, nullStr(def.GraphName), timeOrNow(def.CreatedAt), now,
	)
	return err
}

func (c *LibSQLCatalog) GetDefinition(ctx context.Context, name string) (*Definition, error) {
	def := &Definition{}
	var graphName sql.NullString
	err := c.db.QueryRowContext(ctx,
		`SELECT id, name, source, graph_name, created_at, updated_at FROM definitions WHERE name = ?`, name,
	).Scan(&def.ID, &def.Name, &def.Source, &graphName, &def.CreatedAt, &def.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, notFound("definition", name)
	}
	if err != nil {
		return nil, err
	}
	def.GraphName = graphName.String
	return def, nil
}

func (c *LibSQLCatalog) ListDefinitions(ctx context.Context) ([]*Definition, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT id, name, source, graph_name, created_at, updated_at FROM definitions ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var defs []*Definition
	for rows.Next() {
		def := &Definition{}
		var graphName sql.NullString
		if err := rows.Scan(&def.ID, &def.Name, &def.Source, &graphName, &def.CreatedAt, &def.UpdatedAt); err != nil {
			return nil, err
		}
		def.GraphName = graphName.String
		defs = append(defs, def)
	}
	return defs, rows.Err()
}

func (c *LibSQLCatalog) DeleteDefinition(ctx context.Context, name string) error {
	res, err := c.db.ExecContext(ctx, `DELETE FROM definitions WHERE name = ?`, name)
	if err != nil {
		return err
	}
	return checkRowsAffected(res, "definition", name)
}

// --- Compile history ---

func (c *LibSQLCatalog) RecordCompile(ctx context.Context, rec *CompileRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO compiles (id, definition_name, graph_name, node_count, edge_count, error_count, warning_count, mermaid, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, nullStr(rec.DefinitionName), nullStr(rec.GraphName),
		rec.NodeCount, rec.EdgeCount, rec.ErrorCount, rec.WarningCount,
		nullStr(rec.Mermaid), timeOrNow(rec.CreatedAt),
	)
	return err
}

// ListCompiles returns compile records newest-first, optionally scoped to a
// definition name. limit <= 0 means no limit.
func (c *LibSQLCatalog) ListCompiles(ctx context.Context, definitionName string, limit int) ([]*CompileRecord, error) {
	q := `SELECT id, definition_name, graph_name, node_count, edge_count, error_count, warning_count, mermaid, created_at
	      FROM compiles`
	args := []any{}
	if definitionName != "" {
		q += ` WHERE definition_name = ?`
		args = append(args, definitionName)
	}
	q += ` ORDER BY created_at DESC, id`
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := c.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []*CompileRecord
	for rows.Next() {
		rec := &CompileRecord{}
		var defName, graphName, mermaid sql.NullString
		if err := rows.Scan(&rec.ID, &defName, &graphName,
			&rec.NodeCount, &rec.EdgeCount, &rec.ErrorCount, &rec.WarningCount,
			&mermaid, &rec.CreatedAt); err != nil {
			return nil, err
		}
		rec.DefinitionName = defName.String
		rec.GraphName = graphName.String
		rec.Mermaid = mermaid.String
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// --- Helpers ---

func notFound(resource, id string) *schema.FlowmapError {
	return schema.NewErrorf(schema.ErrCodeNotFound, "%s %q not found", resource, id)
}

func checkRowsAffected(res sql.Result, resource, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound(resource, id)
	}
	return nil
}

func timeOrNow(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t
}

func nullStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}
