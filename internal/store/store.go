package store

import "context"

// Catalog is the persistence contract for workflow definitions and their
// compile history. All implementations must be safe for concurrent use.
type Catalog interface {
	// Definitions (raw workflow tables, keyed by name)
	SaveDefinition(ctx context.Context, def *Definition) error
	GetDefinition(ctx context.Context, name string) (*Definition, error)
	ListDefinitions(ctx context.Context) ([]*Definition, error)
	DeleteDefinition(ctx context.Context, name string) error

	// Compile history (append-only)
	RecordCompile(ctx context.Context, rec *CompileRecord) error
	ListCompiles(ctx context.Context, definitionName string, limit int) ([]*CompileRecord, error)

	// Maintenance
	Migrate(ctx context.Context) error

	// Lifecycle
	Close() error
}
