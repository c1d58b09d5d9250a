package store

import "time"

// Definition is a persisted workflow table: the raw source text plus the
// graph name it resolved to at save time. Saving the same name again
// overwrites the source and bumps UpdatedAt.
type Definition struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Source    string    `json:"source"`
	GraphName string    `json:"graph_name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CompileRecord is one compile of a definition: summary statistics,
// diagnostic counts, and the produced diagram text. Append-only.
type CompileRecord struct {
	ID             string    `json:"id"`
	DefinitionName string    `json:"definition_name,omitempty"`
	GraphName      string    `json:"graph_name,omitempty"`
	NodeCount      int       `json:"node_count"`
	EdgeCount      int       `json:"edge_count"`
	ErrorCount     int       `json:"error_count"`
	WarningCount   int       `json:"warning_count"`
	Mermaid        string    `json:"mermaid,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}
