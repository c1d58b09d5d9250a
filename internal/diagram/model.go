package diagram

import "github.com/rendis/flowmap/pkg/schema"

// Model is the intermediate representation shared by all renderers.
// Nodes keep graph insertion order; Edges keep extraction order.
type Model struct {
	Title string
	Nodes []Node
	Edges []Edge
}

// Node is one renderable step. ID is diagram-safe and unique within the
// model; Label is the human-readable text.
type Node struct {
	ID       string
	Label    string
	Category schema.AgentTypeCategory
}

// Edge is one renderable connection. From and To are diagram-safe IDs.
// Unresolved targets still get an ID so best-effort rendering works.
type Edge struct {
	From string
	To   string
	Kind schema.EdgeKind
}
