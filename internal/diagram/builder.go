package diagram

import (
	"fmt"

	"github.com/rendis/flowmap/pkg/schema"
)

// Build constructs a renderable Model from an assembled WorkflowGraph.
// Node order and edge order are preserved. Edge targets that resolve to no
// node are kept as opaque identifiers so a best-effort diagram still renders.
func Build(graph *schema.WorkflowGraph) *Model {
	ids := newIDTable()

	model := &Model{
		Title: graph.GraphName,
		Nodes: make([]Node, 0, len(graph.Nodes)),
		Edges: make([]Edge, 0, len(graph.Edges)),
	}

	for _, n := range graph.Nodes {
		label := n.Description
		if label == "" {
			label = n.Name
		}
		model.Nodes = append(model.Nodes, Node{
			ID:       ids.idFor(n.Name),
			Label:    label,
			Category: schema.ClassifyAgentType(n.AgentType),
		})
	}

	for _, e := range graph.Edges {
		model.Edges = append(model.Edges, Edge{
			From: ids.idFor(e.From),
			To:   ids.idFor(e.To),
			Kind: e.Kind,
		})
	}

	return model
}

// idTable allocates diagram-safe identifiers incrementally. Sanitization is
// not injective (punctuation collapses to underscores), so the table appends
// a numeric suffix when two distinct names collide; repeated requests for
// the same name return the same ID.
type idTable struct {
	byName map[string]string
	used   map[string]bool
}

func newIDTable() *idTable {
	return &idTable{
		byName: make(map[string]string),
		used:   make(map[string]bool),
	}
}

func (t *idTable) idFor(name string) string {
	if id, ok := t.byName[name]; ok {
		return id
	}

	id := sanitizeID(name)
	if t.used[id] {
		for n := 2; ; n++ {
			candidate := fmt.Sprintf("%s_%d", id, n)
			if !t.used[candidate] {
				id = candidate
				break
			}
		}
	}

	t.byName[name] = id
	t.used[id] = true
	return id
}

// sanitizeID replaces every character outside [A-Za-z0-9] with an underscore.
func sanitizeID(name string) string {
	out := make([]byte, 0, len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			out = append(out, byte(r))
		default:
			out = append(out, '_')
		}
	}
	return string(out)
}
