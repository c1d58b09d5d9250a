package schema

// EdgeKind distinguishes the two successor relations a node can declare.
type EdgeKind string

const (
	EdgeKindSuccess EdgeKind = "success"
	EdgeKindFailure EdgeKind = "failure"
)

// Node is one workflow step parsed from a data row.
// SuccessTargets and FailureTargets preserve the left-to-right order of the
// pipe-separated successor fields; empty entries are dropped at parse time.
type Node struct {
	Name           string   `json:"name"`
	GraphName      string   `json:"graph_name,omitempty"`
	AgentType      string   `json:"agent_type"`
	Context        string   `json:"context,omitempty"`
	SuccessTargets []string `json:"success_next,omitempty"`
	FailureTargets []string `json:"failure_next,omitempty"`
	InputFields    string   `json:"input_fields,omitempty"`
	OutputField    string   `json:"output_field,omitempty"`
	Prompt         string   `json:"prompt,omitempty"`
	Description    string   `json:"description,omitempty"`

	// Row is the 1-based input line the node was parsed from (header = line 1).
	Row int `json:"row,omitempty"`
}

// Edge is a directed, typed relation between two node names.
// Created during edge extraction and never mutated afterwards.
type Edge struct {
	From string   `json:"from"`
	To   string   `json:"to"`
	Kind EdgeKind `json:"kind"`
}

// WorkflowGraph is the assembled result of one parse: nodes in row order,
// edges in extraction order, plus every diagnostic produced along the way.
// A graph is rebuilt from scratch on every parse; it is never mutated
// incrementally.
type WorkflowGraph struct {
	ID          string           `json:"id"`
	GraphName   string           `json:"graph_name"`
	Nodes       []Node           `json:"nodes"`
	Edges       []Edge           `json:"edges"`
	Diagnostics ValidationResult `json:"diagnostics"`
}

// Node returns the first node with the given name, if any.
func (g *WorkflowGraph) Node(name string) (*Node, bool) {
	for i := range g.Nodes {
		if g.Nodes[i].Name == name {
			return &g.Nodes[i], true
		}
	}
	return nil, false
}

// HasNode reports whether a node with the given name exists in the graph.
func (g *WorkflowGraph) HasNode(name string) bool {
	_, ok := g.Node(name)
	return ok
}

// GraphStats summarizes a parsed graph.
type GraphStats struct {
	GraphName string `json:"graph_name"`
	NodeCount int    `json:"node_count"`
	EdgeCount int    `json:"edge_count"`
}

// Stats returns summary statistics for the graph.
func (g *WorkflowGraph) Stats() GraphStats {
	return GraphStats{
		GraphName: g.GraphName,
		NodeCount: len(g.Nodes),
		EdgeCount: len(g.Edges),
	}
}
