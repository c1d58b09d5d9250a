// Package parser turns a tabular, pipe-delimited workflow definition into a
// validated in-memory graph. The pipeline is pure and synchronous: one text
// input produces one WorkflowGraph plus the full diagnostics list, and no
// malformed input ever aborts the parse.
package parser

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rendis/flowmap/pkg/schema"
)

// EdgePolicy controls what happens to an edge whose target names no node.
type EdgePolicy string

const (
	// EdgePolicyLenient keeps dangling edges in the graph after diagnosing
	// them; the diagram layer renders the unresolved target as an opaque
	// identifier. This is the default.
	EdgePolicyLenient EdgePolicy = "lenient"
	// EdgePolicyStrict drops dangling edges from the graph. The diagnostic
	// is emitted either way.
	EdgePolicyStrict EdgePolicy = "strict"
)

// Options configures a parse.
type Options struct {
	EdgePolicy EdgePolicy
}

// Parse compiles a workflow table with default options (lenient edges).
func Parse(text string) *schema.WorkflowGraph {
	return ParseWithOptions(text, Options{})
}

// ParseWithOptions compiles a workflow table: tokenize rows, validate the
// header, map rows to nodes, extract edges, assemble the graph, and check
// referential integrity. Always returns a graph; problems accumulate in
// graph.Diagnostics.
func ParseWithOptions(text string, opts Options) *schema.WorkflowGraph {
	if opts.EdgePolicy == "" {
		opts.EdgePolicy = EdgePolicyLenient
	}

	graph := &schema.WorkflowGraph{ID: uuid.New().String()}

	header, rows := splitLines(text)
	if header.text == "" {
		return graph
	}

	headerFields, headerIssues := SplitRow(header.text)
	reportRowIssues(headerIssues, header.line, &graph.Diagnostics)
	ValidateHeader(headerFields, header.line, &graph.Diagnostics)

	// Rows → nodes. First non-empty GraphName wins for the whole table.
	seen := make(map[string]bool)
	for _, row := range rows {
		fields, issues := SplitRow(row.text)
		reportRowIssues(issues, row.line, &graph.Diagnostics)

		node, ok := NodeFromRow(headerFields, fields, row.line, &graph.Diagnostics)
		if !ok {
			continue
		}
		if seen[node.Name] {
			graph.Diagnostics.AddWarning(row.line, ColNode, schema.CodeDuplicateNode,
				fmt.Sprintf("duplicate node name %q", node.Name))
		}
		seen[node.Name] = true

		if graph.GraphName == "" && node.GraphName != "" {
			graph.GraphName = node.GraphName
		}
		graph.Nodes = append(graph.Nodes, node)
	}

	// Nodes → edges, in row order.
	for _, node := range graph.Nodes {
		graph.Edges = append(graph.Edges, ExtractEdges(node)...)
	}

	checkEdgeTargets(graph, opts.EdgePolicy)

	return graph
}

// checkEdgeTargets verifies every edge target names an existing node.
// Unmatched targets are diagnosed; under the strict policy the offending
// edges are also removed from the graph.
func checkEdgeTargets(graph *schema.WorkflowGraph, policy EdgePolicy) {
	names := make(map[string]bool, len(graph.Nodes))
	rows := make(map[string]int, len(graph.Nodes))
	for _, n := range graph.Nodes {
		names[n.Name] = true
		if _, ok := rows[n.Name]; !ok {
			rows[n.Name] = n.Row
		}
	}

	kept := graph.Edges[:0]
	for _, e := range graph.Edges {
		if names[e.To] {
			kept = append(kept, e)
			continue
		}
		col := ColSuccessNext
		if e.Kind == schema.EdgeKindFailure {
			col = ColFailureNext
		}
		graph.Diagnostics.AddError(rows[e.From], col, schema.CodeDanglingEdgeTarget,
			fmt.Sprintf("Connection references non-existent node: '%s'", e.To))
		if policy == EdgePolicyLenient {
			kept = append(kept, e)
		}
	}
	graph.Edges = kept
}

// reportRowIssues surfaces tokenizer anomalies as info diagnostics,
// preserving the no-throw contract while keeping them observable.
func reportRowIssues(issues RowIssues, line int, result *schema.ValidationResult) {
	if issues.UnterminatedQuote {
		result.AddInfo(line, "", schema.CodeUnterminatedQuote,
			"unterminated quote; field consumed to end of line")
	}
	if issues.UnbalancedBrace {
		result.AddInfo(line, "", schema.CodeUnbalancedBrace,
			"unbalanced braces; field consumed to end of line")
	}
}

// numberedLine pairs a line's text with its 1-based position in the input.
type numberedLine struct {
	text string
	line int
}

// splitLines breaks the input into the header line and the data rows,
// skipping blank lines while keeping original line numbers for diagnostics.
func splitLines(text string) (numberedLine, []numberedLine) {
	var header numberedLine
	var rows []numberedLine

	for i, raw := range strings.Split(text, "\n") {
		line := strings.TrimSuffix(raw, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		if header.text == "" {
			header = numberedLine{text: line, line: i + 1}
			continue
		}
		rows = append(rows, numberedLine{text: line, line: i + 1})
	}
	return header, rows
}
