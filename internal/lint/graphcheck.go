package lint

import (
	"fmt"
	"sort"

	"github.com/rendis/flowmap/pkg/schema"
)

// checkGraphShape performs structural analysis on the routing graph:
// cycle detection (Kahn's algorithm) and reachability from entry nodes
// (BFS from nodes with no incoming edges). Edges to unknown targets and
// self loops are excluded; both are reported by other checks.
func (l *Linter) checkGraphShape(graph *schema.WorkflowGraph, result *schema.ValidationResult) {
	known := make(map[string]bool, len(graph.Nodes))
	for _, n := range graph.Nodes {
		known[n.Name] = true
	}

	// succ[from] = distinct successors, inDegree counts incoming edges.
	succ := make(map[string][]string, len(graph.Nodes))
	inDegree := make(map[string]int, len(graph.Nodes))
	seen := make(map[[2]string]bool, len(graph.Edges))
	for _, e := range graph.Edges {
		if !known[e.From] || !known[e.To] || e.From == e.To {
			continue
		}
		key := [2]string{e.From, e.To}
		if seen[key] {
			continue
		}
		seen[key] = true
		succ[e.From] = append(succ[e.From], e.To)
		inDegree[e.To]++
	}

	queue := make([]string, 0, len(graph.Nodes))
	for name := range known {
		if inDegree[name] == 0 {
			queue = append(queue, name)
		}
	}
	sort.Strings(queue)
	roots := append([]string(nil), queue...)

	visited := 0
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		visited++
		for _, next := range succ[name] {
			inDegree[next]--
			if inDegree[next] == 0 {
				queue = append(queue, next)
			}
		}
	}

	if visited != len(known) {
		result.AddWarning(0, "", schema.CodeLintRule, "graph contains a routing cycle")
		return
	}

	// Reachability from the entry nodes.
	reachable := make(map[string]bool, len(known))
	for _, r := range roots {
		reachable[r] = true
	}
	bfs := roots
	for len(bfs) > 0 {
		name := bfs[0]
		bfs = bfs[1:]
		for _, next := range succ[name] {
			if !reachable[next] {
				reachable[next] = true
				bfs = append(bfs, next)
			}
		}
	}

	rows := nodeRows(graph)
	reported := make(map[string]bool)
	for _, n := range graph.Nodes {
		if !reachable[n.Name] && !reported[n.Name] {
			reported[n.Name] = true
			result.AddInfo(rows[n.Name], "", schema.CodeLintRule,
				fmt.Sprintf("node %q cannot be reached from any entry node", n.Name))
		}
	}
}
