package parser

import (
	"strings"

	"github.com/rendis/flowmap/pkg/schema"
)

// targetSeparator is the secondary separator for multi-target successor
// fields (fan-out).
const targetSeparator = "|"

// SplitTargets splits a successor field on the pipe separator, trims each
// piece, and drops empties. Order is preserved; duplicates are kept.
func SplitTargets(field string) []string {
	if strings.TrimSpace(field) == "" {
		return nil
	}
	var targets []string
	for _, piece := range strings.Split(field, targetSeparator) {
		if t := strings.TrimSpace(piece); t != "" {
			targets = append(targets, t)
		}
	}
	return targets
}

// ExtractEdges emits one Edge per successor target of the node: success
// targets first, then failure targets, each in left-to-right field order.
// No de-duplication: a target repeated in the same field yields two edges.
func ExtractEdges(node schema.Node) []schema.Edge {
	edges := make([]schema.Edge, 0, len(node.SuccessTargets)+len(node.FailureTargets))
	for _, to := range node.SuccessTargets {
		edges = append(edges, schema.Edge{From: node.Name, To: to, Kind: schema.EdgeKindSuccess})
	}
	for _, to := range node.FailureTargets {
		edges = append(edges, schema.Edge{From: node.Name, To: to, Kind: schema.EdgeKindFailure})
	}
	return edges
}
