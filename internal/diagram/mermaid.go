package diagram

import (
	"fmt"
	"strings"

	"github.com/rendis/flowmap/pkg/schema"
)

// RenderMermaid renders a Model as a Mermaid flowchart using the default
// category palette. A model with zero nodes yields the empty string, the
// sentinel for "nothing to render".
func RenderMermaid(model *Model) string {
	return RenderMermaidWithPalette(model, schema.DefaultPalette())
}

// RenderMermaidWithPalette renders with an explicit category → color map.
// Statements come out in graph insertion order: one shape statement per
// node, then the class definitions, one style assignment per node, and
// finally one connection statement per edge. Success edges are solid,
// failure edges dashed. Layout is the downstream renderer's job.
func RenderMermaidWithPalette(model *Model, palette map[schema.AgentTypeCategory]string) string {
	if len(model.Nodes) == 0 {
		return ""
	}

	var b strings.Builder

	b.WriteString("flowchart TD\n")
	if model.Title != "" {
		b.WriteString(fmt.Sprintf("    %%%% %s\n", model.Title))
	}

	// Shape statements.
	for _, node := range model.Nodes {
		b.WriteString(fmt.Sprintf("    %s[%q]\n", node.ID, node.Label))
	}

	// One classDef per category present in the model.
	for _, cat := range categoriesInOrder(model) {
		color := palette[cat]
		if color == "" {
			color = schema.CategoryColor(cat)
		}
		b.WriteString(fmt.Sprintf("    classDef %s fill:%s\n", cat, color))
	}

	// Style statements.
	for _, node := range model.Nodes {
		b.WriteString(fmt.Sprintf("    class %s %s\n", node.ID, node.Category))
	}

	// Connection statements.
	for _, edge := range model.Edges {
		arrow := "-->"
		if edge.Kind == schema.EdgeKindFailure {
			arrow = "-.->"
		}
		b.WriteString(fmt.Sprintf("    %s %s %s\n", edge.From, arrow, edge.To))
	}

	return b.String()
}

// categoriesInOrder returns the categories used by the model, in the fixed
// category-set order so output is deterministic.
func categoriesInOrder(model *Model) []schema.AgentTypeCategory {
	present := make(map[schema.AgentTypeCategory]bool, len(model.Nodes))
	for _, n := range model.Nodes {
		present[n.Category] = true
	}
	var out []schema.AgentTypeCategory
	for _, cat := range schema.Categories() {
		if present[cat] {
			out = append(out, cat)
		}
	}
	return out
}
