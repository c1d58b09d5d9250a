package diagram

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"
	"github.com/goccy/go-graphviz/cgraph"

	"github.com/rendis/flowmap/pkg/schema"
)

// RenderImage renders a Model as a PNG image using graphviz.
// Returns nil bytes without error for a model with zero nodes, mirroring the
// empty-string sentinel of the Mermaid renderer.
func RenderImage(model *Model) ([]byte, error) {
	return RenderImageWithPalette(model, schema.DefaultPalette())
}

// RenderImageWithPalette renders a PNG with an explicit category → color map.
func RenderImageWithPalette(model *Model, palette map[schema.AgentTypeCategory]string) ([]byte, error) {
	if len(model.Nodes) == 0 {
		return nil, nil
	}

	ctx := context.Background()

	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("diagram: create graphviz: %w", err)
	}
	defer gv.Close()

	gv.SetLayout(graphviz.DOT)

	graph, err := gv.Graph()
	if err != nil {
		return nil, fmt.Errorf("diagram: create graph: %w", err)
	}
	defer graph.Close()

	graph.SetRankDir(cgraph.TBRank)
	if model.Title != "" {
		graph.SetLabel(model.Title)
	}

	gvNodes := make(map[string]*cgraph.Node, len(model.Nodes))
	for _, node := range model.Nodes {
		gvNode, nErr := graph.CreateNodeByName(node.ID)
		if nErr != nil {
			return nil, fmt.Errorf("diagram: create node %s: %w", node.ID, nErr)
		}
		gvNode.SetLabel(node.Label)
		gvNode.SetShape(cgraph.BoxShape)
		gvNode.SetStyle(cgraph.FilledNodeStyle)
		color := palette[node.Category]
		if color == "" {
			color = schema.CategoryColor(node.Category)
		}
		gvNode.SetFillColor(color)
		gvNodes[node.ID] = gvNode
	}

	for _, edge := range model.Edges {
		fromGV, toGV := gvNodes[edge.From], gvNodes[edge.To]
		if toGV == nil {
			// Unresolved target: materialize it as a bare, unstyled node so
			// the dangling edge still renders.
			bare, nErr := graph.CreateNodeByName(edge.To)
			if nErr != nil {
				continue
			}
			bare.SetShape(cgraph.BoxShape)
			gvNodes[edge.To] = bare
			toGV = bare
		}
		if fromGV == nil {
			continue
		}
		e, eErr := graph.CreateEdgeByName("", fromGV, toGV)
		if eErr != nil {
			continue
		}
		if edge.Kind == schema.EdgeKindFailure {
			e.SetStyle(cgraph.DashedEdgeStyle)
		}
	}

	var buf bytes.Buffer
	if err := gv.Render(ctx, graph, graphviz.PNG, &buf); err != nil {
		return nil, fmt.Errorf("diagram: render PNG: %w", err)
	}

	return buf.Bytes(), nil
}
