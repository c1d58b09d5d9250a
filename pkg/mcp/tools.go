package mcp

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/rendis/flowmap/internal/diagram"
	"github.com/rendis/flowmap/internal/parser"
	"github.com/rendis/flowmap/internal/store"
	"github.com/rendis/flowmap/pkg/schema"
)

// handleCompile compiles a workflow table and returns the diagram plus
// diagnostics. The compile is recorded in the catalog when one is configured.
func (s *FlowmapServer) handleCompile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	source, defName, errRes := s.resolveSource(ctx, req)
	if errRes != nil {
		return errRes, nil
	}

	policy := s.policy
	if p := req.GetString("edge_policy", ""); p != "" {
		policy = parser.EdgePolicy(p)
	}

	graph := parser.ParseWithOptions(source, parser.Options{EdgePolicy: policy})
	model := diagram.Build(graph)
	mermaidText := diagram.RenderMermaidWithPalette(model, s.palette)
	stats := graph.Stats()

	if s.catalog != nil {
		rec := &store.CompileRecord{
			DefinitionName: defName,
			GraphName:      graph.GraphName,
			NodeCount:      stats.NodeCount,
			EdgeCount:      stats.EdgeCount,
			ErrorCount:     graph.Diagnostics.CountBySeverity(schema.SeverityError),
			WarningCount:   graph.Diagnostics.CountBySeverity(schema.SeverityWarning),
			Mermaid:        mermaidText,
		}
		if recErr := s.catalog.RecordCompile(ctx, rec); recErr != nil {
			s.logger.WarnContext(ctx, "failed to record compile", "error", recErr)
		}
	}

	if req.GetString("format", "mermaid") == "image" {
		png, imgErr := diagram.RenderImageWithPalette(model, s.palette)
		if imgErr != nil {
			return mcp.NewToolResultError(fmt.Sprintf("image render failed: %v", imgErr)), nil
		}
		encoded := base64.StdEncoding.EncodeToString(png)
		return mcp.NewToolResultText(encoded), nil
	}

	return marshalResult(map[string]any{
		"graph_name":  graph.GraphName,
		"node_count":  stats.NodeCount,
		"edge_count":  stats.EdgeCount,
		"diagnostics": graph.Diagnostics.Issues,
		"mermaid":     mermaidText,
	})
}

// handleLint compiles the table and runs the advisory checks over the graph.
// Parse diagnostics are returned separately from lint findings.
func (s *FlowmapServer) handleLint(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	source, _, errRes := s.resolveSource(ctx, req)
	if errRes != nil {
		return errRes, nil
	}

	graph := parser.ParseWithOptions(source, parser.Options{EdgePolicy: s.policy})

	findings := &schema.ValidationResult{}
	if s.linter != nil {
		findings.Merge(s.linter.Run(graph))
	}
	if s.checker != nil {
		ctxFindings, checkErr := s.checker.Check(graph)
		if checkErr != nil {
			return mcp.NewToolResultError(fmt.Sprintf("context schema check failed: %v", checkErr)), nil
		}
		findings.Merge(ctxFindings)
	}

	return marshalResult(map[string]any{
		"graph_name":        graph.GraphName,
		"parse_diagnostics": graph.Diagnostics.Issues,
		"findings":          findings.Issues,
		"finding_count":     len(findings.Issues),
	})
}

// handleQuery runs a jq expression or a node filter predicate against the
// compiled graph.
func (s *FlowmapServer) handleQuery(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	source, _, errRes := s.resolveSource(ctx, req)
	if errRes != nil {
		return errRes, nil
	}

	expression := req.GetString("expression", "")
	filter := req.GetString("filter", "")
	if expression == "" && filter == "" {
		return mcp.NewToolResultError("one of 'expression' or 'filter' is required"), nil
	}
	if expression != "" && filter != "" {
		return mcp.NewToolResultError("'expression' and 'filter' are mutually exclusive"), nil
	}

	graph := parser.ParseWithOptions(source, parser.Options{EdgePolicy: s.policy})

	if expression != "" {
		result, queryErr := s.jq.QueryGraph(ctx, graph, expression)
		if queryErr != nil {
			return mcp.NewToolResultError(fmt.Sprintf("query failed: %v", queryErr)), nil
		}
		return marshalResult(map[string]any{"result": result})
	}

	nodes, filterErr := s.filter.FilterNodes(graph, filter)
	if filterErr != nil {
		return mcp.NewToolResultError(fmt.Sprintf("filter failed: %v", filterErr)), nil
	}
	return marshalResult(map[string]any{"nodes": nodes, "count": len(nodes)})
}

// handleSave stores a workflow table in the catalog under a name. The table
// is compiled first so the resolved graph name is stored alongside the
// source; compile errors do not block the save.
func (s *FlowmapServer) handleSave(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.catalog == nil {
		return mcp.NewToolResultError("catalog is not configured"), nil
	}
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError("name is required"), nil
	}
	source, err := req.RequireString("source")
	if err != nil {
		return mcp.NewToolResultError("source is required"), nil
	}

	graph := parser.ParseWithOptions(source, parser.Options{EdgePolicy: s.policy})
	stats := graph.Stats()

	def := &store.Definition{
		Name:      name,
		Source:    source,
		GraphName: graph.GraphName,
	}
	if saveErr := s.catalog.SaveDefinition(ctx, def); saveErr != nil {
		return mcp.NewToolResultError(fmt.Sprintf("save failed: %v", saveErr)), nil
	}

	return marshalResult(map[string]any{
		"name":        name,
		"graph_name":  graph.GraphName,
		"node_count":  stats.NodeCount,
		"edge_count":  stats.EdgeCount,
		"diagnostics": graph.Diagnostics.Issues,
	})
}

// handleCatalog lists, fetches, or deletes definitions, or lists compile history.
func (s *FlowmapServer) handleCatalog(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.catalog == nil {
		return mcp.NewToolResultError("catalog is not configured"), nil
	}
	action, err := req.RequireString("action")
	if err != nil {
		return mcp.NewToolResultError("action is required"), nil
	}
	name := req.GetString("name", "")

	switch action {
	case "list":
		defs, listErr := s.catalog.ListDefinitions(ctx)
		if listErr != nil {
			return mcp.NewToolResultError(fmt.Sprintf("list failed: %v", listErr)), nil
		}
		return marshalResult(map[string]any{"definitions": defs})

	case "get":
		if name == "" {
			return mcp.NewToolResultError("name is required for get"), nil
		}
		def, getErr := s.catalog.GetDefinition(ctx, name)
		if getErr != nil {
			return mcp.NewToolResultError(fmt.Sprintf("get failed: %v", getErr)), nil
		}
		return marshalResult(def)

	case "delete":
		if name == "" {
			return mcp.NewToolResultError("name is required for delete"), nil
		}
		if delErr := s.catalog.DeleteDefinition(ctx, name); delErr != nil {
			return mcp.NewToolResultError(fmt.Sprintf("delete failed: %v", delErr)), nil
		}
		return marshalResult(map[string]any{"deleted": name})

	case "history":
		limit := req.GetInt("limit", 20)
		recs, histErr := s.catalog.ListCompiles(ctx, name, limit)
		if histErr != nil {
			return mcp.NewToolResultError(fmt.Sprintf("history failed: %v", histErr)), nil
		}
		return marshalResult(map[string]any{"compiles": recs})

	default:
		return mcp.NewToolResultError(fmt.Sprintf("unknown action: %s", action)), nil
	}
}

// --- Helpers ---

// resolveSource returns the workflow table text for a request: inline
// 'source' wins, otherwise 'definition_name' is loaded from the catalog.
// The second return is the definition name when one was used.
func (s *FlowmapServer) resolveSource(ctx context.Context, req mcp.CallToolRequest) (string, string, *mcp.CallToolResult) {
	source := req.GetString("source", "")
	if source != "" {
		return source, "", nil
	}
	name := req.GetString("definition_name", "")
	if name == "" {
		return "", "", mcp.NewToolResultError("one of 'source' or 'definition_name' is required")
	}
	if s.catalog == nil {
		return "", "", mcp.NewToolResultError("catalog is not configured")
	}
	def, err := s.catalog.GetDefinition(ctx, name)
	if err != nil {
		return "", "", mcp.NewToolResultError(fmt.Sprintf("definition lookup failed: %v", err))
	}
	return def.Source, def.Name, nil
}

// marshalResult converts a value to a JSON text tool result.
func marshalResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultJSON(json.RawMessage(data))
}
