package mcp

import (
	"context"
	"log/slog"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/rendis/flowmap/internal/lint"
	"github.com/rendis/flowmap/internal/parser"
	"github.com/rendis/flowmap/internal/query"
	"github.com/rendis/flowmap/internal/store"
	"github.com/rendis/flowmap/pkg/schema"
)

// FlowmapServerDeps holds the dependencies for creating a FlowmapServer.
// Catalog may be nil; the save and catalog tools then report an error and
// compiles are not recorded.
type FlowmapServerDeps struct {
	Catalog    store.Catalog
	Linter     *lint.Linter
	Checker    *lint.ContextChecker
	Palette    map[schema.AgentTypeCategory]string
	EdgePolicy parser.EdgePolicy
	Logger     *slog.Logger
}

// FlowmapServer wraps an MCP server with flowmap-specific tool handlers.
type FlowmapServer struct {
	catalog   store.Catalog
	linter    *lint.Linter
	checker   *lint.ContextChecker
	palette   map[schema.AgentTypeCategory]string
	policy    parser.EdgePolicy
	jq        *query.GoJQEngine
	filter    *query.FilterEngine
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// NewFlowmapServer creates a new FlowmapServer with all 5 tools registered.
func NewFlowmapServer(deps FlowmapServerDeps) *FlowmapServer {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	palette := deps.Palette
	if palette == nil {
		palette = schema.DefaultPalette()
	}
	policy := deps.EdgePolicy
	if policy == "" {
		policy = parser.EdgePolicyLenient
	}

	s := &FlowmapServer{
		catalog: deps.Catalog,
		linter:  deps.Linter,
		checker: deps.Checker,
		palette: palette,
		policy:  policy,
		jq:      query.NewGoJQEngine(),
		filter:  query.NewFilterEngine(),
		logger:  logger,
	}

	mcpSrv := server.NewMCPServer(
		"flowmap",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithRecovery(),
		server.WithInstructions("Flowmap compiles pipe-delimited workflow tables into graphs and diagrams. Use flowmap.compile to compile a table into a Mermaid flowchart or PNG, flowmap.lint to run advisory checks, flowmap.query to run jq or filter expressions against a compiled graph, flowmap.save to store a definition by name, and flowmap.catalog to browse stored definitions and compile history."),
	)

	mcpSrv.AddTools(s.tools()...)
	s.mcpServer = mcpSrv
	return s
}

// Serve starts the stdio transport and blocks until ctx is cancelled or stdin closes.
func (s *FlowmapServer) Serve(ctx context.Context) error {
	stdio := server.NewStdioServer(s.mcpServer)
	return stdio.Listen(ctx, os.Stdin, os.Stdout)
}

// MCPServer returns the underlying MCPServer for testing or custom transports.
func (s *FlowmapServer) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// tools returns the 5 registered MCP tools as ServerTool entries.
func (s *FlowmapServer) tools() []server.ServerTool {
	return []server.ServerTool{
		{Tool: compileTool(), Handler: s.handleCompile},
		{Tool: lintTool(), Handler: s.handleLint},
		{Tool: queryTool(), Handler: s.handleQuery},
		{Tool: saveTool(), Handler: s.handleSave},
		{Tool: catalogTool(), Handler: s.handleCatalog},
	}
}

// --- Tool definitions ---

func compileTool() mcp.Tool {
	return mcp.NewTool("flowmap.compile",
		mcp.WithDescription("Compile a workflow table into a graph and diagram. Returns graph statistics, diagnostics, and the Mermaid flowchart (or a base64 PNG)"),
		mcp.WithString("source", mcp.Description("Workflow table text (header row plus data rows)")),
		mcp.WithString("definition_name", mcp.Description("Name of a stored definition to compile instead of inline source")),
		mcp.WithString("format",
			mcp.Enum("mermaid", "image"),
			mcp.Description("Diagram output: mermaid (flowchart syntax, default) or image (base64 PNG)"),
		),
		mcp.WithString("edge_policy",
			mcp.Enum("lenient", "strict"),
			mcp.Description("Dangling edge handling: lenient keeps them, strict drops them (default: server setting)"),
		),
	)
}

func lintTool() mcp.Tool {
	return mcp.NewTool("flowmap.lint",
		mcp.WithDescription("Run advisory lint checks over a compiled workflow graph: orphan nodes, self loops, configured rules, and context schema validation"),
		mcp.WithString("source", mcp.Description("Workflow table text to lint")),
		mcp.WithString("definition_name", mcp.Description("Name of a stored definition to lint instead of inline source")),
	)
}

func queryTool() mcp.Tool {
	return mcp.NewTool("flowmap.query",
		mcp.WithDescription("Query a compiled workflow graph with a jq expression, or filter its nodes with a boolean predicate"),
		mcp.WithString("source", mcp.Description("Workflow table text to query")),
		mcp.WithString("definition_name", mcp.Description("Name of a stored definition to query instead of inline source")),
		mcp.WithString("expression", mcp.Description("jq expression evaluated against the graph document, e.g. '.nodes[].name'")),
		mcp.WithString("filter", mcp.Description("Node predicate, e.g. 'category == \"llm\" && prompt == \"\"'")),
	)
}

func saveTool() mcp.Tool {
	return mcp.NewTool("flowmap.save",
		mcp.WithDescription("Store a workflow table in the catalog under a name. Saving an existing name overwrites the source"),
		mcp.WithString("name", mcp.Required(), mcp.Description("Definition name")),
		mcp.WithString("source", mcp.Required(), mcp.Description("Workflow table text")),
	)
}

func catalogTool() mcp.Tool {
	return mcp.NewTool("flowmap.catalog",
		mcp.WithDescription("Browse the catalog: list or fetch stored definitions, delete one, or list compile history"),
		mcp.WithString("action", mcp.Required(),
			mcp.Enum("list", "get", "delete", "history"),
			mcp.Description("Catalog operation"),
		),
		mcp.WithString("name", mcp.Description("Definition name (required for get and delete, optional filter for history)")),
		mcp.WithNumber("limit", mcp.Description("Maximum history entries to return (default 20)")),
	)
}
