package main

import (
	"context"

	cli "github.com/urfave/cli/v3"

	"github.com/rendis/flowmap/internal/lint"
	"github.com/rendis/flowmap/internal/parser"
	flowmapmcp "github.com/rendis/flowmap/pkg/mcp"
)

func mcpCommand() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Serve the flowmap tools over MCP stdio",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "no-catalog",
				Usage: "Run without the persistence catalog",
			},
		},
		Action: runMCP,
	}
}

func runMCP(ctx context.Context, cmd *cli.Command) error {
	logger := setupLogger(cmd.String("log-level"))
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	deps := flowmapmcp.FlowmapServerDeps{
		Palette:    cfg.Palette(),
		EdgePolicy: parser.EdgePolicy(cfg.EdgePolicy),
		Logger:     logger,
	}

	if !cmd.Bool("no-catalog") {
		catalog, openErr := openCatalog(ctx, cfg)
		if openErr != nil {
			return openErr
		}
		defer catalog.Close()
		deps.Catalog = catalog
	}

	linter, err := lint.NewLinter(cfg.LintRules())
	if err != nil {
		return err
	}
	deps.Linter = linter

	if schemaJSON, readErr := cfg.ContextSchemaJSON(); readErr != nil {
		return readErr
	} else if schemaJSON != nil {
		deps.Checker = lint.NewContextChecker(schemaJSON)
	}

	server := flowmapmcp.NewFlowmapServer(deps)
	logger.InfoContext(ctx, "mcp server listening on stdio")
	return server.Serve(ctx)
}
