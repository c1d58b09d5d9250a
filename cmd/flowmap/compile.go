package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	cli "github.com/urfave/cli/v3"

	"github.com/rendis/flowmap/internal/diagram"
	"github.com/rendis/flowmap/internal/logging"
	"github.com/rendis/flowmap/internal/parser"
	"github.com/rendis/flowmap/pkg/schema"
)

func compileCommand() *cli.Command {
	return &cli.Command{
		Name:      "compile",
		Usage:     "Compile a workflow table into a Mermaid flowchart or PNG",
		ArgsUsage: "[file]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: mermaid or image",
				Value:   "mermaid",
			},
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Usage:   "Write output to a file instead of stdout",
			},
			&cli.StringFlag{
				Name:  "edge-policy",
				Usage: "Dangling edge handling: lenient or strict (overrides config)",
			},
		},
		Action: runCompile,
	}
}

func runCompile(ctx context.Context, cmd *cli.Command) error {
	logger := setupLogger(cmd.String("log-level"))
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	source, err := readSource(cmd)
	if err != nil {
		return err
	}

	policy := parser.EdgePolicy(cfg.EdgePolicy)
	if p := cmd.String("edge-policy"); p != "" {
		policy = parser.EdgePolicy(p)
	}

	graph := parser.ParseWithOptions(source, parser.Options{EdgePolicy: policy})
	ctx = logging.WithGraphName(ctx, graph.GraphName)
	reportDiagnostics(ctx, logger, graph.Diagnostics)

	model := diagram.Build(graph)
	palette := cfg.Palette()

	var output []byte
	switch cmd.String("format") {
	case "mermaid":
		output = []byte(diagram.RenderMermaidWithPalette(model, palette))
	case "image":
		png, renderErr := diagram.RenderImageWithPalette(model, palette)
		if renderErr != nil {
			return renderErr
		}
		output = png
	default:
		return fmt.Errorf("unknown format %q", cmd.String("format"))
	}

	if out := cmd.String("out"); out != "" {
		return os.WriteFile(out, output, 0o644)
	}
	_, err = os.Stdout.Write(output)
	return err
}

// reportDiagnostics logs every diagnostic at the level matching its severity.
func reportDiagnostics(ctx context.Context, logger *slog.Logger, result schema.ValidationResult) {
	for _, issue := range result.Issues {
		attrs := []any{"row", issue.Row, "code", issue.Code}
		if issue.Column != "" {
			attrs = append(attrs, "column", issue.Column)
		}
		switch issue.Severity {
		case schema.SeverityError:
			logger.ErrorContext(ctx, issue.Message, attrs...)
		case schema.SeverityWarning:
			logger.WarnContext(ctx, issue.Message, attrs...)
		default:
			logger.InfoContext(ctx, issue.Message, attrs...)
		}
	}
}
