package main

import (
	"context"
	"encoding/json"
	"os"

	cli "github.com/urfave/cli/v3"

	"github.com/rendis/flowmap/internal/lint"
	"github.com/rendis/flowmap/internal/logging"
	"github.com/rendis/flowmap/internal/parser"
	"github.com/rendis/flowmap/pkg/schema"
)

func lintCommand() *cli.Command {
	return &cli.Command{
		Name:      "lint",
		Usage:     "Run advisory checks over a workflow table",
		ArgsUsage: "[file]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Emit findings as JSON on stdout",
			},
		},
		Action: runLint,
	}
}

func runLint(ctx context.Context, cmd *cli.Command) error {
	logger := setupLogger(cmd.String("log-level"))
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	source, err := readSource(cmd)
	if err != nil {
		return err
	}

	graph := parser.ParseWithOptions(source, parser.Options{EdgePolicy: parser.EdgePolicy(cfg.EdgePolicy)})
	ctx = logging.WithGraphName(ctx, graph.GraphName)

	linter, err := lint.NewLinter(cfg.LintRules())
	if err != nil {
		return err
	}

	findings := &schema.ValidationResult{}
	findings.Merge(&graph.Diagnostics)
	findings.Merge(linter.Run(graph))

	if schemaJSON, readErr := cfg.ContextSchemaJSON(); readErr != nil {
		return readErr
	} else if schemaJSON != nil {
		checker := lint.NewContextChecker(schemaJSON)
		ctxFindings, checkErr := checker.Check(graph)
		if checkErr != nil {
			return checkErr
		}
		findings.Merge(ctxFindings)
	}

	if cmd.Bool("json") {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if encErr := enc.Encode(findings.Issues); encErr != nil {
			return encErr
		}
	} else {
		reportDiagnostics(ctx, logger, *findings)
	}

	return findings.ToError()
}
