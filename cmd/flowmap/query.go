package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	cli "github.com/urfave/cli/v3"

	"github.com/rendis/flowmap/internal/parser"
	"github.com/rendis/flowmap/internal/query"
)

func queryCommand() *cli.Command {
	return &cli.Command{
		Name:      "query",
		Usage:     "Query a compiled workflow graph with jq, or filter its nodes with a predicate",
		ArgsUsage: "[file]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "expr",
				Aliases: []string{"e"},
				Usage:   "jq expression evaluated against the graph document",
			},
			&cli.StringFlag{
				Name:  "filter",
				Usage: "Node predicate, e.g. 'category == \"llm\"'",
			},
		},
		Action: runQuery,
	}
}

func runQuery(ctx context.Context, cmd *cli.Command) error {
	setupLogger(cmd.String("log-level"))
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	expression := cmd.String("expr")
	filter := cmd.String("filter")
	if expression == "" && filter == "" {
		return fmt.Errorf("one of --expr or --filter is required")
	}
	if expression != "" && filter != "" {
		return fmt.Errorf("--expr and --filter are mutually exclusive")
	}

	source, err := readSource(cmd)
	if err != nil {
		return err
	}

	graph := parser.ParseWithOptions(source, parser.Options{EdgePolicy: parser.EdgePolicy(cfg.EdgePolicy)})

	var result any
	if expression != "" {
		engine := query.NewGoJQEngine()
		result, err = engine.QueryGraph(ctx, graph, expression)
	} else {
		engine := query.NewFilterEngine()
		result, err = engine.FilterNodes(graph, filter)
	}
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
