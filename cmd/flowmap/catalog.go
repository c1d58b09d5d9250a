package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	cli "github.com/urfave/cli/v3"

	"github.com/rendis/flowmap/internal/parser"
	"github.com/rendis/flowmap/internal/store"
)

func catalogCommand() *cli.Command {
	return &cli.Command{
		Name:  "catalog",
		Usage: "Manage stored workflow definitions",
		Commands: []*cli.Command{
			{
				Name:      "save",
				Usage:     "Store a workflow table under a name",
				ArgsUsage: "<name> [file]",
				Action:    runCatalogSave,
			},
			{
				Name:   "list",
				Usage:  "List stored definitions",
				Action: runCatalogList,
			},
			{
				Name:      "show",
				Usage:     "Print the source of a stored definition",
				ArgsUsage: "<name>",
				Action:    runCatalogShow,
			},
			{
				Name:      "delete",
				Usage:     "Delete a stored definition",
				ArgsUsage: "<name>",
				Action:    runCatalogDelete,
			},
			{
				Name:      "history",
				Usage:     "List compile history, optionally scoped to a definition",
				ArgsUsage: "[name]",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum entries to return",
						Value: 20,
					},
				},
				Action: runCatalogHistory,
			},
		},
	}
}

func runCatalogSave(ctx context.Context, cmd *cli.Command) error {
	logger := setupLogger(cmd.String("log-level"))
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	name := cmd.Args().First()
	if name == "" {
		return fmt.Errorf("definition name is required")
	}

	path := cmd.Args().Get(1)
	var source string
	if path == "" || path == "-" {
		source, err = readStdin()
	} else {
		var data []byte
		data, err = os.ReadFile(path)
		source = string(data)
	}
	if err != nil {
		return err
	}

	catalog, err := openCatalog(ctx, cfg)
	if err != nil {
		return err
	}
	defer catalog.Close()

	graph := parser.ParseWithOptions(source, parser.Options{EdgePolicy: parser.EdgePolicy(cfg.EdgePolicy)})
	def := &store.Definition{Name: name, Source: source, GraphName: graph.GraphName}
	if err := catalog.SaveDefinition(ctx, def); err != nil {
		return err
	}

	logger.InfoContext(ctx, "definition saved",
		"name", name, "graph_name", graph.GraphName, "nodes", len(graph.Nodes))
	return nil
}

func runCatalogList(ctx context.Context, cmd *cli.Command) error {
	setupLogger(cmd.String("log-level"))
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	catalog, err := openCatalog(ctx, cfg)
	if err != nil {
		return err
	}
	defer catalog.Close()

	defs, err := catalog.ListDefinitions(ctx)
	if err != nil {
		return err
	}
	for _, def := range defs {
		fmt.Printf("%s\t%s\t%s\n", def.Name, def.GraphName, def.UpdatedAt.Format("2006-01-02 15:04:05"))
	}
	return nil
}

func runCatalogShow(ctx context.Context, cmd *cli.Command) error {
	setupLogger(cmd.String("log-level"))
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	name := cmd.Args().First()
	if name == "" {
		return fmt.Errorf("definition name is required")
	}

	catalog, err := openCatalog(ctx, cfg)
	if err != nil {
		return err
	}
	defer catalog.Close()

	def, err := catalog.GetDefinition(ctx, name)
	if err != nil {
		return err
	}
	fmt.Print(def.Source)
	return nil
}

func runCatalogDelete(ctx context.Context, cmd *cli.Command) error {
	logger := setupLogger(cmd.String("log-level"))
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	name := cmd.Args().First()
	if name == "" {
		return fmt.Errorf("definition name is required")
	}

	catalog, err := openCatalog(ctx, cfg)
	if err != nil {
		return err
	}
	defer catalog.Close()

	if err := catalog.DeleteDefinition(ctx, name); err != nil {
		return err
	}
	logger.InfoContext(ctx, "definition deleted", "name", name)
	return nil
}

func runCatalogHistory(ctx context.Context, cmd *cli.Command) error {
	setupLogger(cmd.String("log-level"))
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	catalog, err := openCatalog(ctx, cfg)
	if err != nil {
		return err
	}
	defer catalog.Close()

	recs, err := catalog.ListCompiles(ctx, cmd.Args().First(), cmd.Int("limit"))
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(recs)
}
