package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	cli "github.com/urfave/cli/v3"

	"github.com/rendis/flowmap/internal/config"
	"github.com/rendis/flowmap/internal/logging"
	"github.com/rendis/flowmap/internal/store"
)

func main() {
	cmd := &cli.Command{
		Name:                  "flowmap",
		Usage:                 "Compile pipe-delimited workflow tables into graphs and diagrams",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the YAML config file",
				Sources: cli.EnvVars("FLOWMAP_CONFIG"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("FLOWMAP_LOG_LEVEL"),
			},
		},
		Commands: []*cli.Command{
			compileCommand(),
			lintCommand(),
			queryCommand(),
			catalogCommand(),
			mcpCommand(),
			{
				Name:  "version",
				Usage: "Print the flowmap version",
				Action: func(_ context.Context, _ *cli.Command) error {
					printVersion()
					return nil
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setupLogger builds the process logger: text output on stderr wrapped with
// automatic correlation field injection.
func setupLogger(logLevel string) *slog.Logger {
	var level slog.Level
	switch logLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	inner := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	logger := slog.New(logging.NewCorrelationHandler(inner))
	slog.SetDefault(logger)
	return logger
}

// loadConfig resolves the config for a command invocation.
func loadConfig(cmd *cli.Command) (config.Config, error) {
	return config.Load(cmd.String("config"))
}

// openCatalog opens (and migrates) the libSQL catalog at the configured path.
func openCatalog(ctx context.Context, cfg config.Config) (store.Catalog, error) {
	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	catalog, err := store.NewLibSQLCatalog("file:" + cfg.DBPath)
	if err != nil {
		return nil, err
	}
	if err := catalog.Migrate(ctx); err != nil {
		_ = catalog.Close()
		return nil, err
	}
	return catalog, nil
}

func readStdin() (string, error) {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return string(data), nil
}

// readSource reads the workflow table from the command's file argument, or
// from stdin when the argument is missing or "-".
func readSource(cmd *cli.Command) (string, error) {
	path := cmd.Args().First()
	if path == "" || path == "-" {
		return readStdin()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
