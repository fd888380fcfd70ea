package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/genedata/internal"
	pkgconfig "github.com/starford/genedata/pkg/config"
)

var version = "dev"

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	configPath := cmd.String("config")

	cfg := internal.NewDefaultConfig()
	if _, err := pkgconfig.LoadOptional(configPath, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Flags win over the config file.
	if cmd.IsSet("catalog") {
		cfg.Input.Catalog = cmd.String("catalog")
	}
	if cmd.IsSet("commands") {
		cfg.Input.Commands = cmd.String("commands")
	}
	if cmd.IsSet("output") {
		cfg.Output.Report = cmd.String("output")
	}
	if cmd.IsSet("label") {
		cfg.Report.Label = cmd.String("label")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func run(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.Serve(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("app serve error: %w", err)
	}
	return nil
}

func serveMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.ServeMCP(ctx, version, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("app mcp error: %w", err)
	}
	return nil
}

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:        "config",
		Aliases:     []string{"c"},
		Usage:       "Path to config file (optional)",
		DefaultText: "config/config.yaml",
		Value:       "config/config.yaml",
		Sources:     cli.EnvVars("GENEDATA_CONFIG_FILE"),
	}
}

func catalogFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "catalog",
		Usage: "Catalog stream: path, - for stdin, or s3://bucket/key",
	}
}

func runFlags() []cli.Flag {
	return []cli.Flag{
		configFlag(),
		catalogFlag(),
		&cli.StringFlag{
			Name:  "commands",
			Usage: "Command stream: path, - for stdin, or s3://bucket/key",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Report stream: path, - for stdout, or s3://bucket/key",
		},
		&cli.StringFlag{
			Name:  "label",
			Usage: "Label written on the first report line",
		},
	}
}

func main() {
	cmd := &cli.Command{
		Name:    "genedata",
		Usage:   "Answer search, diff and mode queries over a protein catalog",
		Version: version,
		Action:  run,
		Flags:   runFlags(),
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "Process a command stream and write the report (default)",
				Action: run,
				Flags:  runFlags(),
			},
			{
				Name:   "serve",
				Usage:  "Serve the query API over HTTP and reload the catalog on change",
				Action: serve,
				Flags:  []cli.Flag{configFlag(), catalogFlag()},
			},
			{
				Name:   "mcp",
				Usage:  "Serve the query tools over MCP stdio",
				Action: serveMCP,
				Flags:  []cli.Flag{configFlag(), catalogFlag()},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
