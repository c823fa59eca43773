package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/notestore/internal"
	pkgconfig "github.com/starford/notestore/pkg/config"
)

var version = "dev"

func init() {
	// -h is taken by --host.
	cli.HelpFlag = &cli.BoolFlag{
		Name:  "help",
		Usage: "show help",
	}
}

// buildConfig layers defaults, the optional YAML file, and flags (which also
// carry env values) into a single Config. It does not validate.
func buildConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if path := cmd.String("config"); path != "" {
		if err := pkgconfig.Decode(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if cmd.IsSet("host") {
		cfg.App.HTTP.Host = cmd.String("host")
	}
	if cmd.IsSet("port") {
		port, err := strconv.Atoi(cmd.String("port"))
		if err != nil {
			return nil, fmt.Errorf("invalid port %q", cmd.String("port"))
		}
		cfg.App.HTTP.Port = port
	}
	if cmd.IsSet("cache") {
		cfg.Cache.Dir = cmd.String("cache")
	}
	if cmd.IsSet("journal") {
		cfg.Journal.Path = cmd.String("journal")
	}
	if cmd.IsSet("events") {
		cfg.Events.Enabled = cmd.Bool("events")
	}
	if cmd.IsSet("log-level") {
		if err := cfg.App.LogLevel.UnmarshalText([]byte(cmd.String("log-level"))); err != nil {
			return nil, fmt.Errorf("invalid log level: %w", err)
		}
	}
	return cfg, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, internal.WithConfig(cfg), internal.WithVersion(version)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func serveMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	// stdout carries the protocol
	err = internal.RunMCP(ctx,
		internal.WithConfig(cfg),
		internal.WithLogOutput(os.Stderr),
		internal.WithVersion(version),
	)
	if err != nil {
		return fmt.Errorf("mcp run error: %w", err)
	}
	return nil
}

func newCommand(action, mcpAction cli.ActionFunc) *cli.Command {
	return &cli.Command{
		Name:    "notestore",
		Usage:   "Store plain-text notes in a directory and serve them over HTTP",
		Version: version,
		Action:  action,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "host",
				Aliases: []string{"h"},
				Usage:   "Address to bind the HTTP server to",
				Sources: cli.EnvVars("NOTES_HOST"),
			},
			&cli.StringFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to listen on",
				Sources: cli.EnvVars("NOTES_PORT"),
			},
			&cli.StringFlag{
				Name:    "cache",
				Aliases: []string{"c"},
				Usage:   "Directory notes are stored in",
				Sources: cli.EnvVars("NOTES_CACHE"),
			},
			&cli.StringFlag{
				Name:    "config",
				Usage:   "Path to an optional YAML config file",
				Sources: cli.EnvVars("APP_CONFIG_FILE"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Sources: cli.EnvVars("NOTES_LOG_LEVEL"),
			},
			&cli.StringFlag{
				Name:    "journal",
				Usage:   "Path to the SQLite activity journal (disabled when empty)",
				Sources: cli.EnvVars("NOTES_JOURNAL"),
			},
			&cli.BoolFlag{
				Name:    "events",
				Usage:   "Watch the cache directory and serve change events on /events",
				Sources: cli.EnvVars("NOTES_EVENTS"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "mcp",
				Usage:  "Serve notes to MCP clients over stdio",
				Action: mcpAction,
			},
		},
	}
}

func main() {
	cmd := newCommand(serve, serveMCP)
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
