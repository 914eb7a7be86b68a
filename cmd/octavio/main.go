package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/octavio/octavio/internal"
	pkgconfig "github.com/octavio/octavio/pkg/config"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	load := pkgconfig.LoadOptional[internal.Config]
	if cmd.IsSet("config") {
		load = pkgconfig.Load[internal.Config]
	}
	if err := load(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func options(cmd *cli.Command) ([]internal.Option, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return []internal.Option{
		internal.WithConfig(cfg),
		internal.WithVersion(version),
	}, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	opts, err := options(cmd)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, opts...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func main() {
	cmd := &cli.Command{
		Name:    "octavio",
		Usage:   "O.C.T.A.V.I.O.'s blog: a static-style site over Markdown-dialect posts",
		Version: version,
		Action:  serve,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Serve the site, JSON API and event stream over HTTP",
				Action: serve,
			},
			{
				Name:  "mcp",
				Usage: "Serve posts to LLM clients over MCP on stdio",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					opts, err := options(cmd)
					if err != nil {
						return err
					}
					return internal.RunMCP(ctx, opts...)
				},
			},
			{
				Name:  "export",
				Usage: "Write the site as static HTML files",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "out",
						Usage: "Output directory",
						Value: "public",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					opts, err := options(cmd)
					if err != nil {
						return err
					}
					return internal.RunExport(ctx, cmd.String("out"), opts...)
				},
			},
			{
				Name:      "render",
				Usage:     "Convert one post file and print HTML or JSON blocks",
				ArgsUsage: "<file>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "format",
						Usage: "Output format: html or json",
						Value: internal.FormatHTML,
					},
					&cli.StringFlag{
						Name:  "profile",
						Usage: "Dialect profile: full or basic (default: from config)",
					},
				},
				Action: func(_ context.Context, cmd *cli.Command) error {
					if cmd.Args().Len() != 1 {
						return fmt.Errorf("render: expected exactly one file argument")
					}
					opts, err := options(cmd)
					if err != nil {
						return err
					}
					return internal.RenderFile(cmd.Args().First(), cmd.String("format"), cmd.String("profile"), opts...)
				},
			},
			{
				Name:  "new",
				Usage: "Scaffold a new post in the content directory",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "title",
						Usage:    "Post title",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "category",
						Usage: "Post category",
					},
				},
				Action: func(_ context.Context, cmd *cli.Command) error {
					opts, err := options(cmd)
					if err != nil {
						return err
					}
					return internal.NewPost(cmd.String("title"), cmd.String("category"), opts...)
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
