package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/vango-dev/mall/internal/errors"
	"github.com/vango-dev/mall/pkg/server"
)

func serveCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the storefront server",
		Long: `Start the storefront server.

The server stops gracefully on SIGINT or SIGTERM, closing open
navigation sessions first.

Examples:
  mall serve
  mall serve --port=3000
  mall serve --views=./views`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, flags)
		},
	}
}

func runServe(cmd *cobra.Command, flags *globalFlags) error {
	cfg, err := loadConfig(flags)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg, os.Stderr)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	routes, err := newRoutes(cfg)
	if err != nil {
		return err
	}
	srv, err := server.New(routes, serverConfig(cfg, logger))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\033[32m✓\033[0m %s listening on %s\n", cfg.Name, cfg.URL())
	fmt.Fprintf(out, "  views:   %s\n", cfg.Views.Source)
	if cfg.Metrics.Enabled {
		fmt.Fprintf(out, "  metrics: %s\n", cfg.Metrics.Path)
	}

	if err := srv.Run(); err != nil {
		return errors.New("E401").WithDetail("Could not listen on " + cfg.Address()).Wrap(err)
	}
	return nil
}
