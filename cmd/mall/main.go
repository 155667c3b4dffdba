package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/vango-dev/mall/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		errors.Fprint(os.Stderr, errors.Classify(err))
		os.Exit(1)
	}
}

// globalFlags are shared by every subcommand.
type globalFlags struct {
	config string
	port   int
	views  string
}

func rootCmd() *cobra.Command {
	flags := &globalFlags{}

	cmd := &cobra.Command{
		Use:   "mall",
		Short: "Mall storefront server",
		Long: `mall serves the mall storefront: a hash-routed page shell, a route
resolution API and WebSocket navigation sessions over fifteen routes.

Configuration is read from mall.json in the working directory when
present, or from the file named by --config.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&flags.config, "config", "c", "", "Path to mall.json")
	cmd.PersistentFlags().IntVarP(&flags.port, "port", "p", 0, "Port to listen on (default from mall.json)")
	cmd.PersistentFlags().StringVar(&flags.views, "views", "", "Serve view bundles from this directory")

	cmd.AddCommand(
		serveCmd(flags),
		routesCmd(flags),
		resolveCmd(flags),
		versionCmd(),
	)
	return cmd
}
