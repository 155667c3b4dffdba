package main

import (
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

func resolveCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <location>...",
		Short: "Resolve locations against the route table",
		Long: `Resolve locations against the route table without loading views.

Examples:
  mall resolve /
  mall resolve /product/42 '/cart?from=home'`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			r, err := newResolver(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, target := range args {
				res, err := r.Resolve(target)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s\n", target)
				fmt.Fprintf(out, "  route:  %s (index %d)\n", res.Name, res.Meta.Index)
				fmt.Fprintf(out, "  path:   %s\n", res.FullPath)
				fmt.Fprintf(out, "  href:   %s\n", r.History().Href(res.FullPath))
				if res.RedirectedFrom != "" {
					fmt.Fprintf(out, "  from:   %s\n", res.RedirectedFrom)
				}
				if len(res.Params) > 0 {
					fmt.Fprintf(out, "  params: %s\n", formatParams(res.Params))
				}
			}
			return nil
		},
	}
}

func formatParams(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + params[k]
	}
	return strings.Join(parts, " ")
}
