package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func routesCmd(flags *globalFlags) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "routes",
		Short: "List the route table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			routes, err := newRoutes(cfg)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				type entry struct {
					Path     string `json:"path"`
					Name     string `json:"name,omitempty"`
					Redirect string `json:"redirect,omitempty"`
					Index    int    `json:"index"`
					Lazy     bool   `json:"lazy"`
				}
				entries := make([]entry, 0, len(routes))
				for _, rt := range routes {
					entries = append(entries, entry{rt.Path, rt.Name, rt.Redirect, rt.Meta.Index, rt.Component.IsLazy()})
				}
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(entries)
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "PATH\tNAME\tINDEX\tVIEW")
			for _, rt := range routes {
				switch {
				case rt.IsRedirect():
					fmt.Fprintf(tw, "%s\t-\t-\t-> %s\n", rt.Path, rt.Redirect)
				case rt.Component.IsLazy():
					fmt.Fprintf(tw, "%s\t%s\t%d\tdeferred\n", rt.Path, rt.Name, rt.Meta.Index)
				default:
					fmt.Fprintf(tw, "%s\t%s\t%d\teager\n", rt.Path, rt.Name, rt.Meta.Index)
				}
			}
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the table as JSON")
	return cmd
}
