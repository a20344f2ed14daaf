// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pdiddy/docverse/internal/toolchain"
)

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "Report which local conversion tools were found",
	RunE: func(cmd *cobra.Command, args []string) error {
		tc := toolchain.New(cfg.Tools, log)
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "TOOL\tSTATUS\tPATH")
		for _, st := range tc.Report() {
			status := "found"
			if !st.Found {
				status = "missing"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", st.Tool, status, st.Path)
		}
		fmt.Fprintf(w, "cloud\t%s\t%s\n", cloudStatus(), cfg.Cloud.BaseURL)
		return w.Flush()
	},
}

func cloudStatus() string {
	switch {
	case cfg.Cloud.UseFirst():
		return "primary"
	case cfg.Cloud.Ready():
		return "ready"
	case cfg.Cloud.Enabled:
		return "no credentials"
	default:
		return "disabled"
	}
}

func init() {
	rootCmd.AddCommand(toolsCmd)
}
