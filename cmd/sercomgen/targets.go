package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"omibyte.io/sercomgen/binder"
	"omibyte.io/sercomgen/builder"
	"omibyte.io/sercomgen/targets"
)

var (
	targetsCmd = &cobra.Command{
		Use:   "targets",
		Short: "List the supported chip families",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 8, 2, ' ', 0)
			fmt.Fprintln(w, "SERIES\tFAMILY\tSERCOMS\tVECTORS\tTAGS")
			for _, target := range targets.All() {
				strategy := binder.ForTarget(target)
				fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\n",
					target.Series,
					target.Family,
					target.Sercoms,
					len(strategy.Vectors(0)),
					strings.Join(target.Tags, ","))
			}
			w.Flush()
		},
	}

	envCmd = &cobra.Command{
		Use:   "env",
		Short: "Print sercomgen environment information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			builder.Environment().Print()
		},
	}
)
