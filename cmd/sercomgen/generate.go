package main

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"omibyte.io/sercomgen/builder"
)

var (
	generateOpts = struct {
		config     string
		output     string
		targets    []string
		tags       string
		allowEmpty bool
		verbose    bool
	}{}

	generateCmd = &cobra.Command{
		Use:   "generate",
		Short: "Generate the bindings of a board file",
		Long:  "Generate one source file per target containing the bound objects and their interrupt handlers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), false)
		},
	}

	checkCmd = &cobra.Command{
		Use:   "check",
		Short: "Check the bindings of a board file without writing files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), true)
		},
	}
)

func init() {
	env := builder.Environment()
	for _, cmd := range []*cobra.Command{generateCmd, checkCmd} {
		cmd.Flags().StringVarP(&generateOpts.config, "config", "c", "board.yaml", "board file")
		cmd.Flags().StringSliceVar(&generateOpts.targets, "target", env.List("SERCOMGEN_TARGETS"), "targets to generate for instead of the board file's. Default: $SERCOMGEN_TARGETS")
		cmd.Flags().StringVarP(&generateOpts.tags, "tags", "t", env.Value("SERCOMGEN_TAGS"), "additional build tags for loading the board package. Default: $SERCOMGEN_TAGS")
		cmd.Flags().BoolVar(&generateOpts.allowEmpty, "allow-empty", false, "skip targets that match no chip family")
		cmd.Flags().BoolVarP(&generateOpts.verbose, "verbose", "v", false, "report each target")
	}
	generateCmd.Flags().StringVarP(&generateOpts.output, "output", "o", env.Value("SERCOMGEN_OUT"), "output directory. Default: $SERCOMGEN_OUT")
}

func run(ctx context.Context, dryRun bool) error {
	if ctx == nil {
		ctx = context.Background()
	}

	opts := builder.Options{
		Config:     generateOpts.config,
		Output:     generateOpts.output,
		Targets:    generateOpts.targets,
		AllowEmpty: generateOpts.allowEmpty,
		DryRun:     dryRun,
	}
	if len(generateOpts.tags) > 0 {
		opts.BuildTags = strings.Split(generateOpts.tags, ",")
	}
	if generateOpts.verbose || dryRun {
		opts.Logger = logger
	}

	results, err := builder.Build(ctx, opts)
	if err != nil {
		return err
	}

	if generateOpts.verbose {
		for _, result := range results {
			for _, binding := range result.Bindings {
				logger.Printf("%s: %s", result.Series, binding)
			}
		}
	}
	return nil
}
