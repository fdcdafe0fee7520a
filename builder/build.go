package builder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"golang.org/x/exp/slices"

	"omibyte.io/sercomgen/binder"
	"omibyte.io/sercomgen/config"
	"omibyte.io/sercomgen/generator"
	"omibyte.io/sercomgen/symbols"
)

// Result describes the output for one target.
type Result struct {
	Series   string
	File     generator.File
	Bindings []*binder.Binding
}

// Build loads the board file, expands its bindings for every target and
// writes one file per target to the output directory. Nothing is written
// unless every target succeeds.
func Build(ctx context.Context, opts Options) ([]Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	// Check the output path
	if info, err := os.Stat(opts.Output); err == nil && !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrUnexpectedOutputPath, opts.Output)
	}

	board, err := config.Load(opts.Config)
	if err != nil {
		return nil, errors.Join(ErrConfigError, err)
	}

	flags := board.Targets
	if len(opts.Targets) > 0 {
		flags = opts.Targets
	}

	gen := generator.New(generator.Options{
		Package: board.Package,
		Drivers: board.Drivers,
	})

	var results []Result
	var errs []error
	var seen []string
	for _, flag := range flags {
		strategy, ok := binder.Select(flag)
		if !ok {
			if opts.AllowEmpty {
				logger.Printf("%s: no chip family matches, nothing generated", flag)
				continue
			}
			errs = append(errs, fmt.Errorf("%w: %s: %w", ErrBindingError, flag, binder.ErrNoChipFamily))
			continue
		}

		series := strategy.Target().Series
		if slices.Contains(seen, series) {
			logger.Printf("%s: series %s already generated", flag, series)
			continue
		}
		seen = append(seen, series)

		result, err := buildTarget(ctx, opts, board, strategy, gen)
		if err != nil {
			errs = append(errs, fmt.Errorf("%w: %s: %w", ErrBindingError, series, err))
			continue
		}
		logger.Printf("%s: %d bindings, %s (%s family)", series, len(result.Bindings), result.File.Name, strategy.Family())
		results = append(results, result)
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	if !opts.DryRun {
		files := make([]generator.File, len(results))
		for i, result := range results {
			files[i] = result.File
		}
		if err = generator.WriteFiles(opts.Output, files); err != nil {
			return nil, err
		}
	}
	return results, nil
}

func buildTarget(ctx context.Context, opts Options, board *config.Board, strategy binder.Strategy, gen *generator.Generator) (Result, error) {
	table, err := loadSymbols(ctx, opts, board, strategy)
	if err != nil {
		return Result{}, err
	}

	// A nil table must stay a nil interface or every symbol is unresolved
	var resolver binder.Resolver
	if table != nil {
		resolver = table
	}
	plan := binder.NewPlan(strategy, board.Convention, resolver)
	board.Apply(plan)

	if err = plan.Require(board.Require...); err != nil {
		return Result{}, errors.Join(plan.Err(), err)
	}

	files, err := gen.Generate(plan)
	if err != nil {
		return Result{}, err
	}

	return Result{
		Series:   strategy.Target().Series,
		File:     files[0],
		Bindings: plan.Bindings(),
	}, nil
}

// loadSymbols returns the board's symbol table for the strategy's target,
// or nil when the board file names no symbol source.
func loadSymbols(ctx context.Context, opts Options, board *config.Board, strategy binder.Strategy) (symbols.Table, error) {
	if len(board.Symbols.Package) == 0 && len(board.Symbols.Declared) == 0 {
		return nil, nil
	}

	table := symbols.NewTable(board.Symbols.Declared...)
	if len(board.Symbols.Package) > 0 {
		tags := append(slices.Clone(strategy.Target().Tags), opts.BuildTags...)
		loaded, err := symbols.Load(symbols.LoadOptions{
			Context: ctx,
			Dir:     filepath.Dir(opts.Config),
			Pattern: board.Symbols.Package,
			Tags:    tags,
		})
		if err != nil {
			return nil, err
		}
		table.Add(loaded.Names()...)
	}
	return table, nil
}
