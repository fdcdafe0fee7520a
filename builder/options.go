package builder

import "log"

type Options struct {
	// Config is the path of the board file.
	Config string
	// Output is the directory generated files are written to.
	Output string
	// Targets replace the board file's targets when not empty.
	Targets []string
	// BuildTags are added to each target's tags when loading the board
	// package.
	BuildTags []string
	// AllowEmpty accepts targets that match no chip family. They produce
	// no files, so every object they would define stays undefined.
	AllowEmpty bool
	// DryRun runs every check without writing files.
	DryRun bool
	Logger *log.Logger
}
