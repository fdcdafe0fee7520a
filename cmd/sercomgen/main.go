package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"
)

var (
	logger = log.New(os.Stderr, "sercomgen: ", 0)

	mainCmd = &cobra.Command{
		Use:   "sercomgen",
		Short: "Bind SERCOM peripherals to serial and bus objects",
		Long: `sercomgen expands the SERCOM bindings of a board file into Go source for
each target chip family: one driver object per binding and the interrupt
handlers that forward to it.`,
		SilenceUsage: true,
	}
)

func init() {
	mainCmd.AddCommand(generateCmd, checkCmd, targetsCmd, envCmd)
}

func main() {
	if err := mainCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
