// Package main provides the entry point for the codeintel CLI tool.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/codeintel-engine/engine/pkg/version"
)

var verbose bool

func main() {
	rootCmd := &cobra.Command{
		Use:   "codeintel",
		Short: "codeintel - multi-language static analysis engine",
		Long: `codeintel lowers source into a layered IR, runs flow/points-to/IFDS-IDE
taint analysis across it, and reports findings.

Commands:
  parse   Lower a single file into IR and print its node/edge summary
  mcp     Start the Model Context Protocol server on stdio`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(newParseCommand())
	rootCmd.AddCommand(newMCPCommand())
	rootCmd.AddCommand(newVersionCommand())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Fprintf(os.Stdout, "codeintel %s (commit: %s, built: %s)\n", version.Version, version.Commit, version.Date)
		},
	}
}
