// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "pr-weekly-report",
	Short: "A CLI tool to report pull request activity for an organization.",
	Long: `pr-weekly-report computes pull request activity metrics for a set of
repositories under a GitHub owner and renders them as a markdown report.
It supports a rolling trailing-week report across all configured
repositories and an ad-hoc date-range report for a single repository.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	// Add a persistent flag for verbose output, available to all commands.
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose/debug logging")
}

// newLogger builds the command logger: silent by default, stderr when
// the persistent verbose flag is set.
func newLogger(cmd *cobra.Command) *log.Logger {
	verbose, _ := cmd.InheritedFlags().GetBool("verbose")
	logger := log.New(io.Discard, "", log.LstdFlags)
	if verbose {
		logger.SetOutput(os.Stderr)
	}
	return logger
}

// writeReport delivers the rendered document to the caller-supplied
// path, or stdout when no path is given.
func writeReport(doc, path string) error {
	if path == "" {
		_, err := os.Stdout.WriteString(doc)
		return err
	}
	return os.WriteFile(path, []byte(doc), 0o644)
}
