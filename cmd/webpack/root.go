// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for webpack.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/aperbet56/webpack/internal/issue"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"

	// verbose enables debug logging and full error chains
	verbose bool
	// cfgFile allows specifying a custom config file
	cfgFile string

	// rootCmd represents the base command when called without any subcommands
	rootCmd = &cobra.Command{
		Use:   "webpack",
		Short: "A deterministic module bundler",
		Long: TitleStyle.Render("webpack") + SubtitleStyle.Render(" - A deterministic module bundler") + `

webpack compiles a graph of modules into output chunks: one chunk per
entry point, split chunks behind dynamic import() boundaries, and shared
chunks for modules several entries reach. Identical input produces
byte-identical output regardless of scheduling.

Builds are configured in a 'webpack.cue' file using CUE format and can
link against pre-built DLL bundles through their manifests.

` + SubtitleStyle.Render("Quick Start:") + `
  1. Create a webpack.cue in your project directory
  2. Declare entries, define constants and output location
  3. Run: webpack build

` + SubtitleStyle.Render("Examples:") + `
  webpack build                 Compile using ./webpack.cue
  webpack build --config c.cue  Compile using a specific config
  webpack watch                 Rebuild on every source change
  webpack bench --runs 10       Time the build and report intervals`,
	}
)

func init() {
	cobra.OnInitialize(initLogging)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./webpack.cue)")

	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(benchCmd)
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}

func initLogging() {
	if verbose {
		log.SetLevel(log.DebugLevel)
	}
}

// formatErrorForDisplay renders an error for the terminal: ActionableErrors
// through their Format method, everything else verbatim.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}
