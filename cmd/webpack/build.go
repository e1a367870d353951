// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aperbet56/webpack/internal/compiler"
	"github.com/aperbet56/webpack/internal/config"
	"github.com/aperbet56/webpack/internal/issue"
)

var (
	// outputOverride replaces the configured output directory.
	outputOverride string

	buildCmd = &cobra.Command{
		Use:   "build",
		Short: "Compile the module graph into chunks",
		Long: `Compile resolves the configured entry points, builds the module
graph, analyzes used exports, partitions the graph into chunks and writes
one file per chunk named <chunk-name>.<shorthash>.js.

The build tolerates partial failure: a dependency that cannot be resolved
or a chunk that cannot be rendered is reported, and everything independent
of it is still emitted. The exit code is non-zero when any error occurred.`,
		RunE: runBuild,
	}
)

func init() {
	buildCmd.Flags().StringVarP(&outputOverride, "output", "o", "", "output directory (overrides output.dir)")
}

func runBuild(cmd *cobra.Command, _ []string) error {
	cfg, resolved, err := config.Load(cmd.Context(), config.LoadOptions{ConfigFilePath: cfgFile})
	if err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, verbose))
		renderIssue(os.Stderr, issue.ConfigLoadFailedId)
		return &ExitError{Code: 1, Err: err}
	}
	if resolved != "" && verbose {
		fmt.Fprintln(cmd.OutOrStdout(), SubtitleStyle.Render("config: "+resolved))
	}

	outDir := cfg.Output.Dir
	if outputOverride != "" {
		outDir = outputOverride
	}

	comp, err := compiler.New(compilerOptions(cfg, outDir))
	if err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, verbose))
		return &ExitError{Code: 1, Err: err}
	}

	stats, err := comp.Compile(cmd.Context())
	if err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, verbose))
		renderIssues(os.Stderr, []error{err})
		return &ExitError{Code: 1, Err: err}
	}

	printStats(cmd, stats)

	if len(stats.Errors) > 0 {
		return &ExitError{Code: 1, Err: fmt.Errorf("compilation finished with %d error(s)", len(stats.Errors))}
	}
	return nil
}

// compilerOptions maps the loaded configuration onto compiler options.
func compilerOptions(cfg *config.Config, outDir string) compiler.Options {
	entries := make([]compiler.EntryConfig, len(cfg.Entries))
	for i, e := range cfg.Entries {
		entries[i] = compiler.EntryConfig{Name: e.Name, Request: e.Request}
	}
	refs := make([]compiler.DllReference, len(cfg.DllReferences))
	for i, r := range cfg.DllReferences {
		refs[i] = compiler.DllReference{Name: r.Name, Requests: r.Requests}
	}
	return compiler.Options{
		Context:              cfg.Context,
		Entries:              entries,
		Define:               cfg.Define,
		Manifests:            cfg.Manifests,
		DllReferences:        refs,
		OutputDir:            outDir,
		DisableExportElision: cfg.Mode == config.ModeDevelopment,
		Concurrency:          cfg.Concurrency,
	}
}

func printStats(cmd *cobra.Command, stats *compiler.BuildStats) {
	out := cmd.OutOrStdout()

	for _, w := range stats.Warnings {
		fmt.Fprintln(os.Stderr, WarningStyle.Render("Warning: ")+w.Error())
	}
	for _, e := range stats.Errors {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: ")+formatErrorForDisplay(e, verbose))
	}
	renderIssues(os.Stderr, append(append([]error{}, stats.Warnings...), stats.Errors...))

	for _, a := range stats.Assets {
		fmt.Fprintf(out, "%s %s  %s (%d bytes)\n",
			SuccessStyle.Render("emit"), ChunkStyle.Render(a.File), a.Chunk, a.Size)
	}
	for _, rc := range stats.Chunks {
		if rc.Failed {
			fmt.Fprintf(out, "%s %s\n", ErrorStyle.Render("failed"), ChunkStyle.Render(rc.Name))
		}
	}

	fmt.Fprintf(out, "%s %d modules, %d chunks in %v\n",
		SubtitleStyle.Render("done:"), stats.Modules, len(stats.Chunks), stats.Duration)
}
