// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/aperbet56/webpack/internal/compiler"
	"github.com/aperbet56/webpack/internal/config"
	"github.com/aperbet56/webpack/internal/issue"
	"github.com/aperbet56/webpack/internal/watch"
)

var (
	watchDebounce time.Duration
	watchClear    bool

	watchCmd = &cobra.Command{
		Use:   "watch",
		Short: "Rebuild whenever source files change",
		Long: `Watch compiles once, then monitors the project context for changes
to module sources, manifests and the configuration file, re-running the
build after a short quiet period. Changes landing within the same window
are coalesced into a single rebuild.

A rebuild that fails keeps the watcher alive; fix the source and save
again. Stop with Ctrl-C.`,
		RunE: runWatch,
	}
)

func init() {
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 0, "quiet period before rebuilding (default 300ms)")
	watchCmd.Flags().BoolVar(&watchClear, "clear", false, "clear the terminal before each rebuild")
	watchCmd.Flags().StringVarP(&outputOverride, "output", "o", "", "output directory (overrides output.dir)")
}

func runWatch(cmd *cobra.Command, _ []string) error {
	cfg, _, err := config.Load(cmd.Context(), config.LoadOptions{ConfigFilePath: cfgFile})
	if err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, verbose))
		renderIssue(os.Stderr, issue.ConfigLoadFailedId)
		return &ExitError{Code: 1, Err: err}
	}

	outDir := cfg.Output.Dir
	if outputOverride != "" {
		outDir = outputOverride
	}
	opts := compilerOptions(cfg, outDir)

	rebuild := func(ctx context.Context, changed []string) error {
		if len(changed) > 0 {
			fmt.Fprintln(cmd.OutOrStdout(), SubtitleStyle.Render(fmt.Sprintf("changed: %d file(s), rebuilding", len(changed))))
		}
		comp, err := compiler.New(opts)
		if err != nil {
			return err
		}
		stats, err := comp.Compile(ctx)
		if err != nil {
			return err
		}
		printStats(cmd, stats)
		return nil
	}

	// First build before watching starts. Errors here are reported the
	// same way as rebuild errors and do not stop the watcher.
	if err := rebuild(cmd.Context(), nil); err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, verbose))
	}

	w, err := watch.New(watch.Config{
		Context:     cfg.Context,
		Ignore:      outputIgnores(cfg.Context, outDir),
		Debounce:    watchDebounce,
		ClearScreen: watchClear,
		OnRebuild:   rebuild,
		Stdout:      cmd.OutOrStdout(),
		Stderr:      os.Stderr,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, verbose))
		return &ExitError{Code: 1, Err: err}
	}

	fmt.Fprintln(cmd.OutOrStdout(), SubtitleStyle.Render("watching "+cfg.Context+" for changes"))
	if err := w.Run(cmd.Context()); err != nil {
		return &ExitError{Code: 1, Err: err}
	}
	return nil
}

// outputIgnores returns an ignore pattern for the emit directory when it
// lives inside the watched context. Without it every emitted asset would
// immediately re-trigger a rebuild.
func outputIgnores(contextDir, outDir string) []string {
	if outDir == "" {
		return nil
	}
	absCtx, err := filepath.Abs(contextDir)
	if err != nil {
		return nil
	}
	absOut, err := filepath.Abs(outDir)
	if err != nil {
		return nil
	}
	rel, err := filepath.Rel(absCtx, absOut)
	if err != nil || rel == ".." || filepath.IsAbs(rel) || len(rel) >= 3 && rel[:3] == ".."+string(filepath.Separator) {
		return nil
	}
	return []string{filepath.ToSlash(rel) + "/**"}
}
