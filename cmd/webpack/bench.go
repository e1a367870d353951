// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aperbet56/webpack/internal/benchmark"
	"github.com/aperbet56/webpack/internal/compiler"
	"github.com/aperbet56/webpack/internal/config"
	"github.com/aperbet56/webpack/internal/issue"
)

var (
	benchRuns    int
	benchAgainst string

	benchCmd = &cobra.Command{
		Use:   "bench",
		Short: "Time the build and classify it against a baseline",
		Long: `Bench runs the full compilation repeatedly (without writing output
files) and reports the mean build time with a two-sided 90% confidence
interval under Student's t-distribution.

With --against, a second configuration is timed the same way and the
current build is classified as faster, slower, or same. Only fully
disjoint confidence intervals produce a faster/slower verdict.`,
		RunE: runBench,
	}
)

func init() {
	benchCmd.Flags().IntVarP(&benchRuns, "runs", "n", 10, "number of timed compilations per configuration")
	benchCmd.Flags().StringVar(&benchAgainst, "against", "", "baseline config file to compare with")
}

func runBench(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()

	candidate, err := measureConfig(cmd.Context(), "current", cfgFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, verbose))
		return &ExitError{Code: 1, Err: err}
	}

	if benchAgainst == "" {
		iv, err := candidate.ConfidenceInterval()
		if err != nil {
			return &ExitError{Code: 1, Err: err}
		}
		fmt.Fprintf(out, "%s %v (90%% CI %v..%v, n=%d)\n",
			SubtitleStyle.Render("build time:"), iv.Mean, iv.Low, iv.High, iv.N)
		return nil
	}

	base, err := measureConfig(cmd.Context(), "baseline", benchAgainst)
	if err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, verbose))
		return &ExitError{Code: 1, Err: err}
	}

	cmp, err := benchmark.Compare(base, candidate)
	if err != nil {
		return &ExitError{Code: 1, Err: err}
	}

	style := SubtitleStyle
	switch cmp.Verdict {
	case benchmark.VerdictFaster:
		style = SuccessStyle
	case benchmark.VerdictSlower:
		style = ErrorStyle
	}
	fmt.Fprintln(out, style.Render(string(cmp.Verdict))+" "+cmp.String())
	return nil
}

// measureConfig loads one configuration and times benchRuns full compilations
// of it. Output emission is disabled so runs only measure the pipeline.
func measureConfig(ctx context.Context, name, configPath string) (benchmark.Series, error) {
	cfg, _, err := config.Load(ctx, config.LoadOptions{ConfigFilePath: configPath})
	if err != nil {
		renderIssue(os.Stderr, issue.ConfigLoadFailedId)
		return benchmark.Series{}, err
	}

	opts := compilerOptions(cfg, "")
	return benchmark.Measure(ctx, name, benchRuns, func() error {
		comp, err := compiler.New(opts)
		if err != nil {
			return err
		}
		stats, err := comp.Compile(ctx)
		if err != nil {
			return err
		}
		if len(stats.Errors) > 0 {
			return fmt.Errorf("compilation finished with %d error(s)", len(stats.Errors))
		}
		return nil
	})
}
