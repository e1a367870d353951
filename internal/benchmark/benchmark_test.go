// SPDX-License-Identifier: MPL-2.0

package benchmark

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aperbet56/webpack/internal/compiler"
	"github.com/aperbet56/webpack/internal/factory"
	"github.com/aperbet56/webpack/internal/graph"
	"github.com/aperbet56/webpack/pkg/dependency"
	"github.com/aperbet56/webpack/pkg/module"
)

func series(name string, times ...time.Duration) Series {
	return Series{Name: name, Times: times}
}

func TestTValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		df   int
		want float64
	}{
		{1, 6.314},
		{10, 1.812},
		{30, 1.697},
		{35, 1.697}, // between rows: next-lower row applies
		{40, 1.684},
		{119, 1.671},
		{120, 1.658},
		{5000, 1.645}, // beyond the table: normal limit
	}
	for _, tt := range tests {
		if got := TValue(tt.df); got != tt.want {
			t.Errorf("TValue(%d) = %v, want %v", tt.df, got, tt.want)
		}
	}
}

func TestConfidenceInterval_ConstantSeries(t *testing.T) {
	t.Parallel()

	iv, err := series("const", 100, 100, 100, 100).ConfidenceInterval()
	if err != nil {
		t.Fatal(err)
	}
	if iv.Mean != 100 || iv.Low != 100 || iv.High != 100 {
		t.Errorf("zero-variance interval must collapse to the mean: %+v", iv)
	}
	if iv.N != 4 {
		t.Errorf("N = %d, want 4", iv.N)
	}
}

func TestConfidenceInterval_TooFewSamples(t *testing.T) {
	t.Parallel()

	if _, err := series("single", 100).ConfidenceInterval(); !errors.Is(err, ErrNoSamples) {
		t.Fatalf("expected ErrNoSamples, got %v", err)
	}
}

func TestCompare_DisjointIntervals(t *testing.T) {
	t.Parallel()

	base := series("base", 1000, 1010, 990, 1005, 995)
	fast := series("fast", 500, 510, 490, 505, 495)

	cmp, err := Compare(base, fast)
	if err != nil {
		t.Fatal(err)
	}
	if cmp.Verdict != VerdictFaster {
		t.Errorf("verdict = %s, want faster: %s", cmp.Verdict, cmp)
	}

	cmp, err = Compare(fast, base)
	if err != nil {
		t.Fatal(err)
	}
	if cmp.Verdict != VerdictSlower {
		t.Errorf("verdict = %s, want slower: %s", cmp.Verdict, cmp)
	}
}

func TestCompare_OverlappingIntervalsAreSame(t *testing.T) {
	t.Parallel()

	// Wide spreads around close means: the intervals overlap, so the
	// difference must not be called significant.
	base := series("base", 800, 1200, 900, 1100, 1000)
	cand := series("cand", 850, 1250, 950, 1150, 1050)

	cmp, err := Compare(base, cand)
	if err != nil {
		t.Fatal(err)
	}
	if cmp.Verdict != VerdictSame {
		t.Errorf("verdict = %s, want same: %s", cmp.Verdict, cmp)
	}
}

func TestMeasure(t *testing.T) {
	t.Parallel()

	calls := 0
	s, err := Measure(context.Background(), "count", 5, func() error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if calls != 5 || len(s.Times) != 5 {
		t.Errorf("calls = %d, samples = %d, want 5 each", calls, len(s.Times))
	}
}

func TestMeasure_Canceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Measure(ctx, "canceled", 3, func() error { return nil })
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestMeasure_FailingRun(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	_, err := Measure(context.Background(), "failing", 3, func() error { return boom })
	if !errors.Is(err, boom) {
		t.Fatalf("expected run failure to surface, got %v", err)
	}
}

const benchSource = `import { a, b } from "./util";
import * as everything from "./helpers";
import("./feature");
if (ENV === "mobile") { require("./mobile"); }
export var main = 1;
run(a, b, everything);
`

// BenchmarkSourceScan exercises the hot path in internal/factory/scan.go.
func BenchmarkSourceScan(b *testing.B) {
	scanner := factory.NewSourceScanner()
	data := []byte(benchSource)

	b.ResetTimer()
	for b.Loop() {
		if _, err := scanner.Parse("/src/app.js", data); err != nil {
			b.Fatalf("Parse failed: %v", err)
		}
	}
}

// BenchmarkUsedExportsAnalysis exercises the fixed point in
// internal/graph/usedexports.go over a deep chain of named imports.
func BenchmarkUsedExportsAnalysis(b *testing.B) {
	g := graph.New()
	prev := ""
	for i := 0; i < 200; i++ {
		identity := fmt.Sprintf("/src/m%03d.js", i)
		m, err := module.NewNormalModule(identity, module.Exports("x", "y"), nil, "")
		if err != nil {
			b.Fatal(err)
		}
		g.Add(m)
		if prev != "" {
			dep := dependency.Of(identity, dependency.KindStatic, "/src").WithImports("x")
			if err := g.Connect(prev, dep, identity); err != nil {
				b.Fatal(err)
			}
		}
		prev = identity
	}

	b.ResetTimer()
	for b.Loop() {
		graph.AnalyzeUsedExports(g, []int{0}, nil)
	}
}

// BenchmarkCompile exercises the end-to-end pipeline: discovery, analysis,
// chunking and code generation over a small on-disk project.
func BenchmarkCompile(b *testing.B) {
	src := b.TempDir()
	files := map[string]string{
		"entry.js":   "import { a } from \"./util\";\nimport(\"./feature\");\nrun(a);\n",
		"util.js":    "export var a = 1;\nexport var b = 2;\n",
		"feature.js": "export var f = 3;\n",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(src, name), []byte(content), 0o644); err != nil {
			b.Fatalf("failed to write %s: %v", name, err)
		}
	}

	b.ResetTimer()
	for b.Loop() {
		c, err := compiler.New(compiler.Options{
			Context: src,
			Entries: []compiler.EntryConfig{{Name: "main", Request: "./entry"}},
		})
		if err != nil {
			b.Fatalf("New failed: %v", err)
		}
		stats, err := c.Compile(context.Background())
		if err != nil {
			b.Fatalf("Compile failed: %v", err)
		}
		if len(stats.Errors) != 0 {
			b.Fatalf("unexpected errors: %v", stats.Errors)
		}
	}
}
