// SPDX-License-Identifier: MPL-2.0

package benchmark

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"
)

// ErrNoSamples is returned when a series has too few samples to analyze.
var ErrNoSamples = errors.New("not enough samples")

type (
	// Series is one set of timed runs of the same workload.
	Series struct {
		Name  string
		Times []time.Duration
	}

	// Interval is a two-sided 90% confidence interval around a series mean.
	Interval struct {
		Mean time.Duration
		Low  time.Duration
		High time.Duration
		N    int
	}

	// Verdict classifies a candidate series against a baseline.
	Verdict string

	// Comparison is the outcome of comparing two series: the two intervals
	// and the verdict their overlap implies.
	Comparison struct {
		Base      Interval
		Candidate Interval
		Verdict   Verdict
	}
)

const (
	// VerdictFaster: the candidate interval lies entirely below the base.
	VerdictFaster Verdict = "faster"
	// VerdictSlower: the candidate interval lies entirely above the base.
	VerdictSlower Verdict = "slower"
	// VerdictSame: the intervals overlap; the difference is not significant
	// at the 90% level.
	VerdictSame Verdict = "same"
)

// tTable holds two-sided 90% critical values of Student's t-distribution,
// keyed by degrees of freedom. Between listed rows the next-lower row
// applies; beyond the last listed row the normal limit applies.
var tTable = []struct {
	df int
	t  float64
}{
	{1, 6.314}, {2, 2.920}, {3, 2.353}, {4, 2.132}, {5, 2.015},
	{6, 1.943}, {7, 1.895}, {8, 1.860}, {9, 1.833}, {10, 1.812},
	{11, 1.796}, {12, 1.782}, {13, 1.771}, {14, 1.761}, {15, 1.753},
	{16, 1.746}, {17, 1.740}, {18, 1.734}, {19, 1.729}, {20, 1.725},
	{21, 1.721}, {22, 1.717}, {23, 1.714}, {24, 1.711}, {25, 1.708},
	{26, 1.706}, {27, 1.703}, {28, 1.701}, {29, 1.699}, {30, 1.697},
	{40, 1.684}, {60, 1.671}, {120, 1.658},
}

const tInfinity = 1.645

// TValue returns the two-sided 90% critical value for df degrees of freedom.
func TValue(df int) float64 {
	if df < 1 {
		return tTable[0].t
	}
	if df > tTable[len(tTable)-1].df {
		return tInfinity
	}
	// Next-lower row: the largest listed df not exceeding df.
	i := sort.Search(len(tTable), func(i int) bool { return tTable[i].df > df })
	return tTable[i-1].t
}

// Measure times runs executions of fn under ctx. A failing run aborts the
// series; a canceled context stops between runs, never mid-run.
func Measure(ctx context.Context, name string, runs int, fn func() error) (Series, error) {
	if runs < 2 {
		return Series{}, fmt.Errorf("%w: need at least 2 runs, got %d", ErrNoSamples, runs)
	}

	s := Series{Name: name, Times: make([]time.Duration, 0, runs)}
	for i := 0; i < runs; i++ {
		if err := ctx.Err(); err != nil {
			return Series{}, fmt.Errorf("measurement canceled after %d runs: %w", i, err)
		}
		started := time.Now()
		if err := fn(); err != nil {
			return Series{}, fmt.Errorf("run %d of %s failed: %w", i, name, err)
		}
		s.Times = append(s.Times, time.Since(started))
	}
	return s, nil
}

// ConfidenceInterval computes the series' two-sided 90% confidence interval
// under Student's t-distribution with n-1 degrees of freedom.
func (s Series) ConfidenceInterval() (Interval, error) {
	n := len(s.Times)
	if n < 2 {
		return Interval{}, fmt.Errorf("%w: series %s has %d samples", ErrNoSamples, s.Name, n)
	}

	var sum float64
	for _, d := range s.Times {
		sum += float64(d)
	}
	mean := sum / float64(n)

	var sq float64
	for _, d := range s.Times {
		diff := float64(d) - mean
		sq += diff * diff
	}
	variance := sq / float64(n-1)
	margin := TValue(n-1) * math.Sqrt(variance/float64(n))

	return Interval{
		Mean: time.Duration(mean),
		Low:  time.Duration(mean - margin),
		High: time.Duration(mean + margin),
		N:    n,
	}, nil
}

// Compare classifies candidate against base. Only fully disjoint confidence
// intervals yield a faster/slower verdict; any overlap is "same", so noisy
// measurements degrade toward the conservative answer.
func Compare(base, candidate Series) (Comparison, error) {
	bi, err := base.ConfidenceInterval()
	if err != nil {
		return Comparison{}, err
	}
	ci, err := candidate.ConfidenceInterval()
	if err != nil {
		return Comparison{}, err
	}

	cmp := Comparison{Base: bi, Candidate: ci, Verdict: VerdictSame}
	switch {
	case ci.High < bi.Low:
		cmp.Verdict = VerdictFaster
	case ci.Low > bi.High:
		cmp.Verdict = VerdictSlower
	}
	return cmp, nil
}

// String renders the comparison for command output.
func (c Comparison) String() string {
	return fmt.Sprintf("%s: %v (%v..%v) vs %v (%v..%v)",
		c.Verdict,
		c.Candidate.Mean, c.Candidate.Low, c.Candidate.High,
		c.Base.Mean, c.Base.Low, c.Base.High)
}
