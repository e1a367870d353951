// SPDX-License-Identifier: MPL-2.0

// Package benchmark measures compilation timings and classifies a candidate
// build against a baseline using two-sided Student's-t confidence intervals
// at the 90% level. Verdicts are deliberately conservative: only fully
// disjoint intervals count as faster or slower, anything overlapping is
// "same".
//
// The package also carries Go benchmarks over the compilation hot paths
// (source scanning, graph analysis, full compile) for PGO profile
// generation:
//
//	make pgo-profile
package benchmark
