// SPDX-License-Identifier: MPL-2.0

package factory

import (
	"sort"

	"github.com/aperbet56/webpack/pkg/dependency"
	"github.com/aperbet56/webpack/pkg/module"
)

type (
	// Batch groups the dependencies that resolve to one physical module: all
	// declarations sharing a request, e.g. several named imports of the same
	// file. First is the declaration index of the earliest member; it is the
	// batch's position in every deterministic ordering downstream.
	Batch struct {
		First int
		Deps  []dependency.Dependency
	}

	// Result is one completed factory call. Index carries the batch's First,
	// so completion order can be erased afterwards.
	Result struct {
		Index  int
		Deps   []dependency.Dependency
		Module module.Module
		Err    error
	}
)

// BatchByRequest groups dependencies by request, preserving the declaration
// order of each request's first occurrence. The grouping is what lets one
// factory call serve several declarations.
func BatchByRequest(deps []dependency.Dependency) []Batch {
	var batches []Batch
	byRequest := make(map[string]int)

	for i, d := range deps {
		if bi, ok := byRequest[d.Request()]; ok {
			batches[bi].Deps = append(batches[bi].Deps, d)
			continue
		}
		byRequest[d.Request()] = len(batches)
		batches = append(batches, Batch{First: i, Deps: []dependency.Dependency{d}})
	}
	return batches
}

// SortByDeclaration erases factory completion order: results are re-sorted by
// original declaration index before any downstream consumption. This is the
// ordering adapter the determinism contract hangs on — without it, two runs
// with different goroutine scheduling would produce different chunk layouts.
func SortByDeclaration(results []Result) {
	sort.Slice(results, func(i, j int) bool {
		return results[i].Index < results[j].Index
	})
}
