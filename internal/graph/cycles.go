// SPDX-License-Identifier: MPL-2.0

package graph

import (
	"fmt"
	"strings"
)

type (
	// CircularDependencyWarning reports modules participating in a dependency
	// cycle. Cycles are supported by the whole pipeline; the warning exists
	// for diagnostics only and never fails a compilation.
	CircularDependencyWarning struct {
		// Cycle holds the identities of the participating modules, in arena
		// order (enough to identify the problem, not a minimal cycle).
		Cycle []string
	}
)

func (w *CircularDependencyWarning) Error() string {
	return fmt.Sprintf("circular dependency involving: %s", strings.Join(w.Cycle, " -> "))
}

// DetectCycles runs Kahn's algorithm over the graph and returns a warning for
// the modules left with non-zero in-degree, or nil for an acyclic graph. The
// leftover set after peeling is exactly the union of all cycles.
func (g *Graph) DetectCycles() *CircularDependencyWarning {
	inDegree := make([]int, g.Len())
	for i := 0; i < g.Len(); i++ {
		for _, e := range g.out[i] {
			inDegree[e.To]++
		}
	}

	queue := make([]int, 0, g.Len())
	for i := 0; i < g.Len(); i++ {
		if inDegree[i] == 0 {
			queue = append(queue, i)
		}
	}

	peeled := 0
	for len(queue) > 0 {
		i := queue[0]
		queue = queue[1:]
		peeled++
		for _, e := range g.out[i] {
			inDegree[e.To]--
			if inDegree[e.To] == 0 {
				queue = append(queue, e.To)
			}
		}
	}

	if peeled == g.Len() {
		return nil
	}

	var cycle []string
	for i := 0; i < g.Len(); i++ {
		if inDegree[i] > 0 {
			cycle = append(cycle, g.modules[i].Identity())
		}
	}
	return &CircularDependencyWarning{Cycle: cycle}
}
