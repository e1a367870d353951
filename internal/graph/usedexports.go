// SPDX-License-Identifier: MPL-2.0

package graph

import (
	"sort"
)

type (
	// useSet is the growing used-exports set of one module. all subsumes the
	// name set; once all is true the set is saturated and cannot grow.
	useSet struct {
		all   bool
		names map[string]struct{}
	}

	// Usage is the result of used-exports analysis: for every arena index,
	// which of the module's provided exports are transitively consumed from
	// the entry points. Sets only ever grew during the fixed point, so the
	// result is the least solution.
	Usage struct {
		sets []useSet
	}
)

// AnalyzeUsedExports runs the backward demand fixed point over the graph.
// Entry modules start saturated (their export use is unknown from outside, so
// conservatively all). Demand then flows along live edges: a named import
// adds those names to the target's set, a namespace import saturates it.
// Convergence is guaranteed because every set is bounded by the target's
// provided surface and only grows.
func AnalyzeUsedExports(g *Graph, entries []int, define map[string]string) *Usage {
	u := &Usage{sets: make([]useSet, g.Len())}
	for i := range u.sets {
		u.sets[i].names = make(map[string]struct{})
	}

	queue := make([]int, 0, len(entries))
	queued := make([]bool, g.Len())
	for _, e := range entries {
		u.sets[e].all = true
		queue = append(queue, e)
		queued[e] = true
	}

	// Reachability and demand propagate together: a module demands from its
	// dependencies only once it is itself reachable.
	visited := make([]bool, g.Len())
	for len(queue) > 0 {
		i := queue[0]
		queue = queue[1:]
		queued[i] = false
		visited[i] = true

		for _, e := range g.EdgesAt(i) {
			if !EdgeLive(e, define) {
				continue
			}
			grew := u.demand(e.To, e.Dep.Imports(), g)
			if grew || !visited[e.To] {
				if !queued[e.To] {
					queue = append(queue, e.To)
					queued[e.To] = true
				}
			}
		}
	}

	return u
}

// demand adds the demanded names (nil = namespace, saturate) to target's set,
// reporting whether the set grew. Names outside a known provided surface are
// ignored; the usedExports ⊆ providedExports invariant holds by
// construction.
func (u *Usage) demand(target int, names []string, g *Graph) bool {
	set := &u.sets[target]
	if set.all {
		return false
	}
	if names == nil {
		set.all = true
		return true
	}

	provided := g.ModuleAt(target).ProvidedExports()
	grew := false
	for _, n := range names {
		if !provided.Contains(n) {
			continue
		}
		if _, ok := set.names[n]; !ok {
			set.names[n] = struct{}{}
			grew = true
		}
	}
	return grew
}

// AllUsed reports whether module i is saturated (every provided export used).
func (u *Usage) AllUsed(i int) bool { return u.sets[i].all }

// IsUsed reports whether export name of module i is consumed.
func (u *Usage) IsUsed(i int, name string) bool {
	if u.sets[i].all {
		return true
	}
	_, ok := u.sets[i].names[name]
	return ok
}

// UsedNames returns the used export names of module i, sorted. Nil when the
// set is saturated (callers treat nil as "all").
func (u *Usage) UsedNames(i int) []string {
	if u.sets[i].all {
		return nil
	}
	names := make([]string, 0, len(u.sets[i].names))
	for n := range u.sets[i].names {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// UsedCount returns the size of module i's used set, for monotonicity checks.
func (u *Usage) UsedCount(i int) int {
	return len(u.sets[i].names)
}
