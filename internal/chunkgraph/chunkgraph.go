// SPDX-License-Identifier: MPL-2.0

// Package chunkgraph partitions a module graph into output chunks: one chunk
// per entry point, split chunks behind async boundaries, and shared chunks
// for modules reachable from more than one owner. Every ordering decision in
// here keys on declaration order, never on allocation or completion order —
// two runs over identical input must produce identical chunk layouts.
package chunkgraph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aperbet56/webpack/internal/graph"
	"github.com/aperbet56/webpack/pkg/dependency"
)

type (
	// Entry names one entry point: the declared name and the arena index of
	// its entry module. Declaration order of entries is the tie-break key for
	// shared-module hoisting.
	Entry struct {
		Name   string
		Module int
	}

	// Chunk is an ordered set of modules emitted as one output unit. A
	// module belongs to exactly one chunk; other chunks reference it by id.
	Chunk struct {
		ID      int
		Name    string
		Entry   bool
		Modules []int
	}

	// ChunkGraph is the result of partitioning: the chunks in deterministic
	// emission order plus the stable module-id assignment.
	ChunkGraph struct {
		Chunks []Chunk

		moduleID    map[int]int
		moduleChunk map[int]int
	}

	// asyncSplit is a pending split point: the async edge's target and the
	// request that opened it, in discovery order.
	asyncSplit struct {
		target  int
		request string
	}
)

// Build partitions the graph reachable from entries. Traversal follows live
// edges only, so guarded-out dependencies never pull their targets into any
// chunk.
func Build(g *graph.Graph, entries []Entry, define map[string]string) *ChunkGraph {
	cg := &ChunkGraph{
		moduleID:    make(map[int]int),
		moduleChunk: make(map[int]int),
	}

	// Phase 1: independent synchronous reachability per entry, collecting
	// async split points in discovery order.
	var splits []asyncSplit
	entrySets := make([][]int, len(entries))
	for i, e := range entries {
		entrySets[i] = syncReachable(g, e.Module, define, nil, &splits)
	}

	// Phase 2: hoist modules owned by two or more entries into shared
	// chunks, keyed by the ordered owner set (entry declaration order).
	owners := make(map[int][]int)
	for i, set := range entrySets {
		for _, m := range set {
			owners[m] = append(owners[m], i)
		}
	}

	sharedKey := func(entryIdxs []int) string {
		parts := make([]string, len(entryIdxs))
		for i, e := range entryIdxs {
			parts[i] = entries[e].Name
		}
		return strings.Join(parts, "~")
	}

	sharedChunks := make(map[string]*Chunk)
	var sharedOrder []string
	assigned := make(map[int]bool)

	for i, e := range entries {
		chunk := Chunk{Name: e.Name, Entry: true}
		for _, m := range entrySets[i] {
			if assigned[m] {
				continue
			}
			if len(owners[m]) > 1 {
				key := sharedKey(owners[m])
				sc, ok := sharedChunks[key]
				if !ok {
					sc = &Chunk{Name: "shared~" + key}
					sharedChunks[key] = sc
					sharedOrder = append(sharedOrder, key)
				}
				sc.Modules = append(sc.Modules, m)
			} else {
				chunk.Modules = append(chunk.Modules, m)
			}
			assigned[m] = true
		}
		cg.Chunks = append(cg.Chunks, chunk)
	}
	for _, key := range sharedOrder {
		cg.Chunks = append(cg.Chunks, *sharedChunks[key])
	}

	// Phase 3: async split chunks, in discovery order. A target already
	// assigned is referenced by id; it opens no new chunk. Traversal skips
	// modules that some earlier chunk already owns.
	seenSplit := make(map[int]bool)
	for len(splits) > 0 {
		s := splits[0]
		splits = splits[1:]
		if seenSplit[s.target] || assigned[s.target] {
			seenSplit[s.target] = true
			continue
		}
		seenSplit[s.target] = true

		modules := syncReachable(g, s.target, define, assigned, &splits)
		if len(modules) == 0 {
			continue
		}
		for _, m := range modules {
			assigned[m] = true
		}
		cg.Chunks = append(cg.Chunks, Chunk{Name: "async~" + s.request, Modules: modules})
	}

	// Phase 4: stable ids by emission order. Chunk ids are positional;
	// module ids increase across chunks in order.
	nextModule := 0
	for ci := range cg.Chunks {
		cg.Chunks[ci].ID = ci
		for _, m := range cg.Chunks[ci].Modules {
			cg.moduleID[m] = nextModule
			cg.moduleChunk[m] = ci
			nextModule++
		}
	}

	return cg
}

// syncReachable walks live non-async edges from start in breadth-first,
// declaration order. Modules in skip are left out (they belong to an earlier
// chunk); async edges append split points instead of being traversed.
func syncReachable(g *graph.Graph, start int, define map[string]string, skip map[int]bool, splits *[]asyncSplit) []int {
	if skip != nil && skip[start] {
		return nil
	}

	var order []int
	visited := map[int]bool{start: true}
	queue := []int{start}

	for len(queue) > 0 {
		m := queue[0]
		queue = queue[1:]
		order = append(order, m)

		for _, e := range g.EdgesAt(m) {
			if !graph.EdgeLive(e, define) {
				continue
			}
			if e.Dep.Kind() == dependency.KindAsync {
				*splits = append(*splits, asyncSplit{target: e.To, request: e.Dep.Request()})
				continue
			}
			if visited[e.To] || (skip != nil && skip[e.To]) {
				continue
			}
			visited[e.To] = true
			queue = append(queue, e.To)
		}
	}
	return order
}

// ModuleID returns the stable id assigned to arena index m.
func (cg *ChunkGraph) ModuleID(m int) (int, bool) {
	id, ok := cg.moduleID[m]
	return id, ok
}

// ChunkOf returns the id of the chunk owning arena index m.
func (cg *ChunkGraph) ChunkOf(m int) (int, bool) {
	c, ok := cg.moduleChunk[m]
	return c, ok
}

// AssignedModules returns all assigned arena indexes in stable-id order.
func (cg *ChunkGraph) AssignedModules() []int {
	out := make([]int, 0, len(cg.moduleID))
	for m := range cg.moduleID {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return cg.moduleID[out[i]] < cg.moduleID[out[j]] })
	return out
}

// String summarizes the layout for logs.
func (cg *ChunkGraph) String() string {
	parts := make([]string, len(cg.Chunks))
	for i, c := range cg.Chunks {
		parts[i] = fmt.Sprintf("%s(%d)", c.Name, len(c.Modules))
	}
	return strings.Join(parts, " ")
}
