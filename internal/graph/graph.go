// SPDX-License-Identifier: MPL-2.0

// Package graph owns the canonical module graph of a compilation: an arena of
// modules indexed by stable identity, with dependency edges as index pairs.
// Cycles are permitted and cost nothing extra; consumers must treat the
// structure as a general directed multigraph, never a tree.
//
// The graph is owned by exactly one compilation. Concurrent factory calls
// append independent modules; edges are wired only after both endpoints are
// fully created, so no reader ever observes torn state.
package graph

import (
	"errors"
	"fmt"

	"github.com/aperbet56/webpack/pkg/dependency"
	"github.com/aperbet56/webpack/pkg/module"
)

// ErrUnknownModule is returned when an edge endpoint is not in the graph.
// The no-dangling-edges invariant: every recorded edge connects two arena
// entries, or the compilation records the failure and drops the edge.
var ErrUnknownModule = errors.New("module not in graph")

type (
	// Edge is one outgoing dependency edge: the declaration plus the arena
	// index of the module it resolved to.
	Edge struct {
		Dep dependency.Dependency
		To  int
	}

	// Graph is the arena. Insertion order is the caller's responsibility and
	// is what downstream determinism hangs on: the compiler inserts modules
	// in dependency declaration order, never factory completion order.
	Graph struct {
		modules []module.Module
		index   map[string]int
		out     [][]Edge
		in      [][]int
	}
)

// New creates an empty Graph.
func New() *Graph {
	return &Graph{index: make(map[string]int)}
}

// Add inserts a module and returns its arena index. Adding a module whose
// identity is already present is a no-op returning the existing index; the
// arena exclusively owns each module.
func (g *Graph) Add(m module.Module) int {
	if i, ok := g.index[m.Identity()]; ok {
		return i
	}
	i := len(g.modules)
	g.modules = append(g.modules, m)
	g.out = append(g.out, nil)
	g.in = append(g.in, nil)
	g.index[m.Identity()] = i
	return i
}

// Connect wires a dependency edge between two already-inserted modules.
func (g *Graph) Connect(fromIdentity string, dep dependency.Dependency, toIdentity string) error {
	from, ok := g.index[fromIdentity]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownModule, fromIdentity)
	}
	to, ok := g.index[toIdentity]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownModule, toIdentity)
	}
	g.out[from] = append(g.out[from], Edge{Dep: dep, To: to})
	g.in[to] = append(g.in[to], from)
	return nil
}

// Len returns the number of modules in the arena.
func (g *Graph) Len() int { return len(g.modules) }

// ModuleAt returns the module at arena index i.
func (g *Graph) ModuleAt(i int) module.Module { return g.modules[i] }

// IndexOf returns the arena index for an identity.
func (g *Graph) IndexOf(identity string) (int, bool) {
	i, ok := g.index[identity]
	return i, ok
}

// EdgesAt returns the outgoing edges of module i in declaration order.
func (g *Graph) EdgesAt(i int) []Edge {
	return append([]Edge(nil), g.out[i]...)
}

// IncomingAt returns the arena indexes with an edge into module i.
func (g *Graph) IncomingAt(i int) []int {
	return append([]int(nil), g.in[i]...)
}

// EdgeLive reports whether an edge participates in analysis and chunking
// under the given constant-folding table. Dead edges: a guard folding to a
// different literal, or a side-effect-free dependency from which nothing is
// imported.
func EdgeLive(e Edge, define map[string]string) bool {
	if guard := e.Dep.Guard(); guard != nil {
		folded, known := define[guard.Identifier]
		if known && folded != guard.Literal {
			return false
		}
	}
	if imports := e.Dep.Imports(); imports != nil && len(imports) == 0 && e.Dep.SideEffectFree() {
		return false
	}
	return true
}
