// SPDX-License-Identifier: MPL-2.0

package compiler

import (
	"context"
	"strings"
	"sync"

	"github.com/aperbet56/webpack/internal/chunkgraph"
	"github.com/aperbet56/webpack/internal/factory"
	"github.com/aperbet56/webpack/internal/graph"
	"github.com/aperbet56/webpack/pkg/dependency"
)

type (
	// weakEdge is a weak declaration held back during discovery: it is wired
	// only if its target was created by some other, stronger declaration.
	weakEdge struct {
		fromIdentity string
		dep          dependency.Dependency
	}
)

// discover builds the module graph breadth-first from the entry points.
// Factory calls within a wave run concurrently under the worker bound;
// completion order is erased by re-sorting every wave by declaration index
// before any module is inserted, so the arena order — and everything
// downstream of it — depends only on the input.
func (c *Compiler) discover(ctx context.Context) (*graph.Graph, []chunkgraph.Entry, []error) {
	g := graph.New()
	var (
		errs    []error
		entries []chunkgraph.Entry
		weak    []weakEdge
	)

	// Entry wave: one batch per entry, names kept in declaration order.
	entryBatches := make([]factory.Batch, len(c.opts.Entries))
	for i, e := range c.opts.Entries {
		entryBatches[i] = factory.Batch{
			First: i,
			Deps:  []dependency.Dependency{dependency.Of(e.Request, dependency.KindStatic, c.opts.Context)},
		}
	}

	// Each module is expanded exactly once, even when it is reachable as
	// both an entry and a dependency; re-expansion would duplicate edges.
	var frontier []int
	enqueued := make(map[int]bool)
	push := func(idx int) {
		if !enqueued[idx] {
			enqueued[idx] = true
			frontier = append(frontier, idx)
		}
	}

	for _, res := range c.createAll(ctx, entryBatches) {
		name := c.opts.Entries[res.Index].Name
		if res.Err != nil {
			c.logger.Error("entry failed", "entry", name, "err", res.Err)
			errs = append(errs, res.Err)
			continue
		}
		idx := g.Add(res.Module)
		entries = append(entries, chunkgraph.Entry{Name: name, Module: idx})
		push(idx)
	}

	// Expansion waves. A module's dependency batches resolve concurrently;
	// wiring happens sequentially afterwards in declaration order.
	for len(frontier) > 0 {
		from := frontier[0]
		frontier = frontier[1:]
		fromIdentity := g.ModuleAt(from).Identity()

		var strong []dependency.Dependency
		for _, dep := range g.ModuleAt(from).Dependencies() {
			if dep.Kind() == dependency.KindWeak {
				weak = append(weak, weakEdge{fromIdentity: fromIdentity, dep: dep})
				continue
			}
			strong = append(strong, dep)
		}

		for _, res := range c.createAll(ctx, factory.BatchByRequest(strong)) {
			if res.Err != nil {
				errs = append(errs, res.Err)
				continue
			}
			idx := g.Add(res.Module)
			for _, dep := range res.Deps {
				if err := g.Connect(fromIdentity, dep, res.Module.Identity()); err != nil {
					errs = append(errs, err)
				}
			}
			push(idx)
		}
	}

	// Weak edges resolve against what discovery already created; they never
	// cause creation. A weak request that resolves to nothing in the graph is
	// silently dropped.
	for _, w := range weak {
		path, err := c.opts.Resolver.Resolve(w.dep.Context(), w.dep.Request())
		if err != nil {
			continue
		}
		if _, ok := g.IndexOf(path); !ok {
			continue
		}
		if err := g.Connect(w.fromIdentity, w.dep, path); err != nil {
			errs = append(errs, err)
		}
	}

	return g, entries, errs
}

// createAll dispatches one wave of factory batches under the worker bound and
// returns the results re-sorted by declaration index. On cancellation no new
// call is scheduled; calls already in flight run to completion.
func (c *Compiler) createAll(ctx context.Context, batches []factory.Batch) []factory.Result {
	results := make([]factory.Result, len(batches))
	sem := make(chan struct{}, c.workers)
	var wg sync.WaitGroup

	for i, b := range batches {
		if err := ctx.Err(); err != nil {
			results[i] = factory.Result{Index: b.First, Deps: b.Deps, Err: err}
			continue
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, b factory.Batch) {
			defer wg.Done()
			defer func() { <-sem }()
			m, err := c.factoryFor(b.Deps[0].Request()).Create(ctx, factory.CreationContext{
				Directory: c.opts.Context,
				Define:    c.opts.Define,
			}, b.Deps)
			results[i] = factory.Result{Index: b.First, Deps: b.Deps, Module: m, Err: err}
		}(i, b)
	}
	wg.Wait()

	factory.SortByDeclaration(results)
	return results
}

// factoryFor routes a request: "dll <name>" requests matching a configured
// reference go to that bundle's factory, everything else to the filesystem.
func (c *Compiler) factoryFor(request string) factory.ModuleFactory {
	if name, ok := strings.CutPrefix(request, dllRequestPrefix); ok {
		if f, found := c.dlls[name]; found {
			return f
		}
	}
	return c.normal
}
