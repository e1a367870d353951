// SPDX-License-Identifier: MPL-2.0

// Package compiler orchestrates one compilation: graph discovery through the
// factory protocol, used-exports analysis, chunking, code generation and
// asset emission. A compilation tolerates partial failure — errors accumulate
// on the build stats scoped to the dependency, module or chunk that caused
// them — with one exception: a manifest that cannot be read aborts the run
// before any factory call is scheduled.
package compiler

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/aperbet56/webpack/internal/chunkgraph"
	"github.com/aperbet56/webpack/internal/codegen"
	"github.com/aperbet56/webpack/internal/factory"
	"github.com/aperbet56/webpack/internal/graph"
	"github.com/aperbet56/webpack/internal/resolver"
	"github.com/aperbet56/webpack/pkg/dependency"
	"github.com/aperbet56/webpack/pkg/manifest"
)

const (
	defaultConcurrency = 4

	// dllRequestPrefix marks a request as a reference into a pre-built
	// bundle: "dll vendor" links against the manifest record named "vendor".
	dllRequestPrefix = "dll "
)

var (
	// ErrNoEntries is returned when a compilation is started without entry
	// points.
	ErrNoEntries = errors.New("no entry points configured")
	// ErrOutputWrite is the sentinel wrapped by every emission failure.
	ErrOutputWrite = errors.New("output write failed")
)

type (
	// EntryConfig declares one entry point. Declaration order of entries is
	// load-bearing: it drives chunk emission order and shared-chunk naming.
	EntryConfig struct {
		Name    string
		Request string
	}

	// DllReference declares linkage against one pre-built bundle: the
	// manifest record name and the nested requests the bundle serves.
	DllReference struct {
		Name     string
		Requests []string
	}

	// Options configures a Compiler. Context and Entries are required.
	Options struct {
		// Context is the base directory entry requests resolve against.
		Context string
		Entries []EntryConfig
		// Define is the constant-folding table applied to guarded edges.
		Define map[string]string
		// Manifests are DLL manifest files, loaded before discovery starts.
		Manifests []string
		// DllReferences route matching requests to DLL factories instead of
		// the filesystem.
		DllReferences []DllReference
		// OutputDir receives the emitted chunk files. Empty disables emission;
		// the stats still carry every rendered chunk.
		OutputDir string
		// DisableExportElision keeps every provided export in the output
		// instead of dropping what used-exports analysis proves unused.
		// Development builds set this; the chunk layout stays identical.
		DisableExportElision bool
		// Concurrency bounds simultaneous factory calls.
		Concurrency int
		Resolver    resolver.Resolver
		Parser      factory.Parser
		Logger      *log.Logger
	}

	// Asset is one emitted output file.
	Asset struct {
		File  string
		Chunk string
		Size  int
	}

	// BuildStats is the result of one compilation. Errors holds the
	// accumulated scoped failures; a non-empty Errors with rendered chunks is
	// the normal partial-failure outcome, not a contradiction.
	BuildStats struct {
		Chunks   []codegen.RenderedChunk
		Assets   []Asset
		Errors   []error
		Warnings []error
		Modules  int
		Duration time.Duration
	}

	// Compiler runs compilations. One Compiler may run many; each Compile
	// call owns its graph exclusively, but the factory's module cache lives
	// on the Compiler and persists across calls. A reused Compiler serves
	// modules as first read; construct a new Compiler to pick up source
	// edits.
	Compiler struct {
		opts    Options
		normal  *factory.NormalModuleFactory
		dlls    map[string]*factory.DllModuleFactory
		logger  *log.Logger
		workers int
	}
)

// New creates a Compiler from options, constructing the factory set up front
// so a misconfiguration surfaces before the first Compile call.
func New(opts Options) (*Compiler, error) {
	if len(opts.Entries) == 0 {
		return nil, ErrNoEntries
	}
	if opts.Resolver == nil {
		opts.Resolver = resolver.NewFileResolver()
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = defaultConcurrency
	}

	normal, err := factory.NewNormalModuleFactory(factory.NormalModuleFactoryOptions{
		Resolver: opts.Resolver,
		Parser:   opts.Parser,
		Logger:   opts.Logger,
	})
	if err != nil {
		return nil, err
	}

	dlls := make(map[string]*factory.DllModuleFactory, len(opts.DllReferences))
	for _, ref := range opts.DllReferences {
		requests := make([]dependency.Dependency, len(ref.Requests))
		for i, r := range ref.Requests {
			requests[i] = dependency.Of(r, dependency.KindStatic, opts.Context)
		}
		dlls[ref.Name] = factory.NewDllModuleFactory(ref.Name, requests)
	}

	return &Compiler{
		opts:    opts,
		normal:  normal,
		dlls:    dlls,
		logger:  opts.Logger,
		workers: opts.Concurrency,
	}, nil
}

// Compile runs one full compilation. The returned error is non-nil only for
// fatal faults (unreadable manifest, no usable entry); everything else lands
// in stats.Errors and stats.Warnings.
func (c *Compiler) Compile(ctx context.Context) (*BuildStats, error) {
	started := time.Now()
	stats := &BuildStats{}

	man, err := c.loadManifests()
	if err != nil {
		return nil, err
	}

	g, entries, discoveryErrs := c.discover(ctx)
	stats.Errors = append(stats.Errors, discoveryErrs...)
	stats.Modules = g.Len()

	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: every entry failed to resolve", ErrNoEntries)
	}

	if warn := g.DetectCycles(); warn != nil {
		c.logger.Warn("dependency cycle", "modules", strings.Join(warn.Cycle, " -> "))
		stats.Warnings = append(stats.Warnings, warn)
	}

	entryIdxs := make([]int, len(entries))
	for i, e := range entries {
		entryIdxs[i] = e.Module
	}
	if c.opts.DisableExportElision {
		// Seeding every module as an entry saturates all used-exports sets.
		entryIdxs = entryIdxs[:0]
		for i := 0; i < g.Len(); i++ {
			entryIdxs = append(entryIdxs, i)
		}
	}
	usage := graph.AnalyzeUsedExports(g, entryIdxs, c.opts.Define)
	cg := chunkgraph.Build(g, entries, c.opts.Define)
	c.logger.Debug("chunk layout", "chunks", cg.String())

	rendered, genErrs := codegen.New(man, c.opts.Define, c.logger).Generate(g, usage, cg)
	stats.Errors = append(stats.Errors, genErrs...)
	stats.Chunks = rendered

	if c.opts.OutputDir != "" {
		assets, emitErrs := c.emit(rendered)
		stats.Assets = assets
		stats.Errors = append(stats.Errors, emitErrs...)
	}

	stats.Duration = time.Since(started)
	return stats, nil
}

func (c *Compiler) loadManifests() (*manifest.Manifest, error) {
	if len(c.opts.Manifests) == 0 {
		return manifest.Empty(), nil
	}
	return manifest.LoadFiles(c.opts.Manifests...)
}

// emit writes every successfully rendered chunk as
// <chunk-name>.<shorthash>.js. Failed chunks are skipped; the failure is
// already on the stats.
func (c *Compiler) emit(rendered []codegen.RenderedChunk) ([]Asset, []error) {
	var (
		assets []Asset
		errs   []error
	)
	if err := os.MkdirAll(c.opts.OutputDir, 0755); err != nil {
		return nil, []error{fmt.Errorf("%w: create output directory: %w", ErrOutputWrite, err)}
	}

	for _, rc := range rendered {
		if rc.Failed {
			continue
		}
		file := fmt.Sprintf("%s.%s.js", sanitizeChunkName(rc.Name), rc.Hash[:8])
		path := filepath.Join(c.opts.OutputDir, file)
		if err := os.WriteFile(path, []byte(rc.Content), 0644); err != nil {
			errs = append(errs, fmt.Errorf("%w: chunk %s: %w", ErrOutputWrite, rc.Name, err))
			continue
		}
		c.logger.Info("emitted", "file", file, "bytes", len(rc.Content))
		assets = append(assets, Asset{File: file, Chunk: rc.Name, Size: len(rc.Content)})
	}
	return assets, errs
}

// sanitizeChunkName maps a chunk name onto the filename-safe alphabet.
func sanitizeChunkName(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.' || r == '-' || r == '~':
			return r
		default:
			return '_'
		}
	}, name)
}
