// SPDX-License-Identifier: MPL-2.0

package factory

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/aperbet56/webpack/internal/resolver"
	"github.com/aperbet56/webpack/pkg/dependency"
	"github.com/aperbet56/webpack/pkg/module"
)

const defaultCacheSize = 1024

type (
	// NormalModuleFactory resolves requests against the filesystem through
	// the Resolver contract, feeds the source through the loader-boundary
	// Parser, and caches built modules by resolved path. The cache is owned
	// by whoever owns the factory — one compilation context, no process-wide
	// singletons.
	NormalModuleFactory struct {
		resolver resolver.Resolver
		parser   Parser
		cache    *lru.Cache[string, module.Module]
		logger   *log.Logger
	}

	// NormalModuleFactoryOptions configures construction. Resolver is
	// required; the rest defaults.
	NormalModuleFactoryOptions struct {
		Resolver  resolver.Resolver
		Parser    Parser
		CacheSize int
		Logger    *log.Logger
	}
)

// NewNormalModuleFactory creates a NormalModuleFactory.
func NewNormalModuleFactory(opts NormalModuleFactoryOptions) (*NormalModuleFactory, error) {
	if opts.Resolver == nil {
		return nil, fmt.Errorf("resolver must not be nil")
	}
	if opts.Parser == nil {
		opts.Parser = NewSourceScanner()
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = defaultCacheSize
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}

	cache, err := lru.New[string, module.Module](opts.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create module cache: %w", err)
	}
	return &NormalModuleFactory{
		resolver: opts.Resolver,
		parser:   opts.Parser,
		cache:    cache,
		logger:   opts.Logger,
	}, nil
}

// Create implements ModuleFactory. The whole batch shares one request, so one
// resolution serves every declaration in it. Failures come back as
// ResolutionError scoped to the batch's first dependency.
func (f *NormalModuleFactory) Create(ctx context.Context, cc CreationContext, deps []dependency.Dependency) (module.Module, error) {
	if len(deps) == 0 {
		return nil, ErrEmptyBatch
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("factory call canceled: %w", err)
	}

	head := deps[0]
	dir := head.Context()
	if dir == "" {
		dir = cc.Directory
	}

	path, err := f.resolver.Resolve(dir, head.Request())
	if err != nil {
		return nil, &ResolutionError{Dep: head, Cause: err}
	}

	if cached, ok := f.cache.Get(path); ok {
		f.logger.Debug("module cache hit", "path", path)
		return cached, nil
	}

	source, err := os.ReadFile(path)
	if err != nil {
		return nil, &ResolutionError{Dep: head, Cause: err}
	}

	build, err := f.parser.Parse(path, source)
	if err != nil {
		return nil, &ResolutionError{Dep: head, Cause: err}
	}

	m, err := module.NewNormalModule(path, build.Provided, build.Dependencies, build.Body)
	if err != nil {
		return nil, &ResolutionError{Dep: head, Cause: err}
	}

	f.cache.Add(path, m)
	f.logger.Debug("module built", "path", path, "exports", build.Provided.String(), "deps", len(build.Dependencies))
	return m, nil
}

// Hooks implements ModuleFactory.
func (f *NormalModuleFactory) Hooks() HookSet { return NoHooks{} }
