// SPDX-License-Identifier: MPL-2.0

package factory

import (
	"context"

	"github.com/aperbet56/webpack/pkg/dependency"
	"github.com/aperbet56/webpack/pkg/module"
)

type (
	// DllModuleFactory builds DllModules for one pre-built bundle: pure data
	// construction from the originating declaration, no filesystem access, no
	// I/O. Creation therefore never fails; resolution against the manifest is
	// deferred to code generation, which keeps the module reusable across
	// manifest reloads.
	DllModuleFactory struct {
		name     string
		requests []dependency.Dependency
	}
)

// NewDllModuleFactory creates a factory linking against the named bundle,
// copying the nested request sequence from the originating declaration.
func NewDllModuleFactory(name string, requests []dependency.Dependency) *DllModuleFactory {
	return &DllModuleFactory{
		name:     name,
		requests: append([]dependency.Dependency(nil), requests...),
	}
}

// Create implements ModuleFactory. It completes synchronously relative to
// resolving factories, but callers must not rely on observing that ordering.
func (f *DllModuleFactory) Create(_ context.Context, _ CreationContext, deps []dependency.Dependency) (module.Module, error) {
	if len(deps) == 0 {
		return nil, ErrEmptyBatch
	}
	return module.NewDllModule(deps[0].Context(), f.name, f.requests)
}

// Hooks implements ModuleFactory.
func (f *DllModuleFactory) Hooks() HookSet { return NoHooks{} }
