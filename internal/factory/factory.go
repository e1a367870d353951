// SPDX-License-Identifier: MPL-2.0

// Package factory implements the module-factory protocol: turning batches of
// dependency declarations into concrete module instances. Factories are
// asynchronous and partial-failure tolerant; a failed resolution is reported
// against its originating dependency, never thrown across the pipeline.
package factory

import (
	"context"
	"errors"
	"fmt"

	"github.com/aperbet56/webpack/pkg/dependency"
	"github.com/aperbet56/webpack/pkg/module"
)

var (
	// ErrResolution is the sentinel error wrapped by ResolutionError.
	ErrResolution = errors.New("resolution failed")
	// ErrEmptyBatch is returned when Create receives no dependencies.
	ErrEmptyBatch = errors.New("empty dependency batch")
)

type (
	// CreationContext supplies a factory call with the originating module's
	// directory and the compilation-wide options, both read-only.
	CreationContext struct {
		// Directory is the requesting module's directory, the base for
		// relative resolution.
		Directory string
		// Define is the constant-folding table, shared and never mutated.
		Define map[string]string
	}

	// ModuleFactory turns one dependency batch into one module. All
	// dependencies in a batch share the same request. Calls may complete in
	// any order relative to sibling calls; callers must re-establish
	// declaration order themselves (see SortByDeclaration).
	ModuleFactory interface {
		Create(ctx context.Context, cc CreationContext, deps []dependency.Dependency) (module.Module, error)

		// Hooks exposes the factory's extension points. Factories defining
		// none return NoHooks — an explicit frozen empty set, never a nil
		// sentinel, so dependents can poll uniformly across variants.
		Hooks() HookSet
	}

	// HookSet enumerates the extension points a factory exposes.
	HookSet interface {
		Names() []string
	}

	// NoHooks is the frozen empty extension-point set.
	NoHooks struct{}

	// ResolutionError is reported when a factory cannot map a request to a
	// module. It is scoped to the originating dependency; independent sibling
	// dependencies keep resolving.
	// It wraps ErrResolution for errors.Is() compatibility.
	ResolutionError struct {
		Dep   dependency.Dependency
		Cause error
	}
)

// Names implements HookSet. Always empty.
func (NoHooks) Names() []string { return nil }

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("cannot create module for %s: %v", e.Dep, e.Cause)
}

// Unwrap returns the concrete cause so it stays reachable through the
// error chain.
func (e *ResolutionError) Unwrap() error { return e.Cause }

// Is reports ErrResolution as a match for errors.Is().
func (e *ResolutionError) Is(target error) bool { return target == ErrResolution }
