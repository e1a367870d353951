// SPDX-License-Identifier: MPL-2.0

// Package dependency defines the immutable dependency record: a declared
// reference from one module to a request string, plus the resolution hints
// the rest of the pipeline keys on (split points, weak resolution,
// side-effect freedom). A Dependency carries no logic and is owned by the
// module that declared it.
package dependency

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

const (
	// KindStatic is a synchronous reference (require/import). The target is
	// pulled into the requesting module's chunk.
	KindStatic Kind = "static"
	// KindAsync is an asynchronous split-point reference (dynamic import).
	// The target opens a new chunk instead of extending the current one.
	KindAsync Kind = "async"
	// KindWeak is a reference whose resolution failure is tolerated: the edge
	// is dropped and recorded, the compilation continues.
	KindWeak Kind = "weak"
)

var (
	// ErrInvalidKind is the sentinel error wrapped by InvalidKindError.
	ErrInvalidKind = errors.New("invalid dependency kind")
	// ErrInvalidRequest is returned when a dependency request is empty or
	// whitespace-only.
	ErrInvalidRequest = errors.New("invalid dependency request")
)

type (
	// Kind classifies how a dependency edge participates in chunk building
	// and error handling.
	Kind string

	// InvalidKindError is returned when a Kind value is not recognized.
	// It wraps ErrInvalidKind for errors.Is() compatibility.
	InvalidKindError struct {
		Value Kind
	}

	// Guard is a compile-time condition attached to a dependency: the edge is
	// only live when the free identifier folds to the given literal. The
	// constant-folding table is supplied externally at analysis time.
	Guard struct {
		// Identifier is the free identifier name tested by the guard.
		Identifier string
		// Literal is the string literal the identifier is compared against.
		Literal string
	}

	// Dependency is an immutable reference from one module to a request
	// string. Fields are unexported; construct with New and derive variants
	// with the With* methods, which return copies.
	Dependency struct {
		request        string
		kind           Kind
		context        string
		imports        []string
		guard          *Guard
		sideEffectFree bool
	}
)

// IsValid returns whether the Kind is one of the recognized values.
func (k Kind) IsValid() (bool, []error) {
	switch k {
	case KindStatic, KindAsync, KindWeak:
		return true, nil
	}
	return false, []error{&InvalidKindError{Value: k}}
}

func (e *InvalidKindError) Error() string {
	return fmt.Sprintf("invalid dependency kind %q (valid: %s, %s, %s)",
		e.Value, KindStatic, KindAsync, KindWeak)
}

// Unwrap returns ErrInvalidKind for errors.Is() compatibility.
func (e *InvalidKindError) Unwrap() error { return ErrInvalidKind }

// New creates a validated Dependency. The context is the directory of the
// requesting module, used by resolvers for relative requests.
func New(request string, kind Kind, context string) (Dependency, error) {
	if strings.TrimSpace(request) == "" {
		return Dependency{}, fmt.Errorf("%w: request must not be empty", ErrInvalidRequest)
	}
	if valid, errs := kind.IsValid(); !valid {
		return Dependency{}, errs[0]
	}
	return Dependency{request: request, kind: kind, context: context}, nil
}

// Of creates a Dependency without validation. Prefer New in production code;
// this variant is for test fixtures.
func Of(request string, kind Kind, context string) Dependency {
	return Dependency{request: request, kind: kind, context: context}
}

// Request returns the declared request string.
func (d Dependency) Request() string { return d.request }

// Kind returns the dependency kind.
func (d Dependency) Kind() Kind { return d.kind }

// Context returns the directory the request resolves relative to.
func (d Dependency) Context() string { return d.context }

// Imports returns the named exports this dependency consumes from its
// target. A nil result means the whole namespace is consumed.
func (d Dependency) Imports() []string { return slices.Clone(d.imports) }

// Guard returns the compile-time guard, or nil when the edge is
// unconditional.
func (d Dependency) Guard() *Guard {
	if d.guard == nil {
		return nil
	}
	g := *d.guard
	return &g
}

// SideEffectFree reports whether the target may be dropped entirely when none
// of its exports are used.
func (d Dependency) SideEffectFree() bool { return d.sideEffectFree }

// WithImports returns a copy consuming only the given named exports.
func (d Dependency) WithImports(names ...string) Dependency {
	d.imports = slices.Clone(names)
	return d
}

// WithGuard returns a copy guarded by identifier == literal.
func (d Dependency) WithGuard(identifier, literal string) Dependency {
	d.guard = &Guard{Identifier: identifier, Literal: literal}
	return d
}

// WithSideEffectFree returns a copy marked side-effect-free.
func (d Dependency) WithSideEffectFree() Dependency {
	d.sideEffectFree = true
	return d
}

// String returns a compact human-readable form, used in logs and error
// messages.
func (d Dependency) String() string {
	var b strings.Builder
	b.WriteString(string(d.kind))
	b.WriteString(" ")
	b.WriteString(d.request)
	if d.guard != nil {
		fmt.Fprintf(&b, " [if %s == %q]", d.guard.Identifier, d.guard.Literal)
	}
	return b.String()
}
