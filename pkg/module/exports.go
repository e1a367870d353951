// SPDX-License-Identifier: MPL-2.0

package module

import (
	"slices"
	"strings"
)

type (
	// ExportsInfo is the statically known export surface of a module: either
	// an ordered name set, or "unknown" when the surface cannot be determined
	// (externally built DLL modules, opaque build results). The zero value is
	// an empty, known surface.
	ExportsInfo struct {
		unknown bool
		names   []string
	}
)

// UnknownExports returns the "cannot be statically determined" surface.
// Consumers must treat it conservatively (all exports potentially used).
func UnknownExports() ExportsInfo {
	return ExportsInfo{unknown: true}
}

// Exports returns a known surface with the given names, declaration order
// preserved and duplicates dropped.
func Exports(names ...string) ExportsInfo {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if !slices.Contains(out, n) {
			out = append(out, n)
		}
	}
	return ExportsInfo{names: out}
}

// Unknown reports whether the surface is statically undeterminable.
func (e ExportsInfo) Unknown() bool { return e.unknown }

// Names returns the known export names in declaration order. Nil when the
// surface is unknown.
func (e ExportsInfo) Names() []string {
	if e.unknown {
		return nil
	}
	return slices.Clone(e.names)
}

// Contains reports whether name is part of the surface. Unknown surfaces
// conservatively contain every name.
func (e ExportsInfo) Contains(name string) bool {
	if e.unknown {
		return true
	}
	return slices.Contains(e.names, name)
}

// Len returns the number of known names, 0 for unknown surfaces.
func (e ExportsInfo) Len() int {
	if e.unknown {
		return 0
	}
	return len(e.names)
}

// String renders the surface for logs and diagnostics.
func (e ExportsInfo) String() string {
	if e.unknown {
		return "(unknown)"
	}
	return "[" + strings.Join(e.names, " ") + "]"
}
