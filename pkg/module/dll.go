// SPDX-License-Identifier: MPL-2.0

package module

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aperbet56/webpack/pkg/dependency"
)

// ErrManifestMismatch is the sentinel error wrapped by ManifestMismatchError.
var ErrManifestMismatch = errors.New("manifest mismatch")

type (
	// DllModule is a module with no physical source: it references a
	// pre-built bundle by name and resolves its export surface against the
	// externally supplied manifest at code-generation time. It is created
	// once per originating dependency, never rebuilt, and stays valid across
	// manifest reloads because the lookup is deferred.
	DllModule struct {
		name    string
		context string
		deps    []dependency.Dependency
	}

	// ManifestMismatchError is returned at code-generation time when the DLL
	// name, or one of its requests, is absent from the manifest. It is scoped
	// to the module; sibling chunks still render.
	// It wraps ErrManifestMismatch for errors.Is() compatibility.
	ManifestMismatchError struct {
		Name    string
		Request string
	}
)

func (e *ManifestMismatchError) Error() string {
	if e.Request != "" {
		return fmt.Sprintf("manifest for %q has no entry for request %q", e.Name, e.Request)
	}
	return fmt.Sprintf("manifest has no record named %q", e.Name)
}

// Unwrap returns ErrManifestMismatch for errors.Is() compatibility.
func (e *ManifestMismatchError) Unwrap() error { return ErrManifestMismatch }

// NewDllModule creates a DllModule from the originating dependency batch:
// the declaration's context, its nested dependency sequence, and the bundle
// name to link against. Pure data construction; it cannot fail beyond an
// empty name, and no manifest access happens here.
func NewDllModule(context, name string, deps []dependency.Dependency) (*DllModule, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: dll name must not be empty", ErrInvalidIdentity)
	}
	return &DllModule{
		name:    name,
		context: context,
		deps:    append([]dependency.Dependency(nil), deps...),
	}, nil
}

// Name returns the linked bundle name.
func (m *DllModule) Name() string { return m.name }

// Identity implements Module. DLL identities are namespaced so they can never
// collide with resolved file paths.
func (m *DllModule) Identity() string { return "dll ref " + m.name }

// ProvidedExports implements Module. The surface lives in the manifest and
// is opaque until code generation, so it is always unknown here.
func (m *DllModule) ProvidedExports() ExportsInfo { return UnknownExports() }

// Dependencies implements Module. The nested requests resolve inside the
// pre-built bundle, not through the module graph, so the graph sees no
// outgoing edges.
func (m *DllModule) Dependencies() []dependency.Dependency { return nil }

// Requests returns the nested dependency sequence copied from the
// originating declaration, in declaration order.
func (m *DllModule) Requests() []dependency.Dependency {
	return append([]dependency.Dependency(nil), m.deps...)
}

// Render implements Module. This is where manifest resolution finally
// happens: the record is looked up by exact name, then each nested request by
// exact string, and the fragment exposes exactly the exports the manifest
// recorded. A miss at either level is a ManifestMismatchError.
func (m *DllModule) Render(in RenderInputs) (string, error) {
	rec, ok := in.Manifest.Lookup(m.name)
	if !ok {
		return "", &ManifestMismatchError{Name: m.name}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "__webpack_modules__[%d] = /* %s */ function(__require__, __exports__) {\n", in.ID, m.Identity())
	fmt.Fprintf(&b, "var __dll__ = __webpack_dll__(%q);\n", m.name)

	for _, dep := range m.deps {
		entry, ok := rec.Entry(dep.Request())
		if !ok {
			return "", &ManifestMismatchError{Name: m.name, Request: dep.Request()}
		}
		for _, name := range entry.Exports {
			fmt.Fprintf(&b, "__exports__.%s = __dll__(%d).%s;\n", name, entry.ID, name)
		}
	}

	b.WriteString("};\n")
	return b.String(), nil
}
