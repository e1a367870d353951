// SPDX-License-Identifier: MPL-2.0

package module

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aperbet56/webpack/pkg/dependency"
)

// ErrInvalidIdentity is returned when a module identity is empty.
var ErrInvalidIdentity = errors.New("invalid module identity")

type (
	// NormalModule is a module produced from a source file by the resolving
	// factory. Its body is the build result handed over by the loader
	// pipeline, opaque to the core.
	NormalModule struct {
		identity string
		provided ExportsInfo
		deps     []dependency.Dependency
		body     string
	}
)

// NewNormalModule creates a NormalModule. The identity must be non-empty and
// stable across compilations of the same input (typically the resolved
// absolute path).
func NewNormalModule(identity string, provided ExportsInfo, deps []dependency.Dependency, body string) (*NormalModule, error) {
	if strings.TrimSpace(identity) == "" {
		return nil, fmt.Errorf("%w: identity must not be empty", ErrInvalidIdentity)
	}
	return &NormalModule{
		identity: identity,
		provided: provided,
		deps:     append([]dependency.Dependency(nil), deps...),
		body:     body,
	}, nil
}

// Identity implements Module.
func (m *NormalModule) Identity() string { return m.identity }

// ProvidedExports implements Module.
func (m *NormalModule) ProvidedExports() ExportsInfo { return m.provided }

// Dependencies implements Module.
func (m *NormalModule) Dependencies() []dependency.Dependency {
	return append([]dependency.Dependency(nil), m.deps...)
}

// Render implements Module. The fragment declares the module under its
// stable id, requires its live synchronous edges in declaration order, emits
// the opaque body, then assigns only the used exports.
func (m *NormalModule) Render(in RenderInputs) (string, error) {
	var b strings.Builder

	fmt.Fprintf(&b, "__webpack_modules__[%d] = /* %s */ function(__require__, __exports__) {\n", in.ID, m.identity)

	for i, e := range in.Edges {
		if e.Async {
			fmt.Fprintf(&b, "var __dep%d__ = __webpack_load__(%d); /* %s */\n", i, e.ModuleID, e.Request)
			continue
		}
		fmt.Fprintf(&b, "var __dep%d__ = __require__(%d); /* %s */\n", i, e.ModuleID, e.Request)
	}

	if body := strings.TrimRight(m.body, "\n"); body != "" {
		b.WriteString(body)
		b.WriteString("\n")
	}

	switch {
	case m.provided.Unknown():
		// Surface undeterminable: expose whatever the body defined.
		b.WriteString("__webpack_export_all__(__exports__);\n")
	case in.UsedExports == nil:
		for _, name := range m.provided.Names() {
			fmt.Fprintf(&b, "__exports__.%s = %s;\n", name, name)
		}
	default:
		for _, name := range m.provided.Names() {
			if contains(in.UsedExports, name) {
				fmt.Fprintf(&b, "__exports__.%s = %s;\n", name, name)
			}
		}
	}

	b.WriteString("};\n")
	return b.String(), nil
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
