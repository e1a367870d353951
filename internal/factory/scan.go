// SPDX-License-Identifier: MPL-2.0

package factory

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/aperbet56/webpack/pkg/dependency"
	"github.com/aperbet56/webpack/pkg/module"
)

type (
	// BuildResult is what the loader boundary hands back for one source file:
	// the statically determined export surface, the dependency declarations
	// in source order, and the runtime body, opaque to the core.
	BuildResult struct {
		Provided     module.ExportsInfo
		Dependencies []dependency.Dependency
		Body         string
	}

	// Parser is the loader/transform collaborator contract. The core never
	// parses source text itself; SourceScanner is the reference
	// implementation shipped so the pipeline runs end to end.
	Parser interface {
		Parse(path string, source []byte) (BuildResult, error)
	}

	// SourceScanner recognizes the declaration forms the compilation core
	// reasons about: named and namespace imports, synchronous requires,
	// async import() split points, single-line guarded requires, and
	// export declarations. Everything else passes through as body text.
	SourceScanner struct{}
)

var (
	reNamedImport = regexp.MustCompile(`^import\s*\{([^}]*)\}\s*from\s*["'](.+?)["'];?\s*$`)
	reNsImport    = regexp.MustCompile(`^import\s*\*\s*as\s+\w+\s+from\s*["'](.+?)["'];?\s*$`)
	reRequire     = regexp.MustCompile(`^(?:var\s+\w+\s*=\s*)?require\(["'](.+?)["']\);?\s*$`)
	reAsyncImport = regexp.MustCompile(`^import\(["'](.+?)["']\);?\s*$`)
	reGuarded     = regexp.MustCompile(`^if\s*\(\s*(\w+)\s*===\s*["'](.+?)["']\s*\)\s*\{\s*require\(["'](.+?)["']\);?\s*\}\s*$`)
	reExportDecl  = regexp.MustCompile(`^export\s+((?:var|let|const)\s+(\w+)|function\s+(\w+))`)
)

// NewSourceScanner creates the reference Parser.
func NewSourceScanner() *SourceScanner { return &SourceScanner{} }

// Parse implements Parser. Dependency declaration order is source line
// order; that ordering is load-bearing for every deterministic step after
// the factory.
func (s *SourceScanner) Parse(path string, source []byte) (BuildResult, error) {
	dir := filepath.Dir(path)

	var (
		deps     []dependency.Dependency
		exports  []string
		body     []string
	)

	for _, raw := range strings.Split(string(source), "\n") {
		line := strings.TrimSpace(raw)

		switch {
		case line == "" || strings.HasPrefix(line, "//"):
			body = append(body, raw)

		case reGuarded.MatchString(line):
			m := reGuarded.FindStringSubmatch(line)
			deps = append(deps, dependency.Of(m[3], dependency.KindStatic, dir).WithGuard(m[1], m[2]))

		case reNamedImport.MatchString(line):
			m := reNamedImport.FindStringSubmatch(line)
			var names []string
			for _, n := range strings.Split(m[1], ",") {
				if n = strings.TrimSpace(n); n != "" {
					names = append(names, n)
				}
			}
			deps = append(deps, dependency.Of(m[2], dependency.KindStatic, dir).WithImports(names...))

		case reNsImport.MatchString(line):
			m := reNsImport.FindStringSubmatch(line)
			deps = append(deps, dependency.Of(m[1], dependency.KindStatic, dir))

		case reAsyncImport.MatchString(line):
			m := reAsyncImport.FindStringSubmatch(line)
			deps = append(deps, dependency.Of(m[1], dependency.KindAsync, dir))

		case reRequire.MatchString(line):
			m := reRequire.FindStringSubmatch(line)
			deps = append(deps, dependency.Of(m[1], dependency.KindStatic, dir))

		case reExportDecl.MatchString(line):
			m := reExportDecl.FindStringSubmatch(line)
			name := m[2]
			if name == "" {
				name = m[3]
			}
			exports = append(exports, name)
			body = append(body, strings.TrimPrefix(line, "export "))

		default:
			body = append(body, raw)
		}
	}

	return BuildResult{
		Provided:     module.Exports(exports...),
		Dependencies: deps,
		Body:         strings.TrimRight(strings.Join(body, "\n"), "\n"),
	}, nil
}
