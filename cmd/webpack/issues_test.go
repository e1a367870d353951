// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/aperbet56/webpack/internal/codegen"
	"github.com/aperbet56/webpack/internal/compiler"
	"github.com/aperbet56/webpack/internal/factory"
	"github.com/aperbet56/webpack/internal/graph"
	"github.com/aperbet56/webpack/internal/issue"
	"github.com/aperbet56/webpack/pkg/dependency"
	"github.com/aperbet56/webpack/pkg/manifest"
	"github.com/aperbet56/webpack/pkg/module"
)

func TestIssueFor(t *testing.T) {
	t.Parallel()

	resolutionErr := &factory.ResolutionError{
		Dep:   dependency.Of("./missing", dependency.KindStatic, "/src"),
		Cause: fmt.Errorf("no such file"),
	}

	tests := []struct {
		name    string
		err     error
		want    issue.Id
		matched bool
	}{
		{
			name:    "unreadable manifest",
			err:     fmt.Errorf("%w: vendor.json", manifest.ErrUnreadableManifest),
			want:    issue.ManifestUnreadableId,
			matched: true,
		},
		{
			name:    "all entries failed",
			err:     fmt.Errorf("%w: every entry failed to resolve", compiler.ErrNoEntries),
			want:    issue.EntryNotFoundId,
			matched: true,
		},
		{
			name:    "resolution failure",
			err:     resolutionErr,
			want:    issue.ModuleResolutionFailedId,
			matched: true,
		},
		{
			name: "chunk failure",
			err: &codegen.CodeGenerationError{
				ModuleIdentity: "/src/a.js",
				Chunk:          "main",
				Cause:          fmt.Errorf("bad fragment"),
			},
			want:    issue.ChunkRenderFailedId,
			matched: true,
		},
		{
			// A mismatch wrapped in a chunk failure gets the more specific
			// mismatch card.
			name: "manifest mismatch inside chunk failure",
			err: &codegen.CodeGenerationError{
				ModuleIdentity: "/src/dll.js",
				Chunk:          "main",
				Cause:          fmt.Errorf("lookup: %w", module.ErrManifestMismatch),
			},
			want:    issue.ManifestMismatchId,
			matched: true,
		},
		{
			name:    "output write failure",
			err:     fmt.Errorf("%w: chunk main: disk full", compiler.ErrOutputWrite),
			want:    issue.OutputWriteFailedId,
			matched: true,
		},
		{
			name:    "dependency cycle warning",
			err:     &graph.CircularDependencyWarning{Cycle: []string{"/a.js", "/b.js"}},
			want:    issue.DependencyCycleId,
			matched: true,
		},
		{
			name:    "unclassified error",
			err:     fmt.Errorf("something else"),
			matched: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			id, ok := issueFor(tt.err)
			if ok != tt.matched {
				t.Fatalf("issueFor() matched = %v, want %v", ok, tt.matched)
			}
			if ok && id != tt.want {
				t.Errorf("issueFor() = %v, want %v", id, tt.want)
			}
		})
	}
}

func TestRenderIssuesDeduplicates(t *testing.T) {
	t.Parallel()

	errs := []error{
		&factory.ResolutionError{
			Dep:   dependency.Of("./a", dependency.KindStatic, "/src"),
			Cause: fmt.Errorf("no such file"),
		},
		&factory.ResolutionError{
			Dep:   dependency.Of("./b", dependency.KindStatic, "/src"),
			Cause: fmt.Errorf("no such file"),
		},
		fmt.Errorf("lookup: %w", module.ErrManifestMismatch),
		fmt.Errorf("unrelated"),
	}

	var buf bytes.Buffer
	renderIssues(&buf, errs)
	out := buf.String()

	if got := strings.Count(out, "Module resolution failed"); got != 1 {
		t.Errorf("resolution card rendered %d times, want 1", got)
	}
	if !strings.Contains(out, "DLL manifest mismatch") {
		t.Error("mismatch card missing from output")
	}
}
