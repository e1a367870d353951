// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/aperbet56/webpack/internal/codegen"
	"github.com/aperbet56/webpack/internal/compiler"
	"github.com/aperbet56/webpack/internal/factory"
	"github.com/aperbet56/webpack/internal/graph"
	"github.com/aperbet56/webpack/internal/issue"
	"github.com/aperbet56/webpack/pkg/manifest"
	"github.com/aperbet56/webpack/pkg/module"
)

// issueStyle is the glamour style for rendered guidance cards.
const issueStyle = "dark"

// issueFor maps a build error onto its guidance card. The most specific
// match wins: a manifest mismatch inside a failed chunk gets the mismatch
// card, not the generic chunk one.
func issueFor(err error) (issue.Id, bool) {
	switch {
	case errors.Is(err, manifest.ErrUnreadableManifest):
		return issue.ManifestUnreadableId, true
	case errors.Is(err, compiler.ErrNoEntries):
		return issue.EntryNotFoundId, true
	case errors.Is(err, module.ErrManifestMismatch):
		return issue.ManifestMismatchId, true
	case errors.Is(err, codegen.ErrCodeGeneration):
		return issue.ChunkRenderFailedId, true
	case errors.Is(err, factory.ErrResolution):
		return issue.ModuleResolutionFailedId, true
	case errors.Is(err, compiler.ErrOutputWrite):
		return issue.OutputWriteFailedId, true
	}
	var cycle *graph.CircularDependencyWarning
	if errors.As(err, &cycle) {
		return issue.DependencyCycleId, true
	}
	return 0, false
}

// renderIssue writes one guidance card. Rendering failures are swallowed;
// the plain error text has already been printed.
func renderIssue(w io.Writer, id issue.Id) {
	rendered, err := issue.Get(id).Render(issueStyle)
	if err != nil {
		return
	}
	fmt.Fprint(w, rendered)
}

// renderIssues writes the guidance card for each distinct issue the given
// errors map to, in first-occurrence order.
func renderIssues(w io.Writer, errs []error) {
	seen := make(map[issue.Id]bool)
	for _, err := range errs {
		id, ok := issueFor(err)
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		renderIssue(w, id)
	}
}
