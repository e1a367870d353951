// SPDX-License-Identifier: MPL-2.0

// Package codegen renders modules into runtime fragments conditioned on the
// used-exports analysis, and computes the stable content hash of each chunk.
// The guarantee carried here: identical module graph, used-exports assignment
// and id assignment produce byte-identical output and identical hashes. No
// wall-clock time, no memory addresses, no iteration over unordered
// containers feeds the output.
package codegen

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/aperbet56/webpack/internal/chunkgraph"
	"github.com/aperbet56/webpack/internal/graph"
	"github.com/aperbet56/webpack/pkg/dependency"
	"github.com/aperbet56/webpack/pkg/manifest"
	"github.com/aperbet56/webpack/pkg/module"
)

// ErrCodeGeneration is the sentinel error wrapped by CodeGenerationError.
var ErrCodeGeneration = errors.New("code generation failed")

type (
	// CodeGenerationError is reported when a module cannot be rendered. It is
	// scoped to the chunk containing the module; sibling chunks still render.
	// It wraps ErrCodeGeneration for errors.Is() compatibility; the concrete
	// cause (e.g. a ManifestMismatchError) stays reachable through the chain.
	CodeGenerationError struct {
		ModuleIdentity string
		Chunk          string
		Cause          error
	}

	// RenderedChunk is one output unit: content, content hash, and the
	// failure flag when one of its modules could not render.
	RenderedChunk struct {
		ID      int
		Name    string
		Entry   bool
		Hash    string
		Content string
		Failed  bool
	}

	// Generator renders all chunks of one compilation.
	Generator struct {
		manifest *manifest.Manifest
		define   map[string]string
		logger   *log.Logger
	}
)

func (e *CodeGenerationError) Error() string {
	return fmt.Sprintf("cannot render module %s in chunk %s: %v", e.ModuleIdentity, e.Chunk, e.Cause)
}

// Unwrap returns the underlying cause so both ErrCodeGeneration and the
// concrete failure match through errors.Is/As.
func (e *CodeGenerationError) Unwrap() error { return e.Cause }

// Is reports whether target is ErrCodeGeneration, keeping the sentinel
// matchable alongside the unwrapped cause chain.
func (e *CodeGenerationError) Is(target error) bool { return target == ErrCodeGeneration }

// New creates a Generator. A nil manifest is replaced by an empty one so DLL
// lookups miss instead of panicking.
func New(man *manifest.Manifest, define map[string]string, logger *log.Logger) *Generator {
	if man == nil {
		man = manifest.Empty()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Generator{manifest: man, define: define, logger: logger}
}

// Generate renders every chunk. Failures are accumulated and returned
// alongside the rendered set; a failing module marks its chunk failed but
// never stops sibling chunks.
func (g *Generator) Generate(mg *graph.Graph, usage *graph.Usage, cg *chunkgraph.ChunkGraph) ([]RenderedChunk, []error) {
	var errs []error
	rendered := make([]RenderedChunk, 0, len(cg.Chunks))

	for _, chunk := range cg.Chunks {
		rc, err := g.renderChunk(mg, usage, cg, chunk)
		if err != nil {
			errs = append(errs, err)
		}
		rendered = append(rendered, rc)
	}
	return rendered, errs
}

func (g *Generator) renderChunk(mg *graph.Graph, usage *graph.Usage, cg *chunkgraph.ChunkGraph, chunk chunkgraph.Chunk) (RenderedChunk, error) {
	rc := RenderedChunk{ID: chunk.ID, Name: chunk.Name, Entry: chunk.Entry}

	hasher := sha256.New()
	fmt.Fprintf(hasher, "chunk %s entry=%t\n", chunk.Name, chunk.Entry)

	var content strings.Builder
	fmt.Fprintf(&content, "/* chunk %s */\n", chunk.Name)

	for _, idx := range chunk.Modules {
		m := mg.ModuleAt(idx)
		id, ok := cg.ModuleID(idx)
		if !ok {
			// Unassigned modules never reach a chunk's list; defensive only.
			continue
		}

		fragment, err := m.Render(module.RenderInputs{
			ID:          id,
			UsedExports: usage.UsedNames(idx),
			Edges:       g.liveEdges(mg, cg, idx),
			Manifest:    g.manifest,
		})
		if err != nil {
			rc.Failed = true
			g.logger.Error("chunk render failed", "chunk", chunk.Name, "module", m.Identity(), "err", err)
			return rc, &CodeGenerationError{ModuleIdentity: m.Identity(), Chunk: chunk.Name, Cause: err}
		}

		fmt.Fprintf(hasher, "module %d %s\n", id, m.Identity())
		hasher.Write([]byte(fragment))
		content.WriteString(fragment)
	}

	rc.Hash = hex.EncodeToString(hasher.Sum(nil))
	rc.Content = content.String()
	return rc, nil
}

// liveEdges maps a module's wired graph edges to render-time edges: live
// under the define table, target assigned an id, declaration order preserved.
func (g *Generator) liveEdges(mg *graph.Graph, cg *chunkgraph.ChunkGraph, idx int) []module.ResolvedEdge {
	var out []module.ResolvedEdge
	for _, e := range mg.EdgesAt(idx) {
		if !graph.EdgeLive(e, g.define) {
			continue
		}
		id, ok := cg.ModuleID(e.To)
		if !ok {
			continue
		}
		out = append(out, module.ResolvedEdge{
			Request:  e.Dep.Request(),
			ModuleID: id,
			Async:    e.Dep.Kind() == dependency.KindAsync,
		})
	}
	return out
}
