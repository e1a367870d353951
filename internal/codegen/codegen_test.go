// SPDX-License-Identifier: MPL-2.0

package codegen_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/aperbet56/webpack/internal/chunkgraph"
	"github.com/aperbet56/webpack/internal/codegen"
	"github.com/aperbet56/webpack/internal/graph"
	"github.com/aperbet56/webpack/pkg/dependency"
	"github.com/aperbet56/webpack/pkg/manifest"
	"github.com/aperbet56/webpack/pkg/module"
)

func mod(t *testing.T, identity string, exports module.ExportsInfo, deps []dependency.Dependency, body string) *module.NormalModule {
	t.Helper()
	m, err := module.NewNormalModule(identity, exports, deps, body)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

// buildFixture wires a two-module graph: entry requires util and imports only
// "a" from it, while util also provides "b".
func buildFixture(t *testing.T) (*graph.Graph, *graph.Usage, *chunkgraph.ChunkGraph) {
	t.Helper()

	g := graph.New()
	dep := dependency.Of("./util", dependency.KindStatic, "/src").WithImports("a")
	entry := g.Add(mod(t, "/src/entry.js", module.Exports(), []dependency.Dependency{dep}, "run();"))
	g.Add(mod(t, "/src/util.js", module.Exports("a", "b"), nil, "var a = 1; var b = 2;"))
	if err := g.Connect("/src/entry.js", dep, "/src/util.js"); err != nil {
		t.Fatal(err)
	}

	usage := graph.AnalyzeUsedExports(g, []int{entry}, nil)
	cg := chunkgraph.Build(g, []chunkgraph.Entry{{Name: "main", Module: entry}}, nil)
	return g, usage, cg
}

func TestGenerate_UsedExportsOnly(t *testing.T) {
	t.Parallel()

	g, usage, cg := buildFixture(t)
	rendered, errs := codegen.New(nil, nil, nil).Generate(g, usage, cg)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(rendered) != 1 {
		t.Fatalf("rendered %d chunks, want 1", len(rendered))
	}

	content := rendered[0].Content
	if !strings.Contains(content, "__exports__.a = a;") {
		t.Error("used export a must be assigned")
	}
	if strings.Contains(content, "__exports__.b") {
		t.Error("unused export b must be dropped")
	}
	if !strings.Contains(content, "__require__(") {
		t.Error("live static edge must render a require")
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	t.Parallel()

	g, usage, cg := buildFixture(t)
	gen := codegen.New(nil, nil, nil)

	first, _ := gen.Generate(g, usage, cg)
	second, _ := gen.Generate(g, usage, cg)

	for i := range first {
		if first[i].Content != second[i].Content {
			t.Errorf("chunk %s content differs across runs", first[i].Name)
		}
		if first[i].Hash != second[i].Hash {
			t.Errorf("chunk %s hash differs across runs", first[i].Name)
		}
		if len(first[i].Hash) != 64 {
			t.Errorf("chunk %s hash is not a sha256 hex digest: %q", first[i].Name, first[i].Hash)
		}
	}
}

func TestGenerate_HashTracksContent(t *testing.T) {
	t.Parallel()

	build := func(body string) codegen.RenderedChunk {
		g := graph.New()
		entry := g.Add(mod(t, "/src/entry.js", module.Exports(), nil, body))
		usage := graph.AnalyzeUsedExports(g, []int{entry}, nil)
		cg := chunkgraph.Build(g, []chunkgraph.Entry{{Name: "main", Module: entry}}, nil)
		rendered, _ := codegen.New(nil, nil, nil).Generate(g, usage, cg)
		return rendered[0]
	}

	if build("run();").Hash == build("halt();").Hash {
		t.Error("different module bodies must produce different chunk hashes")
	}
}

func TestGenerate_ManifestMismatchScopedToChunk(t *testing.T) {
	t.Parallel()

	g := graph.New()
	ok := g.Add(mod(t, "/src/ok.js", module.Exports(), nil, "fine();"))
	dll, err := module.NewDllModule("/src", "vendor",
		[]dependency.Dependency{dependency.Of("./a.js", dependency.KindStatic, "/src")})
	if err != nil {
		t.Fatal(err)
	}
	bad := g.Add(dll)

	entries := []int{ok, bad}
	usage := graph.AnalyzeUsedExports(g, entries, nil)
	cg := chunkgraph.Build(g, []chunkgraph.Entry{
		{Name: "good", Module: ok},
		{Name: "broken", Module: bad},
	}, nil)

	// Empty manifest: the DLL record is missing, so the broken chunk fails.
	rendered, errs := codegen.New(manifest.Empty(), nil, nil).Generate(g, usage, cg)

	if len(errs) != 1 {
		t.Fatalf("errors = %v, want exactly one", errs)
	}
	var cgErr *codegen.CodeGenerationError
	if !errors.As(errs[0], &cgErr) {
		t.Fatalf("expected *CodeGenerationError, got %T", errs[0])
	}
	if cgErr.Chunk != "broken" {
		t.Errorf("error scoped to chunk %q, want broken", cgErr.Chunk)
	}
	if !errors.Is(errs[0], codegen.ErrCodeGeneration) {
		t.Error("error does not match ErrCodeGeneration")
	}
	if !errors.Is(errs[0], module.ErrManifestMismatch) {
		t.Error("manifest cause must stay reachable through the chain")
	}

	if len(rendered) != 2 {
		t.Fatalf("rendered = %d chunks, want 2", len(rendered))
	}
	for _, rc := range rendered {
		switch rc.Name {
		case "good":
			if rc.Failed || rc.Content == "" {
				t.Errorf("sibling chunk must still render: %+v", rc)
			}
		case "broken":
			if !rc.Failed {
				t.Error("failing chunk must be marked failed")
			}
		}
	}
}

func TestGenerate_DllAgainstManifest(t *testing.T) {
	t.Parallel()

	man, err := manifest.New(manifest.Record{
		Name: "vendor",
		Content: map[string]manifest.Entry{
			"./a.js": {ID: 7, Exports: []string{"alpha", "beta"}},
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	g := graph.New()
	dll, err := module.NewDllModule("/src", "vendor",
		[]dependency.Dependency{dependency.Of("./a.js", dependency.KindStatic, "/src")})
	if err != nil {
		t.Fatal(err)
	}
	entry := g.Add(dll)
	usage := graph.AnalyzeUsedExports(g, []int{entry}, nil)
	cg := chunkgraph.Build(g, []chunkgraph.Entry{{Name: "vendor", Module: entry}}, nil)

	rendered, errs := codegen.New(man, nil, nil).Generate(g, usage, cg)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	content := rendered[0].Content
	if !strings.Contains(content, "__exports__.alpha = __dll__(7).alpha;") {
		t.Errorf("missing manifest-resolved export, content:\n%s", content)
	}
}

func TestGenerate_GuardedEdgeElided(t *testing.T) {
	t.Parallel()

	g := graph.New()
	dep := dependency.Of("./mobile", dependency.KindStatic, "/src").WithGuard("ENV", "mobile")
	entry := g.Add(mod(t, "/src/entry.js", module.Exports(), []dependency.Dependency{dep}, "boot();"))
	g.Add(mod(t, "/src/mobile.js", module.Exports(), nil, ""))
	if err := g.Connect("/src/entry.js", dep, "/src/mobile.js"); err != nil {
		t.Fatal(err)
	}

	define := map[string]string{"ENV": "desktop"}
	usage := graph.AnalyzeUsedExports(g, []int{entry}, define)
	cg := chunkgraph.Build(g, []chunkgraph.Entry{{Name: "main", Module: entry}}, define)

	rendered, errs := codegen.New(nil, define, nil).Generate(g, usage, cg)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if strings.Contains(rendered[0].Content, "./mobile") {
		t.Error("dead-guarded edge must not render a require")
	}
}
