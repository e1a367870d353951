// SPDX-License-Identifier: MPL-2.0

package graph_test

import (
	"errors"
	"slices"
	"testing"

	"github.com/aperbet56/webpack/internal/graph"
	"github.com/aperbet56/webpack/pkg/dependency"
	"github.com/aperbet56/webpack/pkg/module"
)

func mod(t *testing.T, identity string, exports ...string) *module.NormalModule {
	t.Helper()
	m, err := module.NewNormalModule(identity, module.Exports(exports...), nil, "")
	if err != nil {
		t.Fatalf("module %s: %v", identity, err)
	}
	return m
}

func TestAdd_IdempotentByIdentity(t *testing.T) {
	t.Parallel()

	g := graph.New()
	a := g.Add(mod(t, "/a.js"))
	b := g.Add(mod(t, "/b.js"))
	again := g.Add(mod(t, "/a.js"))

	if a == b {
		t.Error("distinct identities must get distinct indexes")
	}
	if again != a {
		t.Errorf("re-adding identity returned %d, want %d", again, a)
	}
	if g.Len() != 2 {
		t.Errorf("Len() = %d, want 2", g.Len())
	}
}

func TestConnect_RejectsDanglingEdges(t *testing.T) {
	t.Parallel()

	g := graph.New()
	g.Add(mod(t, "/a.js"))

	err := g.Connect("/a.js", dependency.Of("./b", dependency.KindStatic, "/"), "/b.js")
	if !errors.Is(err, graph.ErrUnknownModule) {
		t.Fatalf("expected ErrUnknownModule, got %v", err)
	}
}

func TestAnalyzeUsedExports_NamedImports(t *testing.T) {
	t.Parallel()

	g := graph.New()
	entry := g.Add(mod(t, "/entry.js"))
	util := g.Add(mod(t, "/util.js", "a", "b", "c"))

	dep := dependency.Of("./util", dependency.KindStatic, "/").WithImports("a", "c")
	if err := g.Connect("/entry.js", dep, "/util.js"); err != nil {
		t.Fatal(err)
	}

	u := graph.AnalyzeUsedExports(g, []int{entry}, nil)

	if !u.AllUsed(entry) {
		t.Error("entry modules start with all exports used")
	}
	if got := u.UsedNames(util); !slices.Equal(got, []string{"a", "c"}) {
		t.Errorf("used = %v, want [a c]", got)
	}
	if u.IsUsed(util, "b") {
		t.Error("b was never imported")
	}
}

func TestAnalyzeUsedExports_NamespaceImportSaturates(t *testing.T) {
	t.Parallel()

	g := graph.New()
	entry := g.Add(mod(t, "/entry.js"))
	util := g.Add(mod(t, "/util.js", "a", "b"))
	if err := g.Connect("/entry.js", dependency.Of("./util", dependency.KindStatic, "/"), "/util.js"); err != nil {
		t.Fatal(err)
	}

	u := graph.AnalyzeUsedExports(g, []int{entry}, nil)
	if !u.AllUsed(util) {
		t.Error("namespace import must saturate the target's used set")
	}
}

func TestAnalyzeUsedExports_SubsetOfProvided(t *testing.T) {
	t.Parallel()

	g := graph.New()
	entry := g.Add(mod(t, "/entry.js"))
	util := g.Add(mod(t, "/util.js", "a"))

	// Demand a name the target never provides: the used set must not grow
	// past the provided surface.
	dep := dependency.Of("./util", dependency.KindStatic, "/").WithImports("a", "phantom")
	if err := g.Connect("/entry.js", dep, "/util.js"); err != nil {
		t.Fatal(err)
	}

	u := graph.AnalyzeUsedExports(g, []int{entry}, nil)
	if got := u.UsedNames(util); !slices.Equal(got, []string{"a"}) {
		t.Errorf("used = %v, want [a]", got)
	}
}

func TestAnalyzeUsedExports_GuardedEdgeElided(t *testing.T) {
	t.Parallel()

	g := graph.New()
	entry := g.Add(mod(t, "/entry.js"))
	mobile := g.Add(mod(t, "/mobile.js", "m"))

	dep := dependency.Of("./mobile", dependency.KindStatic, "/").
		WithImports("m").
		WithGuard("ENV", "mobile")
	if err := g.Connect("/entry.js", dep, "/mobile.js"); err != nil {
		t.Fatal(err)
	}

	desktop := graph.AnalyzeUsedExports(g, []int{entry}, map[string]string{"ENV": "desktop"})
	if desktop.UsedCount(mobile) != 0 || desktop.AllUsed(mobile) {
		t.Error("edge guarded by ENV==mobile must contribute nothing under ENV=desktop")
	}

	mobileRun := graph.AnalyzeUsedExports(g, []int{entry}, map[string]string{"ENV": "mobile"})
	if !mobileRun.IsUsed(mobile, "m") {
		t.Error("edge must be live under ENV=mobile")
	}
}

func TestAnalyzeUsedExports_CycleConverges(t *testing.T) {
	t.Parallel()

	g := graph.New()
	a := g.Add(mod(t, "/a.js", "fa"))
	b := g.Add(mod(t, "/b.js", "fb"))
	if err := g.Connect("/a.js", dependency.Of("./b", dependency.KindStatic, "/").WithImports("fb"), "/b.js"); err != nil {
		t.Fatal(err)
	}
	if err := g.Connect("/b.js", dependency.Of("./a", dependency.KindStatic, "/").WithImports("fa"), "/a.js"); err != nil {
		t.Fatal(err)
	}

	u := graph.AnalyzeUsedExports(g, []int{a}, nil)
	if !u.IsUsed(b, "fb") {
		t.Error("fb demanded by a")
	}
	// a is an entry, saturated regardless of the back edge.
	if !u.AllUsed(a) {
		t.Error("entry must stay saturated")
	}
}

func TestDetectCycles(t *testing.T) {
	t.Parallel()

	acyclic := graph.New()
	acyclic.Add(mod(t, "/a.js"))
	acyclic.Add(mod(t, "/b.js"))
	if err := acyclic.Connect("/a.js", dependency.Of("./b", dependency.KindStatic, "/"), "/b.js"); err != nil {
		t.Fatal(err)
	}
	if w := acyclic.DetectCycles(); w != nil {
		t.Errorf("acyclic graph reported cycle: %v", w)
	}

	cyclic := graph.New()
	cyclic.Add(mod(t, "/a.js"))
	cyclic.Add(mod(t, "/b.js"))
	if err := cyclic.Connect("/a.js", dependency.Of("./b", dependency.KindStatic, "/"), "/b.js"); err != nil {
		t.Fatal(err)
	}
	if err := cyclic.Connect("/b.js", dependency.Of("./a", dependency.KindStatic, "/"), "/a.js"); err != nil {
		t.Fatal(err)
	}
	w := cyclic.DetectCycles()
	if w == nil {
		t.Fatal("expected cycle warning")
	}
	if len(w.Cycle) != 2 {
		t.Errorf("cycle = %v, want both modules", w.Cycle)
	}
}
