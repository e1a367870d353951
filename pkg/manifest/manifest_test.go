// SPDX-License-Identifier: MPL-2.0

package manifest_test

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/aperbet56/webpack/pkg/manifest"
)

func TestNew_RejectsDuplicateNames(t *testing.T) {
	t.Parallel()

	_, err := manifest.New(
		manifest.Record{Name: "vendor"},
		manifest.Record{Name: "vendor"},
	)
	if !errors.Is(err, manifest.ErrDuplicateName) {
		t.Fatalf("expected ErrDuplicateName, got %v", err)
	}
}

func TestLookup_ExactMatchOnly(t *testing.T) {
	t.Parallel()

	m, err := manifest.New(manifest.Record{
		Name:    "vendor",
		Content: map[string]manifest.Entry{"./a.js": {ID: 1, Exports: []string{"a", "b"}}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, ok := m.Lookup("vendor"); !ok {
		t.Error("expected lookup hit for exact name")
	}
	if _, ok := m.Lookup("Vendor"); ok {
		t.Error("lookup must not fuzzy-match names")
	}

	rec, _ := m.Lookup("vendor")
	entry, ok := rec.Entry("./a.js")
	if !ok {
		t.Fatal("expected entry for ./a.js")
	}
	if entry.ID != 1 || !slices.Equal(entry.Exports, []string{"a", "b"}) {
		t.Errorf("entry = %+v", entry)
	}
}

func TestLoadFile_JSON(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "vendor-manifest.json")
	data := `{"name":"vendor","content":{"./lib.js":{"id":3,"exports":["x"]}}}`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	rec, err := manifest.LoadFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Name != "vendor" {
		t.Errorf("name = %q, want vendor", rec.Name)
	}
	entry, ok := rec.Entry("./lib.js")
	if !ok || entry.ID != 3 || !slices.Equal(entry.Exports, []string{"x"}) {
		t.Errorf("entry = %+v, ok = %v", entry, ok)
	}
}

func TestLoadFile_TOML(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "vendor-manifest.toml")
	data := `name = "vendor"

[content."./lib.js"]
id = 7
exports = ["x", "y"]
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	rec, err := manifest.LoadFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	entry, ok := rec.Entry("./lib.js")
	if !ok || entry.ID != 7 || !slices.Equal(entry.Exports, []string{"x", "y"}) {
		t.Errorf("entry = %+v, ok = %v", entry, ok)
	}
}

func TestLoadFile_Failures(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	badJSON := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(badJSON, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	noName := filepath.Join(dir, "noname.json")
	if err := os.WriteFile(noName, []byte(`{"content":{}}`), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		path string
	}{
		{name: "missing file", path: filepath.Join(dir, "absent.json")},
		{name: "malformed json", path: badJSON},
		{name: "missing name", path: noName},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := manifest.LoadFile(tt.path)
			if !errors.Is(err, manifest.ErrUnreadableManifest) {
				t.Errorf("expected ErrUnreadableManifest, got %v", err)
			}
		})
	}
}
