// SPDX-License-Identifier: MPL-2.0

// Package manifest models the externally produced DLL manifest: a read-only
// table mapping a bundle name to the ids and export surfaces of its pre-built
// modules. The core performs exact string matching on names and requests; no
// fuzzy or version matching.
package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

var (
	// ErrUnreadableManifest is returned when a manifest file cannot be read
	// or decoded as structured data. This is the one fault that aborts a
	// whole compilation.
	ErrUnreadableManifest = errors.New("unreadable manifest")
	// ErrDuplicateName is returned when two manifest records share a name.
	ErrDuplicateName = errors.New("duplicate manifest name")
)

type (
	// Entry describes one pre-built module inside a DLL bundle.
	Entry struct {
		// ID is the module id assigned by the build that produced the bundle.
		ID int `json:"id" toml:"id"`
		// Exports is the ordered export surface recorded at build time.
		Exports []string `json:"exports" toml:"exports"`
	}

	// Record is the manifest of a single pre-built bundle.
	Record struct {
		// Name identifies the bundle; DLL modules link against it by exact match.
		Name string `json:"name" toml:"name"`
		// Content maps request strings to their pre-built entries.
		Content map[string]Entry `json:"content" toml:"content"`
	}

	// Manifest is the read-only union of all loaded records, keyed by name.
	// It is safe for concurrent readers; nothing in the core mutates it after
	// construction.
	Manifest struct {
		records map[string]Record
	}
)

// New builds a Manifest from records. Duplicate names are rejected.
func New(records ...Record) (*Manifest, error) {
	m := &Manifest{records: make(map[string]Record, len(records))}
	for _, r := range records {
		if _, dup := m.records[r.Name]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateName, r.Name)
		}
		m.records[r.Name] = r
	}
	return m, nil
}

// Empty returns a manifest with no records. Lookups against it miss.
func Empty() *Manifest {
	return &Manifest{records: map[string]Record{}}
}

// Lookup returns the record for name, exact match only.
func (m *Manifest) Lookup(name string) (Record, bool) {
	r, ok := m.records[name]
	return r, ok
}

// Names returns all record names in sorted order.
func (m *Manifest) Names() []string {
	names := make([]string, 0, len(m.records))
	for n := range m.records {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Entry returns the pre-built entry for request within the named record.
func (r Record) Entry(request string) (Entry, bool) {
	e, ok := r.Content[request]
	return e, ok
}

// LoadFile reads a single manifest record from a .json or .toml file.
// Any read or decode failure wraps ErrUnreadableManifest.
func LoadFile(path string) (Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Record{}, fmt.Errorf("%w: %s: %v", ErrUnreadableManifest, path, err)
	}

	var rec Record
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = toml.Unmarshal(data, &rec)
	default:
		err = json.Unmarshal(data, &rec)
	}
	if err != nil {
		return Record{}, fmt.Errorf("%w: %s: %v", ErrUnreadableManifest, path, err)
	}

	if strings.TrimSpace(rec.Name) == "" {
		return Record{}, fmt.Errorf("%w: %s: record has no name", ErrUnreadableManifest, path)
	}
	return rec, nil
}

// LoadFiles reads all given manifest files into one Manifest.
func LoadFiles(paths ...string) (*Manifest, error) {
	records := make([]Record, 0, len(paths))
	for _, p := range paths {
		rec, err := LoadFile(p)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return New(records...)
}
