// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"strings"
	"testing"
)

const testSchema = `
#Thing: {
	name:  string
	count: int & >=0
}
`

type thing struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestParseAndDecodeString(t *testing.T) {
	t.Parallel()

	res, err := ParseAndDecodeString[thing](testSchema,
		[]byte(`name: "bundle", count: 3`), "#Thing",
		WithFilename("thing.cue"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Value.Name != "bundle" || res.Value.Count != 3 {
		t.Errorf("decoded = %+v", res.Value)
	}
}

func TestParseAndDecodeString_SchemaViolation(t *testing.T) {
	t.Parallel()

	_, err := ParseAndDecodeString[thing](testSchema,
		[]byte(`name: "bundle", count: -1`), "#Thing",
		WithFilename("thing.cue"))
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "thing.cue") {
		t.Errorf("error must carry the filename: %v", err)
	}
	if !strings.Contains(err.Error(), "count") {
		t.Errorf("error must carry the field path: %v", err)
	}
}

func TestParseAndDecodeString_NonConcrete(t *testing.T) {
	t.Parallel()

	// Concrete mode rejects a missing field; relaxed mode accepts it.
	data := []byte(`name: "partial"`)
	if _, err := ParseAndDecodeString[thing](testSchema, data, "#Thing"); err == nil {
		t.Error("concrete parse must reject missing count")
	}
	if _, err := ParseAndDecodeString[thing](testSchema, data, "#Thing", WithConcrete(false)); err != nil {
		t.Errorf("non-concrete parse must accept missing count: %v", err)
	}
}

func TestCheckFileSize(t *testing.T) {
	t.Parallel()

	if err := CheckFileSize(make([]byte, 10), 10, "ok.cue"); err != nil {
		t.Errorf("size at limit must pass: %v", err)
	}
	if err := CheckFileSize(make([]byte, 11), 10, "big.cue"); err == nil {
		t.Error("oversized input must be rejected")
	}
}

func TestFormatPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path []string
		want string
	}{
		{nil, ""},
		{[]string{"entries"}, "entries"},
		{[]string{"entries", "0", "name"}, "entries[0].name"},
		{[]string{"define", "ENV"}, "define.ENV"},
	}
	for _, tt := range tests {
		if got := formatPath(tt.path); got != tt.want {
			t.Errorf("formatPath(%v) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
