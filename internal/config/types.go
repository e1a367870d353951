// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// ModeDevelopment keeps every provided export in the output.
	ModeDevelopment Mode = "development"
	// ModeProduction runs used-exports analysis and drops what nothing
	// imports.
	ModeProduction Mode = "production"
)

var (
	// ErrInvalidMode is returned when a Mode value is not recognized.
	ErrInvalidMode = errors.New("invalid mode")
	// ErrInvalidEntry is the sentinel error wrapped by InvalidEntryError.
	ErrInvalidEntry = errors.New("invalid entry")
	// ErrInvalidDllReference is returned when a DLL reference is malformed.
	ErrInvalidDllReference = errors.New("invalid dll reference")
	// ErrInvalidConfig is returned when the config as a whole is unusable.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// Mode selects the build profile.
	Mode string

	// InvalidModeError is returned when a Mode value is not recognized.
	// It wraps ErrInvalidMode for errors.Is() compatibility.
	InvalidModeError struct {
		Value Mode
	}

	// EntryConfig declares one entry point. Entry declaration order is
	// meaningful: it fixes chunk emission order.
	EntryConfig struct {
		Name    string `mapstructure:"name"`
		Request string `mapstructure:"request"`
	}

	// InvalidEntryError is returned when an entry has an empty name or
	// request, or a duplicated name.
	// It wraps ErrInvalidEntry for errors.Is() compatibility.
	InvalidEntryError struct {
		Index  int
		Reason string
	}

	// DllReferenceConfig declares linkage against one pre-built bundle.
	DllReferenceConfig struct {
		Name     string   `mapstructure:"name"`
		Requests []string `mapstructure:"requests"`
	}

	// OutputConfig controls asset emission.
	OutputConfig struct {
		Dir string `mapstructure:"dir"`
	}

	// Config is the full build configuration.
	Config struct {
		Context       string               `mapstructure:"context"`
		Mode          Mode                 `mapstructure:"mode"`
		Entries       []EntryConfig        `mapstructure:"entries"`
		Define        map[string]string    `mapstructure:"define"`
		Manifests     []string             `mapstructure:"manifests"`
		DllReferences []DllReferenceConfig `mapstructure:"dll_references"`
		Output        OutputConfig         `mapstructure:"output"`
		Concurrency   int                  `mapstructure:"concurrency"`
	}
)

func (e *InvalidModeError) Error() string {
	return fmt.Sprintf("invalid mode %q (valid: %s, %s)", e.Value, ModeDevelopment, ModeProduction)
}

// Unwrap returns ErrInvalidMode for errors.Is() compatibility.
func (e *InvalidModeError) Unwrap() error { return ErrInvalidMode }

func (e *InvalidEntryError) Error() string {
	return fmt.Sprintf("entries[%d]: %s", e.Index, e.Reason)
}

// Unwrap returns ErrInvalidEntry for errors.Is() compatibility.
func (e *InvalidEntryError) Unwrap() error { return ErrInvalidEntry }

// IsValid reports whether the Mode is one of the known profiles, returning
// the validation errors otherwise.
func (m Mode) IsValid() (bool, []error) {
	switch m {
	case ModeDevelopment, ModeProduction:
		return true, nil
	default:
		return false, []error{&InvalidModeError{Value: m}}
	}
}

// DefaultConfig returns the configuration used when no webpack.cue exists.
func DefaultConfig() *Config {
	return &Config{
		Context:     ".",
		Mode:        ModeDevelopment,
		Output:      OutputConfig{Dir: "dist"},
		Concurrency: 4,
	}
}

// Validate checks the constraints CUE cannot express: non-empty entry set,
// entry name uniqueness, DLL reference name uniqueness.
func (c *Config) Validate() error {
	if ok, errs := c.Mode.IsValid(); !ok {
		return errs[0]
	}
	if len(c.Entries) == 0 {
		return fmt.Errorf("%w: at least one entry is required", ErrInvalidConfig)
	}

	names := make(map[string]int)
	for i, e := range c.Entries {
		if strings.TrimSpace(e.Name) == "" {
			return &InvalidEntryError{Index: i, Reason: "name must not be empty"}
		}
		if strings.TrimSpace(e.Request) == "" {
			return &InvalidEntryError{Index: i, Reason: "request must not be empty"}
		}
		if first, dup := names[e.Name]; dup {
			return &InvalidEntryError{Index: i, Reason: fmt.Sprintf("name %q already used by entries[%d]", e.Name, first)}
		}
		names[e.Name] = i
	}

	refs := make(map[string]bool)
	for _, ref := range c.DllReferences {
		if strings.TrimSpace(ref.Name) == "" {
			return fmt.Errorf("%w: reference name must not be empty", ErrInvalidDllReference)
		}
		if refs[ref.Name] {
			return fmt.Errorf("%w: duplicate reference name %q", ErrInvalidDllReference, ref.Name)
		}
		refs[ref.Name] = true
	}

	if c.Concurrency < 0 {
		return fmt.Errorf("%w: concurrency must not be negative", ErrInvalidConfig)
	}
	return nil
}
