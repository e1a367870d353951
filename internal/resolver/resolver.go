// SPDX-License-Identifier: MPL-2.0

// Package resolver defines the contract the resolving module factory
// consumes, plus a minimal filesystem resolver good enough for relative
// requests with extension probing. The full node-style resolution algorithm
// (package.json, directory indexes, symlink policy) is an external
// collaborator and deliberately not implemented here.
package resolver

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrNotFound is the sentinel error wrapped by NotFoundError.
var ErrNotFound = errors.New("module not found")

type (
	// Resolver maps a request declared in context to a module path.
	// Implementations must be safe for concurrent use: factory calls run in
	// parallel.
	Resolver interface {
		Resolve(context, request string) (string, error)
	}

	// NotFoundError is returned when a request cannot be mapped to a module.
	// It wraps ErrNotFound for errors.Is() compatibility.
	NotFoundError struct {
		Context string
		Request string
	}

	// FileResolver resolves relative requests against the filesystem, probing
	// the configured extensions in order when the request has none.
	FileResolver struct {
		extensions []string
	}
)

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("cannot resolve %q in %s", e.Request, e.Context)
}

// Unwrap returns ErrNotFound for errors.Is() compatibility.
func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// NewFileResolver creates a FileResolver. With no extensions given it probes
// ".js" then ".json".
func NewFileResolver(extensions ...string) *FileResolver {
	if len(extensions) == 0 {
		extensions = []string{".js", ".json"}
	}
	return &FileResolver{extensions: extensions}
}

// Resolve implements Resolver. The result is an absolute path so module
// identities stay stable regardless of the working directory.
func (r *FileResolver) Resolve(context, request string) (string, error) {
	base := request
	if !filepath.IsAbs(base) {
		base = filepath.Join(context, request)
	}

	candidates := []string{base}
	if filepath.Ext(base) == "" {
		for _, ext := range r.extensions {
			candidates = append(candidates, base+ext)
		}
	}

	for _, c := range candidates {
		info, err := os.Stat(c)
		if err != nil || info.IsDir() {
			continue
		}
		abs, err := filepath.Abs(c)
		if err != nil {
			return "", fmt.Errorf("failed to absolutize %s: %w", c, err)
		}
		return abs, nil
	}

	return "", &NotFoundError{Context: context, Request: request}
}
