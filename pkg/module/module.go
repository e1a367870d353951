// SPDX-License-Identifier: MPL-2.0

// Package module defines the polymorphic module variants the compilation
// core operates on. A module is a compiled unit with a stable identity and an
// export surface; variants are dispatched through the Module capability
// interface rather than concrete types, so graph, chunking and code
// generation never care which kind they hold.
//
// A module is exclusively owned by the module graph once created; factories
// never retain references after returning one.
package module

import (
	"github.com/aperbet56/webpack/pkg/dependency"
	"github.com/aperbet56/webpack/pkg/manifest"
)

type (
	// Module is the capability interface shared by all variants.
	Module interface {
		// Identity is the stable string keying caches and content hashes.
		// Two compilations of identical input see identical identities.
		Identity() string

		// ProvidedExports is the statically known export surface.
		ProvidedExports() ExportsInfo

		// Dependencies returns the outgoing dependency declarations in
		// declaration order.
		Dependencies() []dependency.Dependency

		// Render produces the module's runtime fragment conditioned on the
		// resolved inputs. It must be deterministic: identical inputs yield
		// byte-identical output.
		Render(in RenderInputs) (string, error)
	}

	// ResolvedEdge is a live outgoing edge at render time: the declared
	// request together with the stable id of the module it resolved to.
	// Elided edges (dead guards, dropped weak deps) never appear here.
	ResolvedEdge struct {
		Request  string
		ModuleID int
		Async    bool
	}

	// RenderInputs carries everything code generation resolves before asking
	// a module to render itself.
	RenderInputs struct {
		// ID is this module's stable id.
		ID int
		// UsedExports is the analyzed used subset in provided order; nil
		// means every provided export is used (entry modules, unknown
		// surfaces, namespace imports).
		UsedExports []string
		// Edges are the live outgoing edges in declaration order.
		Edges []ResolvedEdge
		// Manifest resolves DLL references. Never nil; use manifest.Empty()
		// when no DLL bundles are linked.
		Manifest *manifest.Manifest
	}
)
