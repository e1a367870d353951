// SPDX-License-Identifier: MPL-2.0

// Package cueutil wraps the CUE parse/unify/validate flow used for build
// configuration files. The flow is always the same three steps: compile the
// embedded schema, unify the user's file against a root definition, then
// validate and decode into a Go struct.
//
// Typical usage:
//
//	result, err := cueutil.ParseAndDecodeString[Config](schema, data, "#Config",
//	    cueutil.WithFilename("webpack.cue"),
//	)
package cueutil
