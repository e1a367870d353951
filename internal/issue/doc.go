// SPDX-License-Identifier: MPL-2.0

// Package issue holds the registry of user-facing build problems and the
// ActionableError type that carries operation, resource and fix suggestions
// through the error chain. Issue pages are markdown, rendered with glamour
// for terminal output.
package issue
