// SPDX-License-Identifier: MPL-2.0

// Package cli contains CLI integration tests using testscript.
//
// Each testdata script sets up a small project in its work directory,
// runs the webpack command against it and asserts on the emitted assets
// and the terminal output.
package cli

import (
	"testing"

	"github.com/rogpeppe/go-internal/testscript"

	cmd "github.com/aperbet56/webpack/cmd/webpack"
)

func TestMain(m *testing.M) {
	testscript.Main(m, map[string]func(){
		"webpack": cmd.Execute,
	})
}

// TestCLI runs all testscript tests in the testdata directory.
func TestCLI(t *testing.T) {
	testscript.Run(t, testscript.Params{
		Dir: "testdata",
		// Continue running all tests even if one fails
		ContinueOnError: true,
	})
}
