// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/aperbet56/webpack/cmd/webpack"

func main() {
	cmd.Execute()
}
