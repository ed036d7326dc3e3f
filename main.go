// SPDX-License-Identifier: MPL-2.0

// fnctl is the command-line entry point. All behavior lives in cmd.
package main

import cmd "fnctl-cli/cmd/fnctl"

func main() {
	cmd.Execute()
}
