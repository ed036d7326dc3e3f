// SPDX-License-Identifier: MPL-2.0

package nodejs

import "fnctl-cli/pkg/platform"

// hostArgv builds the argv for a child process, prepending the sandbox
// host-spawn prefix when the tool itself runs inside an application
// sandbox (Flatpak, Snap). The node binary and the user's node_modules
// live on the host filesystem, so the child has to run there for paths
// to resolve.
func hostArgv(bin string, args ...string) []string {
	return hostArgvFor(platform.DetectSandbox(), bin, args...)
}

// hostArgvFor is the pure core of hostArgv, taking the sandbox type as
// a parameter so tests can exercise it without process-wide detection
// state.
func hostArgvFor(st platform.SandboxType, bin string, args ...string) []string {
	if st == platform.SandboxNone {
		return append([]string{bin}, args...)
	}
	argv := []string{platform.SpawnCommandFor(st)}
	argv = append(argv, platform.SpawnArgsFor(st)...)
	argv = append(argv, bin)
	return append(argv, args...)
}
