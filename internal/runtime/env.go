// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"sort"
	"strings"
)

// EnvToSlice converts a map of environment variables to the "KEY=VALUE"
// slice form expected by exec.Cmd, sorted for deterministic spawns.
func EnvToSlice(env map[string]string) []string {
	result := make([]string, 0, len(env))
	for k, v := range env {
		result = append(result, k+"="+v)
	}
	sort.Strings(result)
	return result
}

// WhitelistHostEnv extracts only the allowed variable names from a host
// environment snapshot ("KEY=VALUE" strings, as returned by os.Environ).
// Everything else is dropped, so a supervised child never inherits the
// tool's own unrelated environment. Callers pass the snapshot in
// explicitly; this package never reads the ambient environment itself.
func WhitelistHostEnv(environ []string, allow []string) map[string]string {
	allowed := make(map[string]bool, len(allow))
	for _, name := range allow {
		allowed[name] = true
	}

	out := make(map[string]string)
	for _, e := range environ {
		idx := strings.IndexByte(e, '=')
		if idx <= 0 {
			// Malformed entry, drop it
			continue
		}
		if name := e[:idx]; allowed[name] {
			out[name] = e[idx+1:]
		}
	}
	return out
}
