// SPDX-License-Identifier: MPL-2.0

package config

// configDirOverride redirects the config directory, for tests.
// os.UserHomeDir() does not follow the HOME env var on every platform
// (macOS in CI, notably), so t.Setenv alone is not enough.
var configDirOverride string

// Reset clears the config directory override. Call from test cleanup.
func Reset() {
	configDirOverride = ""
}

// SetConfigDirOverride points config loading at a custom directory,
// bypassing os.UserHomeDir(). Intended for tests.
func SetConfigDirOverride(dir string) {
	configDirOverride = dir
}
