// SPDX-License-Identifier: MPL-2.0

package platform

import (
	"os"
	"sync"
)

// SandboxType identifies the application sandbox the process runs in.
type SandboxType string

const (
	SandboxNone    SandboxType = ""
	SandboxFlatpak SandboxType = "flatpak"
	SandboxSnap    SandboxType = "snap"
)

// The sandbox cannot change during the process lifetime, so detection
// runs once and is cached.
//
// INVARIANT: detectSandboxFrom must not panic. sync.OnceValue replays a
// panic on every subsequent call, which would turn one bad detection
// into a persistent crash.
var detectOnce = sync.OnceValue(func() SandboxType {
	return detectSandboxFrom(os.Getenv, statFile)
})

// DetectSandbox reports the sandbox the current process runs in.
// Flatpak is detected via /.flatpak-info, Snap via SNAP_NAME.
func DetectSandbox() SandboxType {
	return detectOnce()
}

// IsInSandbox reports whether the process runs inside any sandbox.
func IsInSandbox() bool {
	return DetectSandbox() != SandboxNone
}

// GetSpawnCommand returns the host-spawn binary for the detected
// sandbox, or "" outside a sandbox.
func GetSpawnCommand() string {
	return SpawnCommandFor(DetectSandbox())
}

// GetSpawnArgs returns the arguments to prepend before the actual
// command when spawning on the host, or nil outside a sandbox.
func GetSpawnArgs() []string {
	return SpawnArgsFor(DetectSandbox())
}

// SpawnCommandFor is the pure mapping from sandbox type to host-spawn
// binary, independent of the cached detection.
func SpawnCommandFor(st SandboxType) string {
	switch st {
	case SandboxFlatpak:
		return "flatpak-spawn"
	case SandboxSnap:
		return "snap"
	default:
		return ""
	}
}

// SpawnArgsFor is the pure mapping from sandbox type to host-spawn
// arguments, independent of the cached detection.
func SpawnArgsFor(st SandboxType) []string {
	switch st {
	case SandboxFlatpak:
		return []string{"--host"}
	case SandboxSnap:
		return []string{"run", "--shell"}
	default:
		return nil
	}
}

// detectSandboxFrom takes its OS lookups as parameters so tests can
// drive detection without touching process state. Flatpak takes
// precedence when both indicators are present.
func detectSandboxFrom(lookupEnv func(string) string, statFile func(string) error) SandboxType {
	if err := statFile("/.flatpak-info"); err == nil {
		return SandboxFlatpak
	}
	if lookupEnv("SNAP_NAME") != "" {
		return SandboxSnap
	}
	return SandboxNone
}

func statFile(path string) error {
	_, err := os.Stat(path)
	return err
}
