// SPDX-License-Identifier: MPL-2.0

// Package platform holds OS identification constants and application
// sandbox (Flatpak, Snap) detection. Sandboxed installs must spawn
// child processes on the host, where the user's toolchain and sources
// actually live.
package platform
