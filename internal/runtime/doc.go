// SPDX-License-Identifier: MPL-2.0

// Package runtime defines the delegate interface between the deploy
// pipeline and a language runtime's function tooling, plus the registry
// that detects which delegate owns a given source directory.
//
// A delegate knows how to validate, serve, and discover the functions a
// user has declared in their source tree. Discovery never requires the
// user to author a manifest by hand: the delegate either reads an
// exported declaration file, probes a supervised child process over
// loopback HTTP, or falls back to static analysis for SDKs that predate
// self-description.
package runtime
