// SPDX-License-Identifier: MPL-2.0

// Package nodejs implements the runtime delegate for Node.js function
// source directories.
//
// Discovery runs in up to three strategies, cheapest first. If the
// project's functions SDK is too old to describe itself (or has no
// parsable version), a legacy static analyzer introspects the user's
// module graph in a one-shot child process. Otherwise the delegate first
// looks for an exported functions.yaml manifest on disk, and only when
// that is absent does it launch the user's code as a supervised HTTP
// server on a random loopback port, fetch the declaration document from
// the server's discovery endpoint, and tear the process down again.
//
// Process supervision is narrowly scoped to that one probe (plus the
// interactive `fnctl serve` path): spawn, a fixed liveness window, and a
// graceful-quit-then-kill shutdown bounded by a fallback timer.
package nodejs
