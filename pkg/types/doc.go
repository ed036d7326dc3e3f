// SPDX-License-Identifier: MPL-2.0

// Package types defines cross-cutting value types shared by the domain
// packages (buildspec, the runtime delegates, the CLI layer): listen
// ports, process exit codes, filesystem paths. Each carries validation
// and a sentinel-wrapping error type.
//
// This package is a leaf dependency: it imports only the standard library.
// Domain packages import it; it never imports domain packages.
package types
