// SPDX-License-Identifier: MPL-2.0

// Package issue turns failures into actionable guidance. It holds the
// catalog of known issues (rendered as Markdown with remediation
// steps) and an error wrapper that carries user-facing context through
// the call chain.
package issue
