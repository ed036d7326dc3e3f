// SPDX-License-Identifier: MPL-2.0

package platform

// GOOS values this tool special-cases, named so comparisons read
// without magic strings.
const (
	Windows = "windows"
	Darwin  = "darwin"
	Linux   = "linux"
)
