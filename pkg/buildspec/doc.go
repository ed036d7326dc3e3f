// SPDX-License-Identifier: MPL-2.0

// Package buildspec defines the build document produced by function
// discovery: a runtime-agnostic description of every function a user has
// declared in a source directory, along with its trigger and resource
// configuration. The same document shape is produced by all discovery
// strategies (manifest file, dynamic probe, legacy analysis), so
// downstream consumers never need to know which strategy ran.
package buildspec
