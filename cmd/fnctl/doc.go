// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for fnctl.
//
// This package implements the Cobra command hierarchy for the fnctl CLI:
// the root command plus subcommands for validating a functions source
// directory, discovering its declared functions, serving it locally, and
// managing configuration.
package cmd
