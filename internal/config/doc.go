// SPDX-License-Identifier: MPL-2.0

// Package config handles application configuration using Viper with CUE as the file format.
//
// Configuration is loaded from ~/.config/fnctl/config.cue (or XDG equivalent on Linux,
// ~/Library/Application Support/fnctl/config.cue on macOS, %APPDATA%\fnctl\config.cue
// on Windows). The package provides type-safe configuration access and supports the
// default deploy project, Node.js binary override, discovery lifecycle timers, the
// supervised-process port range, and UI settings.
//
// Configuration validation is performed against a CUE schema (config_schema.cue) to ensure
// type safety and provide clear error messages for invalid configurations.
package config
