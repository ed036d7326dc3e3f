// SPDX-License-Identifier: MPL-2.0

// Package cueutil holds the shared CUE parsing flow: compile the
// embedded schema, unify user data with it, validate, and decode into
// a Go struct. The config package builds its loading on top of it.
//
// # Usage
//
//	//go:embed config_schema.cue
//	var schemaBytes []byte
//
//	result, err := cueutil.ParseAndDecode[Config](
//	    schemaBytes,
//	    userFileBytes,
//	    "#Config",
//	    cueutil.WithFilename("config.cue"),
//	)
//	if err != nil {
//	    return nil, err  // Error includes CUE path for debugging
//	}
//	return result.Value, nil
package cueutil
