// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"errors"
	"strings"
	"testing"

	"cuelang.org/go/cue/cuecontext"
)

func TestFormatError(t *testing.T) {
	t.Parallel()

	t.Run("nil stays nil", func(t *testing.T) {
		t.Parallel()
		if err := FormatError(nil, "config.cue"); err != nil {
			t.Errorf("FormatError(nil) = %v", err)
		}
	})

	t.Run("non-CUE error gets the file path prefix", func(t *testing.T) {
		t.Parallel()
		err := FormatError(errors.New("some error"), "config.cue")
		if err == nil {
			t.Fatal("expected error")
		}
		for _, want := range []string{"config.cue", "some error"} {
			if !strings.Contains(err.Error(), want) {
				t.Errorf("error missing %q: %v", want, err)
			}
		}
	})

	t.Run("CUE validation error carries the field path", func(t *testing.T) {
		t.Parallel()
		ctx := cuecontext.New()
		schema := ctx.CompileString(`ui: color_scheme: "auto" | "dark" | "light"`)
		data := ctx.CompileString(`ui: color_scheme: "sepia"`)

		verr := schema.Unify(data).Validate()
		if verr == nil {
			t.Fatal("unification should fail")
		}

		err := FormatError(verr, "config.cue")
		if !strings.Contains(err.Error(), "config.cue") {
			t.Errorf("error missing file path: %v", err)
		}
		if !strings.Contains(err.Error(), "color_scheme") {
			t.Errorf("error missing field path: %v", err)
		}
	})
}

func TestFormatPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		path []string
		want string
	}{
		{"empty", []string{}, ""},
		{"single element", []string{"name"}, "name"},
		{"nested fields", []string{"discovery", "liveness_window_secs"}, "discovery.liveness_window_secs"},
		{"array index", []string{"endpoints", "0", "name"}, "endpoints[0].name"},
		{"repeated indices", []string{"endpoints", "0", "triggers", "2", "type"}, "endpoints[0].triggers[2].type"},
		{"trailing index", []string{"items", "0", "values", "1"}, "items[0].values[1]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := formatPath(tt.path); got != tt.want {
				t.Errorf("formatPath(%v) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestCheckFileSize(t *testing.T) {
	t.Parallel()

	if err := CheckFileSize([]byte("hello"), 100, "config.cue"); err != nil {
		t.Errorf("within limit: %v", err)
	}
	if err := CheckFileSize(make([]byte, 100), 100, "config.cue"); err != nil {
		t.Errorf("exactly at limit: %v", err)
	}
	if err := CheckFileSize(nil, 100, "config.cue"); err != nil {
		t.Errorf("empty data: %v", err)
	}

	err := CheckFileSize(make([]byte, 101), 100, "config.cue")
	if err == nil {
		t.Fatal("over limit should error")
	}
	for _, want := range []string{"config.cue", "101", "100"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("size error missing %q: %v", want, err)
		}
	}
}

func TestValidationError(t *testing.T) {
	t.Parallel()

	withPath := &ValidationError{
		FilePath: "config.cue",
		CUEPath:  "endpoints[0].name",
		Message:  "expected string, got int",
	}
	if got, want := withPath.Error(), "config.cue: endpoints[0].name: expected string, got int"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	withoutPath := &ValidationError{FilePath: "config.cue", Message: "syntax error"}
	if got, want := withoutPath.Error(), "config.cue: syntax error"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	if withPath.Unwrap() != nil {
		t.Error("Unwrap() should return nil for a leaf error")
	}

	// Suggestion rides along for renderers but stays out of Error().
	suggest := &ValidationError{
		FilePath:   "config.cue",
		CUEPath:    "ui.color_scheme",
		Message:    "invalid color scheme",
		Suggestion: "use 'auto', 'dark', or 'light'",
	}
	if strings.Contains(suggest.Error(), suggest.Suggestion) {
		t.Error("Error() should not include the suggestion text")
	}
}
