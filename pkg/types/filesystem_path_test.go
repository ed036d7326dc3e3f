// SPDX-License-Identifier: MPL-2.0

package types

import (
	"errors"
	"testing"
)

func TestFilesystemPath_Validate(t *testing.T) {
	t.Parallel()

	valid := []struct {
		name string
		path FilesystemPath
	}{
		{"absolute binary path", FilesystemPath("/opt/node/bin/node")},
		{"relative source dir", FilesystemPath("functions")},
		{"dot path", FilesystemPath(".")},
		{"config file", FilesystemPath("/home/dev/.config/fnctl/config.cue")},
		{"windows style", FilesystemPath("C:\\tools\\node.exe")},
		{"path with spaces", FilesystemPath("/srv/my functions/src")},
	}
	for _, tt := range valid {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if ok, errs := tt.path.IsValid(); !ok || len(errs) > 0 {
				t.Errorf("FilesystemPath(%q).IsValid() = %v, %v, want valid", tt.path, ok, errs)
			}
		})
	}

	invalid := []struct {
		name string
		path FilesystemPath
	}{
		{"empty", FilesystemPath("")},
		{"spaces only", FilesystemPath("   ")},
		{"tab only", FilesystemPath("\t")},
	}
	for _, tt := range invalid {
		t.Run(tt.name+" is invalid", func(t *testing.T) {
			t.Parallel()
			ok, errs := tt.path.IsValid()
			if ok || len(errs) == 0 {
				t.Fatalf("FilesystemPath(%q).IsValid() = %v, %v, want invalid with errors", tt.path, ok, errs)
			}
			if !errors.Is(errs[0], ErrInvalidFilesystemPath) {
				t.Errorf("error should wrap ErrInvalidFilesystemPath, got: %v", errs[0])
			}
			var fpErr *InvalidFilesystemPathError
			if !errors.As(errs[0], &fpErr) {
				t.Errorf("error should be *InvalidFilesystemPathError, got: %T", errs[0])
			}
		})
	}
}

func TestFilesystemPath_String(t *testing.T) {
	t.Parallel()

	p := FilesystemPath("/srv/functions")
	if p.String() != "/srv/functions" {
		t.Errorf("String() = %q, want /srv/functions", p.String())
	}
}
