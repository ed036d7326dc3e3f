// SPDX-License-Identifier: MPL-2.0

package nodejs

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"fnctl-cli/pkg/buildspec"
)

// manifestFileName is the exported function declaration file a
// manifest-capable SDK writes into the source directory at build time.
const manifestFileName = "functions.yaml"

// ManifestReader reports the exported manifest in a source directory, or
// (nil, nil) when none is present. Absence is not an error, it just
// sends discovery down the dynamic path.
type ManifestReader interface {
	ReadManifest(ctx context.Context, sourceDir, runtimeID string) (*buildspec.Build, error)
}

// fileManifestReader is the production ManifestReader: it reads
// functions.yaml from disk and checks it against the runtime identity.
type fileManifestReader struct {
	logger *log.Logger
}

func newFileManifestReader(logger *log.Logger) *fileManifestReader {
	return &fileManifestReader{logger: logger}
}

// ReadManifest implements ManifestReader.
func (r *fileManifestReader) ReadManifest(_ context.Context, sourceDir, runtimeID string) (*buildspec.Build, error) {
	path := filepath.Join(sourceDir, manifestFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	b, err := buildspec.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("manifest %s: %w", path, err)
	}

	// A manifest exported for a different runtime identity is stale
	// (e.g. left over from before an engine upgrade); ignore it rather
	// than deploying declarations that may no longer match the code.
	if b.Runtime != "" && b.Runtime != runtimeID {
		r.logger.Debug("ignoring manifest exported for a different runtime",
			"manifest", b.Runtime, "current", runtimeID)
		return nil, nil
	}

	return b, nil
}
