// SPDX-License-Identifier: MPL-2.0

package nodejs

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

const (
	// sdkPackageName is the npm package providing the functions SDK.
	sdkPackageName = "@fnctl/sdk"
	// sdkServerBin is the SDK's bundled function server, relative to the
	// source directory. Spawned for dynamic discovery and `fnctl serve`.
	sdkServerBin = "node_modules/.bin/fnctl-functions"
	// packageJSONName marks a directory as a Node.js project.
	packageJSONName = "package.json"

	// defaultNodeMajor is assumed when package.json declares no engine.
	defaultNodeMajor = "22"
)

// packageJSON is the subset of package.json this delegate reads.
type packageJSON struct {
	Name    string            `json:"name"`
	Version string            `json:"version"`
	Main    string            `json:"main"`
	Engines map[string]string `json:"engines"`
}

// readPackageJSON loads <dir>/package.json. Returns fs.ErrNotExist
// (wrapped) when the file is missing, which callers use for runtime
// detection.
func readPackageJSON(dir string) (*packageJSON, error) {
	data, err := os.ReadFile(filepath.Join(dir, packageJSONName))
	if err != nil {
		return nil, fmt.Errorf("failed to read package.json: %w", err)
	}
	var pkg packageJSON
	if err := json.Unmarshal(data, &pkg); err != nil {
		return nil, fmt.Errorf("failed to parse package.json: %w", err)
	}
	return &pkg, nil
}

// nodeMajorFromEngines extracts the major version from an engines.node
// constraint like "22", ">=18", or "^20.10.0". Falls back to
// defaultNodeMajor when the constraint is absent or carries no digits.
func nodeMajorFromEngines(engines map[string]string) string {
	constraint := strings.TrimSpace(engines["node"])
	start := -1
	for i := 0; i < len(constraint); i++ {
		if constraint[i] >= '0' && constraint[i] <= '9' {
			start = i
			break
		}
	}
	if start == -1 {
		return defaultNodeMajor
	}
	end := start
	for end < len(constraint) && constraint[end] >= '0' && constraint[end] <= '9' {
		end++
	}
	return constraint[start:end]
}

// installedSDKVersion reads the installed functions SDK version from
// node_modules. Returns "" (no error) when the SDK is not installed;
// discovery treats a missing version the same as an unparsable one.
func installedSDKVersion(sourceDir string) (string, error) {
	p := filepath.Join(sourceDir, "node_modules", filepath.FromSlash(sdkPackageName), packageJSONName)
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read SDK package.json: %w", err)
	}
	var pkg packageJSON
	if err := json.Unmarshal(data, &pkg); err != nil {
		return "", fmt.Errorf("failed to parse SDK package.json: %w", err)
	}
	return pkg.Version, nil
}
