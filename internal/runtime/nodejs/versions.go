// SPDX-License-Identifier: MPL-2.0

package nodejs

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"golang.org/x/mod/semver"
)

// minSDKVersion is the earliest functions SDK release whose server can
// export a manifest and answer the loopback discovery endpoint. Older
// SDKs are still deployable through legacy static analysis.
const minSDKVersion = "3.20.0"

// ErrInvalidVersion indicates a version string is not valid semver.
var ErrInvalidVersion = errors.New("invalid semantic version")

// Strategy selects how function declarations are discovered.
type Strategy int

const (
	// StrategyLegacyAnalysis introspects the user's module graph without
	// running a server. Used for SDKs that predate self-description.
	StrategyLegacyAnalysis Strategy = iota
	// StrategyManifestCapable reads an exported manifest when present and
	// falls back to probing a supervised server process otherwise.
	StrategyManifestCapable
)

// String returns a human-readable strategy name.
func (s Strategy) String() string {
	switch s {
	case StrategyLegacyAnalysis:
		return "legacy static analysis"
	case StrategyManifestCapable:
		return "manifest"
	default:
		return fmt.Sprintf("unknown strategy %d", int(s))
	}
}

// chooseStrategy gates discovery on the declared SDK version. An
// unparsable (or missing) version is an expected condition for very old
// SDKs and only rates a debug diagnostic; a parsable version below the
// minimum gets a user-visible deprecation warning. Pure decision
// function aside from the diagnostics.
func chooseStrategy(sdkVersion string, logger *log.Logger) Strategy {
	norm, err := normalizeVersion(sdkVersion)
	if err != nil {
		logger.Debug("functions SDK version is not valid semver, using legacy static analysis",
			"version", sdkVersion)
		return StrategyLegacyAnalysis
	}

	floor, _ := normalizeVersion(minSDKVersion)
	if semver.Compare(norm, floor) < 0 {
		logger.Warn("installed functions SDK predates manifest support; falling back to deprecated static analysis",
			"installed", sdkVersion,
			"minimum", minSDKVersion,
			"hint", "npm install --save "+sdkPackageName+"@latest")
		return StrategyLegacyAnalysis
	}

	return StrategyManifestCapable
}

// normalizeVersion ensures the version string has the "v" prefix that
// golang.org/x/mod/semver requires, and rejects anything that still is
// not a valid semantic version afterwards.
func normalizeVersion(v string) (string, error) {
	trimmed := strings.TrimSpace(v)
	if trimmed == "" {
		return "", fmt.Errorf("%w: empty version", ErrInvalidVersion)
	}
	if !strings.HasPrefix(trimmed, "v") {
		trimmed = "v" + trimmed
	}
	if !semver.IsValid(trimmed) {
		return "", fmt.Errorf("%w: %q", ErrInvalidVersion, v)
	}
	return trimmed, nil
}
