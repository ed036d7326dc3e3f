// SPDX-License-Identifier: MPL-2.0

package nodejs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"os/exec"

	"github.com/charmbracelet/log"

	"fnctl-cli/internal/runtime"
	"fnctl-cli/pkg/buildspec"
)

// analyzerScript loads the user's entry module in-process (no server)
// and prints the declared endpoints as a build document on stdout. Old
// SDK releases attach the declaration to the exported function object
// under __endpoint, which is all this introspection relies on.
const analyzerScript = `
const path = require("path");
const pkg = require(path.resolve("package.json"));
const mod = require(path.resolve(pkg.main || "index.js"));
const endpoints = {};
for (const [name, fn] of Object.entries(mod)) {
  if (typeof fn !== "function" || typeof fn.__endpoint !== "object") continue;
  endpoints[name] = Object.assign({ entryPoint: name }, fn.__endpoint);
}
process.stdout.write(JSON.stringify({ specVersion: "v1alpha1", endpoints }));
`

// LegacyAnalyzer discovers declarations from SDKs that predate
// self-description, by introspecting the user's module graph without
// running a server.
type LegacyAnalyzer interface {
	Analyze(ctx context.Context, pc runtime.ProjectContext, runtimeID string, cfg runtime.Config, env map[string]string) (*buildspec.Build, error)
}

// nodeAnalyzer is the production LegacyAnalyzer: a one-shot `node -e`
// invocation with captured stdout.
type nodeAnalyzer struct {
	nodeBinary  string
	logger      *log.Logger
	hostEnviron func() []string
}

func newNodeAnalyzer(logger *log.Logger) *nodeAnalyzer {
	return &nodeAnalyzer{nodeBinary: "node", logger: logger, hostEnviron: os.Environ}
}

// Analyze implements LegacyAnalyzer.
func (a *nodeAnalyzer) Analyze(ctx context.Context, pc runtime.ProjectContext, runtimeID string, cfg runtime.Config, env map[string]string) (*buildspec.Build, error) {
	merged := runtime.WhitelistHostEnv(a.hostEnviron(), inheritedHostVars)
	maps.Copy(merged, env)
	if len(cfg) > 0 {
		encoded, err := json.Marshal(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to encode runtime config: %w", err)
		}
		merged[envRuntimeConfig] = string(encoded)
	}

	argv := hostArgv(a.nodeBinary, "-e", analyzerScript)
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = pc.SourceDir.String()
	cmd.Env = runtime.EnvToSlice(merged)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	a.logger.Debug("running legacy trigger analysis", "sourceDir", pc.SourceDir, "runtime", runtimeID)
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("legacy analysis failed: %w: %s", err, truncate(stderr.Bytes(), 200))
	}

	var b buildspec.Build
	if err := json.Unmarshal(stdout.Bytes(), &b); err != nil {
		return nil, fmt.Errorf("failed to parse legacy analysis output: %w", err)
	}
	if err := b.Validate(); err != nil {
		return nil, fmt.Errorf("legacy analysis produced %w", err)
	}
	return &b, nil
}
