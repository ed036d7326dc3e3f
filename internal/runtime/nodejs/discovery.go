// SPDX-License-Identifier: MPL-2.0

package nodejs

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/charmbracelet/log"

	"fnctl-cli/internal/runtime"
	"fnctl-cli/pkg/buildspec"
	"fnctl-cli/pkg/types"
)

const (
	// discoveryAttempts is the fixed budget of tries to bring up the
	// supervised process before dynamic discovery fails for good.
	discoveryAttempts = 3
	// defaultRetryInterval spaces the spawn attempts.
	defaultRetryInterval = 500 * time.Millisecond
)

type (
	// terminator is the slice of Handle the coordinator needs: the
	// exactly-once shutdown of whatever it spawned.
	terminator interface {
		Terminate(ctx context.Context) error
	}

	// spawnFunc brings up one supervised process attempt on a port.
	spawnFunc func(ctx context.Context, port types.ListenPort, cfg runtime.Config, env map[string]string) (terminator, error)

	// RetryExhaustedError reports that every attempt in the spawn budget
	// failed. Terminal for the discovery run.
	RetryExhaustedError struct {
		Attempts int
		Last     error
	}

	// coordinator sequences the discovery strategies: SDK version gating,
	// then the exported manifest, then the supervised dynamic probe. It
	// owns the invariant that no process it spawned outlives a discovery
	// run, on any path.
	coordinator struct {
		reader        ManifestReader
		analyzer      LegacyAnalyzer
		prober        Prober
		spawn         spawnFunc
		findPort      func() (types.ListenPort, error)
		retryInterval time.Duration
		logger        *log.Logger
	}
)

// Error implements the error interface.
func (e *RetryExhaustedError) Error() string {
	return fmt.Sprintf("failed to start functions process after %d attempts: %v", e.Attempts, e.Last)
}

// Unwrap returns the last attempt's error.
func (e *RetryExhaustedError) Unwrap() error { return e.Last }

// discoverBuild runs the strategy chain and returns the build document
// from whichever strategy produced one.
func (c *coordinator) discoverBuild(ctx context.Context, pc runtime.ProjectContext, runtimeID, sdkVersion string, cfg runtime.Config, env map[string]string) (*buildspec.Build, error) {
	if chooseStrategy(sdkVersion, c.logger) == StrategyLegacyAnalysis {
		return c.analyzer.Analyze(ctx, pc, runtimeID, cfg, env)
	}

	// An exported manifest is strictly cheaper than probing: no process
	// ever runs, and the result is deterministic.
	b, err := c.reader.ReadManifest(ctx, pc.SourceDir.String(), runtimeID)
	if err != nil {
		return nil, err
	}
	if b != nil {
		c.logger.Debug("discovered functions from exported manifest", "endpoints", len(b.Endpoints))
		return b, nil
	}

	return c.discoverDynamic(ctx, cfg, env)
}

// discoverDynamic allocates a port, brings up a supervised process
// (retrying within the fixed budget), probes it for the declaration
// document, and always tears the process down before returning.
func (c *coordinator) discoverDynamic(ctx context.Context, cfg runtime.Config, env map[string]string) (*buildspec.Build, error) {
	port, err := c.findPort()
	if err != nil {
		return nil, err
	}

	var proc terminator
	attempt := 0
	spawnOnce := func() error {
		attempt++
		h, spawnErr := c.spawn(ctx, port, cfg, env)
		if spawnErr != nil {
			return spawnErr
		}
		proc = h
		return nil
	}
	onFailure := func(attemptErr error, _ time.Duration) {
		c.logger.Debug("spawn attempt failed", "attempt", attempt, "port", port, "error", attemptErr)
	}

	policy := backoff.WithMaxRetries(backoff.NewConstantBackOff(c.retryInterval), discoveryAttempts-1)
	if err := backoff.RetryNotify(spawnOnce, backoff.WithContext(policy, ctx), onFailure); err != nil {
		return nil, &RetryExhaustedError{Attempts: attempt, Last: err}
	}

	build, probeErr := c.prober.Probe(ctx, port)

	// Shutdown runs on every path, detached from the caller's
	// cancellation so a dead probe context cannot leave the child
	// running. A shutdown failure after a successful probe is logged,
	// never allowed to mask the result.
	if termErr := proc.Terminate(context.WithoutCancel(ctx)); termErr != nil {
		c.logger.Warn("failed to shut down functions process cleanly", "port", port, "error", termErr)
	}

	if probeErr != nil {
		return nil, probeErr
	}
	return build, nil
}
