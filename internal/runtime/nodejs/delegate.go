// SPDX-License-Identifier: MPL-2.0

package nodejs

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/mod/semver"

	"fnctl-cli/internal/issue"
	"fnctl-cli/internal/runtime"
	"fnctl-cli/pkg/buildspec"
	"fnctl-cli/pkg/types"
)

var (
	// ErrSDKNotInstalled is returned by Validate when the functions SDK
	// is missing from node_modules.
	ErrSDKNotInstalled = errors.New("functions SDK is not installed")
	// ErrSDKVersionTooOld is returned by Validate for SDK versions below
	// the minimum supported release.
	ErrSDKVersionTooOld = errors.New("functions SDK version is below the minimum supported")
)

// Delegate is the Node.js runtime delegate: the single entry point the
// deploy pipeline uses to validate, serve, and discover functions in a
// Node.js source directory.
type Delegate struct {
	pc        runtime.ProjectContext
	runtimeID string
	logger    *log.Logger

	supervisor *Supervisor
	coord      *coordinator

	// Zero-valued overrides mean "use the package default".
	livenessWindow time.Duration
	killFallback   time.Duration
	retryInterval  time.Duration
	nodeBinary     string
	findPort       func() (types.ListenPort, error)

	// SDK version is resolved at most once per delegate lifetime. The
	// explicit resolved flag (rather than sniffing the value) lets ""
	// (SDK not installed) cache like any other result.
	sdkVersionResolved bool
	sdkVersionValue    string
}

// Option configures a Delegate.
type Option func(*Delegate)

// WithLogger replaces the delegate's logger.
func WithLogger(logger *log.Logger) Option {
	return func(d *Delegate) { d.logger = logger }
}

// WithLivenessWindow overrides how long a freshly spawned process gets
// to crash before it is considered live.
func WithLivenessWindow(window time.Duration) Option {
	return func(d *Delegate) { d.livenessWindow = window }
}

// WithKillFallback overrides how long graceful shutdown may take before
// the process is killed outright.
func WithKillFallback(fallback time.Duration) Option {
	return func(d *Delegate) { d.killFallback = fallback }
}

// WithRetryInterval overrides the spacing between spawn attempts.
func WithRetryInterval(interval time.Duration) Option {
	return func(d *Delegate) { d.retryInterval = interval }
}

// WithNodeBinary overrides the Node.js binary used for legacy analysis.
func WithNodeBinary(path string) Option {
	return func(d *Delegate) { d.nodeBinary = path }
}

// WithPortRange overrides the window ports are allocated from. The
// bounds are half-open: [floor, ceil).
func WithPortRange(floor, ceil int) Option {
	return func(d *Delegate) {
		d.findPort = func() (types.ListenPort, error) { return findOpenPortIn(floor, ceil) }
	}
}

// Factory is the runtime.DelegateFactory for Node.js. It claims a source
// directory iff it contains a package.json.
func Factory(pc runtime.ProjectContext) (runtime.Delegate, error) {
	return NewDelegate(pc)
}

// NewDelegate constructs the delegate after detecting that the source
// directory is a Node.js project. Returns runtime.ErrRuntimeNotDetected
// when no package.json is present. The runtime identity is resolved
// here, once per delegate, from the project's declared engine
// constraint.
func NewDelegate(pc runtime.ProjectContext, opts ...Option) (*Delegate, error) {
	if ok, errs := pc.SourceDir.IsValid(); !ok {
		return nil, errs[0]
	}

	pkg, err := readPackageJSON(pc.SourceDir.String())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, runtime.ErrRuntimeNotDetected
		}
		return nil, err
	}

	d := &Delegate{
		pc:        pc,
		runtimeID: "nodejs" + nodeMajorFromEngines(pkg.Engines),
		logger:    log.NewWithOptions(os.Stderr, log.Options{Prefix: "functions"}),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.findPort == nil {
		d.findPort = findOpenPort
	}
	if d.retryInterval <= 0 {
		d.retryInterval = defaultRetryInterval
	}

	analyzer := newNodeAnalyzer(d.logger)
	if d.nodeBinary != "" {
		analyzer.nodeBinary = d.nodeBinary
	}

	d.supervisor = &Supervisor{
		SourceDir:      pc.SourceDir.String(),
		LivenessWindow: d.livenessWindow,
		KillFallback:   d.killFallback,
		Logger:         d.logger,
	}
	d.coord = &coordinator{
		reader:        newFileManifestReader(d.logger),
		analyzer:      analyzer,
		prober:        newHTTPProber(),
		spawn:         d.spawnForDiscovery,
		findPort:      d.findPort,
		retryInterval: d.retryInterval,
		logger:        d.logger,
	}

	return d, nil
}

// FactoryWith returns a Factory with options pre-bound, for callers that
// carry configuration (timers, port range) into registry detection.
func FactoryWith(opts ...Option) runtime.DelegateFactory {
	return func(pc runtime.ProjectContext) (runtime.Delegate, error) {
		return NewDelegate(pc, opts...)
	}
}

// spawnForDiscovery adapts the supervisor to the coordinator's seam.
func (d *Delegate) spawnForDiscovery(ctx context.Context, port types.ListenPort, cfg runtime.Config, env map[string]string) (terminator, error) {
	h, err := d.supervisor.Spawn(ctx, port, cfg, env)
	if err != nil {
		return nil, err
	}
	return h, nil
}

// Name implements runtime.Delegate.
func (d *Delegate) Name() runtime.RuntimeName { return runtime.RuntimeNodeJS }

// RuntimeID implements runtime.Delegate.
func (d *Delegate) RuntimeID() string { return d.runtimeID }

// resolveSDKVersion returns the installed functions SDK version, reading
// it from node_modules at most once per delegate lifetime. "" means the
// SDK is not installed.
func (d *Delegate) resolveSDKVersion() (string, error) {
	if d.sdkVersionResolved {
		return d.sdkVersionValue, nil
	}
	v, err := installedSDKVersion(d.pc.SourceDir.String())
	if err != nil {
		return "", err
	}
	d.sdkVersionResolved = true
	d.sdkVersionValue = v
	return v, nil
}

// Validate enforces that the source directory is deployable. Unlike
// discovery, which soft-falls back to legacy analysis for old or
// unparsable SDK versions, validation fails hard on an SDK below the
// minimum, and on a malformed exported manifest.
func (d *Delegate) Validate(ctx context.Context) error {
	sdkVer, err := d.resolveSDKVersion()
	if err != nil {
		return err
	}
	if sdkVer == "" {
		return issue.NewErrorContext().
			WithOperation("validate functions source").
			WithResource(d.pc.SourceDir.String()).
			WithSuggestion("Install the functions SDK: npm install --save " + sdkPackageName).
			Wrap(ErrSDKNotInstalled).
			BuildError()
	}

	norm, err := normalizeVersion(sdkVer)
	if err != nil {
		return issue.NewErrorContext().
			WithOperation("validate functions SDK version").
			WithResource(sdkVer).
			WithSuggestion("Reinstall the functions SDK: npm install --save " + sdkPackageName + "@latest").
			Wrap(err).
			BuildError()
	}
	if floor, _ := normalizeVersion(minSDKVersion); semver.Compare(norm, floor) < 0 {
		return issue.NewErrorContext().
			WithOperation("validate functions SDK version").
			WithResource(sdkVer).
			WithSuggestion(fmt.Sprintf("Upgrade to %s %s or newer: npm install --save %s@latest", sdkPackageName, minSDKVersion, sdkPackageName)).
			Wrap(fmt.Errorf("%w: %s < %s", ErrSDKVersionTooOld, sdkVer, minSDKVersion)).
			BuildError()
	}

	// An exported manifest, when present, must at least parse; shipping
	// a corrupt one to deploy would fail much later and more confusingly.
	if _, err := d.coord.reader.ReadManifest(ctx, d.pc.SourceDir.String(), d.runtimeID); err != nil {
		return issue.NewErrorContext().
			WithOperation("validate exported manifest").
			WithResource(filepath.Join(d.pc.SourceDir.String(), manifestFileName)).
			WithSuggestion("Re-export the manifest or delete the stale file").
			Wrap(err).
			BuildError()
	}

	return nil
}

// Build implements runtime.Delegate. Node.js sources are executed
// directly; there is no compile step.
func (d *Delegate) Build(context.Context) error { return nil }

// Watch implements runtime.Delegate. No build step, nothing to watch.
func (d *Delegate) Watch(context.Context) error { return nil }

// Serve launches the function server for interactive local serving. The
// caller owns the returned handle and must terminate it exactly once.
func (d *Delegate) Serve(ctx context.Context, port types.ListenPort, cfg runtime.Config, env map[string]string) (runtime.ServeHandle, error) {
	if err := port.Validate(); err != nil {
		return nil, err
	}
	if port == 0 {
		allocated, err := d.findPort()
		if err != nil {
			return nil, err
		}
		port = allocated
	}
	return d.supervisor.Spawn(ctx, port, cfg, env)
}

// DiscoverBuild determines the declared functions. See the package doc
// for the strategy chain; any process spawned along the way is
// terminated before this returns, success or failure.
func (d *Delegate) DiscoverBuild(ctx context.Context, cfg runtime.Config, env map[string]string) (*buildspec.Build, error) {
	sdkVer, err := d.resolveSDKVersion()
	if err != nil {
		return nil, err
	}
	return d.coord.discoverBuild(ctx, d.pc, d.runtimeID, sdkVer, cfg, env)
}
