// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"

	"fnctl-cli/internal/config"
	"fnctl-cli/internal/runtime"
	"fnctl-cli/internal/runtime/nodejs"
	"fnctl-cli/pkg/types"
)

type (
	// App wires CLI services and shared dependencies. It is the composition
	// root for the CLI layer: all Cobra command handlers receive an App
	// reference and delegate business logic through its services.
	App struct {
		Config ConfigProvider
		stdout io.Writer
		stderr io.Writer
	}

	// Dependencies defines the injection points for building an App. Nil
	// fields are replaced with production defaults by NewApp. Tests can
	// supply mock implementations to isolate specific service behavior.
	Dependencies struct {
		Config ConfigProvider
		Stdout io.Writer
		Stderr io.Writer
	}

	// ConfigProvider loads configuration using explicit options.
	// This abstraction enables testing with custom config sources or mock
	// implementations.
	ConfigProvider interface {
		Load(ctx context.Context, opts config.LoadOptions) (*config.Config, error)
	}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) *App {
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}

	return &App{
		Config: deps.Config,
		stdout: deps.Stdout,
		stderr: deps.Stderr,
	}
}

// loadConfig loads configuration for a command invocation. An explicit
// --config path must load or the command aborts; the default lookup falls
// back to defaults with a warning, keeping fresh installs operational.
func (a *App) loadConfig(ctx context.Context) (*config.Config, error) {
	cfg, err := a.Config.Load(ctx, config.LoadOptions{ConfigFilePath: types.FilesystemPath(cfgFile)})
	if err == nil {
		return cfg, nil
	}

	if cfgFile != "" {
		return nil, newServiceError(
			fmt.Errorf("failed to load config from %s: %w", cfgFile, err),
			0, ErrorStyle.Render("Error: ")+"failed to load config from "+cfgFile+"\n")
	}

	fmt.Fprintln(a.stderr, WarningStyle.Render("Warning: ")+"failed to load config, using defaults: "+formatErrorForDisplay(err, verbose))
	return config.DefaultConfig(), nil
}

// delegateLogger builds the logger supervised processes and discovery
// report through, honoring the verbose flag.
func (a *App) delegateLogger() *log.Logger {
	logger := log.NewWithOptions(a.stderr, log.Options{Prefix: "functions"})
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}

// delegateOptions translates loaded configuration into runtime delegate
// options. Zero-valued config fields fall through to package defaults.
func (a *App) delegateOptions(cfg *config.Config) []nodejs.Option {
	opts := []nodejs.Option{
		nodejs.WithLogger(a.delegateLogger()),
	}
	if d := cfg.Discovery.LivenessWindow(); d > 0 {
		opts = append(opts, nodejs.WithLivenessWindow(d))
	}
	if d := cfg.Discovery.KillFallback(); d > 0 {
		opts = append(opts, nodejs.WithKillFallback(d))
	}
	if d := cfg.Discovery.RetryInterval(); d > 0 {
		opts = append(opts, nodejs.WithRetryInterval(d))
	}
	if cfg.NodeBinary != "" {
		opts = append(opts, nodejs.WithNodeBinary(cfg.NodeBinary.String()))
	}
	if cfg.PortRange.Min != 0 || cfg.PortRange.Max != 0 {
		opts = append(opts, nodejs.WithPortRange(cfg.PortRange.Min, cfg.PortRange.Max))
	}
	return opts
}

// delegateFor detects the runtime for a source directory and returns its
// delegate, configured from cfg. The source dir defaults to the current
// directory; the project falls back to the configured default project.
func (a *App) delegateFor(cfg *config.Config, sourceDir, project string) (runtime.Delegate, error) {
	if sourceDir == "" {
		sourceDir = "."
	}
	if project == "" {
		project = cfg.DefaultProject
	}

	reg := runtime.NewRegistry()
	reg.Register(runtime.RuntimeNodeJS, nodejs.FactoryWith(a.delegateOptions(cfg)...))

	d, err := reg.Detect(runtime.ProjectContext{
		ProjectID: project,
		SourceDir: types.FilesystemPath(sourceDir),
	})
	if err != nil {
		return nil, serviceErrorFor(err)
	}
	return d, nil
}
