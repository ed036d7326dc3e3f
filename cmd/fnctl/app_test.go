// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"fnctl-cli/internal/config"
	"fnctl-cli/internal/runtime"
)

// stubConfigProvider returns a canned config or error.
type stubConfigProvider struct {
	cfg *config.Config
	err error
}

func (s *stubConfigProvider) Load(context.Context, config.LoadOptions) (*config.Config, error) {
	return s.cfg, s.err
}

func TestApp_LoadConfig_FallsBackToDefaults(t *testing.T) {
	// Not parallel: reads package-level cfgFile/verbose flag vars.
	cfgFile = ""

	var stderr bytes.Buffer
	app := NewApp(Dependencies{
		Config: &stubConfigProvider{err: errors.New("broken config")},
		Stderr: &stderr,
	})

	cfg, err := app.loadConfig(context.Background())
	if err != nil {
		t.Fatalf("loadConfig should fall back to defaults, got: %v", err)
	}
	if *cfg != *config.DefaultConfig() {
		t.Errorf("expected default config, got %+v", cfg)
	}
	if stderr.Len() == 0 {
		t.Error("fallback should print a warning")
	}
}

func TestApp_LoadConfig_ExplicitPathMustLoad(t *testing.T) {
	// Not parallel: mutates the package-level cfgFile flag var.
	cfgFile = "/nonexistent/config.cue"
	t.Cleanup(func() { cfgFile = "" })

	app := NewApp(Dependencies{
		Config: &stubConfigProvider{err: errors.New("no such file")},
		Stderr: &bytes.Buffer{},
	})

	if _, err := app.loadConfig(context.Background()); err == nil {
		t.Fatal("explicit --config path failing to load must be an error")
	}
}

func TestApp_DelegateOptions_FromConfig(t *testing.T) {
	t.Parallel()

	app := NewApp(Dependencies{Stderr: &bytes.Buffer{}, Stdout: &bytes.Buffer{}})

	cfg := config.DefaultConfig()
	cfg.NodeBinary = "/opt/node/bin/node"
	cfg.Discovery.LivenessWindowSecs = 3

	// logger + liveness + kill fallback + retry interval + node binary + port range
	opts := app.delegateOptions(cfg)
	if len(opts) != 6 {
		t.Errorf("expected 6 delegate options for a fully populated config, got %d", len(opts))
	}

	// Zeroed config contributes only the logger.
	opts = app.delegateOptions(&config.Config{})
	if len(opts) != 1 {
		t.Errorf("expected only the logger option for a zero config, got %d", len(opts))
	}
}

func TestApp_DelegateFor(t *testing.T) {
	t.Parallel()

	app := NewApp(Dependencies{Stderr: &bytes.Buffer{}, Stdout: &bytes.Buffer{}})
	cfg := config.DefaultConfig()
	cfg.Discovery.LivenessWindowSecs = 1
	cfg.Discovery.KillFallbackSecs = 1
	cfg.Discovery.RetryIntervalMsecs = 1

	t.Run("detects a nodejs source directory", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		if err := os.WriteFile(filepath.Join(dir, "package.json"), []byte(`{"engines": {"node": "22"}}`), 0o644); err != nil {
			t.Fatalf("failed to write package.json: %v", err)
		}

		d, err := app.delegateFor(cfg, dir, "demo")
		if err != nil {
			t.Fatalf("delegateFor: %v", err)
		}
		if d.RuntimeID() != "nodejs22" {
			t.Errorf("RuntimeID() = %q, want nodejs22", d.RuntimeID())
		}
	})

	t.Run("undetected source yields a catalogued ServiceError", func(t *testing.T) {
		t.Parallel()
		_, err := app.delegateFor(cfg, t.TempDir(), "demo")
		if err == nil {
			t.Fatal("expected detection failure for empty directory")
		}
		var svcErr *ServiceError
		if !errors.As(err, &svcErr) {
			t.Fatalf("expected *ServiceError, got %T", err)
		}
		if !errors.Is(err, runtime.ErrRuntimeNotDetected) {
			t.Errorf("error = %v, want ErrRuntimeNotDetected in chain", err)
		}
	})
}
