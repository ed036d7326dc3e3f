// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"testing"
	"time"
)

func TestColorScheme_IsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		scheme  ColorScheme
		want    bool
		wantErr bool
	}{
		{ColorSchemeAuto, true, false},
		{ColorSchemeDark, true, false},
		{ColorSchemeLight, true, false},
		{"", false, true},
		{"garbage", false, true},
		{"AUTO", false, true},
		{"Dark", false, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.scheme), func(t *testing.T) {
			t.Parallel()
			isValid, errs := tt.scheme.IsValid()
			if isValid != tt.want {
				t.Errorf("ColorScheme(%q).IsValid() = %v, want %v", tt.scheme, isValid, tt.want)
			}
			if tt.wantErr {
				if len(errs) == 0 {
					t.Fatalf("ColorScheme(%q).IsValid() returned no errors, want error", tt.scheme)
				}
				if !errors.Is(errs[0], ErrInvalidColorScheme) {
					t.Errorf("error should wrap ErrInvalidColorScheme, got: %v", errs[0])
				}
			} else if len(errs) > 0 {
				t.Errorf("ColorScheme(%q).IsValid() returned unexpected errors: %v", tt.scheme, errs)
			}
		})
	}
}

func TestNodeBinaryPath_IsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		path    NodeBinaryPath
		want    bool
		wantErr bool
	}{
		{"empty means resolve from PATH", "", true, false},
		{"absolute path", "/usr/local/bin/node", true, false},
		{"relative path", "bin/node", true, false},
		{"whitespace only", "   ", false, true},
		{"tab only", "\t", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			isValid, errs := tt.path.IsValid()
			if isValid != tt.want {
				t.Errorf("NodeBinaryPath(%q).IsValid() = %v, want %v", tt.path, isValid, tt.want)
			}
			if tt.wantErr {
				if len(errs) == 0 {
					t.Fatalf("NodeBinaryPath(%q).IsValid() returned no errors, want error", tt.path)
				}
				if !errors.Is(errs[0], ErrInvalidNodeBinaryPath) {
					t.Errorf("error should wrap ErrInvalidNodeBinaryPath, got: %v", errs[0])
				}
			} else if len(errs) > 0 {
				t.Errorf("NodeBinaryPath(%q).IsValid() returned unexpected errors: %v", tt.path, errs)
			}
		})
	}
}

func TestDiscoveryConfig_IsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  DiscoveryConfig
		want bool
	}{
		{"zero value means use defaults", DiscoveryConfig{}, true},
		{"all timers set", DiscoveryConfig{LivenessWindowSecs: 5, KillFallbackSecs: 10, RetryIntervalMsecs: 500}, true},
		{"negative liveness window", DiscoveryConfig{LivenessWindowSecs: -1}, false},
		{"negative kill fallback", DiscoveryConfig{KillFallbackSecs: -1}, false},
		{"negative retry interval", DiscoveryConfig{RetryIntervalMsecs: -500}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			isValid, errs := tt.cfg.IsValid()
			if isValid != tt.want {
				t.Errorf("DiscoveryConfig(%+v).IsValid() = %v, want %v", tt.cfg, isValid, tt.want)
			}
			if !tt.want {
				if len(errs) == 0 {
					t.Fatal("invalid DiscoveryConfig should return errors")
				}
				if !errors.Is(errs[0], ErrInvalidDiscoveryConfig) {
					t.Errorf("error should wrap ErrInvalidDiscoveryConfig, got: %v", errs[0])
				}
			}
		})
	}
}

func TestDiscoveryConfig_DurationAccessors(t *testing.T) {
	t.Parallel()

	cfg := DiscoveryConfig{
		LivenessWindowSecs: 7,
		KillFallbackSecs:   15,
		RetryIntervalMsecs: 250,
	}

	if got := cfg.LivenessWindow(); got != 7*time.Second {
		t.Errorf("LivenessWindow() = %v, want 7s", got)
	}
	if got := cfg.KillFallback(); got != 15*time.Second {
		t.Errorf("KillFallback() = %v, want 15s", got)
	}
	if got := cfg.RetryInterval(); got != 250*time.Millisecond {
		t.Errorf("RetryInterval() = %v, want 250ms", got)
	}

	var zero DiscoveryConfig
	if zero.LivenessWindow() != 0 || zero.KillFallback() != 0 || zero.RetryInterval() != 0 {
		t.Error("zero-value DiscoveryConfig accessors should all return 0")
	}
}

func TestPortRangeConfig_IsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  PortRangeConfig
		want bool
	}{
		{"zero value means use defaults", PortRangeConfig{}, true},
		{"default window", PortRangeConfig{Min: 10000, Max: 50000}, true},
		{"tightest valid window", PortRangeConfig{Min: 1024, Max: 1025}, true},
		{"full upper window", PortRangeConfig{Min: 65535, Max: 65536}, true},
		{"min below privileged boundary", PortRangeConfig{Min: 80, Max: 8080}, false},
		{"max not above min", PortRangeConfig{Min: 10000, Max: 10000}, false},
		{"inverted", PortRangeConfig{Min: 50000, Max: 10000}, false},
		{"max beyond port space", PortRangeConfig{Min: 10000, Max: 70000}, false},
		{"only max set", PortRangeConfig{Max: 50000}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			isValid, errs := tt.cfg.IsValid()
			if isValid != tt.want {
				t.Errorf("PortRangeConfig(%+v).IsValid() = %v, want %v", tt.cfg, isValid, tt.want)
			}
			if !tt.want {
				if len(errs) == 0 {
					t.Fatal("invalid PortRangeConfig should return errors")
				}
				var rangeErr *InvalidPortRangeError
				if !errors.As(errs[0], &rangeErr) {
					t.Fatalf("error should be *InvalidPortRangeError, got: %T", errs[0])
				}
				if !errors.Is(errs[0], ErrInvalidPortRange) {
					t.Errorf("error should wrap ErrInvalidPortRange, got: %v", errs[0])
				}
			}
		})
	}
}

func TestUIConfig_IsValid(t *testing.T) {
	t.Parallel()

	valid := UIConfig{ColorScheme: ColorSchemeDark, Verbose: true}
	if isValid, errs := valid.IsValid(); !isValid {
		t.Errorf("valid UIConfig reported invalid: %v", errs)
	}

	invalid := UIConfig{ColorScheme: "sepia"}
	isValid, errs := invalid.IsValid()
	if isValid {
		t.Fatal("UIConfig with unknown color scheme should be invalid")
	}
	if !errors.Is(errs[0], ErrInvalidUIConfig) {
		t.Errorf("error should wrap ErrInvalidUIConfig, got: %v", errs[0])
	}

	var uiErr *InvalidUIConfigError
	if !errors.As(errs[0], &uiErr) {
		t.Fatalf("error should be *InvalidUIConfigError, got: %T", errs[0])
	}
	if len(uiErr.FieldErrors) != 1 || !errors.Is(uiErr.FieldErrors[0], ErrInvalidColorScheme) {
		t.Errorf("field errors should hold the color scheme error, got: %v", uiErr.FieldErrors)
	}
}

func TestConfig_IsValid(t *testing.T) {
	t.Parallel()

	if isValid, errs := DefaultConfig().IsValid(); !isValid {
		t.Fatalf("DefaultConfig() must be valid, got: %v", errs)
	}

	bad := DefaultConfig()
	bad.NodeBinary = "   "
	bad.PortRange = PortRangeConfig{Min: 50000, Max: 10000}

	isValid, errs := bad.IsValid()
	if isValid {
		t.Fatal("Config with invalid fields should be invalid")
	}
	if !errors.Is(errs[0], ErrInvalidConfig) {
		t.Errorf("error should wrap ErrInvalidConfig, got: %v", errs[0])
	}

	var cfgErr *InvalidConfigError
	if !errors.As(errs[0], &cfgErr) {
		t.Fatalf("error should be *InvalidConfigError, got: %T", errs[0])
	}
	if len(cfgErr.FieldErrors) != 2 {
		t.Errorf("expected 2 field errors (node binary + port range), got %d: %v",
			len(cfgErr.FieldErrors), cfgErr.FieldErrors)
	}
}

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()

	if cfg.DefaultProject != "" {
		t.Errorf("expected default project to be empty, got %q", cfg.DefaultProject)
	}
	if cfg.NodeBinary != "" {
		t.Errorf("expected node binary to default to PATH resolution, got %q", cfg.NodeBinary)
	}
	if cfg.Discovery.LivenessWindowSecs != 5 {
		t.Errorf("expected liveness window of 5s, got %d", cfg.Discovery.LivenessWindowSecs)
	}
	if cfg.Discovery.KillFallbackSecs != 10 {
		t.Errorf("expected kill fallback of 10s, got %d", cfg.Discovery.KillFallbackSecs)
	}
	if cfg.Discovery.RetryIntervalMsecs != 500 {
		t.Errorf("expected retry interval of 500ms, got %d", cfg.Discovery.RetryIntervalMsecs)
	}
	if cfg.PortRange.Min != 10000 || cfg.PortRange.Max != 50000 {
		t.Errorf("expected port range [10000, 50000), got [%d, %d)", cfg.PortRange.Min, cfg.PortRange.Max)
	}
	if cfg.UI.ColorScheme != ColorSchemeAuto {
		t.Errorf("expected default color scheme to be auto, got %s", cfg.UI.ColorScheme)
	}
	if cfg.UI.Verbose {
		t.Error("expected default verbose to be false")
	}
}
