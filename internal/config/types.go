// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"
)

var (
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidNodeBinaryPath is returned when a NodeBinaryPath value is whitespace-only.
	ErrInvalidNodeBinaryPath = errors.New("invalid node binary path")
	// ErrInvalidDiscoveryConfig is the sentinel error wrapped by InvalidDiscoveryConfigError.
	ErrInvalidDiscoveryConfig = errors.New("invalid discovery config")
	// ErrInvalidPortRange is the sentinel error wrapped by InvalidPortRangeError.
	ErrInvalidPortRange = errors.New("invalid port range")
	// ErrInvalidUIConfig is the sentinel error wrapped by InvalidUIConfigError.
	ErrInvalidUIConfig = errors.New("invalid UI config")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// ColorScheme specifies the terminal color scheme preference.
	ColorScheme string

	// InvalidColorSchemeError is returned when a ColorScheme value is not recognized.
	// It wraps ErrInvalidColorScheme for errors.Is() compatibility.
	InvalidColorSchemeError struct {
		Value ColorScheme
	}

	// NodeBinaryPath represents a filesystem path to the Node.js binary.
	// The zero value ("") is valid and means "resolve node from PATH".
	NodeBinaryPath string

	// InvalidNodeBinaryPathError is returned when a NodeBinaryPath value is
	// non-empty but whitespace-only.
	InvalidNodeBinaryPathError struct {
		Value NodeBinaryPath
	}

	// InvalidDiscoveryConfigError is returned when a DiscoveryConfig has invalid
	// fields. It wraps ErrInvalidDiscoveryConfig for errors.Is() compatibility
	// and collects field-level validation errors.
	InvalidDiscoveryConfigError struct {
		FieldErrors []error
	}

	// InvalidPortRangeError is returned when a PortRangeConfig has invalid fields.
	// It wraps ErrInvalidPortRange for errors.Is() compatibility.
	InvalidPortRangeError struct {
		Min, Max int
		Reason   string
	}

	// InvalidUIConfigError is returned when a UIConfig has invalid fields.
	// It wraps ErrInvalidUIConfig for errors.Is() compatibility and collects
	// field-level validation errors.
	InvalidUIConfigError struct {
		FieldErrors []error
	}

	// InvalidConfigError is returned when a Config has invalid fields.
	// It wraps ErrInvalidConfig for errors.Is() compatibility and collects
	// field-level validation errors from all sub-components.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the application configuration.
	Config struct {
		// DefaultProject is the deploy target project used when no
		// --project flag is given.
		DefaultProject string `json:"default_project" mapstructure:"default_project"`
		// NodeBinary overrides the Node.js binary used for legacy static
		// analysis ("" = resolve from PATH).
		NodeBinary NodeBinaryPath `json:"node_binary" mapstructure:"node_binary"`
		// Discovery configures the supervised discovery lifecycle timers.
		Discovery DiscoveryConfig `json:"discovery" mapstructure:"discovery"`
		// PortRange bounds the ephemeral port window used for supervised
		// function processes.
		PortRange PortRangeConfig `json:"port_range" mapstructure:"port_range"`
		// UI configures the user interface.
		UI UIConfig `json:"ui" mapstructure:"ui"`
	}

	// DiscoveryConfig configures the supervised discovery lifecycle.
	// Zero values mean "use the built-in default" for each timer.
	DiscoveryConfig struct {
		// LivenessWindowSecs is how long a freshly spawned process gets to
		// crash before it is considered live enough to probe.
		LivenessWindowSecs int `json:"liveness_window_secs" mapstructure:"liveness_window_secs"`
		// KillFallbackSecs bounds graceful shutdown before a forced kill.
		KillFallbackSecs int `json:"kill_fallback_secs" mapstructure:"kill_fallback_secs"`
		// RetryIntervalMsecs spaces the spawn attempts within the retry budget.
		RetryIntervalMsecs int `json:"retry_interval_msecs" mapstructure:"retry_interval_msecs"`
	}

	// PortRangeConfig bounds the random port allocation window.
	PortRangeConfig struct {
		// Min is the inclusive lower bound of the allocation window.
		Min int `json:"min" mapstructure:"min"`
		// Max is the exclusive upper bound of the allocation window.
		Max int `json:"max" mapstructure:"max"`
	}

	// UIConfig configures the user interface.
	UIConfig struct {
		// ColorScheme sets the color scheme
		ColorScheme ColorScheme `json:"color_scheme" mapstructure:"color_scheme"`
		// Verbose enables verbose output
		Verbose bool `json:"verbose" mapstructure:"verbose"`
	}
)

// LivenessWindow returns the configured liveness window as a duration
// (0 = use the built-in default).
func (c DiscoveryConfig) LivenessWindow() time.Duration {
	return time.Duration(c.LivenessWindowSecs) * time.Second
}

// KillFallback returns the configured kill fallback as a duration
// (0 = use the built-in default).
func (c DiscoveryConfig) KillFallback() time.Duration {
	return time.Duration(c.KillFallbackSecs) * time.Second
}

// RetryInterval returns the configured spawn retry spacing as a duration
// (0 = use the built-in default).
func (c DiscoveryConfig) RetryInterval() time.Duration {
	return time.Duration(c.RetryIntervalMsecs) * time.Millisecond
}

// IsValid returns whether the DiscoveryConfig has valid fields.
// All timers must be non-negative; zero means "use default".
func (c DiscoveryConfig) IsValid() (bool, []error) {
	var errs []error
	if c.LivenessWindowSecs < 0 {
		errs = append(errs, fmt.Errorf("liveness_window_secs must be non-negative, got %d", c.LivenessWindowSecs))
	}
	if c.KillFallbackSecs < 0 {
		errs = append(errs, fmt.Errorf("kill_fallback_secs must be non-negative, got %d", c.KillFallbackSecs))
	}
	if c.RetryIntervalMsecs < 0 {
		errs = append(errs, fmt.Errorf("retry_interval_msecs must be non-negative, got %d", c.RetryIntervalMsecs))
	}
	if len(errs) > 0 {
		return false, []error{&InvalidDiscoveryConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidDiscoveryConfigError.
func (e *InvalidDiscoveryConfigError) Error() string {
	return fmt.Sprintf("invalid discovery config: %d field error(s)", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidDiscoveryConfig for errors.Is() compatibility.
func (e *InvalidDiscoveryConfigError) Unwrap() error { return ErrInvalidDiscoveryConfig }

// IsValid returns whether the PortRangeConfig describes a usable window.
// The zero value (both bounds 0) is valid and means "use defaults".
func (c PortRangeConfig) IsValid() (bool, []error) {
	if c.Min == 0 && c.Max == 0 {
		return true, nil
	}
	if c.Min < 1024 || c.Min > 65535 {
		return false, []error{&InvalidPortRangeError{Min: c.Min, Max: c.Max, Reason: "min must be in [1024, 65535]"}}
	}
	if c.Max <= c.Min || c.Max > 65536 {
		return false, []error{&InvalidPortRangeError{Min: c.Min, Max: c.Max, Reason: "max must be greater than min and at most 65536"}}
	}
	return true, nil
}

// Error implements the error interface for InvalidPortRangeError.
func (e *InvalidPortRangeError) Error() string {
	return fmt.Sprintf("invalid port range [%d, %d): %s", e.Min, e.Max, e.Reason)
}

// Unwrap returns ErrInvalidPortRange for errors.Is() compatibility.
func (e *InvalidPortRangeError) Unwrap() error { return ErrInvalidPortRange }

// IsValid returns whether the UIConfig has valid fields.
// It delegates to ColorScheme.IsValid(); bool fields need no validation.
func (c UIConfig) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.ColorScheme.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidUIConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidUIConfigError.
func (e *InvalidUIConfigError) Error() string {
	return fmt.Sprintf("invalid UI config: %d field error(s)", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidUIConfig for errors.Is() compatibility.
func (e *InvalidUIConfigError) Unwrap() error { return ErrInvalidUIConfig }

// IsValid returns whether the Config has valid fields.
// It delegates to NodeBinary.IsValid(), Discovery.IsValid(),
// PortRange.IsValid(), and UI.IsValid(). DefaultProject is free-form.
func (c Config) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.NodeBinary.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.Discovery.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.PortRange.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.UI.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid config: %d field error(s)", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidConfig for errors.Is() compatibility.
func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }

// String returns the string representation of the NodeBinaryPath.
func (p NodeBinaryPath) String() string { return string(p) }

// IsValid returns whether the NodeBinaryPath is valid.
// The zero value ("") is valid (means "resolve node from PATH").
// Non-zero values must not be whitespace-only.
func (p NodeBinaryPath) IsValid() (bool, []error) {
	if p == "" {
		return true, nil
	}
	if strings.TrimSpace(string(p)) == "" {
		return false, []error{&InvalidNodeBinaryPathError{Value: p}}
	}
	return true, nil
}

// Error implements the error interface for InvalidNodeBinaryPathError.
func (e *InvalidNodeBinaryPathError) Error() string {
	return fmt.Sprintf("invalid node binary path %q: non-empty value must not be whitespace-only", e.Value)
}

// Unwrap returns ErrInvalidNodeBinaryPath for errors.Is() compatibility.
func (e *InvalidNodeBinaryPathError) Unwrap() error { return ErrInvalidNodeBinaryPath }

// Error implements the error interface for InvalidColorSchemeError.
func (e *InvalidColorSchemeError) Error() string {
	return fmt.Sprintf("invalid color scheme %q (valid: auto, dark, light)", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidColorSchemeError) Unwrap() error {
	return ErrInvalidColorScheme
}

// String returns the string representation of the ColorScheme.
func (cs ColorScheme) String() string { return string(cs) }

// IsValid returns whether the ColorScheme is one of the defined color schemes,
// and a list of validation errors if it is not.
func (cs ColorScheme) IsValid() (bool, []error) {
	switch cs {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return true, nil
	default:
		return false, []error{&InvalidColorSchemeError{Value: cs}}
	}
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		DefaultProject: "",
		NodeBinary:     "", // Will resolve "node" from PATH if empty
		Discovery: DiscoveryConfig{
			LivenessWindowSecs: 5,
			KillFallbackSecs:   10,
			RetryIntervalMsecs: 500,
		},
		PortRange: PortRangeConfig{
			Min: 10000,
			Max: 50000,
		},
		UI: UIConfig{
			ColorScheme: ColorSchemeAuto,
			Verbose:     false,
		},
	}
}
