// SPDX-License-Identifier: MPL-2.0

package buildspec

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// SpecVersion is the build document schema version this tool produces
// and accepts. Manifests declaring a different version are rejected.
const SpecVersion = "v1alpha1"

// ErrInvalidBuild is the sentinel error wrapped by all build document
// validation failures.
var ErrInvalidBuild = errors.New("invalid build document")

type (
	// Build is the structured result of function discovery. It is owned
	// by the caller once returned; discovery never retains a reference.
	Build struct {
		// SpecVersion identifies the document schema (see SpecVersion).
		SpecVersion string `yaml:"specVersion" json:"specVersion"`
		// Runtime optionally records the runtime identity the document was
		// exported for (e.g. "nodejs22"). Consumers treat a mismatch as
		// "no manifest", not as an error.
		Runtime string `yaml:"runtime,omitempty" json:"runtime,omitempty"`
		// RequiredAPIs lists platform APIs the declared functions depend on.
		RequiredAPIs []RequiredAPI `yaml:"requiredAPIs,omitempty" json:"requiredAPIs,omitempty"`
		// Endpoints maps function IDs to their declared configuration.
		Endpoints map[string]Endpoint `yaml:"endpoints" json:"endpoints"`
		// Params are deploy-time parameters referenced by endpoint config.
		Params []Param `yaml:"params,omitempty" json:"params,omitempty"`
	}

	// RequiredAPI is a platform API dependency declared by a function.
	RequiredAPI struct {
		API    string `yaml:"api" json:"api"`
		Reason string `yaml:"reason,omitempty" json:"reason,omitempty"`
	}

	// Param is a deploy-time parameter declaration.
	Param struct {
		Name    string `yaml:"name" json:"name"`
		Label   string `yaml:"label,omitempty" json:"label,omitempty"`
		Type    string `yaml:"type,omitempty" json:"type,omitempty"`
		Default string `yaml:"default,omitempty" json:"default,omitempty"`
	}

	// Endpoint is one declared function: its entry point plus trigger and
	// resource configuration. Exactly one trigger field must be set.
	Endpoint struct {
		// EntryPoint is the exported symbol name inside the user's module.
		EntryPoint string `yaml:"entryPoint" json:"entryPoint"`
		// Region lists deployment regions. Empty means the platform default.
		Region []string `yaml:"region,omitempty" json:"region,omitempty"`
		// AvailableMemoryMB is the memory allocation in MiB (0 = default).
		AvailableMemoryMB int `yaml:"availableMemoryMb,omitempty" json:"availableMemoryMb,omitempty"`
		// TimeoutSeconds is the execution deadline (0 = default).
		TimeoutSeconds int `yaml:"timeoutSeconds,omitempty" json:"timeoutSeconds,omitempty"`
		// MinInstances / MaxInstances bound autoscaling (0 = default).
		MinInstances int `yaml:"minInstances,omitempty" json:"minInstances,omitempty"`
		MaxInstances int `yaml:"maxInstances,omitempty" json:"maxInstances,omitempty"`

		HTTPSTrigger    *HTTPSTrigger    `yaml:"httpsTrigger,omitempty" json:"httpsTrigger,omitempty"`
		EventTrigger    *EventTrigger    `yaml:"eventTrigger,omitempty" json:"eventTrigger,omitempty"`
		ScheduleTrigger *ScheduleTrigger `yaml:"scheduleTrigger,omitempty" json:"scheduleTrigger,omitempty"`
	}

	// HTTPSTrigger marks an endpoint as invocable over HTTPS.
	HTTPSTrigger struct {
		// Invoker restricts who may invoke the function (empty = platform default).
		Invoker []string `yaml:"invoker,omitempty" json:"invoker,omitempty"`
	}

	// EventTrigger subscribes an endpoint to a platform event stream.
	EventTrigger struct {
		EventType   string            `yaml:"eventType" json:"eventType"`
		EventFilter map[string]string `yaml:"eventFilter,omitempty" json:"eventFilter,omitempty"`
		Retry       bool              `yaml:"retry,omitempty" json:"retry,omitempty"`
	}

	// ScheduleTrigger runs an endpoint on a cron schedule.
	ScheduleTrigger struct {
		Schedule string `yaml:"schedule" json:"schedule"`
		TimeZone string `yaml:"timeZone,omitempty" json:"timeZone,omitempty"`
	}

	// ValidationError describes a single problem found by Build.Validate.
	ValidationError struct {
		// EndpointID is the offending endpoint, or "" for document-level problems.
		EndpointID string
		Reason     string
	}
)

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.EndpointID == "" {
		return fmt.Sprintf("invalid build document: %s", e.Reason)
	}
	return fmt.Sprintf("invalid build document: endpoint %q: %s", e.EndpointID, e.Reason)
}

// Unwrap returns ErrInvalidBuild for errors.Is() compatibility.
func (e *ValidationError) Unwrap() error { return ErrInvalidBuild }

// Parse decodes a YAML build document and validates it.
func Parse(data []byte) (*Build, error) {
	var b Build
	if err := yaml.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("failed to parse build document: %w", err)
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return &b, nil
}

// MarshalYAML is not customized; Encode renders the document as YAML for
// display and for writing an exported manifest back to disk.
func (b *Build) Encode() ([]byte, error) {
	out, err := yaml.Marshal(b)
	if err != nil {
		return nil, fmt.Errorf("failed to encode build document: %w", err)
	}
	return out, nil
}

// Validate checks the document-level and per-endpoint invariants:
// a known spec version, at least one endpoint, an entry point on every
// endpoint, and exactly one trigger per endpoint.
func (b *Build) Validate() error {
	if b.SpecVersion != SpecVersion {
		return &ValidationError{Reason: fmt.Sprintf("unsupported spec version %q (want %q)", b.SpecVersion, SpecVersion)}
	}
	if len(b.Endpoints) == 0 {
		return &ValidationError{Reason: "no endpoints declared"}
	}
	for id, ep := range b.Endpoints {
		if id == "" {
			return &ValidationError{Reason: "endpoint with empty ID"}
		}
		if ep.EntryPoint == "" {
			return &ValidationError{EndpointID: id, Reason: "missing entry point"}
		}
		if n := ep.triggerCount(); n != 1 {
			return &ValidationError{EndpointID: id, Reason: fmt.Sprintf("want exactly 1 trigger, got %d", n)}
		}
		if ep.EventTrigger != nil && ep.EventTrigger.EventType == "" {
			return &ValidationError{EndpointID: id, Reason: "event trigger missing event type"}
		}
		if ep.ScheduleTrigger != nil && ep.ScheduleTrigger.Schedule == "" {
			return &ValidationError{EndpointID: id, Reason: "schedule trigger missing schedule"}
		}
	}
	return nil
}

func (ep *Endpoint) triggerCount() int {
	n := 0
	if ep.HTTPSTrigger != nil {
		n++
	}
	if ep.EventTrigger != nil {
		n++
	}
	if ep.ScheduleTrigger != nil {
		n++
	}
	return n
}
