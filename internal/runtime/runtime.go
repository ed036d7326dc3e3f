// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"context"
	"errors"
	"fmt"

	"fnctl-cli/pkg/buildspec"
	"fnctl-cli/pkg/types"
)

// Runtime name constants for registry lookups.
const (
	RuntimeNodeJS RuntimeName = "nodejs"
)

// ErrRuntimeNotDetected is returned by Registry.Detect when no registered
// delegate recognizes the source directory.
var ErrRuntimeNotDetected = errors.New("no runtime recognizes this source directory")

type (
	// RuntimeName identifies a language runtime family (e.g. "nodejs").
	//
	//nolint:revive // RuntimeName is more descriptive than Name for external callers
	RuntimeName string

	// Config is the runtime configuration object forwarded to the user's
	// function process. A non-empty Config is serialized into a single
	// environment variable at spawn time.
	Config map[string]any

	// ProjectContext carries the project-scoped inputs a delegate needs.
	// It is assembled once by the caller and treated as immutable.
	ProjectContext struct {
		// ProjectID is the deploy target project identifier.
		ProjectID string
		// SourceDir is the directory containing the user's function source.
		SourceDir types.FilesystemPath
	}

	// ServeHandle represents a live supervised function process. The
	// holder owns the process: Terminate must be called exactly once, and
	// it resolves only after the process has actually exited.
	ServeHandle interface {
		// Port is the loopback port the process was bound to.
		Port() types.ListenPort
		// Terminate performs graceful-then-forced shutdown.
		Terminate(ctx context.Context) error
	}

	// Delegate is the single entry point a runtime exposes to the deploy
	// pipeline.
	Delegate interface {
		// Name returns the runtime family name (e.g. "nodejs").
		Name() RuntimeName
		// RuntimeID returns the resolved runtime identity including its
		// major version (e.g. "nodejs22"). Resolved once and cached.
		RuntimeID() string

		// Validate enforces that the source directory is deployable. It is
		// strict where discovery is lenient: an SDK below the minimum
		// supported version fails validation even though discovery would
		// soft-fall back to legacy analysis.
		Validate(ctx context.Context) error

		// Build compiles the source if the runtime requires a build step.
		// No-op for runtimes that execute source directly.
		Build(ctx context.Context) error

		// Watch starts incremental rebuilds for local development.
		// No-op for runtimes without a build step.
		Watch(ctx context.Context) error

		// Serve launches the user's code as a function-serving process
		// bound to port, for interactive local serving. The caller owns
		// the returned handle.
		Serve(ctx context.Context, port types.ListenPort, cfg Config, env map[string]string) (ServeHandle, error)

		// DiscoverBuild determines the functions declared in the source
		// directory and returns them as a build document. Any process
		// spawned during discovery is terminated before return, on every
		// path.
		DiscoverBuild(ctx context.Context, cfg Config, env map[string]string) (*buildspec.Build, error)
	}

	// DelegateFactory constructs a delegate for a project, or returns
	// ErrRuntimeNotDetected when the source directory does not belong to
	// this runtime family.
	DelegateFactory func(pc ProjectContext) (Delegate, error)

	// Registry holds the known runtime delegate factories in registration
	// order. Detection asks each factory in turn.
	Registry struct {
		factories map[RuntimeName]DelegateFactory
		order     []RuntimeName
	}
)

// NewRegistry creates an empty delegate registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[RuntimeName]DelegateFactory)}
}

// Register adds a delegate factory. Re-registering a name replaces the
// previous factory but keeps its detection position.
func (r *Registry) Register(name RuntimeName, f DelegateFactory) {
	if _, exists := r.factories[name]; !exists {
		r.order = append(r.order, name)
	}
	r.factories[name] = f
}

// Get constructs the delegate for an explicitly requested runtime.
func (r *Registry) Get(name RuntimeName, pc ProjectContext) (Delegate, error) {
	f, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("runtime '%s' not registered", name)
	}
	return f(pc)
}

// Names returns the registered runtime names in registration order.
func (r *Registry) Names() []RuntimeName {
	out := make([]RuntimeName, len(r.order))
	copy(out, r.order)
	return out
}

// Detect walks the registered factories in order and returns the first
// delegate that claims the source directory. A factory declining with
// ErrRuntimeNotDetected moves detection on to the next; any other error
// aborts detection, since the factory recognized the directory but could
// not build a usable delegate for it.
func (r *Registry) Detect(pc ProjectContext) (Delegate, error) {
	for _, name := range r.order {
		d, err := r.factories[name](pc)
		if err != nil {
			if errors.Is(err, ErrRuntimeNotDetected) {
				continue
			}
			return nil, fmt.Errorf("runtime '%s' rejected source directory: %w", name, err)
		}
		return d, nil
	}
	return nil, ErrRuntimeNotDetected
}
