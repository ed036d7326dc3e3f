// SPDX-License-Identifier: MPL-2.0

package nodejs

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"fnctl-cli/internal/runtime"
	"fnctl-cli/internal/testutil"
	"fnctl-cli/pkg/types"
)

const (
	// envPort tells the SDK server which loopback port to bind.
	envPort = "PORT"
	// envControlAPI enables the SDK server's admin endpoints (the
	// discovery document and the quit endpoint).
	envControlAPI = "FUNCTIONS_CONTROL_API"
	// envRuntimeConfig carries the JSON-encoded runtime configuration.
	// Only set when the configuration is non-empty.
	envRuntimeConfig = "FUNCTIONS_RUNTIME_CONFIG"

	// quitPath is the SDK server's graceful shutdown endpoint.
	quitPath = "/__/quitquitquit"

	// defaultLivenessWindow is how long a freshly spawned process gets to
	// crash before it is considered live enough to probe. A heuristic,
	// not a readiness check: processes that are going to fail to start
	// are assumed to do so within this window.
	defaultLivenessWindow = 5 * time.Second
	// defaultKillFallback bounds graceful shutdown. A process that has
	// not exited this long after the quit request is killed outright.
	defaultKillFallback = 10 * time.Second
)

// inheritedHostVars is the narrow whitelist of host environment
// variables a supervised process inherits: home directory, executable
// search path, and the environment-mode flag. Everything else stays with
// the tool, keeping child environments reproducible.
var inheritedHostVars = []string{"HOME", "PATH", "NODE_ENV"}

// ErrAlreadyTerminated is returned by Handle.Terminate on a second call.
var ErrAlreadyTerminated = errors.New("supervised process already terminated")

type (
	// SpawnError is an individual failed attempt to bring up a supervised
	// process. The coordinator retries these up to its attempt budget.
	SpawnError struct {
		Port  types.ListenPort
		Cause error
	}

	// Supervisor launches the SDK's function server as a supervised child
	// process. The zero value is not usable; fill in SourceDir at least.
	Supervisor struct {
		// SourceDir is the user's function source directory (the child's
		// working directory).
		SourceDir string
		// ServerBin overrides the spawned binary. Defaults to the SDK's
		// bundled server inside SourceDir's node_modules.
		ServerBin string
		// ServerArgs are extra arguments passed to ServerBin.
		ServerArgs []string
		// LivenessWindow and KillFallback override the shutdown timers
		// when non-zero. See the package defaults.
		LivenessWindow time.Duration
		KillFallback   time.Duration
		// Clock abstracts timers for deterministic tests.
		Clock testutil.Clock
		// Logger receives lifecycle events and the child's stdout lines.
		Logger *log.Logger
		// Stderr receives the child's stderr unmodified, so startup
		// crashes are immediately visible to the operator.
		Stderr io.Writer
		// HostEnviron is a seam for the host environment snapshot.
		// When nil, os.Environ() is used.
		HostEnviron func() []string
	}

	// Handle represents a live supervised process bound to a port. The
	// holder owns it: Terminate must be called exactly once and resolves
	// only once the process has actually exited.
	Handle struct {
		port       types.ListenPort
		cmd        *exec.Cmd
		exitCh     chan error
		quitURL    string
		fallback   time.Duration
		clock      testutil.Clock
		logger     *log.Logger
		terminated atomic.Bool
	}
)

// Error implements the error interface.
func (e *SpawnError) Error() string {
	return fmt.Sprintf("failed to start functions process on port %s: %v", e.Port, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *SpawnError) Unwrap() error { return e.Cause }

func (s *Supervisor) clock() testutil.Clock {
	if s.Clock != nil {
		return s.Clock
	}
	return testutil.RealClock{}
}

func (s *Supervisor) logger() *log.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return log.Default()
}

func (s *Supervisor) livenessWindow() time.Duration {
	if s.LivenessWindow > 0 {
		return s.LivenessWindow
	}
	return defaultLivenessWindow
}

func (s *Supervisor) killFallback() time.Duration {
	if s.KillFallback > 0 {
		return s.KillFallback
	}
	return defaultKillFallback
}

func (s *Supervisor) serverBin() string {
	if s.ServerBin != "" {
		return s.ServerBin
	}
	return filepath.Join(s.SourceDir, filepath.FromSlash(sdkServerBin))
}

func (s *Supervisor) hostEnviron() []string {
	if s.HostEnviron != nil {
		return s.HostEnviron()
	}
	return os.Environ()
}

// childEnv builds the child's full environment: the host whitelist
// first, then all caller-supplied variables, then the explicit bindings
// the supervision contract requires. Later layers win.
func (s *Supervisor) childEnv(port types.ListenPort, cfg runtime.Config, env map[string]string) ([]string, error) {
	merged := runtime.WhitelistHostEnv(s.hostEnviron(), inheritedHostVars)
	maps.Copy(merged, env)

	merged[envPort] = port.String()
	merged[envControlAPI] = "true"

	if len(cfg) > 0 {
		encoded, err := json.Marshal(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to encode runtime config: %w", err)
		}
		merged[envRuntimeConfig] = string(encoded)
	}

	return runtime.EnvToSlice(merged), nil
}

// Spawn launches the function server bound to port and waits out the
// liveness window, racing the timer against an early process exit. The
// timer winning means the process is considered live; an early exit (or
// a failure to start at all) yields a SpawnError for the caller's retry
// logic. On success the caller owns the returned Handle and must
// terminate it exactly once.
func (s *Supervisor) Spawn(ctx context.Context, port types.ListenPort, cfg runtime.Config, env map[string]string) (*Handle, error) {
	childEnv, err := s.childEnv(port, cfg, env)
	if err != nil {
		return nil, &SpawnError{Port: port, Cause: err}
	}

	argv := hostArgv(s.serverBin(), s.ServerArgs...)
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Dir = s.SourceDir
	cmd.Env = childEnv
	cmd.Stdin = nil // disconnected
	if s.Stderr != nil {
		cmd.Stderr = s.Stderr
	} else {
		cmd.Stderr = os.Stderr
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, &SpawnError{Port: port, Cause: err}
	}

	logger := s.logger()
	if err := cmd.Start(); err != nil {
		return nil, &SpawnError{Port: port, Cause: err}
	}
	logger.Debug("spawned functions process", "pid", cmd.Process.Pid, "port", port)

	go forwardStdout(stdout, logger)

	// The exit listener is registered before anything can ask the process
	// to stop; exitCh is buffered so the goroutine never blocks.
	exitCh := make(chan error, 1)
	go func() { exitCh <- cmd.Wait() }()

	select {
	case exitErr := <-exitCh:
		if exitErr == nil {
			exitErr = errors.New("process exited before serving")
		}
		return nil, &SpawnError{Port: port, Cause: exitErr}
	case <-ctx.Done():
		// Abandoned mid-window: reap the child before reporting failure
		// so a retry never overlaps a half-started process.
		_ = cmd.Process.Kill()
		<-exitCh
		return nil, &SpawnError{Port: port, Cause: ctx.Err()}
	case <-s.clock().After(s.livenessWindow()):
		// Timer won the race: live enough to proceed. The exit listener
		// keeps running; Terminate consumes it later.
	}

	return &Handle{
		port:     port,
		cmd:      cmd,
		exitCh:   exitCh,
		quitURL:  "http://" + port.LoopbackAddr() + quitPath,
		fallback: s.killFallback(),
		clock:    s.clock(),
		logger:   logger,
	}, nil
}

// forwardStdout copies the child's stdout into the debug log line by line.
func forwardStdout(r io.Reader, logger *log.Logger) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		logger.Debug("functions process", "stdout", scanner.Text())
	}
}

// Port returns the loopback port the process was bound to.
func (h *Handle) Port() types.ListenPort { return h.port }

// Terminate shuts the process down: a graceful quit request first, then
// a forced kill if the process has not exited by the fallback deadline.
// It returns only once the process has actually exited, never merely
// after a shutdown request was sent. A failed quit request is logged,
// not fatal; the kill fallback guarantees termination either way.
// Calling Terminate a second time returns ErrAlreadyTerminated.
func (h *Handle) Terminate(ctx context.Context) error {
	if !h.terminated.CompareAndSwap(false, true) {
		return ErrAlreadyTerminated
	}

	h.requestQuit(ctx)

	select {
	case waitErr := <-h.exitCh:
		h.logger.Debug("functions process exited gracefully",
			"port", h.port, "exitCode", exitCodeOf(waitErr))
		return nil
	case <-h.clock.After(h.fallback):
		h.logger.Warn("functions process ignored quit request, killing", "port", h.port)
	case <-ctx.Done():
		h.logger.Debug("terminate canceled, killing functions process", "port", h.port)
	}

	if err := h.cmd.Process.Kill(); err != nil {
		// Kill can only fail if the process is already gone; fall through
		// to collecting the exit below.
		h.logger.Debug("kill failed", "port", h.port, "error", err)
	}
	waitErr := <-h.exitCh
	code := exitCodeOf(waitErr)
	h.logger.Debug("functions process exited after kill",
		"port", h.port, "exitCode", code, "signaled", code.IsSignal())
	return nil
}

// exitCodeOf maps a cmd.Wait result to a process exit code. A killed
// process reports 128+signal on POSIX via ExitError; anything that is
// not an ExitError (pipe failures and the like) maps to 1.
func exitCodeOf(waitErr error) types.ExitCode {
	if waitErr == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) {
		if c := exitErr.ExitCode(); c >= 0 {
			return types.ExitCode(c)
		}
		// ExitCode reports -1 for signal deaths; SIGKILL is the only
		// signal this supervisor sends.
		return types.ExitCode(137)
	}
	return 1
}

// requestQuit asks the child's control API to shut down.
func (h *Handle) requestQuit(ctx context.Context) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.quitURL, nil)
	if err != nil {
		h.logger.Debug("failed to build quit request", "error", err)
		return
	}
	resp, err := (&http.Client{Timeout: 2 * time.Second}).Do(req)
	if err != nil {
		h.logger.Debug("graceful shutdown request failed", "url", h.quitURL, "error", err)
		return
	}
	_ = resp.Body.Close()
}
