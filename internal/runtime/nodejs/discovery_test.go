// SPDX-License-Identifier: MPL-2.0

package nodejs

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"fnctl-cli/internal/runtime"
	"fnctl-cli/pkg/buildspec"
	"fnctl-cli/pkg/types"
)

func testBuild() *buildspec.Build {
	return &buildspec.Build{
		SpecVersion: buildspec.SpecVersion,
		Endpoints: map[string]buildspec.Endpoint{
			"hello": {EntryPoint: "hello", HTTPSTrigger: &buildspec.HTTPSTrigger{}},
		},
	}
}

type (
	fakeReader struct {
		build *buildspec.Build
		err   error
		calls int
	}

	fakeAnalyzer struct {
		build *buildspec.Build
		calls int
	}

	fakeProber struct {
		build *buildspec.Build
		err   error
		calls int
	}

	// fakeProcess records terminations so tests can assert the
	// exactly-once teardown contract.
	fakeProcess struct {
		terminations atomic.Int32
		terminateErr error
	}

	// fakeSpawner fails the first failures attempts, then succeeds.
	fakeSpawner struct {
		failures int
		calls    int
		procs    []*fakeProcess
	}
)

func (r *fakeReader) ReadManifest(context.Context, string, string) (*buildspec.Build, error) {
	r.calls++
	return r.build, r.err
}

func (a *fakeAnalyzer) Analyze(context.Context, runtime.ProjectContext, string, runtime.Config, map[string]string) (*buildspec.Build, error) {
	a.calls++
	return a.build, nil
}

func (p *fakeProber) Probe(context.Context, types.ListenPort) (*buildspec.Build, error) {
	p.calls++
	return p.build, p.err
}

func (p *fakeProcess) Terminate(context.Context) error {
	p.terminations.Add(1)
	return p.terminateErr
}

func (s *fakeSpawner) spawn(_ context.Context, port types.ListenPort, _ runtime.Config, _ map[string]string) (terminator, error) {
	s.calls++
	if s.calls <= s.failures {
		return nil, &SpawnError{Port: port, Cause: errors.New("crashed on startup")}
	}
	proc := &fakeProcess{}
	s.procs = append(s.procs, proc)
	return proc, nil
}

func newTestCoordinator(reader *fakeReader, analyzer *fakeAnalyzer, prober *fakeProber, spawner *fakeSpawner) *coordinator {
	return &coordinator{
		reader:        reader,
		analyzer:      analyzer,
		prober:        prober,
		spawn:         spawner.spawn,
		findPort:      func() (types.ListenPort, error) { return 19000, nil },
		retryInterval: time.Millisecond,
		logger:        log.New(io.Discard),
	}
}

func TestCoordinator_LegacyAnalysisForOldSDK(t *testing.T) {
	t.Parallel()

	reader := &fakeReader{build: testBuild()}
	analyzer := &fakeAnalyzer{build: testBuild()}
	spawner := &fakeSpawner{}
	c := newTestCoordinator(reader, analyzer, &fakeProber{}, spawner)

	b, err := c.discoverBuild(context.Background(), runtime.ProjectContext{}, "nodejs22", "2.0.0", nil, nil)
	if err != nil {
		t.Fatalf("discoverBuild: %v", err)
	}
	if b == nil {
		t.Fatal("expected a build document")
	}
	if analyzer.calls != 1 {
		t.Errorf("analyzer calls = %d, want 1", analyzer.calls)
	}
	if reader.calls != 0 {
		t.Errorf("manifest reader must not run for a legacy SDK, got %d calls", reader.calls)
	}
	if spawner.calls != 0 {
		t.Errorf("legacy analysis must not spawn, got %d spawns", spawner.calls)
	}
}

func TestCoordinator_ManifestShortCircuitsSpawn(t *testing.T) {
	t.Parallel()

	reader := &fakeReader{build: testBuild()}
	spawner := &fakeSpawner{}
	c := newTestCoordinator(reader, &fakeAnalyzer{}, &fakeProber{}, spawner)

	// Deterministic: two runs, zero processes either time.
	for i := 0; i < 2; i++ {
		b, err := c.discoverBuild(context.Background(), runtime.ProjectContext{}, "nodejs22", "3.20.0", nil, nil)
		if err != nil {
			t.Fatalf("discoverBuild run %d: %v", i, err)
		}
		if b == nil {
			t.Fatalf("run %d: expected a build document", i)
		}
	}
	if spawner.calls != 0 {
		t.Errorf("manifest path must not spawn, got %d spawns", spawner.calls)
	}
}

func TestCoordinator_DynamicProbe(t *testing.T) {
	t.Parallel()

	reader := &fakeReader{} // no manifest present
	prober := &fakeProber{build: testBuild()}
	spawner := &fakeSpawner{}
	c := newTestCoordinator(reader, &fakeAnalyzer{}, prober, spawner)

	b, err := c.discoverBuild(context.Background(), runtime.ProjectContext{}, "nodejs22", "3.21.0", nil, nil)
	if err != nil {
		t.Fatalf("discoverBuild: %v", err)
	}
	if b == nil {
		t.Fatal("expected a build document")
	}
	if spawner.calls != 1 {
		t.Errorf("spawn calls = %d, want 1", spawner.calls)
	}
	if got := spawner.procs[0].terminations.Load(); got != 1 {
		t.Errorf("terminations = %d, want exactly 1", got)
	}
}

func TestCoordinator_RetriesWithinBudget(t *testing.T) {
	t.Parallel()

	prober := &fakeProber{build: testBuild()}
	spawner := &fakeSpawner{failures: 2}
	c := newTestCoordinator(&fakeReader{}, &fakeAnalyzer{}, prober, spawner)

	b, err := c.discoverBuild(context.Background(), runtime.ProjectContext{}, "nodejs22", "3.21.0", nil, nil)
	if err != nil {
		t.Fatalf("discoverBuild after transient failures: %v", err)
	}
	if b == nil {
		t.Fatal("expected a build document")
	}
	if spawner.calls != 3 {
		t.Errorf("spawn calls = %d, want 3 (two failures plus the success)", spawner.calls)
	}
}

func TestCoordinator_RetryBudgetExhausted(t *testing.T) {
	t.Parallel()

	spawner := &fakeSpawner{failures: 100}
	c := newTestCoordinator(&fakeReader{}, &fakeAnalyzer{}, &fakeProber{}, spawner)

	_, err := c.discoverBuild(context.Background(), runtime.ProjectContext{}, "nodejs22", "3.21.0", nil, nil)
	if err == nil {
		t.Fatal("expected exhaustion error")
	}
	var re *RetryExhaustedError
	if !errors.As(err, &re) {
		t.Fatalf("expected *RetryExhaustedError, got %T: %v", err, err)
	}
	if re.Attempts != discoveryAttempts {
		t.Errorf("Attempts = %d, want %d", re.Attempts, discoveryAttempts)
	}
	if spawner.calls != discoveryAttempts {
		t.Errorf("spawn calls = %d, want exactly %d", spawner.calls, discoveryAttempts)
	}

	var se *SpawnError
	if !errors.As(err, &se) {
		t.Error("exhaustion error should unwrap to the last SpawnError")
	}
}

func TestCoordinator_ProbeFailureStillTerminates(t *testing.T) {
	t.Parallel()

	prober := &fakeProber{err: &ProbeError{Port: 19000, Cause: errors.New("connection reset")}}
	spawner := &fakeSpawner{}
	c := newTestCoordinator(&fakeReader{}, &fakeAnalyzer{}, prober, spawner)

	_, err := c.discoverBuild(context.Background(), runtime.ProjectContext{}, "nodejs22", "3.21.0", nil, nil)
	if !errors.Is(err, ErrProbeFailed) {
		t.Fatalf("expected probe failure, got %v", err)
	}
	if got := spawner.procs[0].terminations.Load(); got != 1 {
		t.Errorf("terminations = %d, want exactly 1 even on probe failure", got)
	}
}

func TestCoordinator_TerminateFailureDoesNotMaskResult(t *testing.T) {
	t.Parallel()

	prober := &fakeProber{build: testBuild()}
	spawner := &fakeSpawner{}
	c := newTestCoordinator(&fakeReader{}, &fakeAnalyzer{}, prober, spawner)
	c.spawn = func(ctx context.Context, port types.ListenPort, cfg runtime.Config, env map[string]string) (terminator, error) {
		return &fakeProcess{terminateErr: errors.New("kill failed")}, nil
	}

	b, err := c.discoverBuild(context.Background(), runtime.ProjectContext{}, "nodejs22", "3.21.0", nil, nil)
	if err != nil {
		t.Fatalf("a teardown failure must not mask a successful probe, got %v", err)
	}
	if b == nil {
		t.Fatal("expected a build document")
	}
}

func TestCoordinator_ManifestErrorAborts(t *testing.T) {
	t.Parallel()

	reader := &fakeReader{err: errors.New("yaml: line 3: mapping values are not allowed")}
	spawner := &fakeSpawner{}
	c := newTestCoordinator(reader, &fakeAnalyzer{}, &fakeProber{}, spawner)

	_, err := c.discoverBuild(context.Background(), runtime.ProjectContext{}, "nodejs22", "3.21.0", nil, nil)
	if err == nil {
		t.Fatal("a corrupt manifest must abort discovery, not fall through to probing")
	}
	if spawner.calls != 0 {
		t.Errorf("spawn calls = %d, want 0", spawner.calls)
	}
}
