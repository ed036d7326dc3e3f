// SPDX-License-Identifier: MPL-2.0

package nodejs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"fnctl-cli/pkg/buildspec"
	"fnctl-cli/pkg/types"
)

// discoveryPath is the SDK server's declaration document endpoint,
// served when the control API is enabled.
const discoveryPath = "/__/functions.yaml"

// ErrProbeFailed is the sentinel error wrapped by ProbeError.
var ErrProbeFailed = errors.New("discovery probe failed")

// ProbeError is a failed attempt to fetch the declaration document from
// a supervised process.
type ProbeError struct {
	Port  types.ListenPort
	Cause error
}

// Error implements the error interface.
func (e *ProbeError) Error() string {
	return fmt.Sprintf("failed to probe functions process on port %s: %v", e.Port, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *ProbeError) Unwrap() error { return e.Cause }

// Is reports ErrProbeFailed for errors.Is() compatibility.
func (e *ProbeError) Is(target error) bool { return target == ErrProbeFailed }

// Prober fetches the declaration document from a live supervised process.
type Prober interface {
	Probe(ctx context.Context, port types.ListenPort) (*buildspec.Build, error)
}

// httpProber is the production Prober: a loopback HTTP GET against the
// SDK server's discovery endpoint.
type httpProber struct {
	client *http.Client
}

func newHTTPProber() *httpProber {
	return &httpProber{client: &http.Client{Timeout: 10 * time.Second}}
}

// Probe implements Prober.
func (p *httpProber) Probe(ctx context.Context, port types.ListenPort) (*buildspec.Build, error) {
	url := "http://" + port.LoopbackAddr() + discoveryPath

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &ProbeError{Port: port, Cause: err}
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, &ProbeError{Port: port, Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ProbeError{Port: port, Cause: err}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &ProbeError{Port: port, Cause: fmt.Errorf("server returned %d: %s", resp.StatusCode, truncate(body, 200))}
	}

	b, err := buildspec.Parse(body)
	if err != nil {
		return nil, &ProbeError{Port: port, Cause: err}
	}
	return b, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
