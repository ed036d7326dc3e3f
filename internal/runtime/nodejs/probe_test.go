// SPDX-License-Identifier: MPL-2.0

package nodejs

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"fnctl-cli/pkg/types"
)

// serverPort extracts the loopback port an httptest server is bound to.
func serverPort(t *testing.T, srv *httptest.Server) types.ListenPort {
	t.Helper()
	_, portStr, err := net.SplitHostPort(srv.Listener.Addr().String())
	if err != nil {
		t.Fatalf("failed to split server address: %v", err)
	}
	n, err := strconv.Atoi(portStr)
	if err != nil {
		t.Fatalf("failed to parse server port: %v", err)
	}
	return types.ListenPort(n)
}

func TestHTTPProber_Probe(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("valid document", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != discoveryPath {
				http.NotFound(w, r)
				return
			}
			_, _ = w.Write([]byte(validManifest))
		}))
		defer srv.Close()

		b, err := newHTTPProber().Probe(ctx, serverPort(t, srv))
		if err != nil {
			t.Fatalf("Probe: %v", err)
		}
		if _, ok := b.Endpoints["hello"]; !ok {
			t.Error("endpoint 'hello' missing from probed document")
		}
	})

	t.Run("non-200 response", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "module threw on load", http.StatusInternalServerError)
		}))
		defer srv.Close()

		_, err := newHTTPProber().Probe(ctx, serverPort(t, srv))
		if err == nil {
			t.Fatal("expected probe error")
		}
		if !errors.Is(err, ErrProbeFailed) {
			t.Errorf("error should match ErrProbeFailed, got %v", err)
		}
	})

	t.Run("invalid document body", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("specVersion: v1alpha1\nendpoints: {}\n"))
		}))
		defer srv.Close()

		_, err := newHTTPProber().Probe(ctx, serverPort(t, srv))
		if !errors.Is(err, ErrProbeFailed) {
			t.Errorf("error should match ErrProbeFailed, got %v", err)
		}
	})

	t.Run("nothing listening", func(t *testing.T) {
		t.Parallel()
		port, err := findOpenPort()
		if err != nil {
			t.Fatalf("findOpenPort: %v", err)
		}

		_, probeErr := newHTTPProber().Probe(ctx, port)
		if probeErr == nil {
			t.Fatal("expected connection failure")
		}
		var pe *ProbeError
		if !errors.As(probeErr, &pe) {
			t.Fatalf("expected *ProbeError, got %T", probeErr)
		}
		if pe.Port != port {
			t.Errorf("ProbeError.Port = %d, want %d", pe.Port, port)
		}
	})
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	if got := truncate([]byte("short"), 10); got != "short" {
		t.Errorf("truncate(short) = %q", got)
	}
	if got := truncate([]byte("0123456789abcdef"), 10); got != "0123456789..." {
		t.Errorf("truncate(long) = %q", got)
	}
}
