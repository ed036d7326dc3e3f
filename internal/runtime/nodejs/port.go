// SPDX-License-Identifier: MPL-2.0

package nodejs

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"net"

	"fnctl-cli/pkg/types"
)

// Port allocation scans a bounded window above a uniformly random base
// in a wide ephemeral range. Randomizing the base keeps concurrent
// discovery runs in the same process from racing each other onto the
// same port, and avoids clustering on low ports that long-lived local
// services tend to hold.
const (
	portRangeMin = 10000
	portRangeMax = 50000
	portScanSpan = 100
)

// ErrPortAllocation is the sentinel error wrapped by AllocationError.
var ErrPortAllocation = errors.New("port allocation failed")

// AllocationError is returned when no free loopback port could be found
// at or above the chosen base.
type AllocationError struct {
	Base  types.ListenPort
	Cause error
}

// Error implements the error interface.
func (e *AllocationError) Error() string {
	return fmt.Sprintf("no open port found in [%d, %d): %v", e.Base, int(e.Base)+portScanSpan, e.Cause)
}

// Unwrap returns ErrPortAllocation for errors.Is() compatibility.
func (e *AllocationError) Unwrap() error { return ErrPortAllocation }

// findOpenPort picks a random base in [portRangeMin, portRangeMax) and
// returns the first port at or above it that accepts a loopback bind.
// The port is released again before returning; the window between this
// probe and the child process binding it is an accepted race.
func findOpenPort() (types.ListenPort, error) {
	return findOpenPortIn(portRangeMin, portRangeMax)
}

// findOpenPortIn is findOpenPort over a caller-chosen window.
func findOpenPortIn(floor, ceil int) (types.ListenPort, error) {
	base := types.ListenPort(floor + rand.N(ceil-floor))
	return findOpenPortFrom(base)
}

// findOpenPortFrom scans a bounded span starting at base.
func findOpenPortFrom(base types.ListenPort) (types.ListenPort, error) {
	var lastErr error
	for p := base; p < base+portScanSpan && p <= 65535; p++ {
		l, err := net.Listen("tcp", p.LoopbackAddr())
		if err != nil {
			lastErr = err
			continue
		}
		if closeErr := l.Close(); closeErr != nil {
			return 0, &AllocationError{Base: base, Cause: closeErr}
		}
		return p, nil
	}
	if lastErr == nil {
		lastErr = errors.New("scan span exhausted")
	}
	return 0, &AllocationError{Base: base, Cause: lastErr}
}
