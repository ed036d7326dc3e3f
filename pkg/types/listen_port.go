// SPDX-License-Identifier: MPL-2.0

package types

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrInvalidListenPort is wrapped by every InvalidListenPortError.
var ErrInvalidListenPort = errors.New("invalid listen port")

type (
	// ListenPort is a TCP port a function server binds. Zero means
	// "allocate one"; non-zero values must be 1-65535.
	ListenPort int

	// InvalidListenPortError reports a port outside 0-65535.
	InvalidListenPortError struct {
		Value ListenPort
	}
)

func (p ListenPort) String() string { return strconv.Itoa(int(p)) }

// LoopbackAddr returns the dial address for this port, e.g.
// "127.0.0.1:8080". Supervised processes are only ever reached over
// loopback.
func (p ListenPort) LoopbackAddr() string {
	return "127.0.0.1:" + p.String()
}

// Validate rejects ports outside 0-65535. Zero (allocate) is valid.
func (p ListenPort) Validate() error {
	if p < 0 || p > 65535 {
		return &InvalidListenPortError{Value: p}
	}
	return nil
}

func (e *InvalidListenPortError) Error() string {
	return fmt.Sprintf("invalid listen port %d: must be 0 (auto-select) or 1-65535", e.Value)
}

// Unwrap returns the sentinel so errors.Is works on wrapped values.
func (e *InvalidListenPortError) Unwrap() error { return ErrInvalidListenPort }
