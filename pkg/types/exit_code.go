// SPDX-License-Identifier: MPL-2.0

package types

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrInvalidExitCode is wrapped by every InvalidExitCodeError.
var ErrInvalidExitCode = errors.New("invalid exit code")

type (
	// ExitCode is a POSIX process exit status, 0-255. Zero is success.
	ExitCode int

	// InvalidExitCodeError reports an ExitCode outside 0-255.
	InvalidExitCodeError struct {
		Value ExitCode
	}
)

func (e *InvalidExitCodeError) Error() string {
	return fmt.Sprintf("invalid exit code %d (must be in range 0-255)", e.Value)
}

// Unwrap returns the sentinel so errors.Is works on wrapped values.
func (e *InvalidExitCodeError) Unwrap() error { return ErrInvalidExitCode }

// Validate rejects codes outside 0-255.
func (c ExitCode) Validate() error {
	if c < 0 || c > 255 {
		return &InvalidExitCodeError{Value: c}
	}
	return nil
}

// IsSuccess reports whether the code means a clean exit.
func (c ExitCode) IsSuccess() bool { return c == 0 }

// IsSignal reports whether the code encodes a signal death (the POSIX
// 128+N convention). A force-killed supervised process surfaces as one
// of these.
func (c ExitCode) IsSignal() bool { return c > 128 && c <= 255 }

func (c ExitCode) String() string { return strconv.Itoa(int(c)) }
