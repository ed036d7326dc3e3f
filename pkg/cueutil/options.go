// SPDX-License-Identifier: MPL-2.0

package cueutil

// DefaultMaxFileSize is the maximum CUE file size accepted by default (1 MiB).
// Guards against accidental (or malicious) multi-hundred-megabyte files being
// loaded fully into memory before parsing.
const DefaultMaxFileSize int64 = 1 << 20

type (
	// Option configures the CUE parsing flow.
	Option func(*parseOptions)

	parseOptions struct {
		filename    string
		maxFileSize int64
		concrete    bool
	}
)

func defaultOptions() parseOptions {
	return parseOptions{
		maxFileSize: DefaultMaxFileSize,
		concrete:    true,
	}
}

// WithFilename sets the filename used in error messages.
func WithFilename(name string) Option {
	return func(o *parseOptions) { o.filename = name }
}

// WithMaxFileSize overrides the maximum accepted file size in bytes.
func WithMaxFileSize(n int64) Option {
	return func(o *parseOptions) { o.maxFileSize = n }
}

// WithConcrete controls whether validation requires all values to be concrete.
// Disable for documents with optional fields that defaults fill in later.
func WithConcrete(concrete bool) Option {
	return func(o *parseOptions) { o.concrete = concrete }
}
