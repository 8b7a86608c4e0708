// Copyright 2025 The ticksio Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package ticksio

import (
	"fmt"
	"io"
	"log/slog"
	"math"

	"github.com/bpowers/ticksio/internal/chunk"
)

// Option configures a File.
type Option func(*options)

type options struct {
	logger       *slog.Logger
	maxChunkSize int
	mmap         bool
	syncChunks   bool
}

func newOptions(opts []Option) (options, error) {
	o := options{
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		maxChunkSize: chunk.DefaultMaxChunkSize,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.maxChunkSize < chunk.MaxRecordSize || int64(o.maxChunkSize) > math.MaxUint32 {
		return o, fmt.Errorf("%w: max chunk size %d outside [%d, %d]", ErrInvalidArguments, o.maxChunkSize, chunk.MaxRecordSize, uint64(math.MaxUint32))
	}
	if o.logger == nil {
		return o, fmt.Errorf("%w: nil logger", ErrInvalidArguments)
	}
	return o, nil
}

// WithLogger sets a logger for chunk writes and skipped records.  If not
// provided, no logging output will be produced.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithMaxChunkSize sets the largest chunk, in bytes, AddData will write.  It
// must be at least MaxRecordSize and fit in 32 bits.
func WithMaxChunkSize(n int) Option {
	return func(o *options) {
		o.maxChunkSize = n
	}
}

// WithMmap makes OpenRead map the file into memory rather than reading
// chunks with pread(2).
func WithMmap(enabled bool) Option {
	return func(o *options) {
		o.mmap = enabled
	}
}

// WithSync makes a writable File fsync after every chunk.  Close always
// fsyncs.
func WithSync(enabled bool) Option {
	return func(o *options) {
		o.syncChunks = enabled
	}
}
