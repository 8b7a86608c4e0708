// Copyright 2025 The ticksio Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package ticksio

import (
	"github.com/bpowers/ticksio/internal/status"
)

// Status classifies the outcome of an operation.  Its String method gives a
// human-readable description.
type Status = status.Code

const (
	StatusOK               = status.OK
	StatusEndOfData        = status.EndOfData
	StatusUnknown          = status.Unknown
	StatusInvalidArguments = status.InvalidArguments
	StatusFileIO           = status.FileIO
	StatusMemoryAllocation = status.MemoryAllocation
	StatusInvalidFormat    = status.InvalidFormat
	StatusEmptyChunk       = status.EmptyChunk
)

// Every error returned by this package wraps one of these, test with
// errors.Is.
var (
	ErrInvalidArguments = status.ErrInvalidArguments
	ErrFileIO           = status.ErrFileIO
	ErrMemoryAllocation = status.ErrMemoryAllocation
	ErrInvalidFormat    = status.ErrInvalidFormat
	ErrEmptyChunk       = status.ErrEmptyChunk
)

// StatusOf maps err to a Status.  nil is StatusOK, io.EOF is
// StatusEndOfData, and errors wrapping none of the sentinels are
// StatusUnknown.
func StatusOf(err error) Status {
	return status.Of(err)
}
