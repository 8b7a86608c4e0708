// Copyright 2025 The ticksio Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Package status defines the error taxonomy shared by every layer of the
// storage engine.  Errors are plain Go errors wrapping one of the sentinels
// below; Of recovers the Code from any error chain.
package status

import (
	"errors"
	"io"
)

// Code classifies the outcome of an operation.
type Code int

const (
	OK               Code = 0
	EndOfData        Code = -1
	Unknown          Code = -2
	InvalidArguments Code = -3
	FileIO           Code = -4
	MemoryAllocation Code = -5
	InvalidFormat    Code = -6
	EmptyChunk       Code = -7
)

var (
	ErrInvalidArguments = errors.New("invalid arguments")
	ErrFileIO           = errors.New("file I/O error")
	ErrMemoryAllocation = errors.New("memory allocation failed")
	ErrInvalidFormat    = errors.New("invalid file format")
	ErrEmptyChunk       = errors.New("no record fits in chunk")
)

func (c Code) String() string {
	switch c {
	case OK:
		return "ok"
	case EndOfData:
		return "end of data"
	case InvalidArguments:
		return "invalid arguments"
	case FileIO:
		return "file I/O error"
	case MemoryAllocation:
		return "memory allocation failed"
	case InvalidFormat:
		return "invalid file format"
	case EmptyChunk:
		return "no record fits in chunk"
	default:
		return "unknown error"
	}
}

// Of maps err onto the taxonomy.  A nil error is OK and io.EOF is EndOfData.
func Of(err error) Code {
	switch {
	case err == nil:
		return OK
	case errors.Is(err, io.EOF):
		return EndOfData
	case errors.Is(err, ErrInvalidArguments):
		return InvalidArguments
	case errors.Is(err, ErrFileIO):
		return FileIO
	case errors.Is(err, ErrMemoryAllocation):
		return MemoryAllocation
	case errors.Is(err, ErrInvalidFormat):
		return InvalidFormat
	case errors.Is(err, ErrEmptyChunk):
		return EmptyChunk
	default:
		return Unknown
	}
}
