// Copyright 2025 The ticksio Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Package mmap provides read-only access to a memory-mapped file.
package mmap

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync/atomic"

	"golang.org/x/sys/unix"
)

var ErrClosed = errors.New("mmap: closed")

// ReaderAt reads a memory-mapped file.
type ReaderAt struct {
	data   []byte
	closed atomic.Bool
}

// Open memory-maps the named file for reading.  Empty files are valid and
// map to an empty slice.
func Open(path string) (*ReaderAt, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	fi, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("f.Stat: %w", err)
	}

	size := fi.Size()
	if size == 0 {
		return &ReaderAt{}, nil
	}
	if size < 0 || size != int64(int(size)) {
		return nil, fmt.Errorf("mmap: file %q is too large", path)
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("unix.Mmap: %w", err)
	}
	return &ReaderAt{data: data}, nil
}

// Len returns the length of the mapping.
func (r *ReaderAt) Len() int {
	return len(r.data)
}

// Data returns the mapping itself.  The slice is invalid after Close.
func (r *ReaderAt) Data() []byte {
	return r.data
}

// Advise passes an madvise(2) hint for the whole mapping.
func (r *ReaderAt) Advise(advice int) error {
	if len(r.data) == 0 {
		return nil
	}
	return unix.Madvise(r.data, advice)
}

// Slice returns the n bytes at off without copying.
func (r *ReaderAt) Slice(off int64, n int) ([]byte, error) {
	if r.closed.Load() {
		return nil, ErrClosed
	}
	if off < 0 || n < 0 || off > int64(len(r.data)) || int64(n) > int64(len(r.data))-off {
		return nil, io.ErrUnexpectedEOF
	}
	return r.data[off : off+int64(n)], nil
}

// ReadAt implements io.ReaderAt.
func (r *ReaderAt) ReadAt(p []byte, off int64) (int, error) {
	if r.closed.Load() {
		return 0, ErrClosed
	}
	if off < 0 {
		return 0, fmt.Errorf("mmap: invalid ReadAt offset %d", off)
	}
	if off >= int64(len(r.data)) {
		return 0, io.EOF
	}
	n := copy(p, r.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// Close unmaps the file.  Calling Close more than once is a no-op.
func (r *ReaderAt) Close() error {
	if r.closed.Swap(true) {
		return nil
	}
	data := r.data
	r.data = nil
	if len(data) == 0 {
		return nil
	}
	return unix.Munmap(data)
}
