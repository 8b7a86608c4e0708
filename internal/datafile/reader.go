// Copyright 2025 The ticksio Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package datafile

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"sync/atomic"

	"golang.org/x/sys/unix"

	"github.com/bpowers/ticksio/internal/chunk"
	"github.com/bpowers/ticksio/internal/index"
	"github.com/bpowers/ticksio/internal/mmap"
	"github.com/bpowers/ticksio/internal/status"
)

// slicer is implemented by sources that can hand out their bytes without
// copying, like an mmap'd file.
type slicer interface {
	Slice(off int64, n int) ([]byte, error)
}

// readMetadata reads the header and the index it points at.
func readMetadata(r io.ReaderAt) (*fileHeader, *index.Index, error) {
	h, err := readFileHeader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("readFileHeader: %w", err)
	}
	idx, err := index.Load(r, DataStart, h.indexOffset, h.indexSize, h.order())
	if err != nil {
		return nil, nil, fmt.Errorf("index.Load: %w", err)
	}
	return h, idx, nil
}

// readChunk reads the i'th chunk in idx from r.
func readChunk(r io.ReaderAt, idx *index.Index, i int, order binary.ByteOrder) (*chunk.Chunk, error) {
	if i < 0 || i >= idx.Len() {
		return nil, fmt.Errorf("%w: chunk %d out of range [0, %d)", status.ErrInvalidArguments, i, idx.Len())
	}
	e := idx.At(i)

	var data []byte
	if s, ok := r.(slicer); ok {
		var err error
		if data, err = s.Slice(int64(e.Offset), int(e.Size)); err != nil {
			return nil, fmt.Errorf("%w: chunk %d at %d: %w", status.ErrInvalidFormat, i, e.Offset, err)
		}
	} else {
		data = make([]byte, e.Size)
		n, err := r.ReadAt(data, int64(e.Offset))
		if n != len(data) {
			if err == nil || err == io.EOF {
				return nil, fmt.Errorf("%w: chunk %d truncated: read %d of %d bytes at %d", status.ErrInvalidFormat, i, n, e.Size, e.Offset)
			}
			return nil, fmt.Errorf("%w: f.ReadAt(%d): %w", status.ErrFileIO, e.Offset, err)
		}
	}

	return &chunk.Chunk{
		TimeBase:   e.TimeBase,
		NumRecords: e.NumRecords(),
		Widths:     e.Widths,
		Data:       data,
	}, nil
}

// Reader reads a finished ticks file, either through an mmap backend or
// using the pread(2) syscall.
type Reader struct {
	h        *fileHeader
	order    binary.ByteOrder
	idx      *index.Index
	src      io.ReaderAt
	closer   io.Closer
	isClosed atomic.Bool
}

// NewReader reads the header and index from src.  src is not closed by
// Reader.Close unless it is an io.Closer.
func NewReader(src io.ReaderAt) (*Reader, error) {
	h, idx, err := readMetadata(src)
	if err != nil {
		return nil, err
	}
	r := &Reader{
		h:     h,
		order: h.order(),
		idx:   idx,
		src:   src,
	}
	if c, ok := src.(io.Closer); ok {
		r.closer = c
	}
	return r, nil
}

// NewOsFileReader opens path for reading with pread(2).
func NewOsFileReader(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: os.Open(%s): %w", status.ErrFileIO, path, err)
	}
	r, err := NewReader(f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return r, nil
}

// NewMMapReaderWithPath maps path into memory.  Chunks returned by ReadChunk
// alias the mapping and are invalid after Close.
func NewMMapReaderWithPath(path string) (*Reader, error) {
	m, err := mmap.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: mmap.Open(%s): %w", status.ErrFileIO, path, err)
	}

	if err := m.Advise(unix.MADV_RANDOM); err != nil {
		_ = m.Close()
		return nil, fmt.Errorf("%w: madvise: %w", status.ErrFileIO, err)
	}

	r, err := NewReader(m)
	if err != nil {
		_ = m.Close()
		return nil, err
	}
	return r, nil
}

func (r *Reader) Header() Header {
	return r.h.Header
}

func (r *Reader) ByteOrder() binary.ByteOrder {
	return r.order
}

func (r *Reader) IndexOffset() uint64 {
	return r.h.indexOffset
}

func (r *Reader) IndexSize() uint64 {
	return r.h.indexSize
}

func (r *Reader) Index() *index.Index {
	return r.idx
}

// ReadChunk returns the i'th chunk.
func (r *Reader) ReadChunk(i int) (*chunk.Chunk, error) {
	if r.isClosed.Load() {
		return nil, fmt.Errorf("%w: reader closed", status.ErrInvalidArguments)
	}
	return readChunk(r.src, r.idx, i, r.order)
}

func (r *Reader) Close() error {
	if r.isClosed.Swap(true) {
		return nil
	}
	if r.closer == nil {
		return nil
	}
	if err := r.closer.Close(); err != nil {
		return fmt.Errorf("%w: close: %w", status.ErrFileIO, err)
	}
	return nil
}
