// Copyright 2025 The ticksio Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package datafile

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"sync/atomic"

	"github.com/bpowers/ticksio/internal/chunk"
	"github.com/bpowers/ticksio/internal/index"
	"github.com/bpowers/ticksio/internal/status"
)

// File is usually an *os.File, but specified as an interface for easier testing.
type File interface {
	io.ReaderAt
	io.WriterAt
}

type syncer interface {
	Sync() error
}

type truncater interface {
	Truncate(size int64) error
}

// Writer appends chunks to a ticks file.  Every chunk is written at the
// current index offset, after which the index_offset field is patched, so the
// file on disk always describes the chunks written so far.  The index itself
// is only written by Finish.
type Writer struct {
	f     File
	h     *fileHeader
	order binary.ByteOrder
	idx   *index.Index

	// the index region loaded by OpenWriter still sits at h.indexOffset and is
	// referenced by index_size
	indexOnDisk bool
	syncChunks  bool
	finished    atomic.Bool
}

// NewWriter writes the magic, header and placeholder index fields of a new
// file to f.
func NewWriter(f File, header Header) (*Writer, error) {
	h, err := newFileHeader(header)
	if err != nil {
		return nil, fmt.Errorf("newFileHeader: %w", err)
	}

	if _, err := h.WriteTo(f); err != nil {
		return nil, fmt.Errorf("fileHeader.WriteTo: %w", err)
	}

	return &Writer{
		f:     f,
		h:     h,
		order: h.order(),
		idx:   index.New(),
	}, nil
}

// OpenWriter prepares an existing file for appending.
func OpenWriter(f File) (*Writer, error) {
	h, idx, err := readMetadata(f)
	if err != nil {
		return nil, err
	}
	return &Writer{
		f:           f,
		h:           h,
		order:       h.order(),
		idx:         idx,
		indexOnDisk: idx.Len() > 0,
	}, nil
}

// SetSyncChunks makes the writer fsync after every chunk.
func (w *Writer) SetSyncChunks(sync bool) {
	w.syncChunks = sync
}

func (w *Writer) Header() Header {
	return w.h.Header
}

func (w *Writer) ByteOrder() binary.ByteOrder {
	return w.order
}

func (w *Writer) IndexOffset() uint64 {
	return w.h.indexOffset
}

func (w *Writer) IndexSize() uint64 {
	return w.h.indexSize
}

func (w *Writer) Index() *index.Index {
	return w.idx
}

// ReadChunk reads back the i'th chunk.
func (w *Writer) ReadChunk(i int) (*chunk.Chunk, error) {
	return readChunk(w.f, w.idx, i, w.order)
}

// WriteChunk appends c and records it in the index.  On error nothing is
// recorded: bytes that made it to disk sit past index_offset and are never
// referenced.
func (w *Writer) WriteChunk(c *chunk.Chunk) (index.Entry, error) {
	if w.finished.Load() {
		return index.Entry{}, fmt.Errorf("%w: writer already finished", status.ErrInvalidArguments)
	}
	if len(c.Data) == 0 || len(c.Data) > math.MaxUint32 {
		return index.Entry{}, fmt.Errorf("%w: chunk size %d out of range", status.ErrInvalidArguments, len(c.Data))
	}

	// the new chunk overwrites the index loaded from disk, so stop
	// referencing it first.  A crash from here on leaves a valid file with an
	// empty index rather than one pointing at chunk bytes.
	if w.indexOnDisk {
		if err := w.h.UpdateIndexSize(0, w.f); err != nil {
			return index.Entry{}, fmt.Errorf("h.UpdateIndexSize: %w", err)
		}
		w.indexOnDisk = false
	}

	off := w.h.indexOffset
	n, err := w.f.WriteAt(c.Data, int64(off))
	if err != nil {
		return index.Entry{}, fmt.Errorf("%w: f.WriteAt(%d): %w", status.ErrFileIO, off, err)
	} else if n != len(c.Data) {
		return index.Entry{}, fmt.Errorf("%w: short chunk write of %d (wanted %d)", status.ErrFileIO, n, len(c.Data))
	}

	if w.syncChunks {
		if err := w.sync(); err != nil {
			return index.Entry{}, err
		}
	}

	if err := w.h.UpdateIndexOffset(off+uint64(len(c.Data)), w.f); err != nil {
		return index.Entry{}, fmt.Errorf("h.UpdateIndexOffset: %w", err)
	}

	e := index.NewEntry(c, off)
	if err := w.idx.Append(e); err != nil {
		return index.Entry{}, fmt.Errorf("idx.Append: %w", err)
	}
	return e, nil
}

func (w *Writer) sync() error {
	if s, ok := w.f.(syncer); ok {
		if err := s.Sync(); err != nil {
			return fmt.Errorf("%w: f.Sync: %w", status.ErrFileIO, err)
		}
	}
	return nil
}

// Finish writes the index after the last chunk and then patches index_size.
// An empty index is valid: nothing is written and index_size stays 0.
func (w *Writer) Finish() error {
	if alreadyFinished := w.finished.Swap(true); alreadyFinished {
		// nothing to do - already cleaned up
		return nil
	}

	if w.idx.Len() > 0 && !w.indexOnDisk {
		off := w.h.indexOffset
		if _, err := w.idx.WriteAt(w.f, int64(off), w.order); err != nil {
			return fmt.Errorf("idx.WriteAt: %w", err)
		}
		if err := w.h.UpdateIndexSize(w.idx.Size(), w.f); err != nil {
			return fmt.Errorf("h.UpdateIndexSize: %w", err)
		}
	}

	// drop anything a failed chunk write may have left past the index
	if t, ok := w.f.(truncater); ok {
		if err := t.Truncate(int64(w.h.indexOffset + w.h.indexSize)); err != nil {
			return fmt.Errorf("%w: f.Truncate: %w", status.ErrFileIO, err)
		}
	}

	return w.sync()
}

// Close finishes the file and closes f if it is an io.Closer.  f is closed
// even when Finish fails.
func (w *Writer) Close() error {
	err := w.Finish()
	if c, ok := w.f.(io.Closer); ok {
		if closeErr := c.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("%w: f.Close: %w", status.ErrFileIO, closeErr))
		}
	}
	return err
}
