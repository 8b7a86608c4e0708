// Copyright 2025 The ticksio Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package ticksio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"sync/atomic"

	"github.com/bpowers/ticksio/internal/chunk"
	"github.com/bpowers/ticksio/internal/datafile"
	"github.com/bpowers/ticksio/internal/index"
)

// container is implemented by both the datafile writer and reader.
type container interface {
	Header() datafile.Header
	ByteOrder() binary.ByteOrder
	IndexOffset() uint64
	IndexSize() uint64
	Index() *index.Index
	ReadChunk(i int) (*chunk.Chunk, error)
	Close() error
}

// File is an open ticks file.  A File is not safe for concurrent use.
type File struct {
	path   string
	opts   options
	c      container
	w      *datafile.Writer // nil when opened read-only
	closed atomic.Bool
}

// Create creates (or truncates) path and writes the header of an empty
// file.
func Create(path string, header Header, opts ...Option) (*File, error) {
	o, err := newOptions(opts)
	if err != nil {
		return nil, err
	}
	// don't leave a file behind for a header we would reject anyway
	if err := header.Validate(); err != nil {
		return nil, err
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("%w: os.OpenFile(%s): %w", ErrFileIO, path, err)
	}
	return newFile(path, f, header, o)
}

func newFile(path string, f datafile.File, header Header, o options) (*File, error) {
	w, err := datafile.NewWriter(f, header)
	if err != nil {
		if c, ok := f.(io.Closer); ok {
			_ = c.Close()
		}
		return nil, fmt.Errorf("datafile.NewWriter: %w", err)
	}
	w.SetSyncChunks(o.syncChunks)

	h := w.Header()
	o.logger.Debug("created ticks file", "path", path, "ticker", h.Ticker, "endianness", h.Endianness)
	return &File{path: path, opts: o, c: w, w: w}, nil
}

// OpenRead opens an existing file for reading.
func OpenRead(path string, opts ...Option) (*File, error) {
	o, err := newOptions(opts)
	if err != nil {
		return nil, err
	}

	var r *datafile.Reader
	if o.mmap {
		r, err = datafile.NewMMapReaderWithPath(path)
	} else {
		r, err = datafile.NewOsFileReader(path)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return &File{path: path, opts: o, c: r}, nil
}

// OpenWrite opens an existing file to append more records to it.
func OpenWrite(path string, opts ...Option) (*File, error) {
	o, err := newOptions(opts)
	if err != nil {
		return nil, err
	}

	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: os.OpenFile(%s): %w", ErrFileIO, path, err)
	}
	w, err := datafile.OpenWriter(f)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	w.SetSyncChunks(o.syncChunks)

	o.logger.Debug("opened ticks file for append", "path", path, "chunks", w.Index().Len())
	return &File{path: path, opts: o, c: w, w: w}, nil
}

// Path returns the name the file was opened with.
func (f *File) Path() string {
	return f.path
}

// Writable reports whether records can be appended.
func (f *File) Writable() bool {
	return f.w != nil
}

func (f *File) Header() Header {
	return f.c.Header()
}

// IndexOffset is where the chunk index starts (or will start): one past the
// last chunk.
func (f *File) IndexOffset() uint64 {
	return f.c.IndexOffset()
}

// IndexSize is the size of the index persisted on disk, which is 0 for a
// writable file until it is closed.
func (f *File) IndexSize() uint64 {
	return f.c.IndexSize()
}

// Index returns a copy of the chunk index.
func (f *File) Index() []IndexEntry {
	return f.c.Index().Entries()
}

func (f *File) NumChunks() int {
	return f.c.Index().Len()
}

func (f *File) NumRecords() uint64 {
	return f.c.Index().NumRecords()
}

func (f *File) checkOpen() error {
	if f.closed.Load() {
		return fmt.Errorf("%w: %s is closed", ErrInvalidArguments, f.path)
	}
	return nil
}

// AddData appends records, splitting them into as many chunks as needed.  If
// an error is returned, the chunks written before the failing one are kept.
func (f *File) AddData(records []Record) error {
	if err := f.checkOpen(); err != nil {
		return err
	}
	if f.w == nil {
		return fmt.Errorf("%w: %s is open read-only", ErrInvalidArguments, f.path)
	}
	if len(records) == 0 {
		return fmt.Errorf("%w: no records", ErrInvalidArguments)
	}

	order := f.w.ByteOrder()
	for len(records) > 0 {
		c, err := chunk.Build(records, f.opts.maxChunkSize, order)
		if errors.Is(err, ErrEmptyChunk) {
			f.opts.logger.Warn("skipping record that does not fit in a chunk",
				"path", f.path, "timestamp", records[0].Timestamp, "maxChunkSize", f.opts.maxChunkSize)
			records = records[1:]
			continue
		} else if err != nil {
			return fmt.Errorf("chunk.Build: %w", err)
		}

		e, err := f.w.WriteChunk(c)
		if err != nil {
			return fmt.Errorf("w.WriteChunk: %w", err)
		}
		f.opts.logger.Debug("wrote chunk",
			"path", f.path,
			"offset", e.Offset,
			"size", e.Size,
			"records", c.NumRecords,
			"timeBase", c.TimeBase,
			"widths", fmt.Sprintf("%d/%d/%d", c.Widths.Timestamp, c.Widths.Price, c.Widths.Volume))

		records = records[c.NumRecords:]
	}
	return nil
}

// AddFrom appends batches of at most batchSize records from src until it
// returns io.EOF, and returns how many records were read.
func (f *File) AddFrom(src RecordSource, batchSize int) (int, error) {
	if batchSize <= 0 {
		return 0, fmt.Errorf("%w: batch size %d", ErrInvalidArguments, batchSize)
	}

	var n int
	for {
		batch, err := src.NextBatch(batchSize)
		if len(batch) > 0 {
			if addErr := f.AddData(batch); addErr != nil {
				return n, addErr
			}
			n += len(batch)
		}
		if err == io.EOF {
			return n, nil
		} else if err != nil {
			return n, fmt.Errorf("src.NextBatch: %w", err)
		}
	}
}

// ReadChunk decodes the i'th chunk.
func (f *File) ReadChunk(i int) ([]Record, error) {
	if err := f.checkOpen(); err != nil {
		return nil, err
	}
	c, err := f.c.ReadChunk(i)
	if err != nil {
		return nil, err
	}
	records, err := c.Records(f.c.ByteOrder())
	if err != nil {
		return nil, fmt.Errorf("chunk %d: %w", i, err)
	}
	return records, nil
}

// Close writes the chunk index of a writable file and releases the file.
// The file is released even if writing the index fails.  Closing twice is a
// no-op.
func (f *File) Close() error {
	if alreadyClosed := f.closed.Swap(true); alreadyClosed {
		return nil
	}
	if err := f.c.Close(); err != nil {
		return fmt.Errorf("close %s: %w", f.path, err)
	}
	if f.w != nil {
		f.opts.logger.Debug("closed ticks file",
			"path", f.path, "chunks", f.NumChunks(), "indexOffset", f.IndexOffset(), "indexSize", f.IndexSize())
	}
	return nil
}
