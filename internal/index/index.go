// Copyright 2025 The ticksio Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Package index maintains the ordered, append-only list of chunk metadata
// stored at the end of a ticks file.
package index

import (
	"encoding/binary"
	"fmt"
	"io"
	"iter"
	"math/bits"
	"sort"

	"github.com/bpowers/ticksio/internal/status"
)

const (
	minCapacity = 16
	// maxEntries keeps the serialized index addressable on 32-bit platforms.
	maxEntries = (1 << 31) / EntrySize
)

// nextPow2 returns the next highest power of two above a given number.
func nextPow2(n int) int {
	return 1 << (64 - bits.LeadingZeros64(uint64(n)))
}

// Index is the in-memory list of chunk entries, in write order.
type Index struct {
	entries []Entry
}

// New returns an empty index.
func New() *Index {
	return &Index{}
}

// Append records a newly written chunk.  Capacity doubles when exhausted, so
// appends are amortized O(1).
func (x *Index) Append(e Entry) error {
	n := len(x.entries)
	if n >= maxEntries {
		return fmt.Errorf("%w: index is full (%d entries)", status.ErrInvalidArguments, n)
	}
	if n == cap(x.entries) {
		newCap := minCapacity
		if n >= minCapacity {
			newCap = nextPow2(n)
		}
		grown := make([]Entry, n, newCap)
		copy(grown, x.entries)
		x.entries = grown
	}
	x.entries = append(x.entries, e)
	return nil
}

// Len is the number of entries.
func (x *Index) Len() int {
	return len(x.entries)
}

// At returns the i'th entry.
func (x *Index) At(i int) Entry {
	return x.entries[i]
}

// All iterates over the entries in write order.
func (x *Index) All() iter.Seq2[int, Entry] {
	return func(yield func(int, Entry) bool) {
		for i, e := range x.entries {
			if !yield(i, e) {
				return
			}
		}
	}
}

// Entries returns a copy of the entries.
func (x *Index) Entries() []Entry {
	entries := make([]Entry, len(x.entries))
	copy(entries, x.entries)
	return entries
}

// Size is the number of bytes the serialized index occupies.
func (x *Index) Size() uint64 {
	return uint64(len(x.entries)) * EntrySize
}

// NumRecords sums the record counts of every chunk.
func (x *Index) NumRecords() uint64 {
	var n uint64
	for _, e := range x.entries {
		n += uint64(e.NumRecords())
	}
	return n
}

// Search returns the position of the first chunk that may hold a record with
// timestamp ts.  A run of equal timestamps can straddle a chunk boundary, so
// this is the chunk before the first one whose time base is >= ts (or 0).
// Chunks are assumed to be in time order.
func (x *Index) Search(ts uint64) int {
	i := sort.Search(len(x.entries), func(i int) bool {
		return x.entries[i].TimeBase >= ts
	})
	if i > 0 {
		i--
	}
	return i
}

// MarshalBinary serializes every entry contiguously.
func (x *Index) MarshalBinary(order binary.ByteOrder) []byte {
	buf := make([]byte, x.Size())
	for i, e := range x.entries {
		e.MarshalTo(buf[i*EntrySize:], order)
	}
	return buf
}

// WriteAt writes the serialized index at off.
func (x *Index) WriteAt(w io.WriterAt, off int64, order binary.ByteOrder) (int64, error) {
	buf := x.MarshalBinary(order)
	n, err := w.WriteAt(buf, off)
	if err != nil {
		return int64(n), fmt.Errorf("%w: f.WriteAt(%d): %w", status.ErrFileIO, off, err)
	} else if n != len(buf) {
		return int64(n), fmt.Errorf("%w: short index write of %d (wanted %d)", status.ErrFileIO, n, len(buf))
	}
	return int64(n), nil
}

// Unmarshal decodes a serialized index.  chunkStart and chunkEnd bound the
// chunk region every entry must lie in.
func Unmarshal(buf []byte, order binary.ByteOrder, chunkStart, chunkEnd uint64) (*Index, error) {
	if len(buf)%EntrySize != 0 {
		return nil, fmt.Errorf("%w: index size %d is not a multiple of %d", status.ErrInvalidFormat, len(buf), EntrySize)
	}
	n := len(buf) / EntrySize
	if n > maxEntries {
		return nil, fmt.Errorf("%w: too many index entries (%d)", status.ErrInvalidFormat, n)
	}

	x := &Index{entries: make([]Entry, n, max(n, minCapacity))}
	prevEnd := chunkStart
	for i := range x.entries {
		e := &x.entries[i]
		if err := e.UnmarshalBytes(buf[i*EntrySize:], order); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		if e.Offset < prevEnd {
			return nil, fmt.Errorf("%w: entry %d at offset %d overlaps previous chunk ending at %d", status.ErrInvalidFormat, i, e.Offset, prevEnd)
		}
		if e.End() > chunkEnd {
			return nil, fmt.Errorf("%w: entry %d ends at %d, past the chunk region end %d", status.ErrInvalidFormat, i, e.End(), chunkEnd)
		}
		prevEnd = e.End()
	}
	return x, nil
}

// Load reads size bytes of serialized index at off.  Chunks must lie between
// chunkStart and off.
func Load(r io.ReaderAt, chunkStart, off, size uint64, order binary.ByteOrder) (*Index, error) {
	if size == 0 {
		return New(), nil
	}
	if size%EntrySize != 0 {
		return nil, fmt.Errorf("%w: index size %d is not a multiple of %d", status.ErrInvalidFormat, size, EntrySize)
	}
	if size/EntrySize > maxEntries {
		return nil, fmt.Errorf("%w: too many index entries (%d)", status.ErrInvalidFormat, size/EntrySize)
	}

	buf := make([]byte, size)
	n, err := r.ReadAt(buf, int64(off))
	if n != len(buf) {
		if err == nil || err == io.EOF {
			return nil, fmt.Errorf("%w: index truncated: read %d of %d bytes at %d", status.ErrInvalidFormat, n, size, off)
		}
		return nil, fmt.Errorf("%w: f.ReadAt(%d): %w", status.ErrFileIO, off, err)
	}

	return Unmarshal(buf, order, chunkStart, off)
}
