// Copyright 2025 The ticksio Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package index

import (
	"encoding/binary"
	"fmt"

	"github.com/bpowers/ticksio/internal/chunk"
	"github.com/bpowers/ticksio/internal/status"
)

// EntrySize is the on-disk size of an Entry:
//
//	 0    1    2    3    4    5    6    7
//	+----+----+----+----+----+----+----+----+
//	| chunk time base                       |
//	+----+----+----+----+----+----+----+----+
//	| chunk offset                          |
//	+----+----+----+----+----+----+----+----+
//	| chunk size        | tw | pw | vw |pad |
//	+----+----+----+----+----+----+----+----+
const EntrySize = 24

const (
	offTimeBase = 0
	offOffset   = 8
	offSize     = 16
	offTsWidth  = 20
	offPxWidth  = 21
	offVolWidth = 22
)

// Entry locates and describes one chunk.
type Entry struct {
	TimeBase uint64
	Offset   uint64
	Size     uint32
	Widths   chunk.Widths
}

// NewEntry describes c written at off.
func NewEntry(c *chunk.Chunk, off uint64) Entry {
	return Entry{
		TimeBase: c.TimeBase,
		Offset:   off,
		Size:     uint32(len(c.Data)),
		Widths:   c.Widths,
	}
}

// NumRecords is the number of records stored in the chunk.
func (e Entry) NumRecords() int {
	return int(e.Size) / e.Widths.RecordSize()
}

// End is the offset of the first byte after the chunk.
func (e Entry) End() uint64 {
	return e.Offset + uint64(e.Size)
}

// MarshalTo writes the entry into the first EntrySize bytes of dst.
func (e Entry) MarshalTo(dst []byte, order binary.ByteOrder) {
	b := dst[:EntrySize]
	order.PutUint64(b[offTimeBase:], e.TimeBase)
	order.PutUint64(b[offOffset:], e.Offset)
	order.PutUint32(b[offSize:], e.Size)
	b[offTsWidth] = uint8(e.Widths.Timestamp)
	b[offPxWidth] = uint8(e.Widths.Price)
	b[offVolWidth] = uint8(e.Widths.Volume)
	b[EntrySize-1] = 0
}

// UnmarshalBytes decodes an entry from the first EntrySize bytes of src.
func (e *Entry) UnmarshalBytes(src []byte, order binary.ByteOrder) error {
	if len(src) < EntrySize {
		return fmt.Errorf("%w: index entry too short: %d < %d", status.ErrInvalidFormat, len(src), EntrySize)
	}
	b := src[:EntrySize]
	e.TimeBase = order.Uint64(b[offTimeBase:])
	e.Offset = order.Uint64(b[offOffset:])
	e.Size = order.Uint32(b[offSize:])
	e.Widths = chunk.Widths{
		Timestamp: chunk.Width(b[offTsWidth]),
		Price:     chunk.Width(b[offPxWidth]),
		Volume:    chunk.Width(b[offVolWidth]),
	}
	if !e.Widths.Valid() {
		return fmt.Errorf("%w: index entry has unsupported widths %+v", status.ErrInvalidFormat, e.Widths)
	}
	if e.Size == 0 || int(e.Size)%e.Widths.RecordSize() != 0 {
		return fmt.Errorf("%w: chunk size %d is not a positive multiple of record size %d", status.ErrInvalidFormat, e.Size, e.Widths.RecordSize())
	}
	return nil
}
