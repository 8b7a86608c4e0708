// Copyright 2025 The ticksio Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package chunk

import (
	"encoding/binary"
	"fmt"

	"github.com/bpowers/ticksio/internal/status"
)

// Plan decides how many of the leading records belong in the next chunk and
// which widths they will be stored with.  It does no I/O and allocates
// nothing.
//
// Widths start at one byte and only ever grow.  Including a record that widens
// a field re-prices every record already planned, so the walk stops before
// the first record whose inclusion would push the chunk past maxChunkSize.
// If not even the first record fits, Plan returns status.ErrEmptyChunk.
func Plan(records []Record, maxChunkSize int) (n int, widths Widths, err error) {
	if len(records) == 0 {
		return 0, Widths{}, fmt.Errorf("%w: no records to plan", status.ErrInvalidArguments)
	}

	timeBase := records[0].Timestamp
	widths = MinWidths
	for _, r := range records {
		next := widths.Widen(Need(r, timeBase))
		if (n+1)*next.RecordSize() > maxChunkSize {
			break
		}
		widths = next
		n++
	}

	if n == 0 {
		return 0, Widths{}, status.ErrEmptyChunk
	}
	return n, widths, nil
}

// Build plans the next chunk and serializes it into a newly allocated buffer.
// Callers advance past c.NumRecords records.
func Build(records []Record, maxChunkSize int, order binary.ByteOrder) (*Chunk, error) {
	n, widths, err := Plan(records, maxChunkSize)
	if err != nil {
		return nil, err
	}

	timeBase := records[0].Timestamp
	data, err := Encode(records[:n], timeBase, widths, order)
	if err != nil {
		return nil, fmt.Errorf("Encode: %w", err)
	}

	return &Chunk{
		TimeBase:   timeBase,
		NumRecords: n,
		Widths:     widths,
		Data:       data,
	}, nil
}
