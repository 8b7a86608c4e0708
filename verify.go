// Copyright 2025 The ticksio Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package ticksio

import (
	"encoding/binary"
	"fmt"

	farm "github.com/dgryski/go-farm"

	"github.com/bpowers/ticksio/internal/chunk"
	"github.com/bpowers/ticksio/internal/datafile"
)

// ChunkDigest is the result of verifying a single chunk.
type ChunkDigest struct {
	Entry       IndexEntry
	Records     int
	First, Last uint64 // timestamps
	Fingerprint uint64
}

// VerifyReport summarizes a verified file.
type VerifyReport struct {
	Chunks     []ChunkDigest
	NumRecords uint64
	// Digest combines the chunk fingerprints in index order.
	Digest uint64
}

// Verify decodes every chunk and checks it against its index entry.  A
// violation is reported as an ErrInvalidFormat error naming the chunk.
func (f *File) Verify() (*VerifyReport, error) {
	if err := f.checkOpen(); err != nil {
		return nil, err
	}

	idx := f.c.Index()
	order := f.c.ByteOrder()
	report := &VerifyReport{Chunks: make([]ChunkDigest, 0, idx.Len())}
	fingerprints := make([]byte, 0, 8*idx.Len())

	prevEnd := uint64(datafile.DataStart)
	for i, e := range idx.All() {
		if e.Offset < prevEnd || e.End() > f.IndexOffset() {
			return nil, fmt.Errorf("%w: chunk %d at [%d, %d) outside [%d, %d)", ErrInvalidFormat, i, e.Offset, e.End(), prevEnd, f.IndexOffset())
		}
		prevEnd = e.End()

		c, err := f.c.ReadChunk(i)
		if err != nil {
			return nil, fmt.Errorf("chunk %d: %w", i, err)
		}
		records, err := c.Records(order)
		if err != nil {
			return nil, fmt.Errorf("chunk %d: %w", i, err)
		}
		if len(records) == 0 || records[0].Timestamp != e.TimeBase {
			return nil, fmt.Errorf("%w: chunk %d does not start at its time base %d", ErrInvalidFormat, i, e.TimeBase)
		}
		for j, r := range records {
			if need := chunk.Need(r, e.TimeBase); !e.Widths.Contains(need) {
				return nil, fmt.Errorf("%w: chunk %d record %d needs widths %+v, chunk has %+v", ErrInvalidFormat, i, j, need, e.Widths)
			}
		}

		d := ChunkDigest{
			Entry:       e,
			Records:     len(records),
			First:       records[0].Timestamp,
			Last:        records[len(records)-1].Timestamp,
			Fingerprint: farm.Fingerprint64(c.Data),
		}
		report.Chunks = append(report.Chunks, d)
		report.NumRecords += uint64(d.Records)
		fingerprints = binary.LittleEndian.AppendUint64(fingerprints, d.Fingerprint)
	}
	report.Digest = farm.Fingerprint64(fingerprints)

	f.opts.logger.Debug("verified ticks file", "path", f.path, "chunks", len(report.Chunks), "records", report.NumRecords)
	return report, nil
}
