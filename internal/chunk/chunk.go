// Copyright 2025 The ticksio Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Package chunk implements the adaptive fixed-width encoding of runs of
// trade records.
//
// Every record in a chunk is stored as three unsigned integers with no
// padding or tags between them:
//
//	+----------------------+-------------+--------------+
//	| timestamp - timeBase | price       | volume       |
//	| (Timestamp bytes)    | (Price b.)  | (Volume b.)  |
//	+----------------------+-------------+--------------+
//
// The three widths are chosen once per chunk, so record i of a chunk lives at
// byte i*Widths.RecordSize() and can be decoded without scanning.
package chunk

import (
	"encoding/binary"
)

const (
	// MaxRecordSize is the size of a record when every field needs 8 bytes.
	MaxRecordSize = 3 * int(Width64)

	// DefaultMaxChunkSize is the default byte budget of a single chunk (16 MB).
	DefaultMaxChunkSize = 16 * 1024 * 1024
)

// Record is a single trade.  Timestamp is in milliseconds since the Unix epoch;
// price and volume are unsigned fixed-point integers whose scale is chosen by
// whoever produced them.
type Record struct {
	Timestamp uint64
	Price     uint64
	Volume    uint64
}

// Widths holds the per-field widths shared by every record of a chunk.
type Widths struct {
	Timestamp Width
	Price     Width
	Volume    Width
}

// MinWidths is the starting point of every chunk.
var MinWidths = Widths{Timestamp: Width8, Price: Width8, Volume: Width8}

// RecordSize is the number of bytes one record occupies.
func (w Widths) RecordSize() int {
	return int(w.Timestamp) + int(w.Price) + int(w.Volume)
}

// Valid reports whether all three widths are supported.
func (w Widths) Valid() bool {
	return w.Timestamp.Valid() && w.Price.Valid() && w.Volume.Valid()
}

// Widen returns the per-field maximum of w and o.
func (w Widths) Widen(o Widths) Widths {
	return Widths{
		Timestamp: maxWidth(w.Timestamp, o.Timestamp),
		Price:     maxWidth(w.Price, o.Price),
		Volume:    maxWidth(w.Volume, o.Volume),
	}
}

// Contains reports whether every field of o fits in w.
func (w Widths) Contains(o Widths) bool {
	return o.Timestamp <= w.Timestamp && o.Price <= w.Price && o.Volume <= w.Volume
}

// Need returns the widths r requires when its timestamp is stored relative to
// timeBase.
func Need(r Record, timeBase uint64) Widths {
	return Widths{
		Timestamp: SelectWidth(r.Timestamp - timeBase),
		Price:     SelectWidth(r.Price),
		Volume:    SelectWidth(r.Volume),
	}
}

// Chunk is an encoded run of records.
type Chunk struct {
	TimeBase   uint64
	NumRecords int
	Widths     Widths
	Data       []byte
}

// Records decodes the chunk.
func (c *Chunk) Records(order binary.ByteOrder) ([]Record, error) {
	return Decode(c.Data, c.Widths, c.TimeBase, c.NumRecords, order)
}
