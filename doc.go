// Copyright 2025 The ticksio Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Package ticksio reads and writes ticks files: append-only containers of
// (timestamp, price, volume) trade records.
//
// Records are stored in chunks.  Every chunk picks the smallest of 1, 2, 4 or
// 8 bytes per field that can hold all of its records, with timestamps stored
// as deltas from the chunk's first timestamp.  A chunk index after the last
// chunk records each chunk's time base, location and widths, so a time range
// can be found with a binary search.
//
// File layout, with every integer in the byte order named by the endianness
// marker:
//
//	offset  0  magic "TICK"
//	offset  4  ticker[8] currency[3] pad asset_class:u16 country[2]
//	           compression:u16 endianness:u8 pad
//	offset 24  index_offset:u64
//	offset 32  index_size:u64
//	offset 40  chunks...
//	index_offset
//	           index entries, 24 bytes each:
//	           time_base:u64 offset:u64 size:u32 tw:u8 pw:u8 vw:u8 pad
//
// index_offset is rewritten after every chunk, so it always points just past
// the last complete chunk.  index_size is written when the file is closed.
// A crash mid-append loses the index but never leaves one that points at
// garbage.
package ticksio
