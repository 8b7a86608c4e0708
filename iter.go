// Copyright 2025 The ticksio Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package ticksio

import (
	"iter"
)

// Iter walks the records with timestamps in a half-open range.  Records are
// expected to have been appended in timestamp order.
type Iter struct {
	f        *File
	from, to uint64
	chunk    int
	records  []Record
	pos      int
	err      error
	done     bool
}

// Range returns an iterator over the records with from <= Timestamp < to.
// Only the chunks that can overlap the range are decoded.
func (f *File) Range(from, to uint64) *Iter {
	it := &Iter{f: f, from: from, to: to}
	if from >= to || f.NumChunks() == 0 {
		it.done = true
		return it
	}
	it.chunk = f.c.Index().Search(from) - 1
	return it
}

// Next returns the next record in range, or false once the range (or an
// error) is reached.
func (it *Iter) Next() (Record, bool) {
	for !it.done {
		for it.pos < len(it.records) {
			r := it.records[it.pos]
			it.pos++
			if r.Timestamp < it.from {
				continue
			}
			if r.Timestamp >= it.to {
				it.done = true
				return Record{}, false
			}
			return r, true
		}

		it.chunk++
		idx := it.f.c.Index()
		if it.chunk >= idx.Len() || idx.At(it.chunk).TimeBase >= it.to {
			it.done = true
			break
		}
		it.records, it.err = it.f.ReadChunk(it.chunk)
		it.pos = 0
		if it.err != nil {
			it.done = true
		}
	}
	return Record{}, false
}

// Err returns the error that stopped the iteration, if any.
func (it *Iter) Err() error {
	return it.err
}

// Records returns the records in [from, to) as a range-over-func sequence.
// A decode error is yielded once, with a zero Record, and ends the sequence.
func (f *File) Records(from, to uint64) iter.Seq2[Record, error] {
	return func(yield func(Record, error) bool) {
		it := f.Range(from, to)
		for {
			r, ok := it.Next()
			if !ok {
				break
			}
			if !yield(r, nil) {
				return
			}
		}
		if err := it.Err(); err != nil {
			yield(Record{}, err)
		}
	}
}
