// Copyright 2025 The ticksio Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package ticksio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func filterRange(records []Record, from, to uint64) []Record {
	var out []Record
	for _, r := range records {
		if r.Timestamp >= from && r.Timestamp < to {
			out = append(out, r)
		}
	}
	return out
}

func collect(t *testing.T, it *Iter) []Record {
	t.Helper()
	var out []Record
	for {
		r, ok := it.Next()
		if !ok {
			break
		}
		out = append(out, r)
	}
	require.NoError(t, it.Err())
	return out
}

func TestRange(t *testing.T) {
	path := testPath(t)
	records := randomWalk(4000, 10)
	// runs of equal timestamps that straddle chunk boundaries
	for i := 1000; i < 1100; i++ {
		records[i].Timestamp = records[1000].Timestamp
	}
	for i := 1100; i < len(records); i++ {
		if records[i].Timestamp <= records[1000].Timestamp {
			records[i].Timestamp = records[1000].Timestamp + 1
		}
	}

	f, err := Create(path, testHeader, WithMaxChunkSize(256))
	require.NoError(t, err)
	require.NoError(t, f.AddData(records))
	require.NoError(t, f.Close())

	f, err = OpenRead(path, WithMmap(true))
	require.NoError(t, err)
	defer func() { require.NoError(t, f.Close()) }()
	require.Greater(t, f.NumChunks(), 20)

	first := records[0].Timestamp
	last := records[len(records)-1].Timestamp
	dup := records[1000].Timestamp
	tests := []struct {
		name     string
		from, to uint64
	}{
		{"everything", 0, 1 << 63},
		{"exact bounds", first, last + 1},
		{"excludes to", first, last},
		{"empty", dup, dup},
		{"inverted", last, first},
		{"before", 0, first},
		{"after", last + 1, last + 1000},
		{"duplicate run", dup, dup + 1},
		{"middle", records[1500].Timestamp, records[2500].Timestamp},
	}
	for _, e := range f.Index() {
		tests = append(tests, struct {
			name     string
			from, to uint64
		}{"chunk boundary", e.TimeBase, e.TimeBase + 50})
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			want := filterRange(records, tt.from, tt.to)
			got := collect(t, f.Range(tt.from, tt.to))
			assert.Equal(t, want, got)
		})
	}

	assert.Len(t, filterRange(records, dup, dup+1), 100)
}

func TestRecords_Seq(t *testing.T) {
	path := testPath(t)
	records := randomWalk(500, 11)
	f, err := Create(path, testHeader, WithMaxChunkSize(128))
	require.NoError(t, err)
	require.NoError(t, f.AddData(records))

	// ranges work on a file that is still being written
	from, to := records[100].Timestamp, records[400].Timestamp
	var got []Record
	for r, err := range f.Records(from, to) {
		require.NoError(t, err)
		got = append(got, r)
	}
	assert.Equal(t, filterRange(records, from, to), got)

	// stopping early
	n := 0
	for range f.Records(0, 1<<63) {
		n++
		if n == 10 {
			break
		}
	}
	assert.Equal(t, 10, n)
	require.NoError(t, f.Close())
}
