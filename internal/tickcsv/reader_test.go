// Copyright 2025 The ticksio Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package tickcsv

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bpowers/ticksio/internal/chunk"
	"github.com/bpowers/ticksio/internal/status"
)

const sample = `timestamp,price,volume
2023-10-26 09:30:00.042,100.25,10
2023-10-26 09:30:00.100,100.5,20

2023-10-26 09:30:00.150,bogus,5
2023-10-26 09:30:00.200,101,30,extra
1698312600250,99.75,40
`

func readAll(t *testing.T, r *Reader, batch int) ([]chunk.Record, int) {
	t.Helper()
	var all []chunk.Record
	calls := 0
	for {
		recs, err := r.NextBatch(batch)
		calls++
		require.LessOrEqual(t, len(recs), batch)
		all = append(all, recs...)
		if err == io.EOF {
			return all, calls
		}
		require.NoError(t, err)
	}
}

func TestReader_SkipsMalformed(t *testing.T) {
	var logs bytes.Buffer
	r, err := NewReader(strings.NewReader(sample), Options{
		PriceScale: 2,
		Name:       "sample.csv",
		Logger:     slog.New(slog.NewTextHandler(&logs, nil)),
	})
	require.NoError(t, err)

	got, _ := readAll(t, r, 2)
	want := []chunk.Record{
		{Timestamp: 1698312600042, Price: 10025, Volume: 10},
		{Timestamp: 1698312600100, Price: 10050, Volume: 20},
		{Timestamp: 1698312600250, Price: 9975, Volume: 40},
	}
	assert.Equal(t, want, got)
	assert.Equal(t, 3, r.Rows())
	assert.Equal(t, 2, r.Skipped())
	assert.Contains(t, logs.String(), "skipping malformed line")
	assert.Contains(t, logs.String(), "line=5")
	assert.Contains(t, logs.String(), "line=6")

	// exhausted readers stay exhausted
	recs, err := r.NextBatch(10)
	assert.Empty(t, recs)
	assert.ErrorIs(t, err, io.EOF)
}

func TestReader_Strict(t *testing.T) {
	r, err := NewReader(strings.NewReader(sample), Options{Strict: true, Name: "sample.csv"})
	require.NoError(t, err)

	recs, err := r.NextBatch(100)
	require.ErrorIs(t, err, status.ErrInvalidFormat)
	assert.Contains(t, err.Error(), "sample.csv:5")
	assert.Len(t, recs, 2)
}

func TestReader_NoHeader(t *testing.T) {
	in := "1,2,3\n4,5,6\n"
	r, err := NewReader(strings.NewReader(in), Options{NoHeader: true})
	require.NoError(t, err)
	got, calls := readAll(t, r, 1)
	assert.Equal(t, []chunk.Record{{Timestamp: 1, Price: 2, Volume: 3}, {Timestamp: 4, Price: 5, Volume: 6}}, got)
	assert.Equal(t, 3, calls)

	r, err = NewReader(strings.NewReader(in), Options{})
	require.NoError(t, err)
	got, _ = readAll(t, r, 10)
	assert.Equal(t, []chunk.Record{{Timestamp: 4, Price: 5, Volume: 6}}, got)
}

func TestReader_BareQuote(t *testing.T) {
	in := "t,p,v\n1,2,3\n4,5\"x,6\n7,8,9\n"
	r, err := NewReader(strings.NewReader(in), Options{})
	require.NoError(t, err)
	got, _ := readAll(t, r, 10)
	assert.Equal(t, []chunk.Record{{Timestamp: 1, Price: 2, Volume: 3}, {Timestamp: 7, Price: 8, Volume: 9}}, got)
	assert.Equal(t, 1, r.Skipped())
}

type failingReader struct{}

var errBroken = errors.New("broken pipe")

func (failingReader) Read([]byte) (int, error) {
	return 0, errBroken
}

func TestReader_Errors(t *testing.T) {
	_, err := NewReader(strings.NewReader(""), Options{PriceScale: 40})
	require.ErrorIs(t, err, status.ErrInvalidArguments)

	r, err := NewReader(failingReader{}, Options{})
	require.NoError(t, err)
	_, err = r.NextBatch(0)
	require.ErrorIs(t, err, status.ErrInvalidArguments)
	_, err = r.NextBatch(1)
	require.ErrorIs(t, err, status.ErrFileIO)
	require.ErrorIs(t, err, errBroken)

	r, err = NewReader(strings.NewReader(""), Options{})
	require.NoError(t, err)
	recs, err := r.NextBatch(1)
	require.ErrorIs(t, err, io.EOF)
	require.Empty(t, recs)
}
