// Copyright 2025 The ticksio Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package export

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bpowers/ticksio/internal/chunk"
	"github.com/bpowers/ticksio/internal/tickcsv"
)

var testRecords = []chunk.Record{
	{Timestamp: 1698312600042, Price: 10025, Volume: 10},
	{Timestamp: 1698312600100, Price: 10050, Volume: 20},
	{Timestamp: 1698312600250, Price: 9975, Volume: 40},
}

func TestNewSaver(t *testing.T) {
	for _, f := range Formats {
		s := NewSaver(f, 0)
		require.NotNil(t, s, f)
		assert.Equal(t, f, s.Extension())
	}
	assert.NotNil(t, NewSaver(" CSV ", 2))
	assert.Nil(t, NewSaver("xlsx", 0))
}

func TestCSV_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, Save(NewSaver("csv", 2), RowsOf(testRecords), path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(raw), "timestamp,price,volume\n2023-10-26 09:30:00.042,100.25,10\n"))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	r, err := tickcsv.NewReader(f, tickcsv.Options{PriceScale: 2, Strict: true})
	require.NoError(t, err)
	got, err := r.NextBatch(10)
	require.ErrorIs(t, err, io.EOF)
	assert.Equal(t, testRecords, got)
}

func TestJSON(t *testing.T) {
	dir := t.TempDir()
	for _, records := range [][]chunk.Record{testRecords, nil} {
		path := filepath.Join(dir, "out.json")
		require.NoError(t, Save(JSONSaver{}, RowsOf(records), path))

		raw, err := os.ReadFile(path)
		require.NoError(t, err)
		var rows []Row
		require.NoError(t, json.Unmarshal(raw, &rows))
		assert.Equal(t, RowsOf(records), rows)
	}
}

func TestParquet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.parquet")

	f, err := os.Create(path)
	require.NoError(t, err)
	w := ParquetSaver{}.NewWriter(f)
	// written in several batches, like the CLI does chunk by chunk
	for _, r := range testRecords {
		require.NoError(t, w.Write(RowsOf([]chunk.Record{r})))
	}
	require.NoError(t, w.Close())
	require.NoError(t, f.Close())

	rows, err := parquet.ReadFile[Row](path)
	require.NoError(t, err)
	assert.Equal(t, RowsOf(testRecords), rows)
}
