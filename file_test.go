// Copyright 2025 The ticksio Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package ticksio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testHeader = Header{
	Ticker:     "AAPL",
	Currency:   "USD",
	AssetClass: AssetClassStock,
	Country:    "US",
}

func testPath(t *testing.T) string {
	return filepath.Join(t.TempDir(), "test.ticks")
}

// randomWalk produces n time-ordered records the way cmd/gen-testdata does.
func randomWalk(n int, seed int64) []Record {
	rng := rand.New(rand.NewSource(seed))
	records := make([]Record, n)
	ts := uint64(1698312600000)
	price := 10000.0
	for i := range records {
		ts += uint64(rng.Intn(100) + 1)
		price += rng.NormFloat64() * 50
		if price < 1 {
			price = 1
		}
		records[i] = Record{Timestamp: ts, Price: uint64(price), Volume: uint64(rng.Intn(500) + 1)}
	}
	return records
}

func readAll(t *testing.T, f *File) []Record {
	t.Helper()
	var all []Record
	for i := 0; i < f.NumChunks(); i++ {
		records, err := f.ReadChunk(i)
		require.NoError(t, err)
		all = append(all, records...)
	}
	return all
}

func TestScenarioA_SingleChunk(t *testing.T) {
	path := testPath(t)
	f, err := Create(path, testHeader)
	require.NoError(t, err)

	records := []Record{
		{Timestamp: 1000, Price: 100, Volume: 10},
		{Timestamp: 1000, Price: 65536, Volume: 10},
		{Timestamp: 2000, Price: 100, Volume: 10},
	}
	require.NoError(t, f.AddData(records))
	require.NoError(t, f.Close())

	f, err = OpenRead(path)
	require.NoError(t, err)
	defer func() { require.NoError(t, f.Close()) }()

	idx := f.Index()
	require.Len(t, idx, 1)
	assert.Equal(t, uint64(1000), idx[0].TimeBase)
	assert.Equal(t, uint64(40), idx[0].Offset)
	assert.Equal(t, Widths{Timestamp: 2, Price: 4, Volume: 1}, idx[0].Widths)
	assert.Equal(t, uint32(3*7), idx[0].Size)
	assert.Equal(t, uint64(40+21), f.IndexOffset())
	assert.Equal(t, uint64(24), f.IndexSize())
	assert.Equal(t, uint64(3), f.NumRecords())

	got, err := f.ReadChunk(0)
	require.NoError(t, err)
	assert.Equal(t, records, got)
}

// priceRun is n records at one timestamp with small prices, followed by one
// record whose price needs 8 bytes.
func priceRun(n int) []Record {
	records := make([]Record, 0, n+1)
	for i := 0; i < n; i++ {
		records = append(records, Record{Timestamp: 5000, Price: 100, Volume: 1})
	}
	return append(records, Record{Timestamp: 5000, Price: 1 << 33, Volume: 1})
}

func TestScenarioB_Widening(t *testing.T) {
	tests := []struct {
		name       string
		budget     int
		wantChunks []Widths
		wantCounts []int
	}{
		// 11 records at 10 bytes would be 110 > 100: close before the big price
		{"closes", 100, []Widths{{1, 1, 1}, {1, 8, 1}}, []int{10, 1}},
		// 110 <= 200: widen in place
		{"widens", 200, []Widths{{1, 8, 1}}, []int{11}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := testPath(t)
			f, err := Create(path, testHeader, WithMaxChunkSize(tt.budget))
			require.NoError(t, err)
			records := priceRun(10)
			require.NoError(t, f.AddData(records))
			written := f.Index()
			require.NoError(t, f.Close())

			f, err = OpenRead(path)
			require.NoError(t, err)
			defer func() { require.NoError(t, f.Close()) }()

			idx := f.Index()
			require.Equal(t, written, idx)
			require.Len(t, idx, len(tt.wantChunks))
			prevEnd := uint64(40)
			for i, e := range idx {
				assert.Equal(t, tt.wantChunks[i], e.Widths)
				assert.Equal(t, tt.wantCounts[i], e.NumRecords())
				assert.Equal(t, prevEnd, e.Offset, "chunks are contiguous")
				assert.LessOrEqual(t, e.Size, uint32(tt.budget))
				prevEnd = e.End()
			}
			assert.Equal(t, records, readAll(t, f))
		})
	}
}

func TestIndexPersistence(t *testing.T) {
	for _, e := range []Endianness{EndianLittle, EndianBig} {
		t.Run(e.String(), func(t *testing.T) {
			path := testPath(t)
			h := testHeader
			h.Endianness = e
			f, err := Create(path, h, WithMaxChunkSize(512))
			require.NoError(t, err)
			records := randomWalk(5000, 1)
			require.NoError(t, f.AddData(records[:2500]))
			require.NoError(t, f.AddData(records[2500:]))
			written := f.Index()
			require.Greater(t, len(written), 10)
			require.NoError(t, f.Close())

			raw, err := os.ReadFile(path)
			require.NoError(t, err)
			var order binary.ByteOrder = binary.LittleEndian
			if e == EndianBig {
				order = binary.BigEndian
			}
			assert.Equal(t, "TICK", string(raw[:4]))
			assert.Equal(t, uint64(len(written)*24), order.Uint64(raw[32:40]))
			assert.Equal(t, uint64(len(raw)-len(written)*24), order.Uint64(raw[24:32]))

			for _, mmap := range []bool{false, true} {
				f, err = OpenRead(path, WithMmap(mmap))
				require.NoError(t, err)
				assert.Equal(t, h, f.Header())
				assert.Equal(t, written, f.Index())
				assert.Equal(t, uint64(len(records)), f.NumRecords())
				assert.Equal(t, records, readAll(t, f))
				require.NoError(t, f.Close())
			}
		})
	}
}

func TestCreate_ResolvesEndianness(t *testing.T) {
	path := testPath(t)
	f, err := Create(path, testHeader)
	require.NoError(t, err)
	assert.NotEqual(t, EndianUndefined, f.Header().Endianness)
	require.NoError(t, f.Close())

	f, err = OpenRead(path)
	require.NoError(t, err)
	defer func() { require.NoError(t, f.Close()) }()
	assert.Equal(t, testHeader.Resolved(), f.Header())
}

func TestCreate_Invalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.ticks")

	h := testHeader
	h.Compression = CompressionZstd
	_, err := Create(path, h)
	require.ErrorIs(t, err, ErrInvalidArguments)
	assert.Equal(t, StatusInvalidArguments, StatusOf(err))
	_, statErr := os.Stat(path)
	require.ErrorIs(t, statErr, os.ErrNotExist)

	for _, budget := range []int{0, MaxRecordSize - 1, 1 << 33} {
		_, err = Create(path, testHeader, WithMaxChunkSize(budget))
		require.ErrorIs(t, err, ErrInvalidArguments)
	}

	_, err = Create(filepath.Join(dir, "missing", "dir.ticks"), testHeader)
	require.ErrorIs(t, err, ErrFileIO)
	assert.Equal(t, "file I/O error", StatusOf(err).String())
}

func TestClose_Idempotent(t *testing.T) {
	path := testPath(t)
	f, err := Create(path, testHeader)
	require.NoError(t, err)
	require.NoError(t, f.AddData(randomWalk(10, 2)))
	require.NoError(t, f.Close())
	after, err := os.ReadFile(path)
	require.NoError(t, err)

	require.NoError(t, f.Close())
	again, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, after, again)

	r, err := OpenRead(path)
	require.NoError(t, err)
	require.NoError(t, r.Close())
	require.NoError(t, r.Close())
}

func TestAddData_Invalid(t *testing.T) {
	path := testPath(t)
	f, err := Create(path, testHeader)
	require.NoError(t, err)

	err = f.AddData(nil)
	require.ErrorIs(t, err, ErrInvalidArguments)
	require.NoError(t, f.AddData(randomWalk(3, 3)))
	require.NoError(t, f.Close())

	err = f.AddData(randomWalk(3, 3))
	require.ErrorIs(t, err, ErrInvalidArguments)

	r, err := OpenRead(path)
	require.NoError(t, err)
	defer func() { require.NoError(t, r.Close()) }()
	require.False(t, r.Writable())
	err = r.AddData(randomWalk(3, 3))
	require.ErrorIs(t, err, ErrInvalidArguments)
}

func TestEmptyIndex(t *testing.T) {
	path := testPath(t)
	f, err := Create(path, testHeader)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, int64(40), info.Size())

	f, err = OpenRead(path)
	require.NoError(t, err)
	defer func() { require.NoError(t, f.Close()) }()
	assert.Equal(t, uint64(40), f.IndexOffset())
	assert.Equal(t, uint64(0), f.IndexSize())
	assert.Equal(t, 0, f.NumChunks())
	_, ok := f.Range(0, 1<<63).Next()
	assert.False(t, ok)
}

func TestOpen_Malformed(t *testing.T) {
	good := func(t *testing.T) (string, []byte) {
		path := testPath(t)
		f, err := Create(path, Header{Ticker: "X", Endianness: EndianLittle}, WithMaxChunkSize(64))
		require.NoError(t, err)
		require.NoError(t, f.AddData(randomWalk(20, 4)))
		require.NoError(t, f.Close())
		raw, err := os.ReadFile(path)
		require.NoError(t, err)
		return path, raw
	}

	tests := []struct {
		name   string
		mutate func(raw []byte) []byte
	}{
		{"bad magic", func(raw []byte) []byte { return append([]byte("TOCK"), raw[4:]...) }},
		{"truncated header", func(raw []byte) []byte { return raw[:30] }},
		{"truncated index", func(raw []byte) []byte { return raw[:len(raw)-5] }},
		{"ragged index size", func(raw []byte) []byte {
			binary.LittleEndian.PutUint64(raw[32:], binary.LittleEndian.Uint64(raw[32:])+1)
			return raw
		}},
		{"overlapping chunks", func(raw []byte) []byte {
			off := binary.LittleEndian.Uint64(raw[24:])
			// point the second entry at the first chunk
			copy(raw[off+24+8:off+24+16], raw[off+8:off+16])
			return raw
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, raw := good(t)
			require.NoError(t, os.WriteFile(path, tt.mutate(raw), 0o644))

			_, err := OpenRead(path)
			require.ErrorIs(t, err, ErrInvalidFormat)
			assert.Equal(t, StatusInvalidFormat, StatusOf(err))

			_, err = OpenWrite(path)
			require.ErrorIs(t, err, ErrInvalidFormat)
		})
	}
}

func TestOpenWrite_Append(t *testing.T) {
	path := testPath(t)
	records := randomWalk(3000, 5)

	f, err := Create(path, testHeader, WithMaxChunkSize(1024))
	require.NoError(t, err)
	require.NoError(t, f.AddData(records[:1000]))
	first := f.Index()
	require.NoError(t, f.Close())

	f, err = OpenWrite(path, WithMaxChunkSize(1024), WithSync(true))
	require.NoError(t, err)
	require.True(t, f.Writable())
	require.Equal(t, first, f.Index())
	require.NoError(t, f.AddData(records[1000:]))
	require.NoError(t, f.Close())

	f, err = OpenRead(path)
	require.NoError(t, err)
	defer func() { require.NoError(t, f.Close()) }()
	idx := f.Index()
	require.Greater(t, len(idx), len(first))
	require.Equal(t, first, idx[:len(first)])
	require.Equal(t, records, readAll(t, f))
}

// failingFile fails the first write that starts at failAt, after the bytes
// have landed.
type failingFile struct {
	*os.File
	failAt int64
	fired  bool
}

var errDiskFull = errors.New("disk full")

func (f *failingFile) WriteAt(p []byte, off int64) (int, error) {
	if off == f.failAt && !f.fired {
		f.fired = true
		n, _ := f.File.WriteAt(p, off)
		return n / 2, errDiskFull
	}
	return f.File.WriteAt(p, off)
}

func TestAddData_FailureInjection(t *testing.T) {
	path := testPath(t)
	osf, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	require.NoError(t, err)
	o, err := newOptions([]Option{WithMaxChunkSize(64)})
	require.NoError(t, err)

	ff := &failingFile{File: osf, failAt: -1}
	f, err := newFile(path, ff, testHeader, o)
	require.NoError(t, err)

	records := randomWalk(40, 6)
	require.NoError(t, f.AddData(records[:1]))
	firstEntry := f.Index()[0]

	// the next chunk is written at the current index offset
	ff.failAt = int64(f.IndexOffset())
	err = f.AddData(records[1:])
	require.ErrorIs(t, err, ErrFileIO)
	require.ErrorIs(t, err, errDiskFull)
	require.Equal(t, StatusFileIO, StatusOf(err))
	require.Equal(t, 1, f.NumChunks())
	require.NoError(t, f.Close())

	f, err = OpenRead(path)
	require.NoError(t, err)
	defer func() { require.NoError(t, f.Close()) }()
	require.Equal(t, []IndexEntry{firstEntry}, f.Index())
	got, err := f.ReadChunk(0)
	require.NoError(t, err)
	require.Equal(t, records[:1], got)
}

func TestAddData_Logging(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	f, err := Create(testPath(t), testHeader, WithLogger(logger))
	require.NoError(t, err)
	require.NoError(t, f.AddData(randomWalk(5, 7)))
	require.NoError(t, f.Close())

	assert.True(t, strings.Contains(buf.String(), "wrote chunk"))
	assert.True(t, strings.Contains(buf.String(), "records=5"))
}

type sliceSource struct {
	records []Record
	err     error
}

func (s *sliceSource) NextBatch(max int) ([]Record, error) {
	if len(s.records) == 0 {
		if s.err != nil {
			return nil, s.err
		}
		return nil, io.EOF
	}
	n := min(max, len(s.records))
	batch := s.records[:n]
	s.records = s.records[n:]
	return batch, nil
}

func TestAddFrom(t *testing.T) {
	path := testPath(t)
	records := randomWalk(1234, 8)

	f, err := Create(path, testHeader)
	require.NoError(t, err)
	n, err := f.AddFrom(&sliceSource{records: records}, 100)
	require.NoError(t, err)
	require.Equal(t, len(records), n)
	// every batch is its own chunk
	require.Equal(t, 13, f.NumChunks())

	_, err = f.AddFrom(&sliceSource{records: records}, 0)
	require.ErrorIs(t, err, ErrInvalidArguments)

	boom := errors.New("boom")
	n, err = f.AddFrom(&sliceSource{records: records[:10], err: boom}, 100)
	require.ErrorIs(t, err, boom)
	require.Equal(t, 10, n)
	require.NoError(t, f.Close())

	f, err = OpenRead(path)
	require.NoError(t, err)
	defer func() { require.NoError(t, f.Close()) }()
	require.Equal(t, append(append([]Record(nil), records...), records[:10]...), readAll(t, f))
}
