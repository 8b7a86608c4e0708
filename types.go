// Copyright 2025 The ticksio Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package ticksio

import (
	"github.com/bpowers/ticksio/internal/chunk"
	"github.com/bpowers/ticksio/internal/datafile"
	"github.com/bpowers/ticksio/internal/index"
)

// Record is a single trade.  Timestamp is in milliseconds since the Unix
// epoch; Price is a fixed-point integer whose scale is up to the caller.
type Record = chunk.Record

// Header is the metadata written once when a file is created.  Text fields
// are ASCII and at most TickerSize, CurrencySize and CountrySize bytes.  An
// EndianUndefined marker is replaced with the host's byte order.
type Header = datafile.Header

// IndexEntry describes one chunk.
type IndexEntry = index.Entry

// Widths are the per-field byte widths of a chunk.
type Widths = chunk.Widths

type (
	AssetClass      = datafile.AssetClass
	CompressionType = datafile.CompressionType
	Endianness      = datafile.Endianness
)

const (
	TickerSize   = datafile.TickerSize
	CurrencySize = datafile.CurrencySize
	CountrySize  = datafile.CountrySize

	AssetClassUndefined = datafile.AssetClassUndefined
	AssetClassStock     = datafile.AssetClassStock
	AssetClassOption    = datafile.AssetClassOption
	AssetClassFuture    = datafile.AssetClassFuture
	AssetClassForex     = datafile.AssetClassForex
	AssetClassCrypto    = datafile.AssetClassCrypto

	CompressionNone = datafile.CompressionNone
	CompressionZstd = datafile.CompressionZstd
	CompressionLZ4  = datafile.CompressionLZ4

	EndianUndefined = datafile.EndianUndefined
	EndianLittle    = datafile.EndianLittle
	EndianBig       = datafile.EndianBig

	// DefaultMaxChunkSize is the chunk budget used unless WithMaxChunkSize
	// says otherwise.
	DefaultMaxChunkSize = chunk.DefaultMaxChunkSize
	// MaxRecordSize is the size of a record with every field 8 bytes wide,
	// and the smallest allowed chunk budget.
	MaxRecordSize = chunk.MaxRecordSize
)

// ParseAssetClass accepts the names returned by AssetClass.String.
func ParseAssetClass(s string) (AssetClass, error) {
	return datafile.ParseAssetClass(s)
}

// RecordSource produces records in batches.  NextBatch returns at most max
// records, and io.EOF once the input is exhausted (possibly alongside a final
// batch).
type RecordSource interface {
	NextBatch(max int) ([]Record, error)
}
