// Copyright 2025 The ticksio Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package datafile

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/bpowers/ticksio/internal/ondisk"
	"github.com/bpowers/ticksio/internal/status"
)

const (
	magic      = "TICK"
	headerSize = 20 // ticker, currency, asset class, country, compression, endianness + padding

	// offsets of the header fields, relative to the start of the file
	offTicker      = len(magic)
	offCurrency    = offTicker + TickerSize
	offAssetClass  = offCurrency + CurrencySize + 1
	offCountry     = offAssetClass + 2
	offCompression = offCountry + CountrySize
	offEndianness  = offCompression + 2

	fileHeaderSize = len(magic) + headerSize + 8 + 8

	// DataStart is where the first chunk of every file is written.
	DataStart = fileHeaderSize
)

// The only two regions of a file that are rewritten after creation.
var (
	indexOffsetField = ondisk.NewU64Field("index_offset", int64(len(magic)+headerSize))
	indexSizeField   = ondisk.NewU64Field("index_size", int64(len(magic)+headerSize+8))
)

type fileHeader struct {
	Header
	indexOffset uint64
	indexSize   uint64
}

func newFileHeader(h Header) (*fileHeader, error) {
	if err := h.Validate(); err != nil {
		return nil, err
	}
	return &fileHeader{
		Header:      h.Resolved(),
		indexOffset: DataStart,
	}, nil
}

func (h *fileHeader) order() binary.ByteOrder {
	order, err := h.Endianness.ByteOrder()
	if err != nil {
		// newFileHeader and UnmarshalBytes never leave endianness unresolved
		panic(err)
	}
	return order
}

func putText(dst []byte, s string) {
	n := copy(dst, s)
	clear(dst[n:])
}

func getText(src []byte) string {
	if i := bytes.IndexByte(src, 0); i >= 0 {
		src = src[:i]
	}
	return string(src)
}

// MarshalTo writes the complete fileHeaderSize prefix of a file into dst.
func (h *fileHeader) MarshalTo(dst []byte) error {
	if len(dst) < fileHeaderSize {
		return fmt.Errorf("dst too short: %d < %d", len(dst), fileHeaderSize)
	}
	buf := dst[:fileHeaderSize]
	clear(buf)
	order := h.order()

	copy(buf, magic)
	putText(buf[offTicker:offTicker+TickerSize], h.Ticker)
	putText(buf[offCurrency:offCurrency+CurrencySize], h.Currency)
	order.PutUint16(buf[offAssetClass:], uint16(h.AssetClass))
	putText(buf[offCountry:offCountry+CountrySize], h.Country)
	order.PutUint16(buf[offCompression:], uint16(h.Compression))
	buf[offEndianness] = uint8(h.Endianness)

	if err := indexOffsetField.Put(buf, order, h.indexOffset); err != nil {
		return err
	}
	return indexSizeField.Put(buf, order, h.indexSize)
}

func (h *fileHeader) WriteTo(w io.WriterAt) (n int64, err error) {
	var buf [fileHeaderSize]byte
	if err := h.MarshalTo(buf[:]); err != nil {
		return 0, err
	}
	written, err := w.WriteAt(buf[:], 0)
	if err != nil {
		return int64(written), fmt.Errorf("%w: f.WriteAt: %w", status.ErrFileIO, err)
	} else if written != fileHeaderSize {
		return int64(written), fmt.Errorf("%w: short header write of %d", status.ErrFileIO, written)
	}
	return fileHeaderSize, nil
}

func (h *fileHeader) UnmarshalBytes(headerBytes []byte) error {
	if len(headerBytes) < fileHeaderSize {
		return fmt.Errorf("%w: header too short: %d < %d", status.ErrInvalidFormat, len(headerBytes), fileHeaderSize)
	}
	buf := headerBytes[:fileHeaderSize]

	if string(buf[:len(magic)]) != magic {
		return fmt.Errorf("%w: bad magic %q -- not a ticks file or corrupted", status.ErrInvalidFormat, buf[:len(magic)])
	}

	// the endianness marker is a single byte, so it can be read before we
	// know how to decode anything else
	h.Endianness = Endianness(buf[offEndianness])
	order, err := h.Endianness.ByteOrder()
	if err != nil {
		return err
	}

	h.Ticker = getText(buf[offTicker : offTicker+TickerSize])
	h.Currency = getText(buf[offCurrency : offCurrency+CurrencySize])
	h.AssetClass = AssetClass(order.Uint16(buf[offAssetClass:]))
	h.Country = getText(buf[offCountry : offCountry+CountrySize])
	h.Compression = CompressionType(order.Uint16(buf[offCompression:]))
	if h.Compression != CompressionNone {
		return fmt.Errorf("%w: compression %s is not supported", status.ErrInvalidFormat, h.Compression)
	}

	if h.indexOffset, err = indexOffsetField.Value(buf, order); err != nil {
		return err
	}
	if h.indexSize, err = indexSizeField.Value(buf, order); err != nil {
		return err
	}
	if h.indexOffset < DataStart {
		return fmt.Errorf("%w: index offset %d points into the header", status.ErrInvalidFormat, h.indexOffset)
	}

	return nil
}

func readFileHeader(r io.ReaderAt) (*fileHeader, error) {
	buf := make([]byte, fileHeaderSize)
	n, err := r.ReadAt(buf, 0)
	if n < fileHeaderSize && err != nil && err != io.EOF {
		return nil, fmt.Errorf("%w: f.ReadAt: %w", status.ErrFileIO, err)
	}

	var h fileHeader
	if err := h.UnmarshalBytes(buf[:n]); err != nil {
		return nil, err
	}
	return &h, nil
}

// UpdateIndexOffset patches the index_offset field.
func (h *fileHeader) UpdateIndexOffset(n uint64, w io.WriterAt) error {
	if err := indexOffsetField.Set(w, h.order(), n); err != nil {
		return fmt.Errorf("%w: %w", status.ErrFileIO, err)
	}
	h.indexOffset = n
	return nil
}

// UpdateIndexSize patches the index_size field.
func (h *fileHeader) UpdateIndexSize(n uint64, w io.WriterAt) error {
	if err := indexSizeField.Set(w, h.order(), n); err != nil {
		return fmt.Errorf("%w: %w", status.ErrFileIO, err)
	}
	h.indexSize = n
	return nil
}
