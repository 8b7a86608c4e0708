// Copyright 2025 The ticksio Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package datafile

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/bpowers/ticksio/internal/status"
)

const (
	TickerSize   = 8
	CurrencySize = 3
	CountrySize  = 2
)

// AssetClass identifies what kind of instrument a file holds.
type AssetClass uint16

const (
	AssetClassUndefined AssetClass = iota
	AssetClassStock
	AssetClassOption
	AssetClassFuture
	AssetClassForex
	AssetClassCrypto
)

var assetClassNames = [...]string{
	AssetClassUndefined: "undefined",
	AssetClassStock:     "stock",
	AssetClassOption:    "option",
	AssetClassFuture:    "future",
	AssetClassForex:     "forex",
	AssetClassCrypto:    "crypto",
}

func (a AssetClass) String() string {
	if int(a) < len(assetClassNames) {
		return assetClassNames[a]
	}
	return fmt.Sprintf("AssetClass(%d)", uint16(a))
}

// ParseAssetClass accepts the names returned by AssetClass.String.
func ParseAssetClass(s string) (AssetClass, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range assetClassNames {
		if s == name {
			return AssetClass(i), nil
		}
	}
	return AssetClassUndefined, fmt.Errorf("%w: unknown asset class %q", status.ErrInvalidArguments, s)
}

// CompressionType is reserved: only CompressionNone can be written or read.
type CompressionType uint16

const (
	CompressionNone CompressionType = iota
	CompressionZstd
	CompressionLZ4
)

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionZstd:
		return "zstd"
	case CompressionLZ4:
		return "lz4"
	default:
		return fmt.Sprintf("CompressionType(%d)", uint16(c))
	}
}

// Endianness records the byte order every multi-byte integer in a file is
// stored in.  It is decided once, when the file is created.
type Endianness uint8

const (
	EndianUndefined Endianness = iota
	EndianLittle
	EndianBig
)

func (e Endianness) String() string {
	switch e {
	case EndianUndefined:
		return "undefined"
	case EndianLittle:
		return "little"
	case EndianBig:
		return "big"
	default:
		return fmt.Sprintf("Endianness(%d)", uint8(e))
	}
}

// ByteOrder returns the order for e.  Only little and big are valid.
func (e Endianness) ByteOrder() (binary.ByteOrder, error) {
	switch e {
	case EndianLittle:
		return binary.LittleEndian, nil
	case EndianBig:
		return binary.BigEndian, nil
	default:
		return nil, fmt.Errorf("%w: unresolved endianness %s", status.ErrInvalidFormat, e)
	}
}

// NativeEndianness is the byte order of the machine we are running on.
func NativeEndianness() Endianness {
	var buf [2]byte
	binary.NativeEndian.PutUint16(buf[:], 1)
	if buf[0] == 1 {
		return EndianLittle
	}
	return EndianBig
}

// Header is the write-once metadata at the start of a ticks file.
type Header struct {
	Ticker      string
	Currency    string
	AssetClass  AssetClass
	Country     string
	Compression CompressionType
	Endianness  Endianness
}

func checkText(field, s string, max int) error {
	if len(s) > max {
		return fmt.Errorf("%w: %s %q longer than %d bytes", status.ErrInvalidArguments, field, s, max)
	}
	for i := 0; i < len(s); i++ {
		if s[i] == 0 || s[i] > 0x7f {
			return fmt.Errorf("%w: %s %q must be ASCII without NUL bytes", status.ErrInvalidArguments, field, s)
		}
	}
	return nil
}

// Validate checks that h can be written.
func (h Header) Validate() error {
	if err := checkText("ticker", h.Ticker, TickerSize); err != nil {
		return err
	}
	if err := checkText("currency", h.Currency, CurrencySize); err != nil {
		return err
	}
	if err := checkText("country", h.Country, CountrySize); err != nil {
		return err
	}
	if h.AssetClass > AssetClassCrypto {
		return fmt.Errorf("%w: unknown asset class %d", status.ErrInvalidArguments, uint16(h.AssetClass))
	}
	if h.Compression != CompressionNone {
		return fmt.Errorf("%w: compression %s is not supported", status.ErrInvalidArguments, h.Compression)
	}
	if h.Endianness > EndianBig {
		return fmt.Errorf("%w: unknown endianness %d", status.ErrInvalidArguments, uint8(h.Endianness))
	}
	return nil
}

// Resolved returns h with an undefined endianness replaced by the host's.
func (h Header) Resolved() Header {
	if h.Endianness == EndianUndefined {
		h.Endianness = NativeEndianness()
	}
	return h
}
