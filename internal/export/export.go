// Copyright 2025 The ticksio Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Package export writes decoded records in formats other tools can read.
package export

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/bpowers/ticksio/internal/chunk"
)

// Row is one exported record.
type Row struct {
	Timestamp uint64 `json:"t" parquet:"t"`
	Price     uint64 `json:"p" parquet:"p"`
	Volume    uint64 `json:"v" parquet:"v"`
}

// RowsOf converts records to rows.
func RowsOf(records []chunk.Record) []Row {
	rows := make([]Row, len(records))
	for i, r := range records {
		rows[i] = Row(r)
	}
	return rows
}

// Writer streams rows to an underlying io.Writer.  Close flushes any
// buffered output but does not close the io.Writer.
type Writer interface {
	Write(rows []Row) error
	Close() error
}

// Saver is an export format.
type Saver interface {
	Extension() string
	NewWriter(w io.Writer) Writer
}

// Formats lists the names accepted by NewSaver.
var Formats = []string{"csv", "json", "parquet"}

// NewSaver returns the Saver for format (csv, json or parquet), or nil if
// the format isn't supported.  priceScale is the number of decimal places
// prices carry, used by text formats.
func NewSaver(format string, priceScale int32) Saver {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "csv":
		return CSVSaver{PriceScale: priceScale}
	case "json":
		return JSONSaver{}
	case "parquet":
		return ParquetSaver{}
	default:
		return nil
	}
}

// Save writes rows to path in s's format.
func Save(s Saver, rows []Row, path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := f.Close(); err == nil && closeErr != nil {
			err = fmt.Errorf("f.Close: %w", closeErr)
		}
	}()

	w := s.NewWriter(f)
	if err := w.Write(rows); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}
