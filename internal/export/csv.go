// Copyright 2025 The ticksio Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/bpowers/ticksio/internal/tickcsv"
)

// CSVSaver writes rows in the format tickcsv reads (header:
// timestamp,price,volume).
type CSVSaver struct {
	PriceScale int32
}

func (CSVSaver) Extension() string { return "csv" }

func (s CSVSaver) NewWriter(w io.Writer) Writer {
	return &csvWriter{w: csv.NewWriter(w), scale: s.PriceScale}
}

type csvWriter struct {
	w           *csv.Writer
	scale       int32
	wroteHeader bool
}

func (c *csvWriter) Write(rows []Row) error {
	if !c.wroteHeader {
		c.wroteHeader = true
		if err := c.w.Write([]string{"timestamp", "price", "volume"}); err != nil {
			return err
		}
	}
	for _, r := range rows {
		if err := c.w.Write([]string{
			tickcsv.FormatTimestamp(r.Timestamp),
			tickcsv.FormatPrice(r.Price, c.scale),
			strconv.FormatUint(r.Volume, 10),
		}); err != nil {
			return err
		}
	}
	return nil
}

func (c *csvWriter) Close() error {
	if !c.wroteHeader {
		if err := c.Write(nil); err != nil {
			return err
		}
	}
	c.w.Flush()
	return c.w.Error()
}
