// Copyright 2025 The ticksio Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Package tickcsv reads trade records from CSV text with rows of
// timestamp,price,volume.
package tickcsv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/bpowers/ticksio/internal/chunk"
	"github.com/bpowers/ticksio/internal/status"
)

// Options configures a Reader.
type Options struct {
	// PriceScale is the number of decimal places kept from prices.
	PriceScale int32
	// Strict turns a malformed line into an error instead of a warning.
	Strict bool
	// NoHeader says the first row is data.
	NoHeader bool
	// Name identifies the input in log messages and errors.
	Name   string
	Logger *slog.Logger
}

// Reader parses CSV rows into records.
type Reader struct {
	cr       *csv.Reader
	opts     Options
	sawFirst bool
	rows     int
	skipped  int
	done     bool
}

// NewReader returns a Reader over r.
func NewReader(r io.Reader, opts Options) (*Reader, error) {
	if err := checkScale(opts.PriceScale); err != nil {
		return nil, fmt.Errorf("%w: %w", status.ErrInvalidArguments, err)
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.Name == "" {
		opts.Name = "<input>"
	}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true
	cr.TrimLeadingSpace = true
	return &Reader{cr: cr, opts: opts}, nil
}

// Rows is the number of data rows parsed successfully so far.
func (r *Reader) Rows() int {
	return r.rows
}

// Skipped is the number of malformed rows skipped so far.
func (r *Reader) Skipped() int {
	return r.skipped
}

func (r *Reader) malformed(line int, err error) error {
	if r.opts.Strict {
		return fmt.Errorf("%w: %s:%d: %w", status.ErrInvalidFormat, r.opts.Name, line, err)
	}
	r.skipped++
	r.opts.Logger.Warn("skipping malformed line", "input", r.opts.Name, "line", line, "err", err)
	return nil
}

func (r *Reader) parse(fields []string) (chunk.Record, error) {
	if len(fields) != 3 {
		return chunk.Record{}, fmt.Errorf("expected 3 fields, got %d", len(fields))
	}
	ts, err := ParseTimestamp(fields[0])
	if err != nil {
		return chunk.Record{}, err
	}
	price, err := ParsePrice(fields[1], r.opts.PriceScale)
	if err != nil {
		return chunk.Record{}, err
	}
	volume, err := ParseVolume(fields[2])
	if err != nil {
		return chunk.Record{}, err
	}
	return chunk.Record{Timestamp: ts, Price: price, Volume: volume}, nil
}

// NextBatch returns up to max records, and io.EOF once the input is
// exhausted.  The final batch may come with io.EOF.
func (r *Reader) NextBatch(max int) ([]chunk.Record, error) {
	if max <= 0 {
		return nil, fmt.Errorf("%w: batch size %d", status.ErrInvalidArguments, max)
	}
	if r.done {
		return nil, io.EOF
	}

	batch := make([]chunk.Record, 0, min(max, 4096))
	for len(batch) < max {
		fields, err := r.cr.Read()
		if err == io.EOF {
			r.done = true
			return batch, io.EOF
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				if err := r.malformed(perr.Line, perr.Err); err != nil {
					return batch, err
				}
				continue
			}
			return batch, fmt.Errorf("%w: read %s: %w", status.ErrFileIO, r.opts.Name, err)
		}

		line, _ := r.cr.FieldPos(0)
		if !r.sawFirst {
			r.sawFirst = true
			if !r.opts.NoHeader {
				continue
			}
		}
		if len(fields) == 1 && strings.TrimSpace(fields[0]) == "" {
			continue
		}

		rec, err := r.parse(fields)
		if err != nil {
			if err := r.malformed(line, err); err != nil {
				return batch, err
			}
			continue
		}
		batch = append(batch, rec)
		r.rows++
	}
	return batch, nil
}
