// Copyright 2025 The ticksio Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/google/subcommands"

	"github.com/bpowers/ticksio"
	"github.com/bpowers/ticksio/internal/export"
	"github.com/bpowers/ticksio/internal/tickcsv"
)

// window is the -from/-to time range shared by dump and export.
type window struct {
	from, to string
}

func (w *window) setFlags(f *flag.FlagSet) {
	f.StringVar(&w.from, "from", "", "first timestamp to include (inclusive)")
	f.StringVar(&w.to, "to", "", "timestamp to stop at (exclusive)")
}

func (w *window) bounds() (from, to uint64, err error) {
	from, to = 0, math.MaxUint64
	if w.from != "" {
		if from, err = tickcsv.ParseTimestamp(w.from); err != nil {
			return 0, 0, fmt.Errorf("-from: %w", err)
		}
	}
	if w.to != "" {
		if to, err = tickcsv.ParseTimestamp(w.to); err != nil {
			return 0, 0, fmt.Errorf("-to: %w", err)
		}
	}
	return from, to, nil
}

const exportBatch = 4096

// copyRange streams the records in [from, to) of path to s, and returns how
// many were written.
func copyRange(path string, from, to uint64, limit int, s export.Saver, out io.Writer, opts ...ticksio.Option) (n int, err error) {
	tf, err := ticksio.OpenRead(path, opts...)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tf.Close() }()

	w := s.NewWriter(out)
	it := tf.Range(from, to)
	batch := make([]export.Row, 0, exportBatch)
	for limit < 0 || n < limit {
		r, ok := it.Next()
		if !ok {
			break
		}
		batch = append(batch, export.Row(r))
		n++
		if len(batch) == cap(batch) {
			if err := w.Write(batch); err != nil {
				return n, err
			}
			batch = batch[:0]
		}
	}
	if err := it.Err(); err != nil {
		return n, err
	}
	if err := w.Write(batch); err != nil {
		return n, err
	}
	return n, w.Close()
}

type dumpCmd struct {
	*app
	window

	priceScale int
	limit      int
}

func (*dumpCmd) Name() string     { return "dump" }
func (*dumpCmd) Synopsis() string { return "print the records of a ticks file as CSV" }
func (*dumpCmd) Usage() string {
	return `dump [-from ts] [-to ts] [-limit n] file.ticks:
  Print records as timestamp,price,volume CSV.  Timestamps may be given as
  "YYYY-MM-DD HH:MM:SS[.fff]" (UTC) or milliseconds since the epoch.
`
}

func (c *dumpCmd) SetFlags(f *flag.FlagSet) {
	c.window.setFlags(f)
	f.IntVar(&c.priceScale, "price-scale", c.cfg.PriceScale, "decimal places prices were stored with")
	f.IntVar(&c.limit, "limit", -1, "stop after this many records (-1 for all)")
}

func (c *dumpCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	from, to, err := c.bounds()
	if err != nil {
		c.logger.Error("bad time range", "err", err)
		return subcommands.ExitUsageError
	}

	out := c.stdout
	if out == nil {
		out = os.Stdout
	}
	saver := export.CSVSaver{PriceScale: int32(c.priceScale)}
	if _, err := copyRange(f.Arg(0), from, to, c.limit, saver, out, ticksio.WithLogger(c.logger), ticksio.WithMmap(true)); err != nil {
		c.logger.Error("dump failed", "path", f.Arg(0), "err", err, "status", ticksio.StatusOf(err))
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
