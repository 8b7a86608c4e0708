// Copyright 2025 The ticksio Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"

	"github.com/bpowers/ticksio"
	"github.com/bpowers/ticksio/internal/export"
)

type exportCmd struct {
	*app
	window

	format     string
	out        string
	priceScale int
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "convert a ticks file to csv, json or parquet" }
func (*exportCmd) Usage() string {
	return `export -format csv|json|parquet [-o out] file.ticks:
  Write the records of a ticks file in another format.  The output defaults
  to the input path with the format's extension.
`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	c.window.setFlags(f)
	f.StringVar(&c.format, "format", "csv", "output format ("+strings.Join(export.Formats, "|")+")")
	f.StringVar(&c.out, "o", "", "output file")
	f.IntVar(&c.priceScale, "price-scale", c.cfg.PriceScale, "decimal places prices were stored with")
}

func (c *exportCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	saver := export.NewSaver(c.format, int32(c.priceScale))
	if saver == nil {
		c.logger.Error("unsupported format", "format", c.format, "formats", export.Formats)
		return subcommands.ExitUsageError
	}
	from, to, err := c.bounds()
	if err != nil {
		c.logger.Error("bad time range", "err", err)
		return subcommands.ExitUsageError
	}

	in := f.Arg(0)
	out := c.out
	if out == "" {
		out = strings.TrimSuffix(in, ".ticks") + "." + saver.Extension()
	}
	n, err := c.export(in, out, from, to, saver)
	if err != nil {
		c.logger.Error("export failed", "path", in, "err", err, "status", ticksio.StatusOf(err))
		_ = os.Remove(out)
		return subcommands.ExitFailure
	}
	c.logger.Info("exported", "input", in, "output", out, "records", n)
	return subcommands.ExitSuccess
}

func (c *exportCmd) export(in, out string, from, to uint64, saver export.Saver) (n int, err error) {
	f, err := os.Create(out)
	if err != nil {
		return 0, fmt.Errorf("%w: os.Create(%s): %w", ticksio.ErrFileIO, out, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			err = errors.Join(err, closeErr)
		}
	}()
	return copyRange(in, from, to, -1, saver, f, ticksio.WithLogger(c.logger), ticksio.WithMmap(true))
}
