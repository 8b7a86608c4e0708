// Copyright 2025 The ticksio Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/google/subcommands"

	"github.com/bpowers/ticksio"
	"github.com/bpowers/ticksio/internal/tickcsv"
)

type infoCmd struct {
	*app

	chunks bool
}

func (*infoCmd) Name() string     { return "info" }
func (*infoCmd) Synopsis() string { return "print the header and index summary of ticks files" }
func (*infoCmd) Usage() string {
	return `info [-chunks] file.ticks...:
  Print the header and a summary of the chunk index.
`
}

func (c *infoCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.chunks, "chunks", false, "list every chunk")
}

func (c *infoCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	for _, path := range f.Args() {
		if err := c.info(c.stdout, path); err != nil {
			c.logger.Error("info failed", "path", path, "err", err, "status", ticksio.StatusOf(err))
			return subcommands.ExitFailure
		}
	}
	return subcommands.ExitSuccess
}

func (c *infoCmd) info(out io.Writer, path string) error {
	tf, err := ticksio.OpenRead(path, ticksio.WithLogger(c.logger))
	if err != nil {
		return err
	}
	defer func() { _ = tf.Close() }()

	h := tf.Header()
	idx := tf.Index()

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "file:\t%s\n", path)
	fmt.Fprintf(w, "ticker:\t%s\n", h.Ticker)
	fmt.Fprintf(w, "currency:\t%s\n", h.Currency)
	fmt.Fprintf(w, "asset class:\t%s\n", h.AssetClass)
	fmt.Fprintf(w, "country:\t%s\n", h.Country)
	fmt.Fprintf(w, "compression:\t%s\n", h.Compression)
	fmt.Fprintf(w, "endianness:\t%s\n", h.Endianness)
	fmt.Fprintf(w, "index offset:\t%d\n", tf.IndexOffset())
	fmt.Fprintf(w, "index size:\t%d\n", tf.IndexSize())
	fmt.Fprintf(w, "chunks:\t%d\n", len(idx))
	fmt.Fprintf(w, "records:\t%d\n", tf.NumRecords())
	if len(idx) > 0 {
		fmt.Fprintf(w, "first chunk starts:\t%s\n", tickcsv.FormatTimestamp(idx[0].TimeBase))
		fmt.Fprintf(w, "last chunk starts:\t%s\n", tickcsv.FormatTimestamp(idx[len(idx)-1].TimeBase))
		dataBytes := tf.IndexOffset() - idx[0].Offset
		fmt.Fprintf(w, "bytes per record:\t%.2f\n", float64(dataBytes)/float64(tf.NumRecords()))
	}
	if c.chunks {
		fmt.Fprintf(w, "\n#\ttime base\toffset\tsize\trecords\twidths\n")
		for i, e := range idx {
			fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%d\t%d/%d/%d\n",
				i, tickcsv.FormatTimestamp(e.TimeBase), e.Offset, e.Size, e.NumRecords(),
				e.Widths.Timestamp, e.Widths.Price, e.Widths.Volume)
		}
	}
	return w.Flush()
}
