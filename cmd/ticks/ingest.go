// Copyright 2025 The ticksio Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/google/subcommands"
	"golang.org/x/sync/errgroup"

	"github.com/bpowers/ticksio"
	"github.com/bpowers/ticksio/internal/tickcsv"
)

type ingestCmd struct {
	*app

	header     ticksio.Header
	asset      string
	endian     string
	out        string
	priceScale int
	batchSize  int
	maxChunk   int
	strict     bool
	appendTo   bool
	jobs       int
}

func (*ingestCmd) Name() string     { return "ingest" }
func (*ingestCmd) Synopsis() string { return "convert CSV trades into ticks files" }
func (*ingestCmd) Usage() string {
	return `ingest [flags] in.csv...:
  Convert timestamp,price,volume CSV files into ticks files.  With a single
  input, -o names the output file; with several, -o names a directory.
  Outputs default to the input path with a .ticks extension.
`
}

func (c *ingestCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.header.Ticker, "ticker", "", "ticker symbol (at most 8 ASCII characters)")
	f.StringVar(&c.header.Currency, "currency", "", "ISO 4217 currency code")
	f.StringVar(&c.header.Country, "country", "", "ISO 3166 country code")
	f.StringVar(&c.asset, "asset", "undefined", "asset class (undefined|stock|option|future|forex|crypto)")
	f.StringVar(&c.endian, "endian", "native", "byte order of the new file (native|little|big)")
	f.StringVar(&c.out, "o", "", "output file, or directory with several inputs")
	f.IntVar(&c.priceScale, "price-scale", c.cfg.PriceScale, "decimal places kept from prices")
	f.IntVar(&c.batchSize, "batch", c.cfg.BatchSize, "records parsed per batch")
	f.IntVar(&c.maxChunk, "max-chunk", c.cfg.MaxChunkSize, "maximum chunk size in bytes")
	f.BoolVar(&c.strict, "strict", false, "fail on malformed lines instead of skipping them")
	f.BoolVar(&c.appendTo, "append", false, "append to existing outputs instead of replacing them")
	f.IntVar(&c.jobs, "j", runtime.GOMAXPROCS(0), "files to ingest concurrently")
}

func parseEndianness(s string) (ticksio.Endianness, error) {
	switch strings.ToLower(s) {
	case "native", "":
		return ticksio.EndianUndefined, nil
	case "little":
		return ticksio.EndianLittle, nil
	case "big":
		return ticksio.EndianBig, nil
	default:
		return 0, fmt.Errorf("unknown byte order %q", s)
	}
}

// outputs pairs each input with its output path.
func (c *ingestCmd) outputs(inputs []string) ([]string, error) {
	outs := make([]string, len(inputs))
	for i, in := range inputs {
		base := strings.TrimSuffix(filepath.Base(in), filepath.Ext(in)) + ".ticks"
		switch {
		case c.out == "":
			outs[i] = filepath.Join(filepath.Dir(in), base)
		case len(inputs) == 1:
			outs[i] = c.out
		default:
			outs[i] = filepath.Join(c.out, base)
		}
	}
	if len(inputs) > 1 && c.out != "" {
		if err := os.MkdirAll(c.out, 0o755); err != nil {
			return nil, err
		}
	}
	return outs, nil
}

func (c *ingestCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		f.Usage()
		return subcommands.ExitUsageError
	}

	var err error
	if c.header.AssetClass, err = ticksio.ParseAssetClass(c.asset); err != nil {
		c.logger.Error("bad -asset", "err", err)
		return subcommands.ExitUsageError
	}
	if c.header.Endianness, err = parseEndianness(c.endian); err != nil {
		c.logger.Error("bad -endian", "err", err)
		return subcommands.ExitUsageError
	}
	if c.batchSize <= 0 || c.jobs <= 0 {
		c.logger.Error("-batch and -j must be positive")
		return subcommands.ExitUsageError
	}

	inputs := f.Args()
	outs, err := c.outputs(inputs)
	if err != nil {
		c.logger.Error("creating output directory", "err", err)
		return subcommands.ExitFailure
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.jobs)
	for i := range inputs {
		in, out := inputs[i], outs[i]
		g.Go(func() error {
			return c.ingest(ctx, in, out)
		})
	}
	if err := g.Wait(); err != nil {
		c.logger.Error("ingest failed", "err", err, "status", ticksio.StatusOf(err))
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// ctxSource stops handing out batches once ctx is done.
type ctxSource struct {
	ctx context.Context
	src ticksio.RecordSource
}

func (s ctxSource) NextBatch(max int) ([]ticksio.Record, error) {
	if err := s.ctx.Err(); err != nil {
		return nil, err
	}
	return s.src.NextBatch(max)
}

func (c *ingestCmd) ingest(ctx context.Context, in, out string) error {
	logger := c.logger.With("input", in, "output", out)

	inFile, err := os.Open(in)
	if err != nil {
		return fmt.Errorf("%w: os.Open(%s): %w", ticksio.ErrFileIO, in, err)
	}
	defer func() { _ = inFile.Close() }()

	csvReader, err := tickcsv.NewReader(bufio.NewReaderSize(inFile, 1<<20), tickcsv.Options{
		PriceScale: int32(c.priceScale),
		Strict:     c.strict,
		Name:       in,
		Logger:     logger,
	})
	if err != nil {
		return err
	}
	src := ctxSource{ctx: ctx, src: csvReader}
	opts := []ticksio.Option{ticksio.WithLogger(logger), ticksio.WithMaxChunkSize(c.maxChunk)}

	var (
		n      int
		chunks int
	)
	if c.appendTo {
		f, err := ticksio.OpenWrite(out, opts...)
		if err != nil {
			return err
		}
		n, err = f.AddFrom(src, c.batchSize)
		chunks = f.NumChunks()
		if closeErr := f.Close(); closeErr != nil {
			err = errors.Join(err, closeErr)
		}
		if err != nil {
			return fmt.Errorf("%s: %w", in, err)
		}
	} else {
		b, err := ticksio.NewBuilder(out, c.header, opts...)
		if err != nil {
			return err
		}
		if n, err = b.AddFrom(src, c.batchSize); err != nil {
			_ = b.Abort()
			return fmt.Errorf("%s: %w", in, err)
		}
		chunks = b.File().NumChunks()
		if err := b.Finalize(); err != nil {
			return err
		}
	}

	logger.Info("ingested", "records", n, "skipped", csvReader.Skipped(), "chunks", chunks)
	return nil
}
