// Copyright 2025 The ticksio Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Command gen-testdata writes random-walk trades, either as CSV or, when
// the output ends in .ticks, as a ticks file.
package main

import (
	"bufio"
	crand "crypto/rand"
	"encoding/binary"
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"math/rand"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/bpowers/ticksio"
	"github.com/bpowers/ticksio/internal/tickcsv"
)

const batchSize = 1 << 16

type params struct {
	n          int
	start      time.Time
	basePrice  float64
	stdDev     float64
	maxVolume  int
	priceScale int
}

func newRand(seed int64) *rand.Rand {
	if seed == 0 {
		var seedBytes [8]byte
		_, _ = crand.Read(seedBytes[:])
		seed = int64(binary.LittleEndian.Uint64(seedBytes[:]))
	}
	return rand.New(rand.NewSource(seed))
}

// walk generates p.n ticks: normally distributed price changes floored at
// 0.01, 1-100ms between trades, and volumes in [1, maxVolume].
func walk(rng *rand.Rand, p params, emit func(ts uint64, price float64, volume uint64) error) error {
	ts := uint64(p.start.UnixMilli())
	price := p.basePrice
	for i := 0; i < p.n; i++ {
		price = math.Max(0.01, price+rng.NormFloat64()*p.stdDev)
		ts += uint64(rng.Intn(100) + 1)
		volume := uint64(rng.Intn(p.maxVolume) + 1)
		if err := emit(ts, price, volume); err != nil {
			return err
		}
	}
	return nil
}

func writeCSV(w io.Writer, rng *rand.Rand, p params) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString("timestamp,price,volume\n"); err != nil {
		return err
	}
	err := walk(rng, p, func(ts uint64, price float64, volume uint64) error {
		_, err := fmt.Fprintf(bw, "%s,%s,%d\n", tickcsv.FormatTimestamp(ts), strconv.FormatFloat(price, 'f', 6, 64), volume)
		return err
	})
	if err != nil {
		return err
	}
	return bw.Flush()
}

func writeTicks(path string, rng *rand.Rand, p params, h ticksio.Header) error {
	b, err := ticksio.NewBuilder(path, h)
	if err != nil {
		return err
	}
	scale := math.Pow10(p.priceScale)
	batch := make([]ticksio.Record, 0, batchSize)
	err = walk(rng, p, func(ts uint64, price float64, volume uint64) error {
		batch = append(batch, ticksio.Record{Timestamp: ts, Price: uint64(math.Round(price * scale)), Volume: volume})
		if len(batch) < batchSize {
			return nil
		}
		err := b.AddData(batch)
		batch = batch[:0]
		return err
	})
	if err == nil && len(batch) > 0 {
		err = b.AddData(batch)
	}
	if err != nil {
		_ = b.Abort()
		return err
	}
	return b.Finalize()
}

func main() {
	var (
		p      params
		start  string
		seed   int64
		out    string
		ticker string
	)
	flag.IntVar(&p.n, "n", 1000000, "number of ticks")
	flag.StringVar(&start, "start", "2023-10-26 09:30:00", "time of the first tick (UTC)")
	flag.Float64Var(&p.basePrice, "base-price", 100, "starting price")
	flag.Float64Var(&p.stdDev, "std", 0.5, "standard deviation of each price change")
	flag.IntVar(&p.maxVolume, "max-volume", 500, "largest volume of a single tick")
	flag.IntVar(&p.priceScale, "price-scale", 2, "decimal places kept from prices in .ticks output")
	flag.Int64Var(&seed, "seed", 0, "random seed (0 for a random one)")
	flag.StringVar(&out, "o", "", "output path (stdout if empty)")
	flag.StringVar(&ticker, "ticker", "TEST", "ticker for .ticks output")
	flag.Parse()

	startMs, err := tickcsv.ParseTimestamp(start)
	if err != nil {
		log.Fatalf("-start: %s", err)
	}
	p.start = time.UnixMilli(int64(startMs)).UTC()
	if p.n < 0 || p.maxVolume <= 0 {
		log.Fatalf("-n must be non-negative and -max-volume positive")
	}

	rng := newRand(seed)
	switch {
	case strings.HasSuffix(out, ".ticks"):
		err = writeTicks(out, rng, p, ticksio.Header{Ticker: ticker})
	case out == "":
		err = writeCSV(os.Stdout, rng, p)
	default:
		var f *os.File
		if f, err = os.Create(out); err != nil {
			break
		}
		err = writeCSV(f, rng, p)
		if closeErr := f.Close(); err == nil {
			err = closeErr
		}
	}
	if err != nil {
		log.Fatal(err)
	}
}
