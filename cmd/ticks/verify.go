// Copyright 2025 The ticksio Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package main

import (
	"context"
	"flag"
	"fmt"
	"text/tabwriter"

	"github.com/google/subcommands"

	"github.com/bpowers/ticksio"
)

type verifyCmd struct {
	*app

	chunks bool
}

func (*verifyCmd) Name() string     { return "verify" }
func (*verifyCmd) Synopsis() string { return "decode every chunk and print fingerprints" }
func (*verifyCmd) Usage() string {
	return `verify [-chunks] file.ticks...:
  Decode every chunk, check it against the index and print its fingerprint.
`
}

func (c *verifyCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.chunks, "chunks", false, "print a fingerprint per chunk")
}

func (c *verifyCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		f.Usage()
		return subcommands.ExitUsageError
	}

	status := subcommands.ExitSuccess
	for _, path := range f.Args() {
		if err := c.verify(path); err != nil {
			c.logger.Error("verify failed", "path", path, "err", err, "status", ticksio.StatusOf(err))
			status = subcommands.ExitFailure
		}
	}
	return status
}

func (c *verifyCmd) verify(path string) error {
	tf, err := ticksio.OpenRead(path, ticksio.WithLogger(c.logger))
	if err != nil {
		return err
	}
	defer func() { _ = tf.Close() }()

	report, err := tf.Verify()
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(c.stdout, 0, 4, 2, ' ', 0)
	if c.chunks {
		for i, d := range report.Chunks {
			fmt.Fprintf(w, "%d\t%d\t%d\t%016x\n", i, d.Entry.Offset, d.Records, d.Fingerprint)
		}
	}
	fmt.Fprintf(w, "%s\tok\t%d chunks\t%d records\t%016x\n", path, len(report.Chunks), report.NumRecords, report.Digest)
	return w.Flush()
}
