// Copyright 2025 The ticksio Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Command ticks creates and inspects ticks files.
package main

import (
	"context"
	"flag"
	"io"
	"log/slog"
	"os"

	"github.com/google/subcommands"

	"github.com/bpowers/ticksio/internal/slogx"
)

// app is shared by every subcommand.  logger is set once flags are parsed.
type app struct {
	cfg    config
	logger *slog.Logger
	stdout io.Writer
}

func register(cmdr *subcommands.Commander, a *app) {
	cmdr.Register(cmdr.HelpCommand(), "")
	cmdr.Register(cmdr.FlagsCommand(), "")
	cmdr.Register(cmdr.CommandsCommand(), "")
	cmdr.Register(&ingestCmd{app: a}, "")
	cmdr.Register(&infoCmd{app: a}, "")
	cmdr.Register(&dumpCmd{app: a}, "")
	cmdr.Register(&exportCmd{app: a}, "")
	cmdr.Register(&verifyCmd{app: a}, "")
}

func main() {
	a := &app{cfg: loadConfig(), stdout: os.Stdout}

	logLevel := flag.String("log-level", a.cfg.LogLevel, "log level (debug|info|warn|error)")
	cmdr := subcommands.NewCommander(flag.CommandLine, os.Args[0])
	register(cmdr, a)
	flag.Parse()

	a.logger = slogx.NewDefault(*logLevel)
	os.Exit(int(cmdr.Execute(context.Background())))
}
