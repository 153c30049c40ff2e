// Package main implements the main entry point of the Z80 I/O subsystem monitor
package main

import (
	"context"
	"errors"
	"os"

	"github.com/retroenv/retrogolib/app"
	"github.com/retroenv/retrogolib/log"
	zapp "github.com/retroenv/z80ios/internal/app"
	"github.com/retroenv/z80ios/internal/cli"
	"github.com/retroenv/z80ios/internal/config"
	"github.com/retroenv/z80ios/internal/pipeline"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
)

func main() {
	ctx := app.Context()

	opts, err := cli.ParseFlags()
	if err != nil {
		logger := config.CreateLogger(opts.Debug, opts.Quiet)
		var usageErr *cli.UsageError
		if errors.As(err, &usageErr) {
			zapp.PrintBanner(logger, opts.Quiet, "z80ios", version, commit, date)
			usageErr.ShowUsage()
		} else {
			logger.Fatal(err.Error())
		}
		os.Exit(1)
	}

	logger := config.CreateLogger(opts.Debug, opts.Quiet)
	zapp.PrintBanner(logger, opts.Quiet, "z80ios", version, commit, date)
	zapp.PrintSessionInfo(logger, opts)

	p := pipeline.New(logger, opts)
	if err := p.Execute(ctx); err != nil {
		// Handle context cancellation (Ctrl+C) gracefully
		if errors.Is(err, context.Canceled) {
			logger.Info("Session cancelled")
			return
		}
		logger.Error("Session failed", log.Err(err))
		os.Exit(1)
	}
}
