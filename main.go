// Package main implements the main entry point for the CHIP-8 emulator
package main

import (
	"context"
	"errors"
	"os"

	"github.com/retroenv/retrochip8/internal/cli"
	"github.com/retroenv/retrochip8/internal/config"
	"github.com/retroenv/retrochip8/internal/session"
	"github.com/retroenv/retrogolib/app"
	"github.com/retroenv/retrogolib/log"

	_ "github.com/retroenv/retrogolib/audio/sdl2"
	_ "github.com/retroenv/retrogolib/gui/sdl2"
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
		logger := config.CreateLogger(opts.Flags, nil)
		var usageErr *cli.UsageError
		if errors.As(err, &usageErr) {
			config.PrintBanner(logger, opts, version, commit, date)
			if msg := usageErr.Error(); msg != "" {
				logger.Error(msg)
			}
			usageErr.ShowUsage()
		} else {
			logger.Error(err.Error())
		}
		os.Exit(1)
	}

	output, closeLog, err := config.LogOutput(opts)
	if err != nil {
		config.CreateLogger(opts.Flags, nil).Fatal(err.Error())
	}
	logger := config.CreateLogger(opts.Flags, output)
	config.PrintBanner(logger, opts, version, commit, date)

	err = session.Run(ctx, logger, opts)
	_ = closeLog()
	if err != nil {
		// Handle context cancellation (Ctrl+C) gracefully
		if errors.Is(err, context.Canceled) {
			logger.Info("Emulation cancelled")
			return
		}
		logger.Error("Emulation failed", log.Err(err))
		os.Exit(1)
	}
}
