// Package config handles application configuration and setup
package config

import (
	"fmt"
	"io"
	"os"

	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrogolib/buildinfo"
	"github.com/retroenv/retrogolib/log"
)

// CreateLogger creates a logger with appropriate settings. A nil output
// logs to stdout.
func CreateLogger(flags options.Flags, output io.Writer) *log.Logger {
	cfg := log.DefaultConfig()
	switch {
	case flags.Trace:
		cfg.Level = log.TraceLevel
	case flags.Debug:
		cfg.Level = log.DebugLevel
	case flags.Quiet:
		cfg.Level = log.ErrorLevel
	}
	cfg.Output = output
	return log.NewWithConfig(cfg)
}

// PrintBanner prints application version information
func PrintBanner(logger *log.Logger, opts options.Program, version, commit, date string) {
	if opts.Quiet {
		return
	}
	logger.Info("retrochip8", log.String("version", buildinfo.Version(version, commit, date)))
}

// LogOutput returns the writer for log output. Logs go to the log file if
// one is set. The terminal frontend owns stdout, so its logs are discarded
// otherwise. The returned close function has to be called on exit.
func LogOutput(opts options.Program) (io.Writer, func() error, error) {
	if opts.Log != "" {
		file, err := os.OpenFile(opts.Log, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("opening log file %s: %w", opts.Log, err)
		}
		return file, file.Close, nil
	}

	noop := func() error { return nil }
	if opts.TUI {
		return io.Discard, noop, nil
	}
	return os.Stdout, noop, nil
}
