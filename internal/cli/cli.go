// Package cli handles command line interface logic
package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrochip8/internal/runner"
	retrocli "github.com/retroenv/retrogolib/cli"
)

const programName = "retrochip8"

// ParseFlags parses command line flags and returns the program options
func ParseFlags() (options.Program, error) {
	var opts options.Program
	var positional options.Positional

	flags := retrocli.NewFlagSet(programName)
	flags.AddSection("Parameters", &opts.Parameters)
	flags.AddSection("Emulation", &opts.Emulation)
	flags.AddSection("Flags", &opts.Flags)
	flags.AddPositional(&positional)

	args, err := flags.Parse(os.Args[1:])
	if err != nil {
		// the flag package already printed the usage for help requests and
		// unknown flags
		if errors.Is(err, retrocli.ErrHelpRequested) {
			return opts, &UsageError{flags: flags, shown: true}
		}
		return opts, &UsageError{flags: flags, msg: err.Error(), shown: true}
	}

	if err := validateArgs(flags, args); err != nil {
		return opts, err
	}

	if positional.File != "" {
		if opts.Input != "" && opts.Input != positional.File {
			return opts, &UsageError{
				flags: flags,
				msg:   fmt.Sprintf("program file given twice: %s and %s", opts.Input, positional.File),
			}
		}
		opts.Input = positional.File
	}
	if opts.Input == "" {
		return opts, &UsageError{flags: flags}
	}

	if err := normalizeOptions(&opts); err != nil {
		return opts, err
	}
	return opts, nil
}

// UsageError represents an error that should show usage information
type UsageError struct {
	flags *retrocli.FlagSet
	msg   string
	shown bool
}

func (e *UsageError) Error() string {
	return e.msg
}

// ShowUsage prints the usage information unless it was already printed
// while parsing.
func (e *UsageError) ShowUsage() {
	if e.shown || e.flags == nil {
		return
	}
	e.flags.ShowUsage()
}

// validateArgs checks if arguments are in correct order
func validateArgs(flags *retrocli.FlagSet, args []string) error {
	for _, arg := range args {
		if strings.HasPrefix(arg, "-") {
			return &UsageError{
				flags: flags,
				msg:   fmt.Sprintf("Potential argument %s found after program file, please pass the program file as last argument", arg),
			}
		}
	}
	if len(args) > 0 {
		return &UsageError{
			flags: flags,
			msg:   fmt.Sprintf("unexpected arguments: %s", strings.Join(args, " ")),
		}
	}
	return nil
}

// normalizeOptions normalizes and validates option values
func normalizeOptions(opts *options.Program) error {
	policy, err := runner.ParseFaultPolicy(opts.Fault)
	if err != nil {
		return err
	}
	opts.Fault = string(policy)

	if opts.Speed < runner.MinSpeed || opts.Speed > runner.MaxSpeed {
		return fmt.Errorf("speed %.1f out of range, valid range: %.1f to %.1f",
			opts.Speed, runner.MinSpeed, runner.MaxSpeed)
	}
	if opts.CyclesPerFrame < 1 {
		return fmt.Errorf("instructions per frame must be positive, got %d", opts.CyclesPerFrame)
	}
	if opts.Frames < 0 {
		return fmt.Errorf("frame count must not be negative, got %d", opts.Frames)
	}
	if opts.TUI && opts.GUI {
		return errors.New("the -tui and -gui frontends can not be combined")
	}

	if opts.Trace {
		opts.Debug = true
	}
	return nil
}
