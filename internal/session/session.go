// Package session sets up and runs an emulation session for a program file.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"time"

	"github.com/retroenv/retrochip8/internal/chip8"
	"github.com/retroenv/retrochip8/internal/config"
	"github.com/retroenv/retrochip8/internal/display"
	"github.com/retroenv/retrochip8/internal/frontend/sdl"
	"github.com/retroenv/retrochip8/internal/frontend/termloop"
	"github.com/retroenv/retrochip8/internal/keymap"
	"github.com/retroenv/retrochip8/internal/loader"
	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrochip8/internal/render"
	"github.com/retroenv/retrochip8/internal/runner"
	"github.com/retroenv/retrogolib/log"
)

// Session contains everything that is needed to run a program.
type Session struct {
	logger   *log.Logger
	opts     options.Program
	keys     *keymap.Keymap
	settings config.Settings
	program  []byte
	machine  *chip8.Machine
	runOpts  runner.Options
}

// Run loads the program of the options and runs it with the frontend that
// the options select.
func Run(ctx context.Context, logger *log.Logger, opts options.Program) error {
	s, err := New(logger, opts)
	if err != nil {
		return err
	}

	switch {
	case opts.TUI:
		return s.runTerminal(ctx)
	case opts.GUI:
		return s.runWindow(ctx)
	default:
		return s.runHeadless(ctx)
	}
}

// New loads the settings and the program and creates the machine.
func New(logger *log.Logger, opts options.Program) (*Session, error) {
	keys := keymap.Default()
	settings, err := config.LoadSettings(opts.Config, keys)
	if err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}

	program, err := loader.New().Load(opts.Input)
	if err != nil {
		return nil, fmt.Errorf("loading program: %w", err)
	}

	schedule, err := runner.ParseSchedule(opts.Keys, keys.Parse)
	if err != nil {
		return nil, fmt.Errorf("parsing key schedule: %w", err)
	}

	seed := randomSeed(opts.Seed)

	if !opts.Quiet {
		logger.Info("Loaded program",
			log.String("file", opts.Input),
			log.Int("size", len(program)),
			log.Int64("seed", seed))
	}

	return &Session{
		logger:   logger,
		opts:     opts,
		keys:     keys,
		settings: settings,
		program:  program,
		machine:  chip8.New(NewRandomSource(seed)),
		runOpts: runner.Options{
			CyclesPerFrame: opts.CyclesPerFrame,
			Speed:          opts.Speed,
			Frames:         opts.Frames,
			Fault:          runner.FaultPolicy(opts.Fault),
			Realtime:       opts.Realtime,
			Schedule:       schedule,
		},
	}, nil
}

// randomSeed returns the seed for the random source. Negative seeds are
// replaced by the current time, the used seed is logged to repeat a run.
func randomSeed(seed int64) int64 {
	if seed < 0 {
		return time.Now().UnixNano()
	}
	return seed
}

// NewRandomSource returns a deterministic random byte source for the seed.
func NewRandomSource(seed int64) chip8.RandomSource {
	rng := rand.New(rand.NewPCG(uint64(seed), uint64(seed)))
	return func() uint8 {
		return uint8(rng.UintN(256))
	}
}

// runHeadless runs the configured number of frames and writes the final
// frame as text.
func (s *Session) runHeadless(ctx context.Context) error {
	sink := render.NewText(s.settings.Display.PixelOn, s.settings.Display.PixelOff)
	r := runner.New(s.logger, s.machine, s.program, sink, s.runOpts)

	runErr := r.Run(ctx)

	s.logger.Debug("Headless run finished",
		log.Int("frames", r.FrameCount()),
		log.Int("faults", r.Faults()),
		log.Int("tones", sink.Tones()))

	if err := s.writeFrame(sink); err != nil {
		return errors.Join(runErr, err)
	}
	if err := s.writeImage(sink.Rows()); err != nil {
		return errors.Join(runErr, err)
	}
	return runErr
}

// writeImage writes the frame as PNG image if an image file is set.
func (s *Session) writeImage(rows display.Rows) error {
	if s.opts.PNG == "" {
		return nil
	}

	file, err := os.Create(s.opts.PNG)
	if err != nil {
		return fmt.Errorf("creating image file %s: %w", s.opts.PNG, err)
	}

	index, _ := render.ColorIndex(s.settings.Display.Color)
	err = render.WritePNG(file, rows, render.Palette[index].RGBA, s.settings.Display.Scale)
	if closeErr := file.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("closing image file %s: %w", s.opts.PNG, closeErr)
	}
	return err
}

func (s *Session) writeFrame(frame io.WriterTo) error {
	output, err := createWriter(s.opts)
	if err != nil {
		return fmt.Errorf("creating writer: %w", err)
	}
	defer closeWriter(output)

	if _, err := frame.WriteTo(output); err != nil {
		return fmt.Errorf("writing frame: %w", err)
	}
	return nil
}

func (s *Session) runTerminal(ctx context.Context) error {
	frontend := termloop.New(s.logger, s.keys, s.settings.Display)
	r := runner.New(s.logger, s.machine, s.program, frontend, s.runOpts)
	return frontend.Run(ctx, r)
}

func (s *Session) runWindow(ctx context.Context) error {
	frontend := sdl.New(s.logger, s.keys, s.settings.Display)
	r := runner.New(s.logger, s.machine, s.program, frontend, s.runOpts)
	return frontend.Run(ctx, r)
}

func closeWriter(w io.Writer) {
	if closer, ok := w.(io.Closer); ok && w != os.Stdout {
		_ = closer.Close()
	}
}

func createWriter(opts options.Program) (io.Writer, error) {
	if opts.Output == "" {
		return os.Stdout, nil
	}

	file, err := os.Create(opts.Output)
	if err != nil {
		return nil, fmt.Errorf("creating output file %s: %w", opts.Output, err)
	}
	return file, nil
}
