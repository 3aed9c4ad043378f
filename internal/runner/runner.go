// Package runner drives a CHIP-8 machine frame by frame the way a host does:
// it applies key input, ticks the timers at 60Hz, executes a batch of
// instructions and hands the resulting frame to a sink.
package runner

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/retroenv/retrochip8/internal/chip8"
	"github.com/retroenv/retrochip8/internal/display"
	"github.com/retroenv/retrogolib/log"
)

const (
	// FrameRate is the number of frames per second and the timer tick rate.
	FrameRate = 60
	// FrameDuration is the duration of a single frame.
	FrameDuration = time.Second / FrameRate

	// DefaultCyclesPerFrame executes 660 instructions per second.
	DefaultCyclesPerFrame = 11

	// MinSpeed and MaxSpeed limit the speed multiplier.
	MinSpeed = 0.2
	MaxSpeed = 4.0
	// SpeedStep is the increment of speed adjustments.
	SpeedStep = 0.1

	// HoldFrames is the number of frames that a pressed key stays down
	// for hosts that report no key release.
	HoldFrames = 6
)

// Machine is the virtual machine interface used by the runner.
type Machine interface {
	LoadProgram(program []byte)
	Reset()
	Cycle(count int) error
	TimeStep()
	KeyDown(key uint8)
	KeyUp(key uint8)
	SoundTimer() uint8
	DisplayRows() display.Rows
	ReadMemory(address uint16) byte
	State() chip8.State
}

// Sink receives the output of every frame.
type Sink interface {
	Present(rows display.Rows)
	Tone(on bool)
}

// Options of the runner.
type Options struct {
	CyclesPerFrame int         // instructions per frame at speed 1.0
	Speed          float64     // multiplier of CyclesPerFrame
	Frames         int         // frames to run, 0 runs until the context is cancelled
	Fault          FaultPolicy // reaction to illegal opcodes and stack faults
	Realtime       bool        // pace Run at FrameRate
	Schedule       *Schedule   // scripted key presses
}

// Runner executes a program on a machine. It is not safe for concurrent use.
type Runner struct {
	logger  *log.Logger
	machine Machine
	program []byte
	sink    Sink
	opts    Options

	speed    float64
	paused   bool
	halted   bool
	frame    int
	faults   int
	tone     bool
	releases map[uint8]int // key to frame of release
}

// New returns a runner for the program and loads the program into the
// machine.
func New(logger *log.Logger, machine Machine, program []byte, sink Sink, opts Options) *Runner {
	if opts.CyclesPerFrame <= 0 {
		opts.CyclesPerFrame = DefaultCyclesPerFrame
	}
	if opts.Fault == "" {
		opts.Fault = FaultHalt
	}
	if opts.Speed == 0 {
		opts.Speed = 1
	}

	r := &Runner{
		logger:   logger,
		machine:  machine,
		program:  program,
		sink:     sink,
		opts:     opts,
		releases: map[uint8]int{},
	}
	r.SetSpeed(opts.Speed)
	machine.LoadProgram(program)
	return r
}

// Run executes frames until the configured frame count is reached, the
// context is cancelled or a fault halts the machine.
func (r *Runner) Run(ctx context.Context) error {
	var ticks <-chan time.Time
	if r.opts.Realtime {
		ticker := time.NewTicker(FrameDuration)
		defer ticker.Stop()
		ticks = ticker.C
	}

	for r.opts.Frames == 0 || r.frame < r.opts.Frames {
		if ticks != nil {
			select {
			case <-ctx.Done():
				return fmt.Errorf("running frame %d: %w", r.frame, ctx.Err())
			case <-ticks:
			}
		} else if err := ctx.Err(); err != nil {
			return fmt.Errorf("running frame %d: %w", r.frame, err)
		}

		if err := r.Frame(); err != nil {
			return err
		}
	}

	r.logger.Debug("Run finished",
		log.Int("frames", r.frame),
		log.Int("faults", r.faults))
	return nil
}

// Frame runs a single frame. Paused and halted machines only present their
// current display.
func (r *Runner) Frame() error {
	if r.paused || r.halted {
		r.present()
		return nil
	}

	r.applyInput()
	r.logger.Trace("Frame",
		log.Int("frame", r.frame),
		log.StringFunc("pc", r.nextInstruction))

	r.machine.TimeStep()
	err := r.machine.Cycle(r.CyclesPerFrame())
	r.frame++

	if err != nil {
		if err := r.handleFault(err); err != nil {
			r.present()
			return err
		}
	}

	r.present()
	return nil
}

// CyclesPerFrame returns the number of instructions executed per frame at
// the current speed.
func (r *Runner) CyclesPerFrame() int {
	cycles := int(math.Round(float64(r.opts.CyclesPerFrame) * r.speed))
	return max(cycles, 1)
}

// Speed returns the current speed multiplier.
func (r *Runner) Speed() float64 {
	return r.speed
}

// SetSpeed sets the speed multiplier, clamped to MinSpeed and MaxSpeed and
// rounded to SpeedStep.
func (r *Runner) SetSpeed(speed float64) {
	speed = math.Round(speed*10) / 10
	r.speed = min(max(speed, MinSpeed), MaxSpeed)
}

// SpeedUp increases the speed by one step.
func (r *Runner) SpeedUp() {
	r.SetSpeed(r.speed + SpeedStep)
	r.logger.Debug("Speed changed", log.Float64("speed", r.speed))
}

// SpeedDown decreases the speed by one step.
func (r *Runner) SpeedDown() {
	r.SetSpeed(r.speed - SpeedStep)
	r.logger.Debug("Speed changed", log.Float64("speed", r.speed))
}

// TogglePause pauses or resumes execution and returns the new pause state.
func (r *Runner) TogglePause() bool {
	r.paused = !r.paused
	r.logger.Debug("Pause toggled", log.Bool("paused", r.paused))
	return r.paused
}

// Paused returns whether execution is paused.
func (r *Runner) Paused() bool {
	return r.paused
}

// Halted returns whether a fault stopped the machine.
func (r *Runner) Halted() bool {
	return r.halted
}

// Restart resets the machine, reloads the program and clears a halt.
func (r *Runner) Restart() {
	r.machine.Reset()
	r.machine.LoadProgram(r.program)
	clear(r.releases)
	r.halted = false
	r.logger.Debug("Machine restarted", log.Int("frame", r.frame))
}

// State returns a snapshot of the machine registers.
func (r *Runner) State() chip8.State {
	return r.machine.State()
}

// FrameCount returns the number of executed frames.
func (r *Runner) FrameCount() int {
	return r.frame
}

// Faults returns the number of faults that occurred.
func (r *Runner) Faults() int {
	return r.faults
}

// Tone returns whether the sound timer is active.
func (r *Runner) Tone() bool {
	return r.tone
}

// KeyDown presses the key until KeyUp is called.
func (r *Runner) KeyDown(key uint8) {
	delete(r.releases, key)
	r.machine.KeyDown(key)
}

// KeyUp releases the key.
func (r *Runner) KeyUp(key uint8) {
	delete(r.releases, key)
	r.machine.KeyUp(key)
}

// Press presses the key for HoldFrames frames.
func (r *Runner) Press(key uint8) {
	r.machine.KeyDown(key)
	r.releases[key] = r.frame + HoldFrames
}

// applyInput releases held keys that expired and presses scheduled keys.
func (r *Runner) applyInput() {
	for key, frame := range r.releases {
		if frame <= r.frame {
			delete(r.releases, key)
			r.machine.KeyUp(key)
		}
	}

	if r.opts.Schedule == nil {
		return
	}
	for _, key := range r.opts.Schedule.Keys(r.frame) {
		r.logger.Debug("Scripted key press",
			log.Int("frame", r.frame),
			log.Hex("key", key))
		r.Press(key)
	}
}

func (r *Runner) present() {
	r.sink.Present(r.machine.DisplayRows())

	tone := r.machine.SoundTimer() > 0
	if tone != r.tone {
		r.tone = tone
		r.sink.Tone(tone)
	}
}

// nextInstruction returns the address and disassembly of the instruction
// at PC.
func (r *Runner) nextInstruction() string {
	pc := r.machine.State().PC
	opcode := uint16(r.machine.ReadMemory(pc))<<8 | uint16(r.machine.ReadMemory(pc+1))
	ins, err := chip8.Decode(opcode)
	if err != nil {
		return fmt.Sprintf("$%03X: $%04X", pc, opcode)
	}
	return fmt.Sprintf("$%03X: %s", pc, ins)
}

// IsFault reports whether the error is a fault of the executed program.
func IsFault(err error) bool {
	return errors.Is(err, chip8.ErrIllegalOpcode) ||
		errors.Is(err, chip8.ErrStackOverflow) ||
		errors.Is(err, chip8.ErrStackUnderflow)
}
