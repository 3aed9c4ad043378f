package runner

import (
	"bytes"
	"context"
	"testing"

	"github.com/retroenv/retrochip8/internal/chip8"
	"github.com/retroenv/retrochip8/internal/display"
	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

type recordSink struct {
	frames int
	last   display.Rows
	tones  []bool
}

func (s *recordSink) Present(rows display.Rows) {
	s.frames++
	s.last = rows
}

func (s *recordSink) Tone(on bool) {
	s.tones = append(s.tones, on)
}

func encode(opcodes ...uint16) []byte {
	program := make([]byte, 0, 2*len(opcodes))
	for _, opcode := range opcodes {
		program = append(program, byte(opcode>>8), byte(opcode))
	}
	return program
}

func newTestRunner(t *testing.T, opts Options, opcodes ...uint16) (*Runner, *chip8.Machine, *recordSink) {
	t.Helper()
	return newLoggedRunner(log.NewTestLogger(t), opts, opcodes...)
}

func newLoggedRunner(logger *log.Logger, opts Options, opcodes ...uint16) (*Runner, *chip8.Machine, *recordSink) {
	machine := chip8.New(nil)
	sink := &recordSink{}
	r := New(logger, machine, encode(opcodes...), sink, opts)
	return r, machine, sink
}

// newBufferLogger returns a debug logger writing to buf. Halting faults are
// logged as errors, which the test logger treats as test failures.
func newBufferLogger(buf *bytes.Buffer) *log.Logger {
	cfg := log.DefaultConfig()
	cfg.Level = log.DebugLevel
	cfg.Output = buf
	return log.NewWithConfig(cfg)
}

// counting increments V0 in an endless loop of 4 instructions.
var counting = []uint16{0x7001, 0x7001, 0x7001, 0x1200}

func TestFrameExecutesCycles(t *testing.T) {
	r, machine, sink := newTestRunner(t, Options{CyclesPerFrame: 8}, counting...)

	assert.NoError(t, r.Frame())
	assert.Equal(t, uint8(6), machine.State().V[0])
	assert.Equal(t, 1, r.FrameCount())
	assert.Equal(t, 1, sink.frames)
}

func TestNewDefaults(t *testing.T) {
	r, _, _ := newTestRunner(t, Options{}, counting...)
	assert.Equal(t, DefaultCyclesPerFrame, r.CyclesPerFrame())
	assert.Equal(t, 1.0, r.Speed())
	assert.Equal(t, FaultHalt, r.opts.Fault)
}

func TestSpeed(t *testing.T) {
	r, _, _ := newTestRunner(t, Options{CyclesPerFrame: 10, Speed: 2}, counting...)
	assert.Equal(t, 2.0, r.Speed())
	assert.Equal(t, 20, r.CyclesPerFrame())

	r.SpeedUp()
	assert.Equal(t, 2.1, r.Speed())
	assert.Equal(t, 21, r.CyclesPerFrame())

	r.SetSpeed(10)
	assert.Equal(t, MaxSpeed, r.Speed())
	r.SpeedUp()
	assert.Equal(t, MaxSpeed, r.Speed())

	r.SetSpeed(0)
	assert.Equal(t, MinSpeed, r.Speed())
	assert.Equal(t, 2, r.CyclesPerFrame())
	r.SpeedDown()
	assert.Equal(t, MinSpeed, r.Speed())

	r.SetSpeed(1.04)
	assert.Equal(t, 1.0, r.Speed())
}

func TestCyclesPerFrameMinimum(t *testing.T) {
	r, _, _ := newTestRunner(t, Options{CyclesPerFrame: 1, Speed: MinSpeed}, counting...)
	assert.Equal(t, 1, r.CyclesPerFrame())
}

func TestFrameTone(t *testing.T) {
	// LD V0, 3; LD ST, V0; JP $204
	r, machine, sink := newTestRunner(t, Options{CyclesPerFrame: 4}, 0x6003, 0xF018, 0x1204)

	assert.NoError(t, r.Frame())
	assert.True(t, r.Tone())
	assert.Equal(t, []bool{true}, sink.tones)

	assert.NoError(t, r.Frame())
	assert.NoError(t, r.Frame())
	assert.Equal(t, uint8(1), machine.SoundTimer())
	assert.True(t, r.Tone())

	assert.NoError(t, r.Frame())
	assert.False(t, r.Tone())
	assert.Equal(t, []bool{true, false}, sink.tones)
}

func TestPause(t *testing.T) {
	r, machine, sink := newTestRunner(t, Options{CyclesPerFrame: 4}, counting...)

	assert.True(t, r.TogglePause())
	assert.True(t, r.Paused())
	assert.NoError(t, r.Frame())
	assert.Equal(t, uint8(0), machine.State().V[0])
	assert.Equal(t, 0, r.FrameCount())
	assert.Equal(t, 1, sink.frames, "paused frames are presented")

	assert.False(t, r.TogglePause())
	assert.NoError(t, r.Frame())
	assert.Equal(t, uint8(3), machine.State().V[0])
}

func TestFaultHalt(t *testing.T) {
	var buf bytes.Buffer
	r, machine, _ := newLoggedRunner(newBufferLogger(&buf), Options{CyclesPerFrame: 4}, 0x7001, 0xFFFF)

	err := r.Frame()
	assert.ErrorIs(t, err, chip8.ErrIllegalOpcode)
	assert.True(t, IsFault(err))
	assert.True(t, r.Halted())
	assert.Equal(t, 1, r.Faults())
	assert.Contains(t, buf.String(), "Program fault, halting")
	assert.Contains(t, buf.String(), "illegal opcode $FFFF")

	assert.NoError(t, r.Frame())
	assert.Equal(t, uint8(1), machine.State().V[0], "halted machine does not execute")

	r.Restart()
	assert.False(t, r.Halted())
	assert.Equal(t, uint16(chip8.ProgramStart), machine.State().PC)
	assert.Equal(t, uint8(0), machine.State().V[0])
}

func TestFaultSkip(t *testing.T) {
	r, machine, _ := newTestRunner(t, Options{CyclesPerFrame: 3, Fault: FaultSkip}, 0x7001, 0xFFFF, 0x1200)

	assert.NoError(t, r.Frame())
	assert.NoError(t, r.Frame())
	assert.Equal(t, 2, r.Faults())
	assert.Equal(t, uint8(2), machine.State().V[0])
	assert.False(t, r.Halted())
}

func TestFaultRestart(t *testing.T) {
	r, machine, _ := newTestRunner(t, Options{CyclesPerFrame: 3, Fault: FaultRestart}, 0x7001, 0x00EE)

	assert.NoError(t, r.Frame())
	assert.Equal(t, 1, r.Faults())
	state := machine.State()
	assert.Equal(t, uint16(chip8.ProgramStart), state.PC)
	assert.Equal(t, uint8(0), state.V[0])
	assert.Equal(t, byte(0x70), machine.ReadMemory(chip8.ProgramStart), "program is reloaded")
}

func TestRun(t *testing.T) {
	r, _, sink := newTestRunner(t, Options{CyclesPerFrame: 2, Frames: 5}, counting...)

	assert.NoError(t, r.Run(context.Background()))
	assert.Equal(t, 5, r.FrameCount())
	assert.Equal(t, 5, sink.frames)
}

func TestRunRealtime(t *testing.T) {
	r, _, _ := newTestRunner(t, Options{Frames: 2, Realtime: true}, counting...)

	assert.NoError(t, r.Run(context.Background()))
	assert.Equal(t, 2, r.FrameCount())
}

func TestRunCancelled(t *testing.T) {
	r, _, _ := newTestRunner(t, Options{}, counting...)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := r.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, r.FrameCount())
}

func TestRunHalts(t *testing.T) {
	var buf bytes.Buffer
	r, _, _ := newLoggedRunner(newBufferLogger(&buf), Options{Frames: 10}, 0x00EE)

	err := r.Run(context.Background())
	assert.ErrorIs(t, err, chip8.ErrStackUnderflow)
	assert.Equal(t, 1, r.FrameCount())
	assert.True(t, r.Halted())
	assert.Contains(t, buf.String(), "Program fault, halting")
}

func TestRunSchedule(t *testing.T) {
	schedule := NewSchedule()
	schedule.Add(2, 0x5)

	// LD V1, K; JP $202
	r, machine, _ := newTestRunner(t, Options{Frames: 2, Schedule: schedule}, 0xF10A, 0x1202)

	assert.NoError(t, r.Run(context.Background()))
	assert.Equal(t, uint16(chip8.ProgramStart), machine.State().PC, "waiting for a key")

	r.opts.Frames = 3
	assert.NoError(t, r.Run(context.Background()))
	state := machine.State()
	assert.Equal(t, uint8(0x5), state.V[1])
	assert.Equal(t, uint16(chip8.ProgramStart+2), state.PC)
	assert.Equal(t, uint16(0), state.Keys, "key is consumed")
}

func TestPressReleasesKey(t *testing.T) {
	r, machine, _ := newTestRunner(t, Options{}, 0x1200)

	r.Press(0x3)
	for range HoldFrames {
		assert.NoError(t, r.Frame())
	}
	assert.Equal(t, uint16(1<<3), machine.State().Keys)

	assert.NoError(t, r.Frame())
	assert.Equal(t, uint16(0), machine.State().Keys)
}

func TestKeyDownUp(t *testing.T) {
	r, machine, _ := newTestRunner(t, Options{}, 0x1200)

	r.Press(0x3)
	r.KeyDown(0x3)
	for range HoldFrames + 1 {
		assert.NoError(t, r.Frame())
	}
	assert.Equal(t, uint16(1<<3), machine.State().Keys, "key down cancels the auto release")

	r.KeyUp(0x3)
	assert.Equal(t, uint16(0), machine.State().Keys)
}

func TestDumpState(t *testing.T) {
	r, _, _ := newTestRunner(t, Options{}, 0x1200)
	dump := r.dumpState()
	assert.Contains(t, dump, "PC")
	assert.Contains(t, dump, "Stack")
}

func TestNextInstruction(t *testing.T) {
	r, _, _ := newTestRunner(t, Options{CyclesPerFrame: 1}, 0x6312, 0xFFFF)
	assert.Equal(t, "$200: ld V3, $12", r.nextInstruction())

	assert.NoError(t, r.Frame())
	assert.Equal(t, "$202: $FFFF", r.nextInstruction())
}

func TestState(t *testing.T) {
	r, machine, _ := newTestRunner(t, Options{CyclesPerFrame: 1}, 0x6312, 0x1202)
	assert.NoError(t, r.Frame())
	assert.Equal(t, machine.State(), r.State())
	assert.Equal(t, uint8(0x12), r.State().V[3])
}
