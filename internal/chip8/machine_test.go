package chip8

import (
	"errors"
	"testing"

	"github.com/retroenv/retrochip8/internal/stack"
	"github.com/retroenv/retrogolib/assert"
)

// encode converts opcodes to big-endian program bytes.
func encode(opcodes ...uint16) []byte {
	program := make([]byte, 0, 2*len(opcodes))
	for _, opcode := range opcodes {
		program = append(program, byte(opcode>>8), byte(opcode))
	}
	return program
}

func newTestMachine(t *testing.T, opcodes ...uint16) *Machine {
	t.Helper()
	m := New(nil)
	m.LoadProgram(encode(opcodes...))
	return m
}

func TestNew(t *testing.T) {
	m := New(nil)

	state := m.State()
	assert.Equal(t, uint16(ProgramStart), state.PC)
	assert.Equal(t, uint16(0), state.I)
	assert.Equal(t, [RegisterCount]uint8{}, state.V)
	assert.Equal(t, uint16(0), state.Keys)
	assert.Empty(t, state.Stack)
	assert.Equal(t, uint8(0), m.SoundTimer())
	assert.Equal(t, uint8(0), m.DelayTimer())

	for i, b := range font {
		assert.Equal(t, b, m.ReadMemory(FontStart+uint16(i)))
	}
	assert.Equal(t, byte(0), m.ReadMemory(FontStart-1))
	assert.Equal(t, byte(0), m.ReadMemory(FontStart+uint16(len(font))))
}

func TestLoadProgram(t *testing.T) {
	m := New(nil)
	m.LoadProgram([]byte{0x12, 0x34, 0x56})

	assert.Equal(t, byte(0x12), m.ReadMemory(ProgramStart))
	assert.Equal(t, byte(0x34), m.ReadMemory(ProgramStart+1))
	assert.Equal(t, byte(0x56), m.ReadMemory(ProgramStart+2))
	assert.Equal(t, uint16(ProgramStart), m.State().PC)
}

func TestLoadProgramTooLarge(t *testing.T) {
	program := make([]byte, MaxProgramSize+16)
	for i := range program {
		program[i] = 0xAA
	}

	m := New(nil)
	m.LoadProgram(program)
	assert.Equal(t, byte(0xAA), m.ReadMemory(MemorySize-1))
	assert.Equal(t, font[0], m.ReadMemory(FontStart))
	assert.Equal(t, byte(0), m.ReadMemory(0))
}

func TestReset(t *testing.T) {
	m := newTestMachine(t, 0x6A42, 0xF029, 0xF115, 0xF118, 0xD011, 0x2300)
	m.v[1] = 5
	m.KeyDown(7)
	assert.NoError(t, m.Cycle(6))

	m.Reset()

	state := m.State()
	assert.Equal(t, uint16(ProgramStart), state.PC)
	assert.Equal(t, uint16(0), state.I)
	assert.Equal(t, [RegisterCount]uint8{}, state.V)
	assert.Equal(t, uint16(0), state.Keys)
	assert.Empty(t, state.Stack)
	assert.Equal(t, uint8(0), m.DelayTimer())
	assert.Equal(t, uint8(0), m.SoundTimer())
	assert.Equal(t, [32]uint64{}, [32]uint64(m.DisplayRows()))
	assert.Equal(t, byte(0), m.ReadMemory(ProgramStart), "program is not reloaded")
	assert.Equal(t, font[5], m.ReadMemory(FontStart+5))
}

func TestResetKeepsRandomSource(t *testing.T) {
	m := New(func() uint8 { return 0x5A })
	m.Reset()
	m.LoadProgram(encode(0xC0FF))

	assert.NoError(t, m.Cycle(1))
	assert.Equal(t, uint8(0x5A), m.v[0])
}

func TestTimeStep(t *testing.T) {
	m := New(nil)
	m.dt = 2
	m.st = 1

	m.TimeStep()
	assert.Equal(t, uint8(1), m.DelayTimer())
	assert.Equal(t, uint8(0), m.SoundTimer())

	m.TimeStep()
	m.TimeStep()
	assert.Equal(t, uint8(0), m.DelayTimer())
	assert.Equal(t, uint8(0), m.SoundTimer())
}

func TestKeys(t *testing.T) {
	m := New(nil)

	m.KeyDown(0x0)
	m.KeyDown(0xF)
	assert.Equal(t, uint16(0x8001), m.State().Keys)

	m.KeyDown(0x13)
	assert.Equal(t, uint16(0x8009), m.State().Keys)

	m.KeyUp(0xF)
	m.KeyUp(0x3)
	assert.Equal(t, uint16(0x0001), m.State().Keys)
}

func TestCycleFetchesBigEndian(t *testing.T) {
	m := newTestMachine(t, 0x6012, 0x6134)

	assert.NoError(t, m.Cycle(2))
	assert.Equal(t, uint8(0x12), m.v[0])
	assert.Equal(t, uint8(0x34), m.v[1])
	assert.Equal(t, uint16(ProgramStart+4), m.State().PC)
}

func TestCycleZero(t *testing.T) {
	m := newTestMachine(t, 0xFFFF)
	assert.NoError(t, m.Cycle(0))
	assert.Equal(t, uint16(ProgramStart), m.State().PC)
}

func TestCycleStopsAtIllegalOpcode(t *testing.T) {
	m := newTestMachine(t, 0x6005, 0xFFFF, 0x6106)

	err := m.Cycle(3)
	assert.ErrorIs(t, err, ErrIllegalOpcode)
	assert.ErrorContains(t, err, "executing opcode $FFFF at $202")

	var illegal *IllegalOpcodeError
	assert.True(t, errors.As(err, &illegal))
	assert.Equal(t, uint16(0xFFFF), illegal.Opcode)

	assert.Equal(t, uint8(5), m.v[0], "effects before the fault are kept")
	assert.Equal(t, uint8(0), m.v[1], "instructions after the fault are not executed")
	assert.Equal(t, uint16(ProgramStart+4), m.State().PC)
}

func TestCycleStackOverflow(t *testing.T) {
	m := newTestMachine(t, 0x2200)

	err := m.Cycle(stack.Capacity + 1)
	assert.ErrorIs(t, err, ErrStackOverflow)
	assert.ErrorIs(t, err, stack.ErrOverflow)
	assert.Len(t, m.State().Stack, stack.Capacity)
}

func TestCycleStackUnderflow(t *testing.T) {
	m := newTestMachine(t, 0x00EE)

	err := m.Cycle(1)
	assert.ErrorIs(t, err, ErrStackUnderflow)
	assert.ErrorContains(t, err, "at $200")
}

func TestCycleWrapsMemory(t *testing.T) {
	m := New(nil)
	m.pc = MemorySize - 1
	m.memory[MemorySize-1] = 0x60
	m.memory[0] = 0x99

	assert.NoError(t, m.Cycle(1))
	assert.Equal(t, uint8(0x99), m.v[0])
}

func TestCycleRepeatsKeyWait(t *testing.T) {
	m := newTestMachine(t, 0xF30A, 0x6001)

	assert.NoError(t, m.Cycle(10))
	assert.Equal(t, uint16(ProgramStart), m.State().PC)

	m.KeyDown(0xB)
	assert.NoError(t, m.Cycle(2))
	assert.Equal(t, uint8(0xB), m.v[3])
	assert.Equal(t, uint8(1), m.v[0])
	assert.Equal(t, uint16(0), m.State().Keys)
}

func TestStateIsSnapshot(t *testing.T) {
	m := newTestMachine(t, 0x2300)
	assert.NoError(t, m.Cycle(1))

	state := m.State()
	state.Stack[0] = 0
	state.V[0] = 1

	assert.Equal(t, []uint16{ProgramStart + 2}, m.State().Stack)
	assert.Equal(t, uint8(0), m.v[0])
}
