package chip8

import (
	"fmt"

	"github.com/retroenv/retrochip8/internal/display"
	"github.com/retroenv/retrochip8/internal/stack"
)

const (
	// MemorySize is the size of the addressable memory in bytes.
	MemorySize = 0x1000
	// ProgramStart is the address that programs are loaded to and that
	// execution starts at.
	ProgramStart = 0x200
	// MaxProgramSize is the largest program that fits into memory.
	MaxProgramSize = MemorySize - ProgramStart

	// RegisterCount is the number of general purpose registers.
	RegisterCount = 16
	// KeyCount is the number of keypad keys.
	KeyCount = 16

	flagRegister = 0xF
	addressMask  = MemorySize - 1
)

// RandomSource returns a uniformly distributed random byte.
type RandomSource func() uint8

// Machine is a CHIP-8 virtual machine. It is not safe for concurrent use.
type Machine struct {
	memory [MemorySize]byte
	v      [RegisterCount]uint8
	i      uint16
	pc     uint16
	dt     uint8
	st     uint8
	keys   uint16

	stack   stack.Stack
	display display.Display
	random  RandomSource
}

// State is a snapshot of the machine registers for diagnostics.
type State struct {
	PC    uint16
	I     uint16
	V     [RegisterCount]uint8
	DT    uint8
	ST    uint8
	Keys  uint16
	Stack []uint16
}

// New returns a machine in its reset state. A nil random source makes
// the RND instruction always produce 0.
func New(random RandomSource) *Machine {
	if random == nil {
		random = func() uint8 { return 0 }
	}
	m := &Machine{
		random: random,
	}
	m.Reset()
	return m
}

// Reset restores the power-on state: memory, registers, timers, keys, stack
// and display are cleared, the font is loaded and PC is set to ProgramStart.
// The random source is kept.
func (m *Machine) Reset() {
	m.memory = [MemorySize]byte{}
	m.v = [RegisterCount]uint8{}
	m.i = 0
	m.pc = ProgramStart
	m.dt = 0
	m.st = 0
	m.keys = 0
	m.stack.Reset()
	m.display.Clear()

	copy(m.memory[FontStart:], font[:])
}

// LoadProgram copies the program to ProgramStart. Bytes beyond the end of
// memory are dropped. Loading does not reset any other state.
func (m *Machine) LoadProgram(program []byte) {
	copy(m.memory[ProgramStart:], program)
}

// Cycle executes count instructions. It stops at the first illegal opcode
// or stack fault and returns it wrapped with the failing address. The effects
// of all previously executed instructions are kept.
func (m *Machine) Cycle(count int) error {
	for range count {
		address := m.pc
		opcode := m.fetch()
		m.pc += 2

		if err := m.step(opcode); err != nil {
			return fmt.Errorf("executing opcode $%04X at $%03X: %w", opcode, address&addressMask, err)
		}
	}
	return nil
}

// TimeStep decrements the delay and sound timers that are not zero. Hosts
// call it at 60Hz.
func (m *Machine) TimeStep() {
	if m.dt > 0 {
		m.dt--
	}
	if m.st > 0 {
		m.st--
	}
}

// KeyDown marks the key as pressed, only the low nibble of key is used.
func (m *Machine) KeyDown(key uint8) {
	m.keys |= keyMask(key)
}

// KeyUp marks the key as released, only the low nibble of key is used.
func (m *Machine) KeyUp(key uint8) {
	m.keys &^= keyMask(key)
}

// SoundTimer returns the sound timer. A tone plays while it is not zero.
func (m *Machine) SoundTimer() uint8 {
	return m.st
}

// DelayTimer returns the delay timer.
func (m *Machine) DelayTimer() uint8 {
	return m.dt
}

// DisplayRows returns a copy of the display rows.
func (m *Machine) DisplayRows() display.Rows {
	return m.display.Rows()
}

// ReadMemory returns the byte at the given address, wrapped at 4KB.
func (m *Machine) ReadMemory(address uint16) byte {
	return m.memory[address&addressMask]
}

// State returns a snapshot of the registers, timers, keys and stack.
func (m *Machine) State() State {
	return State{
		PC:    m.pc,
		I:     m.i,
		V:     m.v,
		DT:    m.dt,
		ST:    m.st,
		Keys:  m.keys,
		Stack: m.stack.Values(),
	}
}

func (m *Machine) step(opcode uint16) error {
	ins, err := Decode(opcode)
	if err != nil {
		return err
	}
	return m.execute(ins)
}

// fetch reads the big-endian opcode at PC.
func (m *Machine) fetch() uint16 {
	high := m.memory[m.pc&addressMask]
	low := m.memory[(m.pc+1)&addressMask]
	return uint16(high)<<8 | uint16(low)
}

func keyMask(key uint8) uint16 {
	return 1 << (key & 0xF)
}
