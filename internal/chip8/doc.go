// Package chip8 implements the CHIP-8 virtual machine core.
//
// # Machine Model
//
// The machine owns 4KB of memory, sixteen 8-bit registers V0-VF, a 16-bit
// index register I, the program counter, the delay and sound timers, a 16 key
// keypad mask, the call stack and the 64x32 display:
//   - 0x050-0x09F: hexadecimal font glyphs, 5 bytes each
//   - ProgramStart-0xFFF: program byte code and data
//
// VF doubles as the carry, borrow, shift-out and collision flag. Instructions
// that produce a flag always write VF after their result.
//
// # Execution
//
// The core performs no I/O and keeps no time. A host drives it:
//
//	m := chip8.New(randomByte)
//	m.LoadProgram(program)
//	for each frame {
//		m.TimeStep()
//		if err := m.Cycle(11); err != nil {
//			// illegal opcode or stack fault, host decides what happens next
//		}
//		present(m.DisplayRows())
//	}
//
// Cycle fetches the big-endian opcode at PC, advances PC by 2, decodes and
// executes it, stopping at the first fatal error. Effects of instructions
// that completed before the error are kept.
//
// # Edge Behavior
//
//   - Sprites wrap their start position around the screen but are clipped at
//     the right and bottom edges. Clipped pixels do not report collisions.
//   - Every memory access wraps at 4KB.
//   - Key instructions use the low nibble of the register value.
//   - LD Vx, K polls: without a pressed key PC stays on the instruction so that
//     the next cycle executes it again.
package chip8
