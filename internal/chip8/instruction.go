package chip8

import (
	"fmt"

	chip8cpu "github.com/retroenv/retrogolib/arch/cpu/chip8"
)

// Op identifies the kind of a decoded instruction.
type Op uint8

// Instruction kinds, the opcode shape is listed next to each kind.
const (
	OpSys     Op = iota // 0nnn
	OpCls               // 00E0
	OpRet               // 00EE
	OpJp                // 1nnn
	OpCall              // 2nnn
	OpSeByte            // 3xkk
	OpSneByte           // 4xkk
	OpSeReg             // 5xy0
	OpLdByte            // 6xkk
	OpAddByte           // 7xkk
	OpLdReg             // 8xy0
	OpOr                // 8xy1
	OpAnd               // 8xy2
	OpXor               // 8xy3
	OpAddReg            // 8xy4
	OpSub               // 8xy5
	OpShr               // 8xy6
	OpSubn              // 8xy7
	OpShl               // 8xyE
	OpSneReg            // 9xy0
	OpLdI               // Annn
	OpJpV0              // Bnnn
	OpRnd               // Cxkk
	OpDrw               // Dxyn
	OpSkp               // Ex9E
	OpSknp              // ExA1
	OpLdVxDT            // Fx07
	OpLdVxK             // Fx0A
	OpLdDTVx            // Fx15
	OpLdSTVx            // Fx18
	OpAddIVx            // Fx1E
	OpLdFVx             // Fx29
	OpLdBVx             // Fx33
	OpLdIVx             // Fx55
	OpLdVxI             // Fx65

	opCount
)

// sysName is the mnemonic of the ignored machine code routine call.
const sysName = "sys"

var mnemonics = [opCount]string{
	OpSys:     sysName,
	OpCls:     chip8cpu.ClsName,
	OpRet:     chip8cpu.RetName,
	OpJp:      chip8cpu.JpName,
	OpCall:    chip8cpu.CallName,
	OpSeByte:  chip8cpu.SeName,
	OpSneByte: chip8cpu.SneName,
	OpSeReg:   chip8cpu.SeName,
	OpLdByte:  chip8cpu.LdName,
	OpAddByte: chip8cpu.AddName,
	OpLdReg:   chip8cpu.LdName,
	OpOr:      chip8cpu.OrName,
	OpAnd:     chip8cpu.AndName,
	OpXor:     chip8cpu.XorName,
	OpAddReg:  chip8cpu.AddName,
	OpSub:     chip8cpu.SubName,
	OpShr:     chip8cpu.ShrName,
	OpSubn:    chip8cpu.SubnName,
	OpShl:     chip8cpu.ShlName,
	OpSneReg:  chip8cpu.SneName,
	OpLdI:     chip8cpu.LdName,
	OpJpV0:    chip8cpu.JpName,
	OpRnd:     chip8cpu.RndName,
	OpDrw:     chip8cpu.DrwName,
	OpSkp:     chip8cpu.SkpName,
	OpSknp:    chip8cpu.SknpName,
	OpLdVxDT:  chip8cpu.LdName,
	OpLdVxK:   chip8cpu.LdName,
	OpLdDTVx:  chip8cpu.LdName,
	OpLdSTVx:  chip8cpu.LdName,
	OpAddIVx:  chip8cpu.AddName,
	OpLdFVx:   chip8cpu.LdName,
	OpLdBVx:   chip8cpu.LdName,
	OpLdIVx:   chip8cpu.LdName,
	OpLdVxI:   chip8cpu.LdName,
}

// Mnemonic returns the lowercase assembler mnemonic of the instruction kind.
func (o Op) Mnemonic() string {
	if o >= opCount {
		return ""
	}
	return mnemonics[o]
}

// Instruction is a decoded opcode. Only the operand fields used by the
// instruction kind are set, all others are zero.
type Instruction struct {
	Op  Op
	X   uint8  // register index from bits 8-11
	Y   uint8  // register index from bits 4-7
	N   uint8  // 4-bit immediate from bits 0-3
	KK  uint8  // 8-bit immediate from bits 0-7
	NNN uint16 // 12-bit address from bits 0-11
}

// Decode converts a 16-bit opcode to an instruction. Every 16-bit value
// either decodes to exactly one instruction or returns an IllegalOpcodeError.
func Decode(opcode uint16) (Instruction, error) {
	x := uint8(opcode >> 8 & 0xF)
	y := uint8(opcode >> 4 & 0xF)
	n := uint8(opcode & 0xF)
	kk := uint8(opcode)
	nnn := opcode & 0x0FFF

	switch opcode >> 12 {
	case 0x0:
		switch opcode {
		case 0x00E0:
			return Instruction{Op: OpCls}, nil
		case 0x00EE:
			return Instruction{Op: OpRet}, nil
		default:
			return Instruction{Op: OpSys, NNN: nnn}, nil
		}
	case 0x1:
		return Instruction{Op: OpJp, NNN: nnn}, nil
	case 0x2:
		return Instruction{Op: OpCall, NNN: nnn}, nil
	case 0x3:
		return Instruction{Op: OpSeByte, X: x, KK: kk}, nil
	case 0x4:
		return Instruction{Op: OpSneByte, X: x, KK: kk}, nil
	case 0x5:
		return Instruction{Op: OpSeReg, X: x, Y: y}, nil
	case 0x6:
		return Instruction{Op: OpLdByte, X: x, KK: kk}, nil
	case 0x7:
		return Instruction{Op: OpAddByte, X: x, KK: kk}, nil
	case 0x8:
		return decodeArithmetic(opcode, x, y, n)
	case 0x9:
		return Instruction{Op: OpSneReg, X: x, Y: y}, nil
	case 0xA:
		return Instruction{Op: OpLdI, NNN: nnn}, nil
	case 0xB:
		return Instruction{Op: OpJpV0, NNN: nnn}, nil
	case 0xC:
		return Instruction{Op: OpRnd, X: x, KK: kk}, nil
	case 0xD:
		return Instruction{Op: OpDrw, X: x, Y: y, N: n}, nil
	case 0xE:
		switch kk {
		case 0x9E:
			return Instruction{Op: OpSkp, X: x}, nil
		case 0xA1:
			return Instruction{Op: OpSknp, X: x}, nil
		}
	default: // 0xF
		if op, ok := miscOps[kk]; ok {
			return Instruction{Op: op, X: x}, nil
		}
	}
	return Instruction{}, &IllegalOpcodeError{Opcode: opcode}
}

var arithmeticOps = [16]Op{
	0x0: OpLdReg,
	0x1: OpOr,
	0x2: OpAnd,
	0x3: OpXor,
	0x4: OpAddReg,
	0x5: OpSub,
	0x6: OpShr,
	0x7: OpSubn,
	0xE: OpShl,
}

func decodeArithmetic(opcode uint16, x, y, n uint8) (Instruction, error) {
	switch n {
	case 0x8, 0x9, 0xA, 0xB, 0xC, 0xD, 0xF:
		return Instruction{}, &IllegalOpcodeError{Opcode: opcode}
	}
	return Instruction{Op: arithmeticOps[n], X: x, Y: y}, nil
}

var miscOps = map[uint8]Op{
	0x07: OpLdVxDT,
	0x0A: OpLdVxK,
	0x15: OpLdDTVx,
	0x18: OpLdSTVx,
	0x1E: OpAddIVx,
	0x29: OpLdFVx,
	0x33: OpLdBVx,
	0x55: OpLdIVx,
	0x65: OpLdVxI,
}

// Skips reports whether the instruction conditionally skips the next one.
func (ins Instruction) Skips() bool {
	return chip8cpu.SkipInstructions.Contains(ins.Op.Mnemonic())
}

// String returns the instruction in assembler syntax.
func (ins Instruction) String() string {
	name := ins.Op.Mnemonic()

	switch ins.Op {
	case OpCls, OpRet:
		return name
	case OpSys, OpJp, OpCall:
		return fmt.Sprintf("%s $%03X", name, ins.NNN)
	case OpSeByte, OpSneByte, OpLdByte, OpAddByte, OpRnd:
		return fmt.Sprintf("%s V%X, $%02X", name, ins.X, ins.KK)
	case OpSeReg, OpSneReg, OpLdReg, OpOr, OpAnd, OpXor, OpAddReg, OpSub, OpShr, OpSubn, OpShl:
		return fmt.Sprintf("%s V%X, V%X", name, ins.X, ins.Y)
	case OpLdI:
		return fmt.Sprintf("%s I, $%03X", name, ins.NNN)
	case OpJpV0:
		return fmt.Sprintf("%s V0, $%03X", name, ins.NNN)
	case OpDrw:
		return fmt.Sprintf("%s V%X, V%X, %d", name, ins.X, ins.Y, ins.N)
	case OpSkp, OpSknp:
		return fmt.Sprintf("%s V%X", name, ins.X)
	case OpLdVxDT:
		return fmt.Sprintf("%s V%X, DT", name, ins.X)
	case OpLdVxK:
		return fmt.Sprintf("%s V%X, K", name, ins.X)
	case OpLdDTVx:
		return fmt.Sprintf("%s DT, V%X", name, ins.X)
	case OpLdSTVx:
		return fmt.Sprintf("%s ST, V%X", name, ins.X)
	case OpAddIVx:
		return fmt.Sprintf("%s I, V%X", name, ins.X)
	case OpLdFVx:
		return fmt.Sprintf("%s F, V%X", name, ins.X)
	case OpLdBVx:
		return fmt.Sprintf("%s B, V%X", name, ins.X)
	case OpLdIVx:
		return fmt.Sprintf("%s [I], V%X", name, ins.X)
	case OpLdVxI:
		return fmt.Sprintf("%s V%X, [I]", name, ins.X)
	default:
		return fmt.Sprintf("unknown op %d", ins.Op)
	}
}
