package chip8

import (
	"github.com/retroenv/retrochip8/internal/display"
)

// execute applies the instruction to the machine. PC already points to the
// next instruction.
func (m *Machine) execute(ins Instruction) error {
	switch ins.Op {
	case OpSys:
		// machine code routines are not supported and ignored

	case OpCls:
		m.display.Clear()

	case OpRet:
		address, err := m.stack.Pop()
		if err != nil {
			return err
		}
		m.pc = address

	case OpJp:
		m.pc = ins.NNN

	case OpCall:
		if err := m.stack.Push(m.pc); err != nil {
			return err
		}
		m.pc = ins.NNN

	case OpSeByte:
		m.skipIf(m.v[ins.X] == ins.KK)

	case OpSneByte:
		m.skipIf(m.v[ins.X] != ins.KK)

	case OpSeReg:
		m.skipIf(m.v[ins.X] == m.v[ins.Y])

	case OpSneReg:
		m.skipIf(m.v[ins.X] != m.v[ins.Y])

	case OpLdByte:
		m.v[ins.X] = ins.KK

	case OpAddByte:
		m.v[ins.X] += ins.KK

	case OpLdReg:
		m.v[ins.X] = m.v[ins.Y]

	case OpOr:
		m.v[ins.X] |= m.v[ins.Y]

	case OpAnd:
		m.v[ins.X] &= m.v[ins.Y]

	case OpXor:
		m.v[ins.X] ^= m.v[ins.Y]

	case OpAddReg, OpSub, OpShr, OpSubn, OpShl:
		m.executeFlagged(ins)

	case OpLdI:
		m.i = ins.NNN

	case OpJpV0:
		m.pc = ins.NNN + uint16(m.v[0])

	case OpRnd:
		m.v[ins.X] = m.random() & ins.KK

	case OpDrw:
		m.draw(ins)

	case OpSkp:
		m.skipIf(m.keys&keyMask(m.v[ins.X]) != 0)

	case OpSknp:
		m.skipIf(m.keys&keyMask(m.v[ins.X]) == 0)

	case OpLdVxDT:
		m.v[ins.X] = m.dt

	case OpLdVxK:
		m.waitForKey(ins.X)

	case OpLdDTVx:
		m.dt = m.v[ins.X]

	case OpLdSTVx:
		m.st = m.v[ins.X]

	case OpAddIVx:
		m.i += uint16(m.v[ins.X])

	case OpLdFVx:
		m.i = FontStart + uint16(m.v[ins.X]&0xF)*glyphSize

	case OpLdBVx:
		value := m.v[ins.X]
		m.memory[m.i&addressMask] = value / 100
		m.memory[(m.i+1)&addressMask] = value / 10 % 10
		m.memory[(m.i+2)&addressMask] = value % 10

	case OpLdIVx:
		for reg := range uint16(ins.X) + 1 {
			m.memory[(m.i+reg)&addressMask] = m.v[reg]
		}

	case OpLdVxI:
		for reg := range uint16(ins.X) + 1 {
			m.v[reg] = m.memory[(m.i+reg)&addressMask]
		}
	}

	return nil
}

// executeFlagged handles the arithmetic instructions that report a flag in
// VF. The flag is written after the result so that it wins when Vx is VF.
func (m *Machine) executeFlagged(ins Instruction) {
	vx, vy := m.v[ins.X], m.v[ins.Y]
	var result uint8
	var flag bool

	switch ins.Op {
	case OpAddReg:
		result = vx + vy
		flag = uint16(vx)+uint16(vy) > 0xFF
	case OpSub:
		result = vx - vy
		flag = vx >= vy
	case OpSubn:
		result = vy - vx
		flag = vy >= vx
	case OpShr:
		result = vx >> 1
		flag = vx&0x01 != 0
	case OpShl:
		result = vx << 1
		flag = vx&0x80 != 0
	}

	m.v[ins.X] = result
	m.setFlag(flag)
}

// draw XORs an N byte sprite read from I onto the display. The start
// position wraps around the screen, pixels beyond the right or bottom edge
// are clipped. VF is set when any lit pixel was turned off.
func (m *Machine) draw(ins Instruction) {
	baseX := int(m.v[ins.X] % display.Width)
	baseY := int(m.v[ins.Y] % display.Height)
	collision := false

	for row := range int(ins.N) {
		y := baseY + row
		if y >= display.Height {
			break
		}

		sprite := m.memory[(m.i+uint16(row))&addressMask]
		for bit := range 8 {
			if sprite&(0x80>>bit) == 0 {
				continue
			}
			x := baseX + bit
			if x >= display.Width {
				break
			}
			if !m.display.Toggle(uint8(x), uint8(y)) {
				collision = true
			}
		}
	}

	m.setFlag(collision)
}

// waitForKey stores the lowest pressed key in Vx and releases it. Without
// a pressed key PC is moved back so that the instruction executes again.
func (m *Machine) waitForKey(x uint8) {
	for key := range uint8(KeyCount) {
		mask := keyMask(key)
		if m.keys&mask == 0 {
			continue
		}
		m.keys &^= mask
		m.v[x] = key
		return
	}
	m.pc -= 2
}

func (m *Machine) skipIf(condition bool) {
	if condition {
		m.pc += 2
	}
}

func (m *Machine) setFlag(flag bool) {
	if flag {
		m.v[flagRegister] = 1
	} else {
		m.v[flagRegister] = 0
	}
}
