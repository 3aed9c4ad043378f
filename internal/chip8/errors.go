package chip8

import (
	"errors"
	"fmt"

	"github.com/retroenv/retrochip8/internal/stack"
)

var (
	// ErrIllegalOpcode matches every IllegalOpcodeError through errors.Is.
	ErrIllegalOpcode = errors.New("illegal opcode")
	// ErrStackOverflow is returned when CALL is executed with a full stack.
	ErrStackOverflow = stack.ErrOverflow
	// ErrStackUnderflow is returned when RET is executed with an empty stack.
	ErrStackUnderflow = stack.ErrUnderflow
)

// IllegalOpcodeError is returned when a 16-bit word matches no instruction.
type IllegalOpcodeError struct {
	Opcode uint16
}

func (e *IllegalOpcodeError) Error() string {
	return fmt.Sprintf("illegal opcode $%04X", e.Opcode)
}

// Is reports whether target is ErrIllegalOpcode.
func (e *IllegalOpcodeError) Is(target error) bool {
	return target == ErrIllegalOpcode
}
