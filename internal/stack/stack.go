// Package stack implements the fixed-capacity call stack of the CHIP-8 virtual machine.
package stack

import "errors"

// Capacity is the maximum number of nested subroutine calls.
const Capacity = 16

var (
	// ErrOverflow is returned when pushing onto a full stack.
	ErrOverflow = errors.New("stack overflow")
	// ErrUnderflow is returned when popping from an empty stack.
	ErrUnderflow = errors.New("stack underflow")
)

// Stack is a LIFO of return addresses with a fixed capacity.
// The zero value is an empty stack ready for use.
type Stack struct {
	sp   int
	data [Capacity]uint16
}

// New returns an empty stack.
func New() *Stack {
	return &Stack{}
}

// Push stores a return address on top of the stack.
func (s *Stack) Push(address uint16) error {
	if s.sp >= Capacity {
		return ErrOverflow
	}
	s.data[s.sp] = address
	s.sp++
	return nil
}

// Pop removes and returns the address on top of the stack.
func (s *Stack) Pop() (uint16, error) {
	if s.sp == 0 {
		return 0, ErrUnderflow
	}
	s.sp--
	return s.data[s.sp], nil
}

// Peek returns the address on top of the stack without removing it.
func (s *Stack) Peek() (uint16, bool) {
	if s.sp == 0 {
		return 0, false
	}
	return s.data[s.sp-1], true
}

// Len returns the number of addresses on the stack.
func (s *Stack) Len() int {
	return s.sp
}

// Values returns a copy of the stack contents, bottom first.
func (s *Stack) Values() []uint16 {
	values := make([]uint16, s.sp)
	copy(values, s.data[:s.sp])
	return values
}

// Reset empties the stack and zeroes its storage.
func (s *Stack) Reset() {
	s.sp = 0
	s.data = [Capacity]uint16{}
}
