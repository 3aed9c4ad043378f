package stack

import (
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestStack_PushPop(t *testing.T) {
	s := New()
	assert.NoError(t, s.Push(7))
	assert.NoError(t, s.Push(12))
	assert.Equal(t, 2, s.Len())

	value, err := s.Pop()
	assert.NoError(t, err)
	assert.Equal(t, uint16(12), value)

	value, err = s.Pop()
	assert.NoError(t, err)
	assert.Equal(t, uint16(7), value)
	assert.Equal(t, 0, s.Len())
}

func TestStack_Overflow(t *testing.T) {
	s := New()
	for i := range Capacity {
		assert.NoError(t, s.Push(uint16(0x200+i*2)))
	}

	err := s.Push(0x300)
	assert.ErrorIs(t, err, ErrOverflow)
	assert.Equal(t, Capacity, s.Len())

	// the failed push must not clobber the top entry
	top, ok := s.Peek()
	assert.True(t, ok)
	assert.Equal(t, uint16(0x200+(Capacity-1)*2), top)
}

func TestStack_Underflow(t *testing.T) {
	s := New()
	_, err := s.Pop()
	assert.ErrorIs(t, err, ErrUnderflow)

	assert.NoError(t, s.Push(0x222))
	_, err = s.Pop()
	assert.NoError(t, err)
	_, err = s.Pop()
	assert.ErrorIs(t, err, ErrUnderflow)
}

func TestStack_Reset(t *testing.T) {
	s := New()
	assert.NoError(t, s.Push(7))
	assert.NoError(t, s.Push(10))
	s.Reset()

	assert.Equal(t, 0, s.Len())
	assert.Empty(t, s.Values())
	_, ok := s.Peek()
	assert.False(t, ok)
	assert.Equal(t, [Capacity]uint16{}, s.data)
}

func TestStack_Values(t *testing.T) {
	var s Stack
	assert.NoError(t, s.Push(0x210))
	assert.NoError(t, s.Push(0x340))

	values := s.Values()
	assert.Equal(t, []uint16{0x210, 0x340}, values)

	values[0] = 0
	value, err := s.Pop()
	assert.NoError(t, err)
	assert.Equal(t, uint16(0x340), value)
	value, err = s.Pop()
	assert.NoError(t, err)
	assert.Equal(t, uint16(0x210), value, "Values must return a copy")
}
