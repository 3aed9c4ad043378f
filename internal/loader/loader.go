// Package loader handles program file loading operations.
package loader

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/retroenv/retrochip8/internal/chip8"
)

var (
	// ErrEmptyProgram is returned for program files without content.
	ErrEmptyProgram = errors.New("program is empty")
	// ErrProgramTooLarge is returned for programs that do not fit into memory.
	ErrProgramTooLarge = errors.New("program too large")
)

// Loader handles loading program files from disk.
type Loader struct {
	maxSize int
}

// New creates a new program loader that accepts programs that fit into
// the machine memory.
func New() *Loader {
	return &Loader{
		maxSize: chip8.MaxProgramSize,
	}
}

// Load reads and validates a raw CHIP-8 program file.
func (l *Loader) Load(path string) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	program, err := l.LoadFromReader(file)
	if err != nil {
		return nil, fmt.Errorf("loading file %s: %w", path, err)
	}
	return program, nil
}

// LoadFromReader reads and validates a raw CHIP-8 program. At most one byte
// more than the maximum program size is read.
func (l *Loader) LoadFromReader(reader io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(reader, int64(l.maxSize)+1))
	if err != nil {
		return nil, fmt.Errorf("reading program: %w", err)
	}
	return l.LoadFromBytes(data)
}

// LoadFromBytes validates a raw CHIP-8 program.
func (l *Loader) LoadFromBytes(data []byte) ([]byte, error) {
	switch {
	case len(data) == 0:
		return nil, ErrEmptyProgram
	case len(data) > l.maxSize:
		return nil, fmt.Errorf("%w: more than %d bytes", ErrProgramTooLarge, l.maxSize)
	default:
		return data, nil
	}
}
