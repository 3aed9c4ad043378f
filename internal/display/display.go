// Package display implements the monochrome 64x32 framebuffer of the CHIP-8 virtual machine.
//
// Every row is packed into a single uint64 where bit 63 is column 0 and bit 0
// is column 63. Pixels can only be toggled, which is how sprites are XOR drawn.
package display

const (
	// Width is the number of pixel columns.
	Width = 64
	// Height is the number of pixel rows.
	Height = 32
)

// Rows is the packed representation of the whole framebuffer.
type Rows [Height]uint64

// Display is the framebuffer. The zero value is a cleared display.
type Display struct {
	rows Rows
}

// New returns a cleared display.
func New() *Display {
	return &Display{}
}

// Toggle flips the pixel at column x and row y and returns its new state.
// Coordinates outside the grid are ignored and report an unset pixel.
func (d *Display) Toggle(x, y uint8) bool {
	if x >= Width || y >= Height {
		return false
	}
	mask := columnMask(x)
	d.rows[y] ^= mask
	return d.rows[y]&mask != 0
}

// Pixel returns whether the pixel at column x and row y is set.
func (d *Display) Pixel(x, y uint8) bool {
	if x >= Width || y >= Height {
		return false
	}
	return d.rows[y]&columnMask(x) != 0
}

// Rows returns a copy of all rows.
func (d *Display) Rows() Rows {
	return d.rows
}

// Clear unsets all pixels.
func (d *Display) Clear() {
	d.rows = Rows{}
}

func columnMask(x uint8) uint64 {
	return 1 << (Width - 1 - uint64(x))
}
