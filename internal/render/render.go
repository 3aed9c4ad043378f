// Package render converts the display bitmap to text.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/retroenv/retrochip8/internal/display"
)

// Default cell strings for set and unset pixels.
const (
	PixelOn  = "█"
	PixelOff = " "
)

// Text is a frame sink that keeps the most recently presented frame and
// counts tone starts. It writes the frame as text on request.
type Text struct {
	on  string
	off string

	rows   display.Rows
	frames int
	tones  int
	tone   bool
}

// NewText returns a text sink that renders set pixels with on and unset
// pixels with off. Empty strings select the defaults.
func NewText(on, off string) *Text {
	if on == "" {
		on = PixelOn
	}
	if off == "" {
		off = PixelOff
	}
	return &Text{
		on:  on,
		off: off,
	}
}

// Present stores the frame.
func (t *Text) Present(rows display.Rows) {
	t.rows = rows
	t.frames++
}

// Tone records the state of the sound output.
func (t *Text) Tone(on bool) {
	if on && !t.tone {
		t.tones++
	}
	t.tone = on
}

// Rows returns the last presented frame.
func (t *Text) Rows() display.Rows {
	return t.rows
}

// Frames returns the number of presented frames.
func (t *Text) Frames() int {
	return t.frames
}

// Tones returns how often the tone was started.
func (t *Text) Tones() int {
	return t.tones
}

// String returns the last presented frame.
func (t *Text) String() string {
	return FrameString(t.rows, t.on, t.off)
}

// WriteTo writes the last presented frame to the writer.
func (t *Text) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, t.String())
	if err != nil {
		return int64(n), fmt.Errorf("writing frame: %w", err)
	}
	return int64(n), nil
}

// FrameString renders all display rows as lines of display.Width cells.
func FrameString(rows display.Rows, on, off string) string {
	var buf strings.Builder
	buf.Grow(display.Height * (display.Width*max(len(on), len(off)) + 1))

	for _, row := range rows {
		for x := range display.Width {
			if row&(1<<(display.Width-1-x)) != 0 {
				buf.WriteString(on)
			} else {
				buf.WriteString(off)
			}
		}
		buf.WriteByte('\n')
	}
	return buf.String()
}
