package render

import (
	"image/color"
	"strings"
)

// Color is a named foreground color for set pixels.
type Color struct {
	Name string
	RGBA color.RGBA
}

// Palette lists the foreground colors the frontends can cycle through.
var Palette = []Color{
	{Name: "white", RGBA: color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}},
	{Name: "green", RGBA: color.RGBA{R: 0x33, G: 0xff, B: 0x66, A: 0xff}},
	{Name: "yellow", RGBA: color.RGBA{R: 0xff, G: 0xcc, B: 0x00, A: 0xff}},
	{Name: "cyan", RGBA: color.RGBA{R: 0x00, G: 0xdd, B: 0xff, A: 0xff}},
	{Name: "magenta", RGBA: color.RGBA{R: 0xff, G: 0x44, B: 0xdd, A: 0xff}},
	{Name: "red", RGBA: color.RGBA{R: 0xff, G: 0x44, B: 0x44, A: 0xff}},
	{Name: "blue", RGBA: color.RGBA{R: 0x44, G: 0x88, B: 0xff, A: 0xff}},
}

// ColorIndex returns the palette index of the named color.
func ColorIndex(name string) (int, bool) {
	for i, c := range Palette {
		if strings.EqualFold(c.Name, name) {
			return i, true
		}
	}
	return 0, false
}

// NextColor returns the palette index following index, wrapping around.
func NextColor(index int) int {
	return (index + 1) % len(Palette)
}
