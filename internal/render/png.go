package render

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"

	"github.com/retroenv/retrochip8/internal/display"
	"golang.org/x/image/draw"
)

// Image returns the frame as an image with one pixel per display pixel.
func Image(rows display.Rows, fg color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, display.Width, display.Height))
	bg := color.RGBA{A: 0xff}
	for y, row := range rows {
		for x := range display.Width {
			c := bg
			if row&(1<<(display.Width-1-x)) != 0 {
				c = fg
			}
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

// WritePNG writes the frame as a PNG image, every display pixel becomes a
// square of scale by scale image pixels.
func WritePNG(w io.Writer, rows display.Rows, fg color.RGBA, scale int) error {
	scale = max(scale, 1)
	src := Image(rows, fg)
	dst := image.NewRGBA(image.Rect(0, 0, display.Width*scale, display.Height*scale))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)

	if err := png.Encode(w, dst); err != nil {
		return fmt.Errorf("encoding png: %w", err)
	}
	return nil
}
