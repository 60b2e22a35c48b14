package tonebuilder

import (
	"image"
	"image/color"

	xdraw "golang.org/x/image/draw"
)

// DrawGrid returns a copy of img with gridNumber-1 evenly spaced vertical
// and horizontal lines, one pixel wide.
func DrawGrid(img image.Image, gridNumber int, c color.Color) *image.RGBA {
	out := cloneRGBA(img)
	if gridNumber <= 1 {
		return out
	}
	w, h := out.Rect.Dx(), out.Rect.Dy()
	deltaCol := w / gridNumber
	deltaRow := h / gridNumber
	line := image.NewUniform(c)
	for n := 1; n < gridNumber; n++ {
		x := deltaCol * n
		xdraw.Draw(out, image.Rect(x, 0, x+1, h), line, image.Point{}, xdraw.Src)
	}
	for n := 1; n < gridNumber; n++ {
		y := deltaRow * n
		xdraw.Draw(out, image.Rect(0, y, w, y+1), line, image.Point{}, xdraw.Src)
	}
	return out
}
