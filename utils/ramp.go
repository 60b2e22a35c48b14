package utils

import (
	"image"
	"image/color"
	"strconv"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// ToneRamp renders one labelled tile per tone index, darkest on the left.
// Tile i is filled with i*(255/numTones).
func ToneRamp(numTones, tileSize int) *image.RGBA {
	if numTones < 1 {
		return image.NewRGBA(image.Rect(0, 0, 0, 0))
	}
	if tileSize <= 0 {
		tileSize = 64
	}
	delta := 255 / numTones
	img := image.NewRGBA(image.Rect(0, 0, tileSize*numTones, tileSize))
	face := basicfont.Face7x13
	for i := 0; i < numTones; i++ {
		v := uint8(i * delta)
		tile := image.Rect(i*tileSize, 0, (i+1)*tileSize, tileSize)
		fillRect(img, tile, color.RGBA{R: v, G: v, B: v, A: 255})

		ink := color.Black
		if v < 128 {
			ink = color.White
		}
		d := &font.Drawer{
			Dst:  img,
			Src:  image.NewUniform(ink),
			Face: face,
			Dot:  fixed.P(tile.Min.X+4, tile.Min.Y+face.Ascent+2),
		}
		d.DrawString(strconv.Itoa(i))
	}
	return img
}

func fillRect(img *image.RGBA, r image.Rectangle, c color.Color) {
	xdraw.Draw(img, r, image.NewUniform(c), image.Point{}, xdraw.Src)
}
