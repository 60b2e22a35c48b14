package tonebuilder

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	xdraw "golang.org/x/image/draw"
	"gonum.org/v1/gonum/stat"
)

var ErrNotGray = errors.New("pixel is not gray")

type Stats struct {
	Min, Max     uint8
	Mean, StdDev float64
}

// ============ Grayscale ============

// Grayscale returns a copy of img where every pixel holds the plain average
// of its non-premultiplied 8-bit R, G and B values in all three channels.
func Grayscale(img image.Image) *image.RGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := grayValue(img.At(b.Min.X+x, b.Min.Y+y))
			off := out.PixOffset(x, y)
			out.Pix[off] = v
			out.Pix[off+1] = v
			out.Pix[off+2] = v
			out.Pix[off+3] = 255
		}
	}
	return out
}

func grayValue(c color.Color) uint8 {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return uint8((int(n.R) + int(n.G) + int(n.B)) / 3)
}

// grayAt returns the intensity at (x, y) of a gray image.
func grayAt(img *image.RGBA, x, y int) (uint8, error) {
	off := img.PixOffset(x, y)
	r, g, b := img.Pix[off], img.Pix[off+1], img.Pix[off+2]
	if r != g || g != b {
		return 0, fmt.Errorf("%w at (%d, %d): (%d, %d, %d)", ErrNotGray, x, y, r, g, b)
	}
	return r, nil
}

// ============ Range ============

// ScanRange returns the smallest and largest intensity of a gray image.
// An empty image yields (255, 0).
func ScanRange(img *image.RGBA) (lo, hi uint8, err error) {
	lo, hi = 255, 0
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			v, err := grayAt(img, x, y)
			if err != nil {
				return 0, 0, err
			}
			lo = min(lo, v)
			hi = max(hi, v)
		}
	}
	return lo, hi, nil
}

// ExpandRange maps every intensity v of a gray image to
// int((v-lo)/hi*255).
//
// The divisor is hi and not hi-lo, so unless lo is 0 the result does not
// reach 255. Existing tone plans depend on this mapping. An all black
// image (hi == 0) is returned unchanged.
func ExpandRange(img *image.RGBA, lo, hi uint8) (*image.RGBA, error) {
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			v, err := grayAt(img, x, y)
			if err != nil {
				return nil, err
			}
			nv := expandValue(v, lo, hi)
			off := out.PixOffset(x-b.Min.X, y-b.Min.Y)
			out.Pix[off] = nv
			out.Pix[off+1] = nv
			out.Pix[off+2] = nv
			out.Pix[off+3] = 255
		}
	}
	return out, nil
}

func expandValue(v, lo, hi uint8) uint8 {
	if hi == 0 {
		return v
	}
	f := float64(int(v)-int(lo)) / float64(hi) * 255
	return uint8(max(0, min(255, int(f))))
}

// RangeStats summarizes the intensities of a gray image.
func RangeStats(img *image.RGBA) (Stats, error) {
	lo, hi, err := ScanRange(img)
	if err != nil {
		return Stats{}, err
	}
	b := img.Bounds()
	vals := make([]float64, 0, b.Dx()*b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			vals = append(vals, float64(img.Pix[img.PixOffset(x, y)]))
		}
	}
	if len(vals) == 0 {
		return Stats{}, nil
	}
	s := Stats{Min: lo, Max: hi}
	if len(vals) == 1 {
		s.Mean = vals[0]
		return s, nil
	}
	s.Mean, s.StdDev = stat.MeanStdDev(vals, nil)
	return s, nil
}

// cloneRGBA copies img into a new RGBA image anchored at the origin.
func cloneRGBA(img image.Image) *image.RGBA {
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	xdraw.Draw(out, out.Bounds(), img, b.Min, xdraw.Src)
	return out
}
