package tonebuilder

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/golang/glog"
	"github.com/lucasb-eyer/go-colorful"
)

var (
	ErrInvalidToneCount = errors.New("number of tones must be at least 1")
	ErrNotExpanded      = errors.New("dynamic range not expanded")
	ErrSizeMismatch     = errors.New("image size does not match the tone source")
)

type Options struct {
	// Number of distinct tones the graphite can make, white included.
	// delta = 255 / NumTones is the width of one tone bin.
	NumTones int
	// Draw guide lines over images passed to Decorate.
	GridOn bool
	// Grid subdivisions per side: 4 draws 3 vertical and 3 horizontal lines.
	GridNumber int
	// Color painted by CumulativeOverlay over the selected tone band.
	Highlight colorful.Color
	// Color of the grid lines.
	GridColor colorful.Color
}

func DefaultOptions() Options {
	return Options{
		NumTones:   8,
		GridOn:     true,
		GridNumber: 4,
		Highlight:  colorful.Color{R: 0, G: 1, B: 0},
		GridColor:  colorful.Color{R: 0, G: 0, B: 1},
	}
}

// OptionsFromSize picks a grid with cells of roughly 256 pixels on the
// longest side, between 2 and 12 subdivisions.
func OptionsFromSize(size image.Point) Options {
	opt := DefaultOptions()
	if size.X <= 0 || size.Y <= 0 {
		return opt
	}
	opt.GridNumber = max(2, min(12, max(size.X, size.Y)/256))
	return opt
}

type ToneBuilder struct {
	InputImage image.Image
	// Gray is the grayscale, range expanded image. Nil until
	// ExpandDynamicRange succeeds.
	Gray *image.RGBA
	// Min and Max are the intensity bounds observed before expansion.
	Min, Max uint8
	// Stats describes Gray after expansion.
	Stats Stats

	opt   Options
	delta int
}

func NewToneBuilder(input image.Image, opt Options) (*ToneBuilder, error) {
	if opt.NumTones < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidToneCount, opt.NumTones)
	}
	return &ToneBuilder{
		InputImage: input,
		opt:        opt,
		delta:      255 / opt.NumTones,
	}, nil
}

func (lb *ToneBuilder) Options() Options { return lb.opt }

func (lb *ToneBuilder) NumTones() int { return lb.opt.NumTones }

// Delta is the intensity width of one tone bin.
func (lb *ToneBuilder) Delta() int { return lb.delta }

func (lb *ToneBuilder) SetNumTones(numTones int) error {
	if numTones < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidToneCount, numTones)
	}
	lb.opt.NumTones = numTones
	lb.delta = 255 / numTones
	return nil
}

// ExpandDynamicRange converts the input to gray and stretches it so the
// intensities fill the 0-255 range. See ExpandRange for the exact mapping.
func (lb *ToneBuilder) ExpandDynamicRange() error {
	gray := Grayscale(lb.InputImage)
	lo, hi, err := ScanRange(gray)
	if err != nil {
		return fmt.Errorf("scan range: %w", err)
	}
	expanded, err := ExpandRange(gray, lo, hi)
	if err != nil {
		return fmt.Errorf("expand range: %w", err)
	}
	stats, err := RangeStats(expanded)
	if err != nil {
		return fmt.Errorf("range stats: %w", err)
	}
	lb.Gray = expanded
	lb.Min, lb.Max = lo, hi
	lb.Stats = stats
	glog.V(1).Infof("expanded dynamic range [%d, %d] of %dx%d image", lo, hi, expanded.Rect.Dx(), expanded.Rect.Dy())
	return nil
}

// Image returns the expanded gray image, or nil before ExpandDynamicRange.
func (lb *ToneBuilder) Image() *image.RGBA { return lb.Gray }

func (lb *ToneBuilder) Info() string {
	size := lb.InputImage.Bounds().Size()
	return fmt.Sprintf(" max_col = %d\n", size.X) +
		fmt.Sprintf(" max_row = %d\n", size.Y) +
		fmt.Sprintf(" max_min = %d\n", lb.Min) +
		fmt.Sprintf(" max_max = %d\n", lb.Max) +
		fmt.Sprintf(" mean = %.2f\n", lb.Stats.Mean) +
		fmt.Sprintf(" stddev = %.2f\n", lb.Stats.StdDev)
}

// Decorate draws the grid over a copy of img when the grid is enabled.
func (lb *ToneBuilder) Decorate(img image.Image) image.Image {
	if !lb.opt.GridOn {
		return img
	}
	return DrawGrid(img, lb.opt.GridNumber, ColorToRGBA(lb.opt.GridColor))
}

// ToneOf returns the tone index a color falls into once grayed and
// expanded with the builder's observed range, or -1 when it matches none.
func (lb *ToneBuilder) ToneOf(c color.Color) (int, error) {
	if lb.Gray == nil {
		return 0, ErrNotExpanded
	}
	v := expandValue(grayValue(c), lb.Min, lb.Max)
	return toneIndex(int(v), lb.opt.NumTones, lb.delta), nil
}

func ColorToRGBA(c colorful.Color) color.RGBA {
	r, g, b := c.Clamped().RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}
