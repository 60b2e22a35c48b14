package tonebuilder

import (
	"errors"
	"fmt"
	"image"

	"github.com/golang/glog"
	"gonum.org/v1/gonum/floats"
)

var ErrToneOutOfRange = errors.New("tone index out of range")

const noTone = -1

// toneParams selects the quantizer mode. At most one field is set.
type toneParams struct {
	minTone    int
	uniqueTone int
}

// toneIndex returns the highest tone t with v > t*delta, or -1.
func toneIndex(v, numTones, delta int) int {
	for t := numTones - 1; t >= 0; t-- {
		if v > t*delta {
			return t
		}
	}
	return -1
}

// quantize maps one intensity. Tones are tested from the lightest down and
// the first match wins. ok is false when no tone matched and v is kept.
func quantize(v, numTones, delta int, p toneParams) (out int, ok bool) {
	for t := numTones - 1; t >= 0; t-- {
		if p.minTone != noTone && t < p.minTone {
			return (p.minTone + 1) * delta, true
		}
		if v > t*delta {
			if p.uniqueTone != noTone && t != p.uniqueTone {
				return 255, true
			}
			return t * delta, true
		}
	}
	return v, false
}

func (lb *ToneBuilder) checkTone(n int) error {
	if n < 0 || n >= lb.opt.NumTones {
		return fmt.Errorf("%w: %d not in [0, %d]", ErrToneOutOfRange, n, lb.opt.NumTones-1)
	}
	return nil
}

func (lb *ToneBuilder) generateTones(p toneParams) (*image.RGBA, error) {
	if lb.Gray == nil {
		return nil, ErrNotExpanded
	}
	src := lb.Gray
	b := src.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			v, err := grayAt(src, x, y)
			if err != nil {
				return nil, err
			}
			tone, _ := quantize(int(v), lb.opt.NumTones, lb.delta, p)
			off := out.PixOffset(x-b.Min.X, y-b.Min.Y)
			out.Pix[off] = uint8(tone)
			out.Pix[off+1] = uint8(tone)
			out.Pix[off+2] = uint8(tone)
			out.Pix[off+3] = 255
		}
	}
	return out, nil
}

// OnlyOneTone keeps the pixels of tone band n at n*delta and turns every
// other matched pixel white. Pure black pixels match no band and stay black.
func (lb *ToneBuilder) OnlyOneTone(n int) (*image.RGBA, error) {
	if err := lb.checkTone(n); err != nil {
		return nil, err
	}
	return lb.generateTones(toneParams{minTone: noTone, uniqueTone: n})
}

// CumulativeTone clamps every band below minTone to (minTone+1)*delta.
//
// Deprecated: the result does not show the bands accumulating the way a
// drawing builds up. Use CumulativeOverlay.
func (lb *ToneBuilder) CumulativeTone(minTone int) (*image.RGBA, error) {
	if err := lb.checkTone(minTone); err != nil {
		return nil, err
	}
	return lb.generateTones(toneParams{minTone: minTone, uniqueTone: noTone})
}

// FinalToneBins posterizes the image into all tone bands.
func (lb *ToneBuilder) FinalToneBins() (*image.RGBA, error) {
	return lb.generateTones(toneParams{minTone: noTone, uniqueTone: noTone})
}

// CumulativeOverlay paints the pixels of tone band minTone with the
// highlight color over a copy of base, usually the FinalToneBins image.
// A pixel is painted when its red channel in OnlyOneTone(minTone) is below
// 255.
func (lb *ToneBuilder) CumulativeOverlay(base image.Image, minTone int) (*image.RGBA, error) {
	one, err := lb.OnlyOneTone(minTone)
	if err != nil {
		return nil, err
	}
	if base.Bounds().Size() != one.Bounds().Size() {
		return nil, fmt.Errorf("%w: base %v, tones %v", ErrSizeMismatch, base.Bounds().Size(), one.Bounds().Size())
	}
	out := cloneRGBA(base)
	hl := ColorToRGBA(lb.opt.Highlight)
	painted := 0
	for y := 0; y < one.Rect.Dy(); y++ {
		for x := 0; x < one.Rect.Dx(); x++ {
			if one.Pix[one.PixOffset(x, y)] < 255 {
				out.SetRGBA(x, y, hl)
				painted++
			}
		}
	}
	glog.V(2).Infof("overlay tone %d: %d pixels", minTone, painted)
	return out, nil
}

// ToneSequence lists the tones to draw, lightest first. The lightest band
// is the paper itself and is skipped: for 8 tones this is 6, 5, ..., 0.
func (lb *ToneBuilder) ToneSequence() []int {
	var seq []int
	for t := lb.opt.NumTones - 2; t >= 0; t-- {
		seq = append(seq, t)
	}
	return seq
}

// ToneHistogram counts the pixels of the expanded image per tone band.
// Pixels matching no band are counted in unmatched.
func (lb *ToneBuilder) ToneHistogram() (counts []int, unmatched int, err error) {
	if lb.Gray == nil {
		return nil, 0, ErrNotExpanded
	}
	counts = make([]int, lb.opt.NumTones)
	b := lb.Gray.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			v, err := grayAt(lb.Gray, x, y)
			if err != nil {
				return nil, 0, err
			}
			if t := toneIndex(int(v), lb.opt.NumTones, lb.delta); t >= 0 {
				counts[t]++
			} else {
				unmatched++
			}
		}
	}
	return counts, unmatched, nil
}

// Coverage converts histogram counts into fractions of total.
func Coverage(counts []int, total int) []float64 {
	fr := make([]float64, len(counts))
	if total <= 0 {
		return fr
	}
	for i, c := range counts {
		fr[i] = float64(c)
	}
	floats.Scale(1/float64(total), fr)
	return fr
}
