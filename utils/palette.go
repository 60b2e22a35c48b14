package utils

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"slices"

	"github.com/cenkalti/dominantcolor"
	"github.com/golang/glog"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"

	"github.com/setanarut/tonebuilder"
)

type PaletteMethod int

const (
	PaletteMethodDominantColor PaletteMethod = iota
	PaletteMethodKMeans
)

func (m PaletteMethod) String() string {
	switch m {
	case PaletteMethodKMeans:
		return "kmeans"
	default:
		return "dominantcolor"
	}
}

func ParsePaletteMethod(s string) (PaletteMethod, error) {
	switch s {
	case "dominantcolor", "":
		return PaletteMethodDominantColor, nil
	case "kmeans":
		return PaletteMethodKMeans, nil
	}
	return 0, fmt.Errorf("unknown palette method %q", s)
}

type weightedColor struct {
	Col    colorful.Color
	Weight float64
}

// SortPaletteByBrightness orders colors from darkest to lightest using the
// same channel average the tone builder grays with.
func SortPaletteByBrightness(palette []colorful.Color) {
	slices.SortStableFunc(palette, func(a, b colorful.Color) int {
		ya := a.R + a.G + a.B
		yb := b.R + b.G + b.B
		switch {
		case ya < yb:
			return -1
		case ya > yb:
			return 1
		}
		return 0
	})
}

// ExtractPalette returns up to k representative colors of img. The k-means
// method falls back to dominant colors when it finds nothing.
func ExtractPalette(img image.Image, k int, method PaletteMethod) []colorful.Color {
	if method == PaletteMethodKMeans {
		if p := ExtractKMeansPalette(img, k); len(p) != 0 {
			return p
		}
		glog.Warning("palette: kmeans returned an empty palette, falling back to dominantcolor")
	}
	return ExtractDominantPalette(img, k)
}

func ExtractDominantPalette(img image.Image, k int) []colorful.Color {
	if k <= 0 {
		return nil
	}
	candidates := dominantcolor.FindWeight(img, max(24, k*8))
	if len(candidates) == 0 {
		// Fully transparent images have no candidates; keep one neutral gray.
		candidates = append(candidates, dominantcolor.Color{
			RGBA:   color.RGBA{R: 128, G: 128, B: 128, A: 255},
			Weight: 1,
		})
	}
	weighted := make([]weightedColor, 0, len(candidates))
	for _, c := range candidates {
		col, _ := colorful.MakeColor(c.RGBA)
		w := c.Weight
		if w <= 0 {
			w = 1e-6
		}
		weighted = append(weighted, weightedColor{Col: col.Clamped(), Weight: w})
	}
	return selectDiverse(weighted, k)
}

func ExtractKMeansPalette(img image.Image, k int) []colorful.Color {
	if k <= 0 {
		return nil
	}
	b := img.Bounds()
	n := b.Dx() * b.Dy()
	if n == 0 {
		return nil
	}

	// Subsample so partitioning stays fast on photographs.
	const maxSamples = 12000
	step := 1
	if n > maxSamples {
		step = int(math.Sqrt(float64(n)/maxSamples)) + 1
	}
	dataset := make(clusters.Observations, 0, min(n, maxSamples))
	for y := b.Min.Y; y < b.Max.Y; y += step {
		for x := b.Min.X; x < b.Max.X; x += step {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			if c.A == 0 {
				continue
			}
			dataset = append(dataset, clusters.Coordinates{
				float64(c.R) / 255,
				float64(c.G) / 255,
				float64(c.B) / 255,
			})
		}
	}
	if len(dataset) == 0 {
		return nil
	}

	cc, err := kmeans.New().Partition(dataset, min(max(k*4, k+2), len(dataset)))
	if err != nil {
		glog.V(1).Infof("palette: kmeans: %v", err)
		return nil
	}
	weighted := make([]weightedColor, 0, len(cc))
	for _, c := range cc {
		if len(c.Center) < 3 || len(c.Observations) == 0 {
			continue
		}
		col := colorful.Color{R: c.Center[0], G: c.Center[1], B: c.Center[2]}.Clamped()
		weighted = append(weighted, weightedColor{Col: col, Weight: float64(len(c.Observations))})
	}
	return selectDiverse(weighted, k)
}

// selectDiverse starts from the heaviest color and greedily adds the
// candidate farthest in Lab from those chosen, favoring heavy candidates.
func selectDiverse(cands []weightedColor, k int) []colorful.Color {
	if k <= 0 || len(cands) == 0 {
		return nil
	}
	k = min(k, len(cands))
	maxW := 0.0
	seed := 0
	for i, c := range cands {
		if c.Weight > maxW {
			maxW = c.Weight
			seed = i
		}
	}
	if maxW <= 0 {
		maxW = 1
	}

	chosen := []int{seed}
	taken := make([]bool, len(cands))
	taken[seed] = true
	for len(chosen) < k {
		best, bestScore := -1, -1.0
		for i, c := range cands {
			if taken[i] {
				continue
			}
			minD := math.MaxFloat64
			for _, s := range chosen {
				minD = min(minD, c.Col.DistanceLab(cands[s].Col))
			}
			score := minD * (0.55 + 0.45*math.Sqrt(max(c.Weight, 0)/maxW))
			if score > bestScore {
				best, bestScore = i, score
			}
		}
		if best < 0 {
			break
		}
		taken[best] = true
		chosen = append(chosen, best)
	}

	out := make([]colorful.Color, len(chosen))
	for i, idx := range chosen {
		out[i] = cands[idx].Col
	}
	return out
}

// PaletteTones returns the tone index of every palette color in lb, which
// must have its dynamic range expanded. -1 marks colors below every tone.
func PaletteTones(palette []colorful.Color, lb *tonebuilder.ToneBuilder) ([]int, error) {
	tones := make([]int, len(palette))
	for i, c := range palette {
		t, err := lb.ToneOf(tonebuilder.ColorToRGBA(c))
		if err != nil {
			return nil, err
		}
		tones[i] = t
	}
	return tones, nil
}

// SavePalette writes the PaletteImage of palette as a png file.
func SavePalette(palette []colorful.Color, tileSize int, filename string) error {
	img, err := PaletteImage(palette, tileSize)
	if err != nil {
		return err
	}
	return SaveImage(img, filename)
}

// PaletteImage renders one tileSize square per palette color.
func PaletteImage(palette []colorful.Color, tileSize int) (*image.RGBA, error) {
	if len(palette) == 0 {
		return nil, fmt.Errorf("empty palette")
	}
	if tileSize <= 0 {
		tileSize = 64
	}
	img := image.NewRGBA(image.Rect(0, 0, tileSize*len(palette), tileSize))
	for i, c := range palette {
		r, g, b := c.Clamped().RGB255()
		fillRect(img, image.Rect(i*tileSize, 0, (i+1)*tileSize, tileSize), color.RGBA{R: r, G: g, B: b, A: 255})
	}
	return img, nil
}
