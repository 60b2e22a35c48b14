package main

import (
	"flag"
	"fmt"
	"image"
	"io"
	"os"

	"github.com/golang/glog"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/setanarut/tonebuilder"
	"github.com/setanarut/tonebuilder/utils"
)

type config struct {
	In  string
	Out string
	// Number of tones the graphite can make, white included.
	NumTones   int
	Grid       bool
	GridNumber int // 0 derives the grid from the image size
	Highlight  string
	GridColor  string
	MaxSize    int

	Palette       bool
	PaletteMethod string
	PaletteSize   int

	Ramp             bool
	LegacyCumulative bool
	PrintInfo        bool
}

func defaultConfig() config {
	return config{
		In:            "images_in/lena-color.jpg",
		Out:           "images_out",
		NumTones:      8,
		Grid:          true,
		GridNumber:    4,
		Highlight:     "#00ff00",
		GridColor:     "#0000ff",
		PaletteMethod: "dominantcolor",
		PaletteSize:   6,
		PrintInfo:     true,
	}
}

func (c *config) registerFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.In, "in", c.In, "input image (png, jpeg, gif, webp, bmp or tiff)")
	fs.StringVar(&c.Out, "out", c.Out, "output directory")
	fs.IntVar(&c.NumTones, "tones", c.NumTones, "number of tones, white included")
	fs.BoolVar(&c.Grid, "grid", c.Grid, "draw a guide grid over the outputs")
	fs.IntVar(&c.GridNumber, "grid_number", c.GridNumber, "grid subdivisions per side, 0 picks one from the image size")
	fs.StringVar(&c.Highlight, "highlight", c.Highlight, "overlay color as hex")
	fs.StringVar(&c.GridColor, "grid_color", c.GridColor, "grid line color as hex")
	fs.IntVar(&c.MaxSize, "max_size", c.MaxSize, "downscale so no side exceeds this many pixels, 0 keeps the size")
	fs.BoolVar(&c.Palette, "palette", c.Palette, "also write the dominant colors of the input")
	fs.StringVar(&c.PaletteMethod, "palette_method", c.PaletteMethod, "palette extraction: dominantcolor or kmeans")
	fs.IntVar(&c.PaletteSize, "palette_size", c.PaletteSize, "number of palette colors")
	fs.BoolVar(&c.Ramp, "ramp", c.Ramp, "also write a labelled strip of every tone")
	fs.BoolVar(&c.LegacyCumulative, "legacy_cumulative", c.LegacyCumulative, "also write the clamped cumulative tone images")
	fs.BoolVar(&c.PrintInfo, "print_info", c.PrintInfo, "print image size and range to stdout")
}

func (c config) options(size image.Point) (tonebuilder.Options, error) {
	opt := tonebuilder.DefaultOptions()
	if c.GridNumber <= 0 {
		opt = tonebuilder.OptionsFromSize(size)
	} else {
		opt.GridNumber = c.GridNumber
	}
	opt.NumTones = c.NumTones
	opt.GridOn = c.Grid

	var err error
	if opt.Highlight, err = colorful.Hex(c.Highlight); err != nil {
		return opt, fmt.Errorf("-highlight %q: %w", c.Highlight, err)
	}
	if opt.GridColor, err = colorful.Hex(c.GridColor); err != nil {
		return opt, fmt.Errorf("-grid_color %q: %w", c.GridColor, err)
	}
	return opt, nil
}

// run writes the original, the expanded image, the posterized image, one
// image per tone and one overlay per tone, and returns the written paths.
func run(cfg config, stdout io.Writer) ([]string, error) {
	img, err := utils.ReadImage(cfg.In)
	if err != nil {
		return nil, err
	}
	img = utils.FitWithin(img, cfg.MaxSize)

	opt, err := cfg.options(img.Bounds().Size())
	if err != nil {
		return nil, err
	}
	lb, err := tonebuilder.NewToneBuilder(img, opt)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(cfg.Out, 0o755); err != nil {
		return nil, err
	}

	var written []string
	namer := utils.NewNamer(cfg.Out, cfg.In)
	saveRaw := func(img image.Image, suffix string) error {
		name := namer.Next(suffix)
		if err := utils.SaveImage(img, name); err != nil {
			return err
		}
		glog.V(1).Infof("wrote %s", name)
		written = append(written, name)
		return nil
	}
	save := func(img image.Image, suffix string) error {
		return saveRaw(lb.Decorate(img), suffix)
	}

	if err := save(img, "original"); err != nil {
		return written, err
	}
	if err := lb.ExpandDynamicRange(); err != nil {
		return written, err
	}
	if cfg.PrintInfo {
		fmt.Fprint(stdout, lb.Info())
	}
	if err := save(lb.Image(), "expanded_range"); err != nil {
		return written, err
	}

	allTones, err := lb.FinalToneBins()
	if err != nil {
		return written, err
	}
	if err := save(allTones, "all_tones"); err != nil {
		return written, err
	}
	logCoverage(lb)

	for j, t := range lb.ToneSequence() {
		one, err := lb.OnlyOneTone(t)
		if err != nil {
			return written, err
		}
		if err := save(one, fmt.Sprintf("one_tone_%02d_", j)); err != nil {
			return written, err
		}
	}
	for j, t := range lb.ToneSequence() {
		overlay, err := lb.CumulativeOverlay(allTones, t)
		if err != nil {
			return written, err
		}
		if err := save(overlay, fmt.Sprintf("overlay_%02d_", j)); err != nil {
			return written, err
		}
	}
	if cfg.LegacyCumulative {
		for j, t := range lb.ToneSequence() {
			cum, err := lb.CumulativeTone(t)
			if err != nil {
				return written, err
			}
			if err := save(cum, fmt.Sprintf("cumulative_tone_%02d_", j)); err != nil {
				return written, err
			}
		}
	}

	if cfg.Ramp {
		if err := saveRaw(utils.ToneRamp(lb.NumTones(), 64), "tone_ramp"); err != nil {
			return written, err
		}
	}
	if cfg.Palette {
		name, err := savePalette(cfg, lb, namer.Next)
		if err != nil {
			return written, err
		}
		if name != "" {
			written = append(written, name)
		}
	}
	glog.Infof("wrote %d images for %s", len(written), cfg.In)
	return written, nil
}

func logCoverage(lb *tonebuilder.ToneBuilder) {
	counts, unmatched, err := lb.ToneHistogram()
	if err != nil {
		glog.Warningf("tone histogram: %v", err)
		return
	}
	total := unmatched
	for _, c := range counts {
		total += c
	}
	for t, f := range tonebuilder.Coverage(counts, total) {
		glog.V(1).Infof("tone %d (%d): %.1f%%", t, t*lb.Delta(), 100*f)
	}
	if unmatched > 0 {
		glog.V(1).Infof("%d pixels below every tone", unmatched)
	}
}

// savePalette writes the palette swatch under the next name and returns
// that name, or "" when the palette came out empty.
func savePalette(cfg config, lb *tonebuilder.ToneBuilder, next func(string) string) (string, error) {
	method, err := utils.ParsePaletteMethod(cfg.PaletteMethod)
	if err != nil {
		return "", err
	}
	palette := utils.ExtractPalette(lb.InputImage, cfg.PaletteSize, method)
	if len(palette) == 0 {
		glog.Warningf("palette: no colors found in %s, skipping", cfg.In)
		return "", nil
	}
	utils.SortPaletteByBrightness(palette)
	tones, err := utils.PaletteTones(palette, lb)
	if err != nil {
		return "", err
	}
	for i, c := range palette {
		glog.Infof("palette %s: tone %d", c.Hex(), tones[i])
	}
	name := next("palette")
	if err := utils.SavePalette(palette, 64, name); err != nil {
		return "", err
	}
	return name, nil
}
