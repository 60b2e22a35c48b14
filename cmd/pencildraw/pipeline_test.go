package main

import (
	"bytes"
	"flag"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/setanarut/tonebuilder/utils"
)

func writeInput(t *testing.T) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 8, 6))
	for y := 0; y < 6; y++ {
		for x := 0; x < 8; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 30), G: uint8(y * 40), B: 90, A: 255})
		}
	}
	return writePNG(t, img)
}

func writePNG(t *testing.T, img image.Image) string {
	t.Helper()
	name := filepath.Join(t.TempDir(), "src.png")
	if err := utils.SaveImage(img, name); err != nil {
		t.Fatal(err)
	}
	return name
}

func TestRun(t *testing.T) {
	cfg := defaultConfig()
	cfg.In = writeInput(t)
	cfg.Out = filepath.Join(t.TempDir(), "out")
	var stdout bytes.Buffer

	written, err := run(cfg, &stdout)
	if err != nil {
		t.Fatal(err)
	}

	want := []string{"src_00_original.png", "src_01_expanded_range.png", "src_02_all_tones.png"}
	for j := 0; j < 7; j++ {
		want = append(want, fmt.Sprintf("src_%02d_one_tone_%02d_.png", 3+j, j))
	}
	for j := 0; j < 7; j++ {
		want = append(want, fmt.Sprintf("src_%02d_overlay_%02d_.png", 10+j, j))
	}
	var got []string
	for _, name := range written {
		got = append(got, filepath.Base(name))
		if _, err := os.Stat(name); err != nil {
			t.Error(err)
		}
	}
	if d := cmp.Diff(want, got); d != "" {
		t.Errorf("written files (-want +got):\n%s", d)
	}
	if !strings.Contains(stdout.String(), " max_col = 8\n") {
		t.Errorf("info missing from stdout: %q", stdout.String())
	}
}

func TestRunExtras(t *testing.T) {
	cfg := defaultConfig()
	cfg.In = writeInput(t)
	cfg.Out = t.TempDir()
	cfg.NumTones = 4
	cfg.Grid = false
	cfg.Ramp = true
	cfg.LegacyCumulative = true
	cfg.PrintInfo = false
	var stdout bytes.Buffer

	written, err := run(cfg, &stdout)
	if err != nil {
		t.Fatal(err)
	}
	// 3 fixed, 3 one-tone, 3 overlays, 3 cumulative, 1 ramp
	if len(written) != 13 {
		t.Errorf("got %d files, want 13", len(written))
	}
	if last := filepath.Base(written[len(written)-1]); last != "src_12_tone_ramp.png" {
		t.Errorf("last file: got %s, want src_12_tone_ramp.png", last)
	}
	if stdout.Len() != 0 {
		t.Errorf("unexpected stdout: %q", stdout.String())
	}
}

func TestRunErrors(t *testing.T) {
	in := writeInput(t)
	cases := map[string]func(*config){
		"missing input": func(c *config) { c.In = filepath.Join(t.TempDir(), "nope.jpg") },
		"bad highlight": func(c *config) { c.Highlight = "green" },
		"bad grid":      func(c *config) { c.GridColor = "#12" },
		"no tones":      func(c *config) { c.NumTones = 0 },
		"bad palette":   func(c *config) { c.Palette = true; c.PaletteMethod = "median" },
	}
	for name, mod := range cases {
		cfg := defaultConfig()
		cfg.In = in
		cfg.Out = t.TempDir()
		cfg.PrintInfo = false
		mod(&cfg)
		if _, err := run(cfg, &bytes.Buffer{}); err == nil {
			t.Errorf("%s: expected an error", name)
		}
	}
}

func TestFlags(t *testing.T) {
	cfg := defaultConfig()
	fs := flag.NewFlagSet("pencildraw", flag.ContinueOnError)
	cfg.registerFlags(fs)
	err := fs.Parse([]string{"-in", "a.jpg", "-tones", "6", "-grid=false", "-grid_number", "0", "-palette_method", "kmeans"})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.In != "a.jpg" || cfg.NumTones != 6 || cfg.Grid || cfg.GridNumber != 0 || cfg.PaletteMethod != "kmeans" {
		t.Errorf("parsed config: %+v", cfg)
	}
	opt, err := cfg.options(image.Pt(2048, 100))
	if err != nil {
		t.Fatal(err)
	}
	if opt.GridNumber != 8 || opt.NumTones != 6 || opt.GridOn {
		t.Errorf("options: %+v", opt)
	}
}

func TestRunPalette(t *testing.T) {
	in := writeInput(t)
	for _, method := range []string{"dominantcolor", "kmeans"} {
		cfg := defaultConfig()
		cfg.In = in
		cfg.Out = t.TempDir()
		cfg.PrintInfo = false
		cfg.Palette = true
		cfg.PaletteMethod = method

		written, err := run(cfg, &bytes.Buffer{})
		if err != nil {
			t.Fatalf("%s: %v", method, err)
		}
		if len(written) != 18 {
			t.Errorf("%s: got %d files, want 18", method, len(written))
		}
		last := written[len(written)-1]
		if filepath.Base(last) != "src_17_palette.png" {
			t.Errorf("%s: last file %s, want src_17_palette.png", method, filepath.Base(last))
		}
		if _, err := os.Stat(last); err != nil {
			t.Error(err)
		}
	}
}

func TestRunPaletteTransparent(t *testing.T) {
	cfg := defaultConfig()
	cfg.In = writePNG(t, image.NewNRGBA(image.Rect(0, 0, 4, 4)))
	cfg.Out = t.TempDir()
	cfg.PrintInfo = false
	cfg.Palette = true

	written, err := run(cfg, &bytes.Buffer{})
	if err != nil {
		t.Fatal(err)
	}
	if last := filepath.Base(written[len(written)-1]); last != "src_17_palette.png" {
		t.Errorf("last file: got %s, want src_17_palette.png", last)
	}
}

func TestRunPaletteEmpty(t *testing.T) {
	cfg := defaultConfig()
	cfg.In = writeInput(t)
	cfg.Out = t.TempDir()
	cfg.PrintInfo = false
	cfg.Palette = true
	cfg.PaletteSize = 0

	written, err := run(cfg, &bytes.Buffer{})
	if err != nil {
		t.Fatal(err)
	}
	if len(written) != 17 {
		t.Errorf("got %d files, want 17 without a palette", len(written))
	}
}
