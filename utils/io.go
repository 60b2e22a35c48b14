package utils

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

func ReadImage(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

func SaveImage(img image.Image, filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", filename, err)
	}
	return f.Close()
}

// Namer builds output file names of the form <stem>_NN_<suffix>.png with
// NN counting up from 00.
type Namer struct {
	Dir  string
	Stem string
	Ext  string
	next int
}

// NewNamer derives the stem from the input file name without directory and
// extension: "in/lena-color.jpg" gives "lena-color".
func NewNamer(dir, input string) *Namer {
	base := filepath.Base(input)
	return &Namer{
		Dir:  dir,
		Stem: strings.TrimSuffix(base, filepath.Ext(base)),
		Ext:  ".png",
	}
}

func (n *Namer) Next(suffix string) string {
	name := fmt.Sprintf("%s_%02d_%s%s", n.Stem, n.next, suffix, n.Ext)
	n.next++
	return filepath.Join(n.Dir, name)
}
