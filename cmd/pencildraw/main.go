// Command pencildraw turns a photograph into tone images for planning the
// value layers of a pencil drawing.
//
// The image is grayed, its range expanded to 0-255 and split into -tones
// bands. For every band lighter than white one image isolates the band and
// one overlay marks it in green over the fully posterized image.
package main

import (
	"flag"
	"os"

	"github.com/golang/glog"
)

func main() {
	cfg := defaultConfig()
	cfg.registerFlags(flag.CommandLine)
	flag.Parse()
	defer glog.Flush()

	if cfg.In == "" {
		glog.Exit("-in is required")
	}
	if _, err := run(cfg, os.Stdout); err != nil {
		glog.Exitf("pencildraw: %v", err)
	}
}
