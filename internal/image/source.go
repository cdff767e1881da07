package image

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

// ErrSourceNotFound is returned when the source image does not exist.
var ErrSourceNotFound = errors.New("source image not found")

// Open decodes the source image at path. Raster formats go through imaging
// with EXIF auto-orientation; .svg sources are rasterized to an svgSize
// square so that downscaling to icon sizes stays sharp.
func Open(path string, svgSize int) (image.Image, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, path)
		}
		return nil, fmt.Errorf("opening image %s: %w", path, err)
	}

	if isSVG(path) {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading svg %s: %w", path, err)
		}
		img, err := RasterizeSVG(data, svgSize)
		if err != nil {
			return nil, fmt.Errorf("rasterizing svg %s: %w", path, err)
		}
		return img, nil
	}

	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("opening image %s: %w", path, err)
	}
	return img, nil
}

// RasterizeSVG renders SVG markup into a size x size RGBA image, scaling the
// view box to fit and centering it.
func RasterizeSVG(data []byte, size int) (*image.RGBA, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid raster size %d", size)
	}
	icon, err := oksvg.ReadIconStream(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	w, h := icon.ViewBox.W, icon.ViewBox.H
	if w <= 0 || h <= 0 {
		w, h = float64(size), float64(size)
	}
	scale := float64(size) / max(w, h)
	outW, outH := w*scale, h*scale
	offX := (float64(size) - outW) / 2
	offY := (float64(size) - outH) / 2
	icon.SetTarget(offX, offY, outW, outH)

	img := image.NewRGBA(image.Rect(0, 0, size, size))
	scanner := rasterx.NewScannerGV(size, size, img, img.Bounds())
	raster := rasterx.NewDasher(size, size, scanner)
	icon.Draw(raster, 1.0)
	return img, nil
}

func isSVG(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".svg")
}
