// Package badge draws the synthesized app icon used when no source image is
// available: a dark rounded tile, a light inner tile and a short centred
// label.
package badge

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"log"
	"os"
	"path/filepath"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font/gofont/goregular"
)

// ErrNoRaster wraps any failure to produce raster output, signalling callers
// to fall back to vector icons.
var ErrNoRaster = errors.New("raster rendering unavailable")

// Style is the badge palette and label.
type Style struct {
	Text     string
	Primary  color.Color
	Inner    color.Color
	FontPath string // optional TTF; the embedded Go Regular is used otherwise
}

// Renderer draws badges at arbitrary sizes.
type Renderer struct {
	style Style
	font  *truetype.Font // nil means draw the circle mark instead of text
}

// New parses the label font. A custom font that cannot be read or parsed is
// reported and replaced by Go Regular.
func New(style Style) *Renderer {
	r := &Renderer{style: style}
	if style.FontPath != "" {
		f, err := loadFont(style.FontPath)
		if err == nil {
			r.font = f
			return r
		}
		log.Printf("warning: could not load font %s, using default: %v", style.FontPath, err)
	}
	f, err := truetype.Parse(goregular.TTF)
	if err != nil {
		log.Printf("warning: could not add text: %v", err)
		return r
	}
	r.font = f
	return r
}

func loadFont(path string) (*truetype.Font, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return truetype.Parse(data)
}

// Render returns a size x size badge on a transparent canvas.
func (r *Renderer) Render(size int) image.Image {
	s := float64(size)
	dc := gg.NewContext(size, size)

	// Tiles span [margin, size-margin] inclusive of the end pixel.
	margin := float64(size / 8)
	dc.SetColor(r.style.Primary)
	dc.DrawRoundedRectangle(margin, margin, s-2*margin+1, s-2*margin+1, float64(size/10))
	dc.Fill()

	inner := float64(size / 4)
	dc.SetColor(r.style.Inner)
	dc.DrawRoundedRectangle(inner, inner, s-2*inner+1, s-2*inner+1, float64(size/20))
	dc.Fill()

	dc.SetColor(r.style.Primary)
	if r.font == nil || r.style.Text == "" {
		center := float64(size / 2)
		dc.DrawCircle(center, center, float64(size/8))
		dc.Fill()
		return dc.Image()
	}

	dc.SetFontFace(truetype.NewFace(r.font, &truetype.Options{Size: float64(size / 6)}))
	dc.DrawStringAnchored(r.style.Text, s/2, s/2-float64(size/20), 0.5, 0.5)
	return dc.Image()
}

// WriteIcons renders icon-{size}.png into dir for every size and returns the
// written paths. Failures are wrapped in ErrNoRaster.
func (r *Renderer) WriteIcons(dir string, sizes []int) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating icons directory: %w", err)
	}
	paths := make([]string, 0, len(sizes))
	for _, size := range sizes {
		if size <= 0 {
			return paths, fmt.Errorf("%w: invalid size %d", ErrNoRaster, size)
		}
		path := filepath.Join(dir, fmt.Sprintf("icon-%d.png", size))
		if err := gg.SavePNG(path, r.Render(size)); err != nil {
			return paths, fmt.Errorf("%w: writing %s: %v", ErrNoRaster, path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
