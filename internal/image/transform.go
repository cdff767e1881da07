package image

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// Flatten composites img over an opaque bg so the result carries no
// transparency. Opaque sources come back pixel-identical.
func Flatten(img image.Image, bg color.Color) *image.NRGBA {
	b := img.Bounds()
	canvas := imaging.New(b.Dx(), b.Dy(), bg)
	return imaging.Overlay(canvas, img, image.Pt(0, 0), 1.0)
}

// SquareCrop returns the largest centered square of img. Square inputs are
// returned unchanged. Offsets use floor division, so an odd surplus leaves
// the extra pixel on the right or bottom.
func SquareCrop(img image.Image) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == h {
		return img
	}
	side := min(w, h)
	left := (w - side) / 2
	top := (h - side) / 2
	r := image.Rect(left, top, left+side, top+side).Add(b.Min)
	return imaging.Crop(img, r)
}

// Resize square-crops img and resamples it to size x size with a Lanczos
// filter.
func Resize(img image.Image, size int) *image.NRGBA {
	return imaging.Resize(SquareCrop(img), size, size, imaging.Lanczos)
}
