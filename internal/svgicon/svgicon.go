// Package svgicon writes the vector fallback icons used when raster output
// cannot be produced.
package svgicon

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	svg "github.com/ajstarks/svgo"
)

// Palette holds the two tile colors as "#rrggbb" strings.
type Palette struct {
	Primary string
	Inner   string
}

// Geometry is the set of integer measurements interpolated into the markup
// for one icon size.
type Geometry struct {
	Size        int
	Radius      int
	Margin      int
	Inner       int
	InnerRadius int
	TextX       int
	TextY       int
	FontSize    int
}

// GeometryFor derives the layout for a size x size icon.
func GeometryFor(size int) Geometry {
	margin := size / 4
	return Geometry{
		Size:        size,
		Radius:      size / 10,
		Margin:      margin,
		Inner:       size - 2*margin,
		InnerRadius: size / 20,
		TextX:       size / 2,
		TextY:       size/2 + size/16,
		FontSize:    size / 6,
	}
}

// Render writes one icon's SVG markup to w.
func Render(w io.Writer, size int, text string, p Palette) error {
	if size <= 0 {
		return fmt.Errorf("svgicon: invalid size %d", size)
	}
	g := GeometryFor(size)

	canvas := svg.New(w)
	canvas.Start(g.Size, g.Size)
	canvas.Roundrect(0, 0, g.Size, g.Size, g.Radius, g.Radius, attr("fill", p.Primary))
	canvas.Roundrect(g.Margin, g.Margin, g.Inner, g.Inner, g.InnerRadius, g.InnerRadius, attr("fill", p.Inner))
	canvas.Text(g.TextX, g.TextY, text,
		attr("font-family", "Arial"),
		attr("font-size", fmt.Sprint(g.FontSize)),
		attr("font-weight", "bold"),
		attr("text-anchor", "middle"),
		attr("fill", p.Primary),
	)
	canvas.End()
	return nil
}

// WriteIcons writes icon-{size}.svg into dir for every size and returns the
// paths.
func WriteIcons(dir string, sizes []int, text string, p Palette) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating icons directory: %w", err)
	}
	paths := make([]string, 0, len(sizes))
	for _, size := range sizes {
		var buf bytes.Buffer
		if err := Render(&buf, size, text, p); err != nil {
			return paths, err
		}
		path := filepath.Join(dir, fmt.Sprintf("icon-%d.svg", size))
		if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
			return paths, fmt.Errorf("writing %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// attr formats a raw attribute; svgo passes arguments containing "=" through
// unchanged instead of wrapping them in style="".
func attr(name, value string) string {
	return fmt.Sprintf("%s=%q", name, value)
}
