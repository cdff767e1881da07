// Package build orchestrates an icon generation run. It decides between
// converting a source image, drawing the badge and writing vector icons,
// applies the fallbacks between them, and writes the web manifest.
package build

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/aellingwood/pwaicons/internal/badge"
	"github.com/aellingwood/pwaicons/internal/config"
	pwaimage "github.com/aellingwood/pwaicons/internal/image"
	"github.com/aellingwood/pwaicons/internal/manifest"
	"github.com/aellingwood/pwaicons/internal/report"
	"github.com/aellingwood/pwaicons/internal/svgicon"
)

// Mode selects how icons are produced.
type Mode string

const (
	// ModeAuto converts the source when it exists and draws the badge otherwise.
	ModeAuto    Mode = "auto"
	ModeConvert Mode = "convert"
	ModeCreate  Mode = "create"
	ModeSVG     Mode = "svg"
)

// Modes lists every accepted mode.
var Modes = []Mode{ModeAuto, ModeConvert, ModeCreate, ModeSVG}

// ParseMode validates s as a Mode. The empty string means ModeAuto.
func ParseMode(s string) (Mode, error) {
	if s == "" {
		return ModeAuto, nil
	}
	m := Mode(strings.ToLower(s))
	if slices.Contains(Modes, m) {
		return m, nil
	}
	names := make([]string, len(Modes))
	for i, m := range Modes {
		names[i] = string(m)
	}
	return "", fmt.Errorf("unknown mode %q (expected one of %s)", s, strings.Join(names, ", "))
}

// BuildOptions controls the behaviour of a run.
type BuildOptions struct {
	ProjectRoot string
	Mode        Mode
	Verbose     bool
	Out         io.Writer // progress output; os.Stdout when nil
}

// BuildResult describes a completed run.
type BuildResult struct {
	Mode         Mode     // the path actually taken
	Files        []string // every written asset, in write order
	Cached       bool     // outputs were restored from the conversion cache
	FallbackUsed bool     // raster output failed and SVG icons were written
	Manifest     string   // path of the written manifest, if any
	Duration     time.Duration
}

// Builder runs icon generation for one configuration.
type Builder struct {
	config  *config.Config
	options BuildOptions
}

// NewBuilder creates a Builder with the given configuration and options.
func NewBuilder(cfg *config.Config, opts BuildOptions) *Builder {
	return &Builder{
		config:  cfg,
		options: opts,
	}
}

// SourcePath returns the absolute path of the configured source image.
func (b *Builder) SourcePath() (string, error) {
	root, err := b.projectRoot()
	if err != nil {
		return "", err
	}
	return config.Resolve(root, b.config.Source), nil
}

// Build produces the icon set:
//  1. Resolve the mode (auto picks convert or create)
//  2. Convert the source, or draw the badge, or write SVG icons
//  3. Fall back to SVG icons when raster output is impossible
//  4. Write the manifest when enabled
func (b *Builder) Build(ctx context.Context) (*BuildResult, error) {
	start := time.Now()

	if err := b.config.Validate(); err != nil {
		return nil, err
	}
	mode, err := ParseMode(string(b.options.Mode))
	if err != nil {
		return nil, err
	}
	root, err := b.projectRoot()
	if err != nil {
		return nil, err
	}

	out := b.options.Out
	if out == nil {
		out = os.Stdout
	}
	rep := report.New(out, root)
	src := config.Resolve(root, b.config.Source)

	if mode == ModeAuto {
		mode = ModeCreate
		if _, err := os.Stat(src); err == nil {
			mode = ModeConvert
		}
		if b.options.Verbose {
			rep.Step("Mode: %s", mode)
		}
	}

	result := &BuildResult{Mode: mode}
	var assets []manifest.Asset

	switch mode {
	case ModeConvert:
		assets, err = b.convert(ctx, rep, root, src, result)
	case ModeCreate:
		assets, err = b.create(ctx, rep, root, result)
	case ModeSVG:
		assets, err = b.writeSVG(ctx, rep, root, result)
	}
	if err != nil {
		return nil, err
	}

	if b.config.Manifest.Enabled {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		path := config.Resolve(root, b.config.Manifest.Path)
		if err := manifest.Write(path, manifest.Build(b.config.Manifest, assets)); err != nil {
			return nil, err
		}
		rep.Saved(path)
		result.Manifest = path
		result.Files = append(result.Files, path)
	}

	result.Duration = time.Since(start)
	if b.options.Verbose {
		rep.Step("Finished in %s", result.Duration.Round(time.Millisecond))
	}
	return result, nil
}

// convert runs the image processor. A missing source is reported and
// replaced by vector icons; any other failure aborts the run.
func (b *Builder) convert(ctx context.Context, rep *report.Reporter, root, src string, result *BuildResult) ([]manifest.Asset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rep.Step("Opening %s...", rep.Rel(src))

	res, err := pwaimage.NewProcessor(b.config, root).Convert(src)
	if err != nil {
		if errors.Is(err, pwaimage.ErrSourceNotFound) {
			rep.Error("Could not find %s", rep.Rel(src))
			rep.Warn("Writing SVG icons instead")
			result.FallbackUsed = true
			return b.writeSVG(ctx, rep, root, result)
		}
		return nil, err
	}

	if b.options.Verbose {
		rep.Step("Source is %dx%d", res.Width, res.Height)
	}

	var assets []manifest.Asset
	for _, f := range res.Files {
		if res.Cached {
			rep.Cached(f.Path)
		} else {
			rep.Saved(f.Path)
		}
		result.Files = append(result.Files, f.Path)
		if f.Kind == pwaimage.KindIcon {
			assets = append(assets, manifest.Asset{Path: f.Path, Size: f.Size})
		}
	}
	result.Cached = res.Cached

	rep.Success("All icons generated successfully!")
	rep.Summary(result.Files)
	return assets, nil
}

// create draws the badge at every icon size. When raster output fails the
// run continues with vector icons.
func (b *Builder) create(ctx context.Context, rep *report.Reporter, root string, result *BuildResult) ([]manifest.Asset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	style := badge.Style{
		Text:     b.config.Badge.Text,
		Primary:  config.MustColor(b.config.Badge.Primary),
		Inner:    config.MustColor(b.config.Badge.Inner),
		FontPath: config.Resolve(root, b.config.Badge.FontPath),
	}
	dir := config.Resolve(root, b.config.IconsDir)

	paths, err := badge.New(style).WriteIcons(dir, b.config.Sizes)
	if err != nil {
		if errors.Is(err, badge.ErrNoRaster) {
			rep.Warn("%v", err)
			rep.Warn("Creating SVG icons as fallback")
			result.FallbackUsed = true
			return b.writeSVG(ctx, rep, root, result)
		}
		return nil, err
	}

	assets := make([]manifest.Asset, 0, len(paths))
	for i, p := range paths {
		size := b.config.Sizes[i]
		rep.Step("Created %s (%dx%d)", rep.Rel(p), size, size)
		result.Files = append(result.Files, p)
		assets = append(assets, manifest.Asset{Path: p, Size: size})
	}
	rep.Success("PWA icons created successfully!")
	return assets, nil
}

func (b *Builder) writeSVG(ctx context.Context, rep *report.Reporter, root string, result *BuildResult) ([]manifest.Asset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	dir := config.Resolve(root, b.config.IconsDir)
	palette := svgicon.Palette{Primary: b.config.Badge.Primary, Inner: b.config.Badge.Inner}

	paths, err := svgicon.WriteIcons(dir, b.config.Sizes, b.config.Badge.Text, palette)
	if err != nil {
		return nil, err
	}

	assets := make([]manifest.Asset, 0, len(paths))
	for i, p := range paths {
		rep.Step("Created %s", rep.Rel(p))
		result.Files = append(result.Files, p)
		assets = append(assets, manifest.Asset{Path: p, Size: b.config.Sizes[i]})
	}
	if result.FallbackUsed {
		result.Mode = ModeSVG
		rep.Success("SVG icons created as fallback!")
	} else {
		rep.Success("SVG icons created!")
	}
	return assets, nil
}

// WriteManifest regenerates the manifest from the icons already present in
// the icons directory and returns its path.
func (b *Builder) WriteManifest() (string, error) {
	root, err := b.projectRoot()
	if err != nil {
		return "", err
	}
	assets, err := manifest.Scan(config.Resolve(root, b.config.IconsDir))
	if err != nil {
		return "", err
	}
	path := config.Resolve(root, b.config.Manifest.Path)
	if err := manifest.Write(path, manifest.Build(b.config.Manifest, assets)); err != nil {
		return "", err
	}
	return path, nil
}

func (b *Builder) projectRoot() (string, error) {
	if b.options.ProjectRoot != "" {
		return b.options.ProjectRoot, nil
	}
	root, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("determining project root: %w", err)
	}
	return root, nil
}
