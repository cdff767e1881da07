package image

import (
	"fmt"
	"image"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/aellingwood/pwaicons/internal/config"
	"github.com/aellingwood/pwaicons/internal/ico"
	"github.com/gen2brain/webp"
)

// Kind identifies which asset an output file is.
type Kind string

const (
	KindIcon       Kind = "icon"
	KindFaviconICO Kind = "favicon-ico"
	KindFaviconPNG Kind = "favicon-png"
)

// Processor turns one source image into the configured icon set.
type Processor struct {
	config      *config.Config
	projectRoot string
	cache       *Cache
}

// OutputFile describes a single written asset.
type OutputFile struct {
	Path   string
	Kind   Kind
	Size   int    // edge in pixels; for the .ico, the largest entry
	Format string // "png", "webp", "ico"
}

// Result summarises one conversion.
type Result struct {
	Source string
	Width  int
	Height int
	Files  []OutputFile
	Cached bool
}

// NewProcessor creates a Processor for cfg with paths relative to
// projectRoot. When caching is enabled the cache lives at cfg.Cache.Dir.
func NewProcessor(cfg *config.Config, projectRoot string) *Processor {
	p := &Processor{config: cfg, projectRoot: projectRoot}
	if cfg.Cache.Enabled {
		cache, err := NewCache(config.Resolve(projectRoot, cfg.Cache.Dir))
		if err == nil {
			p.cache = cache
		}
		// Without a cache every run re-encodes; that is only slower.
	}
	return p
}

// Convert opens srcPath and writes:
//
//	{iconsDir}/icon-{size}.png   (and .webp when enabled) for each icon size
//	{publicDir}/favicon.ico      with every favicon size, in order
//	{publicDir}/favicon.png      at the favicon PNG size
func (p *Processor) Convert(srcPath string) (*Result, error) {
	srcPath = config.Resolve(p.projectRoot, srcPath)
	params := p.params()

	var hash string
	if p.cache != nil {
		if h, err := HashFile(srcPath); err == nil {
			hash = h
			if entry, ok := p.cache.Lookup(srcPath, hash, params); ok {
				files, err := p.cache.Restore(entry, p.destFor)
				if err == nil {
					return &Result{
						Source: srcPath,
						Width:  entry.Width,
						Height: entry.Height,
						Files:  files,
						Cached: true,
					}, nil
				}
				// Cache copy failed, regenerate.
			}
		}
	}

	src, err := Open(srcPath, slices.Max(p.config.Sizes))
	if err != nil {
		return nil, err
	}
	bounds := src.Bounds()

	bg, err := config.ParseColor(p.config.Background)
	if err != nil {
		return nil, err
	}
	flat := Flatten(src, bg)

	result := &Result{Source: srcPath, Width: bounds.Dx(), Height: bounds.Dy()}

	for _, size := range p.config.Sizes {
		resized := Resize(flat, size)
		for _, format := range p.formats() {
			out := filepath.Join(p.iconsDir(), fmt.Sprintf("icon-%d.%s", size, format))
			if err := EncodeFile(resized, out, format, p.config.Quality); err != nil {
				return nil, fmt.Errorf("encoding %s: %w", out, err)
			}
			result.Files = append(result.Files, OutputFile{Path: out, Kind: KindIcon, Size: size, Format: format})
		}
	}

	if len(p.config.FaviconSizes) > 0 {
		out, err := p.writeFaviconICO(flat)
		if err != nil {
			return nil, err
		}
		result.Files = append(result.Files, out)
	}

	if p.config.FaviconPNGSize > 0 {
		out := filepath.Join(p.publicDir(), "favicon.png")
		if err := EncodeFile(Resize(flat, p.config.FaviconPNGSize), out, "png", p.config.Quality); err != nil {
			return nil, fmt.Errorf("encoding %s: %w", out, err)
		}
		result.Files = append(result.Files, OutputFile{Path: out, Kind: KindFaviconPNG, Size: p.config.FaviconPNGSize, Format: "png"})
	}

	if p.cache != nil && hash != "" {
		if err := p.cache.Store(srcPath, hash, params, result.Width, result.Height, result.Files); err != nil {
			log.Printf("warning: could not cache outputs for %s: %v", srcPath, err)
		}
	}

	return result, nil
}

func (p *Processor) writeFaviconICO(flat image.Image) (OutputFile, error) {
	out := filepath.Join(p.publicDir(), "favicon.ico")
	images := make([]image.Image, 0, len(p.config.FaviconSizes))
	for _, size := range p.config.FaviconSizes {
		images = append(images, Resize(flat, size))
	}

	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return OutputFile{}, fmt.Errorf("creating output directory: %w", err)
	}
	f, err := os.Create(out)
	if err != nil {
		return OutputFile{}, err
	}
	defer f.Close()
	if err := ico.Encode(f, images); err != nil {
		return OutputFile{}, fmt.Errorf("encoding %s: %w", out, err)
	}
	if err := f.Close(); err != nil {
		return OutputFile{}, err
	}
	return OutputFile{Path: out, Kind: KindFaviconICO, Size: slices.Max(p.config.FaviconSizes), Format: "ico"}, nil
}

// destFor maps a cached file back to where Convert would have written it.
func (p *Processor) destFor(f CachedFile) string {
	if f.Kind == KindIcon {
		return filepath.Join(p.iconsDir(), f.Filename)
	}
	return filepath.Join(p.publicDir(), f.Filename)
}

func (p *Processor) iconsDir() string  { return config.Resolve(p.projectRoot, p.config.IconsDir) }
func (p *Processor) publicDir() string { return config.Resolve(p.projectRoot, p.config.PublicDir) }

// formats returns the configured formats lower-cased and de-duplicated.
func (p *Processor) formats() []string {
	var formats []string
	seen := make(map[string]bool)
	for _, f := range p.config.Formats {
		f = strings.ToLower(f)
		if !seen[f] {
			seen[f] = true
			formats = append(formats, f)
		}
	}
	if len(formats) == 0 {
		formats = []string{"png"}
	}
	return formats
}

// params fingerprints every setting that changes the encoded output.
func (p *Processor) params() string {
	c := p.config
	return fmt.Sprintf("sizes=%v favicon=%v png=%d formats=%v q=%d bg=%s",
		c.Sizes, c.FaviconSizes, c.FaviconPNGSize, p.formats(), c.Quality, strings.ToLower(c.Background))
}

// EncodeFile writes img to outPath in the given format, creating parent
// directories. PNGs use best compression.
func EncodeFile(img image.Image, outPath, format string, quality int) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return err
	}
	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer f.Close()

	switch format {
	case "webp":
		if err := webp.Encode(f, img, webp.Options{Quality: quality}); err != nil {
			return fmt.Errorf("encoding webp: %w", err)
		}
	case "png":
		enc := png.Encoder{CompressionLevel: png.BestCompression}
		if err := enc.Encode(f, img); err != nil {
			return fmt.Errorf("encoding png: %w", err)
		}
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
	return f.Close()
}
