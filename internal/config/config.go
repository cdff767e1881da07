// Package config handles loading, validating, and managing icon generation
// configuration for pwaicons.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"io/fs"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/agnivade/levenshtein"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the config path used when --config is not given.
const DefaultConfigFile = "pwaicons.yaml"

// MaxIconSize bounds icon sizes so a typo cannot allocate a huge canvas.
const MaxIconSize = 1024

// MaxFaviconSize is the largest dimension an ICO directory entry can describe.
const MaxFaviconSize = 256

// KnownFormats lists the raster output formats the processor can encode.
var KnownFormats = []string{"png", "webp"}

// Config is the top-level configuration for an icon generation run.
type Config struct {
	Source         string         `yaml:"source"         toml:"source"         mapstructure:"source"`
	IconsDir       string         `yaml:"iconsDir"       toml:"iconsDir"       mapstructure:"iconsDir"`
	PublicDir      string         `yaml:"publicDir"      toml:"publicDir"      mapstructure:"publicDir"`
	Sizes          []int          `yaml:"sizes"          toml:"sizes"          mapstructure:"sizes"`
	FaviconSizes   []int          `yaml:"faviconSizes"   toml:"faviconSizes"   mapstructure:"faviconSizes"`
	FaviconPNGSize int            `yaml:"faviconPngSize" toml:"faviconPngSize" mapstructure:"faviconPngSize"`
	Formats        []string       `yaml:"formats"        toml:"formats"        mapstructure:"formats"`
	Quality        int            `yaml:"quality"        toml:"quality"        mapstructure:"quality"`
	Background     string         `yaml:"background"     toml:"background"     mapstructure:"background"`
	Badge          BadgeConfig    `yaml:"badge"          toml:"badge"          mapstructure:"badge"`
	Manifest       ManifestConfig `yaml:"manifest"       toml:"manifest"       mapstructure:"manifest"`
	Cache          CacheConfig    `yaml:"cache"          toml:"cache"          mapstructure:"cache"`
}

// BadgeConfig controls the synthesized icon drawn when no source image is used.
type BadgeConfig struct {
	Text     string `yaml:"text"     toml:"text"     mapstructure:"text"`
	Primary  string `yaml:"primary"  toml:"primary"  mapstructure:"primary"`
	Inner    string `yaml:"inner"    toml:"inner"    mapstructure:"inner"`
	FontPath string `yaml:"fontPath" toml:"fontPath" mapstructure:"fontPath"`
}

// ManifestConfig controls manifest.webmanifest generation.
type ManifestConfig struct {
	Enabled         bool   `yaml:"enabled"         toml:"enabled"         mapstructure:"enabled"`
	Path            string `yaml:"path"            toml:"path"            mapstructure:"path"`
	Name            string `yaml:"name"            toml:"name"            mapstructure:"name"`
	ShortName       string `yaml:"shortName"       toml:"shortName"       mapstructure:"shortName"`
	ThemeColor      string `yaml:"themeColor"      toml:"themeColor"      mapstructure:"themeColor"`
	BackgroundColor string `yaml:"backgroundColor" toml:"backgroundColor" mapstructure:"backgroundColor"`
	StartURL        string `yaml:"startUrl"        toml:"startUrl"        mapstructure:"startUrl"`
	IconURLPrefix   string `yaml:"iconUrlPrefix"   toml:"iconUrlPrefix"   mapstructure:"iconUrlPrefix"`
}

// CacheConfig controls the conversion cache.
type CacheConfig struct {
	Enabled bool   `yaml:"enabled" toml:"enabled" mapstructure:"enabled"`
	Dir     string `yaml:"dir"     toml:"dir"     mapstructure:"dir"`
}

// Default returns a Config populated with the standard public/ layout.
func Default() *Config {
	return &Config{
		Source:         filepath.Join("public", "icons", "MealPlanner.jfif"),
		IconsDir:       filepath.Join("public", "icons"),
		PublicDir:      "public",
		Sizes:          []int{192, 512},
		FaviconSizes:   []int{16, 32, 48},
		FaviconPNGSize: 32,
		Formats:        []string{"png"},
		Quality:        90,
		Background:     "#ffffff",
		Badge: BadgeConfig{
			Text:    "MP",
			Primary: "#1a1d29",
			Inner:   "#ffffff",
		},
		Manifest: ManifestConfig{
			Enabled:         false,
			Path:            filepath.Join("public", "manifest.webmanifest"),
			Name:            "Meal Planner",
			ShortName:       "MP",
			ThemeColor:      "#1a1d29",
			BackgroundColor: "#ffffff",
			StartURL:        "/",
			IconURLPrefix:   "/icons",
		},
		Cache: CacheConfig{
			Enabled: true,
			Dir:     filepath.Join(".pwaicons", "cache"),
		},
	}
}

// Load reads a configuration file from configPath (YAML or TOML) and returns
// a Config with defaults applied first and file values overlaid on top.
func Load(configPath string) (*Config, error) {
	cfg := Default()

	v := viper.New()

	// Determine format from extension.
	ext := strings.TrimPrefix(filepath.Ext(configPath), ".")
	switch ext {
	case "yaml", "yml":
		v.SetConfigType("yaml")
	case "toml":
		v.SetConfigType("toml")
	default:
		v.SetConfigType("yaml")
	}

	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// LoadOrDefault behaves like Load, except that a missing file at the default
// config path yields Default() instead of an error. An explicitly chosen path
// that does not exist is still reported.
func LoadOrDefault(configPath string, explicit bool) (*Config, error) {
	cfg, err := Load(configPath)
	if err == nil {
		return cfg, nil
	}
	var notFound viper.ConfigFileNotFoundError
	if !explicit && (errors.Is(err, fs.ErrNotExist) || errors.As(err, &notFound)) {
		return Default(), nil
	}
	return nil, err
}

// Validate checks the Config for common errors.
func (c *Config) Validate() error {
	if len(c.Sizes) == 0 {
		return fmt.Errorf("config: at least one icon size is required")
	}
	for _, s := range c.Sizes {
		if s <= 0 || s > MaxIconSize {
			return fmt.Errorf("config: icon size %d out of range 1..%d", s, MaxIconSize)
		}
	}
	for _, s := range c.FaviconSizes {
		if s <= 0 || s > MaxFaviconSize {
			return fmt.Errorf("config: favicon size %d out of range 1..%d", s, MaxFaviconSize)
		}
	}
	if c.FaviconPNGSize < 0 || c.FaviconPNGSize > MaxIconSize {
		return fmt.Errorf("config: faviconPngSize %d out of range 0..%d", c.FaviconPNGSize, MaxIconSize)
	}
	if c.Quality < 1 || c.Quality > 100 {
		return fmt.Errorf("config: quality must be between 1 and 100 (got %d)", c.Quality)
	}

	for _, f := range c.Formats {
		if !isKnownFormat(f) {
			if s := suggestFormat(f); s != "" {
				return fmt.Errorf("config: unknown format %q (did you mean %q?)", f, s)
			}
			return fmt.Errorf("config: unknown format %q (known: %s)", f, strings.Join(KnownFormats, ", "))
		}
	}

	colors := []struct{ field, value string }{
		{"background", c.Background},
		{"badge.primary", c.Badge.Primary},
		{"badge.inner", c.Badge.Inner},
		{"manifest.themeColor", c.Manifest.ThemeColor},
		{"manifest.backgroundColor", c.Manifest.BackgroundColor},
	}
	for _, col := range colors {
		if !IsHexColor(col.value) {
			return fmt.Errorf("config: %s must be a #rrggbb color (got %q)", col.field, col.value)
		}
	}

	if strings.TrimSpace(c.Badge.Text) == "" {
		return fmt.Errorf("config: badge.text is required")
	}

	return nil
}

// WithOverrides applies CLI flag overrides to the config. Known keys are
// mapped to their corresponding struct fields. The modified config is returned
// for convenient chaining.
func (c *Config) WithOverrides(overrides map[string]any) *Config {
	for key, val := range overrides {
		switch key {
		case "source":
			if s, ok := val.(string); ok && s != "" {
				c.Source = s
			}
		case "outputDir":
			if s, ok := val.(string); ok && s != "" {
				c.IconsDir = s
			}
		case "publicDir":
			if s, ok := val.(string); ok && s != "" {
				c.PublicDir = s
			}
		case "text":
			if s, ok := val.(string); ok && s != "" {
				c.Badge.Text = s
			}
		case "noCache":
			if b, ok := val.(bool); ok && b {
				c.Cache.Enabled = false
			}
		case "manifest":
			if b, ok := val.(bool); ok && b {
				c.Manifest.Enabled = true
			}
		}
	}
	return c
}

// Resolve returns path joined onto root unless it is already absolute.
func Resolve(root, path string) string {
	if path == "" || filepath.IsAbs(path) || root == "" {
		return path
	}
	return filepath.Join(root, path)
}

// Marshal renders the config in the requested format ("yaml" or "toml").
func (c *Config) Marshal(format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case "", "yaml", "yml":
		return yaml.Marshal(c)
	case "toml":
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(c); err != nil {
			return nil, fmt.Errorf("encoding toml: %w", err)
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unsupported output format %q", format)
	}
}

// IsHexColor reports whether s has the form #rrggbb.
func IsHexColor(s string) bool {
	_, err := ParseColor(s)
	return err == nil
}

// ParseColor parses a "#rrggbb" string into an opaque color.
func ParseColor(s string) (color.NRGBA, error) {
	hex, ok := strings.CutPrefix(s, "#")
	if !ok || len(hex) != 6 {
		return color.NRGBA{}, fmt.Errorf("invalid color %q: expected #rrggbb", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}

// MustColor is ParseColor for values that already passed Validate.
func MustColor(s string) color.NRGBA {
	c, err := ParseColor(s)
	if err != nil {
		panic(err)
	}
	return c
}

func isKnownFormat(f string) bool {
	for _, k := range KnownFormats {
		if strings.EqualFold(f, k) {
			return true
		}
	}
	return false
}

// suggestFormat returns the known format closest to f, or "" when nothing is
// within two edits.
func suggestFormat(f string) string {
	best, bestDist := "", 3
	for _, k := range KnownFormats {
		if d := levenshtein.ComputeDistance(strings.ToLower(f), k); d < bestDist {
			best, bestDist = k, d
		}
	}
	return best
}
