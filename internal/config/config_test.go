package config

import (
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// testdataPath returns the absolute path to a file inside the testdata
// directory, relative to this test file's location on disk.
func testdataPath(name string) string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "testdata", name)
}

// ---------------------------------------------------------------------------
// TestDefault
// ---------------------------------------------------------------------------

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Source != filepath.Join("public", "icons", "MealPlanner.jfif") {
		t.Errorf("Source: got %q", cfg.Source)
	}
	if cfg.IconsDir != filepath.Join("public", "icons") {
		t.Errorf("IconsDir: got %q", cfg.IconsDir)
	}
	if cfg.PublicDir != "public" {
		t.Errorf("PublicDir: got %q, want %q", cfg.PublicDir, "public")
	}
	if len(cfg.Sizes) != 2 || cfg.Sizes[0] != 192 || cfg.Sizes[1] != 512 {
		t.Errorf("Sizes: got %v, want [192 512]", cfg.Sizes)
	}
	if len(cfg.FaviconSizes) != 3 || cfg.FaviconSizes[0] != 16 || cfg.FaviconSizes[2] != 48 {
		t.Errorf("FaviconSizes: got %v, want [16 32 48]", cfg.FaviconSizes)
	}
	if cfg.FaviconPNGSize != 32 {
		t.Errorf("FaviconPNGSize: got %d, want 32", cfg.FaviconPNGSize)
	}
	if cfg.Badge.Text != "MP" {
		t.Errorf("Badge.Text: got %q, want %q", cfg.Badge.Text, "MP")
	}
	if cfg.Badge.Primary != "#1a1d29" {
		t.Errorf("Badge.Primary: got %q, want %q", cfg.Badge.Primary, "#1a1d29")
	}
	if cfg.Manifest.Enabled {
		t.Error("Manifest.Enabled: got true, want false")
	}
	if !cfg.Cache.Enabled {
		t.Error("Cache.Enabled: got false, want true")
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

// ---------------------------------------------------------------------------
// Load
// ---------------------------------------------------------------------------

func TestLoadMinimal(t *testing.T) {
	cfg, err := Load(testdataPath("minimal.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Source != "assets/logo.png" {
		t.Errorf("Source: got %q", cfg.Source)
	}
	// Unset values keep their defaults.
	if len(cfg.Sizes) != 2 {
		t.Errorf("Sizes: got %v, want defaults", cfg.Sizes)
	}
	if cfg.Badge.Text != "MP" {
		t.Errorf("Badge.Text: got %q, want default", cfg.Badge.Text)
	}
}

func TestLoadFull(t *testing.T) {
	cfg, err := Load(testdataPath("full.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.IconsDir != "web/icons" || cfg.PublicDir != "web" {
		t.Errorf("dirs: got %q, %q", cfg.IconsDir, cfg.PublicDir)
	}
	if len(cfg.Sizes) != 3 || cfg.Sizes[0] != 144 {
		t.Errorf("Sizes: got %v", cfg.Sizes)
	}
	if len(cfg.Formats) != 2 || cfg.Formats[1] != "webp" {
		t.Errorf("Formats: got %v", cfg.Formats)
	}
	if cfg.FaviconPNGSize != 48 {
		t.Errorf("FaviconPNGSize: got %d", cfg.FaviconPNGSize)
	}
	if cfg.Badge.Text != "KP" || cfg.Badge.Inner != "#fafafa" {
		t.Errorf("Badge: got %+v", cfg.Badge)
	}
	if !cfg.Manifest.Enabled || cfg.Manifest.Name != "Kitchen Planner" {
		t.Errorf("Manifest: got %+v", cfg.Manifest)
	}
	if cfg.Cache.Enabled {
		t.Error("Cache.Enabled: got true, want false")
	}
}

func TestLoadTOML(t *testing.T) {
	cfg, err := Load(testdataPath("full.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Badge.Text != "TP" {
		t.Errorf("Badge.Text: got %q, want %q", cfg.Badge.Text, "TP")
	}
	if len(cfg.Sizes) != 2 || cfg.Sizes[0] != 96 {
		t.Errorf("Sizes: got %v", cfg.Sizes)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(testdataPath("nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadOrDefault(t *testing.T) {
	missing := filepath.Join(t.TempDir(), DefaultConfigFile)

	cfg, err := LoadOrDefault(missing, false)
	if err != nil {
		t.Fatalf("implicit missing config should fall back to defaults: %v", err)
	}
	if cfg.Badge.Text != "MP" {
		t.Errorf("expected defaults, got %+v", cfg.Badge)
	}

	if _, err := LoadOrDefault(missing, true); err == nil {
		t.Error("explicit missing config should be an error")
	}
}

func TestLoadBadFormatSuggests(t *testing.T) {
	_, err := Load(testdataPath("badformat.yaml"))
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), `did you mean "webp"`) {
		t.Errorf("expected suggestion in error, got %v", err)
	}
}

func TestLoadBadColor(t *testing.T) {
	_, err := Load(testdataPath("badcolor.yaml"))
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "badge.primary") {
		t.Errorf("error should name the field, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Validate
// ---------------------------------------------------------------------------

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errSub string
	}{
		{"no sizes", func(c *Config) { c.Sizes = nil }, "at least one icon size"},
		{"zero size", func(c *Config) { c.Sizes = []int{0} }, "out of range"},
		{"huge size", func(c *Config) { c.Sizes = []int{4096} }, "out of range"},
		{"favicon too big", func(c *Config) { c.FaviconSizes = []int{16, 300} }, "favicon size 300"},
		{"bad quality", func(c *Config) { c.Quality = 0 }, "quality"},
		{"empty text", func(c *Config) { c.Badge.Text = "  " }, "badge.text"},
		{"far-off format", func(c *Config) { c.Formats = []string{"tiff"} }, "known: png, webp"},
		{"bad background", func(c *Config) { c.Background = "#fff" }, "background"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatalf("expected error containing %q", tt.errSub)
			}
			if !strings.Contains(err.Error(), tt.errSub) {
				t.Errorf("error %q does not contain %q", err, tt.errSub)
			}
		})
	}
}

func TestValidateReportsFirstBadColor(t *testing.T) {
	cfg := Default()
	cfg.Background = "white"
	cfg.Badge.Primary = "navy"
	cfg.Manifest.BackgroundColor = "#12"

	for i := 0; i < 20; i++ {
		err := cfg.Validate()
		if err == nil {
			t.Fatal("expected a color error")
		}
		if !strings.Contains(err.Error(), "config: background must be") {
			t.Fatalf("run %d: error %q should name background first", i, err)
		}
	}
}

func TestValidateFavicon256(t *testing.T) {
	cfg := Default()
	cfg.FaviconSizes = []int{16, 256}
	if err := cfg.Validate(); err != nil {
		t.Errorf("256 is a valid ICO size: %v", err)
	}
}

// ---------------------------------------------------------------------------
// WithOverrides
// ---------------------------------------------------------------------------

func TestWithOverrides(t *testing.T) {
	cfg := Default().WithOverrides(map[string]any{
		"source":    "logo.png",
		"outputDir": "out/icons",
		"publicDir": "out",
		"text":      "AB",
		"noCache":   true,
		"manifest":  true,
		"unknown":   42,
	})

	if cfg.Source != "logo.png" {
		t.Errorf("Source: got %q", cfg.Source)
	}
	if cfg.IconsDir != "out/icons" || cfg.PublicDir != "out" {
		t.Errorf("dirs: got %q, %q", cfg.IconsDir, cfg.PublicDir)
	}
	if cfg.Badge.Text != "AB" {
		t.Errorf("Badge.Text: got %q", cfg.Badge.Text)
	}
	if cfg.Cache.Enabled {
		t.Error("noCache override should disable cache")
	}
	if !cfg.Manifest.Enabled {
		t.Error("manifest override should enable manifest")
	}
}

func TestWithOverridesIgnoresEmpty(t *testing.T) {
	cfg := Default().WithOverrides(map[string]any{
		"source":  "",
		"text":    "",
		"noCache": false,
	})
	if cfg.Source != Default().Source {
		t.Errorf("empty override replaced Source: %q", cfg.Source)
	}
	if cfg.Badge.Text != "MP" {
		t.Errorf("empty override replaced text: %q", cfg.Badge.Text)
	}
	if !cfg.Cache.Enabled {
		t.Error("false noCache should leave cache enabled")
	}
}

// ---------------------------------------------------------------------------
// Marshal
// ---------------------------------------------------------------------------

func TestMarshalYAMLRoundTrip(t *testing.T) {
	data, err := Default().Marshal("yaml")
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var got Config
	if err := yaml.Unmarshal(data, &got); err != nil {
		t.Fatalf("yaml.Unmarshal: %v", err)
	}
	if got.Badge.Text != "MP" || len(got.FaviconSizes) != 3 {
		t.Errorf("unexpected decoded config: %+v", got)
	}
}

func TestMarshalTOML(t *testing.T) {
	data, err := Default().Marshal("toml")
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var got Config
	if _, err := toml.Decode(string(data), &got); err != nil {
		t.Fatalf("toml.Decode: %v", err)
	}
	if got.Manifest.ThemeColor != "#1a1d29" {
		t.Errorf("ThemeColor: got %q", got.Manifest.ThemeColor)
	}
}

func TestMarshalUnknownFormat(t *testing.T) {
	if _, err := Default().Marshal("json"); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestIsHexColor(t *testing.T) {
	good := []string{"#000000", "#1a1d29", "#FFFFFF"}
	bad := []string{"", "000000", "#fff", "#gggggg", "#1a1d299"}
	for _, s := range good {
		if !IsHexColor(s) {
			t.Errorf("IsHexColor(%q) = false, want true", s)
		}
	}
	for _, s := range bad {
		if IsHexColor(s) {
			t.Errorf("IsHexColor(%q) = true, want false", s)
		}
	}
}

func TestResolve(t *testing.T) {
	if got := Resolve("/proj", "public"); got != filepath.Join("/proj", "public") {
		t.Errorf("Resolve relative: got %q", got)
	}
	if got := Resolve("/proj", "/abs/path"); got != "/abs/path" {
		t.Errorf("Resolve absolute: got %q", got)
	}
	if got := Resolve("", "public"); got != "public" {
		t.Errorf("Resolve empty root: got %q", got)
	}
}

func TestParseColor(t *testing.T) {
	c, err := ParseColor("#1a1d29")
	if err != nil {
		t.Fatalf("ParseColor: %v", err)
	}
	if c.R != 0x1a || c.G != 0x1d || c.B != 0x29 || c.A != 0xff {
		t.Errorf("got %+v", c)
	}
	if _, err := ParseColor("white"); err == nil {
		t.Error("expected error for named color")
	}
}
