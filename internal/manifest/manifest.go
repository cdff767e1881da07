// Package manifest builds the manifest.webmanifest that advertises the
// generated icons to browsers.
package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/aellingwood/pwaicons/internal/config"
	"golang.org/x/text/unicode/norm"
)

// maskableMin is the smallest icon advertised as maskable; smaller icons are
// too coarse for launcher masks.
const maskableMin = 192

// Manifest is the subset of the Web App Manifest this tool writes.
type Manifest struct {
	Name            string `json:"name"`
	ShortName       string `json:"short_name"`
	StartURL        string `json:"start_url"`
	Display         string `json:"display"`
	ThemeColor      string `json:"theme_color"`
	BackgroundColor string `json:"background_color"`
	Icons           []Icon `json:"icons"`
}

// Icon is one entry of the manifest's icons array.
type Icon struct {
	Src     string `json:"src"`
	Sizes   string `json:"sizes"`
	Type    string `json:"type"`
	Purpose string `json:"purpose,omitempty"`
}

// Asset is a generated icon file to list in the manifest.
type Asset struct {
	Path string
	Size int
}

// Build assembles the manifest for assets. Icons are ordered by size, then
// by file name, so the output is stable across runs.
func Build(cfg config.ManifestConfig, assets []Asset) *Manifest {
	m := &Manifest{
		Name:            norm.NFC.String(strings.TrimSpace(cfg.Name)),
		ShortName:       norm.NFC.String(strings.TrimSpace(cfg.ShortName)),
		StartURL:        cfg.StartURL,
		Display:         "standalone",
		ThemeColor:      cfg.ThemeColor,
		BackgroundColor: cfg.BackgroundColor,
		Icons:           []Icon{},
	}
	if m.StartURL == "" {
		m.StartURL = "/"
	}

	sorted := append([]Asset(nil), assets...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Size != sorted[j].Size {
			return sorted[i].Size < sorted[j].Size
		}
		return filepath.Base(sorted[i].Path) < filepath.Base(sorted[j].Path)
	})

	prefix := strings.TrimRight(cfg.IconURLPrefix, "/")
	for _, a := range sorted {
		mime := mimeType(a.Path)
		if mime == "" {
			continue
		}
		icon := Icon{
			Src:   prefix + "/" + filepath.Base(a.Path),
			Sizes: fmt.Sprintf("%dx%d", a.Size, a.Size),
			Type:  mime,
		}
		if a.Size >= maskableMin {
			icon.Purpose = "any maskable"
		}
		m.Icons = append(m.Icons, icon)
	}
	return m
}

// Write encodes m as indented JSON at path, creating parent directories.
func Write(path string, m *Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling manifest: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating manifest directory: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing manifest %s: %w", path, err)
	}
	return nil
}

var iconName = regexp.MustCompile(`^icon-(\d+)\.(png|webp|svg)$`)

// Scan lists the icon-{size}.{png,webp,svg} files already present in dir. A
// missing directory yields no assets.
func Scan(dir string) ([]Asset, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading icons directory: %w", err)
	}
	var assets []Asset
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m := iconName.FindStringSubmatch(strings.ToLower(e.Name()))
		if m == nil {
			continue
		}
		size, err := strconv.Atoi(m[1])
		if err != nil || size <= 0 {
			continue
		}
		assets = append(assets, Asset{Path: filepath.Join(dir, e.Name()), Size: size})
	}
	return assets, nil
}

func mimeType(p string) string {
	switch strings.ToLower(filepath.Ext(p)) {
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	case ".svg":
		return "image/svg+xml"
	}
	return ""
}
