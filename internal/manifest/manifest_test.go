package manifest

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aellingwood/pwaicons/internal/config"
)

func TestBuild(t *testing.T) {
	cfg := config.Default().Manifest
	assets := []Asset{
		{Path: "/p/public/icons/icon-512.png", Size: 512},
		{Path: "/p/public/icons/icon-192.webp", Size: 192},
		{Path: "/p/public/icons/icon-192.png", Size: 192},
		{Path: "/p/public/icons/icon-144.png", Size: 144},
		{Path: "/p/public/favicon.ico", Size: 48},
	}
	m := Build(cfg, assets)

	assert.Equal(t, "Meal Planner", m.Name)
	assert.Equal(t, "MP", m.ShortName)
	assert.Equal(t, "/", m.StartURL)
	assert.Equal(t, "standalone", m.Display)
	assert.Equal(t, "#1a1d29", m.ThemeColor)

	require.Len(t, m.Icons, 4, ".ico is not listed")
	assert.Equal(t, Icon{Src: "/icons/icon-144.png", Sizes: "144x144", Type: "image/png"}, m.Icons[0])
	assert.Equal(t, Icon{Src: "/icons/icon-192.png", Sizes: "192x192", Type: "image/png", Purpose: "any maskable"}, m.Icons[1])
	assert.Equal(t, "image/webp", m.Icons[2].Type)
	assert.Equal(t, "512x512", m.Icons[3].Sizes)
}

func TestBuildNormalizesNames(t *testing.T) {
	cfg := config.Default().Manifest
	cfg.Name = "  Café Planner "
	cfg.StartURL = ""
	cfg.IconURLPrefix = "/static/icons/"
	m := Build(cfg, []Asset{{Path: "icon-192.svg", Size: 192}})

	assert.Equal(t, "Caf\u00e9 Planner", m.Name, "decomposed accent is composed")
	assert.Equal(t, "/", m.StartURL)
	require.Len(t, m.Icons, 1)
	assert.Equal(t, "/static/icons/icon-192.svg", m.Icons[0].Src)
	assert.Equal(t, "image/svg+xml", m.Icons[0].Type)
}

func TestBuildEmptyIconsEncodesArray(t *testing.T) {
	m := Build(config.Default().Manifest, nil)
	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"icons":[]`)
}

func TestWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "public", "manifest.webmanifest")
	m := Build(config.Default().Manifest, []Asset{{Path: "icon-512.png", Size: 512}})
	require.NoError(t, Write(path, m))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var got Manifest
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, m.Icons, got.Icons)
	assert.Contains(t, string(data), `"short_name": "MP"`)
}

func TestScan(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"icon-192.png", "icon-512.webp", "icon-96.svg", "icon-x.png", "MealPlanner.jfif", "favicon.ico"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "icon-64.png"), 0o755))

	assets, err := Scan(dir)
	require.NoError(t, err)

	got := make(map[string]int)
	for _, a := range assets {
		got[filepath.Base(a.Path)] = a.Size
	}
	assert.Equal(t, map[string]int{"icon-192.png": 192, "icon-512.webp": 512, "icon-96.svg": 96}, got)
}

func TestScanMissingDir(t *testing.T) {
	assets, err := Scan(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.Empty(t, assets)
}
