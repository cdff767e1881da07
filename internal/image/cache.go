// Package image converts a source picture into PWA icon assets: resized
// square PNG icons, a multi-resolution favicon.ico and a favicon.png. A
// content-hash cache lets unchanged sources skip re-encoding.
package image

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

// cacheManifestVersion is bumped when the cache format changes.
const cacheManifestVersion = "2"

// Cache keeps encoded outputs on disk so that an unchanged source with
// unchanged parameters is copied instead of re-encoded. All methods are safe
// for concurrent use.
type Cache struct {
	mu       sync.Mutex
	dir      string
	manifest CacheManifest
}

// CacheManifest is the top-level structure persisted as manifest.json.
type CacheManifest struct {
	Version string                 `json:"version"`
	Entries map[string]*CacheEntry `json:"entries"` // keyed by source path
}

// CacheEntry records the outputs produced for one source.
type CacheEntry struct {
	ContentHash string       `json:"contentHash"` // SHA-256 of source file
	Params      string       `json:"params"`
	Width       int          `json:"width"`
	Height      int          `json:"height"`
	Files       []CachedFile `json:"files"`
}

// CachedFile describes one output stored under the entry's cache subdirectory.
type CachedFile struct {
	Kind     Kind   `json:"kind"`
	Size     int    `json:"size"`
	Format   string `json:"format"`
	Filename string `json:"filename"`
}

// NewCache creates a Cache rooted at cacheDir. If a manifest.json already
// exists there it is loaded; otherwise an empty manifest is initialised.
func NewCache(cacheDir string) (*Cache, error) {
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	c := &Cache{
		dir: cacheDir,
		manifest: CacheManifest{
			Version: cacheManifestVersion,
			Entries: make(map[string]*CacheEntry),
		},
	}

	data, err := os.ReadFile(filepath.Join(cacheDir, "manifest.json"))
	if err != nil {
		if os.IsNotExist(err) {
			return c, nil
		}
		return nil, fmt.Errorf("reading cache manifest: %w", err)
	}

	var m CacheManifest
	if err := json.Unmarshal(data, &m); err != nil {
		// Corrupt manifest; start fresh.
		return c, nil
	}
	if m.Version != cacheManifestVersion {
		return c, nil
	}
	if m.Entries == nil {
		m.Entries = make(map[string]*CacheEntry)
	}
	c.manifest = m
	return c, nil
}

// Lookup returns the entry for srcPath when its hash and params match and
// every cached file is still on disk.
func (c *Cache) Lookup(srcPath, contentHash, params string) (*CacheEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.manifest.Entries[srcPath]
	if !ok {
		return nil, false
	}
	if entry.ContentHash != contentHash || entry.Params != params {
		return nil, false
	}
	for _, f := range entry.Files {
		if _, err := os.Stat(c.filePath(entry, f)); err != nil {
			return nil, false
		}
	}
	return entry, true
}

// Store copies the generated files into the cache and records them under
// srcPath. outputs maps each CachedFile to the path it was written to.
func (c *Cache) Store(srcPath, contentHash, params string, width, height int, outputs []OutputFile) error {
	entry := &CacheEntry{
		ContentHash: contentHash,
		Params:      params,
		Width:       width,
		Height:      height,
	}
	for _, o := range outputs {
		cf := CachedFile{
			Kind:     o.Kind,
			Size:     o.Size,
			Format:   o.Format,
			Filename: filepath.Base(o.Path),
		}
		if err := copyFile(o.Path, c.filePath(entry, cf)); err != nil {
			return fmt.Errorf("caching %s: %w", o.Path, err)
		}
		entry.Files = append(entry.Files, cf)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.manifest.Entries[srcPath] = entry
	return c.saveManifest()
}

// Restore copies an entry's files to the paths chosen by dest and returns the
// resulting outputs.
func (c *Cache) Restore(entry *CacheEntry, dest func(CachedFile) string) ([]OutputFile, error) {
	out := make([]OutputFile, 0, len(entry.Files))
	for _, f := range entry.Files {
		dst := dest(f)
		if err := copyFile(c.filePath(entry, f), dst); err != nil {
			return nil, fmt.Errorf("copying cached %s: %w", f.Filename, err)
		}
		out = append(out, OutputFile{Path: dst, Kind: f.Kind, Size: f.Size, Format: f.Format})
	}
	return out, nil
}

// filePath places an entry's files in a subdirectory keyed by both the
// source content and the parameters. Identical sources converted with
// different settings must not share outputs.
func (c *Cache) filePath(entry *CacheEntry, f CachedFile) string {
	return filepath.Join(c.dir, cacheSubdir(entry.ContentHash, entry.Params), f.Filename)
}

// cacheSubdir names the directory holding the outputs for one
// (content, params) pair.
func cacheSubdir(contentHash, params string) string {
	sum := sha256.Sum256([]byte(contentHash + "\x00" + params))
	return fmt.Sprintf("%x", sum[:8])
}

// saveManifest writes the manifest; callers hold c.mu.
func (c *Cache) saveManifest() error {
	data, err := json.MarshalIndent(c.manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling cache manifest: %w", err)
	}
	return os.WriteFile(filepath.Join(c.dir, "manifest.json"), data, 0o644)
}

// HashFile computes the SHA-256 hex digest of the file at path.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return fmt.Sprintf("%x", h.Sum(nil)), nil
}

// copyFile copies a single file from src to dst, creating parent directories
// as needed.
func copyFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
