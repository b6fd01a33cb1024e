package dataio

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/zeebo/blake3"
)

// Cache keeps downloaded files under a directory, one file per URL.
type Cache struct {
	dir    string
	maxAge time.Duration // 0 means entries never expire
}

// DefaultCacheDir returns ~/.cache/goenrich.
func DefaultCacheDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home dir: %w", err)
	}
	return filepath.Join(home, ".cache", "goenrich"), nil
}

// NewCache creates dir if needed.
func NewCache(dir string, maxAge time.Duration) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}
	return &Cache{dir: dir, maxAge: maxAge}, nil
}

// Path returns the file that holds url. The name is derived from a BLAKE3
// hash of the URL.
func (c *Cache) Path(url string) string {
	h := blake3.Sum256([]byte(url))
	return filepath.Join(c.dir, hex.EncodeToString(h[:16]))
}

// Lookup returns the cached file for url if it exists and is fresh.
func (c *Cache) Lookup(url string) (string, bool) {
	p := c.Path(url)
	info, err := os.Stat(p)
	if err != nil || info.IsDir() {
		return "", false
	}
	if c.maxAge > 0 && time.Since(info.ModTime()) > c.maxAge {
		return "", false
	}
	return p, true
}

// Create opens a temporary file next to the final location of url. Commit
// moves it into place; Discard removes it.
func (c *Cache) Create(url string) (*Pending, error) {
	f, err := os.CreateTemp(c.dir, ".download-*")
	if err != nil {
		return nil, fmt.Errorf("creating temp file: %w", err)
	}
	return &Pending{File: f, dest: c.Path(url)}, nil
}

// Pending is a download not yet visible in the cache.
type Pending struct {
	*os.File
	dest string
}

// Commit closes the file and renames it to its cache path.
func (p *Pending) Commit() (string, error) {
	if err := p.Close(); err != nil {
		_ = os.Remove(p.Name())
		return "", fmt.Errorf("closing download: %w", err)
	}
	if err := os.Rename(p.Name(), p.dest); err != nil {
		_ = os.Remove(p.Name())
		return "", fmt.Errorf("moving download into cache: %w", err)
	}
	return p.dest, nil
}

// Discard drops the partial download.
func (p *Pending) Discard() {
	_ = p.Close()
	_ = os.Remove(p.Name())
}
