package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"epitrend/internal/domain"
)

// CacheFile keeps the last downloaded copy of the dataset on the local
// filesystem. Overwrites go through a temporary file and a rename so a failed
// write never leaves a truncated cache behind.
type CacheFile struct {
	path   string
	rename func(oldpath, newpath string) error
}

// NewCacheFile initializes a CacheFile at path. The parent directory is
// created if needed.
func NewCacheFile(path string) (*CacheFile, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("storage: cache path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("storage: ensure cache directory: %w: %w", domain.ErrIO, err)
	}
	return &CacheFile{path: path, rename: os.Rename}, nil
}

// Path returns the configured cache location.
func (c *CacheFile) Path() string {
	if c == nil {
		return ""
	}
	return c.path
}

// Exists reports whether a cache file is present.
func (c *CacheFile) Exists() bool {
	if c == nil {
		return false
	}
	info, err := os.Stat(c.path)
	return err == nil && info.Mode().IsRegular()
}

// Load returns the raw cached bytes. A missing file yields domain.ErrNotFound,
// any other failure domain.ErrIO.
func (c *CacheFile) Load() ([]byte, error) {
	if c == nil {
		return nil, errors.New("storage: no cache configured")
	}
	data, err := os.ReadFile(c.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("storage: cache %s: %w", c.path, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("storage: read cache: %w: %w", domain.ErrIO, err)
	}
	return data, nil
}

// Overwrite replaces the cache contents with data.
func (c *CacheFile) Overwrite(data []byte) (err error) {
	if c == nil {
		return errors.New("storage: no cache configured")
	}
	dir := filepath.Dir(c.path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(c.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("storage: create temp file: %w: %w", domain.ErrIO, err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("storage: write temp file: %w: %w", domain.ErrIO, err)
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("storage: sync temp file: %w: %w", domain.ErrIO, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("storage: close temp file: %w: %w", domain.ErrIO, err)
	}
	if err = os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("storage: chmod temp file: %w: %w", domain.ErrIO, err)
	}
	if err = c.rename(tmpName, c.path); err != nil {
		return fmt.Errorf("storage: replace cache: %w: %w", domain.ErrIO, err)
	}
	return nil
}
