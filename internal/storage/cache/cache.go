// Package cache stores downloaded runtime archives so repeated profile
// creation does not re-download the same build.
package cache

import (
	"fmt"
	"os"
	"path/filepath"
)

// Cache manages cached runtime archives, one file per runtime version.
type Cache struct {
	basePath string
}

// New creates a cache manager rooted at basePath.
func New(basePath string) *Cache {
	return &Cache{basePath: basePath}
}

// ArchivePath returns the path where an archive for version is stored.
func (c *Cache) ArchivePath(version string) string {
	return filepath.Join(c.basePath, fmt.Sprintf("bepinex-%s.zip", version))
}

// Exists checks whether an archive for version is cached.
func (c *Cache) Exists(version string) bool {
	info, err := os.Stat(c.ArchivePath(version))
	return err == nil && !info.IsDir()
}

// Read returns the cached archive bytes for version.
func (c *Cache) Read(version string) ([]byte, error) {
	data, err := os.ReadFile(c.ArchivePath(version))
	if err != nil {
		return nil, fmt.Errorf("reading cached archive: %w", err)
	}
	return data, nil
}

// Write stores archive bytes for version. Failure to cache is not fatal to
// the caller; it just costs a re-download next time.
func (c *Cache) Write(version string, data []byte) error {
	if err := os.MkdirAll(c.basePath, 0755); err != nil {
		return fmt.Errorf("creating cache dir: %w", err)
	}
	if err := os.WriteFile(c.ArchivePath(version), data, 0644); err != nil {
		return fmt.Errorf("writing cached archive: %w", err)
	}
	return nil
}

// Clear removes the cached archive for version, tolerating absence.
func (c *Cache) Clear(version string) error {
	err := os.Remove(c.ArchivePath(version))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("clearing cached archive: %w", err)
	}
	return nil
}
