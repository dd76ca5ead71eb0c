// Package assets resolves model and audio files against a list of search
// paths and caches their contents.
package assets

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/Mohammad-Afzal123/web-avatar/internal/logger"
)

// ErrNotFound is returned when a file is in none of the search paths.
var ErrNotFound = errors.New("asset not found")

// Manager handles asset loading from the filesystem.
type Manager struct {
	roots []string
	cache *Cache
	mu    sync.RWMutex
}

// NewManager creates a new asset manager searching roots in order.
func NewManager(roots ...string) *Manager {
	m := &Manager{cache: NewCache()}
	for _, r := range roots {
		m.AddSearchPath(r)
	}
	return m
}

// AddSearchPath appends a directory to search. Later paths have lower
// priority.
func (m *Manager) AddSearchPath(dir string) {
	if dir == "" {
		return
	}
	m.mu.Lock()
	m.roots = append(m.roots, filepath.Clean(dir))
	m.mu.Unlock()
}

// SearchPaths returns a copy of the search paths.
func (m *Manager) SearchPaths() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.roots...)
}

// Resolve returns the path of name. Absolute names are checked as-is;
// relative names are tried against each search path, then the working
// directory.
func (m *Manager) Resolve(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("%w: empty name", ErrNotFound)
	}
	if filepath.IsAbs(name) {
		if isFile(name) {
			return name, nil
		}
		return "", fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, root := range m.roots {
		p := filepath.Join(root, name)
		if isFile(p) {
			return p, nil
		}
	}
	if isFile(name) {
		return filepath.Clean(name), nil
	}
	return "", fmt.Errorf("%w: %s", ErrNotFound, name)
}

// Load resolves name and returns its contents with the resolved path.
func (m *Manager) Load(name string) ([]byte, string, error) {
	path, err := m.Resolve(name)
	if err != nil {
		return nil, "", err
	}
	if data, ok := m.cache.Get(path); ok {
		return data, path, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("reading %s: %w", path, err)
	}
	m.cache.Set(path, data)
	return data, path, nil
}

// Forget drops a cached file so the next Load reads it again.
func (m *Manager) Forget(path string) {
	m.cache.Delete(path)
}

// Close releases cached data.
func (m *Manager) Close() {
	hits, misses := m.cache.Stats()
	logger.Debug("asset cache released",
		zap.Int("entries", m.cache.Len()),
		zap.Int("hits", hits),
		zap.Int("misses", misses))
	m.cache.Clear()
}

func isFile(path string) bool {
	fi, err := os.Stat(path)
	if err != nil {
		return false
	}
	return fi.Mode()&fs.ModeType == 0
}

// Cache is a simple in-memory cache for loaded assets.
type Cache struct {
	data map[string][]byte
	mu   sync.RWMutex

	// Stats
	hits   int
	misses int
}

// NewCache creates a new cache.
func NewCache() *Cache {
	return &Cache{
		data: make(map[string][]byte),
	}
}

// Get retrieves an item from cache.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, ok := c.data[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return data, ok
}

// Set stores an item in cache.
func (c *Cache) Set(key string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = data
}

// Delete removes an item from cache.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
}

// Len returns the number of cached items.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}

// Clear clears the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[string][]byte)
	c.hits = 0
	c.misses = 0
}

// Stats returns cache statistics.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}
