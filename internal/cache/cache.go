// Package cache memoizes expensive derived artifacts (precompiled support
// libraries) by name. Entries live for the process lifetime, or across
// processes when a persistent root is configured.
package cache

import (
	"io"
	"os"
	"path/filepath"
	"sync"

	pkgerrors "github.com/pkg/errors"
	"golang.org/x/sync/singleflight"
)

// Builder produces an artifact and returns its path. Builders may run
// toolchain operations and write intermediate files wherever they like; the
// returned path must outlive the cache entry.
type Builder func() (string, error)

// Cache maps library names to artifact paths. Population is idempotent and
// serialized per name: concurrent callers for one name share a single build.
// Builder failures are not cached, so a later call retries.
type Cache struct {
	mu      sync.Mutex
	entries map[string]string
	group   singleflight.Group

	// root, when non-empty, persists artifacts under root/<name>/ and
	// probes there before building.
	root string
}

// New returns an in-process cache.
func New() *Cache {
	return &Cache{entries: make(map[string]string)}
}

// NewPersistent returns a cache backed by a directory so artifacts survive
// across invocations.
func NewPersistent(root string) (*Cache, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, pkgerrors.Wrap(err, "creating cache root")
	}
	return &Cache{entries: make(map[string]string), root: root}, nil
}

// Get returns the artifact path for name, invoking build on first miss.
func (c *Cache) Get(name string, build Builder) (string, error) {
	c.mu.Lock()
	if path, ok := c.entries[name]; ok {
		c.mu.Unlock()
		return path, nil
	}
	c.mu.Unlock()

	v, err, _ := c.group.Do(name, func() (interface{}, error) {
		// Re-check: a previous flight may have populated the entry.
		c.mu.Lock()
		if path, ok := c.entries[name]; ok {
			c.mu.Unlock()
			return path, nil
		}
		c.mu.Unlock()

		if path, ok := c.probe(name); ok {
			c.store(name, path)
			return path, nil
		}

		built, err := build()
		if err != nil {
			return "", err
		}
		path, err := c.persist(name, built)
		if err != nil {
			return "", err
		}
		c.store(name, path)
		return path, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// Len reports the number of materialized entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache) store(name, path string) {
	c.mu.Lock()
	c.entries[name] = path
	c.mu.Unlock()
}

func (c *Cache) entryPath(name string) string {
	return filepath.Join(c.root, name, "artifact.bc")
}

func (c *Cache) probe(name string) (string, bool) {
	if c.root == "" {
		return "", false
	}
	path := c.entryPath(name)
	if _, err := os.Stat(path); err != nil {
		return "", false
	}
	return path, true
}

// persist copies the built artifact into the cache root. Without a root the
// built path is used as-is.
func (c *Cache) persist(name, built string) (string, error) {
	if c.root == "" {
		return built, nil
	}
	dst := c.entryPath(name)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", pkgerrors.Wrap(err, "creating cache entry dir")
	}
	if err := copyFile(built, dst); err != nil {
		return "", pkgerrors.Wrapf(err, "persisting %s", name)
	}
	return dst, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
