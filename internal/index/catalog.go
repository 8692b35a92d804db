package index

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Catalog owns every index under a single base path. It is not safe for
// concurrent use on its own; callers go through SharedCatalog.
type Catalog struct {
	basePath string
	indexes  map[string]*Index
}

// NewCatalog opens the catalog at basePath, reloading any index directories
// already present. Failure here is fatal to the caller: there is nothing to
// clean up if the catalog cannot be built.
func NewCatalog(basePath string) (*Catalog, error) {
	entries, err := os.ReadDir(basePath)
	if err != nil {
		return nil, fmt.Errorf("read catalog path %s: %w", basePath, err)
	}

	catalog := &Catalog{
		basePath: basePath,
		indexes:  make(map[string]*Index),
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		name := entry.Name()
		idx, err := openIndex(filepath.Join(basePath, name), name)
		if err != nil {
			return nil, fmt.Errorf("open index %s: %w", name, err)
		}
		catalog.indexes[name] = idx
		slog.Info("loaded existing index", "index", name, "docs", idx.DocCount())
	}

	return catalog, nil
}

// CreateIndex creates a new empty index and its directory.
func (c *Catalog) CreateIndex(name string) (*Index, error) {
	if !validName(name) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	if _, ok := c.indexes[name]; ok {
		return nil, fmt.Errorf("%w: %s", ErrIndexExists, name)
	}

	dir := filepath.Join(c.basePath, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create index directory %s: %w", dir, err)
	}

	idx := newIndex(dir, name)
	c.indexes[name] = idx
	slog.Info("created index", "index", name)
	return idx, nil
}

// GetIndex returns the named index.
func (c *Catalog) GetIndex(name string) (*Index, error) {
	idx, ok := c.indexes[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownIndex, name)
	}
	return idx, nil
}

// ListIndexes returns the index names in sorted order.
func (c *Catalog) ListIndexes() []string {
	names := make([]string, 0, len(c.indexes))
	for name := range c.indexes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CommitAll commits every index. The first failure is returned but does not
// stop the remaining commits.
func (c *Catalog) CommitAll() error {
	var firstErr error
	for name, idx := range c.indexes {
		if err := idx.Commit(); err != nil {
			slog.Error("failed to commit index", "index", name, "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// Clear commits and releases every index. It is called exactly once, on the
// shutdown path, with the exclusive lock held.
func (c *Catalog) Clear() error {
	err := c.CommitAll()
	c.indexes = make(map[string]*Index)
	slog.Info("index catalog cleared")
	return err
}

func validName(name string) bool {
	if name == "" || name[0] == '_' || name[0] == '.' {
		return false
	}
	return !strings.ContainsAny(name, "/\\ ")
}
