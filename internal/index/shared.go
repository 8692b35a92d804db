package index

import "sync"

// SharedCatalog guards the catalog with a reader-writer lock. Service tasks
// take short read locks per operation; the shutdown path takes the write lock
// exactly once, for Clear.
type SharedCatalog struct {
	mu      sync.RWMutex
	catalog *Catalog
}

func NewShared(catalog *Catalog) *SharedCatalog {
	return &SharedCatalog{catalog: catalog}
}

// Read runs fn with shared access to the catalog.
func (s *SharedCatalog) Read(fn func(*Catalog) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.catalog)
}

// Write runs fn with exclusive access to the catalog.
func (s *SharedCatalog) Write(fn func(*Catalog) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.catalog)
}
