package index

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/zhangyunhao116/skipmap"
)

const segmentFile = "segment.jsonl"

// Document is a flat field set stored in an index.
type Document struct {
	ID     string            `json:"id"`
	Fields map[string]string `json:"fields"`
}

type docSet = skipmap.FuncMap[string, Document]

func newDocSet() *docSet {
	return skipmap.NewFunc[string, Document](func(a, b string) bool {
		return a < b
	})
}

// Index is a single named document index. Documents live in an ordered
// concurrent map and are flushed to a JSON-lines segment on Commit.
type Index struct {
	name  string
	dir   string
	docs  *docSet
	dirty atomic.Bool
}

func newIndex(dir, name string) *Index {
	return &Index{
		name: name,
		dir:  dir,
		docs: newDocSet(),
	}
}

// openIndex loads an existing index directory, replaying the committed
// segment if one is present.
func openIndex(dir, name string) (*Index, error) {
	idx := newIndex(dir, name)

	f, err := os.Open(filepath.Join(dir, segmentFile))
	if err != nil {
		if os.IsNotExist(err) {
			return idx, nil
		}
		return nil, fmt.Errorf("open segment for index %s: %w", name, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var doc Document
		if err := json.Unmarshal(line, &doc); err != nil {
			return nil, fmt.Errorf("decode segment entry for index %s: %w", name, err)
		}
		idx.docs.Store(doc.ID, doc)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read segment for index %s: %w", name, err)
	}

	return idx, nil
}

// Name returns the index name.
func (i *Index) Name() string { return i.name }

// AddDocument stores a document and returns its ID. A document without an ID
// is assigned a fresh one.
func (i *Index) AddDocument(doc Document) (string, error) {
	if len(doc.Fields) == 0 {
		return "", ErrEmptyDoc
	}
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}

	i.docs.Store(doc.ID, doc)
	i.dirty.Store(true)
	return doc.ID, nil
}

// Search returns all documents with a field value containing the query term.
// An empty query matches every document.
func (i *Index) Search(query string) []Document {
	var results []Document
	i.docs.Range(func(_ string, doc Document) bool {
		if matches(doc, query) {
			results = append(results, doc)
		}
		return true
	})
	return results
}

func matches(doc Document, query string) bool {
	if query == "" {
		return true
	}
	for _, v := range doc.Fields {
		if strings.Contains(v, query) {
			return true
		}
	}
	return false
}

// DocCount returns the number of documents currently held by the index.
func (i *Index) DocCount() int {
	return i.docs.Len()
}

// Commit flushes the document set to the on-disk segment. It is a no-op when
// nothing changed since the last commit.
func (i *Index) Commit() error {
	if !i.dirty.Swap(false) {
		return nil
	}

	tmp := filepath.Join(i.dir, segmentFile+".tmp")
	f, err := os.Create(tmp)
	if err != nil {
		i.dirty.Store(true)
		return fmt.Errorf("create segment for index %s: %w", i.name, err)
	}

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	var encErr error
	i.docs.Range(func(_ string, doc Document) bool {
		encErr = enc.Encode(doc)
		return encErr == nil
	})
	if encErr == nil {
		encErr = w.Flush()
	}
	if err := f.Close(); encErr == nil {
		encErr = err
	}
	if encErr == nil {
		encErr = os.Rename(tmp, filepath.Join(i.dir, segmentFile))
	}

	if encErr != nil {
		i.dirty.Store(true)
		_ = os.Remove(tmp)
		return fmt.Errorf("commit index %s: %w", i.name, encErr)
	}
	return nil
}
