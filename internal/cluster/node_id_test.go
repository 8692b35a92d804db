package cluster

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func TestInitNodeIDIdempotent(t *testing.T) {
	dir := t.TempDir()

	first, err := InitNodeID(dir)
	if err != nil {
		t.Fatalf("first init: %v", err)
	}
	if first == "" {
		t.Fatal("expected a non-empty node id")
	}

	second, err := InitNodeID(dir)
	if err != nil {
		t.Fatalf("second init: %v", err)
	}
	if first != second {
		t.Fatalf("identity changed across runs: %s != %s", first, second)
	}

	if _, err := os.Stat(filepath.Join(dir, nodeIDFile)); err != nil {
		t.Fatalf("expected persisted id file: %v", err)
	}
}

func TestInitNodeIDDistinctPaths(t *testing.T) {
	a, err := InitNodeID(t.TempDir())
	if err != nil {
		t.Fatalf("init a: %v", err)
	}
	b, err := InitNodeID(t.TempDir())
	if err != nil {
		t.Fatalf("init b: %v", err)
	}
	if a == b {
		t.Fatal("distinct installations should get distinct identities")
	}
}

func TestInitNodeIDConcurrent(t *testing.T) {
	dir := t.TempDir()

	const workers = 8
	ids := make([]string, workers)
	errs := make([]error, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ids[i], errs[i] = InitNodeID(dir)
		}(i)
	}
	wg.Wait()

	for i := 0; i < workers; i++ {
		if errs[i] != nil {
			t.Fatalf("worker %d: %v", i, errs[i])
		}
		if ids[i] != ids[0] {
			t.Fatalf("worker %d got different id: %s != %s", i, ids[i], ids[0])
		}
	}
}

func TestInitNodeIDMissingPath(t *testing.T) {
	if _, err := InitNodeID(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Fatal("expected error for missing data path")
	}
}
