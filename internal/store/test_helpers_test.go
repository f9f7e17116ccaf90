package store

import (
	"context"
	"path/filepath"
	"testing"
)

// createTestStore creates a new file-backed store for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

const testSeed = `
users: [Oda, toriyama, archivist]
kinds: [manga, manhwa]
tags:
  - {name: romance}
  - {name: romantic comedy, sex: unisex}
  - {name: glasses, sex: female}
  - {name: glasses, sex: male}
`

// createSeededStore creates a store loaded with testSeed.
func createSeededStore(t *testing.T) *Store {
	t.Helper()
	s := createTestStore(t)
	seed, err := ParseSeed([]byte(testSeed))
	if err != nil {
		t.Fatalf("ParseSeed() failed: %v", err)
	}
	if err := s.Seed(context.Background(), seed); err != nil {
		t.Fatalf("Seed() failed: %v", err)
	}
	return s
}
