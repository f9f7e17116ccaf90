package testutil

import (
	"fmt"
	"sync"
)

// SequentialIDs mints reproducible record ids, one counter per table:
// users:⟨1⟩, users:⟨2⟩, tags:⟨1⟩, ...
//
// Unlike store.NewID, the same sequence of calls always yields the same
// ids, so compiled queries can be compared against golden files.
//
// Thread-safety: all methods are safe for concurrent use via internal mutex.
type SequentialIDs struct {
	mu   sync.Mutex
	next map[string]int64
}

// NewSequentialIDs creates a generator whose first id per table is 1.
func NewSequentialIDs() *SequentialIDs {
	return &SequentialIDs{next: make(map[string]int64)}
}

// Next returns the next id for table.
func (g *SequentialIDs) Next(table string) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.next[table]++
	return fmt.Sprintf("%s:⟨%d⟩", table, g.next[table])
}

// Reset restarts every table at 1.
func (g *SequentialIDs) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	clear(g.next)
}
