package keybindings

import "sync"

// Store is the shared surface between the config watcher (single writer) and
// the event loop (reader). Tables are immutable, so the lock only guards the
// pointer: readers never see a partially replaced table and a swap never waits
// on a lookup for longer than a pointer read.
type Store struct {
	mu    sync.RWMutex
	table *Table
}

// NewStore creates a Store holding table. A nil table behaves as empty.
func NewStore(table *Table) *Store {
	if table == nil {
		table = NewTable(nil)
	}
	return &Store{table: table}
}

// Swap atomically replaces the active table and returns the previous one.
func (s *Store) Swap(table *Table) *Table {
	if table == nil {
		table = NewTable(nil)
	}
	s.mu.Lock()
	previous := s.table
	s.table = table
	s.mu.Unlock()
	return previous
}

// Snapshot returns the currently active table.
func (s *Store) Snapshot() *Table {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.table
}

// Lookup returns the command bound to chord in the active table.
func (s *Store) Lookup(chord string) (string, bool) {
	return s.Snapshot().Lookup(chord)
}
