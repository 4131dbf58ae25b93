package recipe

import "sync/atomic"

// Store holds the current catalogue as an immutable snapshot. Reload swaps
// the whole snapshot atomically, so readers never observe a half-built
// catalogue and need no locking.
type Store struct {
	cur atomic.Pointer[Catalogue]
}

func NewStore() *Store {
	s := &Store{}
	s.cur.Store(&Catalogue{index: map[string]Recipe{}})
	return s
}

// Reload re-parses the document and swaps in the new catalogue. Returns the
// parse warnings for the host to surface.
func (s *Store) Reload(doc string) []Warning {
	catalogue, warnings := Parse(doc)
	s.cur.Store(catalogue)
	return warnings
}

// Catalogue returns the current snapshot
func (s *Store) Catalogue() *Catalogue {
	return s.cur.Load()
}

// Get the latest definition of the named recipe from the current snapshot
func (s *Store) Get(name string) (Recipe, bool) {
	return s.cur.Load().Get(name)
}
