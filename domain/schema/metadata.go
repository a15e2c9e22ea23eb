package schema

import (
	"fmt"
	"sort"
	"sync"
)

// RawFile is the unparsed text of one schema file.
type RawFile struct {
	Path  string // relative to the schema root, slash separated
	Scope Scope
	Text  string
}

// Metadata describes one resolved schema.
type Metadata struct {
	FullName string
	Scope    Scope
	Path     string
	Type     Named
	Native   any // parser representation, used to seed later parses
}

// Unresolved is a schema file that did not parse at the fixed point. Err is
// the parse error of the final attempt.
type Unresolved struct {
	Scope Scope
	Path  string
	Text  string
	Err   error
}

// Store maps full names to resolved schemas. It only grows while the
// resolver runs and is read-only once frozen.
type Store struct {
	mu         sync.RWMutex
	byName     map[string]Metadata
	duplicates []Metadata
	frozen     bool
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{byName: make(map[string]Metadata)}
}

// Add records a resolved schema. A second schema with an already stored
// full name is kept as a duplicate so that uniqueness can be validated.
func (s *Store) Add(m Metadata) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.frozen {
		return fmt.Errorf("store is frozen, cannot add %s", m.FullName)
	}
	if _, ok := s.byName[m.FullName]; ok {
		s.duplicates = append(s.duplicates, m)
		return nil
	}
	s.byName[m.FullName] = m
	return nil
}

// Freeze makes the store read-only.
func (s *Store) Freeze() {
	s.mu.Lock()
	s.frozen = true
	s.mu.Unlock()
}

// Get returns the schema with the given full name.
func (s *Store) Get(fullName string) (Metadata, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.byName[fullName]
	return m, ok
}

// Len returns the number of distinct full names.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byName)
}

// All returns all stored schemas sorted by full name, followed by
// duplicates sorted by path.
func (s *Store) All() []Metadata {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]Metadata, 0, len(s.byName)+len(s.duplicates))
	for _, m := range s.byName {
		result = append(result, m)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].FullName < result[j].FullName })
	dups := append([]Metadata(nil), s.duplicates...)
	sort.Slice(dups, func(i, j int) bool { return dups[i].Path < dups[j].Path })
	return append(result, dups...)
}

// Scoped returns the stored schemas of one scope, duplicates included.
func (s *Store) Scoped(scope Scope) []Metadata {
	var result []Metadata
	for _, m := range s.All() {
		if m.Scope == scope {
			result = append(result, m)
		}
	}
	return result
}

// Known returns the full name to metadata mapping used to seed the parser.
func (s *Store) Known() map[string]Metadata {
	s.mu.RLock()
	defer s.mu.RUnlock()
	known := make(map[string]Metadata, len(s.byName))
	for k, v := range s.byName {
		known[k] = v
	}
	return known
}
