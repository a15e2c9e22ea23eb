// Package snapshot provides point-in-time copies of the schema catalogue and
// the pure comparison between two of them.
package snapshot

import (
	"errors"
	"sort"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/RADAR-base/RADAR-Schemas/domain/schema"
)

// ErrNotFound is returned when no snapshot matches a lookup.
var ErrNotFound = errors.New("snapshot not found")

// Snapshot is a stored copy of every resolved schema.
type Snapshot struct {
	ID        string
	CreatedAt time.Time
	Entries   []Entry
}

// Entry is one schema in a snapshot.
type Entry struct {
	FullName string
	Scope    schema.Scope
	Path     string
	Text     string // canonical schema text
}

// Change kinds.
const (
	Added   = "added"
	Removed = "removed"
	Changed = "changed"
)

// Change describes how one schema differs between two snapshots.
type Change struct {
	FullName string
	Kind     string
	Diff     string // populated for Changed
}

// FromStore builds snapshot entries from resolved schemas, skipping
// duplicates. format renders a schema as text.
func FromStore(store *schema.Store, format func(schema.Metadata) string) []Entry {
	known := store.Known()
	entries := make([]Entry, 0, len(known))
	for name, m := range known {
		entries = append(entries, Entry{
			FullName: name,
			Scope:    m.Scope,
			Path:     m.Path,
			Text:     format(m),
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].FullName < entries[j].FullName })
	return entries
}

// Compare returns the changes needed to go from old to current, sorted by
// full name.
func Compare(old, current []Entry) []Change {
	before := index(old)
	after := index(current)

	var changes []Change
	for name, e := range after {
		prev, ok := before[name]
		if !ok {
			changes = append(changes, Change{FullName: name, Kind: Added})
			continue
		}
		if prev.Text != e.Text {
			changes = append(changes, Change{
				FullName: name,
				Kind:     Changed,
				Diff:     cmp.Diff(prev.Text, e.Text),
			})
		}
	}
	for name := range before {
		if _, ok := after[name]; !ok {
			changes = append(changes, Change{FullName: name, Kind: Removed})
		}
	}
	sort.Slice(changes, func(i, j int) bool { return changes[i].FullName < changes[j].FullName })
	return changes
}

func index(entries []Entry) map[string]Entry {
	m := make(map[string]Entry, len(entries))
	for _, e := range entries {
		m[e.FullName] = e
	}
	return m
}
