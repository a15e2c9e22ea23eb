package snapshot_test

import (
	"testing"

	"github.com/RADAR-base/RADAR-Schemas/domain/schema"
	"github.com/RADAR-base/RADAR-Schemas/domain/snapshot"
)

func TestFromStore(t *testing.T) {
	store := schema.NewStore()
	store.Add(schema.Metadata{FullName: "org.radarcns.B", Scope: schema.ScopePassive, Path: "passive/b.avsc", Type: schema.NewRecord("org.radarcns.B", "B.")})
	store.Add(schema.Metadata{FullName: "org.radarcns.A", Scope: schema.ScopeActive, Path: "active/a.avsc", Type: schema.NewRecord("org.radarcns.A", "A.")})
	store.Add(schema.Metadata{FullName: "org.radarcns.A", Scope: schema.ScopeActive, Path: "active/a2.avsc", Type: schema.NewRecord("org.radarcns.A", "A2.")})

	entries := snapshot.FromStore(store, func(m schema.Metadata) string { return schema.Canonical(m.Type) })
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].FullName != "org.radarcns.A" || entries[0].Path != "active/a.avsc" {
		t.Errorf("unexpected first entry %+v", entries[0])
	}
	if entries[1].Text != `{"type":"record","name":"org.radarcns.B","doc":"B.","fields":[]}` {
		t.Errorf("unexpected text %s", entries[1].Text)
	}
}

func TestCompare(t *testing.T) {
	old := []snapshot.Entry{
		{FullName: "a", Text: "1"},
		{FullName: "b", Text: "2"},
		{FullName: "c", Text: "3"},
	}
	current := []snapshot.Entry{
		{FullName: "a", Text: "1"},
		{FullName: "c", Text: "4"},
		{FullName: "d", Text: "5"},
	}

	changes := snapshot.Compare(old, current)
	if len(changes) != 3 {
		t.Fatalf("expected 3 changes, got %d: %+v", len(changes), changes)
	}
	want := []struct{ name, kind string }{
		{"b", snapshot.Removed},
		{"c", snapshot.Changed},
		{"d", snapshot.Added},
	}
	for i, w := range want {
		if changes[i].FullName != w.name || changes[i].Kind != w.kind {
			t.Errorf("change %d = %+v, want %s %s", i, changes[i], w.name, w.kind)
		}
	}
	if changes[1].Diff == "" {
		t.Error("changed entry should carry a diff")
	}
}

func TestCompare_Identical(t *testing.T) {
	entries := []snapshot.Entry{{FullName: "a", Text: "1"}}
	if changes := snapshot.Compare(entries, entries); len(changes) != 0 {
		t.Errorf("expected no changes, got %+v", changes)
	}
}
