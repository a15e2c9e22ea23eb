package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/RADAR-base/RADAR-Schemas/adapters/avro"
	"github.com/RADAR-base/RADAR-Schemas/adapters/clock"
	"github.com/RADAR-base/RADAR-Schemas/adapters/idgen"
	"github.com/RADAR-base/RADAR-Schemas/app"
	"github.com/RADAR-base/RADAR-Schemas/domain/snapshot"
)

// mockSnapshotStore implements ports.SnapshotStore for testing.
type mockSnapshotStore struct {
	snapshots []snapshot.Snapshot
	err       error
}

func (m *mockSnapshotStore) Save(ctx context.Context, s snapshot.Snapshot) error {
	if m.err != nil {
		return m.err
	}
	m.snapshots = append(m.snapshots, s)
	return nil
}

func (m *mockSnapshotStore) Get(ctx context.Context, id string) (snapshot.Snapshot, error) {
	for _, s := range m.snapshots {
		if s.ID == id {
			return s, nil
		}
	}
	return snapshot.Snapshot{}, snapshot.ErrNotFound
}

func (m *mockSnapshotStore) Latest(ctx context.Context) (snapshot.Snapshot, error) {
	if len(m.snapshots) == 0 {
		return snapshot.Snapshot{}, snapshot.ErrNotFound
	}
	return m.snapshots[len(m.snapshots)-1], nil
}

func (m *mockSnapshotStore) List(ctx context.Context, limit int) ([]snapshot.Snapshot, error) {
	return m.snapshots, m.err
}

func newSnapshotService(store *mockSnapshotStore) *app.SnapshotService {
	start := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	return app.NewSnapshotService(store, idgen.NewCounter("snap"), clock.NewStepping(start, time.Minute),
		avro.NewParser(), zerolog.Nop())
}

func TestSnapshotService_SaveAndDiff(t *testing.T) {
	ctx := context.Background()
	store := &mockSnapshotStore{}
	svc := newSnapshotService(store)

	schemas, _, err := newService(t, newRoot(t, nil), newFakeRecorder()).Resolve(ctx)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	saved, err := svc.Save(ctx, schemas)
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if saved.ID == "" || len(saved.Entries) != 2 {
		t.Fatalf("saved = %s with %d entries, want 2 entries", saved.ID, len(saved.Entries))
	}

	base, changes, err := svc.Diff(ctx, schemas, "")
	if err != nil {
		t.Fatalf("Diff() error = %v", err)
	}
	if base.ID != saved.ID || len(changes) != 0 {
		t.Errorf("Diff() = %s, %v, want %s without changes", base.ID, changes, saved.ID)
	}

	changed := newRoot(t, map[string]string{"commons/passive/phone/phone_light.avsc": phoneLight[:len(phoneLight)-1] + " \n}"})
	schemas, _, err = newService(t, changed, newFakeRecorder()).Resolve(ctx)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	_, changes, err = svc.Diff(ctx, schemas, saved.ID)
	if err != nil {
		t.Fatalf("Diff(id) error = %v", err)
	}
	if len(changes) != 0 {
		t.Errorf("whitespace change reported as %v", changes)
	}
}

func TestSnapshotService_DiffWithoutSnapshot(t *testing.T) {
	svc := newSnapshotService(&mockSnapshotStore{})
	schemas, _, err := newService(t, newRoot(t, nil), newFakeRecorder()).Resolve(context.Background())
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	_, _, err = svc.Diff(context.Background(), schemas, "")
	if !errors.Is(err, snapshot.ErrNotFound) {
		t.Errorf("Diff() error = %v, want ErrNotFound", err)
	}
}

func TestSnapshotService_SaveError(t *testing.T) {
	svc := newSnapshotService(&mockSnapshotStore{err: errors.New("disk full")})
	schemas, _, err := newService(t, newRoot(t, nil), newFakeRecorder()).Resolve(context.Background())
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if _, err := svc.Save(context.Background(), schemas); err == nil {
		t.Error("Save() should fail when the store fails")
	}
}
