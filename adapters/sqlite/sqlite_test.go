package sqlite_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/RADAR-base/RADAR-Schemas/adapters/sqlite"
	"github.com/RADAR-base/RADAR-Schemas/domain/schema"
	"github.com/RADAR-base/RADAR-Schemas/domain/snapshot"
)

func setupTestDB(t *testing.T) *sqlite.DB {
	t.Helper()

	db, err := sqlite.Open(filepath.Join(t.TempDir(), "nested", "snapshots.db"))
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestMigrate_Idempotent(t *testing.T) {
	db := setupTestDB(t)
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("second migrate: %v", err)
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count); err != nil {
		t.Fatalf("count migrations: %v", err)
	}
	if count != 1 {
		t.Errorf("applied migrations = %d, want 1", count)
	}
}

func TestSnapshotStore_SaveAndGet(t *testing.T) {
	store := sqlite.NewSnapshotStore(setupTestDB(t))
	ctx := context.Background()

	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	snap := snapshot.Snapshot{
		ID:        "snap-1",
		CreatedAt: created,
		Entries: []snapshot.Entry{
			{FullName: "org.radarcns.kafka.ObservationKey", Scope: schema.ScopeKafka, Path: "kafka/observation_key.avsc", Text: `{"type":"record"}`},
			{FullName: "org.radarcns.passive.phone.PhoneLight", Scope: schema.ScopePassive, Path: "passive/phone/phone_light.avsc", Text: `{"type":"record"}`},
		},
	}
	if err := store.Save(ctx, snap); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := store.Get(ctx, "snap-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !got.CreatedAt.Equal(created) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, created)
	}
	if len(got.Entries) != 2 {
		t.Fatalf("Entries = %d, want 2", len(got.Entries))
	}
	if got.Entries[1] != snap.Entries[1] {
		t.Errorf("entry = %+v, want %+v", got.Entries[1], snap.Entries[1])
	}

	if err := store.Save(ctx, snap); err == nil {
		t.Error("saving a duplicate id should fail")
	}
}

func TestSnapshotStore_NotFound(t *testing.T) {
	store := sqlite.NewSnapshotStore(setupTestDB(t))
	ctx := context.Background()

	if _, err := store.Get(ctx, "missing"); !errors.Is(err, snapshot.ErrNotFound) {
		t.Errorf("Get error = %v, want ErrNotFound", err)
	}
	if _, err := store.Latest(ctx); !errors.Is(err, snapshot.ErrNotFound) {
		t.Errorf("Latest error = %v, want ErrNotFound", err)
	}
}

func TestSnapshotStore_LatestAndList(t *testing.T) {
	store := sqlite.NewSnapshotStore(setupTestDB(t))
	ctx := context.Background()

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		snap := snapshot.Snapshot{ID: id, CreatedAt: base.Add(time.Duration(i) * 1500 * time.Millisecond)}
		if err := store.Save(ctx, snap); err != nil {
			t.Fatalf("Save %s: %v", id, err)
		}
	}

	latest, err := store.Latest(ctx)
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if latest.ID != "c" {
		t.Errorf("Latest = %s, want c", latest.ID)
	}

	list, err := store.List(ctx, 2)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 || list[0].ID != "c" || list[1].ID != "b" {
		t.Errorf("List = %+v, want [c b]", list)
	}
}

func TestSnapshotStore_CorruptCreatedAt(t *testing.T) {
	db := setupTestDB(t)
	store := sqlite.NewSnapshotStore(db)
	ctx := context.Background()

	if _, err := db.ExecContext(ctx, `INSERT INTO snapshots (id, created_at) VALUES (?, ?)`, "broken", "yesterday"); err != nil {
		t.Fatalf("insert snapshot: %v", err)
	}

	if _, err := store.Get(ctx, "broken"); err == nil || errors.Is(err, snapshot.ErrNotFound) {
		t.Errorf("Get error = %v, want a created_at parse error", err)
	}
	if _, err := store.List(ctx, 10); err == nil {
		t.Error("List should fail on an unparsable created_at")
	}
}
