package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/RADAR-base/RADAR-Schemas/domain/schema"
	"github.com/RADAR-base/RADAR-Schemas/domain/snapshot"
	"github.com/RADAR-base/RADAR-Schemas/ports"
)

// timeLayout has a fixed width so that stored times sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SnapshotStore implements ports.SnapshotStore using SQLite.
type SnapshotStore struct {
	db *DB
}

var _ ports.SnapshotStore = (*SnapshotStore)(nil)

// NewSnapshotStore creates a new snapshot store.
func NewSnapshotStore(db *DB) *SnapshotStore {
	return &SnapshotStore{db: db}
}

// Save stores a snapshot with all its entries.
func (s *SnapshotStore) Save(ctx context.Context, snap snapshot.Snapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO snapshots (id, created_at) VALUES (?, ?)`,
		snap.ID, snap.CreatedAt.UTC().Format(timeLayout),
	); err != nil {
		return fmt.Errorf("insert snapshot %s: %w", snap.ID, err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO snapshot_entries (snapshot_id, full_name, scope, path, text) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare entry insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range snap.Entries {
		if _, err := stmt.ExecContext(ctx, snap.ID, e.FullName, string(e.Scope), e.Path, e.Text); err != nil {
			return fmt.Errorf("insert entry %s: %w", e.FullName, err)
		}
	}
	return tx.Commit()
}

// Get retrieves a snapshot with its entries.
func (s *SnapshotStore) Get(ctx context.Context, id string) (snapshot.Snapshot, error) {
	var snap snapshot.Snapshot
	var createdAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, created_at FROM snapshots WHERE id = ?`, id,
	).Scan(&snap.ID, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return snapshot.Snapshot{}, fmt.Errorf("%w: %s", snapshot.ErrNotFound, id)
		}
		return snapshot.Snapshot{}, err
	}
	if snap.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return snapshot.Snapshot{}, fmt.Errorf("snapshot %s created_at: %w", id, err)
	}

	snap.Entries, err = s.entries(ctx, id)
	if err != nil {
		return snapshot.Snapshot{}, err
	}
	return snap, nil
}

// Latest retrieves the most recently created snapshot.
func (s *SnapshotStore) Latest(ctx context.Context) (snapshot.Snapshot, error) {
	var id string
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM snapshots ORDER BY created_at DESC, id DESC LIMIT 1`,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return snapshot.Snapshot{}, snapshot.ErrNotFound
		}
		return snapshot.Snapshot{}, err
	}
	return s.Get(ctx, id)
}

// List returns snapshots newest first, without their entries.
func (s *SnapshotStore) List(ctx context.Context, limit int) ([]snapshot.Snapshot, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at FROM snapshots ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []snapshot.Snapshot
	for rows.Next() {
		var snap snapshot.Snapshot
		var createdAt string
		if err := rows.Scan(&snap.ID, &createdAt); err != nil {
			return nil, err
		}
		if snap.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
			return nil, fmt.Errorf("snapshot %s created_at: %w", snap.ID, err)
		}
		result = append(result, snap)
	}
	return result, rows.Err()
}

func (s *SnapshotStore) entries(ctx context.Context, id string) ([]snapshot.Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT full_name, scope, path, text FROM snapshot_entries WHERE snapshot_id = ? ORDER BY full_name`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []snapshot.Entry
	for rows.Next() {
		var e snapshot.Entry
		var scope string
		if err := rows.Scan(&e.FullName, &scope, &e.Path, &e.Text); err != nil {
			return nil, err
		}
		e.Scope = schema.Scope(scope)
		result = append(result, e)
	}
	return result, rows.Err()
}
