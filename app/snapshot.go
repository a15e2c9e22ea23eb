package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/RADAR-base/RADAR-Schemas/domain/schema"
	"github.com/RADAR-base/RADAR-Schemas/domain/snapshot"
	"github.com/RADAR-base/RADAR-Schemas/ports"
)

// SnapshotService stores copies of the resolved catalogue and compares the
// current catalogue against them.
type SnapshotService struct {
	store  ports.SnapshotStore
	ids    ports.IDGenerator
	clock  ports.Clock
	parser ports.SchemaParser
	logger zerolog.Logger
}

// NewSnapshotService creates a snapshot service.
func NewSnapshotService(store ports.SnapshotStore, ids ports.IDGenerator, clock ports.Clock, parser ports.SchemaParser, logger zerolog.Logger) *SnapshotService {
	return &SnapshotService{
		store:  store,
		ids:    ids,
		clock:  clock,
		parser: parser,
		logger: logger,
	}
}

// Save stores a snapshot of schemas and returns it.
func (s *SnapshotService) Save(ctx context.Context, schemas *schema.Store) (snapshot.Snapshot, error) {
	snap := snapshot.Snapshot{
		ID:        s.ids.New(),
		CreatedAt: s.clock.Now().UTC(),
		Entries:   snapshot.FromStore(schemas, s.parser.Format),
	}
	if err := s.store.Save(ctx, snap); err != nil {
		return snapshot.Snapshot{}, fmt.Errorf("save snapshot: %w", err)
	}
	s.logger.Info().
		Str("id", snap.ID).
		Int("schemas", len(snap.Entries)).
		Msg("snapshot saved")
	return snap, nil
}

// Diff compares schemas against the snapshot with the given id, or against
// the latest snapshot if id is empty.
func (s *SnapshotService) Diff(ctx context.Context, schemas *schema.Store, id string) (snapshot.Snapshot, []snapshot.Change, error) {
	var (
		base snapshot.Snapshot
		err  error
	)
	if id == "" {
		base, err = s.store.Latest(ctx)
	} else {
		base, err = s.store.Get(ctx, id)
	}
	if err != nil {
		if errors.Is(err, snapshot.ErrNotFound) {
			return snapshot.Snapshot{}, nil, err
		}
		return snapshot.Snapshot{}, nil, fmt.Errorf("load snapshot: %w", err)
	}

	current := snapshot.FromStore(schemas, s.parser.Format)
	return base, snapshot.Compare(base.Entries, current), nil
}

// List returns the most recent snapshots without their entries.
func (s *SnapshotService) List(ctx context.Context, limit int) ([]snapshot.Snapshot, error) {
	return s.store.List(ctx, limit)
}
