// Package ports defines interfaces (contracts) between layers.
// Implementations live in adapters/.
package ports

import (
	"context"
	"time"

	"github.com/RADAR-base/RADAR-Schemas/domain/schema"
	"github.com/RADAR-base/RADAR-Schemas/domain/snapshot"
)

// -----------------------------------------------------------------------------
// Infrastructure Ports
// -----------------------------------------------------------------------------

// Clock abstracts time for testability.
type Clock interface {
	Now() time.Time
}

// IDGenerator generates unique identifiers.
type IDGenerator interface {
	New() string
}

// -----------------------------------------------------------------------------
// Schema Ports
// -----------------------------------------------------------------------------

// SchemaParser parses schema text. Parse must be safe for concurrent use;
// references to names in known resolve to those schemas.
type SchemaParser interface {
	// Parse returns the top-level named type of text together with the
	// parser's own representation of it.
	Parse(text string, known map[string]schema.Metadata) (schema.Named, any, error)

	// Format renders a resolved schema in the parser's canonical text form.
	Format(m schema.Metadata) string
}

// SnapshotStore persists catalogue snapshots.
type SnapshotStore interface {
	Save(ctx context.Context, s snapshot.Snapshot) error
	Get(ctx context.Context, id string) (snapshot.Snapshot, error)
	Latest(ctx context.Context) (snapshot.Snapshot, error)
	List(ctx context.Context, limit int) ([]snapshot.Snapshot, error) // entries not loaded
}

// -----------------------------------------------------------------------------
// Observability Ports
// -----------------------------------------------------------------------------

// Recorder receives run statistics.
type Recorder interface {
	RecordResolution(scope schema.Scope, resolved, unresolved int)
	RecordDiagnostics(command string, count int)
	ObserveValidation(command string, d time.Duration)
}
