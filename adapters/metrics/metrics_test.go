package metrics_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/RADAR-base/RADAR-Schemas/adapters/metrics"
	"github.com/RADAR-base/RADAR-Schemas/domain/schema"
)

func TestNew(t *testing.T) {
	m := metrics.NewWithRegistry(prometheus.NewRegistry())

	if m.ResolvedSchemas == nil {
		t.Error("ResolvedSchemas is nil")
	}
	if m.Diagnostics == nil {
		t.Error("Diagnostics is nil")
	}
	if m.ValidationDuration == nil {
		t.Error("ValidationDuration is nil")
	}

	// Independent collectors do not conflict.
	_ = metrics.New()
	_ = metrics.New()
}

func TestRecordResolution(t *testing.T) {
	m := metrics.New()

	m.RecordResolution(schema.ScopePassive, 12, 1)
	m.RecordResolution(schema.ScopePassive, 10, 0)

	if got := testutil.ToFloat64(m.ResolvedSchemas.WithLabelValues("passive")); got != 10 {
		t.Errorf("resolved = %v, want 10", got)
	}
	if got := testutil.ToFloat64(m.UnresolvedSchemas.WithLabelValues("passive")); got != 0 {
		t.Errorf("unresolved = %v, want 0", got)
	}
}

func TestRecordDiagnostics(t *testing.T) {
	m := metrics.New()

	m.RecordDiagnostics("validate", 3)
	m.RecordDiagnostics("validate", 2)
	m.RecordDiagnostics("specification", 1)

	if got := testutil.ToFloat64(m.Diagnostics.WithLabelValues("validate")); got != 5 {
		t.Errorf("validate diagnostics = %v, want 5", got)
	}
	if got := testutil.ToFloat64(m.Diagnostics.WithLabelValues("specification")); got != 1 {
		t.Errorf("specification diagnostics = %v, want 1", got)
	}
}

func TestObserveValidation(t *testing.T) {
	m := metrics.New()

	m.ObserveValidation("validate", 1500*time.Millisecond)
	m.ObserveValidation("validate", 500*time.Millisecond)

	if got := testutil.ToFloat64(m.Runs); got != 2 {
		t.Errorf("runs = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.LastRunDuration); got != 0.5 {
		t.Errorf("last run duration = %v, want 0.5", got)
	}
	if count := testutil.CollectAndCount(m.ValidationDuration); count != 1 {
		t.Errorf("histogram series = %d, want 1", count)
	}
}

func TestWriteTextfile(t *testing.T) {
	m := metrics.New()
	m.RecordDiagnostics("validate", 4)

	path := filepath.Join(t.TempDir(), "radar_schemas.prom")
	if err := m.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(data), `radar_schemas_diagnostics_total{command="validate"} 4`) {
		t.Errorf("textfile does not contain the diagnostics counter:\n%s", data)
	}
}
