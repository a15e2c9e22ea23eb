package idgen_test

import (
	"testing"

	"github.com/google/uuid"

	"github.com/RADAR-base/RADAR-Schemas/adapters/idgen"
)

func TestTimeOrdered_New(t *testing.T) {
	gen := idgen.TimeOrdered{}
	a := gen.New()
	b := gen.New()

	if a == b {
		t.Error("expected unique ids")
	}
	parsed, err := uuid.Parse(a)
	if err != nil {
		t.Fatalf("id is not a UUID: %v", err)
	}
	if parsed.Version() != 7 {
		t.Errorf("version = %d, want 7", parsed.Version())
	}
	if a >= b {
		t.Errorf("ids should sort by creation: %s >= %s", a, b)
	}
}

func TestCounter_New(t *testing.T) {
	gen := idgen.NewCounter("run")
	if got := gen.New(); got != "run-1" {
		t.Errorf("New() = %s", got)
	}
	if got := gen.New(); got != "run-2" {
		t.Errorf("New() = %s", got)
	}
}
