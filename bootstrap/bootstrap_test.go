package bootstrap_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/RADAR-base/RADAR-Schemas/bootstrap"
	"github.com/RADAR-base/RADAR-Schemas/core/loader"
)

func newRoot(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	key := `{"namespace": "org.radarcns.kafka", "type": "record", "name": "ObservationKey",
  "doc": "Key of an observation.",
  "fields": [{"name": "userId", "type": "string", "doc": "User identifier."}]}`
	dir := filepath.Join(root, "commons", "kafka")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "observation_key.avsc"), []byte(key), 0644); err != nil {
		t.Fatal(err)
	}
	return root
}

func TestNew(t *testing.T) {
	root := newRoot(t)
	var logs bytes.Buffer

	a, err := bootstrap.New(bootstrap.Options{Root: root, LogLevel: "debug", LogOutput: &logs})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer a.Close()

	if a.Root != root {
		t.Errorf("Root = %s, want %s", a.Root, root)
	}
	store, unresolved, err := a.Catalogue().Resolve(context.Background())
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if store.Len() != 1 || len(unresolved) != 0 {
		t.Errorf("Resolve() = %d resolved, %d unresolved", store.Len(), len(unresolved))
	}
	if !strings.Contains(logs.String(), "schemas resolved") {
		t.Errorf("expected debug logs, got %q", logs.String())
	}
}

func TestNew_RootFromEnv(t *testing.T) {
	root := newRoot(t)
	t.Setenv(bootstrap.EnvRoot, root)

	a, err := bootstrap.New(bootstrap.Options{LogOutput: &bytes.Buffer{}})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer a.Close()
	if a.Root != root {
		t.Errorf("Root = %s, want %s", a.Root, root)
	}
}

func TestNew_MissingRoot(t *testing.T) {
	_, err := bootstrap.New(bootstrap.Options{
		Root:      filepath.Join(t.TempDir(), "missing"),
		LogOutput: &bytes.Buffer{},
	})
	if !errors.Is(err, loader.ErrRootNotFound) {
		t.Errorf("New() error = %v, want ErrRootNotFound", err)
	}
}

func TestNew_InvalidLogLevel(t *testing.T) {
	_, err := bootstrap.New(bootstrap.Options{Root: newRoot(t), LogLevel: "loud", LogOutput: &bytes.Buffer{}})
	if err == nil {
		t.Error("New() should reject an unknown log level")
	}
}

func TestApp_Snapshots(t *testing.T) {
	root := newRoot(t)
	a, err := bootstrap.New(bootstrap.Options{Root: root, LogOutput: &bytes.Buffer{}})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer a.Close()

	ctx := context.Background()
	snapshots, err := a.Snapshots(ctx)
	if err != nil {
		t.Fatalf("Snapshots() error = %v", err)
	}
	store, _, err := a.Catalogue().Resolve(ctx)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	saved, err := snapshots.Save(ctx, store)
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	_, changes, err := snapshots.Diff(ctx, store, "")
	if err != nil {
		t.Fatalf("Diff() error = %v", err)
	}
	if len(changes) != 0 {
		t.Errorf("Diff() against %s = %v, want no changes", saved.ID, changes)
	}
	if _, err := os.Stat(filepath.Join(root, ".radar-schemas", "snapshots.db")); err != nil {
		t.Errorf("snapshot database not created: %v", err)
	}
}

func TestApp_WriteMetrics(t *testing.T) {
	a, err := bootstrap.New(bootstrap.Options{Root: newRoot(t), LogOutput: &bytes.Buffer{}})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer a.Close()

	if _, _, err := a.Catalogue().Resolve(context.Background()); err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	path := filepath.Join(t.TempDir(), "radar_schemas.prom")
	if err := a.WriteMetrics(path); err != nil {
		t.Fatalf("WriteMetrics() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "radar_schemas_resolved_schemas") {
		t.Errorf("metrics file missing resolution gauge:\n%s", data)
	}
}
