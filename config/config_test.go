package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/RADAR-base/RADAR-Schemas/config"
	"github.com/RADAR-base/RADAR-Schemas/domain/schema"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), config.DefaultFile)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func validConfig() string {
	return `
kafka:
  bootstrap.servers: localhost:9092
topics:
  android_phone_acceleration:
    partitions: 3
    replication_factor: 2
    properties:
      cleanup.policy: compact
  legacy_topic:
    enabled: false
schemas:
  exclude:
    - "**/legacy/**"
  passive:
    test/test_value.avsc: |
      {"type": "record", "name": "TestValue", "namespace": "org.radarcns.passive.test", "doc": "Test.", "fields": []}
sources:
  include:
    - "passive/**"
  passive:
    - vendor: test
      model: device
      doc: Test device.
      data:
        - topic: test_device_value
          value_schema: .passive.test.TestValue
`
}

func TestLoad(t *testing.T) {
	cfg, err := config.Load(writeConfig(t, validConfig()))
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if cfg.Kafka["bootstrap.servers"] != "localhost:9092" {
		t.Errorf("Kafka = %v", cfg.Kafka)
	}

	acc := cfg.Topics["android_phone_acceleration"]
	if acc.Partitions == nil || *acc.Partitions != 3 {
		t.Errorf("Partitions = %v, want 3", acc.Partitions)
	}
	if acc.ReplicationFactor == nil || *acc.ReplicationFactor != 2 {
		t.Errorf("ReplicationFactor = %v, want 2", acc.ReplicationFactor)
	}
	if acc.Properties["cleanup.policy"] != "compact" {
		t.Errorf("Properties = %v", acc.Properties)
	}
	if !acc.IsEnabled() || !acc.DoRegisterSchema() {
		t.Error("topics are enabled and registered by default")
	}
	if cfg.Topics["legacy_topic"].IsEnabled() {
		t.Error("legacy_topic should be disabled")
	}

	if got := cfg.Schemas.Inline(schema.ScopePassive); len(got) != 1 {
		t.Errorf("inline passive schemas = %v", got)
	}
	if got := cfg.Schemas.Inline(schema.ScopeActive); len(got) != 0 {
		t.Errorf("inline active schemas = %v", got)
	}
	if len(cfg.Schemas.Exclude) != 1 {
		t.Errorf("Schemas.Exclude = %v", cfg.Schemas.Exclude)
	}

	sources := cfg.Sources.Inline(schema.ScopePassive)
	if len(sources) != 1 || sources[0].Vendor != "test" || len(sources[0].Data) != 1 {
		t.Fatalf("inline passive sources = %+v", sources)
	}
	if sources[0].Data[0].ValueSchema != ".passive.test.TestValue" {
		t.Errorf("ValueSchema = %q, expansion happens when the catalogue loads", sources[0].Data[0].ValueSchema)
	}

	if cfg.Logging.Level != "info" || cfg.Logging.Format != "console" {
		t.Errorf("Logging defaults = %+v", cfg.Logging)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadWithFallback(t *testing.T) {
	cfg, err := config.LoadWithFallback(filepath.Join(t.TempDir(), "missing.yml"))
	if err != nil {
		t.Fatalf("LoadWithFallback error: %v", err)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("default level = %q", cfg.Logging.Level)
	}
	if cfg.Topics == nil {
		t.Error("Topics should be initialised")
	}
}

func TestParse_EnvExpansionAndOverrides(t *testing.T) {
	t.Setenv("TEST_BROKER", "broker:9092")
	t.Setenv("RADAR_SCHEMAS_LOG_LEVEL", "debug")
	t.Setenv("RADAR_SCHEMAS_METRICS_FILE", "/tmp/metrics.prom")

	cfg, err := config.Parse([]byte("kafka:\n  bootstrap.servers: ${TEST_BROKER}\nlogging:\n  level: warn\n"))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if cfg.Kafka["bootstrap.servers"] != "broker:9092" {
		t.Errorf("bootstrap.servers = %v", cfg.Kafka["bootstrap.servers"])
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("env override should win, got %q", cfg.Logging.Level)
	}
	if cfg.Metrics.File != "/tmp/metrics.prom" {
		t.Errorf("Metrics.File = %q", cfg.Metrics.File)
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"bad level", "logging:\n  level: verbose\n"},
		{"bad format", "logging:\n  format: xml\n"},
		{"bad glob", "schemas:\n  include:\n    - \"[\"\n"},
		{"bad partitions", "topics:\n  a:\n    partitions: 0\n"},
		{"bad replication", "topics:\n  a:\n    replication_factor: 0\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Parse([]byte(tt.yaml))
			if !errors.Is(err, config.ErrInvalid) {
				t.Errorf("Parse() error = %v, want ErrInvalid", err)
			}
		})
	}
}

func TestParse_Malformed(t *testing.T) {
	if _, err := config.Parse([]byte("topics: [")); err == nil {
		t.Error("expected YAML error")
	}
}

func TestPathMatcher(t *testing.T) {
	tests := []struct {
		name    string
		matcher config.PathMatcher
		path    string
		want    bool
	}{
		{"all", config.PathMatcher{}, "passive/a/b.avsc", true},
		{"include match", config.PathMatcher{Include: []string{"passive/**"}}, "passive/a/b.avsc", true},
		{"include miss", config.PathMatcher{Include: []string{"passive/**"}}, "active/a.avsc", false},
		{"exclude match", config.PathMatcher{Exclude: []string{"**/legacy/**"}}, "passive/legacy/a.avsc", false},
		{"exclude miss", config.PathMatcher{Exclude: []string{"**/legacy/**"}}, "passive/a.avsc", true},
		{"include wins", config.PathMatcher{Include: []string{"**/*.avsc"}, Exclude: []string{"**"}}, "a/b.avsc", true},
		{"single star", config.PathMatcher{Include: []string{"passive/*.avsc"}}, "passive/a/b.avsc", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.matcher.Matches(tt.path); got != tt.want {
				t.Errorf("Matches(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestPathMatcher_String(t *testing.T) {
	if got := (config.PathMatcher{}).String(); got != "PathMatcher{all}" {
		t.Errorf("String() = %q", got)
	}
	if got := (config.PathMatcher{Exclude: []string{"a"}}).String(); got != "PathMatcher{exclude=[a]}" {
		t.Errorf("String() = %q", got)
	}
}
