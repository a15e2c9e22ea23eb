// Package config provides tool configuration loading and watching.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/RADAR-base/RADAR-Schemas/domain/schema"
	"github.com/RADAR-base/RADAR-Schemas/domain/specification"
)

// DefaultFile is the configuration file looked up in the catalogue root.
const DefaultFile = "schemas.yml"

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Config is the root configuration structure.
type Config struct {
	Kafka     map[string]any         `yaml:"kafka"`
	Topics    map[string]TopicConfig `yaml:"topics"`
	Schemas   SchemaConfig           `yaml:"schemas"`
	Sources   SourceConfig           `yaml:"sources"`
	Logging   LoggingConfig          `yaml:"logging"`
	Snapshots SnapshotConfig         `yaml:"snapshots"`
	Metrics   MetricsConfig          `yaml:"metrics"`
}

// TopicConfig overrides the settings of one topic.
type TopicConfig struct {
	Enabled           *bool             `yaml:"enabled"`
	Partitions        *int              `yaml:"partitions"`
	ReplicationFactor *int16            `yaml:"replication_factor"`
	KeySchema         string            `yaml:"key_schema"`
	ValueSchema       string            `yaml:"value_schema"`
	Properties        map[string]string `yaml:"properties"`
	RegisterSchema    *bool             `yaml:"register_schema"`
}

// IsEnabled reports whether the topic is enabled. Topics are enabled unless
// configured otherwise.
func (t TopicConfig) IsEnabled() bool {
	return t.Enabled == nil || *t.Enabled
}

// DoRegisterSchema reports whether the topic schemas should be registered.
func (t TopicConfig) DoRegisterSchema() bool {
	return t.RegisterSchema == nil || *t.RegisterSchema
}

// SchemaConfig selects schema files and adds inline schemas. Inline schema
// maps are keyed by path relative to the scope directory.
type SchemaConfig struct {
	PathMatcher `yaml:",inline"`
	Active      map[string]string `yaml:"active"`
	Monitor     map[string]string `yaml:"monitor"`
	Passive     map[string]string `yaml:"passive"`
	Stream      map[string]string `yaml:"stream"`
	Connector   map[string]string `yaml:"connector"`
	Push        map[string]string `yaml:"push"`
	Kafka       map[string]string `yaml:"kafka"`
	Catalogue   map[string]string `yaml:"catalogue"`
}

// Inline returns the inline schemas of one scope.
func (c SchemaConfig) Inline(scope schema.Scope) map[string]string {
	switch scope {
	case schema.ScopeActive:
		return c.Active
	case schema.ScopeMonitor:
		return c.Monitor
	case schema.ScopePassive:
		return c.Passive
	case schema.ScopeStream:
		return c.Stream
	case schema.ScopeConnector:
		return c.Connector
	case schema.ScopePush:
		return c.Push
	case schema.ScopeKafka:
		return c.Kafka
	case schema.ScopeCatalogue:
		return c.Catalogue
	}
	return nil
}

// SourceConfig selects specification files and adds inline sources.
type SourceConfig struct {
	PathMatcher `yaml:",inline"`
	Active      []specification.Source `yaml:"active"`
	Monitor     []specification.Source `yaml:"monitor"`
	Passive     []specification.Source `yaml:"passive"`
	Stream      []specification.Source `yaml:"stream"`
	Connector   []specification.Source `yaml:"connector"`
	Push        []specification.Source `yaml:"push"`
}

// Inline returns the inline sources of one scope.
func (c SourceConfig) Inline(scope schema.Scope) []specification.Source {
	switch scope {
	case schema.ScopeActive:
		return c.Active
	case schema.ScopeMonitor:
		return c.Monitor
	case schema.ScopePassive:
		return c.Passive
	case schema.ScopeStream:
		return c.Stream
	case schema.ScopeConnector:
		return c.Connector
	case schema.ScopePush:
		return c.Push
	}
	return nil
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // console, json
}

// SnapshotConfig configures the snapshot database.
type SnapshotConfig struct {
	Path string `yaml:"path"`
}

// MetricsConfig configures the metrics text file.
type MetricsConfig struct {
	File string `yaml:"file"` // empty disables export
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	var cfg Config
	applyEnvOverrides(&cfg)
	setDefaults(&cfg)
	return &cfg
}

// Load loads the configuration at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse parses configuration YAML. Environment variables in the text are
// expanded first.
func Parse(data []byte) (*Config, error) {
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}

// LoadWithFallback loads path if it exists and returns the default
// configuration otherwise.
func LoadWithFallback(path string) (*Config, error) {
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}
	return Default(), nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("RADAR_SCHEMAS_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("RADAR_SCHEMAS_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("RADAR_SCHEMAS_SNAPSHOT_DB"); v != "" {
		cfg.Snapshots.Path = v
	}
	if v := os.Getenv("RADAR_SCHEMAS_METRICS_FILE"); v != "" {
		cfg.Metrics.File = v
	}
}

func setDefaults(cfg *Config) {
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "console"
	}
	if cfg.Snapshots.Path == "" {
		cfg.Snapshots.Path = ".radar-schemas/snapshots.db"
	}
	if cfg.Topics == nil {
		cfg.Topics = make(map[string]TopicConfig)
	}
}

func validate(cfg *Config) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("%w: logging.level must be one of debug, info, warn, error, got %q", ErrInvalid, cfg.Logging.Level)
	}
	if cfg.Logging.Format != "console" && cfg.Logging.Format != "json" {
		return fmt.Errorf("%w: logging.format must be 'console' or 'json', got %q", ErrInvalid, cfg.Logging.Format)
	}

	if err := cfg.Schemas.PathMatcher.Validate(); err != nil {
		return fmt.Errorf("%w: schemas: %v", ErrInvalid, err)
	}
	if err := cfg.Sources.PathMatcher.Validate(); err != nil {
		return fmt.Errorf("%w: sources: %v", ErrInvalid, err)
	}

	for name, t := range cfg.Topics {
		if t.Partitions != nil && *t.Partitions < 1 {
			return fmt.Errorf("%w: topics.%s.partitions must be positive", ErrInvalid, name)
		}
		if t.ReplicationFactor != nil && *t.ReplicationFactor < 1 {
			return fmt.Errorf("%w: topics.%s.replication_factor must be positive", ErrInvalid, name)
		}
	}
	return nil
}
