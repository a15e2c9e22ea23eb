// Package specification provides the source-type specification documents:
// the data producers of each scope and the topics they declare.
package specification

import (
	"fmt"
	"strings"

	"github.com/RADAR-base/RADAR-Schemas/domain/schema"
)

// Default key schemas.
const (
	ObservationKey = schema.ProjectGroup + ".kafka.ObservationKey"
	AggregateKey   = schema.ProjectGroup + ".kafka.AggregateKey"
)

// Assessment types of ACTIVE sources.
const (
	AssessmentQuestionnaire = "QUESTIONNAIRE"
	AssessmentApp           = "APP"
)

// SpecificationScopes are the scopes that have a specification directory.
var SpecificationScopes = []schema.Scope{
	schema.ScopeActive,
	schema.ScopeMonitor,
	schema.ScopePassive,
	schema.ScopeStream,
	schema.ScopeConnector,
	schema.ScopePush,
}

// Source is a data producer: a questionnaire, an app, a device, a stream
// group, a connector or a push integration. Scope-specific fields are empty
// when they do not apply.
type Source struct {
	Scope schema.Scope `yaml:"-"`
	Path  string       `yaml:"-"` // relative to the specification root, empty for inline sources

	Name           string            `yaml:"name,omitempty"`
	Doc            string            `yaml:"doc,omitempty"`
	AssessmentType string            `yaml:"assessment_type,omitempty"` // ACTIVE
	Vendor         string            `yaml:"vendor,omitempty"`
	Model          string            `yaml:"model,omitempty"`
	Version        string            `yaml:"version,omitempty"`
	AppProvider    string            `yaml:"app_provider,omitempty"` // ACTIVE app, MONITOR, PASSIVE
	Master         string            `yaml:"master,omitempty"`       // STREAM
	Properties     map[string]string `yaml:"properties,omitempty"`
	Labels         map[string]string `yaml:"labels,omitempty"`
	RegisterSchema *bool             `yaml:"register_schema,omitempty"`
	Data           []DataTopic       `yaml:"data"`
}

// DataTopic is one topic declared by a source.
type DataTopic struct {
	Type        string      `yaml:"type,omitempty"`
	Doc         string      `yaml:"doc,omitempty"`
	Topic       string      `yaml:"topic,omitempty"`
	KeySchema   string      `yaml:"key_schema,omitempty"`
	ValueSchema string      `yaml:"value_schema,omitempty"`
	SampleRate  *SampleRate `yaml:"sample_rate,omitempty"`
	Unit        string      `yaml:"unit,omitempty"`
	Fields      []DataField `yaml:"fields,omitempty"`

	AppProvider                string `yaml:"app_provider,omitempty"`                 // app topics
	ProcessingState            string `yaml:"processing_state,omitempty"`             // PASSIVE
	QuestionnaireDefinitionURL string `yaml:"questionnaire_definition_url,omitempty"` // questionnaires

	// STREAM
	Windowed    bool     `yaml:"windowed,omitempty"`
	TopicBase   string   `yaml:"topic_base,omitempty"`
	InputTopic  string   `yaml:"input_topic,omitempty"`
	InputTopics []string `yaml:"input_topics,omitempty"`
}

// SampleRate describes how often a topic produces data.
type SampleRate struct {
	Interval     *float64 `yaml:"interval,omitempty"`
	Frequency    *float64 `yaml:"frequency,omitempty"`
	Dynamic      bool     `yaml:"dynamic,omitempty"`
	Configurable bool     `yaml:"configurable,omitempty"`
}

// DataField names a field of interest in a topic.
type DataField struct {
	Name string `yaml:"name"`
}

// TimeWindow is an aggregation window of a windowed stream.
type TimeWindow struct {
	Label    string
	Interval string
}

// TimeWindows lists the windows of every windowed stream topic.
var TimeWindows = []TimeWindow{
	{"_10sec", "10s"},
	{"_1min", "1m"},
	{"_10min", "10m"},
	{"_1hour", "1h"},
	{"_1day", "24h"},
	{"_1week", "168h"},
}

// ExpandClass expands a schema name starting with a dot with the project
// group.
func ExpandClass(name string) string {
	if strings.HasPrefix(name, ".") {
		return schema.ProjectGroup + name
	}
	return name
}

// Normalize applies scope defaults and expands shorthand schema names. It
// must be called once after decoding.
func (s *Source) Normalize(scope schema.Scope) error {
	s.Scope = scope
	s.AppProvider = ExpandClass(s.AppProvider)

	if scope == schema.ScopeActive && s.AssessmentType != "" {
		switch strings.ToUpper(s.AssessmentType) {
		case AssessmentQuestionnaire, AssessmentApp:
			s.AssessmentType = strings.ToUpper(s.AssessmentType)
		default:
			return fmt.Errorf("unknown assessment_type %q", s.AssessmentType)
		}
	}
	if scope == schema.ScopePassive && s.Name == "" {
		s.Name = s.Vendor + "_" + s.Model
	}

	for i := range s.Data {
		if err := s.Data[i].normalize(scope); err != nil {
			return fmt.Errorf("data[%d]: %w", i, err)
		}
	}
	return nil
}

func (t *DataTopic) normalize(scope schema.Scope) error {
	t.KeySchema = ExpandClass(t.KeySchema)
	t.ValueSchema = ExpandClass(t.ValueSchema)
	t.AppProvider = ExpandClass(t.AppProvider)

	if scope == schema.ScopeStream {
		if t.InputTopic != "" {
			if len(t.InputTopics) > 0 {
				return fmt.Errorf("both input_topic and input_topics are set")
			}
			t.InputTopics = []string{t.InputTopic}
			if t.TopicBase == "" {
				t.TopicBase = t.InputTopic
			}
			t.InputTopic = ""
		}
		if t.Windowed && (t.KeySchema == "" || t.KeySchema == ObservationKey) {
			t.KeySchema = AggregateKey
		}
	}
	if t.KeySchema == "" {
		t.KeySchema = ObservationKey
	}
	return nil
}

// DoRegisterSchema reports whether the schemas of this source should be
// registered. STREAM and CONNECTOR sources default to false.
func (s *Source) DoRegisterSchema() bool {
	if s.RegisterSchema != nil {
		return *s.RegisterSchema
	}
	return s.Scope != schema.ScopeStream && s.Scope != schema.ScopeConnector
}

// TopicNames returns every topic name produced by the source.
func (s *Source) TopicNames() []string {
	var names []string
	for _, t := range s.Data {
		names = append(names, t.TopicNames()...)
	}
	return names
}

// TopicNames returns the topic names produced by t. A windowed stream
// produces one topic per time window.
func (t *DataTopic) TopicNames() []string {
	if t.Windowed {
		names := make([]string, len(TimeWindows))
		for i, w := range TimeWindows {
			names[i] = t.TopicBase + w.Label
		}
		return names
	}
	if t.Topic != "" {
		return []string{t.Topic}
	}
	if t.TopicBase != "" {
		return []string{t.TopicBase + "_output"}
	}
	return nil
}

// IsStreamOutput reports whether t is an aggregated stream output topic.
func (t *DataTopic) IsStreamOutput() bool {
	return t.Windowed
}

// Document is one file of the specification tree. Source is nil when the
// file was not decoded, either because it is not a YAML file or because Err
// is set.
type Document struct {
	Path   string // relative to the catalogue root
	Scope  schema.Scope
	Source *Source
	Err    error
}
