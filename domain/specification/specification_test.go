package specification_test

import (
	"reflect"
	"testing"

	"github.com/RADAR-base/RADAR-Schemas/domain/schema"
	"github.com/RADAR-base/RADAR-Schemas/domain/specification"
)

func TestExpandClass(t *testing.T) {
	tests := map[string]string{
		".passive.empatica.EmpaticaE4Acceleration": "org.radarcns.passive.empatica.EmpaticaE4Acceleration",
		"org.radarcns.kafka.ObservationKey":        "org.radarcns.kafka.ObservationKey",
		"":                                         "",
	}
	for in, want := range tests {
		if got := specification.ExpandClass(in); got != want {
			t.Errorf("ExpandClass(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNormalize_Passive(t *testing.T) {
	s := specification.Source{
		Vendor: "Empatica",
		Model:  "E4",
		Data: []specification.DataTopic{
			{Topic: "android_empatica_e4_acceleration", ValueSchema: ".passive.empatica.EmpaticaE4Acceleration"},
		},
	}
	if err := s.Normalize(schema.ScopePassive); err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if s.Name != "Empatica_E4" {
		t.Errorf("Name = %q, want Empatica_E4", s.Name)
	}
	if s.Data[0].KeySchema != specification.ObservationKey {
		t.Errorf("KeySchema = %q", s.Data[0].KeySchema)
	}
	if s.Data[0].ValueSchema != "org.radarcns.passive.empatica.EmpaticaE4Acceleration" {
		t.Errorf("ValueSchema = %q", s.Data[0].ValueSchema)
	}
	if !s.DoRegisterSchema() {
		t.Error("passive sources register schemas by default")
	}
}

func TestNormalize_WindowedStream(t *testing.T) {
	s := specification.Source{
		Data: []specification.DataTopic{
			{InputTopic: "android_empatica_e4_heart_rate", Windowed: true, ValueSchema: ".stream.AggregateNumber"},
			{TopicBase: "application_uptime", ValueSchema: ".monitor.application.ApplicationUptime"},
			{Topic: "explicit_topic", ValueSchema: ".stream.Other"},
		},
	}
	if err := s.Normalize(schema.ScopeStream); err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}

	windowed := s.Data[0]
	if windowed.KeySchema != specification.AggregateKey {
		t.Errorf("windowed KeySchema = %q, want AggregateKey", windowed.KeySchema)
	}
	if windowed.TopicBase != "android_empatica_e4_heart_rate" {
		t.Errorf("TopicBase = %q", windowed.TopicBase)
	}
	wantWindowed := []string{
		"android_empatica_e4_heart_rate_10sec",
		"android_empatica_e4_heart_rate_1min",
		"android_empatica_e4_heart_rate_10min",
		"android_empatica_e4_heart_rate_1hour",
		"android_empatica_e4_heart_rate_1day",
		"android_empatica_e4_heart_rate_1week",
	}
	if got := windowed.TopicNames(); !reflect.DeepEqual(got, wantWindowed) {
		t.Errorf("TopicNames() = %v", got)
	}

	if got := s.Data[1].TopicNames(); !reflect.DeepEqual(got, []string{"application_uptime_output"}) {
		t.Errorf("non-windowed TopicNames() = %v", got)
	}
	if s.Data[1].KeySchema != specification.ObservationKey {
		t.Errorf("non-windowed KeySchema = %q", s.Data[1].KeySchema)
	}
	if got := s.Data[2].TopicNames(); !reflect.DeepEqual(got, []string{"explicit_topic"}) {
		t.Errorf("explicit TopicNames() = %v", got)
	}
	if len(s.TopicNames()) != 8 {
		t.Errorf("source TopicNames() = %v", s.TopicNames())
	}
	if s.DoRegisterSchema() {
		t.Error("stream sources do not register schemas by default")
	}
}

func TestNormalize_InputTopicConflict(t *testing.T) {
	s := specification.Source{
		Data: []specification.DataTopic{{InputTopic: "a", InputTopics: []string{"b"}}},
	}
	if err := s.Normalize(schema.ScopeStream); err == nil {
		t.Error("expected error for input_topic combined with input_topics")
	}
}

func TestNormalize_AssessmentType(t *testing.T) {
	s := specification.Source{AssessmentType: "questionnaire"}
	if err := s.Normalize(schema.ScopeActive); err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if s.AssessmentType != specification.AssessmentQuestionnaire {
		t.Errorf("AssessmentType = %q", s.AssessmentType)
	}

	bad := specification.Source{AssessmentType: "SURVEY"}
	if err := bad.Normalize(schema.ScopeActive); err == nil {
		t.Error("expected error for unknown assessment type")
	}
}

func TestDoRegisterSchema_Explicit(t *testing.T) {
	yes := true
	s := specification.Source{Scope: schema.ScopeConnector, RegisterSchema: &yes}
	if !s.DoRegisterSchema() {
		t.Error("explicit register_schema should win")
	}
	c := specification.Source{Scope: schema.ScopeConnector}
	if c.DoRegisterSchema() {
		t.Error("connector sources do not register schemas by default")
	}
}
