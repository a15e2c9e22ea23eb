package rules_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RADAR-base/RADAR-Schemas/core/rules"
	"github.com/RADAR-base/RADAR-Schemas/domain/schema"
)

func acceleration(name string) *schema.Record {
	return schema.NewRecord("org.radarcns.passive.empatica."+name, "Acceleration of the device.",
		field("time", double(), "Device timestamp in UTC (s)."),
		field("timeReceived", double(), "Receiver timestamp in UTC (s)."),
		field("x", schema.Prim(schema.KindFloat), "Acceleration in the x-axis (g)."),
	)
}

func metadata(t schema.Named, scope schema.Scope, path string) schema.Metadata {
	return schema.Metadata{FullName: t.TypeName(), Scope: scope, Path: path, Type: t}
}

func TestMetadataRules_Location(t *testing.T) {
	r := rules.NewMetadataRules(rules.NewSchemaRules(), nil, "commons")
	location := r.Location()

	valid := metadata(acceleration("EmpaticaE4Acceleration"), schema.ScopePassive, "passive/empatica/empatica_e4_acceleration.avsc")
	assert.Empty(t, run(t, location, valid))

	// misspelled, outside the scope directory
	outside := metadata(acceleration("EmpaticaE4Aceleration"), schema.ScopePassive, "to/empatica_e4_acceleration.avsc")
	diags := run(t, location, outside)
	require.Len(t, diags, 2)
	assert.Equal(t, "Path to/empatica_e4_acceleration.avsc is not part of root commons/passive", diags[0].Message)
	assert.Error(t, diags[0].Cause)
	assert.Equal(t, "Schema org.radarcns.passive.empatica.EmpaticaE4Aceleration at to/empatica_e4_acceleration.avsc"+
		` is invalid. Record name should match file name. Expected record name is "EmpaticaE4Acceleration".`, diags[1].Message)

	misspelled := metadata(acceleration("EmpaticaE4Aceleration"), schema.ScopePassive, "passive/empatica/empatica_e4_acceleration.avsc")
	assert.Len(t, run(t, location, misspelled), 1)

	wrongNamespace := metadata(schema.NewRecord("org.radarcns.monitors.test.RecordName", "Record."),
		schema.ScopeMonitor, "monitor/test/record_name.avsc")
	diags = run(t, location, wrongNamespace)
	require.Len(t, diags, 1)
	assert.Equal(t, "Schema org.radarcns.monitors.test.RecordName at monitor/test/record_name.avsc is invalid."+
		` Namespace cannot be null and must fully lowercase dot separated without numeric. In this case the expected value is "org.radarcns.monitor.test".`,
		diags[0].Message)
}

type prefixMatcher string

func (p prefixMatcher) Matches(path string) bool { return strings.HasPrefix(path, string(p)) }

func TestMetadataRules_ForScope(t *testing.T) {
	noDoc := schema.NewRecord("org.radarcns.passive.empatica.EmpaticaE4Acceleration", "",
		field("time", double(), "Device timestamp in UTC (s)."))
	m := metadata(noDoc, schema.ScopePassive, "passive/empatica/empatica_e4_acceleration.avsc")

	all := rules.NewMetadataRules(rules.NewSchemaRules(), nil, "commons")
	text := messages(run(t, all.ForScope(true), m))
	assert.Contains(t, text, `Property "doc" is missing.`)
	assert.Contains(t, text, `Any PASSIVE schema must have a "timeReceived" field`)

	general := rules.NewMetadataRules(rules.NewSchemaRules(), nil, "commons")
	assert.NotContains(t, messages(run(t, general.ForScope(false), m)), "timeReceived")

	excluded := rules.NewMetadataRules(rules.NewSchemaRules(), prefixMatcher("active/"), "commons")
	assert.Empty(t, run(t, excluded.ForScope(true), m))
}

func TestExpectedNamespace(t *testing.T) {
	ns, err := rules.ExpectedNamespace("passive/empatica/empatica_e4_acceleration.avsc", schema.ScopePassive)
	require.NoError(t, err)
	assert.Equal(t, "org.radarcns.passive.empatica", ns)

	ns, err = rules.ExpectedNamespace("kafka/observation_key.avsc", schema.ScopeKafka)
	require.NoError(t, err)
	assert.Equal(t, "org.radarcns.kafka", ns)

	_, err = rules.ExpectedNamespace("passive/x.avsc", schema.ScopeActive)
	assert.Error(t, err)

	assert.Equal(t, "ApplicationExternalTime", rules.ExpectedRecordName("monitor/application/application_external_time.avsc"))
	assert.Equal(t, "Questionnaire", rules.ExpectedRecordName("questionnaire.avsc"))
}
