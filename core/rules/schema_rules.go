package rules

import (
	"fmt"
	"strings"
	"sync"

	"github.com/RADAR-base/RADAR-Schemas/core/validation"
	"github.com/RADAR-base/RADAR-Schemas/domain/schema"
)

// Temporal field names.
const (
	FieldTime          = "time"
	FieldTimeReceived  = "timeReceived"
	FieldTimeCompleted = "timeCompleted"
)

const withTypeDouble = `" field with type "double".`

// SchemaRules validates record and enum schemas. It remembers the
// definitions it has seen, so a new instance must be used per run.
type SchemaRules struct {
	Fields *FieldRules

	definitions sync.Map // full name -> canonical form
	visited     sync.Map // schema.Named -> struct{}

	RecordValid  validation.Validator[schema.Named]
	EnumValid    validation.Validator[schema.Named]
	ActiveValid  validation.Validator[schema.Named]
	MonitorValid validation.Validator[schema.Named]
	PassiveValid validation.Validator[schema.Named]
}

// NewSchemaRules creates the schema and field rules of one run.
func NewSchemaRules() *SchemaRules {
	r := &SchemaRules{}
	r.Fields = newFieldRules(r)

	r.RecordValid = validation.All(
		r.Unique(),
		RoundTrip(),
		NamespaceValid(),
		NameValid(),
		DocumentationValid(),
		FieldsValid(r.Fields.FieldValid),
	)
	r.EnumValid = validation.All(
		r.Unique(),
		NamespaceValid(),
		EnumSymbolsValid(),
		DocumentationValid(),
		NameValid(),
	)
	r.ActiveValid = validation.All(r.RecordValid, HasTime(), HasTimeCompleted(), HasNoTimeReceived())
	r.MonitorValid = validation.All(r.RecordValid, HasTime())
	r.PassiveValid = validation.All(r.RecordValid, HasTime(), HasTimeReceived(), HasNoTimeCompleted())
	return r
}

// ForScope returns the validator for a top-level schema of scope. Enums
// always get the enum rules. Without scopeSpecific, records get the general
// record rules only.
func (r *SchemaRules) ForScope(scope schema.Scope, scopeSpecific bool) validation.Validator[schema.Named] {
	return func(c *validation.Context, t schema.Named) {
		r.visited.Store(t, struct{}{})
		if t.Kind() == schema.KindEnum {
			r.EnumValid(c, t)
			return
		}
		if !scopeSpecific {
			r.RecordValid(c, t)
			return
		}
		switch scope {
		case schema.ScopeActive:
			r.ActiveValid(c, t)
		case schema.ScopeMonitor:
			r.MonitorValid(c, t)
		case schema.ScopePassive:
			r.PassiveValid(c, t)
		default:
			r.RecordValid(c, t)
		}
	}
}

// nested launches the record or enum rules for a type referenced from a
// field. A type is validated once per run, which also ends recursion.
func (r *SchemaRules) nested(c *validation.Context, t schema.Type) {
	named, ok := t.(schema.Named)
	if !ok {
		return
	}
	if _, loaded := r.visited.LoadOrStore(named, struct{}{}); loaded {
		return
	}
	switch named.Kind() {
	case schema.KindRecord:
		validation.Launch(c, r.RecordValid, named)
	case schema.KindEnum:
		validation.Launch(c, r.EnumValid, named)
	}
}

// Unique raises when a schema with the same full name but a different
// definition was validated before in this run.
func (r *SchemaRules) Unique() validation.Validator[schema.Named] {
	return func(c *validation.Context, t schema.Named) {
		canonical := schema.Canonical(t)
		previous, loaded := r.definitions.LoadOrStore(t.TypeName(), canonical)
		if loaded && previous.(string) != canonical {
			c.Raise(schemaMessage(t, "Schema is already defined elsewhere with a different definition."), nil)
		}
	}
}

// NamespaceValid checks the namespace syntax.
func NamespaceValid() validation.Validator[schema.Named] {
	return schemaCheck(func(t schema.Named) bool {
		ns, _ := schema.SplitName(t.TypeName())
		return NamespacePattern.MatchString(ns)
	}, "Namespace cannot be null and must fully lowercase, period-separated, without numeric characters.")
}

// NameValid checks that the local name is CamelCase.
func NameValid() validation.Validator[schema.Named] {
	return schemaCheck(func(t schema.Named) bool {
		_, name := schema.SplitName(t.TypeName())
		return RecordNamePattern.MatchString(name)
	}, "Record names must be camel case.")
}

// DocumentationValid checks the schema documentation.
func DocumentationValid() validation.Validator[schema.Named] {
	return func(c *validation.Context, t schema.Named) {
		validateDocumentation(docOf(t), func(text string) {
			c.Raise(schemaMessage(t, text), nil)
		})
	}
}

// EnumSymbolsValid checks that an enum has symbols and that each is
// UPPER_SNAKE_CASE.
func EnumSymbolsValid() validation.Validator[schema.Named] {
	return func(c *validation.Context, t schema.Named) {
		enum, ok := t.(*schema.Enum)
		if !ok || len(enum.Symbols) == 0 {
			c.Raise(schemaMessage(t, "Avro Enumerator must have symbol list."), nil)
			return
		}
		for _, s := range enum.Symbols {
			if !EnumSymbolPattern.MatchString(s) {
				c.Raise(schemaMessage(t, fmt.Sprintf("Symbol %s does not use valid syntax. "+
					"Enumerator items should be written in uppercase characters separated by underscores.", s)), nil)
			}
		}
	}
}

// FieldsValid runs validator on every field of a record.
func FieldsValid(validator validation.Validator[SchemaField]) validation.Validator[schema.Named] {
	return func(c *validation.Context, t schema.Named) {
		rec, ok := t.(*schema.Record)
		switch {
		case !ok:
			c.Raise(fmt.Sprintf("Default validation can be applied only to an Avro RECORD, not to %s of schema %s.",
				strings.ToUpper(string(t.Kind())), t.TypeName()), nil)
		case len(rec.Fields) == 0:
			c.Raise(fmt.Sprintf("Schema %s does not contain any fields.", rec.FullName), nil)
		default:
			fields := make([]SchemaField, len(rec.Fields))
			for i, f := range rec.Fields {
				fields[i] = SchemaField{Schema: rec, Field: f}
			}
			validation.ValidateAll(c, validator, fields)
		}
	}
}

// HasTime requires a double time field.
func HasTime() validation.Validator[schema.Named] {
	return schemaCheck(hasDouble(FieldTime),
		`Any schema representing collected data must have a "`+FieldTime+withTypeDouble)
}

// HasTimeCompleted requires a double timeCompleted field.
func HasTimeCompleted() validation.Validator[schema.Named] {
	return schemaCheck(hasDouble(FieldTimeCompleted),
		`Any ACTIVE schema must have a "`+FieldTimeCompleted+withTypeDouble)
}

// HasNoTimeCompleted forbids a timeCompleted field.
func HasNoTimeCompleted() validation.Validator[schema.Named] {
	return schemaCheck(lacks(FieldTimeCompleted),
		`"`+FieldTimeCompleted+`" is allow only in ACTIVE schemas.`)
}

// HasTimeReceived requires a double timeReceived field.
func HasTimeReceived() validation.Validator[schema.Named] {
	return schemaCheck(hasDouble(FieldTimeReceived),
		`Any PASSIVE schema must have a "`+FieldTimeReceived+withTypeDouble)
}

// HasNoTimeReceived forbids a timeReceived field.
func HasNoTimeReceived() validation.Validator[schema.Named] {
	return schemaCheck(lacks(FieldTimeReceived),
		`"`+FieldTimeReceived+`" is allow only in PASSIVE schemas.`)
}

func hasDouble(name string) func(schema.Named) bool {
	return func(t schema.Named) bool {
		rec, ok := t.(*schema.Record)
		if !ok {
			return false
		}
		f, ok := rec.Field(name)
		return ok && f.Type.Kind() == schema.KindDouble
	}
}

func lacks(name string) func(schema.Named) bool {
	return func(t schema.Named) bool {
		rec, ok := t.(*schema.Record)
		if !ok {
			return true
		}
		_, ok = rec.Field(name)
		return !ok
	}
}
