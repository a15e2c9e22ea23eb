package rules

import (
	"fmt"
	"strings"

	"github.com/RADAR-base/RADAR-Schemas/core/validation"
	"github.com/RADAR-base/RADAR-Schemas/domain/schema"
)

const unknownSymbol = "UNKNOWN"

// SchemaField is a field together with the record that declares it.
type SchemaField struct {
	Schema *schema.Record
	Field  schema.Field
}

// FieldRules validates record fields. Named field types are handed back to
// the schema rules.
type FieldRules struct {
	schemas *SchemaRules

	FieldValid validation.Validator[SchemaField]
}

func newFieldRules(schemas *SchemaRules) *FieldRules {
	r := &FieldRules{schemas: schemas}
	r.FieldValid = validation.All(
		r.TypeValid(),
		FieldNameValid(),
		DefaultValid(),
		FieldDocumentationValid(),
	)
	return r
}

// TypeValid validates named types used by the field, including the branches
// of a union and the items or values of arrays and maps.
func (r *FieldRules) TypeValid() validation.Validator[SchemaField] {
	return func(c *validation.Context, f SchemaField) {
		switch t := f.Field.Type.(type) {
		case *schema.Union:
			for _, option := range t.Options {
				if option.Kind() == schema.KindUnion {
					c.Raise(fieldMessage(f, "Cannot have a nested union."), nil)
					continue
				}
				r.schemas.nested(c, option)
			}
		case *schema.Array:
			r.schemas.nested(c, t.Items)
		case *schema.Map:
			r.schemas.nested(c, t.Values)
		default:
			r.schemas.nested(c, t)
		}
	}
}

// FieldNameValid checks that the field name is lowerCamelCase.
func FieldNameValid() validation.Validator[SchemaField] {
	return validation.Check(func(f SchemaField) bool {
		return FieldNamePattern.MatchString(f.Field.Name)
	}, func(f SchemaField) string {
		return fieldMessage(f, "Field name does not respect lowerCamelCase name convention."+
			" Please avoid abbreviations and write out the field name instead.")
	})
}

// FieldDocumentationValid checks the field documentation.
func FieldDocumentationValid() validation.Validator[SchemaField] {
	return func(c *validation.Context, f SchemaField) {
		validateDocumentation(f.Field.Doc, func(text string) {
			c.Raise(fieldMessage(f, text), nil)
		})
	}
}

// DefaultValid applies the default value policy: an enum with an UNKNOWN
// symbol defaults to UNKNOWN, a nullable union defaults to null and other
// fields have no default.
func DefaultValid() validation.Validator[SchemaField] {
	return func(c *validation.Context, f SchemaField) {
		field := f.Field
		switch t := field.Type.(type) {
		case *schema.Enum:
			if t.HasSymbol(unknownSymbol) && !(field.HasDefault && fmt.Sprint(field.Default) == unknownSymbol) {
				c.Raise(fieldMessage(f, fmt.Sprintf("Default is %q. Any Avro enum type that has an %q symbol"+
					" must set its default value to %q.", defaultString(field), unknownSymbol, unknownSymbol)), nil)
			}
		case *schema.Union:
			if t.Nullable() && !(field.HasDefault && field.Default == nil) {
				c.Raise(fieldMessage(f, "Default is not null. Any nullable Avro field must specify"+
					" have its default value set to null."), nil)
			}
		default:
			if field.HasDefault {
				c.Raise(fieldMessage(f, fmt.Sprintf("Default of type %s is set to %s. The only acceptable"+
					` default values are the "UNKNOWN" enum symbol and null.`,
					strings.ToUpper(string(t.Kind())), defaultString(field))), nil)
			}
		}
	}
}

func defaultString(f schema.Field) string {
	if !f.HasDefault || f.Default == nil {
		return "null"
	}
	return fmt.Sprint(f.Default)
}
