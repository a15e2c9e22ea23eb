package rules

import (
	"fmt"
	"path"
	"strings"

	"github.com/RADAR-base/RADAR-Schemas/core/validation"
	"github.com/RADAR-base/RADAR-Schemas/domain/schema"
	"github.com/RADAR-base/RADAR-Schemas/domain/specification"
)

// SpecificationExtension is the required extension of specification files.
const SpecificationExtension = "yml"

// SchemaLookup finds resolved schemas by full name.
type SchemaLookup interface {
	Get(fullName string) (schema.Metadata, bool)
}

// SpecificationRules validates the documents of the specification tree.
type SpecificationRules struct {
	schemas SchemaLookup
}

// NewSpecificationRules creates specification rules. With a nil lookup,
// schema references are not checked.
func NewSpecificationRules(schemas SchemaLookup) *SpecificationRules {
	return &SpecificationRules{schemas: schemas}
}

// DocumentValid returns the validator of a specification document.
func (r *SpecificationRules) DocumentValid() validation.Validator[specification.Document] {
	return validation.All(
		HasExtension(SpecificationExtension),
		r.parsed(),
	)
}

// HasExtension requires the document path to have ext.
func HasExtension(ext string) validation.Validator[specification.Document] {
	return validation.Check(func(d specification.Document) bool {
		return strings.EqualFold(strings.TrimPrefix(path.Ext(d.Path), "."), ext)
	}, func(d specification.Document) string {
		return fmt.Sprintf("Path %s does not have extension %s", d.Path, ext)
	})
}

func (r *SpecificationRules) parsed() validation.Validator[specification.Document] {
	source := r.SourceValid()
	return func(c *validation.Context, d specification.Document) {
		switch {
		case d.Err != nil:
			c.Raise(fmt.Sprintf("Failed to load configuration %s", d.Path), d.Err)
		case d.Source != nil:
			source(c, d.Source)
		}
	}
}

// SourceValid validates a decoded source: its documentation, its topic
// names and the schemas its topics refer to.
func (r *SpecificationRules) SourceValid() validation.Validator[*specification.Source] {
	return func(c *validation.Context, s *specification.Source) {
		validateDocumentation(s.Doc, func(text string) {
			c.Raise(sourceMessage(s, text), nil)
		})
		for _, t := range s.Data {
			for _, name := range t.TopicNames() {
				if !TopicNamePattern.MatchString(name) {
					c.Raise(sourceMessage(s, fmt.Sprintf("Topic name %q must be snake_case with"+
						" alphanumeric and dash characters only.", name)), nil)
				}
			}
			if r.schemas == nil {
				continue
			}
			topic := t.Topic
			if topic == "" {
				topic = t.TopicBase
			}
			if _, ok := r.schemas.Get(t.KeySchema); !ok {
				c.Raise(MissingSchemaMessage("Key", t.KeySchema, topic), nil)
			}
			if t.ValueSchema == "" {
				c.Raise(sourceMessage(s, fmt.Sprintf("Topic %s does not define a value_schema.", topic)), nil)
			} else if _, ok := r.schemas.Get(t.ValueSchema); !ok {
				c.Raise(MissingSchemaMessage("Value", t.ValueSchema, topic), nil)
			}
		}
	}
}

// MissingSchemaMessage reports a schema reference that does not resolve.
func MissingSchemaMessage(kind, schemaName, topic string) string {
	return fmt.Sprintf("%s schema %s for topic %s not found.", kind, schemaName, topic)
}

func sourceMessage(s *specification.Source, text string) string {
	where := s.Path
	if where == "" {
		where = "configuration"
	}
	return fmt.Sprintf("Source %s at %s is invalid. %s", s.Name, where, text)
}
