// Package rules contains the validators that enforce the catalogue
// conventions on schemas, fields, file locations and specifications.
package rules

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/RADAR-base/RADAR-Schemas/core/validation"
	"github.com/RADAR-base/RADAR-Schemas/domain/schema"
)

// Naming conventions.
var (
	NamespacePattern  = regexp.MustCompile(`^[a-z]+(\.[a-z]+)*$`)
	RecordNamePattern = regexp.MustCompile(`^([A-Z]([a-z]*[0-9]*))+[A-Z]?$`)
	EnumSymbolPattern = regexp.MustCompile(`^[A-Z][A-Z0-9_]*$`)
	FieldNamePattern  = regexp.MustCompile(`^[a-z][a-z0-9]*([a-z0-9][A-Z][a-z0-9]+)?([A-Z][a-z0-9]+)*[A-Z]?$`)
	TopicNamePattern  = regexp.MustCompile(`^[A-Za-z][a-z0-9-]*(_[A-Za-z0-9-]+)*$`)
)

const (
	docMissing = `Property "doc" is missing. Documentation is mandatory for all fields.` +
		` The documentation should report what is being measured, how, and what units or ranges` +
		` are applicable. Abbreviations and acronyms in the documentation should be written out.` +
		` The sentence must end with a period '.'. Please add "doc" property.`
	docNoPeriod = "Documentation is not terminated with a period. The documentation should" +
		" report what is being measured, how, and what units or ranges are applicable." +
		" Abbreviations and acronyms in the documentation should be written out. Please end" +
		" the sentence with a period '.'."
	docNoCapital = "Documentation does not start with a capital letter. The documentation" +
		" should report what is being measured, how, and what units or ranges are applicable." +
		" Abbreviations and acronyms in the documentation should be written out. Please end" +
		" the sentence with a period '.'."
)

// validateDocumentation raises through raise for every documentation
// problem of doc. A missing doc is reported alone.
func validateDocumentation(doc string, raise func(text string)) {
	if doc == "" {
		raise(docMissing)
		return
	}
	if !strings.HasSuffix(doc, ".") {
		raise(docNoPeriod)
	}
	if first, _ := utf8.DecodeRuneInString(doc); !unicode.IsUpper(first) {
		raise(docNoCapital)
	}
}

func schemaMessage(t schema.Named, text string) string {
	return fmt.Sprintf("Schema %s is invalid. %s", t.TypeName(), text)
}

func fieldMessage(f SchemaField, text string) string {
	return fmt.Sprintf("Field %s in schema %s is invalid. %s", f.Field.Name, f.Schema.FullName, text)
}

func metadataMessage(m schema.Metadata, text string) string {
	return fmt.Sprintf("Schema %s at %s is invalid. %s", m.FullName, m.Path, text)
}

// schemaCheck raises text about the schema when test fails.
func schemaCheck(test func(schema.Named) bool, text string) validation.Validator[schema.Named] {
	return validation.Check(test, func(t schema.Named) string { return schemaMessage(t, text) })
}

func docOf(t schema.Named) string {
	switch v := t.(type) {
	case *schema.Record:
		return v.Doc
	case *schema.Enum:
		return v.Doc
	}
	return ""
}
