package rules

import (
	"fmt"
	"path"
	"strings"

	"github.com/RADAR-base/RADAR-Schemas/core/validation"
	"github.com/RADAR-base/RADAR-Schemas/domain/schema"
)

// Matcher selects the schema paths that get schema rules.
type Matcher interface {
	Matches(relPath string) bool
}

// MetadataRules validates a resolved schema together with its location in
// the catalogue tree.
type MetadataRules struct {
	Schemas *SchemaRules
	matcher Matcher
	root    string
}

// NewMetadataRules creates metadata rules. Paths are relative to root,
// which is only used in messages. A nil matcher applies schema rules to
// every path.
func NewMetadataRules(schemas *SchemaRules, matcher Matcher, root string) *MetadataRules {
	return &MetadataRules{Schemas: schemas, matcher: matcher, root: root}
}

// Location checks that the namespace and name follow from the file path.
func (r *MetadataRules) Location() validation.Validator[schema.Metadata] {
	return validation.All(r.namespaceLocation(), r.nameLocation())
}

func (r *MetadataRules) namespaceLocation() validation.Validator[schema.Metadata] {
	return func(c *validation.Context, m schema.Metadata) {
		expected, err := ExpectedNamespace(m.Path, m.Scope)
		if err != nil {
			c.Raise(fmt.Sprintf("Path %s is not part of root %s", m.Path, path.Join(r.root, m.Scope.Dir())), err)
			return
		}
		ns, _ := schema.SplitName(m.FullName)
		if !strings.EqualFold(expected, ns) {
			c.Raise(metadataMessage(m, fmt.Sprintf("Namespace cannot be null and must fully lowercase dot"+
				" separated without numeric. In this case the expected value is %q.", expected)), nil)
		}
	}
}

func (r *MetadataRules) nameLocation() validation.Validator[schema.Metadata] {
	return func(c *validation.Context, m schema.Metadata) {
		expected := ExpectedRecordName(m.Path)
		_, name := schema.SplitName(m.FullName)
		if !strings.EqualFold(expected, name) {
			c.Raise(metadataMessage(m, fmt.Sprintf("Record name should match file name."+
				" Expected record name is %q.", expected)), nil)
		}
	}
}

// ForScope returns the complete validator of a resolved schema: its
// location, and the schema rules selected by type and scope if the path is
// matched.
func (r *MetadataRules) ForScope(scopeSpecific bool) validation.Validator[schema.Metadata] {
	location := r.Location()
	return func(c *validation.Context, m schema.Metadata) {
		if m.Type == nil {
			c.Raise(fmt.Sprintf("Missing schema at %s", m.Path), nil)
			return
		}
		validation.Launch(c, location, m)
		if r.matcher != nil && !r.matcher.Matches(m.Path) {
			return
		}
		validation.Launch(c, r.Schemas.ForScope(m.Scope, scopeSpecific), m.Type)
	}
}

// ExpectedNamespace derives the namespace of a schema from its path
// relative to the schema root: the scope namespace followed by the
// directories below the scope directory.
func ExpectedNamespace(relPath string, scope schema.Scope) (string, error) {
	prefix := scope.Dir() + "/"
	if !strings.HasPrefix(relPath, prefix) {
		return "", fmt.Errorf("%s is not inside scope directory %s", relPath, scope.Dir())
	}
	var b strings.Builder
	b.WriteString(scope.Namespace())
	dir := path.Dir(strings.TrimPrefix(relPath, prefix))
	if dir != "." {
		for _, part := range strings.Split(dir, "/") {
			b.WriteByte('.')
			b.WriteString(part)
		}
	}
	return b.String(), nil
}

// ExpectedRecordName derives the record name from a file name,
// e.g. empatica_e4_acceleration.avsc gives EmpaticaE4Acceleration.
func ExpectedRecordName(relPath string) string {
	return schema.SnakeToCamel(schema.BaseName(relPath))
}
