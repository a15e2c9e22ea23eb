// Package avro implements the schema parser port with hamba/avro.
package avro

import (
	"fmt"

	"github.com/hamba/avro/v2"

	"github.com/RADAR-base/RADAR-Schemas/domain/schema"
	"github.com/RADAR-base/RADAR-Schemas/ports"
)

// Parser parses Avro schema JSON. It holds no state and is safe for
// concurrent use.
type Parser struct{}

// NewParser creates a parser.
func NewParser() *Parser {
	return &Parser{}
}

var _ ports.SchemaParser = (*Parser)(nil)

// Parse parses text with a fresh schema cache seeded with known. The top
// level type must be named.
func (p *Parser) Parse(text string, known map[string]schema.Metadata) (schema.Named, any, error) {
	cache, err := seed(known)
	if err != nil {
		return nil, nil, err
	}

	parsed, err := avro.ParseWithCache(text, "", cache)
	if err != nil {
		return nil, nil, err
	}

	named, ok := convert(parsed).(schema.Named)
	if !ok {
		return nil, nil, fmt.Errorf("top-level schema must be a record, enum or fixed, got %s", parsed.Type())
	}
	return named, parsed, nil
}

// Format returns the JSON form of a resolved schema.
func (p *Parser) Format(m schema.Metadata) string {
	if native, ok := m.Native.(avro.Schema); ok {
		return native.String()
	}
	return schema.Canonical(m.Type)
}

func seed(known map[string]schema.Metadata) (*avro.SchemaCache, error) {
	cache := &avro.SchemaCache{}
	for name, m := range known {
		if native, ok := m.Native.(avro.Schema); ok {
			cache.Add(name, native)
		}
	}
	// Types that were not produced by this parser are rendered and
	// parsed. Repeat until no progress, like the resolver, since they may
	// refer to each other.
	var pending []schema.Metadata
	for _, m := range known {
		if _, ok := m.Native.(avro.Schema); !ok && m.Type != nil {
			pending = append(pending, m)
		}
	}
	for len(pending) > 0 {
		var next []schema.Metadata
		var lastErr error
		for _, m := range pending {
			if _, err := avro.ParseWithCache(schema.Canonical(m.Type), "", cache); err != nil {
				next = append(next, m)
				lastErr = err
			}
		}
		if len(next) == len(pending) {
			return nil, fmt.Errorf("seed known type %s: %w", next[0].FullName, lastErr)
		}
		pending = next
	}
	return cache, nil
}
