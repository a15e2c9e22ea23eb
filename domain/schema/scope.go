// Package schema provides the value types of the schema catalogue: scopes,
// parsed Avro types, resolved metadata and the append-only store.
// This package has NO dependencies on I/O or external packages.
package schema

import (
	"fmt"
	"strings"
)

// Scope is the category of a schema or specification. It selects the
// directory convention and the rule subset that applies.
type Scope string

const (
	ScopeActive    Scope = "ACTIVE"    // questionnaires and app assessments
	ScopeMonitor   Scope = "MONITOR"   // app and device monitoring
	ScopePassive   Scope = "PASSIVE"   // passive wearable and phone sensors
	ScopeStream    Scope = "STREAM"    // kafka streams output
	ScopeConnector Scope = "CONNECTOR" // kafka connect sources
	ScopePush      Scope = "PUSH"      // vendor push integrations
	ScopeKafka     Scope = "KAFKA"     // shared key schemas
	ScopeCatalogue Scope = "CATALOGUE" // shared catalogue types
)

// ProjectGroup is the namespace prefix of every platform schema.
const ProjectGroup = "org.radarcns"

// Scopes lists every scope in declaration order.
var Scopes = []Scope{
	ScopeActive,
	ScopeMonitor,
	ScopePassive,
	ScopeStream,
	ScopeConnector,
	ScopePush,
	ScopeKafka,
	ScopeCatalogue,
}

// Lower returns the scope as used in directory and namespace names.
func (s Scope) Lower() string {
	return strings.ToLower(string(s))
}

// Dir returns the conventional subdirectory of the scope.
func (s Scope) Dir() string {
	return s.Lower()
}

// Namespace returns the base namespace of schemas in this scope.
func (s Scope) Namespace() string {
	return ProjectGroup + "." + s.Lower()
}

// Valid reports whether s is one of the known scopes.
func (s Scope) Valid() bool {
	for _, scope := range Scopes {
		if s == scope {
			return true
		}
	}
	return false
}

// ParseScope parses a scope name case-insensitively.
func ParseScope(name string) (Scope, error) {
	s := Scope(strings.ToUpper(strings.TrimSpace(name)))
	if !s.Valid() {
		return "", fmt.Errorf("unknown scope %q", name)
	}
	return s, nil
}
