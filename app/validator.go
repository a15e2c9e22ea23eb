package app

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/RADAR-base/RADAR-Schemas/core/catalogue"
	"github.com/RADAR-base/RADAR-Schemas/core/loader"
	"github.com/RADAR-base/RADAR-Schemas/core/rules"
	"github.com/RADAR-base/RADAR-Schemas/core/validation"
	"github.com/RADAR-base/RADAR-Schemas/domain/schema"
	"github.com/RADAR-base/RADAR-Schemas/domain/specification"
	"github.com/RADAR-base/RADAR-Schemas/ports"
)

// Commands reported to the recorder.
const (
	CommandValidate      = "validate"
	CommandSpecification = "specification"
	CommandSources       = "sources"
)

// SchemaValidator validates a resolved catalogue. Every call starts a new
// validation run with fresh rule state.
type SchemaValidator struct {
	store      *schema.Store
	unresolved []schema.Unresolved
	matcher    rules.Matcher
	scopes     map[schema.Scope]bool // nil selects every scope
	recorder   ports.Recorder
	logger     zerolog.Logger
}

// NewSchemaValidator creates a validator of a resolution result. Schema
// rules apply to the paths selected by matcher, or to all paths if it is
// nil.
func NewSchemaValidator(store *schema.Store, unresolved []schema.Unresolved, matcher rules.Matcher, recorder ports.Recorder, logger zerolog.Logger) *SchemaValidator {
	return &SchemaValidator{
		store:      store,
		unresolved: unresolved,
		matcher:    matcher,
		recorder:   recorder,
		logger:     logger,
	}
}

// Restrict returns a validator that only validates the schemas and
// unresolved files of the given scopes. References to other scopes still
// resolve.
func (v *SchemaValidator) Restrict(scopes ...schema.Scope) *SchemaValidator {
	restricted := *v
	if len(scopes) == 0 {
		restricted.scopes = nil
		return &restricted
	}
	restricted.scopes = make(map[schema.Scope]bool, len(scopes))
	for _, scope := range scopes {
		restricted.scopes[scope] = true
	}
	return &restricted
}

func (v *SchemaValidator) selected(scope schema.Scope) bool {
	return v.scopes == nil || v.scopes[scope]
}

// Validated returns the sorted full names of the schemas that schema rules
// apply to.
func (v *SchemaValidator) Validated() []string {
	var names []string
	for name, m := range v.store.Known() {
		if v.selected(m.Scope) && (v.matcher == nil || v.matcher.Matches(m.Path)) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

func (v *SchemaValidator) metadataRules() *rules.MetadataRules {
	return rules.NewMetadataRules(rules.NewSchemaRules(), v.matcher, loader.SchemaDir)
}

// ValidateAll validates every resolved schema, duplicates included, and
// reports every unresolved file. With scopeSpecific, records get the rules
// of their scope.
func (v *SchemaValidator) ValidateAll(ctx context.Context, scopeSpecific bool) ([]validation.Diagnostic, error) {
	metadata := v.metadataRules().ForScope(scopeSpecific)
	var all []schema.Metadata
	for _, m := range v.store.All() {
		if v.selected(m.Scope) {
			all = append(all, m)
		}
	}
	var unresolved []schema.Unresolved
	for _, u := range v.unresolved {
		if v.selected(u.Scope) {
			unresolved = append(unresolved, u)
		}
	}

	run := func(c *validation.Context, _ struct{}) {
		validation.ValidateAll(c, parsingFailed(), unresolved)
		validation.ValidateAll(c, metadata, all)
	}
	return v.run(ctx, CommandValidate, run, len(all)+len(unresolved))
}

// ValidateAgainstSpecification validates the key and value schemas of the
// catalogue topics with scope-specific rules. Topic schemas that are not
// resolved are reported. An empty scope selects every topic.
func (v *SchemaValidator) ValidateAgainstSpecification(ctx context.Context, cat *catalogue.Catalogue, scope schema.Scope) ([]validation.Diagnostic, error) {
	topics := cat.Topics()
	if scope != "" {
		topics = cat.Scoped(scope)
	}

	var missing []string
	seen := make(map[string]bool)
	var schemas []schema.Metadata
	use := func(kind, name, topic string) {
		m, ok := v.store.Get(name)
		if !ok {
			missing = append(missing, rules.MissingSchemaMessage(kind, name, topic))
			return
		}
		if !seen[name] {
			seen[name] = true
			schemas = append(schemas, m)
		}
	}
	for _, t := range topics {
		use("Key", t.KeySchema, t.Name)
		use("Value", t.ValueSchema, t.Name)
	}

	metadata := v.metadataRules().ForScope(true)
	run := func(c *validation.Context, _ struct{}) {
		for _, msg := range missing {
			c.Raise(msg, nil)
		}
		validation.ValidateAll(c, metadata, schemas)
	}
	return v.run(ctx, CommandSources, run, len(schemas))
}

// ValidateSpecifications validates the specification documents and the
// inline sources of the catalogue.
func (v *SchemaValidator) ValidateSpecifications(ctx context.Context, cat *catalogue.Catalogue) ([]validation.Diagnostic, error) {
	specs := rules.NewSpecificationRules(v.store)
	var inline []*specification.Source
	for _, s := range cat.Sources {
		if s.Path == "" {
			inline = append(inline, s)
		}
	}

	run := func(c *validation.Context, _ struct{}) {
		validation.ValidateAll(c, specs.DocumentValid(), cat.Documents)
		validation.ValidateAll(c, specs.SourceValid(), inline)
	}
	return v.run(ctx, CommandSpecification, run, len(cat.Documents)+len(inline))
}

func (v *SchemaValidator) run(ctx context.Context, command string, validator validation.Validator[struct{}], size int) ([]validation.Diagnostic, error) {
	start := time.Now()
	diags, err := validation.Run(ctx, validator, struct{}{})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", command, err)
	}
	elapsed := time.Since(start)

	v.recorder.ObserveValidation(command, elapsed)
	v.recorder.RecordDiagnostics(command, len(diags))
	v.logger.Debug().
		Str("command", command).
		Int("inputs", size).
		Int("diagnostics", len(diags)).
		Dur("elapsed", elapsed).
		Msg("validation finished")
	return diags, nil
}

// parsingFailed reports a file that did not resolve with its last parse
// error.
func parsingFailed() validation.Validator[schema.Unresolved] {
	return func(c *validation.Context, u schema.Unresolved) {
		c.Raise("Cannot parse schema", fmt.Errorf("%s: %w", u.Path, u.Err))
	}
}
