// Package catalogue builds the source catalogue from the specification
// tree and derives the topic list from it.
package catalogue

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/RADAR-base/RADAR-Schemas/config"
	"github.com/RADAR-base/RADAR-Schemas/core/loader"
	"github.com/RADAR-base/RADAR-Schemas/domain/schema"
	"github.com/RADAR-base/RADAR-Schemas/domain/specification"
)

// ConfigSource names topics that only exist in the configuration.
const ConfigSource = "configuration"

const readConcurrency = 16

// Topic is a data topic with the schemas of its keys and values.
type Topic struct {
	Name              string       `yaml:"name"`
	KeySchema         string       `yaml:"key_schema"`
	ValueSchema       string       `yaml:"value_schema"`
	Partitions        *int         `yaml:"partitions,omitempty"`
	ReplicationFactor *int16       `yaml:"replication_factor,omitempty"`
	AutoRegister      bool         `yaml:"register_schema"`
	Scope             schema.Scope `yaml:"scope,omitempty"`
	Source            string       `yaml:"source"`
}

// SourceSelection decides which specification files are read and supplies
// inline sources. Paths are relative to the specification directory.
type SourceSelection interface {
	Matches(relPath string) bool
	Inline(scope schema.Scope) []specification.Source
}

// Catalogue holds the specification documents, the sources decoded from
// them and the topics they produce.
type Catalogue struct {
	Documents []specification.Document
	Sources   []*specification.Source
	topics    []Topic
}

// Topics returns every enabled topic, sorted by name.
func (c *Catalogue) Topics() []Topic {
	return append([]Topic(nil), c.topics...)
}

// Scoped returns the topics of sources of one scope.
func (c *Catalogue) Scoped(scope schema.Scope) []Topic {
	var result []Topic
	for _, t := range c.topics {
		if t.Scope == scope {
			result = append(result, t)
		}
	}
	return result
}

// Topic looks up a topic by name.
func (c *Catalogue) Topic(name string) (Topic, bool) {
	i := sort.Search(len(c.topics), func(i int) bool { return c.topics[i].Name >= name })
	if i < len(c.topics) && c.topics[i].Name == name {
		return c.topics[i], true
	}
	return Topic{}, false
}

// Builder reads the specification tree of a catalogue root.
type Builder struct {
	fs        billy.Filesystem
	selection SourceSelection
	overrides map[string]config.TopicConfig
	logger    zerolog.Logger
}

// NewBuilder creates a builder over the catalogue root fs. Topic overrides
// are applied after the topics are derived from the sources.
func NewBuilder(fs billy.Filesystem, selection SourceSelection, overrides map[string]config.TopicConfig, logger zerolog.Logger) *Builder {
	return &Builder{fs: fs, selection: selection, overrides: overrides, logger: logger}
}

// Build reads the specifications of the given scopes, or of every
// specification scope if none are given. Files that cannot be decoded are
// kept as documents with an error and contribute no source.
func (b *Builder) Build(ctx context.Context, scopes ...schema.Scope) (*Catalogue, error) {
	if len(scopes) == 0 {
		scopes = specification.SpecificationScopes
	}
	cat := &Catalogue{}
	for _, scope := range scopes {
		docs, err := b.readScope(ctx, scope)
		if err != nil {
			return nil, fmt.Errorf("read %s specifications: %w", scope.Lower(), err)
		}
		cat.Documents = append(cat.Documents, docs...)
		for _, d := range docs {
			if d.Source != nil {
				cat.Sources = append(cat.Sources, d.Source)
			}
		}
		if b.selection == nil {
			continue
		}
		for i, inline := range b.selection.Inline(scope) {
			s := inline
			s.Data = append([]specification.DataTopic(nil), inline.Data...)
			if err := s.Normalize(scope); err != nil {
				return nil, fmt.Errorf("inline %s source %d: %w", scope.Lower(), i, err)
			}
			cat.Sources = append(cat.Sources, &s)
		}
	}
	cat.topics = b.join(cat.Sources)
	b.logger.Debug().
		Int("documents", len(cat.Documents)).
		Int("sources", len(cat.Sources)).
		Int("topics", len(cat.topics)).
		Msg("source catalogue built")
	return cat, nil
}

func (b *Builder) readScope(ctx context.Context, scope schema.Scope) ([]specification.Document, error) {
	dir := path.Join(loader.SpecificationDir, scope.Dir())
	paths, err := loader.List(b.fs, dir, "", func(p string) bool {
		return b.selection == nil || b.selection.Matches(strings.TrimPrefix(p, loader.SpecificationDir+"/"))
	})
	if err != nil {
		return nil, err
	}
	if paths == nil {
		b.logger.Debug().Str("scope", string(scope)).Str("dir", dir).Msg("sources folder not present")
	}

	docs := make([]specification.Document, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(readConcurrency)
	for i, p := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			docs[i] = b.decode(p, scope)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return docs, nil
}

func (b *Builder) decode(p string, scope schema.Scope) specification.Document {
	doc := specification.Document{Path: p, Scope: scope}
	if !strings.EqualFold(path.Ext(p), ".yml") {
		return doc
	}
	data, err := util.ReadFile(b.fs, p)
	if err != nil {
		doc.Err = err
		return doc
	}
	var source specification.Source
	if err := yaml.Unmarshal(data, &source); err != nil {
		doc.Err = err
		return doc
	}
	if err := source.Normalize(scope); err != nil {
		doc.Err = err
		return doc
	}
	source.Path = p
	doc.Source = &source
	return doc
}

// join derives the topics of every source and applies the configured
// overrides. The first source that declares a topic name owns it.
func (b *Builder) join(sources []*specification.Source) []Topic {
	byName := make(map[string]Topic)
	for _, s := range sources {
		for _, t := range s.Data {
			for _, name := range t.TopicNames() {
				if previous, ok := byName[name]; ok {
					b.logger.Warn().Str("topic", name).
						Str("source", s.Name).Str("previous", previous.Source).
						Msg("topic declared by more than one source")
					continue
				}
				byName[name] = Topic{
					Name:         name,
					KeySchema:    t.KeySchema,
					ValueSchema:  t.ValueSchema,
					AutoRegister: s.DoRegisterSchema(),
					Scope:        s.Scope,
					Source:       s.Name,
				}
			}
		}
	}

	for name, override := range b.overrides {
		topic, ok := byName[name]
		if !ok {
			if override.KeySchema == "" || override.ValueSchema == "" {
				continue
			}
			topic = Topic{Name: name, AutoRegister: true, Source: ConfigSource}
		}
		if !override.IsEnabled() {
			delete(byName, name)
			continue
		}
		if override.KeySchema != "" {
			topic.KeySchema = specification.ExpandClass(override.KeySchema)
		}
		if override.ValueSchema != "" {
			topic.ValueSchema = specification.ExpandClass(override.ValueSchema)
		}
		if override.Partitions != nil {
			topic.Partitions = override.Partitions
		}
		if override.ReplicationFactor != nil {
			topic.ReplicationFactor = override.ReplicationFactor
		}
		if override.RegisterSchema != nil {
			topic.AutoRegister = *override.RegisterSchema
		}
		byName[name] = topic
	}

	topics := make([]Topic, 0, len(byName))
	for _, t := range byName {
		topics = append(topics, t)
	}
	sort.Slice(topics, func(i, j int) bool { return topics[i].Name < topics[j].Name })
	return topics
}
