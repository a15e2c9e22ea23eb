// Package app contains the services behind the command line: resolving the
// schema catalogue, validating it and keeping snapshots of it.
package app

import (
	"context"
	"fmt"

	"github.com/go-git/go-billy/v5"
	"github.com/rs/zerolog"

	"github.com/RADAR-base/RADAR-Schemas/config"
	"github.com/RADAR-base/RADAR-Schemas/core/catalogue"
	"github.com/RADAR-base/RADAR-Schemas/core/loader"
	"github.com/RADAR-base/RADAR-Schemas/core/resolver"
	"github.com/RADAR-base/RADAR-Schemas/domain/schema"
	"github.com/RADAR-base/RADAR-Schemas/ports"
)

// CatalogueService reads a catalogue root: the schemas below commons/ and
// the source specifications below specifications/.
type CatalogueService struct {
	root     billy.Filesystem
	rootPath string
	config   *config.Config
	parser   ports.SchemaParser
	recorder ports.Recorder
	logger   zerolog.Logger
}

// NewCatalogueService opens the catalogue at rootPath. A missing root is
// reported with loader.ErrRootNotFound.
func NewCatalogueService(rootPath string, cfg *config.Config, parser ports.SchemaParser, recorder ports.Recorder, logger zerolog.Logger) (*CatalogueService, error) {
	root, err := loader.OpenRoot(rootPath)
	if err != nil {
		return nil, err
	}
	return NewCatalogueServiceFS(root, cfg, parser, recorder, logger), nil
}

// NewCatalogueServiceFS creates a service over an already opened root.
func NewCatalogueServiceFS(root billy.Filesystem, cfg *config.Config, parser ports.SchemaParser, recorder ports.Recorder, logger zerolog.Logger) *CatalogueService {
	if cfg == nil {
		cfg = config.Default()
	}
	return &CatalogueService{
		root:     root,
		rootPath: root.Root(),
		config:   cfg,
		parser:   parser,
		recorder: recorder,
		logger:   logger,
	}
}

// Config returns the configuration the service was created with.
func (s *CatalogueService) Config() *config.Config {
	return s.config
}

// Resolve loads and resolves the schemas of the given scopes, or of every
// scope if none are given. Every file ends up either in the returned store
// or in the unresolved list.
func (s *CatalogueService) Resolve(ctx context.Context, scopes ...schema.Scope) (*schema.Store, []schema.Unresolved, error) {
	if len(scopes) == 0 {
		scopes = schema.Scopes
	}
	commons, err := s.root.Chroot(loader.SchemaDir)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", loader.SchemaDir, err)
	}

	files, err := loader.New(commons, s.config.Schemas, s.logger).Load(ctx, scopes...)
	if err != nil {
		return nil, nil, err
	}

	result, err := resolver.New(s.parser, s.logger).Resolve(ctx, files)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve schemas: %w", err)
	}

	for _, scope := range scopes {
		unresolved := 0
		for _, u := range result.Unresolved {
			if u.Scope == scope {
				unresolved++
			}
		}
		s.recorder.RecordResolution(scope, len(result.Store.Scoped(scope)), unresolved)
	}
	s.logger.Info().
		Str("root", s.rootPath).
		Int("files", len(files)).
		Int("resolved", result.Store.Len()).
		Int("unresolved", len(result.Unresolved)).
		Int("iterations", result.Iterations).
		Msg("schemas resolved")

	return result.Store, result.Unresolved, nil
}

// Catalogue builds the source catalogue of the given specification scopes,
// or of every specification scope if none are given.
func (s *CatalogueService) Catalogue(ctx context.Context, scopes ...schema.Scope) (*catalogue.Catalogue, error) {
	return catalogue.NewBuilder(s.root, s.config.Sources, s.config.Topics, s.logger).Build(ctx, scopes...)
}
