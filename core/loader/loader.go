// Package loader reads raw schema files from a catalogue tree, one
// subdirectory per scope, and merges inline schemas from configuration.
package loader

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/RADAR-base/RADAR-Schemas/domain/schema"
)

// SchemaExtension is the extension of schema files.
const SchemaExtension = ".avsc"

// Directories below the catalogue root.
const (
	SchemaDir        = "commons"
	SpecificationDir = "specifications"
)

// ErrRootNotFound is returned when the catalogue root does not exist.
var ErrRootNotFound = errors.New("catalogue root not found")

// readConcurrency bounds the number of files read at the same time.
const readConcurrency = 16

// Selection decides which files are loaded and supplies inline schemas.
// Paths are slash separated and relative to the schema root.
type Selection interface {
	Matches(relPath string) bool
	Inline(scope schema.Scope) map[string]string
}

// Loader reads schema files from a filesystem rooted at the schema root.
type Loader struct {
	fs        billy.Filesystem
	selection Selection
	logger    zerolog.Logger
}

// New creates a loader. A nil selection loads every schema file.
func New(fs billy.Filesystem, selection Selection, logger zerolog.Logger) *Loader {
	if selection == nil {
		selection = everything{}
	}
	return &Loader{fs: fs, selection: selection, logger: logger}
}

// Load returns the raw files of the given scopes, sorted by path. A scope
// without a directory contributes only its inline schemas. Inline schemas
// replace files at the same path.
func (l *Loader) Load(ctx context.Context, scopes ...schema.Scope) ([]schema.RawFile, error) {
	var files []schema.RawFile
	for _, scope := range scopes {
		scoped, err := l.loadScope(ctx, scope)
		if err != nil {
			return nil, fmt.Errorf("load %s schemas: %w", scope.Lower(), err)
		}
		files = append(files, scoped...)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

func (l *Loader) loadScope(ctx context.Context, scope schema.Scope) ([]schema.RawFile, error) {
	paths, err := List(l.fs, scope.Dir(), SchemaExtension, l.selection.Matches)
	if err != nil {
		return nil, err
	}
	if paths == nil {
		l.logger.Debug().Str("scope", string(scope)).Msg("schema directory not present")
	}

	texts := make([]string, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(readConcurrency)
	for i, p := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := util.ReadFile(l.fs, p)
			if err != nil {
				return fmt.Errorf("read %s: %w", p, err)
			}
			texts[i] = string(data)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	byPath := make(map[string]string, len(paths))
	for i, p := range paths {
		byPath[p] = texts[i]
	}
	for rel, text := range l.selection.Inline(scope) {
		p := path.Join(scope.Dir(), filepath.ToSlash(rel))
		if _, ok := byPath[p]; ok {
			l.logger.Debug().Str("path", p).Msg("inline schema overrides file")
		}
		byPath[p] = text
	}

	files := make([]schema.RawFile, 0, len(byPath))
	for p, text := range byPath {
		files = append(files, schema.RawFile{Path: p, Scope: scope, Text: text})
	}
	return files, nil
}

// OpenRoot opens the catalogue root directory on the local filesystem.
func OpenRoot(root string) (billy.Filesystem, error) {
	info, err := os.Stat(root)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrRootNotFound, root)
		}
		return nil, fmt.Errorf("stat root %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrRootNotFound, root)
	}
	return osfs.New(root), nil
}

// List walks dir and returns the slash-separated paths of regular files with
// the given extension (case-insensitive) that match. A missing dir yields a
// nil slice. An empty extension selects every file.
func List(fs billy.Filesystem, dir, ext string, match func(string) bool) ([]string, error) {
	if _, err := fs.Stat(dir); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("stat %s: %w", dir, err)
	}

	paths := []string{}
	err := util.Walk(fs, dir, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		p = filepath.ToSlash(p)
		if ext != "" && !strings.EqualFold(path.Ext(p), ext) {
			return nil
		}
		if match != nil && !match(p) {
			return nil
		}
		paths = append(paths, p)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", dir, err)
	}
	sort.Strings(paths)
	return paths, nil
}

type everything struct{}

func (everything) Matches(string) bool                     { return true }
func (everything) Inline(schema.Scope) map[string]string { return nil }
