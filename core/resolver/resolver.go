// Package resolver links an unordered set of schema files into a closed
// universe of named types by parsing until no further progress is made.
package resolver

import (
	"context"
	"fmt"
	"runtime"
	"sort"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/RADAR-base/RADAR-Schemas/domain/schema"
	"github.com/RADAR-base/RADAR-Schemas/ports"
)

// Result is the outcome of a resolution. Every input file is either in the
// store (possibly as a duplicate) or in Unresolved.
type Result struct {
	Store      *schema.Store
	Unresolved []schema.Unresolved
	Iterations int
}

// Resolver runs the fixed-point resolution.
type Resolver struct {
	parser      ports.SchemaParser
	logger      zerolog.Logger
	concurrency int
}

// New creates a resolver.
func New(parser ports.SchemaParser, logger zerolog.Logger) *Resolver {
	return &Resolver{
		parser:      parser,
		logger:      logger,
		concurrency: runtime.GOMAXPROCS(0),
	}
}

type attempt struct {
	file   schema.RawFile
	parsed schema.Named
	native any
	err    error
}

// Resolve parses files until an iteration adds no schema. Each iteration
// parses every pending file concurrently, with the schemas resolved so far
// as known types. The returned store is frozen.
func (r *Resolver) Resolve(ctx context.Context, files []schema.RawFile) (*Result, error) {
	store := schema.NewStore()
	pending := append([]schema.RawFile(nil), files...)
	sort.Slice(pending, func(i, j int) bool { return pending[i].Path < pending[j].Path })

	var last []attempt
	iterations := 0
	for len(pending) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		iterations++

		attempts, err := r.parseAll(ctx, pending, store.Known())
		if err != nil {
			return nil, err
		}

		var next []schema.RawFile
		added := 0
		for _, a := range attempts {
			if a.err != nil {
				next = append(next, a.file)
				continue
			}
			err := store.Add(schema.Metadata{
				FullName: a.parsed.TypeName(),
				Scope:    a.file.Scope,
				Path:     a.file.Path,
				Type:     a.parsed,
				Native:   a.native,
			})
			if err != nil {
				return nil, fmt.Errorf("add %s: %w", a.file.Path, err)
			}
			added++
		}

		r.logger.Debug().
			Int("iteration", iterations).
			Int("resolved", added).
			Int("pending", len(next)).
			Msg("resolution iteration")

		last = attempts
		pending = next
		if added == 0 {
			break
		}
	}

	var unresolved []schema.Unresolved
	for _, a := range last {
		if a.err != nil {
			unresolved = append(unresolved, schema.Unresolved{
				Scope: a.file.Scope,
				Path:  a.file.Path,
				Text:  a.file.Text,
				Err:   a.err,
			})
		}
	}
	store.Freeze()

	return &Result{Store: store, Unresolved: unresolved, Iterations: iterations}, nil
}

// parseAll parses files in parallel. The result is in the order of files.
func (r *Resolver) parseAll(ctx context.Context, files []schema.RawFile, known map[string]schema.Metadata) ([]attempt, error) {
	attempts := make([]attempt, len(files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for i, f := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			parsed, native, err := r.parse(f.Text, known)
			attempts[i] = attempt{file: f, parsed: parsed, native: native, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return attempts, nil
}

// parse never panics; a parser panic is a parse failure of that file.
func (r *Resolver) parse(text string, known map[string]schema.Metadata) (parsed schema.Named, native any, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			parsed, native, err = nil, nil, fmt.Errorf("parser panic: %v", rec)
		}
	}()
	return r.parser.Parse(text, known)
}
