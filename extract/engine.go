// Package extract walks a loaded ontology graph and produces the three
// learning datasets: term typings, type taxonomies and non-taxonomic
// relations.
package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sciknoworg/OntoLearner-sub000/graph"
	"github.com/sciknoworg/OntoLearner-sub000/label"
	"github.com/sciknoworg/OntoLearner-sub000/ontology"
	"github.com/sciknoworg/OntoLearner-sub000/storage"
)

// Extractor names, used in errors, logs and metric labels.
const (
	TermTypingsExtractor           = "term_typings"
	TypeTaxonomiesExtractor        = "type_taxonomies"
	NonTaxonomicRelationsExtractor = "type_non_taxonomic_relations"
)

// Engine runs the extractors over one frozen graph. It never mutates the
// store, so one Engine may serve concurrent Extract calls.
type Engine struct {
	graph      *graph.LoadedGraph
	store      *storage.Store
	normalizer *label.Normalizer
	hooks      ontology.Hooks
	language   string
	metrics    *Metrics
	logger     *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithHooks installs per-ontology overrides.
func WithHooks(h ontology.Hooks) Option {
	return func(e *Engine) {
		e.hooks = h
	}
}

// WithLanguage sets the preferred label language of the default
// normalizer.
func WithLanguage(lang string) Option {
	return func(e *Engine) {
		e.language = lang
	}
}

// WithNormalizer replaces the default label normalizer.
func WithNormalizer(n *label.Normalizer) Option {
	return func(e *Engine) {
		if n != nil {
			e.normalizer = n
		}
	}
}

// WithMetrics records extractor timings and row counts.
func WithMetrics(m *Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine creates an engine over g. Unless WithNormalizer is given, labels
// are resolved with the configured language and the hooks' label settings.
func NewEngine(g *graph.LoadedGraph, opts ...Option) *Engine {
	e := &Engine{
		graph:  g,
		store:  g.Store,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.normalizer == nil {
		e.normalizer = label.NewNormalizer(e.store,
			label.WithLanguage(e.language),
			label.WithReservedAllowed(e.hooks.AllowReserved),
			label.WithValidator(e.hooks.ValidLabel),
			label.WithLogger(e.logger))
	}
	return e
}

// Normalizer returns the label normalizer in use.
func (e *Engine) Normalizer() *label.Normalizer {
	return e.normalizer
}

// Extract runs the three extractors in parallel and joins their results in
// fixed field order. The first failure cancels the others and is returned
// as an ExtractionError; no partial data is returned.
func (e *Engine) Extract(ctx context.Context) (*ontology.Data, error) {
	start := time.Now()

	var (
		typings []ontology.TermTyping
		tax     ontology.TypeTaxonomies
		nonTax  ontology.NonTaxonomicRelations
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return e.run(gctx, TermTypingsExtractor, func(ctx context.Context) (int, error) {
			var err error
			typings, err = e.TermTypings(ctx)
			return len(typings), err
		})
	})
	g.Go(func() error {
		return e.run(gctx, TypeTaxonomiesExtractor, func(ctx context.Context) (int, error) {
			var err error
			tax, err = e.TypeTaxonomies(ctx)
			return len(tax.Taxonomies), err
		})
	})
	g.Go(func() error {
		return e.run(gctx, NonTaxonomicRelationsExtractor, func(ctx context.Context) (int, error) {
			var err error
			nonTax, err = e.NonTaxonomicRelations(ctx)
			return len(nonTax.NonTaxonomies), err
		})
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if typings == nil {
		typings = []ontology.TermTyping{}
	}
	data := &ontology.Data{
		TermTypings:               typings,
		TypeTaxonomies:            tax,
		TypeNonTaxonomicRelations: nonTax,
	}

	e.logger.Info("Extraction complete",
		"path", e.graph.Path,
		"term_typings", len(data.TermTypings),
		"taxonomies", len(data.TypeTaxonomies.Taxonomies),
		"non_taxonomies", len(data.TypeNonTaxonomicRelations.NonTaxonomies),
		"duration", time.Since(start))

	return data, nil
}

// run executes one extractor, converting panics and plain errors into an
// ExtractionError and recording metrics.
func (e *Engine) run(ctx context.Context, name string, fn func(context.Context) (int, error)) (err error) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("Extractor panicked", "extractor", name, "panic", r)
			err = &ontology.ExtractionError{Extractor: name, Err: fmt.Errorf("panic: %v", r)}
		}
		e.metrics.observe(name, time.Since(start), err)
	}()

	rows, err := fn(ctx)
	if err != nil {
		var xerr *ontology.ExtractionError
		if !errors.As(err, &xerr) {
			err = &ontology.ExtractionError{Extractor: name, Err: err}
		}
		return err
	}
	e.metrics.rows(name, rows)
	e.logger.Debug("Extractor finished", "extractor", name, "rows", rows, "duration", time.Since(start))
	return nil
}
