package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/sciknoworg/OntoLearner-sub000/export"
	"github.com/sciknoworg/OntoLearner-sub000/extract"
	"github.com/sciknoworg/OntoLearner-sub000/graph"
	"github.com/sciknoworg/OntoLearner-sub000/hub"
	"github.com/sciknoworg/OntoLearner-sub000/loader"
	"github.com/sciknoworg/OntoLearner-sub000/metrics"
	"github.com/sciknoworg/OntoLearner-sub000/ontology"
)

// Mode selects how Extract produces data.
type Mode int

const (
	// ModeAuto extracts locally loaded graphs and reads the published
	// bundle for graphs fetched from the hub.
	ModeAuto Mode = iota

	// ModeReinforce always runs the extractors, so a fetched ontology can
	// be compared against its published bundle.
	ModeReinforce
)

func (m Mode) String() string {
	if m == ModeReinforce {
		return "reinforce"
	}
	return "auto"
}

// ErrNotLoaded is returned by operations that need a loaded graph.
var ErrNotLoaded = errors.New("ontology not loaded")

// Ontology binds one catalogued entry to its loaded graph.
type Ontology struct {
	entry         Entry
	hub           *hub.Client
	loaderOptions []loader.Option
	engineOptions []extract.Option
	logger        *slog.Logger

	graph  *graph.LoadedGraph
	engine *extract.Engine
}

// Option configures an Ontology.
type Option func(*Ontology)

// WithHub sets the hub client used to fetch the ontology and its bundle.
func WithHub(c *hub.Client) Option {
	return func(o *Ontology) {
		o.hub = c
	}
}

// WithLoaderOptions appends loader options, applied after the defaults.
func WithLoaderOptions(opts ...loader.Option) Option {
	return func(o *Ontology) {
		o.loaderOptions = append(o.loaderOptions, opts...)
	}
}

// WithEngineOptions appends extraction engine options.
func WithEngineOptions(opts ...extract.Option) Option {
	return func(o *Ontology) {
		o.engineOptions = append(o.engineOptions, opts...)
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Ontology) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// New creates an ontology handle for e.
func New(e Entry, opts ...Option) *Ontology {
	o := &Ontology{entry: e, logger: slog.Default()}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Open looks id up in the default registry.
func Open(id string, opts ...Option) (*Ontology, error) {
	e, ok := Default().Get(id)
	if !ok {
		return nil, fmt.Errorf("unknown ontology %q", id)
	}
	return New(e, opts...), nil
}

// Descriptor returns the ontology metadata.
func (o *Ontology) Descriptor() ontology.Descriptor {
	return o.entry.Descriptor
}

// Hooks returns the ontology's behaviour overrides.
func (o *Ontology) Hooks() ontology.Hooks {
	return o.entry.Hooks
}

// Load parses the ontology from path, or fetches it from the hub when path
// is empty. Imports are resolved against the directory of the loaded file
// unless a loader option says otherwise.
func (o *Ontology) Load(ctx context.Context, path string) error {
	opts := []loader.Option{
		loader.WithDescriptor(o.entry.Descriptor),
		loader.WithHooks(o.entry.Hooks),
		loader.WithLogger(o.logger),
	}
	if path != "" {
		opts = append(opts, loader.WithBaseDir(filepath.Dir(path)))
	}
	if o.hub != nil {
		opts = append(opts, loader.WithFetcher(o.hub))
	}
	opts = append(opts, o.loaderOptions...)

	g, err := loader.New(opts...).Load(ctx, path)
	if err != nil {
		return err
	}
	o.graph = g
	o.engine = extract.NewEngine(g, append([]extract.Option{
		extract.WithHooks(o.entry.Hooks),
		extract.WithLogger(o.logger),
	}, o.engineOptions...)...)
	return nil
}

// Graph returns the loaded graph, or nil before Load.
func (o *Ontology) Graph() *graph.LoadedGraph {
	return o.graph
}

// Extract produces the learning datasets. Graphs fetched from the hub are
// answered from the published bundle unless mode is ModeReinforce.
func (o *Ontology) Extract(ctx context.Context, mode Mode) (*ontology.Data, error) {
	if o.graph == nil {
		return nil, ErrNotLoaded
	}
	if o.graph.Origin == graph.OriginHub && mode != ModeReinforce {
		return o.fetchBundle(ctx)
	}
	return o.engine.Extract(ctx)
}

func (o *Ontology) fetchBundle(ctx context.Context) (*ontology.Data, error) {
	if o.hub == nil {
		return nil, ontology.NewLoadError(o.entry.Descriptor.ID, errors.New("no hub client configured"))
	}
	dir, err := o.hub.FetchBundle(ctx, o.entry.Descriptor.ID, o.entry.Descriptor.Domain)
	if err != nil {
		return nil, err
	}
	data, err := export.ReadBundle(dir)
	if err != nil {
		return nil, err
	}
	o.logger.Info("Loaded published bundle",
		"ontology", o.entry.Descriptor.ID,
		"term_typings", len(data.TermTypings),
		"taxonomies", len(data.TypeTaxonomies.Taxonomies),
		"non_taxonomies", len(data.TypeNonTaxonomicRelations.NonTaxonomies))
	return data, nil
}

// LabelGraph returns the label graph of the loaded ontology.
func (o *Ontology) LabelGraph() (*graph.LabelGraph, error) {
	if o.graph == nil {
		return nil, ErrNotLoaded
	}
	return o.graph.LabelGraph(o.engine.Normalizer()), nil
}

// Metrics computes topology metrics over the label graph.
func (o *Ontology) Metrics(opts metrics.TopologyOptions) (metrics.Topology, error) {
	lg, err := o.LabelGraph()
	if err != nil {
		return metrics.Topology{}, err
	}
	return metrics.ComputeTopology(lg, opts), nil
}
