// Package loader parses ontology sources into a frozen triple store,
// following owl:imports when the ontology declares them.
package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/sciknoworg/OntoLearner-sub000/graph"
	"github.com/sciknoworg/OntoLearner-sub000/ontology"
	"github.com/sciknoworg/OntoLearner-sub000/source/parser"
	"github.com/sciknoworg/OntoLearner-sub000/storage"
	"github.com/sciknoworg/OntoLearner-sub000/vocabulary"
)

const (
	// DefaultImportTimeout bounds a single remote import fetch.
	DefaultImportTimeout = 2 * time.Minute

	maxImportSize = 512 << 20
)

// Fetcher resolves an ontology artifact to a local path. hub.Client
// implements it.
type Fetcher interface {
	Fetch(ctx context.Context, ontologyID, domain, format string) (string, error)
}

// Loader builds LoadedGraphs for one ontology descriptor.
type Loader struct {
	descriptor ontology.Descriptor
	hooks      ontology.Hooks
	baseDir    string
	imports    *bool
	fetcher    Fetcher
	httpClient *http.Client
	parsers    *parser.Registry
	logger     *slog.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithBaseDir sets the directory local imports are resolved against.
func WithBaseDir(dir string) Option {
	return func(l *Loader) {
		l.baseDir = dir
	}
}

// WithImports enables or disables owl:imports resolution. It overrides the
// ContainsImports hook regardless of option order.
func WithImports(enabled bool) Option {
	return func(l *Loader) {
		l.imports = &enabled
	}
}

// WithHooks installs per-ontology overrides.
func WithHooks(h ontology.Hooks) Option {
	return func(l *Loader) {
		l.hooks = h
	}
}

// WithDescriptor sets the descriptor used for hub lookups.
func WithDescriptor(d ontology.Descriptor) Option {
	return func(l *Loader) {
		l.descriptor = d
	}
}

// WithFetcher sets the artifact fetcher used when Load gets no path.
func WithFetcher(f Fetcher) Option {
	return func(l *Loader) {
		l.fetcher = f
	}
}

// WithHTTPClient sets the client used for remote imports.
func WithHTTPClient(c *http.Client) Option {
	return func(l *Loader) {
		if c != nil {
			l.httpClient = c
		}
	}
}

// WithParsers sets the parser registry.
func WithParsers(r *parser.Registry) Option {
	return func(l *Loader) {
		if r != nil {
			l.parsers = r
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// New creates a Loader.
func New(opts ...Option) *Loader {
	l := &Loader{
		httpClient: &http.Client{Timeout: DefaultImportTimeout},
		parsers:    parser.DefaultRegistry,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Loader) importsEnabled() bool {
	if l.imports != nil {
		return *l.imports
	}
	return l.hooks.ContainsImports
}

// Descriptor returns the descriptor the loader was created for.
func (l *Loader) Descriptor() ontology.Descriptor {
	return l.descriptor
}

// loadState tracks one Load call.
type loadState struct {
	store   *storage.Store
	visited map[string]bool
	sources []string
}

// Load parses the ontology. A non-empty path must name an existing local
// file; an empty path fetches the descriptor's artifact through the
// Fetcher. Failures on the primary source are returned as LoadError;
// failures on imports are logged and skipped.
func (l *Loader) Load(ctx context.Context, path string) (*graph.LoadedGraph, error) {
	origin := graph.OriginLocal
	if path == "" {
		if l.fetcher == nil {
			return nil, ontology.NewLoadError(l.descriptor.ID, errors.New("no path given and no fetcher configured"))
		}
		fetched, err := l.fetcher.Fetch(ctx, l.descriptor.ID, l.descriptor.Domain, l.descriptor.Format)
		if err != nil {
			if ontology.IsLoadError(err) {
				return nil, err
			}
			return nil, ontology.NewLoadError(l.descriptor.ID, err)
		}
		path = fetched
		origin = graph.OriginHub
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, ontology.NewLoadError(path, err)
	}
	if info.IsDir() {
		return nil, ontology.NewLoadError(path, errors.New("is a directory"))
	}

	st := &loadState{store: storage.NewStore(), visited: make(map[string]bool)}
	key := sourceKey(path)
	st.visited[key] = true

	triples, err := l.parseLocal(path)
	if err != nil {
		return nil, ontology.NewLoadError(path, err)
	}
	if err := l.addScoped(st, key, triples); err != nil {
		return nil, ontology.NewLoadError(path, err)
	}

	if l.importsEnabled() {
		l.loadImports(ctx, st, triples)
	}

	if st.store.Len() == 0 {
		return nil, ontology.NewLoadError(path, errors.New("source yielded zero triples"))
	}

	l.logger.Info("Ontology loaded",
		"ontology", l.descriptor.ID,
		"path", path,
		"origin", origin,
		"sources", len(st.sources),
		"triples", st.store.Len())

	return graph.NewLoadedGraph(st.store, path, origin, st.sources), nil
}

// loadImports walks owl:imports breadth-first. Every resolved source is
// loaded at most once.
func (l *Loader) loadImports(ctx context.Context, st *loadState, primary []storage.Triple) {
	queue := ImportsOf(primary)
	for len(queue) > 0 {
		if ctx.Err() != nil {
			l.logger.Warn("Import resolution cancelled", "error", ctx.Err())
			return
		}
		uri := queue[0]
		queue = queue[1:]

		src, err := l.resolve(uri)
		if err != nil {
			l.logger.Warn("Skipping unresolvable import", "import", uri, "error", err)
			continue
		}
		key := sourceKey(src)
		if st.visited[key] {
			l.logger.Debug("Import already loaded", "import", uri, "source", src)
			continue
		}
		st.visited[key] = true

		triples, err := l.parseSource(ctx, src)
		if err != nil {
			l.logger.Warn("Skipping import", "import", uri, "source", src, "error", err)
			continue
		}
		if err := l.addScoped(st, key, triples); err != nil {
			l.logger.Warn("Skipping import", "import", uri, "source", src, "error", err)
			continue
		}
		l.logger.Debug("Import loaded", "import", uri, "source", src, "triples", len(triples))

		queue = append(queue, ImportsOf(triples)...)
	}
}

// resolve applies the ResolveImport hook before the default rules.
func (l *Loader) resolve(uri string) (string, error) {
	if l.hooks.ResolveImport != nil {
		if src, ok := l.hooks.ResolveImport(uri, l.baseDir); ok {
			return src, nil
		}
	}
	return ResolveImport(uri, l.baseDir)
}

// addScoped inserts triples, renaming blank nodes so that identical blank
// labels from different sources stay distinct.
func (l *Loader) addScoped(st *loadState, key string, triples []storage.Triple) error {
	scope := fmt.Sprintf("s%d_", len(st.sources))
	st.sources = append(st.sources, key)
	for _, t := range triples {
		t.Subject = scopeBlank(t.Subject, scope)
		t.Object = scopeBlank(t.Object, scope)
		if _, err := st.store.Add(t); err != nil {
			return err
		}
	}
	return nil
}

func scopeBlank(t storage.Term, scope string) storage.Term {
	if t.IsBlank() {
		return storage.Blank(scope + t.Value)
	}
	return t
}

func (l *Loader) parseSource(ctx context.Context, src string) ([]storage.Triple, error) {
	if isRemote(src) {
		return l.parseRemote(ctx, src)
	}
	return l.parseLocal(src)
}

// parseLocal picks the parser from the file extension, falling back to the
// descriptor format; content sniffing has the last word.
func (l *Loader) parseLocal(p string) ([]storage.Triple, error) {
	format := filepath.Ext(p)
	if l.parsers.Get(format) == nil {
		format = l.descriptor.Format
	}
	return l.parsers.ParseFile(p, format)
}

func (l *Loader) parseRemote(ctx context.Context, url string) ([]storage.Triple, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/rdf+xml, text/turtle;q=0.9, application/n-triples;q=0.8, */*;q=0.1")

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxImportSize+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if len(body) > maxImportSize {
		return nil, fmt.Errorf("import too large (exceeds %d bytes)", maxImportSize)
	}

	format := path.Ext(strings.SplitN(url, "?", 2)[0])
	if l.parsers.Get(format) == nil {
		format = "rdfxml"
	}
	return l.parsers.Parse(body, format, url)
}

// ImportsOf returns the owl:imports targets declared by owl:Ontology
// subjects in triples, deduplicated in source order.
func ImportsOf(triples []storage.Triple) []string {
	ontologies := make(map[storage.Term]bool)
	for _, t := range triples {
		if t.Predicate.Value == vocabulary.RDFType && t.Object.IsIRI() && t.Object.Value == vocabulary.OWLOntology {
			ontologies[t.Subject] = true
		}
	}

	seen := make(map[string]bool)
	var out []string
	for _, t := range triples {
		if t.Predicate.Value != vocabulary.OWLImports || !ontologies[t.Subject] || !t.Object.IsIRI() {
			continue
		}
		if !seen[t.Object.Value] {
			seen[t.Object.Value] = true
			out = append(out, t.Object.Value)
		}
	}
	return out
}

// sourceKey normalizes a source for the visited set.
func sourceKey(src string) string {
	if isRemote(src) {
		return src
	}
	if abs, err := filepath.Abs(src); err == nil {
		return filepath.Clean(abs)
	}
	return filepath.Clean(src)
}

func isRemote(src string) bool {
	return strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://")
}
