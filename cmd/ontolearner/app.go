package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/sciknoworg/OntoLearner-sub000/catalog"
	"github.com/sciknoworg/OntoLearner-sub000/config"
	"github.com/sciknoworg/OntoLearner-sub000/extract"
	"github.com/sciknoworg/OntoLearner-sub000/hub"
	"github.com/sciknoworg/OntoLearner-sub000/learner"
	"github.com/sciknoworg/OntoLearner-sub000/llm"
	"github.com/sciknoworg/OntoLearner-sub000/loader"
	"github.com/sciknoworg/OntoLearner-sub000/ontology"
)

// App holds what every command needs: configuration, logging and the
// shared clients built from them.
type App struct {
	cfg      *config.Config
	logger   *slog.Logger
	registry *prometheus.Registry
	metrics  *extract.Metrics
	out      io.Writer
}

// newApp configures logging and loads configuration. An explicit config
// file replaces the layered lookup.
func newApp(flags *globalFlags, out io.Writer) (*App, error) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: parseLevel(flags.logLevel)}))
	slog.SetDefault(logger)

	var (
		cfg *config.Config
		err error
	)
	if flags.configPath != "" {
		cfg, err = config.LoadFromFile(flags.configPath)
	} else {
		cfg, err = config.NewLoader(logger).Load()
	}
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	registry := prometheus.NewRegistry()
	return &App{
		cfg:      cfg,
		logger:   logger,
		registry: registry,
		metrics:  extract.NewMetrics(registry),
		out:      out,
	}, nil
}

func (a *App) hubClient() *hub.Client {
	opts := []hub.Option{
		hub.WithEndpoint(a.cfg.Hub.Endpoint),
		hub.WithRevision(a.cfg.Hub.Revision),
		hub.WithHTTPClient(&http.Client{Timeout: a.cfg.Hub.Timeout}),
		hub.WithLogger(a.logger),
	}
	if a.cfg.Hub.CacheDir != "" {
		opts = append(opts, hub.WithCacheDir(a.cfg.Hub.CacheDir))
	}
	if a.cfg.Hub.Token != "" {
		opts = append(opts, hub.WithToken(a.cfg.Hub.Token))
	}
	return hub.NewClient(opts...)
}

// resolveEntry finds id in the catalogue. Unknown ids, or none at all, get
// an ad-hoc entry named after the input file with default hooks.
func resolveEntry(id, input, format string) (catalog.Entry, error) {
	if id != "" {
		if e, ok := catalog.Default().Get(id); ok {
			if format != "" {
				e.Descriptor.Format = format
			}
			return e, nil
		}
	}
	if input == "" {
		if id == "" {
			return catalog.Entry{}, fmt.Errorf("either --input or a catalogued --id is required")
		}
		return catalog.Entry{}, fmt.Errorf("unknown ontology %q and no --input given", id)
	}
	if id == "" {
		base := filepath.Base(input)
		id = strings.TrimSuffix(base, filepath.Ext(base))
	}
	if format == "" {
		format = strings.TrimPrefix(filepath.Ext(input), ".")
	}
	return catalog.Entry{Descriptor: ontology.Descriptor{ID: id, Format: format}}, nil
}

// openOntology loads the ontology for a command. An empty input fetches
// it from the hub.
func (a *App) openOntology(ctx context.Context, entry catalog.Entry, input string) (*catalog.Ontology, error) {
	loaderOpts := []loader.Option{}
	if a.cfg.Extraction.BaseDir != "" {
		loaderOpts = append(loaderOpts, loader.WithBaseDir(a.cfg.Extraction.BaseDir))
	}
	if a.cfg.Extraction.Imports != nil {
		loaderOpts = append(loaderOpts, loader.WithImports(*a.cfg.Extraction.Imports))
	}

	o := catalog.New(entry,
		catalog.WithHub(a.hubClient()),
		catalog.WithLogger(a.logger),
		catalog.WithLoaderOptions(loaderOpts...),
		catalog.WithEngineOptions(
			extract.WithLanguage(a.cfg.Extraction.Language),
			extract.WithMetrics(a.metrics),
		),
	)
	if err := o.Load(ctx, input); err != nil {
		return nil, err
	}
	return o, nil
}

// generator builds the LLM client for a model, defaulting to the
// configured one.
func (a *App) generator(model string) *llm.Client {
	if model == "" {
		model = a.cfg.LLM.Model
	}
	opts := []llm.ClientOption{
		llm.WithBaseURL(a.cfg.LLM.BaseURL),
		llm.WithSystemPrompt(learner.SystemPrompt),
		llm.WithTemperature(float32(a.cfg.LLM.Temperature)),
		llm.WithRetryConfig(a.cfg.LLM.Retry),
		llm.WithHTTPClient(&http.Client{Timeout: a.cfg.LLM.Timeout}),
		llm.WithLogger(a.logger),
	}
	if a.cfg.LLM.MaxTokens > 0 {
		opts = append(opts, llm.WithMaxTokens(a.cfg.LLM.MaxTokens))
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		opts = append(opts, llm.WithAPIKey(key))
	}
	return llm.NewClient(model, opts...)
}
