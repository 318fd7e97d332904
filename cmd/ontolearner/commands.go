package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"

	"github.com/sciknoworg/OntoLearner-sub000/catalog"
	"github.com/sciknoworg/OntoLearner-sub000/export"
	"github.com/sciknoworg/OntoLearner-sub000/metrics"
	"github.com/sciknoworg/OntoLearner-sub000/ontology"
	"github.com/sciknoworg/OntoLearner-sub000/split"
)

// ontologyFlags select one ontology, from a file or the catalogue.
type ontologyFlags struct {
	input  string
	id     string
	format string
}

func (f *ontologyFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.input, "input", "i", "", "Ontology file (omit to fetch a catalogued ontology from the hub)")
	cmd.Flags().StringVar(&f.id, "id", "", "Catalogued ontology id (selects hooks and hub location)")
	cmd.Flags().StringVar(&f.format, "format", "", "Source format override (owl, rdf, ttl, nt, jsonld)")
}

func extractCmd(flags *globalFlags) *cobra.Command {
	var (
		src       ontologyFlags
		glob      string
		outDir    string
		reinforce bool
	)

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract term typings, taxonomies and non-taxonomic relations",
		Long: `Extract loads an ontology and writes the three learning datasets as a
bundle directory (term_typings.json, type_taxonomies.json,
type_non_taxonomic_relations.json).

Ontologies fetched from the hub are answered from the published bundle
unless --reinforce is given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(flags, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			mode := catalog.ModeAuto
			if reinforce {
				mode = catalog.ModeReinforce
			}

			if glob == "" {
				entry, err := resolveEntry(src.id, src.input, src.format)
				if err != nil {
					return err
				}
				return app.extractOne(cmd.Context(), entry, src.input, outDir, mode)
			}

			matches, err := doublestar.FilepathGlob(glob)
			if err != nil {
				return fmt.Errorf("glob %q: %w", glob, err)
			}
			if len(matches) == 0 {
				return fmt.Errorf("no files match %q", glob)
			}
			for _, path := range matches {
				entry, err := resolveEntry("", path, src.format)
				if err != nil {
					return err
				}
				dir := filepath.Join(outDir, strings.ToLower(entry.Descriptor.ID))
				if err := app.extractOne(cmd.Context(), entry, path, dir, mode); err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
			}
			return nil
		},
	}

	src.register(cmd)
	cmd.Flags().StringVar(&glob, "glob", "", "Extract every file matching this pattern (** supported), one bundle per file")
	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "Bundle output directory")
	cmd.Flags().BoolVar(&reinforce, "reinforce", false, "Run the extractors even for ontologies fetched from the hub")

	return cmd
}

func (a *App) extractOne(ctx context.Context, entry catalog.Entry, input, outDir string, mode catalog.Mode) error {
	o, err := a.openOntology(ctx, entry, input)
	if err != nil {
		return err
	}
	data, err := o.Extract(ctx, mode)
	if err != nil {
		return err
	}
	if err := export.WriteBundle(outDir, data); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s: %d term typings, %d taxonomic, %d non-taxonomic relations -> %s\n",
		entry.Descriptor.ID,
		len(data.TermTypings),
		len(data.TypeTaxonomies.Taxonomies),
		len(data.TypeNonTaxonomicRelations.NonTaxonomies),
		outDir)
	return nil
}

func splitCmd(flags *globalFlags) *cobra.Command {
	var (
		inDir    string
		outDir   string
		testSize float64
		seed     int64
	)

	cmd := &cobra.Command{
		Use:   "split",
		Short: "Split a bundle into train and test bundles",
		Long: `Split partitions a bundle so that every test relation only mentions terms
seen in training. Term typings are stratified by primary type. Output goes
to <out>/train and <out>/test.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(flags, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("test-size") {
				testSize = app.cfg.Split.TestSize
			}
			if !cmd.Flags().Changed("seed") {
				seed = app.cfg.Split.Seed
			}

			data, err := export.ReadBundle(inDir)
			if err != nil {
				return err
			}
			train, test, err := split.Split(data, testSize, seed)
			if err != nil {
				return err
			}
			if err := export.WriteBundle(filepath.Join(outDir, "train"), train); err != nil {
				return err
			}
			if err := export.WriteBundle(filepath.Join(outDir, "test"), test); err != nil {
				return err
			}
			fmt.Fprintf(app.out, "train: %d/%d/%d  test: %d/%d/%d  (typings/taxonomic/non-taxonomic)\n",
				len(train.TermTypings), len(train.TypeTaxonomies.Taxonomies), len(train.TypeNonTaxonomicRelations.NonTaxonomies),
				len(test.TermTypings), len(test.TypeTaxonomies.Taxonomies), len(test.TypeNonTaxonomicRelations.NonTaxonomies))
			return nil
		},
	}

	cmd.Flags().StringVar(&inDir, "in", "", "Bundle directory to split")
	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "Output directory for train/ and test/")
	cmd.Flags().Float64Var(&testSize, "test-size", 0.2, "Test fraction, exclusive of 0 and 1")
	cmd.Flags().Int64Var(&seed, "seed", 42, "Sampling seed")
	_ = cmd.MarkFlagRequired("in")

	return cmd
}

// metricsReport is the JSON printed by the metrics command.
type metricsReport struct {
	Ontology string            `json:"ontology,omitempty"`
	Topology *metrics.Topology `json:"topology,omitempty"`
	Dataset  metrics.Dataset   `json:"dataset"`
}

func metricsCmd(flags *globalFlags) *cobra.Command {
	var (
		src          ontologyFlags
		bundleDir    string
		computePaths bool
	)

	cmd := &cobra.Command{
		Use:   "metrics",
		Short: "Print topology and dataset metrics as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(flags, cmd.OutOrStdout())
			if err != nil {
				return err
			}

			if bundleDir != "" {
				data, err := export.ReadBundle(bundleDir)
				if err != nil {
					return err
				}
				return writeJSON(app.out, metricsReport{Dataset: metrics.ComputeDataset(data)})
			}

			entry, err := resolveEntry(src.id, src.input, src.format)
			if err != nil {
				return err
			}
			o, err := app.openOntology(cmd.Context(), entry, src.input)
			if err != nil {
				return err
			}
			topo, err := o.Metrics(metrics.TopologyOptions{
				ComputePaths: computePaths || app.cfg.Metrics.ComputePaths,
			})
			if err != nil {
				return err
			}
			data, err := o.Extract(cmd.Context(), catalog.ModeAuto)
			if err != nil {
				return err
			}
			return writeJSON(app.out, metricsReport{
				Ontology: entry.Descriptor.ID,
				Topology: &topo,
				Dataset:  metrics.ComputeDataset(data),
			})
		},
	}

	src.register(cmd)
	cmd.Flags().StringVar(&bundleDir, "bundle", "", "Compute dataset metrics for an existing bundle instead")
	cmd.Flags().BoolVar(&computePaths, "compute-paths", false, "Also compute average shortest path and diameter")

	return cmd
}

func graphCmd(flags *globalFlags) *cobra.Command {
	var (
		src       ontologyFlags
		to        string
		namespace string
		outPath   string
	)

	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Export the label graph as RDF",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(flags, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			format, err := export.ParseFormat(to)
			if err != nil {
				return err
			}
			entry, err := resolveEntry(src.id, src.input, src.format)
			if err != nil {
				return err
			}
			o, err := app.openOntology(cmd.Context(), entry, src.input)
			if err != nil {
				return err
			}
			lg, err := o.LabelGraph()
			if err != nil {
				return err
			}

			w := app.out
			if outPath != "" {
				f, err := os.Create(outPath)
				if err != nil {
					return fmt.Errorf("create output: %w", err)
				}
				defer f.Close()
				w = f
			}
			return export.NewLabelGraphExporter(namespace).Export(w, lg, format)
		},
	}

	src.register(cmd)
	cmd.Flags().StringVar(&to, "to", string(export.FormatNTriples), "Output format (turtle, ntriples, jsonld)")
	cmd.Flags().StringVar(&namespace, "namespace", export.DefaultNamespace, "Namespace for label IRIs")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Output file (default stdout)")

	return cmd
}

func fetchCmd(flags *globalFlags) *cobra.Command {
	var (
		id     string
		domain string
		format string
		bundle bool
	)

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Download an ontology or its published bundle from the hub",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(flags, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			d := ontology.Descriptor{ID: id, Domain: domain, Format: format}
			if e, ok := catalog.Default().Get(id); ok {
				d = e.Descriptor
				if domain != "" {
					d.Domain = domain
				}
				if format != "" {
					d.Format = format
				}
			}

			client := app.hubClient()
			var path string
			if bundle {
				path, err = client.FetchBundle(cmd.Context(), d.ID, d.Domain)
			} else {
				path, err = client.Fetch(cmd.Context(), d.ID, d.Domain, d.Format)
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(app.out, path)
			return nil
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "Ontology id")
	cmd.Flags().StringVar(&domain, "domain", "", "Domain (defaults to the catalogue entry)")
	cmd.Flags().StringVar(&format, "format", "", "Format (defaults to the catalogue entry)")
	cmd.Flags().BoolVar(&bundle, "bundle", false, "Fetch the pre-extracted bundle instead of the ontology")
	_ = cmd.MarkFlagRequired("id")

	return cmd
}

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List catalogued ontologies",
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tDOMAIN\tFORMAT\tIMPORTS")
			for _, e := range catalog.Default().List() {
				d := e.Descriptor
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%t\n", d.ID, d.FullName, d.Domain, d.Format, e.Hooks.ContainsImports)
			}
			return tw.Flush()
		},
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
