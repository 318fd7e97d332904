package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sciknoworg/OntoLearner-sub000/export"
	"github.com/sciknoworg/OntoLearner-sub000/learner"
	"github.com/sciknoworg/OntoLearner-sub000/ontology"
	"github.com/sciknoworg/OntoLearner-sub000/source/corpus"
	"github.com/sciknoworg/OntoLearner-sub000/split"
)

type learnOptions struct {
	task      string
	kind      string
	dataDir   string
	trainDir  string
	testDir   string
	docs      []string
	chunkSize int
	limit     int
	outDir    string
	model     string
	shots     int
	topK      int
	negatives int
}

func learnCmd(flags *globalFlags) *cobra.Command {
	opts := &learnOptions{}

	cmd := &cobra.Command{
		Use:   "learn",
		Short: "Fit a learner, predict the test set and score it",
		Long: `Learn runs one task end to end and writes predictions.json and
metrics.json to the output directory.

Tasks: term-typing, taxonomy-discovery, non-taxonomic-re, text2onto.
Learners: retriever (lexical nearest neighbour), llm (few-shot prompting),
rag (retrieved context plus prompting).

Give either --train and --test bundles, or a single --data bundle that is
split with the configured test size and seed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(flags, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			return app.learn(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.task, "task", "t", "", "Task to run")
	f.StringVarP(&opts.kind, "learner", "l", "retriever", "Learner (retriever, llm, rag)")
	f.StringVar(&opts.dataDir, "data", "", "Bundle to split into train and test")
	f.StringVar(&opts.trainDir, "train", "", "Training bundle")
	f.StringVar(&opts.testDir, "test", "", "Test bundle")
	f.StringSliceVar(&opts.docs, "docs", nil, "Document globs for text2onto")
	f.IntVar(&opts.chunkSize, "chunk-size", 0, "Split documents longer than this many characters")
	f.IntVar(&opts.limit, "limit", 0, "Predict at most this many test examples")
	f.StringVarP(&opts.outDir, "out", "o", "results", "Output directory")
	f.StringVar(&opts.model, "model", "", "Model name (defaults to the configured LLM model)")
	f.IntVar(&opts.shots, "shots", learner.DefaultShots, "Few-shot exemplars per prompt")
	f.IntVar(&opts.topK, "top-k", 0, "Retrieved documents per query")
	f.IntVar(&opts.negatives, "negatives", 1, "Negative taxonomy pairs per positive")
	_ = cmd.MarkFlagRequired("task")

	return cmd
}

func (a *App) learn(cmd *cobra.Command, opts *learnOptions) error {
	ctx := cmd.Context()

	task, err := learner.ParseTask(opts.task)
	if err != nil {
		return err
	}
	l, base, model, err := a.newLearner(opts)
	if err != nil {
		return err
	}
	train, test, err := a.learnData(opts)
	if err != nil {
		return err
	}
	base.NegativeRatio = opts.negatives
	base.Seed = a.cfg.Split.Seed
	if task == learner.TaskText2Onto {
		if len(opts.docs) == 0 {
			return fmt.Errorf("text2onto needs --docs")
		}
		docs, err := corpus.NewLoader(
			corpus.WithChunkSize(opts.chunkSize),
			corpus.WithLogger(a.logger),
		).Load(ctx, opts.docs...)
		if err != nil {
			return err
		}
		base.Documents = docs
	}

	p, err := learner.NewPipeline(task, l,
		learner.WithModel(model),
		learner.WithPipelineMetrics(learner.NewPipelineMetrics(a.registry)),
		learner.WithLogger(a.logger),
	)
	if err != nil {
		return err
	}

	res, err := p.FitPredictEvaluate(ctx, train, test, opts.limit, opts.outDir)
	if err != nil {
		return err
	}
	m := res.Metrics
	fmt.Fprintf(a.out, "%s: %d examples, micro P=%.4f R=%.4f F1=%.4f, macro F1=%.4f (%.1fs) -> %s\n",
		task, m.Examples, m.Micro.Precision, m.Micro.Recall, m.Micro.F1, m.Macro.F1, res.ElapsedTime, opts.outDir)
	return nil
}

// learnData reads explicit train and test bundles, or splits --data.
func (a *App) learnData(opts *learnOptions) (train, test *ontology.Data, err error) {
	switch {
	case opts.trainDir != "" && opts.testDir != "":
		if train, err = export.ReadBundle(opts.trainDir); err != nil {
			return nil, nil, err
		}
		if test, err = export.ReadBundle(opts.testDir); err != nil {
			return nil, nil, err
		}
		return train, test, nil
	case opts.dataDir != "":
		data, err := export.ReadBundle(opts.dataDir)
		if err != nil {
			return nil, nil, err
		}
		return split.Split(data, a.cfg.Split.TestSize, a.cfg.Split.Seed)
	default:
		return nil, nil, fmt.Errorf("either --data or both --train and --test are required")
	}
}

// newLearner builds the learner named by opts and returns its embedded
// BaseLearner for data shaping along with the model to load.
func (a *App) newLearner(opts *learnOptions) (learner.Learner, *learner.BaseLearner, string, error) {
	model := opts.model
	if model == "" {
		model = a.cfg.LLM.Model
	}
	factory := func(name string) (learner.Generator, error) {
		return a.generator(name), nil
	}

	switch opts.kind {
	case "retriever":
		l := learner.NewRetrieverLearner(nil, opts.topK)
		return l, &l.BaseLearner, "lexical", nil
	case "llm":
		l := learner.NewLLMLearner(
			learner.WithGeneratorFactory(factory),
			learner.WithShots(opts.shots),
			learner.WithLLMLogger(a.logger),
		)
		return l, &l.BaseLearner, model, nil
	case "rag":
		llm := learner.NewLLMLearner(
			learner.WithGeneratorFactory(factory),
			learner.WithShots(0),
			learner.WithLLMLogger(a.logger),
		)
		l := learner.NewRAGLearner(nil, llm, opts.topK)
		return l, &l.BaseLearner, model, nil
	default:
		return nil, nil, "", fmt.Errorf("unknown learner %q (want retriever, llm or rag)", opts.kind)
	}
}
