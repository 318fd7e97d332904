package learner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/sciknoworg/OntoLearner-sub000/export"
	"github.com/sciknoworg/OntoLearner-sub000/ontology"
)

// Files written by Evaluate.
const (
	PredictionsFile = "predictions.json"
	MetricsFile     = "metrics.json"
)

// ErrNoPredictions is returned by Evaluate before any Predict call.
var ErrNoPredictions = errors.New("no predictions to evaluate")

// Record is one scored prediction. Only the input fields of the task are
// set.
type Record struct {
	ID          string   `json:"id,omitempty"`
	Term        string   `json:"term,omitempty"`
	Parent      string   `json:"parent,omitempty"`
	Child       string   `json:"child,omitempty"`
	Head        string   `json:"head,omitempty"`
	Tail        string   `json:"tail,omitempty"`
	Document    string   `json:"document,omitempty"`
	GroundTruth []string `json:"ground_truth"`
	Predicted   []string `json:"predicted"`
	Metrics     Scores   `json:"metrics"`
}

// Result is what each pipeline stage returns. ElapsedTime is in seconds.
type Result struct {
	Predictions []Record `json:"predictions,omitempty"`
	Metrics     *Metrics `json:"metrics,omitempty"`
	ElapsedTime float64  `json:"elapsed_time"`
}

// Pipeline drives one learner through fit, predict and evaluate for a
// single task. Examples are processed sequentially; a Pipeline is not safe
// for concurrent use.
type Pipeline struct {
	task      Task
	learner   Learner
	model     string
	loaded    bool
	evaluator Evaluator
	metrics   *PipelineMetrics
	logger    *slog.Logger

	records []Record
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithModel makes Fit load model into the learner first.
func WithModel(model string) PipelineOption {
	return func(p *Pipeline) {
		p.model = model
	}
}

// WithEvaluator replaces the default SetEvaluator.
func WithEvaluator(e Evaluator) PipelineOption {
	return func(p *Pipeline) {
		if e != nil {
			p.evaluator = e
		}
	}
}

// WithPipelineMetrics records stage timings and prediction counts.
func WithPipelineMetrics(m *PipelineMetrics) PipelineOption {
	return func(p *Pipeline) {
		p.metrics = m
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) PipelineOption {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewPipeline creates a pipeline for task. Unknown tasks fail with
// ontology.ErrUnsupportedTask.
func NewPipeline(task Task, l Learner, opts ...PipelineOption) (*Pipeline, error) {
	if err := checkTask(task); err != nil {
		return nil, err
	}
	if l == nil {
		return nil, fmt.Errorf("learner is required")
	}
	p := &Pipeline{
		task:      task,
		learner:   l,
		evaluator: SetEvaluator{},
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Task returns the pipeline's task.
func (p *Pipeline) Task() Task { return p.task }

// Fit loads the model once, when one is configured, and fits the learner
// on train.
func (p *Pipeline) Fit(ctx context.Context, train *ontology.Data) (*Result, error) {
	start := time.Now()
	if p.model != "" && !p.loaded {
		if err := p.learner.Load(ctx, p.model); err != nil {
			return nil, err
		}
		p.loaded = true
	}
	if err := p.learner.Fit(ctx, train, p.task); err != nil {
		return nil, fmt.Errorf("fit %s: %w", p.task, err)
	}
	elapsed := time.Since(start)
	p.metrics.observe(p.task, "fit", elapsed)
	p.logger.Info("Learner fitted", "task", p.task, "elapsed", elapsed)
	return &Result{ElapsedTime: elapsed.Seconds()}, nil
}

// Predict runs the learner over the examples of test, at most limit of them
// when limit is positive. A failing example gets an empty prediction and a
// warning. Cancellation discards everything predicted so far.
func (p *Pipeline) Predict(ctx context.Context, test *ontology.Data, limit int) (*Result, error) {
	start := time.Now()
	inputs, err := p.learner.TasksDataFormer(test, p.task)
	if err != nil {
		return nil, err
	}
	truth, err := p.learner.TasksGroundTruthFormer(test, p.task)
	if err != nil {
		return nil, err
	}
	if len(truth) != len(inputs) {
		return nil, fmt.Errorf("learner formed %d examples but %d ground truths", len(inputs), len(truth))
	}
	if limit > 0 && limit < len(inputs) {
		inputs, truth = inputs[:limit], truth[:limit]
	}

	records := make([]Record, 0, len(inputs))
	for i, in := range inputs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		predicted, failed := p.predictOne(ctx, in)
		if failed && ctx.Err() != nil {
			return nil, ctx.Err()
		}
		p.metrics.predicted(p.task, failed)
		records = append(records, p.record(in, truth[i], predicted))
	}
	p.records = records

	elapsed := time.Since(start)
	p.metrics.observe(p.task, "predict", elapsed)
	p.logger.Info("Predictions complete", "task", p.task, "examples", len(records), "elapsed", elapsed)
	return &Result{Predictions: records, ElapsedTime: elapsed.Seconds()}, nil
}

func (p *Pipeline) predictOne(ctx context.Context, in Example) ([]string, bool) {
	out, err := p.learner.Predict(ctx, []Example{in}, p.task)
	if err != nil {
		p.logger.Warn("Prediction failed", "task", p.task, "example", in.ID, "error", err)
		return []string{}, true
	}
	if len(out) != 1 {
		p.logger.Warn("Learner returned wrong number of predictions", "task", p.task, "example", in.ID, "got", len(out))
		return []string{}, true
	}
	if out[0] == nil {
		return []string{}, false
	}
	return out[0], false
}

func (p *Pipeline) record(in Example, truth, predicted []string) Record {
	if truth == nil {
		truth = []string{}
	}
	return Record{
		ID:          in.ID,
		Term:        in.Term,
		Parent:      in.Parent,
		Child:       in.Child,
		Head:        in.Head,
		Tail:        in.Tail,
		Document:    in.Document,
		GroundTruth: truth,
		Predicted:   predicted,
		Metrics:     p.evaluator.Score(truth, predicted),
	}
}

// Evaluate aggregates the last predictions. When outputDir is non-empty the
// records and metrics are written there as JSON.
func (p *Pipeline) Evaluate(outputDir string) (*Result, error) {
	if p.records == nil {
		return nil, ErrNoPredictions
	}
	start := time.Now()
	truth := make([][]string, len(p.records))
	predicted := make([][]string, len(p.records))
	for i, r := range p.records {
		truth[i], predicted[i] = r.GroundTruth, r.Predicted
	}
	m, err := p.evaluator.Aggregate(truth, predicted)
	if err != nil {
		return nil, fmt.Errorf("evaluate %s: %w", p.task, err)
	}
	p.metrics.scored(p.task, m.Micro.F1)

	if outputDir != "" {
		if err := os.MkdirAll(outputDir, 0755); err != nil {
			return nil, fmt.Errorf("create output dir: %w", err)
		}
		if err := export.WriteJSON(filepath.Join(outputDir, PredictionsFile), p.records); err != nil {
			return nil, err
		}
		if err := export.WriteJSON(filepath.Join(outputDir, MetricsFile), m); err != nil {
			return nil, err
		}
	}

	elapsed := time.Since(start)
	p.metrics.observe(p.task, "evaluate", elapsed)
	p.logger.Info("Evaluation complete",
		"task", p.task,
		"examples", m.Examples,
		"f1", m.Micro.F1,
		"precision", m.Micro.Precision,
		"recall", m.Micro.Recall)
	return &Result{Metrics: &m, ElapsedTime: elapsed.Seconds()}, nil
}

// FitPredictEvaluate runs the three stages in order. The result carries the
// predictions, the metrics and the total elapsed time.
func (p *Pipeline) FitPredictEvaluate(ctx context.Context, train, test *ontology.Data, limit int, outputDir string) (*Result, error) {
	start := time.Now()
	if _, err := p.Fit(ctx, train); err != nil {
		return nil, err
	}
	pred, err := p.Predict(ctx, test, limit)
	if err != nil {
		return nil, err
	}
	eval, err := p.Evaluate(outputDir)
	if err != nil {
		return nil, err
	}
	return &Result{
		Predictions: pred.Predictions,
		Metrics:     eval.Metrics,
		ElapsedTime: time.Since(start).Seconds(),
	}, nil
}
