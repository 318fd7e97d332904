package learner

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sciknoworg/OntoLearner-sub000/ontology"
)

// DefaultShots is how many training examples an LLMLearner puts in its
// prompts.
const DefaultShots = 3

// Generator produces text for a prompt. llm.Client implements it.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeneratorFactory builds a generator for a model name.
type GeneratorFactory func(model string) (Generator, error)

// LLMLearner prompts a generator once per example, optionally with
// few-shot exemplars cached from training data.
type LLMLearner struct {
	BaseLearner

	generator Generator
	factory   GeneratorFactory
	shots     int
	exemplars []labeled
	logger    *slog.Logger
}

// LLMOption configures an LLMLearner.
type LLMOption func(*LLMLearner)

// WithGenerator sets the generator directly.
func WithGenerator(g Generator) LLMOption {
	return func(l *LLMLearner) {
		l.generator = g
	}
}

// WithGeneratorFactory sets how Load builds a generator.
func WithGeneratorFactory(f GeneratorFactory) LLMOption {
	return func(l *LLMLearner) {
		l.factory = f
	}
}

// WithShots sets the number of few-shot exemplars. Zero is zero-shot.
func WithShots(n int) LLMOption {
	return func(l *LLMLearner) {
		if n >= 0 {
			l.shots = n
		}
	}
}

// WithLLMLogger sets the logger.
func WithLLMLogger(logger *slog.Logger) LLMOption {
	return func(l *LLMLearner) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// NewLLMLearner creates an LLM-only learner.
func NewLLMLearner(opts ...LLMOption) *LLMLearner {
	l := &LLMLearner{shots: DefaultShots, logger: slog.Default()}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load builds the generator for model through the factory. Without a
// factory the generator set by WithGenerator is kept.
func (l *LLMLearner) Load(_ context.Context, model string) error {
	if l.factory == nil {
		if l.generator == nil {
			return fmt.Errorf("no generator configured for model %q", model)
		}
		return nil
	}
	g, err := l.factory(model)
	if err != nil {
		return fmt.Errorf("load model %q: %w", model, err)
	}
	l.generator = g
	return nil
}

// Fit caches the first few training examples as exemplars.
func (l *LLMLearner) Fit(_ context.Context, train *ontology.Data, task Task) error {
	rows, err := l.form(train, task)
	if err != nil {
		return err
	}
	if task == TaskTaxonomyDiscovery {
		// exemplars must include both answers when negatives exist
		rows = balanced(rows)
	}
	l.exemplars = rows[:min(l.shots, len(rows))]
	return nil
}

// Predict generates once per input. A generation or decode failure yields an
// empty prediction for that input and a warning; Predict itself only fails
// on an unsupported task or a missing generator.
func (l *LLMLearner) Predict(ctx context.Context, inputs []Example, task Task) ([][]string, error) {
	if err := checkTask(task); err != nil {
		return nil, err
	}
	if l.generator == nil {
		return nil, fmt.Errorf("generator not loaded")
	}
	out := make([][]string, len(inputs))
	for i, in := range inputs {
		out[i] = generateLabels(ctx, l.generator, task, in, exemplarBlock(task, l.exemplars), l.logger)
	}
	return out, nil
}

// RAGLearner retrieves the nearest training items for each input and hands
// them to the generator as context.
type RAGLearner struct {
	BaseLearner

	retriever Retriever
	llm       *LLMLearner
	topK      int
}

// NewRAGLearner composes a retriever and an LLM learner. A nil retriever
// uses a LexicalRetriever.
func NewRAGLearner(r Retriever, l *LLMLearner, topK int) *RAGLearner {
	if r == nil {
		r = NewLexicalRetriever()
	}
	if l == nil {
		l = NewLLMLearner()
	}
	if topK <= 0 {
		topK = 3
	}
	return &RAGLearner{retriever: r, llm: l, topK: topK}
}

// Load loads the generator.
func (l *RAGLearner) Load(ctx context.Context, model string) error {
	return l.llm.Load(ctx, model)
}

// Fit indexes the training data.
func (l *RAGLearner) Fit(ctx context.Context, train *ontology.Data, task Task) error {
	docs, err := trainingDocuments(train, task)
	if err != nil {
		return err
	}
	return l.retriever.Index(ctx, docs)
}

// Predict retrieves context per input and generates. Retrieval failures
// degrade to an empty context.
func (l *RAGLearner) Predict(ctx context.Context, inputs []Example, task Task) ([][]string, error) {
	if err := checkTask(task); err != nil {
		return nil, err
	}
	if l.llm.generator == nil {
		return nil, fmt.Errorf("generator not loaded")
	}
	out := make([][]string, len(inputs))
	for i, in := range inputs {
		hits, err := l.retriever.Retrieve(ctx, in.Query(task), l.topK)
		if err != nil {
			l.llm.logger.Warn("Retrieval failed, generating without context", "task", task, "error", err)
		}
		out[i] = generateLabels(ctx, l.llm.generator, task, in, contextBlock(hits), l.llm.logger)
	}
	return out, nil
}

func generateLabels(ctx context.Context, g Generator, task Task, in Example, block string, logger *slog.Logger) []string {
	raw, err := g.Generate(ctx, renderPrompt(task, in, block))
	if err != nil {
		logger.Warn("Generation failed", "task", task, "example", in.ID, "error", err)
		return []string{}
	}
	labels, err := ParseOutput(task, raw)
	if err != nil {
		logger.Warn("Prediction decode failed", "task", task, "example", in.ID, "error", err)
		return []string{}
	}
	return labels
}

func renderPrompt(task Task, in Example, block string) string {
	switch task {
	case TaskTermTyping:
		return fmt.Sprintf(termTypingPrompt, block, in.Term)
	case TaskTaxonomyDiscovery:
		return fmt.Sprintf(taxonomyPrompt, block, in.Child, in.Parent)
	case TaskNonTaxonomicRE:
		return fmt.Sprintf(nonTaxonomicPrompt, block, in.Head, in.Tail)
	default:
		return fmt.Sprintf(text2ontoPrompt, block, truncate(in.Text, maxPromptDocumentChars))
	}
}

func exemplarBlock(task Task, rows []labeled) string {
	if len(rows) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("\nExamples:\n")
	for _, r := range rows {
		switch task {
		case TaskTaxonomyDiscovery:
			answer := "no"
			if len(r.truth) > 0 {
				answer = "yes"
			}
			fmt.Fprintf(&b, "- %q subclass of %q: %s\n", r.example.Child, r.example.Parent, answer)
		case TaskNonTaxonomicRE:
			fmt.Fprintf(&b, "- %s, %s: %s\n", r.example.Head, r.example.Tail, strings.Join(r.truth, ", "))
		case TaskText2Onto:
			fmt.Fprintf(&b, "- %s\n", strings.Join(r.truth, ", "))
		default:
			fmt.Fprintf(&b, "- %s: %s\n", r.example.Term, strings.Join(r.truth, ", "))
		}
	}
	return b.String()
}

func contextBlock(hits []Document) string {
	if len(hits) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("\nKnown examples:\n")
	for _, h := range hits {
		fmt.Fprintf(&b, "- %s: %s\n", h.Text, strings.Join(h.Labels, ", "))
	}
	return b.String()
}

// balanced interleaves positive and negative rows.
func balanced(rows []labeled) []labeled {
	var pos, neg []labeled
	for _, r := range rows {
		if len(r.truth) > 0 {
			pos = append(pos, r)
		} else {
			neg = append(neg, r)
		}
	}
	out := make([]labeled, 0, len(rows))
	for i := 0; i < len(pos) || i < len(neg); i++ {
		if i < len(pos) {
			out = append(out, pos[i])
		}
		if i < len(neg) {
			out = append(out, neg[i])
		}
	}
	return out
}
