package learner

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGenerator answers with respond and records every prompt.
type fakeGenerator struct {
	mu      sync.Mutex
	prompts []string
	respond func(prompt string) (string, error)
}

func (g *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.mu.Lock()
	g.prompts = append(g.prompts, prompt)
	g.mu.Unlock()
	return g.respond(prompt)
}

func TestLexicalRetriever_RanksBySimilarity(t *testing.T) {
	r := NewLexicalRetriever()
	require.NoError(t, r.Index(context.Background(), []Document{
		{ID: "1", Text: "RedWine", Labels: []string{"a"}},
		{ID: "2", Text: "white_wine", Labels: []string{"b"}},
		{ID: "3", Text: "Cheese", Labels: []string{"c"}},
	}))
	assert.Equal(t, 3, r.Len())

	hits, err := r.Retrieve(context.Background(), "red wine", 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "1", hits[0].ID)
	assert.Equal(t, "2", hits[1].ID)

	hits, err = r.Retrieve(context.Background(), "", 2)
	require.NoError(t, err)
	assert.Empty(t, hits)

	hits, err = r.Retrieve(context.Background(), "wine", 0)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestLexicalRetriever_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := NewLexicalRetriever()
	assert.ErrorIs(t, r.Index(ctx, []Document{{ID: "1", Text: "x"}}), context.Canceled)
	_, err := r.Retrieve(ctx, "x", 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRetrieverLearner_TermTyping(t *testing.T) {
	ctx := context.Background()
	l := NewRetrieverLearner(nil, 1)
	require.NoError(t, l.Load(ctx, "lexical"))
	require.NoError(t, l.Fit(ctx, wineData(t), TaskTermTyping))

	got, err := l.Predict(ctx, []Example{{Term: "merlot"}, {Term: "Chardonnay"}}, TaskTermTyping)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"RedWine", "Grape"}, {"WhiteWine"}}, got)
}

func TestRetrieverLearner_Taxonomy(t *testing.T) {
	ctx := context.Background()
	l := NewRetrieverLearner(nil, 1)
	require.NoError(t, l.Fit(ctx, wineData(t), TaskTaxonomyDiscovery))

	got, err := l.Predict(ctx, []Example{
		{Child: "RedWine", Parent: "Wine"},
		{Child: "RedWine", Parent: "Drink"},
	}, TaskTaxonomyDiscovery)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{IsA}, {}}, got)
}

func TestRetrieverLearner_UnsupportedTask(t *testing.T) {
	l := NewRetrieverLearner(nil, 1)
	err := l.Fit(context.Background(), wineData(t), Task("qa"))
	assert.Error(t, err)
	_, err = l.Predict(context.Background(), nil, Task("qa"))
	assert.Error(t, err)
}

func TestLLMLearner_FewShotPrompt(t *testing.T) {
	ctx := context.Background()
	gen := &fakeGenerator{respond: func(string) (string, error) {
		return `["RedWine"]`, nil
	}}
	l := NewLLMLearner(WithGenerator(gen), WithShots(1))
	require.NoError(t, l.Load(ctx, "any"))
	require.NoError(t, l.Fit(ctx, wineData(t), TaskTermTyping))

	got, err := l.Predict(ctx, []Example{{Term: "pinot"}}, TaskTermTyping)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"RedWine"}}, got)

	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "Examples:")
	assert.Contains(t, gen.prompts[0], "- merlot: RedWine, Grape")
	assert.NotContains(t, gen.prompts[0], "chardonnay")
	assert.Contains(t, gen.prompts[0], "Term: pinot")
}

func TestLLMLearner_FailuresBecomeEmpty(t *testing.T) {
	ctx := context.Background()
	gen := &fakeGenerator{respond: func(p string) (string, error) {
		switch {
		case strings.Contains(p, `"broken"`):
			return "", errors.New("model offline")
		case strings.Contains(p, `"vague"`):
			return "perhaps", nil
		}
		return "yes", nil
	}}
	l := NewLLMLearner(WithGenerator(gen), WithShots(0))
	require.NoError(t, l.Fit(ctx, wineData(t), TaskTaxonomyDiscovery))

	got, err := l.Predict(ctx, []Example{
		{Child: "ok", Parent: "Wine"},
		{Child: "broken", Parent: "Wine"},
		{Child: "vague", Parent: "Wine"},
	}, TaskTaxonomyDiscovery)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{IsA}, {}, {}}, got)
}

func TestLLMLearner_Load(t *testing.T) {
	ctx := context.Background()

	err := NewLLMLearner().Load(ctx, "m")
	assert.Error(t, err)

	var loaded string
	l := NewLLMLearner(WithGeneratorFactory(func(model string) (Generator, error) {
		loaded = model
		return &fakeGenerator{respond: func(string) (string, error) { return "[]", nil }}, nil
	}))
	require.NoError(t, l.Load(ctx, "gpt-test"))
	assert.Equal(t, "gpt-test", loaded)

	failing := NewLLMLearner(WithGeneratorFactory(func(string) (Generator, error) {
		return nil, errors.New("no such model")
	}))
	assert.ErrorContains(t, failing.Load(ctx, "bad"), "no such model")

	_, err = NewLLMLearner().Predict(ctx, []Example{{Term: "x"}}, TaskTermTyping)
	assert.Error(t, err)
}

func TestRAGLearner_AddsRetrievedContext(t *testing.T) {
	ctx := context.Background()
	gen := &fakeGenerator{respond: func(string) (string, error) {
		return `["locatedIn"]`, nil
	}}
	l := NewRAGLearner(nil, NewLLMLearner(WithGenerator(gen)), 1)
	require.NoError(t, l.Load(ctx, "any"))
	require.NoError(t, l.Fit(ctx, wineData(t), TaskNonTaxonomicRE))

	got, err := l.Predict(ctx, []Example{{Head: "Wine", Tail: "Region"}}, TaskNonTaxonomicRE)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"locatedIn"}}, got)

	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "Known examples:")
	assert.Contains(t, gen.prompts[0], "- Wine Region: locatedIn, producedIn")
}
