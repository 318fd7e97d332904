package learner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetEvaluator_Score(t *testing.T) {
	tests := []struct {
		name      string
		truth     []string
		predicted []string
		want      Scores
	}{
		{name: "exact", truth: []string{"a", "b"}, predicted: []string{"b", "a"}, want: Scores{1, 1, 1}},
		{name: "both empty", truth: []string{}, predicted: []string{}, want: Scores{1, 1, 1}},
		{name: "missed negative", truth: []string{}, predicted: []string{IsA}, want: Scores{}},
		{name: "missed positive", truth: []string{IsA}, predicted: nil, want: Scores{}},
		{name: "duplicates ignored", truth: []string{"a"}, predicted: []string{"a", "a"}, want: Scores{1, 1, 1}},
		{name: "partial", truth: []string{"a", "b"}, predicted: []string{"a", "c"}, want: Scores{0.5, 0.5, 0.5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SetEvaluator{}.Score(tt.truth, tt.predicted)
			assert.InDelta(t, tt.want.Precision, got.Precision, 1e-9)
			assert.InDelta(t, tt.want.Recall, got.Recall, 1e-9)
			assert.InDelta(t, tt.want.F1, got.F1, 1e-9)
		})
	}
}

func TestSetEvaluator_Aggregate(t *testing.T) {
	m, err := SetEvaluator{}.Aggregate(
		[][]string{{"a", "b"}, {"c"}, {}},
		[][]string{{"a"}, {"c", "d"}, {}},
	)
	require.NoError(t, err)

	assert.Equal(t, 3, m.Examples)
	assert.Equal(t, 1, m.Exact)
	assert.InDelta(t, 2.0/3.0, m.Micro.Precision, 1e-9)
	assert.InDelta(t, 2.0/3.0, m.Micro.Recall, 1e-9)
	assert.InDelta(t, 2.0/3.0, m.Micro.F1, 1e-9)
	assert.InDelta(t, (1+0.5+1)/3.0, m.Macro.Precision, 1e-9)
	assert.InDelta(t, (0.5+1+1)/3.0, m.Macro.Recall, 1e-9)
	assert.InDelta(t, (2.0/3+2.0/3+1)/3.0, m.Macro.F1, 1e-9)
}

func TestSetEvaluator_AggregateEdges(t *testing.T) {
	m, err := SetEvaluator{}.Aggregate(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, Metrics{}, m)

	_, err = SetEvaluator{}.Aggregate([][]string{{"a"}}, nil)
	assert.Error(t, err)
}
