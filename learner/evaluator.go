package learner

import "fmt"

// Scores are precision, recall and F1 for one example or one dataset.
type Scores struct {
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1_score"`
}

// Metrics aggregates scores over a prediction run.
type Metrics struct {
	Micro    Scores `json:"micro"`
	Macro    Scores `json:"macro"`
	Examples int    `json:"examples"`
	Exact    int    `json:"exact_matches"`
}

// Evaluator scores predictions against ground truth.
type Evaluator interface {
	Score(truth, predicted []string) Scores
	Aggregate(truth, predicted [][]string) (Metrics, error)
}

// SetEvaluator compares label sets. Labels are matched exactly and
// duplicates are ignored. Two empty sets are a perfect match, which makes
// the negative taxonomy pairs score like true negatives.
type SetEvaluator struct{}

// Score returns the set precision, recall and F1 of one example.
func (SetEvaluator) Score(truth, predicted []string) Scores {
	tp, np, nt := overlap(truth, predicted)
	return scores(tp, np, nt)
}

// Aggregate returns micro scores (over pooled counts) and macro scores
// (mean of per-example scores).
func (e SetEvaluator) Aggregate(truth, predicted [][]string) (Metrics, error) {
	if len(truth) != len(predicted) {
		return Metrics{}, fmt.Errorf("ground truth has %d examples, predictions %d", len(truth), len(predicted))
	}
	m := Metrics{Examples: len(truth)}
	if len(truth) == 0 {
		return m, nil
	}

	var tp, np, nt int
	for i := range truth {
		t, p, n := overlap(truth[i], predicted[i])
		tp, np, nt = tp+t, np+p, nt+n
		s := scores(t, p, n)
		m.Macro.Precision += s.Precision
		m.Macro.Recall += s.Recall
		m.Macro.F1 += s.F1
		if t == p && t == n {
			m.Exact++
		}
	}
	n := float64(len(truth))
	m.Macro.Precision /= n
	m.Macro.Recall /= n
	m.Macro.F1 /= n
	m.Micro = scores(tp, np, nt)
	return m, nil
}

// overlap returns the true positives and the distinct predicted and true
// label counts.
func overlap(truth, predicted []string) (tp, np, nt int) {
	gold := make(map[string]bool, len(truth))
	for _, t := range truth {
		gold[t] = true
	}
	seen := make(map[string]bool, len(predicted))
	for _, p := range predicted {
		if seen[p] {
			continue
		}
		seen[p] = true
		if gold[p] {
			tp++
		}
	}
	return tp, len(seen), len(gold)
}

func scores(tp, np, nt int) Scores {
	if np == 0 && nt == 0 {
		return Scores{Precision: 1, Recall: 1, F1: 1}
	}
	var s Scores
	if np > 0 {
		s.Precision = float64(tp) / float64(np)
	}
	if nt > 0 {
		s.Recall = float64(tp) / float64(nt)
	}
	if s.Precision+s.Recall > 0 {
		s.F1 = 2 * s.Precision * s.Recall / (s.Precision + s.Recall)
	}
	return s
}
