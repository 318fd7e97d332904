package learner

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sort"

	"github.com/sciknoworg/OntoLearner-sub000/ontology"
	"github.com/sciknoworg/OntoLearner-sub000/source/corpus"
)

// IsA is the single label a taxonomy-discovery example carries when the
// parent/child pair holds.
const IsA = "is-a"

// Example is one task input. Only the fields relevant to the task are set.
type Example struct {
	ID       string `json:"id,omitempty"`
	Term     string `json:"term,omitempty"`
	Parent   string `json:"parent,omitempty"`
	Child    string `json:"child,omitempty"`
	Head     string `json:"head,omitempty"`
	Tail     string `json:"tail,omitempty"`
	Document string `json:"document,omitempty"`
	Text     string `json:"-"`
}

// Query renders the example as the text a retriever or prompt sees.
func (e Example) Query(task Task) string {
	switch task {
	case TaskTermTyping:
		return e.Term
	case TaskTaxonomyDiscovery:
		return e.Child
	case TaskNonTaxonomicRE:
		return e.Head + " " + e.Tail
	default:
		return e.Text
	}
}

// Learner is anything that can be fit on training data and queried for
// predictions on one or more tasks. Predict returns one label set per
// input, aligned by index.
type Learner interface {
	Load(ctx context.Context, model string) error
	Fit(ctx context.Context, train *ontology.Data, task Task) error
	Predict(ctx context.Context, inputs []Example, task Task) ([][]string, error)
	TasksDataFormer(data *ontology.Data, task Task) ([]Example, error)
	TasksGroundTruthFormer(data *ontology.Data, task Task) ([][]string, error)
}

// BaseLearner shapes data into examples. It is embedded by the concrete
// learners and is safe to use on its own for data preparation.
type BaseLearner struct {
	// Documents are the text2onto inputs.
	Documents []corpus.Document

	// NegativeRatio is how many corrupted pairs are added per positive
	// taxonomy pair. Zero disables negatives.
	NegativeRatio int

	// Seed drives negative sampling.
	Seed int64
}

type labeled struct {
	example Example
	truth   []string
}

// TasksDataFormer returns the examples for task.
func (b *BaseLearner) TasksDataFormer(data *ontology.Data, task Task) ([]Example, error) {
	rows, err := b.form(data, task)
	if err != nil {
		return nil, err
	}
	out := make([]Example, len(rows))
	for i, r := range rows {
		out[i] = r.example
	}
	return out, nil
}

// TasksGroundTruthFormer returns the gold labels aligned with
// TasksDataFormer for the same data and task.
func (b *BaseLearner) TasksGroundTruthFormer(data *ontology.Data, task Task) ([][]string, error) {
	rows, err := b.form(data, task)
	if err != nil {
		return nil, err
	}
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = r.truth
	}
	return out, nil
}

func (b *BaseLearner) form(data *ontology.Data, task Task) ([]labeled, error) {
	if err := checkTask(task); err != nil {
		return nil, err
	}
	if data == nil {
		return nil, fmt.Errorf("no data for task %s", task)
	}

	switch task {
	case TaskTermTyping:
		return termTypingRows(data), nil
	case TaskTaxonomyDiscovery:
		return taxonomyRows(data, b.NegativeRatio, b.Seed), nil
	case TaskNonTaxonomicRE:
		return nonTaxonomicRows(data), nil
	default:
		return text2ontoRows(data, b.Documents), nil
	}
}

// termTypingRows merges rows of the same term so each term is asked once.
func termTypingRows(data *ontology.Data) []labeled {
	index := make(map[string]int)
	var rows []labeled
	for _, tt := range data.TermTypings {
		i, ok := index[tt.Term]
		if !ok {
			i = len(rows)
			index[tt.Term] = i
			rows = append(rows, labeled{example: Example{ID: tt.ID, Term: tt.Term}})
		}
		rows[i].truth = appendUnique(rows[i].truth, tt.Types...)
	}
	return rows
}

// taxonomyRows emits every gold pair as positive, then ratio corrupted pairs
// per positive whose parent is swapped for another type that is not a gold
// parent of the child.
func taxonomyRows(data *ontology.Data, ratio int, seed int64) []labeled {
	rels := data.TypeTaxonomies.Taxonomies
	parents := make(map[string]map[string]bool)
	var rows []labeled
	for _, r := range rels {
		if parents[r.Child] == nil {
			parents[r.Child] = make(map[string]bool)
		}
		parents[r.Child][r.Parent] = true
		rows = append(rows, labeled{
			example: Example{ID: r.ID, Parent: r.Parent, Child: r.Child},
			truth:   []string{IsA},
		})
	}
	if ratio <= 0 {
		return rows
	}

	inventory := make(map[string]bool)
	for _, t := range data.TypeTaxonomies.Types {
		inventory[t] = true
	}
	for _, r := range rels {
		inventory[r.Parent] = true
		inventory[r.Child] = true
	}
	if len(inventory) == 0 {
		return rows
	}
	types := make([]string, 0, len(inventory))
	for t := range inventory {
		types = append(types, t)
	}
	sort.Strings(types)
	rng := rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15))
	seen := make(map[[2]string]bool)
	for _, r := range rels {
		for range ratio {
			// bounded attempts keep small inventories from looping
			for range 10 {
				p := types[rng.IntN(len(types))]
				key := [2]string{p, r.Child}
				if p == r.Child || parents[r.Child][p] || seen[key] {
					continue
				}
				seen[key] = true
				rows = append(rows, labeled{
					example: Example{Parent: p, Child: r.Child},
					truth:   []string{},
				})
				break
			}
		}
	}
	return rows
}

func nonTaxonomicRows(data *ontology.Data) []labeled {
	index := make(map[[2]string]int)
	var rows []labeled
	for _, r := range data.TypeNonTaxonomicRelations.NonTaxonomies {
		key := [2]string{r.Head, r.Tail}
		i, ok := index[key]
		if !ok {
			i = len(rows)
			index[key] = i
			rows = append(rows, labeled{example: Example{ID: r.ID, Head: r.Head, Tail: r.Tail}})
		}
		rows[i].truth = appendUnique(rows[i].truth, r.Relation)
	}
	return rows
}

// text2ontoRows pairs every document with the full term and type inventory
// of data.
func text2ontoRows(data *ontology.Data, docs []corpus.Document) []labeled {
	set := make(map[string]bool)
	for _, tt := range data.TermTypings {
		set[tt.Term] = true
		for _, typ := range tt.Types {
			set[typ] = true
		}
	}
	for _, typ := range data.TypeTaxonomies.Types {
		set[typ] = true
	}
	truth := make([]string, 0, len(set))
	for s := range set {
		truth = append(truth, s)
	}
	sort.Strings(truth)

	rows := make([]labeled, 0, len(docs))
	for _, d := range docs {
		rows = append(rows, labeled{
			example: Example{ID: d.ID, Document: d.Path, Text: d.Text},
			truth:   truth,
		})
	}
	return rows
}

func appendUnique(dst []string, items ...string) []string {
	for _, item := range items {
		found := false
		for _, d := range dst {
			if d == item {
				found = true
				break
			}
		}
		if !found {
			dst = append(dst, item)
		}
	}
	return dst
}
