package learner

import (
	"context"
	"fmt"
	"strings"

	"github.com/sciknoworg/OntoLearner-sub000/ontology"
)

// DefaultTopK is how many neighbours a retrieval contributes.
const DefaultTopK = 1

// RetrieverLearner predicts from the labels of the nearest training items.
type RetrieverLearner struct {
	BaseLearner

	retriever Retriever
	topK      int
	model     string
}

// NewRetrieverLearner creates a retriever-only learner. A nil retriever uses
// a LexicalRetriever.
func NewRetrieverLearner(r Retriever, topK int) *RetrieverLearner {
	if r == nil {
		r = NewLexicalRetriever()
	}
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &RetrieverLearner{retriever: r, topK: topK}
}

// Load records the retriever model name. The lexical retriever has no
// weights to load.
func (l *RetrieverLearner) Load(_ context.Context, model string) error {
	l.model = model
	return nil
}

// Fit indexes the training data for task.
func (l *RetrieverLearner) Fit(ctx context.Context, train *ontology.Data, task Task) error {
	docs, err := trainingDocuments(train, task)
	if err != nil {
		return err
	}
	return l.retriever.Index(ctx, docs)
}

// Predict answers each input from its nearest neighbours.
func (l *RetrieverLearner) Predict(ctx context.Context, inputs []Example, task Task) ([][]string, error) {
	if err := checkTask(task); err != nil {
		return nil, err
	}
	out := make([][]string, len(inputs))
	for i, in := range inputs {
		hits, err := l.retriever.Retrieve(ctx, in.Query(task), l.topK)
		if err != nil {
			return nil, fmt.Errorf("retrieve: %w", err)
		}
		out[i] = labelsFromHits(task, in, hits)
	}
	return out, nil
}

// labelsFromHits unions the neighbour labels. For taxonomy discovery the
// pair holds when a neighbour of the child lists the candidate parent.
func labelsFromHits(task Task, in Example, hits []Document) []string {
	labels := []string{}
	for _, h := range hits {
		labels = appendUnique(labels, h.Labels...)
	}
	if task != TaskTaxonomyDiscovery {
		return labels
	}
	for _, l := range labels {
		if strings.EqualFold(l, in.Parent) {
			return []string{IsA}
		}
	}
	return []string{}
}

// trainingDocuments turns training data into retrievable documents.
func trainingDocuments(train *ontology.Data, task Task) ([]Document, error) {
	if err := checkTask(task); err != nil {
		return nil, err
	}
	if train == nil {
		return nil, fmt.Errorf("no training data for task %s", task)
	}

	var docs []Document
	switch task {
	case TaskTermTyping:
		for _, r := range termTypingRows(train) {
			docs = append(docs, Document{ID: r.example.ID, Text: r.example.Term, Labels: r.truth})
		}
	case TaskTaxonomyDiscovery:
		index := make(map[string]int)
		for _, r := range train.TypeTaxonomies.Taxonomies {
			i, ok := index[r.Child]
			if !ok {
				i = len(docs)
				index[r.Child] = i
				docs = append(docs, Document{ID: r.ID, Text: r.Child})
			}
			docs[i].Labels = appendUnique(docs[i].Labels, r.Parent)
		}
	case TaskNonTaxonomicRE:
		for _, r := range nonTaxonomicRows(train) {
			docs = append(docs, Document{ID: r.example.ID, Text: r.example.Head + " " + r.example.Tail, Labels: r.truth})
		}
	case TaskText2Onto:
		seen := make(map[string]bool)
		add := func(s string) {
			if !seen[s] {
				seen[s] = true
				docs = append(docs, Document{ID: s, Text: s, Labels: []string{s}})
			}
		}
		for _, tt := range train.TermTypings {
			add(tt.Term)
			for _, typ := range tt.Types {
				add(typ)
			}
		}
		for _, typ := range train.TypeTaxonomies.Types {
			add(typ)
		}
	}
	return docs, nil
}
