// Package learner runs ontology-learning tasks: it shapes extracted data
// into task examples, drives a learner through fit and predict, and scores
// the predictions.
package learner

import (
	"fmt"
	"strings"

	"github.com/sciknoworg/OntoLearner-sub000/ontology"
)

// Task names one learning task. It is the only routing key in the pipeline.
type Task string

// Supported tasks.
const (
	TaskTermTyping        Task = "term-typing"
	TaskTaxonomyDiscovery Task = "taxonomy-discovery"
	TaskNonTaxonomicRE    Task = "non-taxonomic-re"
	TaskText2Onto         Task = "text2onto"
)

// Tasks lists every supported task.
func Tasks() []Task {
	return []Task{TaskTermTyping, TaskTaxonomyDiscovery, TaskNonTaxonomicRE, TaskText2Onto}
}

// ParseTask validates a task string.
func ParseTask(s string) (Task, error) {
	t := Task(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Tasks() {
		if t == known {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ontology.ErrUnsupportedTask, s)
}

func (t Task) String() string { return string(t) }

func checkTask(t Task) error {
	_, err := ParseTask(string(t))
	return err
}
