package learner

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/sciknoworg/OntoLearner-sub000/llm"
)

// ErrUndecodable marks a model output that could not be turned into labels.
var ErrUndecodable = errors.New("undecodable prediction")

// ParseOutput turns raw generator output into a label set for task.
func ParseOutput(task Task, output string) ([]string, error) {
	switch task {
	case TaskTaxonomyDiscovery:
		return parseYesNo(output)
	case TaskNonTaxonomicRE:
		if labels, err := llm.DecodeStringList(output); err == nil {
			return labels, nil
		}
		return parseSingleLabel(output)
	default:
		labels, err := llm.DecodeStringList(output)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUndecodable, err)
		}
		return labels, nil
	}
}

func parseYesNo(output string) ([]string, error) {
	word := strings.ToLower(strings.Trim(firstWord(output), `"'.,!:;`))
	switch word {
	case "yes", "true":
		return []string{IsA}, nil
	case "no", "false":
		return []string{}, nil
	}
	return nil, fmt.Errorf("%w: expected yes or no, got %q", ErrUndecodable, truncate(output, 40))
}

func parseSingleLabel(output string) ([]string, error) {
	for _, line := range strings.Split(output, "\n") {
		if l := strings.Trim(strings.TrimSpace(line), "\"'`.[]"); l != "" {
			return []string{l}, nil
		}
	}
	return nil, fmt.Errorf("%w: empty output", ErrUndecodable)
}

func firstWord(s string) string {
	if f := strings.Fields(s); len(f) > 0 {
		return f[0]
	}
	return ""
}

// truncate caps s at n bytes, backing off to a rune boundary.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
