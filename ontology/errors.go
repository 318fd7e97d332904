package ontology

import (
	"errors"
	"fmt"

	"github.com/sciknoworg/OntoLearner-sub000/storage"
)

// Error kinds. Typed errors below match these with errors.Is.
var (
	// ErrLoad covers absent, unparseable or empty sources, failed remote
	// fetches and unknown formats.
	ErrLoad = errors.New("load error")

	// ErrExtraction is returned when an extractor fails mid-flight. Partial
	// results are discarded.
	ErrExtraction = errors.New("extraction error")

	// ErrSplit is returned for an invalid test size or empty data.
	ErrSplit = errors.New("split error")

	// ErrUnsupportedTask is returned for a task string outside the closed set.
	ErrUnsupportedTask = errors.New("unsupported task")

	// ErrInvalidEntity is returned when a model entity fails validation.
	ErrInvalidEntity = errors.New("invalid entity")
)

// LoadError reports a failure to produce a triple store from a source.
type LoadError struct {
	Source string
	Err    error
}

// NewLoadError wraps err as a LoadError for source.
func NewLoadError(source string, err error) error {
	return &LoadError{Source: source, Err: err}
}

func (e *LoadError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("load: %v", e.Err)
	}
	return fmt.Sprintf("load %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Is matches ErrLoad.
func (e *LoadError) Is(target error) bool { return target == ErrLoad }

// ExtractionError reports an extractor failure, with the offending triple
// when one is known.
type ExtractionError struct {
	Extractor string
	Triple    *storage.Triple
	Err       error
}

func (e *ExtractionError) Error() string {
	if e.Triple != nil {
		return fmt.Sprintf("extract %s at %s: %v", e.Extractor, e.Triple, e.Err)
	}
	return fmt.Sprintf("extract %s: %v", e.Extractor, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// Is matches ErrExtraction.
func (e *ExtractionError) Is(target error) bool { return target == ErrExtraction }

// IsLoadError reports whether err is a load failure.
func IsLoadError(err error) bool {
	return errors.Is(err, ErrLoad)
}
