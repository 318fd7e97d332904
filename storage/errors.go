package storage

import "errors"

// Common storage errors.
var (
	// ErrFrozen is returned when a triple is added after the store was frozen.
	ErrFrozen = errors.New("triple store is frozen")

	// ErrInvalidTriple is returned for triples with a literal or empty subject
	// or a non-IRI predicate.
	ErrInvalidTriple = errors.New("invalid triple")
)
