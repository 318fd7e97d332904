// Package storage provides the in-memory RDF triple store the loader fills and
// the extractors read.
package storage

import (
	"fmt"
	"strings"
)

// Kind is the RDF node kind of a Term.
type Kind uint8

const (
	// KindIRI is a named node.
	KindIRI Kind = iota + 1

	// KindBlank is a blank node. Its Value is the label without the "_:" prefix.
	KindBlank

	// KindLiteral is a literal. Lang and Datatype qualify it.
	KindLiteral
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindIRI:
		return "iri"
	case KindBlank:
		return "blank"
	case KindLiteral:
		return "literal"
	default:
		return "invalid"
	}
}

// Term is an RDF node. Terms are comparable and used directly as map keys.
type Term struct {
	Kind     Kind
	Value    string
	Lang     string
	Datatype string
}

// IRI returns a named node.
func IRI(iri string) Term {
	return Term{Kind: KindIRI, Value: iri}
}

// Blank returns a blank node with the given label.
func Blank(label string) Term {
	return Term{Kind: KindBlank, Value: strings.TrimPrefix(label, "_:")}
}

// Literal returns a literal. A language tag wins over a datatype, matching
// RDF 1.1 where language-tagged strings carry rdf:langString implicitly.
func Literal(text, lang, datatype string) Term {
	if lang != "" {
		return Term{Kind: KindLiteral, Value: text, Lang: strings.ToLower(lang)}
	}
	return Term{Kind: KindLiteral, Value: text, Datatype: datatype}
}

// IsIRI reports whether t is a named node.
func (t Term) IsIRI() bool { return t.Kind == KindIRI }

// IsBlank reports whether t is a blank node.
func (t Term) IsBlank() bool { return t.Kind == KindBlank }

// IsLiteral reports whether t is a literal.
func (t Term) IsLiteral() bool { return t.Kind == KindLiteral }

// IsZero reports whether t is the zero Term.
func (t Term) IsZero() bool { return t.Kind == 0 }

// String returns the N-Triples form of the term.
func (t Term) String() string {
	switch t.Kind {
	case KindIRI:
		return "<" + t.Value + ">"
	case KindBlank:
		return "_:" + t.Value
	case KindLiteral:
		s := `"` + escapeLiteral(t.Value) + `"`
		if t.Lang != "" {
			return s + "@" + t.Lang
		}
		if t.Datatype != "" {
			return s + "^^<" + t.Datatype + ">"
		}
		return s
	default:
		return ""
	}
}

// Triple is a single RDF statement.
type Triple struct {
	Subject   Term
	Predicate Term
	Object    Term
}

// Validate checks the RDF term-position constraints.
func (t Triple) Validate() error {
	if t.Subject.IsZero() || t.Subject.IsLiteral() {
		return fmt.Errorf("%w: subject %q", ErrInvalidTriple, t.Subject.String())
	}
	if !t.Predicate.IsIRI() {
		return fmt.Errorf("%w: predicate %q", ErrInvalidTriple, t.Predicate.String())
	}
	if t.Object.IsZero() {
		return fmt.Errorf("%w: empty object", ErrInvalidTriple)
	}
	return nil
}

// String returns the N-Triples line for the statement.
func (t Triple) String() string {
	return t.Subject.String() + " " + t.Predicate.String() + " " + t.Object.String() + " ."
}

// escapeLiteral escapes special characters for N-Triples serialization.
func escapeLiteral(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	s = strings.ReplaceAll(s, "\n", "\\n")
	s = strings.ReplaceAll(s, "\r", "\\r")
	s = strings.ReplaceAll(s, "\t", "\\t")
	return s
}
