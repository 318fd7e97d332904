package parser

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"gonum.org/v1/gonum/graph/formats/rdf"

	"github.com/sciknoworg/OntoLearner-sub000/storage"
)

// NTriplesParser decodes N-Triples and N-Quads. Graph labels of quads are
// dropped; all statements land in the default graph.
type NTriplesParser struct{}

// NewNTriplesParser creates an N-Triples/N-Quads parser.
func NewNTriplesParser() *NTriplesParser { return &NTriplesParser{} }

// Name returns the parser identifier.
func (p *NTriplesParser) Name() string { return "ntriples" }

// Formats returns the handled formats.
func (p *NTriplesParser) Formats() []string { return []string{"nt", "ntriples", "nq", "nquads"} }

// Parse decodes every statement in r.
func (p *NTriplesParser) Parse(r io.Reader, _ string) ([]storage.Triple, error) {
	dec := rdf.NewDecoder(r)
	var out []storage.Triple
	for {
		s, err := dec.Unmarshal()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return out, nil
			}
			return nil, err
		}
		t, err := fromStatement(s)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", s, err)
		}
		out = append(out, t)
	}
}

func fromStatement(s *rdf.Statement) (storage.Triple, error) {
	subj, err := gonumTerm(s.Subject)
	if err != nil {
		return storage.Triple{}, err
	}
	pred, err := gonumTerm(s.Predicate)
	if err != nil {
		return storage.Triple{}, err
	}
	obj, err := gonumTerm(s.Object)
	if err != nil {
		return storage.Triple{}, err
	}
	return storage.Triple{Subject: subj, Predicate: pred, Object: obj}, nil
}

func gonumTerm(t rdf.Term) (storage.Term, error) {
	text, qual, kind, err := t.Parts()
	if err != nil {
		return storage.Term{}, err
	}
	switch kind {
	case rdf.IRI:
		return storage.IRI(text), nil
	case rdf.Blank:
		return storage.Blank(text), nil
	case rdf.Literal:
		lang, datatype := splitQualifier(qual)
		return storage.Literal(text, lang, datatype), nil
	default:
		return storage.Term{}, fmt.Errorf("invalid term %q", t.Value)
	}
}

// splitQualifier separates a literal qualifier into a language tag or a
// datatype IRI.
func splitQualifier(qual string) (lang, datatype string) {
	switch {
	case qual == "":
		return "", ""
	case strings.HasPrefix(qual, "@"):
		return qual[1:], ""
	case strings.HasPrefix(qual, "^^"):
		return "", strings.Trim(qual[2:], "<>")
	case strings.HasPrefix(qual, "<"):
		return "", strings.Trim(qual, "<>")
	case strings.Contains(qual, ":"):
		return "", qual
	default:
		return qual, ""
	}
}
