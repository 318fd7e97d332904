package parser

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/knakk/rdf"

	"github.com/sciknoworg/OntoLearner-sub000/storage"
	"github.com/sciknoworg/OntoLearner-sub000/vocabulary"
)

const (
	turtleName = "turtle"
	rdfxmlName = "rdfxml"
)

// TurtleParser decodes Turtle. N3 documents that stay within the Turtle
// subset (no formulae or rules) decode with it too.
type TurtleParser struct{}

// NewTurtleParser creates a Turtle/N3 parser.
func NewTurtleParser() *TurtleParser { return &TurtleParser{} }

// Name returns the parser identifier.
func (p *TurtleParser) Name() string { return turtleName }

// Formats returns the handled formats.
func (p *TurtleParser) Formats() []string { return []string{"ttl", "turtle", "n3"} }

// Parse decodes every triple in r.
func (p *TurtleParser) Parse(r io.Reader, _ string) ([]storage.Triple, error) {
	return decodeKnakk(rdf.NewTripleDecoder(r, rdf.Turtle))
}

// RDFXMLParser decodes RDF/XML, the usual serialization of .owl files.
type RDFXMLParser struct{}

// NewRDFXMLParser creates an RDF/XML parser.
func NewRDFXMLParser() *RDFXMLParser { return &RDFXMLParser{} }

// Name returns the parser identifier.
func (p *RDFXMLParser) Name() string { return rdfxmlName }

// Formats returns the handled formats.
func (p *RDFXMLParser) Formats() []string {
	return []string{"rdfxml", "rdf/xml", "rdf", "owl", "xml"}
}

// Parse decodes every triple in r.
func (p *RDFXMLParser) Parse(r io.Reader, _ string) ([]storage.Triple, error) {
	return decodeKnakk(rdf.NewTripleDecoder(r, rdf.RDFXML))
}

func decodeKnakk(dec rdf.TripleDecoder) ([]storage.Triple, error) {
	var out []storage.Triple
	for {
		tr, err := dec.Decode()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return out, nil
			}
			return nil, err
		}
		t, err := fromKnakk(tr)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
}

func fromKnakk(tr rdf.Triple) (storage.Triple, error) {
	s, err := knakkTerm(tr.Subj)
	if err != nil {
		return storage.Triple{}, fmt.Errorf("subject: %w", err)
	}
	p, err := knakkTerm(tr.Pred)
	if err != nil {
		return storage.Triple{}, fmt.Errorf("predicate: %w", err)
	}
	o, err := knakkTerm(tr.Obj)
	if err != nil {
		return storage.Triple{}, fmt.Errorf("object: %w", err)
	}
	return storage.Triple{Subject: s, Predicate: p, Object: o}, nil
}

func knakkTerm(t rdf.Term) (storage.Term, error) {
	switch v := t.(type) {
	case rdf.IRI:
		return storage.IRI(v.String()), nil
	case rdf.Blank:
		return storage.Blank(strings.TrimPrefix(v.String(), "_:")), nil
	case rdf.Literal:
		dt := v.DataType.String()
		if dt == vocabulary.RDFLangString {
			dt = ""
		}
		return storage.Literal(v.String(), v.Lang(), dt), nil
	default:
		return storage.Term{}, fmt.Errorf("unsupported term %T", t)
	}
}
