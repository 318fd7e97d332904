package parser

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/piprate/json-gold/ld"

	"github.com/sciknoworg/OntoLearner-sub000/storage"
)

// JSONLDParser expands JSON-LD to N-Quads and decodes those.
type JSONLDParser struct {
	quads *NTriplesParser
}

// NewJSONLDParser creates a JSON-LD parser.
func NewJSONLDParser() *JSONLDParser { return &JSONLDParser{quads: NewNTriplesParser()} }

// Name returns the parser identifier.
func (p *JSONLDParser) Name() string { return "jsonld" }

// Formats returns the handled formats.
func (p *JSONLDParser) Formats() []string { return []string{"jsonld", "json-ld", "json"} }

// Parse converts the document to N-Quads and decodes the result.
func (p *JSONLDParser) Parse(r io.Reader, base string) ([]storage.Triple, error) {
	var doc any
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}

	proc := ld.NewJsonLdProcessor()
	opts := ld.NewJsonLdOptions(base)
	opts.Format = "application/n-quads"

	out, err := proc.ToRDF(doc, opts)
	if err != nil {
		return nil, fmt.Errorf("to rdf: %w", err)
	}
	nquads, ok := out.(string)
	if !ok {
		return nil, fmt.Errorf("unexpected json-ld output %T", out)
	}
	return p.quads.Parse(strings.NewReader(nquads), base)
}
