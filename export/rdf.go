// Package export writes extracted datasets as JSON bundles and label graphs
// as RDF.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/piprate/json-gold/ld"
	"gonum.org/v1/gonum/graph/formats/rdf"

	"github.com/sciknoworg/OntoLearner-sub000/graph"
	"github.com/sciknoworg/OntoLearner-sub000/vocabulary"
)

// DefaultNamespace is the IRI prefix minted for label-graph nodes.
const DefaultNamespace = "https://w3id.org/ontolearner/label/"

// LabelGraphExporter serializes a label graph. Each label becomes an IRI in
// the namespace carrying the label as rdfs:label; each edge becomes a triple
// whose predicate is minted from the edge's predicate label.
type LabelGraphExporter struct {
	namespace string
}

// NewLabelGraphExporter creates an exporter. An empty namespace uses
// DefaultNamespace.
func NewLabelGraphExporter(namespace string) *LabelGraphExporter {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return &LabelGraphExporter{namespace: namespace}
}

// IRI mints the IRI for a label.
func (e *LabelGraphExporter) IRI(label string) string {
	return e.namespace + url.PathEscape(strings.ReplaceAll(label, " ", "_"))
}

// Statements converts lg into RDF statements: node labels first in
// insertion order, then edges sorted by endpoints.
func (e *LabelGraphExporter) Statements(lg *graph.LabelGraph) ([]*rdf.Statement, error) {
	label, err := rdf.NewIRITerm(vocabulary.RDFSLabel)
	if err != nil {
		return nil, err
	}

	var out []*rdf.Statement
	for _, node := range lg.Nodes() {
		subj, err := rdf.NewIRITerm(e.IRI(node))
		if err != nil {
			return nil, fmt.Errorf("node %q: %w", node, err)
		}
		obj, err := rdf.NewLiteralTerm(node, "")
		if err != nil {
			return nil, fmt.Errorf("node %q: %w", node, err)
		}
		out = append(out, &rdf.Statement{Subject: subj, Predicate: label, Object: obj})
	}

	for _, edge := range lg.Edges() {
		subj, err := rdf.NewIRITerm(e.IRI(edge.From))
		if err != nil {
			return nil, err
		}
		pred, err := rdf.NewIRITerm(e.IRI(edge.Predicate))
		if err != nil {
			return nil, err
		}
		obj, err := rdf.NewIRITerm(e.IRI(edge.To))
		if err != nil {
			return nil, err
		}
		out = append(out, &rdf.Statement{Subject: subj, Predicate: pred, Object: obj})
	}
	return out, nil
}

// Export writes lg to w in the requested format.
func (e *LabelGraphExporter) Export(w io.Writer, lg *graph.LabelGraph, format Format) error {
	switch format {
	case FormatNTriples:
		return e.writeNTriples(w, lg)
	case FormatTurtle:
		return e.writeTurtle(w, lg)
	case FormatJSONLD:
		return e.writeJSONLD(w, lg)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

func (e *LabelGraphExporter) writeNTriples(w io.Writer, lg *graph.LabelGraph) error {
	stmts, err := e.Statements(lg)
	if err != nil {
		return err
	}
	for _, s := range stmts {
		if _, err := fmt.Fprintln(w, s); err != nil {
			return err
		}
	}
	return nil
}

// writeTurtle groups statements by subject under the namespace prefix.
func (e *LabelGraphExporter) writeTurtle(w io.Writer, lg *graph.LabelGraph) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "@prefix ol: <%s> .\n", e.namespace)
	fmt.Fprintf(&sb, "@prefix rdfs: <%s> .\n\n", vocabulary.RDFSNamespace)

	out := make(map[string][]graph.Edge)
	for _, edge := range lg.Edges() {
		out[edge.From] = append(out[edge.From], edge)
	}

	for _, node := range lg.Nodes() {
		fmt.Fprintf(&sb, "%s\n", e.curie(node))
		edges := out[node]
		terminator := " ;"
		if len(edges) == 0 {
			terminator = " ."
		}
		fmt.Fprintf(&sb, "    rdfs:label %s%s\n", quoteLiteral(node), terminator)
		for i, edge := range edges {
			terminator = " ;"
			if i == len(edges)-1 {
				terminator = " ."
			}
			fmt.Fprintf(&sb, "    %s %s%s\n", e.curie(edge.Predicate), e.curie(edge.To), terminator)
		}
		sb.WriteString("\n")
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

// curie abbreviates a label IRI when its local part is a safe prefixed name,
// and falls back to a full IRI otherwise.
func (e *LabelGraphExporter) curie(label string) string {
	local := strings.TrimPrefix(e.IRI(label), e.namespace)
	for _, r := range local {
		if !(r == '_' || r == '-' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return "<" + e.IRI(label) + ">"
		}
	}
	if local == "" || local[0] == '-' || (local[0] >= '0' && local[0] <= '9') {
		return "<" + e.IRI(label) + ">"
	}
	return "ol:" + local
}

// writeJSONLD converts the N-Triples form through the JSON-LD processor.
func (e *LabelGraphExporter) writeJSONLD(w io.Writer, lg *graph.LabelGraph) error {
	var nt strings.Builder
	if err := e.writeNTriples(&nt, lg); err != nil {
		return err
	}

	proc := ld.NewJsonLdProcessor()
	opts := ld.NewJsonLdOptions("")
	opts.Format = "application/n-quads"
	doc, err := proc.FromRDF(nt.String(), opts)
	if err != nil {
		return fmt.Errorf("from rdf: %w", err)
	}

	ldContext := map[string]any{"@context": map[string]any{
		"ol":   e.namespace,
		"rdfs": vocabulary.RDFSNamespace,
	}}
	compacted, err := proc.Compact(doc, ldContext, ld.NewJsonLdOptions(""))
	if err != nil {
		return fmt.Errorf("compact: %w", err)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(compacted)
}

func quoteLiteral(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\r", `\r`)
	return `"` + r.Replace(s) + `"`
}
