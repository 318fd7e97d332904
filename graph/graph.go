// Package graph holds a loaded ontology: the triple store plus the derived,
// write-once graph of human-readable labels.
package graph

import (
	"sync"

	"github.com/sciknoworg/OntoLearner-sub000/storage"
	"github.com/sciknoworg/OntoLearner-sub000/vocabulary"
)

// Origin records where the primary source of a LoadedGraph came from.
type Origin string

const (
	// OriginLocal is a caller-supplied local file.
	OriginLocal Origin = "local"

	// OriginHub is an artifact fetched from the remote dataset hub.
	OriginHub Origin = "hub"
)

// Labeler resolves terms to labels.
type Labeler interface {
	LabelOf(t storage.Term) (string, bool)
}

// LoadedGraph is the frozen triple store of one ontology and its imports.
type LoadedGraph struct {
	// Store holds every triple of the primary source and its imports.
	Store *storage.Store

	// Path is the local file the primary source was parsed from.
	Path string

	// Origin says whether Path was supplied by the caller or fetched.
	Origin Origin

	// Sources lists every loaded source (paths or URLs) in load order.
	Sources []string

	labelOnce sync.Once
	labels    *LabelGraph
}

// NewLoadedGraph wraps a store. The store is frozen so the graph can be
// shared with concurrent readers.
func NewLoadedGraph(store *storage.Store, path string, origin Origin, sources []string) *LoadedGraph {
	store.Freeze()
	return &LoadedGraph{Store: store, Path: path, Origin: origin, Sources: sources}
}

// LabelGraph returns the label graph, building it on first use. Later calls
// return the same graph regardless of the labeler passed.
func (g *LoadedGraph) LabelGraph(l Labeler) *LabelGraph {
	g.labelOnce.Do(func() {
		g.labels = BuildLabelGraph(g.Store, l)
	})
	return g.labels
}

// BuildLabelGraph derives a label graph from every triple whose subject and
// object are named nodes and whose three labels pass the labeler.
// rdfs:subClassOf edges point from child to parent.
func BuildLabelGraph(s *storage.Store, l Labeler) *LabelGraph {
	lg := NewLabelGraph()
	for _, t := range s.Triples() {
		if !t.Subject.IsIRI() || !t.Object.IsIRI() {
			continue
		}
		// rdf:type edges to the metaclass declarations carry no label
		// structure.
		if t.Predicate.Value == vocabulary.RDFType && vocabulary.IsClassType(t.Object.Value) {
			continue
		}
		from, ok := l.LabelOf(t.Subject)
		if !ok {
			continue
		}
		to, ok := l.LabelOf(t.Object)
		if !ok {
			continue
		}
		pred, ok := l.LabelOf(t.Predicate)
		if !ok {
			continue
		}
		lg.AddEdge(from, to, pred)
	}
	return lg
}
