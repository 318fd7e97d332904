package graph

import (
	"sort"

	gonum "gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
)

// Edge is a labelled edge of the label graph.
type Edge struct {
	From      string
	To        string
	Predicate string
}

// LabelGraph is a directed graph whose nodes are labels and whose edges carry
// one predicate label. Self-loops are not represented.
type LabelGraph struct {
	g      *simple.DirectedGraph
	ids    map[string]int64
	labels []string
	preds  map[[2]int64]string
}

// NewLabelGraph creates an empty label graph.
func NewLabelGraph() *LabelGraph {
	return &LabelGraph{
		g:     simple.NewDirectedGraph(),
		ids:   make(map[string]int64),
		preds: make(map[[2]int64]string),
	}
}

// AddNode adds label if absent and returns its node id.
func (lg *LabelGraph) AddNode(label string) int64 {
	if id, ok := lg.ids[label]; ok {
		return id
	}
	id := int64(len(lg.labels))
	lg.ids[label] = id
	lg.labels = append(lg.labels, label)
	lg.g.AddNode(simple.Node(id))
	return id
}

// AddEdge adds from → to labelled predicate. A later edge between the same
// nodes replaces the predicate.
func (lg *LabelGraph) AddEdge(from, to, predicate string) {
	u := lg.AddNode(from)
	v := lg.AddNode(to)
	if u == v {
		return
	}
	lg.g.SetEdge(simple.Edge{F: simple.Node(u), T: simple.Node(v)})
	lg.preds[[2]int64{u, v}] = predicate
}

// Directed exposes the underlying gonum graph for traversal algorithms.
func (lg *LabelGraph) Directed() gonum.Directed {
	return lg.g
}

// ID returns the node id of label.
func (lg *LabelGraph) ID(label string) (int64, bool) {
	id, ok := lg.ids[label]
	return id, ok
}

// Label returns the label of a node id.
func (lg *LabelGraph) Label(id int64) string {
	if id < 0 || int(id) >= len(lg.labels) {
		return ""
	}
	return lg.labels[id]
}

// NumNodes returns the node count.
func (lg *LabelGraph) NumNodes() int {
	return len(lg.labels)
}

// NumEdges returns the edge count.
func (lg *LabelGraph) NumEdges() int {
	return len(lg.preds)
}

// Predicate returns the label of the edge from → to.
func (lg *LabelGraph) Predicate(from, to string) (string, bool) {
	u, ok := lg.ids[from]
	if !ok {
		return "", false
	}
	v, ok := lg.ids[to]
	if !ok {
		return "", false
	}
	p, ok := lg.preds[[2]int64{u, v}]
	return p, ok
}

// Nodes returns every label in insertion order.
func (lg *LabelGraph) Nodes() []string {
	out := make([]string, len(lg.labels))
	copy(out, lg.labels)
	return out
}

// Edges returns every edge ordered by source then target label.
func (lg *LabelGraph) Edges() []Edge {
	out := make([]Edge, 0, len(lg.preds))
	for k, p := range lg.preds {
		out = append(out, Edge{From: lg.labels[k[0]], To: lg.labels[k[1]], Predicate: p})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].From != out[j].From {
			return out[i].From < out[j].From
		}
		return out[i].To < out[j].To
	})
	return out
}

// InDegree returns the number of edges into label.
func (lg *LabelGraph) InDegree(label string) int {
	id, ok := lg.ids[label]
	if !ok {
		return 0
	}
	return lg.g.To(id).Len()
}

// OutDegree returns the number of edges out of label.
func (lg *LabelGraph) OutDegree(label string) int {
	id, ok := lg.ids[label]
	if !ok {
		return 0
	}
	return lg.g.From(id).Len()
}
