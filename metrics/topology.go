// Package metrics computes topology statistics over the label graph and
// size statistics over extracted datasets.
package metrics

import (
	"math"

	gonum "gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/traverse"

	"github.com/sciknoworg/OntoLearner-sub000/graph"
)

// TopologyOptions controls the optional, expensive statistics.
type TopologyOptions struct {
	// ComputePaths enables all-pairs shortest paths and the diameter.
	ComputePaths bool
}

// Topology describes the shape of a label graph. All fields are zero for an
// empty graph.
type Topology struct {
	Nodes         int     `json:"total_nodes"`
	Edges         int     `json:"total_edges"`
	Density       float64 `json:"density"`
	AverageDegree float64 `json:"avg_degree"`
	MaxInDegree   int     `json:"max_in_degree"`
	MaxOutDegree  int     `json:"max_out_degree"`
	Roots         int     `json:"num_root_nodes"`
	Leaves        int     `json:"num_leaf_nodes"`
	MaxDepth      int     `json:"max_depth"`
	AverageDepth  float64 `json:"avg_depth"`

	// Set only with ComputePaths.
	AverageShortestPath float64 `json:"avg_shortest_path,omitempty"`
	Diameter            int     `json:"diameter,omitempty"`
	PathsComputed       bool    `json:"paths_computed"`
}

// ComputeTopology computes topology metrics for lg. A nil graph is treated
// as empty.
func ComputeTopology(lg *graph.LabelGraph, opts TopologyOptions) Topology {
	var t Topology
	if lg == nil || lg.NumNodes() == 0 {
		return t
	}

	n, m := lg.NumNodes(), lg.NumEdges()
	t.Nodes = n
	t.Edges = m
	if n > 1 {
		t.Density = float64(m) / float64(n*(n-1))
	}
	t.AverageDegree = 2 * float64(m) / float64(n)

	g := lg.Directed()
	var roots []gonum.Node
	nodes := g.Nodes()
	for nodes.Next() {
		node := nodes.Node()
		in := g.To(node.ID()).Len()
		out := g.From(node.ID()).Len()
		t.MaxInDegree = max(t.MaxInDegree, in)
		t.MaxOutDegree = max(t.MaxOutDegree, out)
		if in == 0 {
			t.Roots++
			roots = append(roots, node)
		}
		if out == 0 {
			t.Leaves++
		}
	}

	t.MaxDepth, t.AverageDepth = depths(g, roots)

	if opts.ComputePaths {
		t.AverageShortestPath, t.Diameter = shortestPaths(g)
		t.PathsComputed = true
	}
	return t
}

// depths runs a breadth-first walk from every root and records the
// distance to each reached node. The average is over non-root visits.
func depths(g gonum.Directed, roots []gonum.Node) (maxDepth int, avgDepth float64) {
	var sum, count int
	for _, root := range roots {
		bf := traverse.BreadthFirst{}
		bf.Walk(g, root, func(_ gonum.Node, d int) bool {
			if d > 0 {
				sum += d
				count++
				maxDepth = max(maxDepth, d)
			}
			return false
		})
	}
	if count > 0 {
		avgDepth = float64(sum) / float64(count)
	}
	return maxDepth, avgDepth
}

// shortestPaths averages the lengths of all shortest paths between distinct
// reachable pairs and returns the longest as the diameter.
func shortestPaths(g gonum.Directed) (avg float64, diameter int) {
	all := path.DijkstraAllPaths(g)

	var ids []int64
	nodes := g.Nodes()
	for nodes.Next() {
		ids = append(ids, nodes.Node().ID())
	}

	var sum float64
	var count int
	for _, u := range ids {
		for _, v := range ids {
			if u == v {
				continue
			}
			w := all.Weight(u, v)
			if math.IsInf(w, 1) {
				continue
			}
			sum += w
			count++
			diameter = max(diameter, int(w))
		}
	}
	if count > 0 {
		avg = sum / float64(count)
	}
	return avg, diameter
}
