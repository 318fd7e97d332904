package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sciknoworg/OntoLearner-sub000/graph"
	"github.com/sciknoworg/OntoLearner-sub000/ontology"
)

func TestComputeTopology(t *testing.T) {
	lg := graph.NewLabelGraph()
	lg.AddEdge("A", "B", "p")
	lg.AddEdge("B", "C", "p")
	lg.AddEdge("A", "D", "q")

	got := ComputeTopology(lg, TopologyOptions{ComputePaths: true})

	assert.Equal(t, 4, got.Nodes)
	assert.Equal(t, 3, got.Edges)
	assert.InDelta(t, 0.25, got.Density, 1e-9)
	assert.InDelta(t, 1.5, got.AverageDegree, 1e-9)
	assert.Equal(t, 1, got.MaxInDegree)
	assert.Equal(t, 2, got.MaxOutDegree)
	assert.Equal(t, 1, got.Roots)
	assert.Equal(t, 2, got.Leaves)
	assert.Equal(t, 2, got.MaxDepth)
	assert.InDelta(t, 4.0/3.0, got.AverageDepth, 1e-9)
	assert.True(t, got.PathsComputed)
	assert.InDelta(t, 1.25, got.AverageShortestPath, 1e-9)
	assert.Equal(t, 2, got.Diameter)
}

func TestComputeTopology_PathsDisabled(t *testing.T) {
	lg := graph.NewLabelGraph()
	lg.AddEdge("A", "B", "p")

	got := ComputeTopology(lg, TopologyOptions{})
	assert.False(t, got.PathsComputed)
	assert.Zero(t, got.Diameter)
	assert.Zero(t, got.AverageShortestPath)
}

func TestComputeTopology_Empty(t *testing.T) {
	assert.Equal(t, Topology{}, ComputeTopology(graph.NewLabelGraph(), TopologyOptions{ComputePaths: true}))
	assert.Equal(t, Topology{}, ComputeTopology(nil, TopologyOptions{}))
}

func TestComputeTopology_Cycle(t *testing.T) {
	lg := graph.NewLabelGraph()
	lg.AddEdge("A", "B", "p")
	lg.AddEdge("B", "A", "p")

	got := ComputeTopology(lg, TopologyOptions{})
	assert.Equal(t, 0, got.Roots)
	assert.Equal(t, 0, got.MaxDepth)
	assert.Zero(t, got.AverageDepth)
}

func TestComputeDataset(t *testing.T) {
	tt1, err := ontology.NewTermTyping("merlot", "RedWine", "Wine")
	require.NoError(t, err)
	tt2, err := ontology.NewTermTyping("rioja", "RedWine")
	require.NoError(t, err)
	rel, err := ontology.NewTaxonomicRelation("Wine", "RedWine")
	require.NoError(t, err)

	d := &ontology.Data{
		TermTypings:    []ontology.TermTyping{tt1, tt2},
		TypeTaxonomies: ontology.NewTypeTaxonomies([]ontology.TaxonomicRelation{rel}),
	}

	got := ComputeDataset(d)
	assert.Equal(t, 2, got.TermTypings)
	assert.Equal(t, 1, got.TaxonomicRelations)
	assert.Equal(t, 0, got.NonTaxonomicRelations)
	assert.Equal(t, 2, got.DistinctTerms)
	assert.Equal(t, 2, got.DistinctTypes)
	assert.Equal(t, map[string]int{"RedWine": 2, "Wine": 1}, got.TypeHistogram)
	assert.InDelta(t, 1.5, got.AverageTermsPerType, 1e-9)
	assert.InDelta(t, 1.5, got.AverageTypesPerTerm, 1e-9)
}

func TestComputeDataset_Empty(t *testing.T) {
	got := ComputeDataset(&ontology.Data{})
	assert.Zero(t, got.TermTypings)
	assert.Empty(t, got.TypeHistogram)

	got = ComputeDataset(nil)
	assert.Zero(t, got.DistinctTypes)
}
