package metrics

import (
	"github.com/sciknoworg/OntoLearner-sub000/ontology"
)

// Dataset summarizes the size and type distribution of extracted data.
type Dataset struct {
	TermTypings            int            `json:"num_term_types"`
	TaxonomicRelations     int            `json:"num_taxonomic_relations"`
	NonTaxonomicRelations  int            `json:"num_non_taxonomic_relations"`
	DistinctTerms          int            `json:"num_distinct_terms"`
	DistinctTypes          int            `json:"num_distinct_types"`
	DistinctRelationLabels int            `json:"num_distinct_relations"`
	TypeHistogram          map[string]int `json:"type_distribution"`
	AverageTermsPerType    float64        `json:"avg_terms_per_type"`
	AverageTypesPerTerm    float64        `json:"avg_types_per_term"`
}

// ComputeDataset computes dataset metrics. A nil or empty aggregate yields
// zero counts and an empty histogram.
func ComputeDataset(d *ontology.Data) Dataset {
	out := Dataset{TypeHistogram: map[string]int{}}
	if d == nil {
		return out
	}

	out.TermTypings = len(d.TermTypings)
	out.TaxonomicRelations = len(d.TypeTaxonomies.Taxonomies)
	out.NonTaxonomicRelations = len(d.TypeNonTaxonomicRelations.NonTaxonomies)
	out.DistinctRelationLabels = len(d.TypeNonTaxonomicRelations.Relations)

	var assignments int
	for _, tt := range d.TermTypings {
		for _, typ := range tt.Types {
			out.TypeHistogram[typ]++
			assignments++
		}
	}
	out.DistinctTerms = len(d.Terms())
	out.DistinctTypes = len(out.TypeHistogram)

	if out.DistinctTypes > 0 {
		out.AverageTermsPerType = float64(assignments) / float64(out.DistinctTypes)
	}
	if out.DistinctTerms > 0 {
		out.AverageTypesPerTerm = float64(assignments) / float64(out.DistinctTerms)
	}
	return out
}
