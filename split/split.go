// Package split partitions ontology data into train and test sets without
// leaking term-typing terms from train into the relation test sets.
package split

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sort"

	"github.com/sciknoworg/OntoLearner-sub000/ontology"
)

// Defaults used by the CLI and config.
const (
	DefaultTestSize = 0.2
	DefaultSeed     = 42
)

// Split partitions data into train and test sets.
//
// Term typings are stratified by each term's rarest type. Relations touching
// a train term are forced into train; the test side is drawn from the
// remaining candidates. Output is fully determined by data and seed.
func Split(data *ontology.Data, testSize float64, seed int64) (train, test *ontology.Data, err error) {
	if math.IsNaN(testSize) || testSize <= 0 || testSize >= 1 {
		return nil, nil, fmt.Errorf("%w: test size must be in (0, 1), got %v", ontology.ErrSplit, testSize)
	}
	if data == nil || data.IsEmpty() {
		return nil, nil, fmt.Errorf("%w: no data to split", ontology.ErrSplit)
	}

	rng := rand.New(rand.NewPCG(uint64(seed), uint64(seed)))

	trainTypings, testTypings, trainTerms := splitTypings(rng, data.TermTypings, testSize)
	trainTax, testTax := splitTaxonomies(rng, data.TypeTaxonomies.Taxonomies, trainTerms, testSize)

	for _, r := range trainTax {
		trainTerms[r.Parent] = true
		trainTerms[r.Child] = true
	}
	trainNonTax, testNonTax := splitNonTaxonomies(rng, data.TypeNonTaxonomicRelations.NonTaxonomies, trainTerms, testSize)

	train = &ontology.Data{
		TermTypings:               trainTypings,
		TypeTaxonomies:            ontology.NewTypeTaxonomies(trainTax),
		TypeNonTaxonomicRelations: ontology.NewNonTaxonomicRelations(trainNonTax),
	}
	test = &ontology.Data{
		TermTypings:               testTypings,
		TypeTaxonomies:            ontology.NewTypeTaxonomies(testTax),
		TypeNonTaxonomicRelations: ontology.NewNonTaxonomicRelations(testNonTax),
	}
	return train, test, nil
}

// splitTypings assigns whole terms to one side. Terms are grouped by their
// primary type, the type with the lowest global frequency (ties go to the
// lexicographically smallest name). Singleton groups stay in train.
func splitTypings(rng *rand.Rand, typings []ontology.TermTyping, testSize float64) (train, test []ontology.TermTyping, trainTerms map[string]bool) {
	freq := make(map[string]int)
	for _, tt := range typings {
		for _, typ := range tt.Types {
			freq[typ]++
		}
	}

	primary := make(map[string]string)
	var terms []string
	for _, tt := range typings {
		for _, typ := range tt.Types {
			cur, ok := primary[tt.Term]
			if !ok {
				terms = append(terms, tt.Term)
			}
			if !ok || freq[typ] < freq[cur] || (freq[typ] == freq[cur] && typ < cur) {
				primary[tt.Term] = typ
			}
		}
	}

	groups := make(map[string][]string)
	for _, term := range terms {
		groups[primary[term]] = append(groups[primary[term]], term)
	}

	testTerms := make(map[string]bool)
	for _, typ := range sortedKeys(groups) {
		members := groups[typ]
		if len(members) < 2 {
			continue
		}
		sort.Strings(members)
		for _, i := range rng.Perm(len(members))[:sampleSize(len(members), testSize)] {
			testTerms[members[i]] = true
		}
	}

	trainTerms = make(map[string]bool)
	for _, tt := range typings {
		if testTerms[tt.Term] {
			test = append(test, tt)
		} else {
			train = append(train, tt)
			trainTerms[tt.Term] = true
		}
	}
	return nonNil(train), nonNil(test), trainTerms
}

// splitTaxonomies forces relations touching a train term into train and
// samples the test side from the rest, sized against the total count. When
// every relation is forced, the forced set is split uniformly instead.
func splitTaxonomies(rng *rand.Rand, rels []ontology.TaxonomicRelation, trainTerms map[string]bool, testSize float64) (train, test []ontology.TaxonomicRelation) {
	if len(rels) == 0 {
		return []ontology.TaxonomicRelation{}, []ontology.TaxonomicRelation{}
	}

	var forced, candidates []int
	for i, r := range rels {
		if trainTerms[r.Parent] || trainTerms[r.Child] {
			forced = append(forced, i)
		} else {
			candidates = append(candidates, i)
		}
	}

	pool := candidates
	n := min(len(candidates), int(math.Floor(float64(len(rels))*testSize)))
	if len(candidates) == 0 {
		pool = forced
		n = int(math.Floor(float64(len(forced)) * testSize))
	}

	inTest := make(map[int]bool, n)
	for _, j := range rng.Perm(len(pool))[:n] {
		inTest[pool[j]] = true
	}
	for i, r := range rels {
		if inTest[i] {
			test = append(test, r)
		} else {
			train = append(train, r)
		}
	}
	return nonNil(train), nonNil(test)
}

// splitNonTaxonomies forces relations touching a train term into train and
// stratifies the rest by relation label.
func splitNonTaxonomies(rng *rand.Rand, rels []ontology.NonTaxonomicRelation, trainTerms map[string]bool, testSize float64) (train, test []ontology.NonTaxonomicRelation) {
	groups := make(map[string][]int)
	for i, r := range rels {
		if trainTerms[r.Head] || trainTerms[r.Tail] {
			continue
		}
		groups[r.Relation] = append(groups[r.Relation], i)
	}

	inTest := make(map[int]bool)
	for _, relation := range sortedKeys(groups) {
		members := groups[relation]
		for _, j := range rng.Perm(len(members))[:sampleSize(len(members), testSize)] {
			inTest[members[j]] = true
		}
	}

	for i, r := range rels {
		if inTest[i] {
			test = append(test, r)
		} else {
			train = append(train, r)
		}
	}
	return nonNil(train), nonNil(test)
}

// sampleSize is max(1, floor(n*testSize)), capped at n.
func sampleSize(n int, testSize float64) int {
	return min(n, max(1, int(math.Floor(float64(n)*testSize))))
}

// TrainTerms returns the term-typing terms of a train split, sorted.
func TrainTerms(train *ontology.Data) []string {
	return typingTerms(train)
}

// TestTerms returns the term-typing terms of a test split, sorted.
func TestTerms(test *ontology.Data) []string {
	return typingTerms(test)
}

func typingTerms(d *ontology.Data) []string {
	if d == nil {
		return nil
	}
	set := make(map[string][]string)
	for _, tt := range d.TermTypings {
		set[tt.Term] = nil
	}
	return sortedKeys(set)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
