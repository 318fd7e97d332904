package extract

import (
	"context"

	"github.com/sciknoworg/OntoLearner-sub000/ontology"
	"github.com/sciknoworg/OntoLearner-sub000/storage"
	"github.com/sciknoworg/OntoLearner-sub000/vocabulary"
)

// ctxCheckInterval is how many triples are visited between context checks.
const ctxCheckInterval = 1024

var (
	rdfType    = storage.IRI(vocabulary.RDFType)
	subClassOf = storage.IRI(vocabulary.RDFSSubClassOf)
)

// DeclaredClasses returns the subjects typed owl:Class or rdfs:Class, in
// first-seen order. Classes only implied by subclass axioms are not
// included.
func DeclaredClasses(s *storage.Store) []storage.Term {
	seen := make(map[storage.Term]bool)
	var out []storage.Term
	for _, t := range s.Match(nil, &rdfType, nil) {
		if !t.Object.IsIRI() || !vocabulary.IsClassType(t.Object.Value) {
			continue
		}
		if !seen[t.Subject] {
			seen[t.Subject] = true
			out = append(out, t.Subject)
		}
	}
	return out
}

// DirectInstances returns the subjects of (?x rdf:type class).
func DirectInstances(s *storage.Store, class storage.Term) []storage.Term {
	return s.Subjects(rdfType, class)
}

func (e *Engine) relevantClasses() []storage.Term {
	if e.hooks.RelevantClasses != nil {
		return e.hooks.RelevantClasses(e.store)
	}
	return DeclaredClasses(e.store)
}

func (e *Engine) instancesOf(class storage.Term) []storage.Term {
	if e.hooks.InstancesForClass != nil {
		return e.hooks.InstancesForClass(e.store, class)
	}
	return DirectInstances(e.store, class)
}

// TermTypings emits one row per (instance, class) pair where both labels
// survive normalization. Rows follow class order, then instance order.
func (e *Engine) TermTypings(ctx context.Context) ([]ontology.TermTyping, error) {
	var out []ontology.TermTyping
	for _, class := range e.relevantClasses() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		classLabel, ok := e.normalizer.LabelOf(class)
		if !ok {
			continue
		}
		for _, inst := range e.instancesOf(class) {
			instLabel, ok := e.normalizer.LabelOf(inst)
			if !ok {
				continue
			}
			tt, err := ontology.NewTermTyping(instLabel, classLabel)
			if err != nil {
				return nil, &ontology.ExtractionError{
					Extractor: TermTypingsExtractor,
					Triple:    &storage.Triple{Subject: inst, Predicate: rdfType, Object: class},
					Err:       err,
				}
			}
			out = append(out, tt)
		}
	}
	return out, nil
}

// TypeTaxonomies emits a relation for every rdfs:subClassOf triple whose
// parent is an IRI and whose endpoints have labels. A child and parent that
// share a label only form a row when they are the same IRI.
func (e *Engine) TypeTaxonomies(ctx context.Context) (ontology.TypeTaxonomies, error) {
	var rels []ontology.TaxonomicRelation
	for i, t := range e.store.Match(nil, &subClassOf, nil) {
		if i%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return ontology.TypeTaxonomies{}, err
			}
		}
		if !t.Object.IsIRI() {
			continue
		}
		child, ok := e.normalizer.LabelOf(t.Subject)
		if !ok {
			continue
		}
		parent, ok := e.normalizer.LabelOf(t.Object)
		if !ok {
			continue
		}
		if child == parent && t.Subject != t.Object {
			continue
		}
		rel, err := ontology.NewTaxonomicRelation(parent, child)
		if err != nil {
			return ontology.TypeTaxonomies{}, &ontology.ExtractionError{Extractor: TypeTaxonomiesExtractor, Triple: &t, Err: err}
		}
		rels = append(rels, rel)
	}
	return ontology.NewTypeTaxonomies(rels), nil
}

// NonTaxonomicRelations emits a relation for every valid triple whose three
// labels survive normalization. By default a triple is valid when both ends
// are declared classes and the predicate is not rdfs:subClassOf.
func (e *Engine) NonTaxonomicRelations(ctx context.Context) (ontology.NonTaxonomicRelations, error) {
	valid := e.hooks.ValidNonTaxonomicTriple
	if valid == nil {
		classes := make(map[storage.Term]bool)
		for _, c := range DeclaredClasses(e.store) {
			classes[c] = true
		}
		valid = func(_ *storage.Store, t storage.Triple) bool {
			return t.Predicate != subClassOf && classes[t.Subject] && classes[t.Object]
		}
	}

	var rels []ontology.NonTaxonomicRelation
	for i, t := range e.store.Triples() {
		if i%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return ontology.NonTaxonomicRelations{}, err
			}
		}
		if !valid(e.store, t) {
			continue
		}
		head, ok := e.normalizer.LabelOf(t.Subject)
		if !ok {
			continue
		}
		tail, ok := e.normalizer.LabelOf(t.Object)
		if !ok {
			continue
		}
		relation, ok := e.normalizer.LabelOf(t.Predicate)
		if !ok {
			continue
		}
		rel, err := ontology.NewNonTaxonomicRelation(head, tail, relation)
		if err != nil {
			return ontology.NonTaxonomicRelations{}, &ontology.ExtractionError{Extractor: NonTaxonomicRelationsExtractor, Triple: &t, Err: err}
		}
		rels = append(rels, rel)
	}
	return ontology.NewNonTaxonomicRelations(rels), nil
}
