// Package ontology defines the typed data model shared by the extraction
// engine, the splitter and the learner pipeline, plus the static descriptor
// that identifies an ontology artifact.
package ontology

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// Id prefixes per entity kind.
const (
	PrefixTermTyping   = "TT_"
	PrefixTaxonomic    = "TR_"
	PrefixNonTaxonomic = "NR_"
	shortIDHexLength   = 8
)

// NewID returns a short opaque id with the given prefix.
func NewID(prefix string) string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return prefix + hex[:shortIDHexLength]
}

// TermTyping assigns one or more types to a term.
type TermTyping struct {
	ID    string   `json:"id"`
	Term  string   `json:"term"`
	Types []string `json:"types"`
}

// NewTermTyping validates and creates a TermTyping with a fresh id.
func NewTermTyping(term string, types ...string) (TermTyping, error) {
	tt := TermTyping{ID: NewID(PrefixTermTyping), Term: term, Types: append([]string(nil), types...)}
	if err := tt.Validate(); err != nil {
		return TermTyping{}, err
	}
	return tt, nil
}

// Validate checks non-empty fields and at least one type.
func (t TermTyping) Validate() error {
	if strings.TrimSpace(t.Term) == "" {
		return fmt.Errorf("%w: term typing has empty term", ErrInvalidEntity)
	}
	if len(t.Types) == 0 {
		return fmt.Errorf("%w: term typing %q has no types", ErrInvalidEntity, t.Term)
	}
	for _, typ := range t.Types {
		if strings.TrimSpace(typ) == "" {
			return fmt.Errorf("%w: term typing %q has an empty type", ErrInvalidEntity, t.Term)
		}
	}
	return nil
}

// TaxonomicRelation is a directed "child is-a parent" edge.
type TaxonomicRelation struct {
	ID     string `json:"id"`
	Parent string `json:"parent"`
	Child  string `json:"child"`
}

// NewTaxonomicRelation validates and creates a TaxonomicRelation.
func NewTaxonomicRelation(parent, child string) (TaxonomicRelation, error) {
	r := TaxonomicRelation{ID: NewID(PrefixTaxonomic), Parent: parent, Child: child}
	if err := r.Validate(); err != nil {
		return TaxonomicRelation{}, err
	}
	return r, nil
}

// Validate checks both endpoints are non-empty.
func (r TaxonomicRelation) Validate() error {
	if strings.TrimSpace(r.Parent) == "" || strings.TrimSpace(r.Child) == "" {
		return fmt.Errorf("%w: taxonomic relation needs parent and child (%q, %q)", ErrInvalidEntity, r.Parent, r.Child)
	}
	return nil
}

// NonTaxonomicRelation is a head/relation/tail triple between two types.
type NonTaxonomicRelation struct {
	ID       string `json:"id"`
	Head     string `json:"head"`
	Tail     string `json:"tail"`
	Relation string `json:"relation"`
}

// NewNonTaxonomicRelation validates and creates a NonTaxonomicRelation.
func NewNonTaxonomicRelation(head, tail, relation string) (NonTaxonomicRelation, error) {
	r := NonTaxonomicRelation{ID: NewID(PrefixNonTaxonomic), Head: head, Tail: tail, Relation: relation}
	if err := r.Validate(); err != nil {
		return NonTaxonomicRelation{}, err
	}
	return r, nil
}

// Validate checks all three labels are non-empty.
func (r NonTaxonomicRelation) Validate() error {
	if strings.TrimSpace(r.Head) == "" || strings.TrimSpace(r.Tail) == "" || strings.TrimSpace(r.Relation) == "" {
		return fmt.Errorf("%w: non-taxonomic relation needs head, tail and relation (%q, %q, %q)",
			ErrInvalidEntity, r.Head, r.Tail, r.Relation)
	}
	return nil
}

// TypeTaxonomies is the taxonomy dataset. Types is closed over every parent
// and child.
type TypeTaxonomies struct {
	Types      []string            `json:"types"`
	Taxonomies []TaxonomicRelation `json:"taxonomies"`
}

// NewTypeTaxonomies builds the dataset and derives Types from the relations.
func NewTypeTaxonomies(rels []TaxonomicRelation) TypeTaxonomies {
	types := make(map[string]struct{})
	for _, r := range rels {
		types[r.Parent] = struct{}{}
		types[r.Child] = struct{}{}
	}
	if rels == nil {
		rels = []TaxonomicRelation{}
	}
	return TypeTaxonomies{Types: sortedKeys(types), Taxonomies: rels}
}

// Validate checks every relation and the type closure.
func (t TypeTaxonomies) Validate() error {
	declared := toSet(t.Types)
	for _, r := range t.Taxonomies {
		if err := r.Validate(); err != nil {
			return err
		}
		if _, ok := declared[r.Parent]; !ok {
			return fmt.Errorf("%w: parent %q missing from types", ErrInvalidEntity, r.Parent)
		}
		if _, ok := declared[r.Child]; !ok {
			return fmt.Errorf("%w: child %q missing from types", ErrInvalidEntity, r.Child)
		}
	}
	return nil
}

// NonTaxonomicRelations is the non-taxonomic dataset. Types covers every head
// and tail, Relations every relation label.
type NonTaxonomicRelations struct {
	Types         []string               `json:"types"`
	Relations     []string               `json:"relations"`
	NonTaxonomies []NonTaxonomicRelation `json:"non_taxonomies"`
}

// NewNonTaxonomicRelations builds the dataset. extraTypes are added to the
// derived head/tail types.
func NewNonTaxonomicRelations(rels []NonTaxonomicRelation, extraTypes ...string) NonTaxonomicRelations {
	types := toSet(extraTypes)
	relations := make(map[string]struct{})
	for _, r := range rels {
		types[r.Head] = struct{}{}
		types[r.Tail] = struct{}{}
		relations[r.Relation] = struct{}{}
	}
	if rels == nil {
		rels = []NonTaxonomicRelation{}
	}
	return NonTaxonomicRelations{
		Types:         sortedKeys(types),
		Relations:     sortedKeys(relations),
		NonTaxonomies: rels,
	}
}

// Validate checks every relation and the type and relation inventories.
func (n NonTaxonomicRelations) Validate() error {
	types := toSet(n.Types)
	relations := toSet(n.Relations)
	for _, r := range n.NonTaxonomies {
		if err := r.Validate(); err != nil {
			return err
		}
		if _, ok := types[r.Head]; !ok {
			return fmt.Errorf("%w: head %q missing from types", ErrInvalidEntity, r.Head)
		}
		if _, ok := types[r.Tail]; !ok {
			return fmt.Errorf("%w: tail %q missing from types", ErrInvalidEntity, r.Tail)
		}
		if _, ok := relations[r.Relation]; !ok {
			return fmt.Errorf("%w: relation %q missing from relations", ErrInvalidEntity, r.Relation)
		}
	}
	return nil
}

// Data is the aggregate produced by extraction or fetched as a bundle.
type Data struct {
	TermTypings               []TermTyping          `json:"term_typings"`
	TypeTaxonomies            TypeTaxonomies        `json:"type_taxonomies"`
	TypeNonTaxonomicRelations NonTaxonomicRelations `json:"type_non_taxonomic_relations"`
}

// Validate checks every entity in the aggregate.
func (d *Data) Validate() error {
	for _, tt := range d.TermTypings {
		if err := tt.Validate(); err != nil {
			return err
		}
	}
	if err := d.TypeTaxonomies.Validate(); err != nil {
		return err
	}
	return d.TypeNonTaxonomicRelations.Validate()
}

// IsEmpty reports whether all three datasets are empty.
func (d *Data) IsEmpty() bool {
	return d == nil || (len(d.TermTypings) == 0 &&
		len(d.TypeTaxonomies.Taxonomies) == 0 &&
		len(d.TypeNonTaxonomicRelations.NonTaxonomies) == 0)
}

// Terms returns the distinct term-typing terms in first-seen order.
func (d *Data) Terms() []string {
	seen := make(map[string]struct{}, len(d.TermTypings))
	var out []string
	for _, tt := range d.TermTypings {
		if _, ok := seen[tt.Term]; ok {
			continue
		}
		seen[tt.Term] = struct{}{}
		out = append(out, tt.Term)
	}
	return out
}

// Equal compares two aggregates as sets of rows, ignoring ids and ordering.
func (d *Data) Equal(other *Data) bool {
	if d == nil || other == nil {
		return d == other
	}
	return setsEqual(d.typingKeys(), other.typingKeys()) &&
		setsEqual(d.taxonomyKeys(), other.taxonomyKeys()) &&
		setsEqual(d.nonTaxonomyKeys(), other.nonTaxonomyKeys()) &&
		setsEqual(toSet(d.TypeTaxonomies.Types), toSet(other.TypeTaxonomies.Types)) &&
		setsEqual(toSet(d.TypeNonTaxonomicRelations.Types), toSet(other.TypeNonTaxonomicRelations.Types)) &&
		setsEqual(toSet(d.TypeNonTaxonomicRelations.Relations), toSet(other.TypeNonTaxonomicRelations.Relations))
}

func (d *Data) typingKeys() map[string]struct{} {
	out := make(map[string]struct{})
	for _, tt := range d.TermTypings {
		for _, typ := range tt.Types {
			out[tt.Term+"\x00"+typ] = struct{}{}
		}
	}
	return out
}

func (d *Data) taxonomyKeys() map[string]struct{} {
	out := make(map[string]struct{})
	for _, r := range d.TypeTaxonomies.Taxonomies {
		out[r.Parent+"\x00"+r.Child] = struct{}{}
	}
	return out
}

func (d *Data) nonTaxonomyKeys() map[string]struct{} {
	out := make(map[string]struct{})
	for _, r := range d.TypeNonTaxonomicRelations.NonTaxonomies {
		out[r.Head+"\x00"+r.Relation+"\x00"+r.Tail] = struct{}{}
	}
	return out
}

func toSet(items []string) map[string]struct{} {
	out := make(map[string]struct{}, len(items))
	for _, s := range items {
		out[s] = struct{}{}
	}
	return out
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func setsEqual(a, b map[string]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}
