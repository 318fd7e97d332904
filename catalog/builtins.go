package catalog

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/sciknoworg/OntoLearner-sub000/ontology"
	"github.com/sciknoworg/OntoLearner-sub000/storage"
	"github.com/sciknoworg/OntoLearner-sub000/vocabulary"
)

// importsMarker is the directory ENVO keeps its imported modules under.
const importsMarker = "/imports/"

var (
	rdfType          = storage.IRI(vocabulary.RDFType)
	rdfsDomain       = storage.IRI(vocabulary.RDFSDomain)
	rdfsRange        = storage.IRI(vocabulary.RDFSRange)
	subClassOf       = storage.IRI(vocabulary.RDFSSubClassOf)
	skosNarrower     = storage.IRI(vocabulary.SKOSNarrower)
	datatypeProperty = storage.IRI(vocabulary.OWLDatatypeProperty)
	objectProperty   = storage.IRI(vocabulary.OWLObjectProperty)
)

// Builtins returns the ontologies shipped with the toolkit.
func Builtins() []Entry {
	return []Entry{
		{
			Descriptor: ontology.Descriptor{
				ID:          "Wine",
				FullName:    "Wine Ontology",
				Domain:      "Food and Beverage",
				Category:    "Beverage",
				Version:     "1.0",
				LastUpdated: "2004-02-10",
				Creator:     "W3C Web Ontology Working Group",
				License:     "W3C Software License",
				Format:      "RDF",
				DownloadURL: "https://www.w3.org/TR/owl-guide/wine.rdf",
			},
		},
		{
			Descriptor: ontology.Descriptor{
				ID:          "AgrO",
				FullName:    "Agronomy Ontology",
				Domain:      "Agriculture",
				Category:    "Agronomy",
				Version:     "1.0",
				LastUpdated: "2022-11-02",
				Creator:     "Agronomy Ontology Working Group",
				License:     "CC BY 4.0",
				Format:      "OWL",
				DownloadURL: "http://purl.obolibrary.org/obo/agro.owl",
			},
			Hooks: ontology.Hooks{ContainsImports: true},
		},
		{
			Descriptor: ontology.Descriptor{
				ID:          "ENVO",
				FullName:    "Environment Ontology",
				Domain:      "Ecology and Environment",
				Category:    "Environment",
				Version:     "2024-07-01",
				LastUpdated: "2024-07-01",
				Creator:     "The ENVO Consortium",
				License:     "CC0 1.0",
				Format:      "OWL",
				DownloadURL: "http://purl.obolibrary.org/obo/envo.owl",
			},
			Hooks: ontology.Hooks{
				ContainsImports: true,
				ResolveImport:   ResolveUnderMarker(importsMarker),
			},
		},
		{
			Descriptor: ontology.Descriptor{
				ID:          "SAREF",
				FullName:    "Smart Applications REFerence ontology",
				Domain:      "Industry",
				Category:    "Internet of Things",
				Version:     "3.1.1",
				LastUpdated: "2020-12-31",
				Creator:     "ETSI SmartM2M",
				License:     "BSD-3-Clause",
				Format:      "TTL",
				DownloadURL: "https://saref.etsi.org/core/v3.1.1/saref.ttl",
			},
			Hooks: ontology.Hooks{ValidNonTaxonomicTriple: DomainRangeTriple},
		},
		{
			Descriptor: ontology.Descriptor{
				ID:          "SchemaOrg",
				FullName:    "Schema.org",
				Domain:      "General Knowledge",
				Category:    "Web",
				Version:     "28.1",
				LastUpdated: "2024-12-11",
				Creator:     "Schema.org Community Group",
				License:     "CC BY-SA 3.0",
				Format:      "JSONLD",
				DownloadURL: "https://schema.org/version/latest/schemaorg-current-https.jsonld",
			},
			Hooks: ontology.Hooks{AllowReserved: true},
		},
		{
			Descriptor: ontology.Descriptor{
				ID:          "AGROVOC",
				FullName:    "AGROVOC Multilingual Thesaurus",
				Domain:      "Agriculture",
				Category:    "Thesaurus",
				Version:     "2024-11",
				LastUpdated: "2024-11-01",
				Creator:     "Food and Agriculture Organization of the United Nations",
				License:     "CC BY 4.0",
				Format:      "NT",
				DownloadURL: "https://agrovoc.fao.org/latestAgrovoc/agrovoc_lod.nt",
			},
			Hooks: ontology.Hooks{
				RelevantClasses:   BroaderConcepts,
				InstancesForClass: NarrowerConcepts,
			},
		},
	}
}

// ResolveUnderMarker maps an import IRI containing marker to the same
// sub-path under baseDir, e.g. ".../envo/imports/ro_import.owl" to
// "<baseDir>/imports/ro_import.owl". IRIs without the marker, or whose file
// does not exist, fall through to the default rules.
func ResolveUnderMarker(marker string) func(uri, baseDir string) (string, bool) {
	return func(uri, baseDir string) (string, bool) {
		i := strings.Index(uri, marker)
		if i < 0 {
			return "", false
		}
		rel := strings.TrimPrefix(uri[i:], "/")
		candidate := filepath.Join(baseDir, filepath.FromSlash(rel))
		if info, err := os.Stat(candidate); err != nil || info.IsDir() {
			return "", false
		}
		return candidate, true
	}
}

// DomainRangeTriple accepts a triple whose predicate is a declared object
// or datatype property with both rdfs:domain and rdfs:range declared, and
// whose subject and object each match them. A term matches a class when it
// is the class or is explicitly typed with it; subclass entailment is not
// applied. Any other predicate is held to the default rule: both ends must
// be declared classes.
func DomainRangeTriple(s *storage.Store, t storage.Triple) bool {
	if t.Predicate == subClassOf {
		return false
	}
	domains := s.Objects(t.Predicate, rdfsDomain)
	ranges := s.Objects(t.Predicate, rdfsRange)
	if len(domains) == 0 || len(ranges) == 0 || !declaredProperty(s, t.Predicate) {
		return declaredClass(s, t.Subject) && declaredClass(s, t.Object)
	}
	return conforms(s, t.Subject, domains) && conforms(s, t.Object, ranges)
}

func declaredProperty(s *storage.Store, p storage.Term) bool {
	return s.Has(storage.Triple{Subject: p, Predicate: rdfType, Object: datatypeProperty}) ||
		s.Has(storage.Triple{Subject: p, Predicate: rdfType, Object: objectProperty})
}

// declaredClass reports whether term is typed owl:Class or rdfs:Class.
func declaredClass(s *storage.Store, term storage.Term) bool {
	if !term.IsIRI() {
		return false
	}
	for _, c := range s.Objects(term, rdfType) {
		if c.IsIRI() && vocabulary.IsClassType(c.Value) {
			return true
		}
	}
	return false
}

// conforms reports whether term is, or is typed as, one of classes.
func conforms(s *storage.Store, term storage.Term, classes []storage.Term) bool {
	for _, c := range classes {
		if term == c || s.Has(storage.Triple{Subject: term, Predicate: rdfType, Object: c}) {
			return true
		}
	}
	return false
}

// BroaderConcepts treats every concept with a skos:narrower edge as a type,
// in first-seen order.
func BroaderConcepts(s *storage.Store) []storage.Term {
	seen := make(map[storage.Term]bool)
	var out []storage.Term
	for _, t := range s.Match(nil, &skosNarrower, nil) {
		if t.Subject.IsIRI() && !seen[t.Subject] {
			seen[t.Subject] = true
			out = append(out, t.Subject)
		}
	}
	return out
}

// NarrowerConcepts lists the skos:narrower concepts of class.
func NarrowerConcepts(s *storage.Store, class storage.Term) []storage.Term {
	return s.Objects(class, skosNarrower)
}
