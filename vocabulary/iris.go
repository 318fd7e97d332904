// Package vocabulary holds the RDF, RDFS, OWL and SKOS IRIs the loader and
// extractors look for.
package vocabulary

// Namespace IRIs.
const (
	RDFNamespace  = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	RDFSNamespace = "http://www.w3.org/2000/01/rdf-schema#"
	OWLNamespace  = "http://www.w3.org/2002/07/owl#"
	SKOSNamespace = "http://www.w3.org/2004/02/skos/core#"
	XSDNamespace  = "http://www.w3.org/2001/XMLSchema#"

	// OBONamespace is the PURL prefix used by OBO Foundry ontologies.
	OBONamespace = "http://purl.obolibrary.org/obo/"
)

// RDF terms.
const (
	RDFType       = RDFNamespace + "type"
	RDFLangString = RDFNamespace + "langString"
)

// RDFS terms.
const (
	RDFSClass      = RDFSNamespace + "Class"
	RDFSSubClassOf = RDFSNamespace + "subClassOf"
	RDFSLabel      = RDFSNamespace + "label"
	RDFSDomain     = RDFSNamespace + "domain"
	RDFSRange      = RDFSNamespace + "range"
	RDFSComment    = RDFSNamespace + "comment"
)

// OWL terms.
const (
	OWLClass            = OWLNamespace + "Class"
	OWLOntology         = OWLNamespace + "Ontology"
	OWLImports          = OWLNamespace + "imports"
	OWLThing            = OWLNamespace + "Thing"
	OWLObjectProperty   = OWLNamespace + "ObjectProperty"
	OWLDatatypeProperty = OWLNamespace + "DatatypeProperty"
)

// SKOS terms.
const (
	SKOSConcept   = SKOSNamespace + "Concept"
	SKOSNarrower  = SKOSNamespace + "narrower"
	SKOSPrefLabel = SKOSNamespace + "prefLabel"
)

// ClassTypes are the objects of rdf:type that declare a subject as a class.
var ClassTypes = []string{RDFSClass, OWLClass}

// IsClassType reports whether iri declares its subject a class.
func IsClassType(iri string) bool {
	return iri == RDFSClass || iri == OWLClass
}
