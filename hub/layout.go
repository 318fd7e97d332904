// Package hub resolves ontology artifacts and pre-extracted bundles on the
// remote dataset hub and caches them locally.
package hub

import (
	"strings"
)

// RepoPrefix is the dataset repository prefix; the domain slug follows it.
const RepoPrefix = "SciKnowOrg/ontolearner-"

// Bundle file names, siblings of the ontology file in the repository.
const (
	TermTypingsFile               = "term_typings.json"
	TypeTaxonomiesFile            = "type_taxonomies.json"
	TypeNonTaxonomicRelationsFile = "type_non_taxonomic_relations.json"
)

// BundleFiles lists the pre-extracted files in a fixed order.
var BundleFiles = []string{TermTypingsFile, TypeTaxonomiesFile, TypeNonTaxonomicRelationsFile}

// DomainSlug lowercases domain and replaces spaces with underscores.
func DomainSlug(domain string) string {
	return strings.ReplaceAll(strings.ToLower(domain), " ", "_")
}

// RepoID returns the dataset repository id for a domain.
func RepoID(domain string) string {
	return RepoPrefix + DomainSlug(domain)
}

// Filename returns "<id>/<id>.<format>" with id and format lowercased.
func Filename(ontologyID, format string) string {
	id := strings.ToLower(ontologyID)
	return id + "/" + id + "." + strings.ToLower(format)
}

// BundlePath returns the repository path of one bundle file.
func BundlePath(ontologyID, file string) string {
	return strings.ToLower(ontologyID) + "/" + file
}
