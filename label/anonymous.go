// Package label maps RDF terms to human-readable labels and filters the
// identifiers RDF tooling generates for anonymous nodes.
package label

import (
	"regexp"
	"strings"
)

// anonymousPrefixes mark labels minted by RDF tooling.
var anonymousPrefixes = []string{
	"_:", "genid-", "nodeID://", "jena-", "bnode", "ARQ",
	"img_", "xl_", "xl-", "skosCollection_",
}

// anonymousPatterns is the closed set of identifier shapes treated as
// anonymous. Adding a pattern changes which rows extraction emits.
var anonymousPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^N\d+$`),
	regexp.MustCompile(`^_\d+$`),
	regexp.MustCompile(`^c_\d+$`),
	regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`),
	regexp.MustCompile(`^N[0-9a-f]{32}$`),
	// rdflib-style blank ids: "N" followed by hex with at least one digit.
	regexp.MustCompile(`^N[0-9a-f]*[0-9][0-9a-f]*$`),
	regexp.MustCompile(`^n[0-9a-f]+$`),
	regexp.MustCompile(`^b[0-9a-f]+$`),
	regexp.MustCompile(`^c_[0-9a-f]+$`),
	regexp.MustCompile(`^node_[0-9a-f_]+$`),
	regexp.MustCompile(`^auto_gen_`),
	regexp.MustCompile(`^blank\d+$`),
	regexp.MustCompile(`^(BFO|IAO|OBI|FIX|REX|UO|MS|AFRL|AFFN|AFE|AFQ|AFP|AFM|AFC|AFR|ENVO|PMD)_\d+$`),
}

// reservedLabels are rejected unless the ontology relaxes the filter.
var reservedLabels = map[string]struct{}{
	"root":  {},
	"thing": {},
}

// IsAnonymous reports whether label is empty or an identifier generated for
// an anonymous node. A single leading underscore is ignored when matching the
// identifier shapes, since serializers often prepend one to make a blank id a
// valid local name.
func IsAnonymous(label string) bool {
	label = strings.TrimSpace(label)
	if label == "" {
		return true
	}
	for _, prefix := range anonymousPrefixes {
		if strings.HasPrefix(label, prefix) {
			return true
		}
	}
	if matchesPattern(label) {
		return true
	}
	if trimmed := strings.TrimPrefix(label, "_"); trimmed != label && trimmed != "" {
		return matchesPattern(trimmed)
	}
	return false
}

// IsReserved reports whether label is "root" or "thing", ignoring case.
func IsReserved(label string) bool {
	_, ok := reservedLabels[strings.ToLower(strings.TrimSpace(label))]
	return ok
}

func matchesPattern(label string) bool {
	for _, re := range anonymousPatterns {
		if re.MatchString(label) {
			return true
		}
	}
	return false
}
