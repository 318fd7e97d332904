package ontology

import (
	"strings"

	"github.com/sciknoworg/OntoLearner-sub000/storage"
)

// Descriptor is the static metadata identifying one ontology artifact. It
// also keys the remote artifact lookup (ID, Domain, Format).
type Descriptor struct {
	ID          string `json:"ontology_id" yaml:"ontology_id"`
	FullName    string `json:"ontology_full_name" yaml:"ontology_full_name"`
	Domain      string `json:"domain" yaml:"domain"`
	Category    string `json:"category" yaml:"category"`
	Version     string `json:"version" yaml:"version"`
	LastUpdated string `json:"last_updated" yaml:"last_updated"`
	Creator     string `json:"creator" yaml:"creator"`
	License     string `json:"license" yaml:"license"`
	Format      string `json:"format" yaml:"format"`
	DownloadURL string `json:"download_url" yaml:"download_url"`
}

// Key returns the lowercase registry key for the descriptor.
func (d Descriptor) Key() string {
	return strings.ToLower(d.ID)
}

// Hooks are optional per-ontology behaviour overrides. Nil functions fall
// back to the default behaviour. Hook functions receive the frozen store and
// must not mutate it.
type Hooks struct {
	// ContainsImports enables recursive owl:imports resolution.
	ContainsImports bool

	// AllowReserved keeps labels equal to "root" or "thing".
	AllowReserved bool

	// ResolveImport maps an import IRI to a local path or URL. ok=false falls
	// through to the default resolution rules.
	ResolveImport func(uri, baseDir string) (source string, ok bool)

	// RelevantClasses lists the classes whose instances become term typings.
	RelevantClasses func(s *storage.Store) []storage.Term

	// InstancesForClass lists the direct instances of class.
	InstancesForClass func(s *storage.Store, class storage.Term) []storage.Term

	// ValidNonTaxonomicTriple replaces the default validity check for
	// non-taxonomic relations.
	ValidNonTaxonomicTriple func(s *storage.Store, t storage.Triple) bool

	// ValidLabel rejects additional labels after the anonymous-id filter.
	ValidLabel func(label string) bool
}
