package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sciknoworg/OntoLearner-sub000/export"
	"github.com/sciknoworg/OntoLearner-sub000/graph"
	"github.com/sciknoworg/OntoLearner-sub000/hub"
	"github.com/sciknoworg/OntoLearner-sub000/metrics"
	"github.com/sciknoworg/OntoLearner-sub000/ontology"
	"github.com/sciknoworg/OntoLearner-sub000/storage"
	"github.com/sciknoworg/OntoLearner-sub000/vocabulary"
)

const demoNT = `<http://ex.org/Wine> <http://www.w3.org/1999/02/22-rdf-syntax-ns#type> <http://www.w3.org/2002/07/owl#Class> .
<http://ex.org/RedWine> <http://www.w3.org/1999/02/22-rdf-syntax-ns#type> <http://www.w3.org/2002/07/owl#Class> .
<http://ex.org/Region> <http://www.w3.org/1999/02/22-rdf-syntax-ns#type> <http://www.w3.org/2002/07/owl#Class> .
<http://ex.org/RedWine> <http://www.w3.org/2000/01/rdf-schema#subClassOf> <http://ex.org/Wine> .
<http://ex.org/Wine> <http://ex.org/locatedIn> <http://ex.org/Region> .
<http://ex.org/Merlot> <http://www.w3.org/1999/02/22-rdf-syntax-ns#type> <http://ex.org/RedWine> .
<http://ex.org/Pinot> <http://www.w3.org/1999/02/22-rdf-syntax-ns#type> <http://ex.org/RedWine> .
`

var demoEntry = Entry{Descriptor: ontology.Descriptor{ID: "Demo", Domain: "Test Domain", Format: "NT"}}

// rows projects data onto id-free sorted strings for set comparison.
func rows(d *ontology.Data) []string {
	var out []string
	for _, tt := range d.TermTypings {
		out = append(out, "tt:"+tt.Term+"|"+strings.Join(tt.Types, ","))
	}
	for _, r := range d.TypeTaxonomies.Taxonomies {
		out = append(out, "tax:"+r.Parent+"|"+r.Child)
	}
	for _, r := range d.TypeNonTaxonomicRelations.NonTaxonomies {
		out = append(out, "ntax:"+r.Head+"|"+r.Relation+"|"+r.Tail)
	}
	sort.Strings(out)
	return out
}

func writeDemo(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "demo.nt")
	require.NoError(t, os.WriteFile(p, []byte(demoNT), 0644))
	return p
}

// hubServer serves the demo ontology and a bundle directory in the hub
// layout.
func hubServer(t *testing.T, bundleDir string) *httptest.Server {
	t.Helper()
	prefix := "/datasets/" + hub.RepoID("Test Domain") + "/resolve/main/demo/"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, prefix) {
			http.NotFound(w, r)
			return
		}
		name := path.Base(r.URL.Path)
		if name == "demo.nt" {
			_, _ = w.Write([]byte(demoNT))
			return
		}
		http.ServeFile(w, r, filepath.Join(bundleDir, name))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(Entry{Descriptor: ontology.Descriptor{ID: "Zeta"}}))
	require.NoError(t, r.Register(Entry{Descriptor: ontology.Descriptor{ID: "alpha"}}))
	assert.ErrorIs(t, r.Register(Entry{}), ontology.ErrInvalidEntity)

	e, ok := r.Get("ZETA")
	require.True(t, ok)
	assert.Equal(t, "Zeta", e.Descriptor.ID)
	_, ok = r.Get("missing")
	assert.False(t, ok)

	list := r.List()
	require.Len(t, list, 2)
	assert.Equal(t, "alpha", list[0].Descriptor.ID)
}

func TestDefault_Builtins(t *testing.T) {
	r := Default()
	assert.Same(t, r, Default())
	assert.Len(t, r.List(), len(Builtins()))

	for _, id := range []string{"wine", "agro", "envo", "saref", "schemaorg", "agrovoc"} {
		e, ok := r.Get(id)
		require.True(t, ok, id)
		assert.NotEmpty(t, e.Descriptor.Domain, id)
		assert.NotEmpty(t, e.Descriptor.Format, id)
	}

	envo, _ := r.Get("envo")
	assert.True(t, envo.Hooks.ContainsImports)
	assert.NotNil(t, envo.Hooks.ResolveImport)
	saref, _ := r.Get("saref")
	assert.NotNil(t, saref.Hooks.ValidNonTaxonomicTriple)
	schema, _ := r.Get("schemaorg")
	assert.True(t, schema.Hooks.AllowReserved)

	_, err := Open("nope")
	assert.Error(t, err)
	o, err := Open("Wine")
	require.NoError(t, err)
	assert.Equal(t, "Wine", o.Descriptor().ID)
}

func TestResolveUnderMarker(t *testing.T) {
	base := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(base, "imports"), 0755))
	local := filepath.Join(base, "imports", "ro_import.owl")
	require.NoError(t, os.WriteFile(local, []byte("<rdf:RDF/>"), 0644))

	resolve := ResolveUnderMarker(importsMarker)

	got, ok := resolve("http://purl.obolibrary.org/obo/envo/imports/ro_import.owl", base)
	require.True(t, ok)
	assert.Equal(t, local, got)

	_, ok = resolve("http://purl.obolibrary.org/obo/envo/imports/missing.owl", base)
	assert.False(t, ok)
	_, ok = resolve("http://purl.obolibrary.org/obo/ro.owl", base)
	assert.False(t, ok)
}

func TestDomainRangeTriple(t *testing.T) {
	iri := func(s string) storage.Term { return storage.IRI("http://ex.org/" + s) }
	s := storage.NewStore()
	_, err := s.AddAll([]storage.Triple{
		{Subject: iri("hasValue"), Predicate: rdfType, Object: datatypeProperty},
		{Subject: iri("hasValue"), Predicate: rdfsDomain, Object: iri("Measurement")},
		{Subject: iri("hasValue"), Predicate: rdfsRange, Object: iri("Value")},
		{Subject: iri("m1"), Predicate: rdfType, Object: iri("Measurement")},
		{Subject: iri("reading"), Predicate: rdfType, Object: datatypeProperty},
		{Subject: iri("hasUnit"), Predicate: rdfType, Object: objectProperty},
		{Subject: iri("hasUnit"), Predicate: rdfsDomain, Object: iri("Measurement")},
		{Subject: iri("Device"), Predicate: rdfType, Object: storage.IRI(vocabulary.OWLClass)},
		{Subject: iri("Sensor"), Predicate: rdfType, Object: storage.IRI(vocabulary.OWLClass)},
	})
	require.NoError(t, err)

	tests := []struct {
		name  string
		t     storage.Triple
		valid bool
	}{
		{name: "class level", t: storage.Triple{Subject: iri("Measurement"), Predicate: iri("hasValue"), Object: iri("Value")}, valid: true},
		{name: "typed subject", t: storage.Triple{Subject: iri("m1"), Predicate: iri("hasValue"), Object: iri("Value")}, valid: true},
		{name: "wrong domain", t: storage.Triple{Subject: iri("Device"), Predicate: iri("hasValue"), Object: iri("Value")}},
		{name: "undeclared property", t: storage.Triple{Subject: iri("Measurement"), Predicate: iri("other"), Object: iri("Value")}},
		{name: "subclass", t: storage.Triple{Subject: iri("Measurement"), Predicate: subClassOf, Object: iri("Value")}},
		{name: "no domain or range with literal tail", t: storage.Triple{Subject: iri("m1"), Predicate: iri("reading"), Object: storage.Literal("23.5", "", "")}},
		{name: "no domain or range between instances", t: storage.Triple{Subject: iri("m1"), Predicate: iri("reading"), Object: iri("m1")}},
		{name: "no domain or range between classes", t: storage.Triple{Subject: iri("Device"), Predicate: iri("reading"), Object: iri("Sensor")}, valid: true},
		{name: "domain without range", t: storage.Triple{Subject: iri("m1"), Predicate: iri("hasUnit"), Object: iri("Value")}},
		{name: "undeclared property between classes", t: storage.Triple{Subject: iri("Device"), Predicate: iri("near"), Object: iri("Sensor")}, valid: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, DomainRangeTriple(s, tt.t))
		})
	}
}

func TestSKOSHooks(t *testing.T) {
	iri := func(s string) storage.Term { return storage.IRI("http://ex.org/" + s) }
	s := storage.NewStore()
	_, err := s.AddAll([]storage.Triple{
		{Subject: iri("crops"), Predicate: skosNarrower, Object: iri("maize")},
		{Subject: iri("crops"), Predicate: skosNarrower, Object: iri("wheat")},
		{Subject: iri("cereals"), Predicate: skosNarrower, Object: iri("wheat")},
		{Subject: iri("crops"), Predicate: storage.IRI(vocabulary.RDFSLabel), Object: storage.Literal("crops", "en", "")},
	})
	require.NoError(t, err)

	assert.Equal(t, []storage.Term{iri("crops"), iri("cereals")}, BroaderConcepts(s))
	assert.Equal(t, []storage.Term{iri("maize"), iri("wheat")}, NarrowerConcepts(s, iri("crops")))
}

func TestOntology_NotLoaded(t *testing.T) {
	o := New(demoEntry)
	_, err := o.Extract(context.Background(), ModeAuto)
	assert.ErrorIs(t, err, ErrNotLoaded)
	_, err = o.Metrics(metrics.TopologyOptions{})
	assert.ErrorIs(t, err, ErrNotLoaded)
	assert.Nil(t, o.Graph())
}

func TestOntology_LocalExtract(t *testing.T) {
	o := New(demoEntry)
	require.NoError(t, o.Load(context.Background(), writeDemo(t)))
	assert.Equal(t, graph.OriginLocal, o.Graph().Origin)

	data, err := o.Extract(context.Background(), ModeAuto)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"ntax:Wine|locatedIn|Region",
		"tax:Wine|RedWine",
		"tt:Merlot|RedWine",
		"tt:Pinot|RedWine",
	}, rows(data))

	topo, err := o.Metrics(metrics.TopologyOptions{})
	require.NoError(t, err)
	assert.Positive(t, topo.Nodes)
}

func TestOntology_RemoteMatchesLocal(t *testing.T) {
	ctx := context.Background()

	local := New(demoEntry)
	require.NoError(t, local.Load(ctx, writeDemo(t)))
	want, err := local.Extract(ctx, ModeAuto)
	require.NoError(t, err)

	bundleDir := t.TempDir()
	require.NoError(t, export.WriteBundle(bundleDir, want))
	srv := hubServer(t, bundleDir)

	remote := New(demoEntry, WithHub(hub.NewClient(hub.WithEndpoint(srv.URL), hub.WithCacheDir(t.TempDir()))))
	require.NoError(t, remote.Load(ctx, ""))
	assert.Equal(t, graph.OriginHub, remote.Graph().Origin)

	published, err := remote.Extract(ctx, ModeAuto)
	require.NoError(t, err)
	assert.Equal(t, want, published, "bundle round-trips exactly")

	reinforced, err := remote.Extract(ctx, ModeReinforce)
	require.NoError(t, err)
	assert.Equal(t, rows(want), rows(reinforced))
	assert.Equal(t, graph.OriginHub, remote.Graph().Origin, "reinforce leaves the origin alone")
}

func TestOntology_RemoteWithoutHub(t *testing.T) {
	o := New(demoEntry)
	err := o.Load(context.Background(), "")
	assert.ErrorIs(t, err, ontology.ErrLoad)
}
