package loader

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sciknoworg/OntoLearner-sub000/graph"
	"github.com/sciknoworg/OntoLearner-sub000/ontology"
	"github.com/sciknoworg/OntoLearner-sub000/storage"
	"github.com/sciknoworg/OntoLearner-sub000/vocabulary"
)

const ttlPrefixes = `@prefix : <http://example.org/onto#> .
@prefix owl: <http://www.w3.org/2002/07/owl#> .
@prefix rdfs: <http://www.w3.org/2000/01/rdf-schema#> .
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	return p
}

func fileIRI(p string) string {
	return "file://" + filepath.ToSlash(p)
}

func TestLoad_LocalFile(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "wine.ttl", ttlPrefixes+`
:Wine a owl:Class .
:RedWine a owl:Class ; rdfs:subClassOf :Wine .
`)

	g, err := New().Load(context.Background(), p)
	require.NoError(t, err)

	assert.Equal(t, graph.OriginLocal, g.Origin)
	assert.Equal(t, p, g.Path)
	assert.Equal(t, 3, g.Store.Len())
	assert.True(t, g.Store.Frozen())
	require.Len(t, g.Sources, 1)
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()
	empty := writeFile(t, dir, "empty.ttl", ttlPrefixes)
	broken := writeFile(t, dir, "broken.ttl", ttlPrefixes+":a :b")

	tests := []struct {
		name string
		path string
	}{
		{"missing file", filepath.Join(dir, "absent.owl")},
		{"directory", dir},
		{"zero triples", empty},
		{"unparseable", broken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New().Load(context.Background(), tt.path)
			require.Error(t, err)
			assert.ErrorIs(t, err, ontology.ErrLoad)
		})
	}
}

func TestLoad_ImportCycle(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.ttl")
	b := filepath.Join(dir, "b.ttl")

	writeFile(t, dir, "a.ttl", ttlPrefixes+fmt.Sprintf(`
<http://example.org/a> a owl:Ontology ; owl:imports <%s> .
:A a owl:Class .
`, fileIRI(b)))
	writeFile(t, dir, "b.ttl", ttlPrefixes+fmt.Sprintf(`
<http://example.org/b> a owl:Ontology ; owl:imports <%s> .
:B a owl:Class .
`, fileIRI(a)))

	g, err := New(WithImports(true)).Load(context.Background(), a)
	require.NoError(t, err)

	assert.Len(t, g.Sources, 2)
	assert.True(t, g.Store.HasSubject(storage.IRI("http://example.org/onto#A")))
	assert.True(t, g.Store.HasSubject(storage.IRI("http://example.org/onto#B")))
}

func TestLoad_ImportsDisabled(t *testing.T) {
	dir := t.TempDir()
	b := writeFile(t, dir, "b.ttl", ttlPrefixes+":B a owl:Class .\n")
	a := writeFile(t, dir, "a.ttl", ttlPrefixes+fmt.Sprintf(`
<http://example.org/a> a owl:Ontology ; owl:imports <%s> .
`, fileIRI(b)))

	g, err := New().Load(context.Background(), a)
	require.NoError(t, err)
	assert.Len(t, g.Sources, 1)
	assert.False(t, g.Store.HasSubject(storage.IRI("http://example.org/onto#B")))
}

func TestLoad_ImportsOverrideIgnoresOptionOrder(t *testing.T) {
	dir := t.TempDir()
	b := writeFile(t, dir, "b.ttl", ttlPrefixes+":B a owl:Class .\n")
	a := writeFile(t, dir, "a.ttl", ttlPrefixes+fmt.Sprintf(`
<http://example.org/a> a owl:Ontology ; owl:imports <%s> .
:A a owl:Class .
`, fileIRI(b)))

	tests := []struct {
		name    string
		opts    []Option
		sources int
	}{
		{name: "hook enables", opts: []Option{WithHooks(ontology.Hooks{ContainsImports: true})}, sources: 2},
		{name: "disable after hooks", opts: []Option{WithHooks(ontology.Hooks{ContainsImports: true}), WithImports(false)}, sources: 1},
		{name: "disable before hooks", opts: []Option{WithImports(false), WithHooks(ontology.Hooks{ContainsImports: true})}, sources: 1},
		{name: "enable before hooks", opts: []Option{WithImports(true), WithHooks(ontology.Hooks{})}, sources: 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := New(tt.opts...).Load(context.Background(), a)
			require.NoError(t, err)
			assert.Len(t, g.Sources, tt.sources)
		})
	}
}

func TestLoad_FailedImportIsSkipped(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.ttl", ttlPrefixes+`
<http://example.org/a> a owl:Ontology ;
    owl:imports <file:///does/not/exist.owl> , <urn:unsupported:scheme> .
:A a owl:Class .
`)

	g, err := New(WithImports(true)).Load(context.Background(), a)
	require.NoError(t, err)
	assert.Len(t, g.Sources, 1)
}

func TestLoad_RemoteImport(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/core.ttl" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(ttlPrefixes + ":Core a owl:Class .\n"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	a := writeFile(t, dir, "a.ttl", ttlPrefixes+fmt.Sprintf(`
<http://example.org/a> a owl:Ontology ; owl:imports <%s/core.ttl> , <%s/missing.ttl> .
`, srv.URL, srv.URL))

	g, err := New(WithImports(true), WithHTTPClient(srv.Client())).Load(context.Background(), a)
	require.NoError(t, err)
	assert.Len(t, g.Sources, 2)
	assert.True(t, g.Store.HasSubject(storage.IRI("http://example.org/onto#Core")))
}

func TestLoad_ResolveImportHook(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.ttl", ttlPrefixes+":B a owl:Class .\n")
	a := writeFile(t, dir, "a.ttl", ttlPrefixes+`
<http://example.org/a> a owl:Ontology ; owl:imports <http://example.org/imports/b.ttl> .
`)

	hooks := ontology.Hooks{
		ContainsImports: true,
		ResolveImport: func(uri, baseDir string) (string, bool) {
			return filepath.Join(baseDir, filepath.Base(uri)), true
		},
	}
	g, err := New(WithHooks(hooks), WithBaseDir(dir)).Load(context.Background(), a)
	require.NoError(t, err)
	assert.True(t, g.Store.HasSubject(storage.IRI("http://example.org/onto#B")))
}

func TestLoad_BlankNodesScopedPerSource(t *testing.T) {
	dir := t.TempDir()
	b := writeFile(t, dir, "b.ttl", ttlPrefixes+"_:x rdfs:subClassOf :B .\n")
	a := writeFile(t, dir, "a.ttl", ttlPrefixes+fmt.Sprintf(`
<http://example.org/a> a owl:Ontology ; owl:imports <%s> .
_:x rdfs:subClassOf :A .
`, fileIRI(b)))

	g, err := New(WithImports(true)).Load(context.Background(), a)
	require.NoError(t, err)

	subjects := g.Store.Subjects(storage.IRI(vocabulary.RDFSSubClassOf), storage.IRI("http://example.org/onto#A"))
	require.Len(t, subjects, 1)
	other := g.Store.Subjects(storage.IRI(vocabulary.RDFSSubClassOf), storage.IRI("http://example.org/onto#B"))
	require.Len(t, other, 1)
	assert.NotEqual(t, subjects[0], other[0])
}

type fakeFetcher struct {
	path string
	err  error
	got  []string
}

func (f *fakeFetcher) Fetch(_ context.Context, id, domain, format string) (string, error) {
	f.got = []string{id, domain, format}
	return f.path, f.err
}

func TestLoad_FromFetcher(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "wine.owl", ttlPrefixes+":Wine a owl:Class .\n")

	f := &fakeFetcher{path: p}
	d := ontology.Descriptor{ID: "Wine", Domain: "Food and Beverage", Format: "OWL"}
	g, err := New(WithDescriptor(d), WithFetcher(f)).Load(context.Background(), "")
	require.NoError(t, err)

	assert.Equal(t, graph.OriginHub, g.Origin)
	assert.Equal(t, []string{"Wine", "Food and Beverage", "OWL"}, f.got)
	assert.Equal(t, 1, g.Store.Len())

	_, err = New(WithDescriptor(d), WithFetcher(&fakeFetcher{err: errors.New("offline")})).Load(context.Background(), "")
	assert.ErrorIs(t, err, ontology.ErrLoad)

	_, err = New(WithDescriptor(d)).Load(context.Background(), "")
	assert.ErrorIs(t, err, ontology.ErrLoad)
}

func TestImportsOf(t *testing.T) {
	ont := storage.IRI("http://example.org/a")
	notOnt := storage.IRI("http://example.org/x")
	imports := storage.IRI(vocabulary.OWLImports)
	triples := []storage.Triple{
		{Subject: ont, Predicate: storage.IRI(vocabulary.RDFType), Object: storage.IRI(vocabulary.OWLOntology)},
		{Subject: ont, Predicate: imports, Object: storage.IRI("http://example.org/b")},
		{Subject: ont, Predicate: imports, Object: storage.IRI("http://example.org/b")},
		{Subject: ont, Predicate: imports, Object: storage.IRI("http://example.org/c")},
		{Subject: notOnt, Predicate: imports, Object: storage.IRI("http://example.org/d")},
	}
	assert.Equal(t, []string{"http://example.org/b", "http://example.org/c"}, ImportsOf(triples))
}
