// Package parser decodes RDF serializations into storage triples.
package parser

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/sciknoworg/OntoLearner-sub000/storage"
)

// Parser decodes one RDF serialization.
type Parser interface {
	// Name returns the parser identifier.
	Name() string

	// Formats returns the lowercase format names and extensions handled.
	Formats() []string

	// Parse decodes every statement in r. base resolves relative IRIs where
	// the underlying decoder supports it.
	Parse(r io.Reader, base string) ([]storage.Triple, error)
}

// Registry maps format names to parsers.
type Registry struct {
	mu      sync.RWMutex
	parsers map[string]Parser
}

// DefaultRegistry is the registry with every built-in parser.
var DefaultRegistry = NewRegistry()

// NewRegistry creates a registry with the built-in parsers.
func NewRegistry() *Registry {
	r := &Registry{parsers: make(map[string]Parser)}

	r.Register(NewTurtleParser())
	r.Register(NewRDFXMLParser())
	r.Register(NewNTriplesParser())
	r.Register(NewJSONLDParser())

	return r
}

// Register adds p under each of its formats.
func (r *Registry) Register(p Parser) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, f := range p.Formats() {
		r.parsers[normalizeFormat(f)] = p
	}
}

// Get returns the parser for a format name or extension, or nil.
func (r *Registry) Get(format string) Parser {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.parsers[normalizeFormat(format)]
}

// Formats returns every registered format name.
func (r *Registry) Formats() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.parsers))
	for f := range r.parsers {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// Parse decodes content. The format hint picks the parser; content that is
// plainly Turtle or RDF/XML overrides a hint that disagrees, since OWL and
// RDF files are published in either syntax.
func (r *Registry) Parse(content []byte, format, base string) ([]storage.Triple, error) {
	p, err := r.choose(content, format)
	if err != nil {
		return nil, err
	}
	triples, err := p.Parse(bytes.NewReader(content), base)
	if err != nil {
		return nil, fmt.Errorf("%s parser: %w", p.Name(), err)
	}
	return triples, nil
}

// ParseFile reads and decodes path. An empty format falls back to the file
// extension.
func (r *Registry) ParseFile(path, format string) ([]storage.Triple, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if format == "" {
		format = filepath.Ext(path)
	}
	base := "file://" + filepath.ToSlash(path)
	return r.Parse(content, format, base)
}

func (r *Registry) choose(content []byte, format string) (Parser, error) {
	hinted := r.Get(format)

	switch sniff(content) {
	case syntaxXML:
		if hinted == nil || hinted.Name() == turtleName {
			if p := r.Get("rdfxml"); p != nil {
				return p, nil
			}
		}
	case syntaxTurtle:
		if hinted == nil || hinted.Name() == rdfxmlName {
			if p := r.Get("ttl"); p != nil {
				return p, nil
			}
		}
	case syntaxJSON:
		if hinted == nil {
			if p := r.Get("jsonld"); p != nil {
				return p, nil
			}
		}
	}

	if hinted == nil {
		return nil, fmt.Errorf("unsupported format %q", format)
	}
	return hinted, nil
}

type syntax int

const (
	syntaxUnknown syntax = iota
	syntaxXML
	syntaxTurtle
	syntaxJSON
)

// sniff guesses the syntax from the first significant bytes.
func sniff(content []byte) syntax {
	head := bytes.TrimLeft(bytes.TrimPrefix(content, []byte("\xef\xbb\xbf")), " \t\r\n")
	if len(head) > 512 {
		head = head[:512]
	}
	s := string(head)
	switch {
	case strings.HasPrefix(s, "<?xml"), strings.HasPrefix(s, "<rdf:RDF"), strings.HasPrefix(s, "<!DOCTYPE"):
		return syntaxXML
	case strings.HasPrefix(s, "@prefix"), strings.HasPrefix(s, "@base"),
		strings.HasPrefix(strings.ToUpper(s), "PREFIX "), strings.HasPrefix(strings.ToUpper(s), "BASE "):
		return syntaxTurtle
	case strings.HasPrefix(s, "{"), strings.HasPrefix(s, "["):
		return syntaxJSON
	default:
		return syntaxUnknown
	}
}

// normalizeFormat lowercases and strips a leading dot so that descriptor
// formats ("OWL", "RDF/XML") and file extensions (".ttl") share keys.
func normalizeFormat(format string) string {
	f := strings.ToLower(strings.TrimSpace(format))
	return strings.TrimPrefix(f, ".")
}
