// Package corpus loads the plain-text documents used as text2onto inputs.
package corpus

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Extensions are the document types Load reads.
var Extensions = []string{".txt", ".md", ".markdown", ".html", ".htm"}

// Document is one loaded document. Text is plain text or markdown.
type Document struct {
	ID    string `json:"id"`
	Path  string `json:"path"`
	Title string `json:"title,omitempty"`
	Text  string `json:"text"`
}

// Loader discovers and reads documents.
type Loader struct {
	converter *Converter
	chunkSize int
	logger    *slog.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithChunkSize splits documents longer than n characters into chunks.
// Zero keeps documents whole.
func WithChunkSize(n int) Option {
	return func(l *Loader) {
		if n >= 0 {
			l.chunkSize = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// NewLoader creates a document loader.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{converter: NewConverter(), logger: slog.Default()}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load expands the glob patterns (with ** support), reads every matching
// document with a known extension and returns them sorted by path. Files
// that fail to read are skipped with a warning; a pattern matching nothing
// is not an error.
func Load(ctx context.Context, patterns ...string) ([]Document, error) {
	return NewLoader().Load(ctx, patterns...)
}

// Load is the Loader form of the package-level Load.
func (l *Loader) Load(ctx context.Context, patterns ...string) ([]Document, error) {
	paths, err := expand(patterns)
	if err != nil {
		return nil, err
	}

	var docs []Document
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		doc, err := l.ReadFile(path)
		if err != nil {
			l.logger.Warn("Skipping unreadable document", "path", path, "error", err)
			continue
		}
		if l.chunkSize > 0 {
			docs = append(docs, Chunk(doc, l.chunkSize)...)
		} else {
			docs = append(docs, doc)
		}
	}
	l.logger.Debug("Corpus loaded", "files", len(paths), "documents", len(docs))
	return docs, nil
}

// ReadFile reads one document. HTML is reduced to its main content.
func (l *Loader) ReadFile(path string) (Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Document{}, err
	}

	doc := Document{ID: documentID(path), Path: path}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		res, err := l.converter.Convert(raw)
		if err != nil {
			return Document{}, fmt.Errorf("convert %s: %w", path, err)
		}
		doc.Title, doc.Text = res.Title, res.Markdown
	case ".md", ".markdown":
		doc.Text = strings.TrimSpace(string(raw))
		doc.Title = markdownTitle(doc.Text)
	default:
		doc.Text = strings.TrimSpace(string(raw))
	}
	if doc.Title == "" {
		doc.Title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return doc, nil
}

func expand(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	for _, pattern := range patterns {
		if pattern == "" {
			continue
		}
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, fmt.Errorf("glob %q: %w", pattern, err)
		}
		for _, m := range matches {
			info, err := os.Stat(m)
			if err != nil || info.IsDir() || !supported(m) || seen[m] {
				continue
			}
			seen[m] = true
			out = append(out, m)
		}
	}
	sort.Strings(out)
	return out, nil
}

func supported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// documentID is stable across runs for the same path.
func documentID(path string) string {
	sum := sha256.Sum256([]byte(filepath.ToSlash(path)))
	return "doc-" + hex.EncodeToString(sum[:])[:8]
}
