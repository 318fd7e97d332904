package learner

import (
	"context"
	"math"
	"sort"
	"strings"
	"sync"
	"unicode"
)

// Document is one indexed item: the text matched against queries and the
// labels it contributes when retrieved.
type Document struct {
	ID     string   `json:"id"`
	Text   string   `json:"text"`
	Labels []string `json:"labels"`
}

// Retriever indexes documents and returns the nearest ones to a query.
type Retriever interface {
	Index(ctx context.Context, docs []Document) error
	Retrieve(ctx context.Context, query string, topK int) ([]Document, error)
}

// LexicalRetriever ranks documents by cosine similarity of character
// trigram counts, which tolerates the camel-case and snake-case variants
// common in ontology labels.
type LexicalRetriever struct {
	mu    sync.RWMutex
	docs  []Document
	vecs  []map[string]float64
	norms []float64
}

// NewLexicalRetriever creates an empty retriever.
func NewLexicalRetriever() *LexicalRetriever {
	return &LexicalRetriever{}
}

// Index replaces the indexed documents.
func (r *LexicalRetriever) Index(ctx context.Context, docs []Document) error {
	vecs := make([]map[string]float64, len(docs))
	norms := make([]float64, len(docs))
	for i, d := range docs {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		vecs[i] = trigrams(d.Text)
		norms[i] = norm(vecs[i])
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs = append([]Document(nil), docs...)
	r.vecs = vecs
	r.norms = norms
	return nil
}

// Len returns the number of indexed documents.
func (r *LexicalRetriever) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.docs)
}

// Retrieve returns up to topK documents with non-zero similarity, best
// first. Ties keep index order.
func (r *LexicalRetriever) Retrieve(ctx context.Context, query string, topK int) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if topK <= 0 {
		return nil, nil
	}

	q := trigrams(query)
	qn := norm(q)
	if qn == 0 {
		return nil, nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	type hit struct {
		idx   int
		score float64
	}
	var hits []hit
	for i, v := range r.vecs {
		if r.norms[i] == 0 {
			continue
		}
		var dot float64
		for g, c := range q {
			dot += c * v[g]
		}
		if dot > 0 {
			hits = append(hits, hit{idx: i, score: dot / (qn * r.norms[i])})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].score > hits[j].score })

	if len(hits) > topK {
		hits = hits[:topK]
	}
	out := make([]Document, len(hits))
	for i, h := range hits {
		out[i] = r.docs[h.idx]
	}
	return out, nil
}

// normalizeText splits camelCase, maps separators to spaces and lowercases.
func normalizeText(s string) string {
	var b strings.Builder
	var prev rune
	for i, r := range s {
		switch {
		case r == '_' || r == '-' || r == '.' || unicode.IsSpace(r):
			b.WriteRune(' ')
		case i > 0 && unicode.IsUpper(r) && unicode.IsLower(prev):
			b.WriteRune(' ')
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(unicode.ToLower(r))
		}
		prev = r
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func trigrams(s string) map[string]float64 {
	out := make(map[string]float64)
	for _, word := range strings.Fields(normalizeText(s)) {
		padded := []rune(" " + word + " ")
		for i := 0; i+3 <= len(padded); i++ {
			out[string(padded[i:i+3])]++
		}
	}
	return out
}

func norm(v map[string]float64) float64 {
	var sum float64
	for _, c := range v {
		sum += c * c
	}
	return math.Sqrt(sum)
}
