package label

import (
	"log/slog"
	"strings"

	"github.com/sciknoworg/OntoLearner-sub000/storage"
	"github.com/sciknoworg/OntoLearner-sub000/vocabulary"
)

// DefaultLanguage is the preferred rdfs:label language.
const DefaultLanguage = "en"

// Normalizer resolves terms to labels against a frozen store.
type Normalizer struct {
	store         *storage.Store
	language      string
	allowReserved bool
	valid         func(string) bool
	logger        *slog.Logger
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithLanguage sets the preferred label language.
func WithLanguage(lang string) Option {
	return func(n *Normalizer) {
		if lang != "" {
			n.language = strings.ToLower(lang)
		}
	}
}

// WithReservedAllowed keeps "root" and "thing" labels.
func WithReservedAllowed(allow bool) Option {
	return func(n *Normalizer) {
		n.allowReserved = allow
	}
}

// WithValidator adds an extra label filter applied after the built-in ones.
func WithValidator(valid func(string) bool) Option {
	return func(n *Normalizer) {
		n.valid = valid
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(n *Normalizer) {
		if logger != nil {
			n.logger = logger
		}
	}
}

// NewNormalizer creates a normalizer over store.
func NewNormalizer(store *storage.Store, opts ...Option) *Normalizer {
	n := &Normalizer{
		store:    store,
		language: DefaultLanguage,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// LabelOf returns the label of t, or ok=false when the label is anonymous,
// reserved or rejected by the validator.
//
// For IRIs the first rdfs:label in the preferred language wins, then the
// first rdfs:label longer than three characters that does not start with
// "http", then the IRI local name. Literals label themselves; blank nodes are
// always anonymous.
func (n *Normalizer) LabelOf(t storage.Term) (string, bool) {
	var lbl string
	switch t.Kind {
	case storage.KindIRI:
		lbl = n.iriLabel(t)
	case storage.KindLiteral:
		lbl = strings.TrimSpace(t.Value)
	default:
		return "", false
	}
	if !n.Accept(lbl) {
		n.logger.Debug("Skipping anonymous label", "term", t.String(), "label", lbl)
		return "", false
	}
	return lbl, true
}

// Accept applies the anonymous, reserved and custom filters to a label.
func (n *Normalizer) Accept(lbl string) bool {
	if IsAnonymous(lbl) {
		return false
	}
	if !n.allowReserved && IsReserved(lbl) {
		return false
	}
	if n.valid != nil && !n.valid(lbl) {
		return false
	}
	return true
}

func (n *Normalizer) iriLabel(t storage.Term) string {
	labels := n.store.Objects(t, storage.IRI(vocabulary.RDFSLabel))

	for _, l := range labels {
		if l.IsLiteral() && l.Lang == n.language {
			if v := strings.TrimSpace(l.Value); v != "" {
				return v
			}
		}
	}
	for _, l := range labels {
		if !l.IsLiteral() {
			continue
		}
		v := strings.TrimSpace(l.Value)
		if len(v) > 3 && !strings.HasPrefix(v, "http") {
			return v
		}
	}
	return LocalName(t.Value)
}

// LocalName returns the substring after the last '#' or '/' of an IRI.
func LocalName(iri string) string {
	trimmed := strings.TrimRight(iri, "/#")
	if i := strings.LastIndexAny(trimmed, "#/"); i >= 0 {
		return trimmed[i+1:]
	}
	return trimmed
}
