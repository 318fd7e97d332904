package storage

import (
	"fmt"
	"sync"
)

// Store is an insertion-ordered, deduplicated set of triples with subject,
// predicate and object indexes. Lookups return triples in the order they were
// first added, which keeps extraction output aligned with source order.
//
// A Store is filled by a single loader and then frozen; after Freeze it is
// safe for any number of concurrent readers.
type Store struct {
	mu      sync.RWMutex
	triples []Triple
	seen    map[Triple]struct{}
	bySubj  map[Term][]int
	byPred  map[Term][]int
	byObj   map[Term][]int
	frozen  bool
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		seen:   make(map[Triple]struct{}),
		bySubj: make(map[Term][]int),
		byPred: make(map[Term][]int),
		byObj:  make(map[Term][]int),
	}
}

// Add inserts t. It reports whether t was new.
func (s *Store) Add(t Triple) (bool, error) {
	if err := t.Validate(); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.frozen {
		return false, ErrFrozen
	}
	if _, ok := s.seen[t]; ok {
		return false, nil
	}

	idx := len(s.triples)
	s.triples = append(s.triples, t)
	s.seen[t] = struct{}{}
	s.bySubj[t.Subject] = append(s.bySubj[t.Subject], idx)
	s.byPred[t.Predicate] = append(s.byPred[t.Predicate], idx)
	s.byObj[t.Object] = append(s.byObj[t.Object], idx)
	return true, nil
}

// AddAll inserts every triple and returns how many were new.
func (s *Store) AddAll(triples []Triple) (int, error) {
	added := 0
	for _, t := range triples {
		ok, err := s.Add(t)
		if err != nil {
			return added, fmt.Errorf("add %s: %w", t, err)
		}
		if ok {
			added++
		}
	}
	return added, nil
}

// Freeze makes the store read-only.
func (s *Store) Freeze() {
	s.mu.Lock()
	s.frozen = true
	s.mu.Unlock()
}

// Frozen reports whether Freeze was called.
func (s *Store) Frozen() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.frozen
}

// Len returns the number of distinct triples.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.triples)
}

// Triples returns a copy of all triples in insertion order.
func (s *Store) Triples() []Triple {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Triple, len(s.triples))
	copy(out, s.triples)
	return out
}

// Has reports whether the exact triple is present.
func (s *Store) Has(t Triple) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.seen[t]
	return ok
}

// Match returns the triples matching the pattern in insertion order. A nil
// position is a wildcard.
func (s *Store) Match(subj, pred, obj *Term) []Triple {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var candidates []int
	all := true
	narrow := func(idx []int) {
		if all || len(idx) < len(candidates) {
			candidates = idx
			all = false
		}
	}
	if subj != nil {
		narrow(s.bySubj[*subj])
	}
	if pred != nil {
		narrow(s.byPred[*pred])
	}
	if obj != nil {
		narrow(s.byObj[*obj])
	}

	var out []Triple
	if all {
		out = make([]Triple, len(s.triples))
		copy(out, s.triples)
		return out
	}
	for _, i := range candidates {
		t := s.triples[i]
		if subj != nil && t.Subject != *subj {
			continue
		}
		if pred != nil && t.Predicate != *pred {
			continue
		}
		if obj != nil && t.Object != *obj {
			continue
		}
		out = append(out, t)
	}
	return out
}

// Objects returns the objects of (subj, pred, ?) in insertion order.
func (s *Store) Objects(subj, pred Term) []Term {
	matches := s.Match(&subj, &pred, nil)
	out := make([]Term, 0, len(matches))
	for _, t := range matches {
		out = append(out, t.Object)
	}
	return out
}

// Subjects returns the distinct subjects of (?, pred, obj) in first-seen order.
func (s *Store) Subjects(pred, obj Term) []Term {
	matches := s.Match(nil, &pred, &obj)
	out := make([]Term, 0, len(matches))
	seen := make(map[Term]struct{}, len(matches))
	for _, t := range matches {
		if _, ok := seen[t.Subject]; ok {
			continue
		}
		seen[t.Subject] = struct{}{}
		out = append(out, t.Subject)
	}
	return out
}

// HasSubject reports whether term appears as a subject of any triple.
func (s *Store) HasSubject(term Term) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.bySubj[term]) > 0
}
