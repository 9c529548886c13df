package memory

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/swarmforge/swarmforge/core"
)

// Entry is a stored value plus its write timestamp. Short-term entries may
// additionally carry a TTL; the TTL is recorded for observability but expiry
// is not enforced (documented limitation, callers must not rely on it).
type Entry struct {
	Value     core.Value    `json:"value"`
	Timestamp time.Time     `json:"timestamp"`
	TTL       time.Duration `json:"ttl,omitempty"`
}

// SearchHit is a single key match returned by Search.
type SearchHit struct {
	Key   string     `json:"key"`
	Value core.Value `json:"value"`
}

// Stats summarizes store occupancy.
type Stats struct {
	ShortTermSize      int      `json:"short_term_size"`
	LongTermCategories []string `json:"long_term_categories"`
	LongTermTotal      int      `json:"long_term_total"`
}

// Store is a process-local two-tier key/value memory.
//
// The short-term tier is a flat namespace with overwrite-on-write semantics.
// The long-term tier is partitioned into categories; each category keeps an
// append-only key index alongside its bucket. Storing the same key twice in a
// category overwrites the bucket entry but appends to the index again, so the
// index may contain duplicates. That is intentional: the index doubles as a
// write audit trail.
//
// Invariant: every key present in a category bucket appears at least once in
// that category's index.
//
// All methods are safe for concurrent use (RWMutex). Note that the pipeline's
// count-derived long-term keys still assume a single writer per category; a
// deployment sharing one Store across concurrent pipelines must coordinate
// key derivation itself.
type Store struct {
	mu        sync.RWMutex
	shortTerm map[string]Entry
	longTerm  map[string]map[string]Entry
	index     map[string][]string
}

// NewStore constructs an empty two-tier store.
func NewStore() *Store {
	return &Store{
		shortTerm: make(map[string]Entry),
		longTerm:  make(map[string]map[string]Entry),
		index:     make(map[string][]string),
	}
}

// StoreShortTerm writes a short-term entry, unconditionally overwriting any
// previous value for the key. A zero ttl means no TTL was requested.
func (s *Store) StoreShortTerm(key string, value core.Value, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shortTerm[key] = Entry{Value: value, Timestamp: time.Now(), TTL: ttl}
}

// RetrieveShortTerm looks up a short-term entry. The TTL is not consulted.
func (s *Store) RetrieveShortTerm(key string) (core.Value, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.shortTerm[key]
	if !ok {
		return core.Null(), false
	}
	return entry.Value, true
}

// StoreLongTerm writes a long-term entry under the given category, creating
// the category bucket on first use. The key is always appended to the
// category index, even when it already exists in the bucket.
func (s *Store) StoreLongTerm(key string, value core.Value, category string) {
	if category == "" {
		category = "general"
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	bucket, ok := s.longTerm[category]
	if !ok {
		bucket = make(map[string]Entry)
		s.longTerm[category] = bucket
	}
	bucket[key] = Entry{Value: value, Timestamp: time.Now()}
	s.index[category] = append(s.index[category], key)
}

// RetrieveLongTerm looks up a long-term entry. Absent category or key both
// report a miss, not an error.
func (s *Store) RetrieveLongTerm(key, category string) (core.Value, bool) {
	if category == "" {
		category = "general"
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	bucket, ok := s.longTerm[category]
	if !ok {
		return core.Null(), false
	}
	entry, ok := bucket[key]
	if !ok {
		return core.Null(), false
	}
	return entry.Value, true
}

// Search matches query case-insensitively as a substring against the keys of
// one category. There is no cross-category search. Hits are returned in
// sorted key order so results are stable across runs.
func (s *Store) Search(query, category string) []SearchHit {
	if category == "" {
		category = "general"
	}
	needle := strings.ToLower(query)
	s.mu.RLock()
	defer s.mu.RUnlock()
	bucket, ok := s.longTerm[category]
	if !ok {
		return nil
	}
	keys := make([]string, 0, len(bucket))
	for key := range bucket {
		if strings.Contains(strings.ToLower(key), needle) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	hits := make([]SearchHit, 0, len(keys))
	for _, key := range keys {
		hits = append(hits, SearchHit{Key: key, Value: bucket[key].Value})
	}
	return hits
}

// DeleteShortTerm removes one short-term entry and reports whether it
// existed.
func (s *Store) DeleteShortTerm(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.shortTerm[key]
	delete(s.shortTerm, key)
	return ok
}

// ClearShortTerm drops all short-term entries. Long-term buckets and their
// indexes are untouched.
func (s *Store) ClearShortTerm() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shortTerm = make(map[string]Entry)
}

// CategorySize returns the number of distinct keys stored under a category.
// The pipeline uses this to derive its monotonically increasing task keys.
func (s *Store) CategorySize(category string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.longTerm[category])
}

// CategoryIndex returns a copy of the append-only key index for a category,
// in write order, duplicates included.
func (s *Store) CategoryIndex(category string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := s.index[category]
	cp := make([]string, len(idx))
	copy(cp, idx)
	return cp
}

// ShortTermSnapshot returns a copy of the short-term tier keyed by entry key.
func (s *Store) ShortTermSnapshot() map[string]core.Value {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := make(map[string]core.Value, len(s.shortTerm))
	for key, entry := range s.shortTerm {
		snap[key] = entry.Value
	}
	return snap
}

// LongTermSnapshot returns a copy of the long-term tier keyed by category
// then entry key.
func (s *Store) LongTermSnapshot() map[string]map[string]core.Value {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := make(map[string]map[string]core.Value, len(s.longTerm))
	for category, bucket := range s.longTerm {
		entries := make(map[string]core.Value, len(bucket))
		for key, entry := range bucket {
			entries[key] = entry.Value
		}
		snap[category] = entries
	}
	return snap
}

// GetStats summarizes current occupancy across both tiers. Category names are
// sorted for deterministic output.
func (s *Store) GetStats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	categories := make([]string, 0, len(s.longTerm))
	total := 0
	for category, bucket := range s.longTerm {
		categories = append(categories, category)
		total += len(bucket)
	}
	sort.Strings(categories)
	return Stats{
		ShortTermSize:      len(s.shortTerm),
		LongTermCategories: categories,
		LongTermTotal:      total,
	}
}
