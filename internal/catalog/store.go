package catalog

import (
	"sync"
	"time"

	"synthlobby/internal/model"
)

// Store holds the current catalogue snapshot. A snapshot is immutable once
// published; refreshes replace it wholesale. All writes go through Replace,
// readers always see one consistent snapshot.
type Store struct {
	mu         sync.RWMutex
	synths     []model.Synth
	byID       map[string]model.Synth
	lastScrape time.Time
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{byID: map[string]model.Synth{}}
}

// Replace publishes a new catalogue snapshot and its scrape time.
func (s *Store) Replace(synths []model.Synth, scrapedAt time.Time) {
	byID := make(map[string]model.Synth, len(synths))
	for _, synth := range synths {
		byID[synth.ID] = synth
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.synths = synths
	s.byID = byID
	s.lastScrape = scrapedAt
}

// Snapshot returns the current catalogue. Callers must not mutate it.
func (s *Store) Snapshot() []model.Synth {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.synths
}

// Get returns the listing with the given ID from the current snapshot.
func (s *Store) Get(id string) (model.Synth, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	synth, ok := s.byID[id]
	return synth, ok
}

// LastScrape returns when the current snapshot was scraped. The zero time
// means no snapshot has been published yet.
func (s *Store) LastScrape() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastScrape
}
