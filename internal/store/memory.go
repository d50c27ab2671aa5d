package store

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/i474232898/weather-widget/internal/widget"
)

var (
	// ErrNotFound is returned when no session exists for a given ID.
	ErrNotFound = errors.New("widget session not found")
)

type entry struct {
	widget   *widget.Widget
	lastSeen time.Time
}

// MemoryStore is a concurrency-safe in-memory store of widget sessions.
// Nothing is persisted; sessions live until they idle out or are evicted.
type MemoryStore struct {
	mu sync.RWMutex

	// key: session ID
	data map[string]*entry

	// retention configuration
	maxSessions int           // max number of live sessions
	maxAge      time.Duration // max idle time since last access

	now func() time.Time
}

// NewMemoryStore creates a new MemoryStore with optional limits.
// If maxSessions or maxAge is <= 0, that limit is treated as unlimited.
func NewMemoryStore(maxSessions int, maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		data:        make(map[string]*entry),
		maxSessions: maxSessions,
		maxAge:      maxAge,
		now:         time.Now,
	}
}

// Save stores w under its ID. When the store is full the least recently seen session is evicted.
func (s *MemoryStore) Save(w *widget.Widget) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[w.ID()] = &entry{widget: w, lastSeen: s.now()}

	// Enforce retention by count.
	if s.maxSessions > 0 && len(s.data) > s.maxSessions {
		ids := make([]string, 0, len(s.data))
		for id := range s.data {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool {
			return s.data[ids[i]].lastSeen.Before(s.data[ids[j]].lastSeen)
		})
		for _, id := range ids[:len(s.data)-s.maxSessions] {
			delete(s.data, id)
		}
	}
}

// Get returns the session and marks it as seen.
func (s *MemoryStore) Get(id string) (*widget.Widget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.data[id]
	if !ok {
		return nil, ErrNotFound
	}
	if s.expired(e) {
		delete(s.data, id)
		return nil, ErrNotFound
	}

	e.lastSeen = s.now()
	return e.widget, nil
}

// Prune drops sessions idle for longer than the configured max age and returns how many were removed.
func (s *MemoryStore) Prune() int {
	if s.maxAge <= 0 {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, e := range s.data {
		if s.expired(e) {
			delete(s.data, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored sessions.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

func (s *MemoryStore) expired(e *entry) bool {
	return s.maxAge > 0 && s.now().Sub(e.lastSeen) > s.maxAge
}
