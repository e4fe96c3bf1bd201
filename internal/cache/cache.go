package cache

import (
	"sync"
	"time"
)

// DefaultTTL is how long a cached payload stays visible.
const DefaultTTL = 300 * time.Second

// Clock returns the current time; injectable for tests.
type Clock func() time.Time

type entry struct {
	value      string
	insertedAt time.Time
}

// Store is a mutex-guarded TTL cache for raw fetched payloads. Entries older
// than the TTL are indistinguishable from absent ones and are purged lazily
// on the next lookup of the same key. All map access is serialized through a
// single lock; the request rate this serves makes per-key locking pointless.
type Store struct {
	mu      sync.Mutex
	entries map[string]entry
	ttl     time.Duration
	now     Clock
}

// New creates a cache store with the given TTL (DefaultTTL if zero).
func New(ttl time.Duration) *Store {
	return NewWithClock(ttl, time.Now)
}

// NewWithClock creates a cache store with an explicit clock.
func NewWithClock(ttl time.Duration, now Clock) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     now,
	}
}

// Get returns the cached value for key if it is still fresh. An expired
// entry is evicted and reported as absent.
func (s *Store) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return "", false
	}
	if s.now().Sub(e.insertedAt) >= s.ttl {
		delete(s.entries, key)
		return "", false
	}
	return e.value, true
}

// Set stores a value for key, restarting its TTL.
func (s *Store) Set(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = entry{value: value, insertedAt: s.now()}
}

// Len returns the number of entries currently held, expired or not.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
