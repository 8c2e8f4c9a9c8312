package store

import (
	"context"
	"strconv"
	"sync"
	"time"
)

type memoryEntry struct {
	value     string
	count     int64
	expiresAt time.Time
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// memoryStore is the process-local GuardStore. A single mutex guards the map;
// expired entries are dropped lazily on access and swept on writes.
type memoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemory creates an in-memory GuardStore. State is intentionally
// ephemeral: it does not survive a process restart.
func NewMemory() GuardStore {
	return &memoryStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (s *memoryStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.liveEntry(key)
	if !ok {
		return "", false, nil
	}

	return entry.value, true, nil
}

func (s *memoryStore) Set(_ context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweep()
	// A numeric value keeps the counter in step, matching redis where INCR
	// continues from a SET value.
	count, _ := strconv.ParseInt(value, 10, 64)
	s.entries[key] = memoryEntry{value: value, count: count, expiresAt: s.now().Add(ttl)}

	return nil
}

func (s *memoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key)

	return nil
}

func (s *memoryStore) GetDel(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.liveEntry(key)
	if !ok {
		return "", false, nil
	}

	delete(s.entries, key)

	return entry.value, true, nil
}

func (s *memoryStore) Increment(_ context.Context, key string, ttl time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.liveEntry(key)
	if !ok {
		// First hit opens the window.
		entry = memoryEntry{expiresAt: s.now().Add(ttl)}
	}

	entry.count++
	entry.value = strconv.FormatInt(entry.count, 10)
	s.entries[key] = entry

	return entry.count, nil
}

func (s *memoryStore) TTL(_ context.Context, key string) (time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.liveEntry(key)
	if !ok {
		return 0, nil
	}

	return entry.expiresAt.Sub(s.now()), nil
}

// liveEntry returns the unexpired entry for key, dropping it when stale.
// Callers must hold the mutex.
func (s *memoryStore) liveEntry(key string) (memoryEntry, bool) {
	entry, ok := s.entries[key]
	if !ok {
		return memoryEntry{}, false
	}
	if entry.expired(s.now()) {
		delete(s.entries, key)

		return memoryEntry{}, false
	}

	return entry, true
}

// sweep drops all expired entries. Callers must hold the mutex.
func (s *memoryStore) sweep() {
	now := s.now()
	for key, entry := range s.entries {
		if entry.expired(now) {
			delete(s.entries, key)
		}
	}
}
