package session

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/i474232898/weather-dashboard/internal/dashboard"
)

var (
	// ErrNotFound is returned when no dashboard exists for a session id.
	ErrNotFound = errors.New("no dashboard for session")
)

// entry holds one dashboard and its last access time.
type entry struct {
	Dashboard  *dashboard.Dashboard
	CreatedAt  time.Time
	LastAccess time.Time
}

// MemoryStore is a concurrency-safe in-memory registry of dashboards.
type MemoryStore struct {
	mu sync.RWMutex

	// key: session id
	data map[string]*entry

	// retention configuration
	maxSessions int           // max number of live sessions
	maxIdle     time.Duration // optional max time since last access

	now func() time.Time
}

// NewMemoryStore creates a new MemoryStore with optional limits.
// If maxSessions is <= 0, it is treated as unlimited.
func NewMemoryStore(maxSessions int, maxIdle time.Duration) *MemoryStore {
	return &MemoryStore{
		data:        make(map[string]*entry),
		maxSessions: maxSessions,
		maxIdle:     maxIdle,
		now:         time.Now,
	}
}

// Create registers d under a fresh id and enforces retention.
func (s *MemoryStore) Create(d *dashboard.Dashboard) string {
	id := uuid.NewString()
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[id] = &entry{Dashboard: d, CreatedAt: now, LastAccess: now}
	s.evictLocked(now, id)
	return id
}

// Get returns the dashboard for id and marks it as accessed.
func (s *MemoryStore) Get(id string) (*dashboard.Dashboard, error) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.data[id]
	if !ok || s.expired(e, now) {
		delete(s.data, id)
		return nil, ErrNotFound
	}
	e.LastAccess = now
	return e.Dashboard, nil
}

// Delete removes a session.
func (s *MemoryStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data[id]; !ok {
		return ErrNotFound
	}
	delete(s.data, id)
	return nil
}

// Len returns the number of live sessions.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

// Located returns the non-expired dashboards that already have a position.
// It does not count as an access.
func (s *MemoryStore) Located() map[string]*dashboard.Dashboard {
	now := s.now()

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]*dashboard.Dashboard)
	for id, e := range s.data {
		if s.expired(e, now) || !e.Dashboard.Located() {
			continue
		}
		out[id] = e.Dashboard
	}
	return out
}

// Prune drops idle sessions and returns how many were removed.
func (s *MemoryStore) Prune() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := len(s.data)
	s.evictLocked(s.now(), "")
	return before - len(s.data)
}

func (s *MemoryStore) expired(e *entry, now time.Time) bool {
	return s.maxIdle > 0 && now.Sub(e.LastAccess) > s.maxIdle
}

// evictLocked enforces retention by idle age, then by count (least recently
// accessed first). keep is never evicted by count.
func (s *MemoryStore) evictLocked(now time.Time, keep string) {
	if s.maxIdle > 0 {
		for id, e := range s.data {
			if s.expired(e, now) {
				delete(s.data, id)
			}
		}
	}

	if s.maxSessions <= 0 || len(s.data) <= s.maxSessions {
		return
	}

	ids := make([]string, 0, len(s.data))
	for id := range s.data {
		if id != keep {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool {
		return s.data[ids[i]].LastAccess.Before(s.data[ids[j]].LastAccess)
	})

	over := len(s.data) - s.maxSessions
	for _, id := range ids[:over] {
		delete(s.data, id)
	}
}
