package auth

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

const sweepEvery = 256

type memoryEntry struct {
	mu      sync.Mutex
	s       Session
	expires time.Time
	gone    bool
}

// MemoryStore keeps sessions in process. Each record has its own lock, so
// requests on different sessions never serialize on one another.
type MemoryStore struct {
	entries sync.Map // key -> *memoryEntry
	creates atomic.Uint64
	now     func() time.Time
}

func NewMemoryStore(clock func() time.Time) *MemoryStore {
	if clock == nil {
		clock = time.Now
	}
	return &MemoryStore{now: clock}
}

func (m *MemoryStore) Create(ctx context.Context, key string, s Session, ttl time.Duration) error {
	m.entries.Store(key, &memoryEntry{s: s, expires: m.now().Add(ttl)})
	if m.creates.Add(1)%sweepEvery == 0 {
		m.sweep()
	}
	return nil
}

func (m *MemoryStore) Touch(ctx context.Context, key string, fn func(s *Session) (time.Duration, error)) (Session, error) {
	v, ok := m.entries.Load(key)
	if !ok {
		return Session{}, ErrNotFound
	}
	e := v.(*memoryEntry)

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.gone {
		return Session{}, ErrNotFound
	}
	if !m.now().Before(e.expires) {
		m.drop(key, e)
		return Session{}, ErrNotFound
	}

	next := e.s
	ttl, err := fn(&next)
	if err != nil {
		m.drop(key, e)
		return Session{}, err
	}
	e.s = next
	e.expires = m.now().Add(ttl)
	return next, nil
}

func (m *MemoryStore) Delete(ctx context.Context, key string) error {
	v, ok := m.entries.Load(key)
	if !ok {
		return nil
	}
	e := v.(*memoryEntry)
	e.mu.Lock()
	m.drop(key, e)
	e.mu.Unlock()
	return nil
}

// Len reports the number of stored records, expired ones included.
func (m *MemoryStore) Len() int {
	n := 0
	m.entries.Range(func(_, _ any) bool { n++; return true })
	return n
}

// drop must be called with e.mu held.
func (m *MemoryStore) drop(key string, e *memoryEntry) {
	e.gone = true
	m.entries.CompareAndDelete(key, e)
}

func (m *MemoryStore) sweep() {
	now := m.now()
	m.entries.Range(func(k, v any) bool {
		e := v.(*memoryEntry)
		if e.mu.TryLock() {
			if !now.Before(e.expires) {
				m.drop(k.(string), e)
			}
			e.mu.Unlock()
		}
		return true
	})
}
