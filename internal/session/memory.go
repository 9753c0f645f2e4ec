package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps sessions in process memory. Sessions idle for longer
// than the TTL are treated as gone.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]Session
	inFlight map[string]struct{}
	ttl      time.Duration
	now      func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]Session),
		inFlight: make(map[string]struct{}),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (m *MemoryStore) Create(ctx context.Context, s Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	m.sweep(now)
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	s.UpdatedAt = now
	m.sessions[s.ID] = s
	return nil
}

func (m *MemoryStore) Get(ctx context.Context, id string) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.lookup(id)
}

func (m *MemoryStore) Update(ctx context.Context, id string, fn UpdateFunc) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur, err := m.lookup(id)
	if err != nil {
		return Session{}, err
	}

	next, err := fn(cur)
	if err != nil {
		return Session{}, err
	}
	next.ID = cur.ID
	next.UpdatedAt = m.now()
	m.sessions[id] = next
	return next, nil
}

func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, err := m.lookup(id); err != nil {
		return err
	}
	delete(m.sessions, id)
	return nil
}

func (m *MemoryStore) Acquire(ctx context.Context, id, op string) (func(), error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := lockKey(id, op)
	if _, busy := m.inFlight[k]; busy {
		return nil, ErrBusy
	}
	m.inFlight[k] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.inFlight, k)
			m.mu.Unlock()
		})
	}, nil
}

// lookup must be called with mu held.
func (m *MemoryStore) lookup(id string) (Session, error) {
	s, ok := m.sessions[id]
	if !ok {
		return Session{}, ErrNotFound
	}
	if m.ttl > 0 && m.now().Sub(s.UpdatedAt) > m.ttl {
		delete(m.sessions, id)
		return Session{}, ErrNotFound
	}
	return s, nil
}

// sweep drops every expired session so abandoned drafts do not pile up.
// It must be called with mu held.
func (m *MemoryStore) sweep(now time.Time) {
	if m.ttl <= 0 {
		return
	}
	for id, s := range m.sessions {
		if now.Sub(s.UpdatedAt) > m.ttl {
			delete(m.sessions, id)
		}
	}
}

func lockKey(id, op string) string {
	return id + ":" + op
}
