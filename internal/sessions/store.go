package sessions

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Session is the per-conversation dialogue state. Callers must hold the
// session lock (Lock/Unlock) while reading or mutating Intent, Slots or
// Completed.
type Session struct {
	mu sync.Mutex

	ID        string
	Intent    string
	Slots     map[string]string
	Completed bool
	CreatedAt time.Time

	lastSeen time.Time
}

func (s *Session) Lock()   { s.mu.Lock() }
func (s *Session) Unlock() { s.mu.Unlock() }

// SlotsSnapshot copies the slot map. Caller holds the lock.
func (s *Session) SlotsSnapshot() map[string]string {
	out := make(map[string]string, len(s.Slots))
	for k, v := range s.Slots {
		out[k] = v
	}
	return out
}

type Store struct {
	mu      sync.RWMutex
	data    map[string]*Session
	idleTTL time.Duration
	now     func() time.Time
	newID   func() string
}

// NewStore creates an empty store. idleTTL <= 0 keeps sessions for the
// lifetime of the process.
func NewStore(idleTTL time.Duration) *Store {
	return &Store{
		data:    make(map[string]*Session),
		idleTTL: idleTTL,
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

// GetOrCreate returns the session for id, creating it when id is empty or
// unknown. An unknown id is adopted as-is. created reports whether a new
// record was stored.
func (s *Store) GetOrCreate(id string) (sess *Session, created bool) {
	id = strings.TrimSpace(id)
	now := s.now()

	if id != "" {
		s.mu.RLock()
		sess, ok := s.data[id]
		s.mu.RUnlock()
		if ok {
			s.touch(sess, now)
			return sess, false
		}
	} else {
		id = s.newID()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.data[id]; ok {
		existing.lastSeen = now
		return existing, false
	}
	sess = &Session{
		ID:        id,
		Slots:     make(map[string]string),
		CreatedAt: now,
		lastSeen:  now,
	}
	s.data[id] = sess
	return sess, true
}

func (s *Store) Get(id string) (*Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.data[id]
	return sess, ok
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

func (s *Store) touch(sess *Session, now time.Time) {
	s.mu.Lock()
	sess.lastSeen = now
	s.mu.Unlock()
}

// Sweep drops sessions idle for longer than the TTL and returns how many were
// removed. It is a no-op when expiry is disabled.
func (s *Store) Sweep(now time.Time) int {
	if s.idleTTL <= 0 {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, sess := range s.data {
		if now.Sub(sess.lastSeen) > s.idleTTL {
			delete(s.data, id)
			removed++
		}
	}
	return removed
}

// RunJanitor sweeps expired sessions every interval until ctx is done.
func (s *Store) RunJanitor(ctx context.Context, interval time.Duration, onSweep func(removed, remaining int)) {
	if s.idleTTL <= 0 {
		return
	}
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed := s.Sweep(s.now())
			if onSweep != nil {
				onSweep(removed, s.Len())
			}
		}
	}
}
