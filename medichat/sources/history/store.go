package history

import (
	"context"
	"medichat/medichat/utils/logging"
	"sync"
	"time"

	"go.uber.org/zap"
)

type entry struct {
	mu       sync.Mutex
	history  *History
	lastUsed time.Time
	// refs counts holders between Acquire and release; swept entries must be idle.
	refs int
}

// Store maps session ids to their History. Each session is locked for a
// whole turn so turns within a session serialize while different sessions
// run in parallel.
type Store struct {
	mu         sync.Mutex
	sessions   map[string]*entry
	pinned     map[string]bool
	maxHistory int
	now        func() time.Time
}

func NewStore(maxHistory int) *Store {
	return &Store{
		sessions:   make(map[string]*entry),
		pinned:     make(map[string]bool),
		maxHistory: maxHistory,
		now:        time.Now,
	}
}

// Acquire locks the session's history, creating it if needed. The caller
// must call release exactly once.
func (s *Store) Acquire(sessionID string) (*History, func()) {
	s.mu.Lock()
	e, ok := s.sessions[sessionID]
	if !ok {
		e = &entry{history: NewHistory(s.maxHistory)}
		s.sessions[sessionID] = e
	}
	e.refs++
	e.lastUsed = s.now()
	s.mu.Unlock()

	e.mu.Lock()
	var once sync.Once
	return e.history, func() {
		once.Do(func() {
			e.mu.Unlock()
			s.mu.Lock()
			e.refs--
			e.lastUsed = s.now()
			s.mu.Unlock()
		})
	}
}

// Pin exempts sessionID from Sweep. Delete still clears it.
func (s *Store) Pin(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pinned[sessionID] = true
}

// Snapshot returns a copy of the session's messages, or nil if unknown.
func (s *Store) Snapshot(sessionID string) []Message {
	s.mu.Lock()
	e, ok := s.sessions[sessionID]
	s.mu.Unlock()
	if !ok {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.history.Messages()
}

// Delete forgets the session. It reports whether the session existed.
func (s *Store) Delete(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.sessions[sessionID]
	delete(s.sessions, sessionID)
	return ok
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep removes sessions unused for longer than idle and returns how many
// were removed. Pinned sessions and sessions with an in-flight turn are kept.
func (s *Store) Sweep(idle time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for id, e := range s.sessions {
		if e.refs == 0 && !s.pinned[id] && now.Sub(e.lastUsed) > idle {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// RunSweeper calls Sweep every interval until ctx is done.
func (s *Store) RunSweeper(ctx context.Context, interval, idle time.Duration) {
	if interval <= 0 || idle <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(idle); n > 0 {
				logging.AppLogger.Info("expired idle sessions", zap.Int("removed", n), zap.Int("remaining", s.Len()))
			}
		}
	}
}
