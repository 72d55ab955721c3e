package loginteraction

import (
	"sync"
	"time"

	"wenwen-recommender/internal/common/metrics"
)

// SessionHistoryStore keeps a fixed-capacity ring of records per session.
// Concurrent turns of one session may interleave.
type SessionHistoryStore struct {
	mu       sync.RWMutex
	capacity int
	sessions map[string]*ring
}

type ring struct {
	entries      []Record
	head         int
	size         int
	messageCount int
}

func NewSessionHistoryStore(capacity int) *SessionHistoryStore {
	if capacity <= 0 {
		capacity = 100
	}
	return &SessionHistoryStore{
		capacity: capacity,
		sessions: make(map[string]*ring),
	}
}

func (s *SessionHistoryStore) session(id string) *ring {
	r, ok := s.sessions[id]
	if !ok {
		r = &ring{entries: make([]Record, s.capacity)}
		s.sessions[id] = r
		metrics.ActiveSessions.Set(float64(len(s.sessions)))
	}
	return r
}

// Append adds rec, evicting the oldest entry when full.
func (s *SessionHistoryStore) Append(rec Record) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := s.session(rec.SessionID)
	idx := (r.head + r.size) % len(r.entries)
	r.entries[idx] = rec
	if r.size < len(r.entries) {
		r.size++
	} else {
		r.head = (r.head + 1) % len(r.entries)
	}
}

// BumpMessageCount adds n to the session counter, first raising it to
// prior when the caller knows of more messages than this process has seen.
func (s *SessionHistoryStore) BumpMessageCount(sessionID string, prior, n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := s.session(sessionID)
	if prior > r.messageCount {
		r.messageCount = prior
	}
	r.messageCount += n
	return r.messageCount
}

func (s *SessionHistoryStore) MessageCount(sessionID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if r, ok := s.sessions[sessionID]; ok {
		return r.messageCount
	}
	return 0
}

// History returns a copy of the session's records, oldest first.
func (s *SessionHistoryStore) History(sessionID string) []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.sessions[sessionID]
	if !ok {
		return []Record{}
	}
	out := make([]Record, r.size)
	for i := 0; i < r.size; i++ {
		out[i] = r.entries[(r.head+i)%len(r.entries)]
	}
	return out
}

func (s *SessionHistoryStore) Sessions() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Cleanup drops sessions whose newest record is older than maxAge relative
// to now. Sessions with a counter but no records are dropped too.
func (s *SessionHistoryStore) Cleanup(now time.Time, maxAge time.Duration) int {
	cutoff := now.Add(-maxAge)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, r := range s.sessions {
		if r.size == 0 || r.newest().Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	metrics.ActiveSessions.Set(float64(len(s.sessions)))
	return removed
}

func (r *ring) newest() time.Time {
	var t time.Time
	for i := 0; i < r.size; i++ {
		if ts := r.entries[(r.head+i)%len(r.entries)].Timestamp; ts.After(t) {
			t = ts
		}
	}
	return t
}
