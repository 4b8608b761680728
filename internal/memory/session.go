package memory

import "sync"

// DefaultSessionLimit is how many turns Session.Recent returns when asked for zero.
const DefaultSessionLimit = 10

// Session is the in-process recent-turn buffer of a terminal session.
type Session struct {
	mu    sync.Mutex
	turns []Turn
}

// Add appends turns in order.
func (s *Session) Add(turns ...Turn) {
	s.mu.Lock()
	s.turns = append(s.turns, turns...)
	s.mu.Unlock()
}

// Recent returns a copy of the last limit turns.
func (s *Session) Recent(limit int) []Turn {
	if limit <= 0 {
		limit = DefaultSessionLimit
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	start := max(len(s.turns)-limit, 0)
	return append([]Turn(nil), s.turns[start:]...)
}

// Len is the total number of turns recorded.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.turns)
}
