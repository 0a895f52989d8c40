package spacedrep

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/estudai/estudai/internal/caldate"
	"github.com/estudai/estudai/internal/store"
)

// Session is a server-held study run over a fixed snapshot of due cards.
// The queue is never re-sorted or re-fetched while in progress.
type Session struct {
	ID        string
	UserID    string
	Subject   string
	StartedAt time.Time

	mu    sync.Mutex
	queue []store.Flashcard
	pos   int
	tally map[Quality]int
}

func newSession(userID, subject string, cards []store.Flashcard, now time.Time) *Session {
	queue := make([]store.Flashcard, len(cards))
	copy(queue, cards)
	return &Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		Subject:   subject,
		StartedAt: now,
		queue:     queue,
		tally:     make(map[Quality]int, len(QualityIntervals)),
	}
}

// current returns the card under review. Callers hold s.mu.
func (s *Session) current() (store.Flashcard, bool) {
	if s.pos >= len(s.queue) {
		return store.Flashcard{}, false
	}
	return s.queue[s.pos], true
}

// advance records quality for the current card and moves on. Callers hold s.mu.
func (s *Session) advance(q Quality) {
	if q != "" {
		s.tally[q]++
	}
	s.pos++
}

// done reports whether every card was answered. Callers hold s.mu.
func (s *Session) done() bool {
	return s.pos >= len(s.queue)
}

// SessionCard is the card shown to the learner.
type SessionCard struct {
	ID      string       `json:"id"`
	Front   string       `json:"front"`
	Back    string       `json:"back"`
	Subject string       `json:"subject"`
	Status  ReviewStatus `json:"status"`
}

// SessionView is a point-in-time view of a session.
type SessionView struct {
	ID       string          `json:"id"`
	Subject  string          `json:"subject"`
	Total    int             `json:"total"`
	Answered int             `json:"answered"`
	Done     bool            `json:"done"`
	Card     *SessionCard    `json:"card,omitempty"`
	Tally    map[Quality]int `json:"tally"`
}

// view builds a SessionView. Callers hold s.mu.
func (s *Session) view(today caldate.Date) SessionView {
	v := SessionView{
		ID:       s.ID,
		Subject:  s.Subject,
		Total:    len(s.queue),
		Answered: s.pos,
		Done:     s.done(),
		Tally:    make(map[Quality]int, len(s.tally)),
	}
	for q, n := range s.tally {
		v.Tally[q] = n
	}
	if c, ok := s.current(); ok {
		v.Card = &SessionCard{
			ID:      c.ID,
			Front:   c.Front,
			Back:    c.Back,
			Subject: c.Subject,
			Status:  Status(c, today),
		}
	}
	return v
}
