// Package spacedrep schedules flashcard reviews and runs study sessions.
package spacedrep

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/estudai/estudai/internal/caldate"
	"github.com/estudai/estudai/internal/domain"
	"github.com/estudai/estudai/internal/llm"
	"github.com/estudai/estudai/internal/store"
)

// DefaultSubject is used for cards created without a subject.
const DefaultSubject = "Outros"

// StreakUpdater records study activity.
type StreakUpdater interface {
	Update(ctx context.Context, userID string) (int, error)
}

// PremiumChecker gates premium features.
type PremiumChecker interface {
	RequirePro(ctx context.Context, userID string) error
}

// Config configures a Service.
type Config struct {
	MaxSessions int
	SessionTTL  time.Duration
	Location    *time.Location
	Logger      *slog.Logger
}

// Service manages a user's flashcards.
type Service struct {
	cards    store.FlashcardRepo
	streak   StreakUpdater
	premium  PremiumChecker
	provider llm.Provider
	sessions *expirable.LRU[string, *Session]
	loc      *time.Location
	logger   *slog.Logger
	now      func() time.Time
}

// NewService creates a Service. provider may be nil, in which case card
// generation is unavailable.
func NewService(cards store.FlashcardRepo, streak StreakUpdater, premium PremiumChecker, provider llm.Provider, cfg Config) *Service {
	if cfg.MaxSessions <= 0 {
		cfg.MaxSessions = 10000
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 2 * time.Hour
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Service{
		cards:    cards,
		streak:   streak,
		premium:  premium,
		provider: provider,
		sessions: expirable.NewLRU[string, *Session](cfg.MaxSessions, nil, cfg.SessionTTL),
		loc:      cfg.Location,
		logger:   cfg.Logger,
		now:      time.Now,
	}
}

func (s *Service) today() caldate.Date {
	return caldate.Today(s.now(), s.loc)
}

// RecordAnswer schedules the card's next review, or deletes it once its
// interval passes MasteryThresholdDays.
func (s *Service) RecordAnswer(ctx context.Context, userID, cardID string, quality Quality) (Outcome, error) {
	out, err := Schedule(quality, s.today())
	if err != nil {
		return Outcome{}, domain.NewValidationError("quality", err.Error())
	}

	if _, err := s.cards.Get(ctx, userID, cardID); err != nil {
		return Outcome{}, fmt.Errorf("record answer: %w", err)
	}

	if out.Deleted {
		if err := s.cards.Delete(ctx, userID, cardID); err != nil {
			return Outcome{}, fmt.Errorf("delete learned card: %w", err)
		}
		return out, nil
	}
	if err := s.cards.Reschedule(ctx, userID, cardID, out.Interval, out.NextReview); err != nil {
		return Outcome{}, fmt.Errorf("reschedule card: %w", err)
	}
	return out, nil
}

// Decks summarizes the user's cards per subject.
func (s *Service) Decks(ctx context.Context, userID string) ([]store.Deck, error) {
	decks, err := s.cards.Decks(ctx, userID, s.today())
	if err != nil {
		return nil, fmt.Errorf("list decks: %w", err)
	}
	return decks, nil
}

// NewCard is the input for manual card creation.
type NewCard struct {
	Front   string `json:"front" validate:"required,max=1000"`
	Back    string `json:"back" validate:"required,max=2000"`
	Subject string `json:"subject" validate:"max=60"`
}

// Create adds a card due today.
func (s *Service) Create(ctx context.Context, userID string, in NewCard) (*store.Flashcard, error) {
	front, back := strings.TrimSpace(in.Front), strings.TrimSpace(in.Back)
	if front == "" {
		return nil, domain.NewValidationError("front", "is required")
	}
	if back == "" {
		return nil, domain.NewValidationError("back", "is required")
	}

	c := s.newCard(userID, in.Subject, front, back)
	if err := s.cards.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("create card: %w", err)
	}
	return &c, nil
}

func (s *Service) newCard(userID, subject, front, back string) store.Flashcard {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		subject = DefaultSubject
	}
	now := s.now()
	return store.Flashcard{
		ID:         uuid.NewString(),
		UserID:     userID,
		Front:      front,
		Back:       back,
		Subject:    subject,
		Interval:   NewCardInterval,
		NextReview: caldate.Today(now, s.loc),
		CreatedAt:  now.UTC(),
	}
}

// StartSession snapshots the subject's due cards into a new session.
// Returns domain.ErrNothingDue when no card is due.
func (s *Service) StartSession(ctx context.Context, userID, subject string) (SessionView, error) {
	if strings.TrimSpace(subject) == "" {
		subject = DefaultSubject
	}
	today := s.today()
	due, err := s.cards.Due(ctx, userID, subject, today)
	if err != nil {
		return SessionView{}, fmt.Errorf("load due cards: %w", err)
	}
	if len(due) == 0 {
		return SessionView{}, domain.ErrNothingDue
	}

	sess := newSession(userID, subject, due, s.now())
	s.sessions.Add(sess.ID, sess)
	s.logger.DebugContext(ctx, "study session started", "user_id", userID, "session_id", sess.ID, "cards", len(due))

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.view(today), nil
}

// Session returns the current state of a session owned by userID.
func (s *Service) Session(_ context.Context, userID, sessionID string) (SessionView, error) {
	sess, err := s.lookup(userID, sessionID)
	if err != nil {
		return SessionView{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.view(s.today()), nil
}

// AnswerResult is returned after answering a session card.
type AnswerResult struct {
	Outcome Outcome     `json:"outcome"`
	Session SessionView `json:"session"`
	Streak  *int        `json:"streak,omitempty"`
}

// Answer records quality for the session's current card and advances.
// Finishing the queue records study activity for the streak.
func (s *Service) Answer(ctx context.Context, userID, sessionID string, quality Quality) (AnswerResult, error) {
	sess, err := s.lookup(userID, sessionID)
	if err != nil {
		return AnswerResult{}, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	card, ok := sess.current()
	if !ok {
		return AnswerResult{}, domain.ErrNothingDue
	}

	var res AnswerResult
	res.Outcome, err = s.RecordAnswer(ctx, userID, card.ID, quality)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		// Deleted since the session started; skip it.
		s.logger.InfoContext(ctx, "session card vanished", "session_id", sess.ID, "card_id", card.ID)
		sess.advance("")
	case err != nil:
		return AnswerResult{}, err
	default:
		sess.advance(quality)
	}

	if sess.done() && s.streak != nil {
		n, err := s.streak.Update(ctx, userID)
		if err != nil {
			s.logger.WarnContext(ctx, "streak update after session failed", "user_id", userID, "error", err)
		} else {
			res.Streak = &n
		}
	}

	res.Session = sess.view(s.today())
	return res, nil
}

func (s *Service) lookup(userID, sessionID string) (*Session, error) {
	sess, ok := s.sessions.Get(sessionID)
	if !ok || sess.UserID != userID {
		return nil, fmt.Errorf("session %s: %w", sessionID, domain.ErrNotFound)
	}
	return sess, nil
}
