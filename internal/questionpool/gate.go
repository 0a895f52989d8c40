// Package questionpool serves practice questions from the shared pool,
// generating and caching new ones with the AI provider on a miss.
package questionpool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/estudai/estudai/internal/domain"
	"github.com/estudai/estudai/internal/llm"
	"github.com/estudai/estudai/internal/problemgen"
	"github.com/estudai/estudai/internal/store"
)

// CacheLookupLimit is the number of pool rows the random pick draws from.
const CacheLookupLimit = 5

// StreakUpdater records study activity.
type StreakUpdater interface {
	Update(ctx context.Context, userID string) (int, error)
}

// XPAwarder credits experience points.
type XPAwarder interface {
	AwardXP(ctx context.Context, userID string, amount int, reason string) (xp, level int, err error)
}

// Throttle admits an AI generation for a user. The returned context is
// used for the call and release must be called once it returns.
type Throttle interface {
	Acquire(ctx context.Context, userID string) (context.Context, func(), error)
}

// Gate decides between the pool and fresh generation, and handles the
// answer and bookmark flows around the questions it serves.
type Gate struct {
	pool   store.QuestionPoolRepo
	saved  store.SavedQuestionRepo
	gen    problemgen.Generator
	streak StreakUpdater
	xp     XPAwarder
	logger *slog.Logger

	throttle Throttle

	// pick returns a uniform index in [0, n).
	pick func(n int) int
	now  func() time.Time
}

// NewGate creates a Gate. streak and xp may be nil.
func NewGate(pool store.QuestionPoolRepo, saved store.SavedQuestionRepo, gen problemgen.Generator, streak StreakUpdater, xp XPAwarder, logger *slog.Logger) *Gate {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gate{
		pool:   pool,
		saved:  saved,
		gen:    gen,
		streak: streak,
		xp:     xp,
		logger: logger,
		pick:   rand.IntN,
		now:    time.Now,
	}
}

// SetThrottle bounds the AI generations made on a cache miss. Cache hits
// are never throttled.
func (g *Gate) SetThrottle(t Throttle) {
	g.throttle = t
}

// GetInput selects questions for GetQuestions.
type GetInput struct {
	Subject     string
	Topic       string
	Difficulty  problemgen.Difficulty
	UserID      string
	BypassCache bool
	Count       int
}

// GetQuestions returns a cached question set when one exists, otherwise a
// freshly generated set that is then added to the pool.
func (g *Gate) GetQuestions(ctx context.Context, in GetInput) ([]problemgen.Question, error) {
	in.Subject = strings.TrimSpace(in.Subject)
	in.Topic = strings.TrimSpace(in.Topic)
	if in.Subject == "" {
		return nil, domain.NewValidationError("subject", "is required")
	}
	if in.Difficulty == "" {
		in.Difficulty = problemgen.DifficultyMedium
	}

	if !in.BypassCache {
		if qs, ok := g.fromCache(ctx, in); ok {
			return qs, nil
		}
	}

	if g.throttle != nil {
		genCtx, release, err := g.throttle.Acquire(ctx, in.UserID)
		if err != nil {
			return nil, err
		}
		defer release()
		ctx = genCtx
	}

	qs, err := g.gen.Generate(ctx, problemgen.GenerateInput{
		Subject:    in.Subject,
		Topic:      in.Topic,
		Difficulty: in.Difficulty,
		Count:      in.Count,
	})
	if err != nil {
		return nil, classify(err)
	}

	if in.UserID != "" {
		g.persist(ctx, in, qs)
	}
	return qs, nil
}

// fromCache picks one matching pool row at random. Lookup and decode
// failures are logged and treated as a miss.
func (g *Gate) fromCache(ctx context.Context, in GetInput) ([]problemgen.Question, bool) {
	rows, err := g.pool.Find(ctx, store.PoolFilter{
		Subject:    in.Subject,
		Topic:      in.Topic,
		Difficulty: string(in.Difficulty),
		Limit:      CacheLookupLimit,
	})
	if err != nil {
		g.logger.WarnContext(ctx, "question cache lookup failed", "subject", in.Subject, "topic", in.Topic, "error", err)
		return nil, false
	}
	if len(rows) == 0 {
		return nil, false
	}

	row := rows[g.pick(len(rows))]
	qs, err := DecodeContent(row.Content)
	if err != nil {
		g.logger.WarnContext(ctx, "cached question unreadable", "id", row.ID, "error", err)
		return nil, false
	}
	tagRefs(row.ID, qs)
	g.logger.DebugContext(ctx, "question cache hit", "id", row.ID, "candidates", len(rows))
	return qs, true
}

// persist stores each generated question as its own public pool row and
// tags the stored ones with their row ID.
func (g *Gate) persist(ctx context.Context, in GetInput, qs []problemgen.Question) {
	userID := in.UserID
	for i := range qs {
		content, err := json.Marshal(qs[i])
		if err != nil {
			g.logger.ErrorContext(ctx, "encode generated question", "error", err)
			continue
		}
		row := &store.PooledQuestion{
			ID:         uuid.NewString(),
			CreatedBy:  &userID,
			Subject:    in.Subject,
			Topic:      in.Topic,
			Difficulty: string(in.Difficulty),
			Content:    content,
			IsPublic:   true,
			CreatedAt:  g.now(),
		}
		if err := g.pool.Insert(ctx, row); err != nil {
			g.logger.ErrorContext(ctx, "save generated question failed", "subject", in.Subject, "topic", in.Topic, "error", err)
			continue
		}
		qs[i].ID = row.ID
	}
}

// classify maps generator failures onto the gate's error taxonomy.
func classify(err error) error {
	var rl *llm.ErrRateLimit
	if errors.As(err, &rl) {
		return &RateLimitedError{Err: err}
	}
	var inv *llm.ErrInvalidResponse
	var verr *problemgen.ValidationError
	var trunc *llm.ErrMaxTokensExceeded
	if errors.As(err, &inv) || errors.As(err, &verr) || errors.As(err, &trunc) {
		return &GenerationError{Err: err}
	}
	return fmt.Errorf("generate questions: %w", err)
}
