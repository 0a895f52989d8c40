package questionpool

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/estudai/estudai/internal/domain"
	"github.com/estudai/estudai/internal/gamification"
	"github.com/estudai/estudai/internal/problemgen"
	"github.com/estudai/estudai/internal/store"
)

// AnswerInput is a learner's answer to a served question. QuestionID is
// the id the question was served with.
type AnswerInput struct {
	QuestionID string `json:"question_id" validate:"required,max=100"`
	Choice     int    `json:"choice" validate:"gte=0,lte=4"`
}

// AnswerResult reports correctness and any rewards.
type AnswerResult struct {
	Correct       bool   `json:"correct"`
	CorrectAnswer int    `json:"correct_answer"`
	Explanation   string `json:"explanation"`
	XP            *int   `json:"xp,omitempty"`
	Level         *int   `json:"level,omitempty"`
	Streak        *int   `json:"streak,omitempty"`
}

// CheckAnswer grades a choice against the stored question, never against
// a copy supplied by the client. A correct answer records study activity
// and awards XPCorrectAnswer; failures of either side effect are logged.
func (g *Gate) CheckAnswer(ctx context.Context, userID string, in AnswerInput) (AnswerResult, error) {
	if strings.TrimSpace(in.QuestionID) == "" {
		return AnswerResult{}, domain.NewValidationError("question_id", "is required")
	}
	if in.Choice < 0 || in.Choice >= problemgen.OptionCount {
		return AnswerResult{}, domain.NewValidationError("choice", fmt.Sprintf("must be between 0 and %d", problemgen.OptionCount-1))
	}

	q, err := g.stored(ctx, in.QuestionID)
	if err != nil {
		return AnswerResult{}, err
	}

	res := AnswerResult{
		Correct:       q.IsCorrect(in.Choice),
		CorrectAnswer: q.CorrectAnswer,
		Explanation:   q.Explanation,
	}
	if !res.Correct {
		return res, nil
	}

	if g.streak != nil {
		if n, err := g.streak.Update(ctx, userID); err != nil {
			g.logger.WarnContext(ctx, "streak update after correct answer failed", "user_id", userID, "error", err)
		} else {
			res.Streak = &n
		}
	}
	if g.xp != nil {
		if xp, level, err := g.xp.AwardXP(ctx, userID, gamification.XPCorrectAnswer, "correct_answer"); err != nil {
			g.logger.WarnContext(ctx, "xp award failed", "user_id", userID, "error", err)
		} else {
			res.XP, res.Level = &xp, &level
		}
	}
	return res, nil
}

// stored loads the pool question a reference points at.
func (g *Gate) stored(ctx context.Context, ref string) (*problemgen.Question, error) {
	rowID, index, err := parseRef(ref)
	if err != nil {
		return nil, domain.NewValidationError("question_id", err.Error())
	}
	row, err := g.pool.Get(ctx, rowID)
	if err != nil {
		return nil, fmt.Errorf("load question %s: %w", ref, err)
	}
	qs, err := DecodeContent(row.Content)
	if err != nil {
		return nil, fmt.Errorf("decode question %s: %w", ref, err)
	}
	if index >= len(qs) {
		return nil, fmt.Errorf("question %s: %w", ref, domain.ErrNotFound)
	}
	return &qs[index], nil
}

// SaveInput bookmarks a question with the learner's result.
type SaveInput struct {
	Subject   string              `json:"subject" validate:"required,max=60"`
	Topic     string              `json:"topic" validate:"max=200"`
	Question  problemgen.Question `json:"question"`
	IsCorrect bool                `json:"is_correct"`
}

// Save stores a question in the user's saved list.
func (g *Gate) Save(ctx context.Context, userID string, in SaveInput) (*store.SavedQuestion, error) {
	if strings.TrimSpace(in.Subject) == "" {
		return nil, domain.NewValidationError("subject", "is required")
	}
	if strings.TrimSpace(in.Question.Question) == "" {
		return nil, domain.NewValidationError("question", "is required")
	}

	content, err := json.Marshal(in.Question)
	if err != nil {
		return nil, fmt.Errorf("encode saved question: %w", err)
	}
	q := &store.SavedQuestion{
		ID:        uuid.NewString(),
		UserID:    userID,
		Subject:   strings.TrimSpace(in.Subject),
		Topic:     strings.TrimSpace(in.Topic),
		Content:   content,
		IsCorrect: in.IsCorrect,
		CreatedAt: g.now(),
	}
	if err := g.saved.Save(ctx, q); err != nil {
		return nil, fmt.Errorf("save question: %w", err)
	}
	return q, nil
}

const (
	defaultSavedLimit = 20
	maxSavedLimit     = 100
)

// Saved lists the user's most recently saved questions.
func (g *Gate) Saved(ctx context.Context, userID string, limit int) ([]store.SavedQuestion, error) {
	if limit <= 0 {
		limit = defaultSavedLimit
	}
	if limit > maxSavedLimit {
		limit = maxSavedLimit
	}
	out, err := g.saved.ListRecent(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list saved questions: %w", err)
	}
	return out, nil
}
