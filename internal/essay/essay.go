// Package essay grades ENEM essays with the AI provider and keeps a short
// per-user history.
package essay

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/estudai/estudai/internal/domain"
	"github.com/estudai/estudai/internal/llm"
	"github.com/estudai/estudai/internal/store"
)

const (
	// MinContentLength is the shortest essay, in characters, worth grading.
	MinContentLength = 100

	MaxCompetencyScore = 200
	MaxScore           = 5 * MaxCompetencyScore

	// HistorySize is how many graded essays are kept per user.
	HistorySize = 5
)

const systemPrompt = `Você é um corretor experiente de redações do ENEM.
Avalie o texto nas cinco competências oficiais, atribuindo a cada uma uma nota
de 0 a 200 em múltiplos de 40, com um comentário objetivo.
Finalize com um parecer geral e uma lista curta de melhorias concretas.`

// StreakUpdater records study activity.
type StreakUpdater interface {
	Update(ctx context.Context, userID string) (int, error)
}

// Competency is the grade of one competency.
type Competency struct {
	Score    int    `json:"score"`
	Feedback string `json:"feedback"`
}

// Evaluation is the AI grade of an essay. It is also the stored feedback.
type Evaluation struct {
	C1              Competency `json:"c1"`
	C2              Competency `json:"c2"`
	C3              Competency `json:"c3"`
	C4              Competency `json:"c4"`
	C5              Competency `json:"c5"`
	GeneralFeedback string     `json:"generalFeedback"`
	Improvements    []string   `json:"improvements"`
}

// Total sums the competency scores.
func (e Evaluation) Total() int {
	return e.C1.Score + e.C2.Score + e.C3.Score + e.C4.Score + e.C5.Score
}

func (e Evaluation) validate() error {
	for i, c := range []Competency{e.C1, e.C2, e.C3, e.C4, e.C5} {
		if c.Score < 0 || c.Score > MaxCompetencyScore {
			return fmt.Errorf("%s score %d out of range", Competencies[i], c.Score)
		}
	}
	return nil
}

// SubmitInput is an essay to grade.
type SubmitInput struct {
	Theme   string `json:"theme" validate:"max=300"`
	Content string `json:"content" validate:"required"`
}

// Result is a graded, stored essay.
type Result struct {
	ID         string     `json:"id"`
	Theme      string     `json:"theme"`
	Score      int        `json:"score"`
	Evaluation Evaluation `json:"evaluation"`
	CreatedAt  time.Time  `json:"created_at"`
	Streak     *int       `json:"streak,omitempty"`
}

// Grader grades essays.
type Grader struct {
	essays   store.EssayRepo
	streak   StreakUpdater
	provider llm.Provider
	logger   *slog.Logger
	now      func() time.Time
}

// NewGrader creates a Grader. streak may be nil.
func NewGrader(essays store.EssayRepo, streak StreakUpdater, provider llm.Provider, logger *slog.Logger) *Grader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Grader{
		essays:   essays,
		streak:   streak,
		provider: provider,
		logger:   logger,
		now:      time.Now,
	}
}

// Submit grades an essay, records the study activity and stores the result,
// keeping only the HistorySize most recent essays of the user.
func (g *Grader) Submit(ctx context.Context, userID string, in SubmitInput) (*Result, error) {
	content := strings.TrimSpace(in.Content)
	if utf8.RuneCountInString(content) < MinContentLength {
		return nil, domain.NewValidationError("content", fmt.Sprintf("must have at least %d characters", MinContentLength))
	}
	theme := strings.TrimSpace(in.Theme)

	eval, err := g.evaluate(ctx, theme, content)
	if err != nil {
		return nil, err
	}

	feedback, err := json.Marshal(eval)
	if err != nil {
		return nil, fmt.Errorf("encode essay feedback: %w", err)
	}

	res := &Result{
		ID:         uuid.NewString(),
		Theme:      theme,
		Score:      eval.Total(),
		Evaluation: *eval,
		CreatedAt:  g.now().UTC(),
	}

	err = g.essays.InsertAndTrim(ctx, &store.Essay{
		ID:        res.ID,
		UserID:    userID,
		Theme:     theme,
		Content:   content,
		Score:     res.Score,
		Feedback:  feedback,
		CreatedAt: res.CreatedAt,
	}, HistorySize)
	if err != nil {
		return nil, fmt.Errorf("save essay: %w", err)
	}

	if g.streak != nil {
		if n, err := g.streak.Update(ctx, userID); err != nil {
			g.logger.WarnContext(ctx, "streak update after essay failed", "user_id", userID, "error", err)
		} else {
			res.Streak = &n
		}
	}

	g.logger.InfoContext(ctx, "essay graded", "user_id", userID, "score", res.Score)
	return res, nil
}

func (g *Grader) evaluate(ctx context.Context, theme, content string) (*Evaluation, error) {
	if g.provider == nil {
		return nil, &llm.ErrProviderUnavailable{}
	}

	var b strings.Builder
	if theme != "" {
		fmt.Fprintf(&b, "Tema: %s\n\n", theme)
	}
	b.WriteString("Redação:\n")
	b.WriteString(content)

	resp, err := g.provider.Generate(llm.WithPurpose(ctx, "essay-eval"), llm.Request{
		System:      systemPrompt,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: b.String()}},
		Schema:      EvaluationSchema,
		MaxTokens:   4096,
		Temperature: 0.3,
	})
	if err != nil {
		return nil, fmt.Errorf("grade essay: %w", err)
	}

	var eval Evaluation
	if err := json.Unmarshal(resp.Content, &eval); err != nil {
		return nil, &llm.ErrInvalidResponse{Content: resp.Content, Err: err}
	}
	if err := eval.validate(); err != nil {
		return nil, &llm.ErrInvalidResponse{Content: resp.Content, Err: err}
	}
	return &eval, nil
}

// History returns the user's most recent graded essays, newest first.
func (g *Grader) History(ctx context.Context, userID string) ([]Result, error) {
	rows, err := g.essays.ListRecent(ctx, userID, HistorySize)
	if err != nil {
		return nil, fmt.Errorf("list essays: %w", err)
	}

	out := make([]Result, 0, len(rows))
	for _, row := range rows {
		r := Result{
			ID:        row.ID,
			Theme:     row.Theme,
			Score:     row.Score,
			CreatedAt: row.CreatedAt,
		}
		if err := json.Unmarshal(row.Feedback, &r.Evaluation); err != nil {
			g.logger.WarnContext(ctx, "essay feedback unreadable", "id", row.ID, "error", err)
		}
		out = append(out, r)
	}
	return out, nil
}
