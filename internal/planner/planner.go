// Package planner builds weekly study plans with the AI provider and
// manages the resulting tasks.
package planner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/estudai/estudai/internal/caldate"
	"github.com/estudai/estudai/internal/domain"
	"github.com/estudai/estudai/internal/llm"
	"github.com/estudai/estudai/internal/store"
)

const (
	DefaultDays = 7
	MaxDays     = 31

	defaultHoursPerDay = 2
	maxTaskMinutes     = 8 * 60
)

// PremiumChecker gates premium features.
type PremiumChecker interface {
	RequirePro(ctx context.Context, userID string) error
}

// PlanInput describes the learner's availability and goals.
type PlanInput struct {
	HoursPerDay  float64  `json:"hours_per_day" validate:"gte=0,lte=16"`
	Focus        string   `json:"focus" validate:"max=200"`
	Difficulties []string `json:"difficulties" validate:"max=20,dive,max=100"`
	Days         int      `json:"days" validate:"gte=0,lte=31"`
}

// Task is a planned study block before it is stored.
type Task struct {
	Subject         string       `json:"subject"`
	Topic           string       `json:"topic"`
	Date            caldate.Date `json:"date"`
	DurationMinutes int          `json:"duration_minutes"`
}

// Plan is a stored plan and whether it came from the fallback.
type Plan struct {
	From     caldate.Date      `json:"from"`
	To       caldate.Date      `json:"to"`
	Tasks    []store.StudyTask `json:"tasks"`
	Fallback bool              `json:"fallback"`
}

// Planner generates plans and manages study tasks.
type Planner struct {
	tasks    store.StudyTaskRepo
	premium  PremiumChecker
	provider llm.Provider
	loc      *time.Location
	logger   *slog.Logger
	now      func() time.Time
}

// New creates a Planner. provider may be nil, in which case every plan is
// the fallback plan.
func New(tasks store.StudyTaskRepo, premium PremiumChecker, provider llm.Provider, loc *time.Location, logger *slog.Logger) *Planner {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Planner{
		tasks:    tasks,
		premium:  premium,
		provider: provider,
		loc:      loc,
		logger:   logger,
		now:      time.Now,
	}
}

// Generate builds a plan for [today, today+Days] and replaces every task of
// the user in that range with it. Tasks outside the range are kept.
func (p *Planner) Generate(ctx context.Context, userID string, in PlanInput) (*Plan, error) {
	if p.premium != nil {
		if err := p.premium.RequirePro(ctx, userID); err != nil {
			return nil, err
		}
	}
	if in.Days < 0 || in.Days > MaxDays {
		return nil, domain.NewValidationError("days", fmt.Sprintf("must be at most %d", MaxDays))
	}
	if in.Days == 0 {
		in.Days = DefaultDays
	}
	if in.HoursPerDay <= 0 {
		in.HoursPerDay = defaultHoursPerDay
	}

	today := caldate.Today(p.now(), p.loc)
	plan := &Plan{From: today, To: today.AddDays(in.Days)}

	tasks, err := p.fromAI(ctx, in, plan.From, plan.To)
	if err != nil {
		p.logger.WarnContext(ctx, "AI study plan failed, using fallback", "user_id", userID, "error", err)
		tasks = fallbackTasks(today, plan.To)
		plan.Fallback = true
	}

	rows := make([]store.StudyTask, len(tasks))
	for i, t := range tasks {
		rows[i] = store.StudyTask{
			ID:              uuid.NewString(),
			UserID:          userID,
			Subject:         t.Subject,
			Topic:           t.Topic,
			Date:            t.Date,
			DurationMinutes: t.DurationMinutes,
		}
	}
	if err := p.tasks.ReplaceRange(ctx, userID, plan.From, plan.To, rows); err != nil {
		return nil, fmt.Errorf("save study plan: %w", err)
	}
	plan.Tasks = rows

	p.logger.InfoContext(ctx, "study plan saved", "user_id", userID, "tasks", len(rows), "fallback", plan.Fallback)
	return plan, nil
}

var errNoUsableTasks = errors.New("no usable tasks")

// fromAI asks the provider for a plan and keeps the tasks that fall inside
// [from, to]. A call failure or an empty result is an error.
func (p *Planner) fromAI(ctx context.Context, in PlanInput, from, to caldate.Date) ([]Task, error) {
	if p.provider == nil {
		return nil, &llm.ErrProviderUnavailable{}
	}

	resp, err := p.provider.Generate(llm.WithPurpose(ctx, "study-plan"), llm.Request{
		System:      systemPrompt,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: buildUserMessage(in, from, to)}},
		Schema:      ScheduleSchema,
		MaxTokens:   4096,
		Temperature: 0.5,
	})
	if err != nil {
		return nil, err
	}

	var out struct {
		Tasks []struct {
			Subject         string `json:"subject"`
			Topic           string `json:"topic"`
			DurationMinutes int    `json:"duration_minutes"`
			Date            string `json:"date"`
		} `json:"tasks"`
	}
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return nil, &llm.ErrInvalidResponse{Content: resp.Content, Err: err}
	}

	tasks := make([]Task, 0, len(out.Tasks))
	for _, t := range out.Tasks {
		d, err := caldate.Parse(strings.TrimSpace(t.Date))
		if err != nil || d.Before(from) || d.After(to) {
			continue
		}
		subject := strings.TrimSpace(t.Subject)
		if subject == "" {
			continue
		}
		minutes := t.DurationMinutes
		if minutes <= 0 {
			minutes = FallbackDuration
		}
		tasks = append(tasks, Task{
			Subject:         subject,
			Topic:           strings.TrimSpace(t.Topic),
			Date:            d,
			DurationMinutes: min(minutes, maxTaskMinutes),
		})
	}
	if len(tasks) == 0 {
		return nil, errNoUsableTasks
	}
	return tasks, nil
}

// Tasks returns the user's tasks in [from, to], ordered by date.
func (p *Planner) Tasks(ctx context.Context, userID string, from, to caldate.Date) ([]store.StudyTask, error) {
	if to.Before(from) {
		return nil, domain.NewValidationError("to", "must not be before from")
	}
	return p.tasks.List(ctx, userID, from, to)
}

// Week returns the tasks of the next DefaultDays days starting today.
func (p *Planner) Week(ctx context.Context, userID string) ([]store.StudyTask, error) {
	today := caldate.Today(p.now(), p.loc)
	return p.Tasks(ctx, userID, today, today.AddDays(DefaultDays))
}

// Toggle flips a task's done flag.
func (p *Planner) Toggle(ctx context.Context, userID, taskID string) (*store.StudyTask, error) {
	return p.tasks.Toggle(ctx, userID, taskID)
}
