// Package focus implements the pomodoro focus timer cycle.
package focus

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/estudai/estudai/internal/domain"
	"github.com/estudai/estudai/internal/gamification"
)

// Phase is a timer phase.
type Phase string

const (
	PhaseFocus Phase = "focus"
	PhaseBreak Phase = "break"
)

const (
	FocusDuration = 25 * time.Minute
	BreakDuration = 5 * time.Minute
)

// Duration returns the length of the phase.
func (p Phase) Duration() time.Duration {
	if p == PhaseBreak {
		return BreakDuration
	}
	return FocusDuration
}

// ParsePhase validates a phase name.
func ParsePhase(s string) (Phase, error) {
	switch Phase(s) {
	case PhaseFocus, PhaseBreak:
		return Phase(s), nil
	}
	return "", domain.NewValidationError("phase", fmt.Sprintf("unknown phase %q", s))
}

// XPAwarder credits experience points.
type XPAwarder interface {
	AwardXP(ctx context.Context, userID string, amount int, reason string) (xp, level int, err error)
}

// Completion is the result of finishing a phase.
type Completion struct {
	Completed   Phase `json:"completed"`
	Next        Phase `json:"next"`
	NextSeconds int   `json:"next_seconds"`
	XPAwarded   int   `json:"xp_awarded"`
	XP          *int  `json:"xp,omitempty"`
	Level       *int  `json:"level,omitempty"`
}

// Timer advances the focus cycle.
type Timer struct {
	xp     XPAwarder
	logger *slog.Logger
}

func NewTimer(xp XPAwarder, logger *slog.Logger) *Timer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Timer{xp: xp, logger: logger}
}

// Complete finishes phase and returns the next one. Finishing a focus
// phase awards XPFocusSession; the phase still advances when the award
// fails.
func (t *Timer) Complete(ctx context.Context, userID string, phase Phase) (Completion, error) {
	if _, err := ParsePhase(string(phase)); err != nil {
		return Completion{}, err
	}

	next := PhaseFocus
	if phase == PhaseFocus {
		next = PhaseBreak
	}
	c := Completion{
		Completed:   phase,
		Next:        next,
		NextSeconds: int(next.Duration() / time.Second),
	}
	if phase != PhaseFocus || t.xp == nil {
		return c, nil
	}

	xp, level, err := t.xp.AwardXP(ctx, userID, gamification.XPFocusSession, "focus_session")
	if err != nil {
		t.logger.WarnContext(ctx, "focus xp award failed", "user_id", userID, "error", err)
		return c, nil
	}
	c.XPAwarded = gamification.XPFocusSession
	c.XP, c.Level = &xp, &level
	return c, nil
}
