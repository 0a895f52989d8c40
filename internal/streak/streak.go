// Package streak tracks consecutive calendar days of study activity.
package streak

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/estudai/estudai/internal/caldate"
	"github.com/estudai/estudai/internal/events"
	"github.com/estudai/estudai/internal/store"
)

// Next computes the streak after recording activity on today.
// changed is false when activity was already recorded today.
func Next(count int, last *caldate.Date, today caldate.Date) (next int, changed bool) {
	if last == nil {
		return 1, true
	}
	switch today.DaysSince(*last) {
	case 0:
		return count, false
	case 1:
		return count + 1, true
	default:
		return 1, true
	}
}

// Effective returns the streak to display on today. A streak whose last
// activity is more than one day old is broken and reads as 0.
func Effective(count int, last *caldate.Date, today caldate.Date) int {
	if last == nil {
		return 0
	}
	if today.DaysSince(*last) > 1 {
		return 0
	}
	return count
}

// Tracker updates the persisted streak of a user.
type Tracker struct {
	profiles store.ProfileRepo
	bus      *events.Bus
	loc      *time.Location
	logger   *slog.Logger
	now      func() time.Time
}

// NewTracker creates a Tracker that computes calendar days in loc.
func NewTracker(profiles store.ProfileRepo, bus *events.Bus, loc *time.Location, logger *slog.Logger) *Tracker {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracker{
		profiles: profiles,
		bus:      bus,
		loc:      loc,
		logger:   logger,
		now:      time.Now,
	}
}

// Update records activity for today and returns the new streak count.
// A failed write is logged and the computed count is still returned.
func (t *Tracker) Update(ctx context.Context, userID string) (int, error) {
	p, err := t.profiles.Get(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("read streak: %w", err)
	}

	today := caldate.Today(t.now(), t.loc)
	next, changed := Next(p.StreakCount, p.LastActivityDate, today)
	if !changed {
		return next, nil
	}

	if err := t.profiles.SetStreak(ctx, userID, next, &today); err != nil {
		t.logger.WarnContext(ctx, "persist streak failed",
			"user_id", userID,
			"streak", next,
			"error", err,
		)
		return next, nil
	}

	if t.bus != nil {
		t.bus.ProfileUpdated.Publish(ctx, events.ProfileUpdated{UserID: userID, Reason: "streak"})
	}
	return next, nil
}
