package spacedrep

import (
	"github.com/estudai/estudai/internal/caldate"
	"github.com/estudai/estudai/internal/store"
)

// ReviewStatus describes a card's review status for display.
type ReviewStatus string

const (
	ReviewNotDue  ReviewStatus = "not_due"
	ReviewDue     ReviewStatus = "due"
	ReviewOverdue ReviewStatus = "overdue"
)

// IsDue reports whether the card should be reviewed on today.
func IsDue(c store.Flashcard, today caldate.Date) bool {
	return !c.NextReview.After(today)
}

// OverdueDays returns how many days past due the card is. Returns 0 if not yet due.
func OverdueDays(c store.Flashcard, today caldate.Date) int {
	if !IsDue(c, today) {
		return 0
	}
	return today.DaysSince(c.NextReview)
}

// Status returns the review status. A card is overdue once it has been
// due for more than half of its interval.
func Status(c store.Flashcard, today caldate.Date) ReviewStatus {
	if !IsDue(c, today) {
		return ReviewNotDue
	}
	if 2*OverdueDays(c, today) > c.Interval {
		return ReviewOverdue
	}
	return ReviewDue
}

// DaysUntilReview returns the number of days until the next review.
// Returns 0 if already due.
func DaysUntilReview(c store.Flashcard, today caldate.Date) int {
	if IsDue(c, today) {
		return 0
	}
	return c.NextReview.DaysSince(today)
}
