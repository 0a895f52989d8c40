package spacedrep

import (
	"fmt"

	"github.com/estudai/estudai/internal/caldate"
)

// Quality is the learner's self-assessment of a review.
type Quality string

const (
	QualityHard   Quality = "hard"
	QualityMedium Quality = "medium"
	QualityEasy   Quality = "easy"
)

// QualityIntervals maps each answer quality to the review interval in days.
// The mapping is flat: the previous interval does not influence the next.
var QualityIntervals = map[Quality]int{
	QualityHard:   1,
	QualityMedium: 2,
	QualityEasy:   4,
}

// MasteryThresholdDays is the interval above which a card counts as
// learned and is removed from the deck. No quality currently maps above
// it, so removal never happens through Schedule.
const MasteryThresholdDays = 7

// NewCardInterval is the interval given to freshly created cards.
const NewCardInterval = 1

// ParseQuality validates a quality label.
func ParseQuality(s string) (Quality, error) {
	q := Quality(s)
	if _, ok := QualityIntervals[q]; !ok {
		return "", fmt.Errorf("unknown quality %q", s)
	}
	return q, nil
}

// Outcome is the result of scheduling a reviewed card.
type Outcome struct {
	Deleted    bool         `json:"deleted"`
	Interval   int          `json:"interval,omitempty"`
	NextReview caldate.Date `json:"next_review"`
}

// Schedule computes the next review for a card answered with quality on today.
func Schedule(quality Quality, today caldate.Date) (Outcome, error) {
	interval, ok := QualityIntervals[quality]
	if !ok {
		return Outcome{}, fmt.Errorf("unknown quality %q", quality)
	}
	return scheduleInterval(interval, today), nil
}

func scheduleInterval(interval int, today caldate.Date) Outcome {
	if interval > MasteryThresholdDays {
		return Outcome{Deleted: true}
	}
	return Outcome{Interval: interval, NextReview: today.AddDays(interval)}
}
