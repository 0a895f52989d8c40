package spacedrep

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/estudai/estudai/internal/caldate"
)

func TestSchedule_FlatMapping(t *testing.T) {
	today := caldate.MustParse("2025-03-10")
	tests := []struct {
		quality  Quality
		interval int
		next     string
	}{
		{QualityHard, 1, "2025-03-11"},
		{QualityMedium, 2, "2025-03-12"},
		{QualityEasy, 4, "2025-03-14"},
	}
	for _, tt := range tests {
		t.Run(string(tt.quality), func(t *testing.T) {
			out, err := Schedule(tt.quality, today)
			require.NoError(t, err)
			assert.False(t, out.Deleted)
			assert.Equal(t, tt.interval, out.Interval)
			assert.Equal(t, caldate.MustParse(tt.next), out.NextReview)
		})
	}
}

func TestSchedule_RepeatedEasyNeverDeletes(t *testing.T) {
	today := caldate.MustParse("2025-03-10")
	for i := 0; i < 10; i++ {
		out, err := Schedule(QualityEasy, today)
		require.NoError(t, err)
		assert.False(t, out.Deleted, "answer %d", i+1)
		assert.Equal(t, 4, out.Interval, "interval is not cumulative")
		today = out.NextReview
	}
}

func TestSchedule_DeletionBranchUnreachable(t *testing.T) {
	for q, interval := range QualityIntervals {
		assert.LessOrEqual(t, interval, MasteryThresholdDays, "quality %s", q)
	}
}

func TestScheduleInterval_AboveThresholdDeletes(t *testing.T) {
	today := caldate.MustParse("2025-03-10")

	out := scheduleInterval(MasteryThresholdDays, today)
	assert.False(t, out.Deleted)

	out = scheduleInterval(MasteryThresholdDays+1, today)
	assert.True(t, out.Deleted)
	assert.Zero(t, out.Interval)
}

func TestSchedule_UnknownQuality(t *testing.T) {
	_, err := Schedule("trivial", caldate.MustParse("2025-03-10"))
	assert.Error(t, err)
}

func TestParseQuality(t *testing.T) {
	q, err := ParseQuality("medium")
	require.NoError(t, err)
	assert.Equal(t, QualityMedium, q)

	_, err = ParseQuality("MEDIUM")
	assert.Error(t, err)
}
