package focus

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/estudai/estudai/internal/domain"
)

type fakeXP struct {
	amounts []int
	err     error
}

func (f *fakeXP) AwardXP(_ context.Context, _ string, amount int, _ string) (int, int, error) {
	if f.err != nil {
		return 0, 0, f.err
	}
	f.amounts = append(f.amounts, amount)
	return 525, 2, nil
}

func TestComplete_FocusAwardsXPAndStartsBreak(t *testing.T) {
	xp := &fakeXP{}
	timer := NewTimer(xp, nil)

	c, err := timer.Complete(context.Background(), "u1", PhaseFocus)
	require.NoError(t, err)
	assert.Equal(t, PhaseBreak, c.Next)
	assert.Equal(t, 300, c.NextSeconds)
	assert.Equal(t, 25, c.XPAwarded)
	require.NotNil(t, c.XP)
	assert.Equal(t, 525, *c.XP)
	assert.Equal(t, []int{25}, xp.amounts)
}

func TestComplete_BreakStartsFocusWithoutAward(t *testing.T) {
	xp := &fakeXP{}
	timer := NewTimer(xp, nil)

	c, err := timer.Complete(context.Background(), "u1", PhaseBreak)
	require.NoError(t, err)
	assert.Equal(t, PhaseFocus, c.Next)
	assert.Equal(t, 1500, c.NextSeconds)
	assert.Zero(t, c.XPAwarded)
	assert.Nil(t, c.XP)
	assert.Empty(t, xp.amounts)
}

func TestComplete_AwardFailureStillAdvances(t *testing.T) {
	timer := NewTimer(&fakeXP{err: errors.New("db down")}, nil)

	c, err := timer.Complete(context.Background(), "u1", PhaseFocus)
	require.NoError(t, err)
	assert.Equal(t, PhaseBreak, c.Next)
	assert.Zero(t, c.XPAwarded)
}

func TestComplete_UnknownPhase(t *testing.T) {
	_, err := NewTimer(nil, nil).Complete(context.Background(), "u1", Phase("nap"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
