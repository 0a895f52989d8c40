package profile

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/estudai/estudai/internal/caldate"
	"github.com/estudai/estudai/internal/domain"
	"github.com/estudai/estudai/internal/events"
	"github.com/estudai/estudai/internal/store"
	"github.com/estudai/estudai/internal/store/storetest"
)

var testNow = time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC)

func newService(t *testing.T, repo store.ProfileRepo, bus *events.Bus) *Service {
	t.Helper()
	s := New(repo, bus, Options{Location: time.UTC})
	s.now = func() time.Time { return testNow }
	t.Cleanup(s.Close)
	return s
}

func datePtr(s string) *caldate.Date {
	d := caldate.MustParse(s)
	return &d
}

func TestGet_ProvisionsMissingProfile(t *testing.T) {
	st := storetest.Open(t)
	s := newService(t, st.Profiles(), nil)

	v, err := s.Get(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", v.ID)
	assert.Equal(t, 1, v.Level)
	assert.Equal(t, 500, v.Progress.XPToNextLevel)
}

func TestGet_LazyStreakReset(t *testing.T) {
	st := storetest.Open(t)
	ctx := context.Background()
	repo := st.Profiles()
	require.NoError(t, repo.Ensure(ctx, "u1", testNow))
	require.NoError(t, repo.SetStreak(ctx, "u1", 6, datePtr("2025-03-07")))

	s := newService(t, repo, nil)
	v, err := s.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 0, v.StreakCount)

	stored, err := repo.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 0, stored.StreakCount, "reset is written through")
	assert.Equal(t, caldate.MustParse("2025-03-07"), *stored.LastActivityDate)
}

func TestGet_ActiveStreakKept(t *testing.T) {
	st := storetest.Open(t)
	ctx := context.Background()
	repo := st.Profiles()
	require.NoError(t, repo.Ensure(ctx, "u1", testNow))
	require.NoError(t, repo.SetStreak(ctx, "u1", 6, datePtr("2025-03-09")))

	v, err := newService(t, repo, nil).Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 6, v.StreakCount)
	assert.Equal(t, 10, v.Progress.NextStreakMilestone)
}

// flakyRepo fails SetStreak and counts reads.
type flakyRepo struct {
	store.ProfileRepo
	reads int
}

func (f *flakyRepo) Get(ctx context.Context, id string) (*store.Profile, error) {
	f.reads++
	return f.ProfileRepo.Get(ctx, id)
}

func (f *flakyRepo) SetStreak(context.Context, string, int, *caldate.Date) error {
	return errors.New("write failed")
}

func TestGet_ResetWriteFailureEvictsCache(t *testing.T) {
	st := storetest.Open(t)
	ctx := context.Background()
	require.NoError(t, st.Profiles().Ensure(ctx, "u1", testNow))
	require.NoError(t, st.Profiles().SetStreak(ctx, "u1", 4, datePtr("2025-03-01")))

	repo := &flakyRepo{ProfileRepo: st.Profiles()}
	s := newService(t, repo, nil)

	v, err := s.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 0, v.StreakCount, "computed view is returned")

	_, err = s.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, repo.reads, "failed write drops the cache entry")

	stored, err := st.Profiles().Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 4, stored.StreakCount)
}

func TestGet_ServesFromCache(t *testing.T) {
	st := storetest.Open(t)
	repo := &flakyRepo{ProfileRepo: st.Profiles()}
	s := newService(t, repo, nil)
	ctx := context.Background()

	_, err := s.Get(ctx, "u1")
	require.NoError(t, err)
	_, err = s.Get(ctx, "u1")
	require.NoError(t, err)

	// First read misses, provisioning reads again, second Get is cached.
	assert.Equal(t, 2, repo.reads)
}

func TestProfileUpdatedEvictsCache(t *testing.T) {
	st := storetest.Open(t)
	ctx := context.Background()
	bus := events.NewBus(nil)
	s := newService(t, st.Profiles(), bus)

	_, err := s.Get(ctx, "u1")
	require.NoError(t, err)

	require.NoError(t, st.Profiles().SetStreak(ctx, "u1", 1, datePtr("2025-03-10")))
	bus.ProfileUpdated.Publish(ctx, events.ProfileUpdated{UserID: "u1", Reason: "streak"})

	v, err := s.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, v.StreakCount)
}

func TestUpdate(t *testing.T) {
	st := storetest.Open(t)
	s := newService(t, st.Profiles(), nil)

	v, err := s.Update(context.Background(), "u1", Update{FullName: "Ana Souza", TargetCourse: "Medicina"})
	require.NoError(t, err)
	assert.Equal(t, "Ana Souza", v.FullName)
	assert.Equal(t, "Medicina", v.TargetCourse)
}

func TestUpgradeAndRequirePro(t *testing.T) {
	st := storetest.Open(t)
	s := newService(t, st.Profiles(), nil)
	ctx := context.Background()

	assert.ErrorIs(t, s.RequirePro(ctx, "u1"), domain.ErrPremiumRequired)

	require.NoError(t, s.Upgrade(ctx, "u1"))
	assert.NoError(t, s.RequirePro(ctx, "u1"))
}

func TestUpgrade_UnknownUser(t *testing.T) {
	st := storetest.Open(t)
	s := newService(t, st.Profiles(), nil)

	assert.ErrorIs(t, s.Upgrade(context.Background(), "ghost"), domain.ErrNotFound)
}

func TestAwardXP(t *testing.T) {
	st := storetest.Open(t)
	ctx := context.Background()
	bus := events.NewBus(nil)
	var awarded []events.XPAwarded
	bus.XPAwarded.Subscribe(func(_ context.Context, ev events.XPAwarded) { awarded = append(awarded, ev) })
	s := newService(t, st.Profiles(), bus)

	_, err := s.Get(ctx, "u1")
	require.NoError(t, err)

	xp, level, err := s.AwardXP(ctx, "u1", 495, "seed")
	require.NoError(t, err)
	assert.Equal(t, 495, xp)
	assert.Equal(t, 1, level)

	xp, level, err = s.AwardXP(ctx, "u1", 10, "correct_answer")
	require.NoError(t, err)
	assert.Equal(t, 505, xp)
	assert.Equal(t, 2, level)

	require.Len(t, awarded, 2)
	assert.False(t, awarded[0].LeveledUp)
	assert.True(t, awarded[1].LeveledUp)

	v, err := s.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 505, v.XP, "award evicts the cached row")
}

func TestAwardXP_RejectsNonPositive(t *testing.T) {
	st := storetest.Open(t)
	s := newService(t, st.Profiles(), nil)

	_, _, err := s.AwardXP(context.Background(), "u1", 0, "noop")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
