// Package profile serves user profiles through a write-through cache and
// owns XP awards and premium gating.
package profile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/estudai/estudai/internal/caldate"
	"github.com/estudai/estudai/internal/domain"
	"github.com/estudai/estudai/internal/events"
	"github.com/estudai/estudai/internal/gamification"
	"github.com/estudai/estudai/internal/store"
	"github.com/estudai/estudai/internal/streak"
)

// Options configures a Service.
type Options struct {
	CacheSize int
	CacheTTL  time.Duration
	Location  *time.Location
	Logger    *slog.Logger
}

// View is a profile as presented to clients: the stored row with the
// effective streak applied, plus derived gamification data.
type View struct {
	store.Profile
	Progress gamification.Progress `json:"progress"`
}

// Update holds the user-editable fields.
type Update struct {
	FullName     string `json:"full_name" validate:"max=120"`
	Username     string `json:"username" validate:"max=40"`
	AvatarURL    string `json:"avatar_url" validate:"omitempty,url,max=500"`
	TargetCourse string `json:"target_course" validate:"max=120"`
	CurrentYear  string `json:"current_year" validate:"max=40"`
}

// Service reads and mutates profiles. The store is the source of truth;
// cache entries are replaced after successful writes and evicted after
// failed ones or when another component announces a change.
type Service struct {
	repo   store.ProfileRepo
	bus    *events.Bus
	cache  *expirable.LRU[string, store.Profile]
	loc    *time.Location
	logger *slog.Logger
	now    func() time.Time

	unsubscribe func()
}

// New creates a Service and subscribes it to profile change events.
func New(repo store.ProfileRepo, bus *events.Bus, opts Options) *Service {
	if opts.CacheSize <= 0 {
		opts.CacheSize = 1024
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 5 * time.Minute
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	s := &Service{
		repo:        repo,
		bus:         bus,
		cache:       expirable.NewLRU[string, store.Profile](opts.CacheSize, nil, opts.CacheTTL),
		loc:         opts.Location,
		logger:      opts.Logger,
		now:         time.Now,
		unsubscribe: func() {},
	}
	if bus != nil {
		s.unsubscribe = bus.ProfileUpdated.Subscribe(func(_ context.Context, ev events.ProfileUpdated) {
			s.cache.Remove(ev.UserID)
		})
	}
	return s
}

// Close detaches the service from the event bus.
func (s *Service) Close() {
	s.unsubscribe()
}

// Ensure provisions an empty profile for a user seen for the first time.
func (s *Service) Ensure(ctx context.Context, userID string) error {
	if _, ok := s.cache.Get(userID); ok {
		return nil
	}
	if err := s.repo.Ensure(ctx, userID, s.now()); err != nil {
		return fmt.Errorf("ensure profile: %w", err)
	}
	return nil
}

// Get returns the user's profile with the lazy streak reset applied.
// When the reset changes the stored value it is written through; if that
// write fails the cache entry is dropped and the computed view is still
// returned.
func (s *Service) Get(ctx context.Context, userID string) (*View, error) {
	p, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	today := caldate.Today(s.now(), s.loc)
	if eff := streak.Effective(p.StreakCount, p.LastActivityDate, today); eff != p.StreakCount {
		p.StreakCount = eff
		if err := s.repo.SetStreak(ctx, userID, eff, p.LastActivityDate); err != nil {
			s.cache.Remove(userID)
			s.logger.WarnContext(ctx, "reset broken streak failed", "user_id", userID, "error", err)
		} else {
			s.cache.Add(userID, p)
		}
	}

	return newView(p), nil
}

// Update writes the editable fields, creating the profile if needed.
func (s *Service) Update(ctx context.Context, userID string, u Update) (*View, error) {
	p, err := s.repo.Upsert(ctx, userID, store.ProfileFields{
		FullName:     u.FullName,
		Username:     u.Username,
		AvatarURL:    u.AvatarURL,
		TargetCourse: u.TargetCourse,
		CurrentYear:  u.CurrentYear,
	}, s.now())
	if err != nil {
		s.cache.Remove(userID)
		return nil, fmt.Errorf("update profile: %w", err)
	}
	s.cache.Add(userID, *p)
	return s.Get(ctx, userID)
}

// Upgrade grants premium access.
func (s *Service) Upgrade(ctx context.Context, userID string) error {
	err := s.repo.SetPro(ctx, userID, true)
	s.cache.Remove(userID)
	if err != nil {
		return fmt.Errorf("upgrade profile: %w", err)
	}
	return nil
}

// RequirePro returns domain.ErrPremiumRequired unless the user is premium.
func (s *Service) RequirePro(ctx context.Context, userID string) error {
	p, err := s.load(ctx, userID)
	if err != nil {
		return err
	}
	if !p.IsPro {
		return domain.ErrPremiumRequired
	}
	return nil
}

// AwardXP adds amount to the user's XP with a single increment statement
// and returns the new XP and level.
func (s *Service) AwardXP(ctx context.Context, userID string, amount int, reason string) (xp, level int, err error) {
	if amount <= 0 {
		return 0, 0, domain.NewValidationError("amount", "must be positive")
	}

	xp, level, err = s.repo.IncrementXP(ctx, userID, amount, gamification.XPPerLevel)
	s.cache.Remove(userID)
	if err != nil {
		return 0, 0, fmt.Errorf("award xp: %w", err)
	}

	s.logger.DebugContext(ctx, "xp awarded", "user_id", userID, "amount", amount, "xp", xp, "level", level, "reason", reason)
	if s.bus != nil {
		s.bus.XPAwarded.Publish(ctx, events.XPAwarded{
			UserID:    userID,
			Amount:    amount,
			XP:        xp,
			Level:     level,
			LeveledUp: gamification.LevelForXP(xp-amount) < level,
			Reason:    reason,
		})
	}
	return xp, level, nil
}

// load reads through the cache, provisioning a missing profile.
func (s *Service) load(ctx context.Context, userID string) (store.Profile, error) {
	if p, ok := s.cache.Get(userID); ok {
		return p, nil
	}

	p, err := s.repo.Get(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		if err := s.repo.Ensure(ctx, userID, s.now()); err != nil {
			return store.Profile{}, fmt.Errorf("provision profile: %w", err)
		}
		p, err = s.repo.Get(ctx, userID)
	}
	if err != nil {
		return store.Profile{}, fmt.Errorf("get profile: %w", err)
	}

	s.cache.Add(userID, *p)
	return *p, nil
}

func newView(p store.Profile) *View {
	return &View{
		Profile:  p,
		Progress: gamification.ProgressFor(p.XP, p.StreakCount),
	}
}
