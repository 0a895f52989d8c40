package server

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/labstack/echo/v4"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"github.com/estudai/estudai/internal/llm"
)

const (
	maxTrackedUsers = 10000
	quotaIdleTTL    = 30 * time.Minute
)

// errThrottled rejects an AI call over the user's quota.
var errThrottled = errors.New("too many AI requests")

// userQuota allows one AI call in flight and a sustained rate per user.
type userQuota struct {
	limiter  *rate.Limiter
	inflight *semaphore.Weighted
}

type aiGuard struct {
	mu     sync.Mutex
	quotas *expirable.LRU[string, *userQuota]
	limit  rate.Limit
	burst  int
}

func newAIGuard(perMinute float64, burst int) *aiGuard {
	if perMinute <= 0 {
		perMinute = 6
	}
	if burst <= 0 {
		burst = 1
	}
	return &aiGuard{
		quotas: expirable.NewLRU[string, *userQuota](maxTrackedUsers, nil, quotaIdleTTL),
		limit:  rate.Limit(perMinute / 60),
		burst:  burst,
	}
}

func (g *aiGuard) quota(userID string) *userQuota {
	g.mu.Lock()
	defer g.mu.Unlock()

	if q, ok := g.quotas.Get(userID); ok {
		return q
	}
	q := &userQuota{
		limiter:  rate.NewLimiter(g.limit, g.burst),
		inflight: semaphore.NewWeighted(1),
	}
	g.quotas.Add(userID, q)
	return q
}

// Acquire admits one AI call for userID. The returned context carries the
// user for llm_events attribution; release frees the in-flight slot.
func (g *aiGuard) Acquire(ctx context.Context, userID string) (context.Context, func(), error) {
	q := g.quota(userID)
	if !q.inflight.TryAcquire(1) {
		return nil, nil, errThrottled
	}
	if !q.limiter.Allow() {
		q.inflight.Release(1)
		return nil, nil, errThrottled
	}
	return llm.WithUser(ctx, userID), func() { q.inflight.Release(1) }, nil
}

func (g *aiGuard) middleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, release, err := g.Acquire(c.Request().Context(), userID(c))
		if err != nil {
			return err
		}
		defer release()

		c.SetRequest(c.Request().WithContext(ctx))
		return next(c)
	}
}
