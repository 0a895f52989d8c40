package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/estudai/estudai/internal/llm"
)

func newGuardedContext(e *echo.Echo, uid string) echo.Context {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/tutor/ask", nil)
	c := e.NewContext(req, httptest.NewRecorder())
	c.Set(userIDKey, uid)
	return c
}

func TestAIGuard_AttributesCallsToUser(t *testing.T) {
	e := echo.New()
	g := newAIGuard(60, 1)

	var seen string
	h := g.middleware(func(c echo.Context) error {
		seen = llm.UserFrom(c.Request().Context())
		return nil
	})

	require.NoError(t, h(newGuardedContext(e, "u1")))
	assert.Equal(t, "u1", seen)
}

func TestAIGuard_BurstExhausted(t *testing.T) {
	e := echo.New()
	g := newAIGuard(1, 1)
	h := g.middleware(func(echo.Context) error { return nil })

	require.NoError(t, h(newGuardedContext(e, "u1")))
	assert.ErrorIs(t, h(newGuardedContext(e, "u1")), errThrottled)

	// Quotas are per user.
	assert.NoError(t, h(newGuardedContext(e, "u2")))
}

func TestAIGuard_OneCallInFlight(t *testing.T) {
	e := echo.New()
	g := newAIGuard(600, 10)

	var nested error
	var h echo.HandlerFunc
	h = g.middleware(func(c echo.Context) error {
		if nested == nil && c.Get("depth") == nil {
			inner := newGuardedContext(e, "u1")
			inner.Set("depth", 1)
			nested = h(inner)
		}
		return nil
	})

	require.NoError(t, h(newGuardedContext(e, "u1")))
	assert.ErrorIs(t, nested, errThrottled)
}

func TestAIGuard_AcquireReleasesSlot(t *testing.T) {
	g := newAIGuard(600, 10)

	ctx, release, err := g.Acquire(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", llm.UserFrom(ctx))

	_, _, err = g.Acquire(context.Background(), "u1")
	assert.ErrorIs(t, err, errThrottled)

	release()
	_, release, err = g.Acquire(context.Background(), "u1")
	require.NoError(t, err)
	release()
}

func TestAIGuard_RateRefusalFreesSlot(t *testing.T) {
	g := newAIGuard(1, 1)

	_, release, err := g.Acquire(context.Background(), "u1")
	require.NoError(t, err)
	release()

	for range 2 {
		_, _, err = g.Acquire(context.Background(), "u1")
		assert.ErrorIs(t, err, errThrottled, "over rate, not stuck in flight")
	}
	assert.True(t, g.quota("u1").inflight.TryAcquire(1))
}
