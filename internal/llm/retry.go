package llm

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"

	"github.com/avast/retry-go"
)

// RetryProvider retries transient failures with jittered exponential
// backoff. A schema mismatch is retried once; a rate limit waits for the
// backend's Retry-After when it sent one.
type RetryProvider struct {
	inner  Provider
	config RetryConfig
}

// WithRetry wraps p with retry.
func WithRetry(p Provider, cfg RetryConfig) Provider {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	return &RetryProvider{inner: p, config: cfg}
}

func (r *RetryProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	var (
		resp           *Response
		invalidRetried bool
	)
	err := retry.Do(
		func() error {
			out, err := r.inner.Generate(ctx, req)
			if err != nil {
				return err
			}
			resp = out
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(uint(r.config.MaxAttempts)),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			if ctx.Err() != nil {
				return false
			}
			var invalid *ErrInvalidResponse
			if errors.As(err, &invalid) {
				if invalidRetried {
					return false
				}
				invalidRetried = true
				return true
			}
			return Transient(err)
		}),
		retry.DelayType(func(n uint, err error, _ *retry.Config) time.Duration {
			return r.backoff(n, err)
		}),
	)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (r *RetryProvider) ModelID() string {
	return r.inner.ModelID()
}

// backoff is the wait before attempt n+1: InitialWait * Multiplier^n,
// capped at MaxWait, with ±20% jitter.
func (r *RetryProvider) backoff(n uint, err error) time.Duration {
	var rl *ErrRateLimit
	if errors.As(err, &rl) && rl.RetryAfter > 0 {
		return rl.RetryAfter
	}

	mult := r.config.Multiplier
	if mult < 1 {
		mult = 1
	}
	wait := float64(r.config.InitialWait) * math.Pow(mult, float64(n))
	if ceiling := float64(r.config.MaxWait); ceiling > 0 && wait > ceiling {
		wait = ceiling
	}
	wait += wait * 0.2 * (2*rand.Float64() - 1)
	return time.Duration(max(wait, 0))
}
