package server

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/estudai/estudai/internal/domain"
	"github.com/estudai/estudai/internal/llm"
	"github.com/estudai/estudai/internal/questionpool"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", domain.NewValidationError("x", "bad"), http.StatusBadRequest},
		{"invalid input", fmt.Errorf("wrap: %w", domain.ErrInvalidInput), http.StatusBadRequest},
		{"unauthorized", fmt.Errorf("%w: expired", domain.ErrUnauthorized), http.StatusUnauthorized},
		{"premium", domain.ErrPremiumRequired, http.StatusPaymentRequired},
		{"not found", fmt.Errorf("get card: %w", domain.ErrNotFound), http.StatusNotFound},
		{"nothing due", domain.ErrNothingDue, http.StatusConflict},
		{"gate rate limit", &questionpool.RateLimitedError{Err: errors.New("429")}, http.StatusTooManyRequests},
		{"provider rate limit", fmt.Errorf("grade essay: %w", &llm.ErrRateLimit{}), http.StatusTooManyRequests},
		{"throttled", errThrottled, http.StatusTooManyRequests},
		{"generation", &questionpool.GenerationError{Err: errors.New("schema")}, http.StatusBadGateway},
		{"invalid response", &llm.ErrInvalidResponse{Err: errors.New("json")}, http.StatusBadGateway},
		{"provider down", &llm.ErrProviderUnavailable{}, http.StatusBadGateway},
		{"provider rejected key", &llm.ErrRequestRejected{Status: 401}, http.StatusBadGateway},
		{"echo", echo.ErrMethodNotAllowed, http.StatusMethodNotAllowed},
		{"other", errors.New("disk full"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, body := classify(tt.err)
			assert.Equal(t, tt.want, got)
			assert.NotEmpty(t, body.Message)
		})
	}
}

func TestTokenVerifier(t *testing.T) {
	v := NewTokenVerifier("secret", "estudai-auth")

	tok, err := IssueToken("secret", "estudai-auth", "u1", time.Hour)
	assert.NoError(t, err)
	id, err := v.Verify(tok)
	assert.NoError(t, err)
	assert.Equal(t, "u1", id)

	wrongIssuer, _ := IssueToken("secret", "other", "u1", time.Hour)
	_, err = v.Verify(wrongIssuer)
	assert.Error(t, err)

	noSubject, _ := IssueToken("secret", "estudai-auth", "", time.Hour)
	_, err = v.Verify(noSubject)
	assert.Error(t, err)

	_, err = v.Verify("")
	assert.Error(t, err)
}
