package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/estudai/estudai/internal/domain"
	"github.com/estudai/estudai/internal/llm"
	"github.com/estudai/estudai/internal/questionpool"
)

type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type errorBody struct {
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Fields  []fieldError `json:"fields,omitempty"`
}

// classify maps an error to a status and response body.
func classify(err error) (int, errorBody) {
	var (
		verr    *domain.ValidationError
		httpErr *echo.HTTPError
		rateErr *questionpool.RateLimitedError
		genErr  *questionpool.GenerationError
		llmRate *llm.ErrRateLimit
		llmBad  *llm.ErrInvalidResponse
		llmMax  *llm.ErrMaxTokensExceeded
		llmDown *llm.ErrProviderUnavailable
		llmRej  *llm.ErrRequestRejected
	)

	switch {
	case errors.As(err, &verr):
		body := errorBody{Code: "invalid_input", Message: "Dados inválidos."}
		for _, fe := range verr.Errors {
			body.Fields = append(body.Fields, fieldError{Field: fe.Field, Message: fe.Message})
		}
		return http.StatusBadRequest, body
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, errorBody{Code: "invalid_input", Message: "Dados inválidos."}
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, errorBody{Code: "unauthorized", Message: "Sessão inválida ou expirada."}
	case errors.Is(err, domain.ErrPremiumRequired):
		return http.StatusPaymentRequired, errorBody{Code: "premium_required", Message: "Recurso exclusivo do plano Pro."}
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, errorBody{Code: "not_found", Message: "Não encontrado."}
	case errors.Is(err, domain.ErrNothingDue):
		return http.StatusConflict, errorBody{Code: "nothing_due", Message: "Nenhum cartão para revisar agora."}
	case errors.As(err, &rateErr), errors.As(err, &llmRate), errors.Is(err, errThrottled):
		return http.StatusTooManyRequests, errorBody{Code: "rate_limited", Message: questionpool.RateLimitMessage}
	case errors.As(err, &genErr):
		return http.StatusBadGateway, errorBody{Code: "generation_failed", Message: genErr.Error()}
	case errors.As(err, &llmBad), errors.As(err, &llmMax), errors.As(err, &llmDown), errors.As(err, &llmRej):
		return http.StatusBadGateway, errorBody{Code: "ai_unavailable", Message: "O serviço de IA não respondeu corretamente. Tente novamente."}
	case errors.As(err, &httpErr):
		return httpErr.Code, errorBody{Code: "http_error", Message: fmt.Sprint(httpErr.Message)}
	default:
		return http.StatusInternalServerError, errorBody{Code: "internal", Message: "Erro interno."}
	}
}

func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status, body := classify(err)
	if status >= http.StatusInternalServerError {
		s.logger.ErrorContext(c.Request().Context(), "request failed",
			"path", c.Path(), "status", status, "user_id", userID(c), "error", err)
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, body)
	}
	if err != nil {
		s.logger.ErrorContext(c.Request().Context(), "write error response", "error", err)
	}
}
