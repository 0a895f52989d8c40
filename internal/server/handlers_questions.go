package server

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/estudai/estudai/internal/domain"
	"github.com/estudai/estudai/internal/problemgen"
	"github.com/estudai/estudai/internal/questionpool"
)

type questionsQuery struct {
	Subject     string `query:"subject" validate:"required,max=60"`
	Topic       string `query:"topic" validate:"max=200"`
	Difficulty  string `query:"difficulty" validate:"omitempty,oneof=medium hard"`
	Count       int    `query:"count" validate:"gte=0,lte=5"`
	BypassCache bool   `query:"bypass_cache"`
}

func (s *Server) getQuestions(c echo.Context) error {
	var q questionsQuery
	if err := bind(c, &q); err != nil {
		return err
	}
	qs, err := s.svc.Questions.GetQuestions(c.Request().Context(), questionpool.GetInput{
		Subject:     q.Subject,
		Topic:       q.Topic,
		Difficulty:  problemgen.ParseDifficulty(q.Difficulty),
		UserID:      userID(c),
		BypassCache: q.BypassCache,
		Count:       q.Count,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"questions": qs})
}

type bankQuery struct {
	Subject string `query:"subject" validate:"required,max=60"`
	Topic   string `query:"topic" validate:"max=200"`
}

func (s *Server) searchBank(c echo.Context) error {
	var q bankQuery
	if err := bind(c, &q); err != nil {
		return err
	}
	bq, err := s.svc.Questions.Search(c.Request().Context(), q.Subject, q.Topic)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, bq)
}

func (s *Server) checkAnswer(c echo.Context) error {
	var in questionpool.AnswerInput
	if err := bind(c, &in); err != nil {
		return err
	}
	res, err := s.svc.Questions.CheckAnswer(c.Request().Context(), userID(c), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

func (s *Server) listSaved(c echo.Context) error {
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return domain.NewValidationError("limit", "must be a non-negative integer")
		}
		limit = n
	}
	saved, err := s.svc.Questions.Saved(c.Request().Context(), userID(c), limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"saved": saved})
}

func (s *Server) saveQuestion(c echo.Context) error {
	var in questionpool.SaveInput
	if err := bind(c, &in); err != nil {
		return err
	}
	saved, err := s.svc.Questions.Save(c.Request().Context(), userID(c), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, saved)
}
