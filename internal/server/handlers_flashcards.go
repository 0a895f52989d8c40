package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/estudai/estudai/internal/spacedrep"
)

type qualityRequest struct {
	Quality string `json:"quality" validate:"required,oneof=hard medium easy"`
}

func (r qualityRequest) parse() (spacedrep.Quality, error) {
	return spacedrep.ParseQuality(r.Quality)
}

func (s *Server) listDecks(c echo.Context) error {
	decks, err := s.svc.Flashcards.Decks(c.Request().Context(), userID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"decks": decks})
}

func (s *Server) createFlashcard(c echo.Context) error {
	var in spacedrep.NewCard
	if err := bind(c, &in); err != nil {
		return err
	}
	card, err := s.svc.Flashcards.Create(c.Request().Context(), userID(c), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, card)
}

func (s *Server) generateFlashcards(c echo.Context) error {
	var in spacedrep.GenerateInput
	if err := bind(c, &in); err != nil {
		return err
	}
	cards, err := s.svc.Flashcards.Generate(c.Request().Context(), userID(c), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, map[string]any{"flashcards": cards})
}

func (s *Server) reviewFlashcard(c echo.Context) error {
	var in qualityRequest
	if err := bind(c, &in); err != nil {
		return err
	}
	q, err := in.parse()
	if err != nil {
		return err
	}
	out, err := s.svc.Flashcards.RecordAnswer(c.Request().Context(), userID(c), c.Param("id"), q)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

type startSessionRequest struct {
	Subject string `json:"subject" validate:"required,max=60"`
}

func (s *Server) startSession(c echo.Context) error {
	var in startSessionRequest
	if err := bind(c, &in); err != nil {
		return err
	}
	v, err := s.svc.Flashcards.StartSession(c.Request().Context(), userID(c), in.Subject)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, v)
}

func (s *Server) getSession(c echo.Context) error {
	v, err := s.svc.Flashcards.Session(c.Request().Context(), userID(c), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, v)
}

func (s *Server) answerSession(c echo.Context) error {
	var in qualityRequest
	if err := bind(c, &in); err != nil {
		return err
	}
	q, err := in.parse()
	if err != nil {
		return err
	}
	res, err := s.svc.Flashcards.Answer(c.Request().Context(), userID(c), c.Param("id"), q)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}
