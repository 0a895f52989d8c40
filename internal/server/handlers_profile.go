package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/estudai/estudai/internal/profile"
)

func (s *Server) getProfile(c echo.Context) error {
	v, err := s.svc.Profiles.Get(c.Request().Context(), userID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, v)
}

func (s *Server) updateProfile(c echo.Context) error {
	var in profile.Update
	if err := bind(c, &in); err != nil {
		return err
	}
	v, err := s.svc.Profiles.Update(c.Request().Context(), userID(c), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, v)
}

func (s *Server) upgradeProfile(c echo.Context) error {
	ctx := c.Request().Context()
	if err := s.svc.Profiles.Upgrade(ctx, userID(c)); err != nil {
		return err
	}
	v, err := s.svc.Profiles.Get(ctx, userID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, v)
}

func (s *Server) updateStreak(c echo.Context) error {
	n, err := s.svc.Streak.Update(c.Request().Context(), userID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]int{"streak_count": n})
}
