package server

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/estudai/estudai/internal/caldate"
	"github.com/estudai/estudai/internal/domain"
	"github.com/estudai/estudai/internal/essay"
	"github.com/estudai/estudai/internal/focus"
	"github.com/estudai/estudai/internal/planner"
	"github.com/estudai/estudai/internal/tutor"
)

func (s *Server) listEssays(c echo.Context) error {
	hist, err := s.svc.Essays.History(c.Request().Context(), userID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"essays": hist})
}

func (s *Server) submitEssay(c echo.Context) error {
	var in essay.SubmitInput
	if err := bind(c, &in); err != nil {
		return err
	}
	res, err := s.svc.Essays.Submit(c.Request().Context(), userID(c), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, res)
}

// listTasks returns tasks in [from, to]. Both default to the current week.
func (s *Server) listTasks(c echo.Context) error {
	today := caldate.Today(time.Now(), s.loc)
	from, err := dateParam(c, "from", today)
	if err != nil {
		return err
	}
	to, err := dateParam(c, "to", from.AddDays(planner.DefaultDays))
	if err != nil {
		return err
	}
	tasks, err := s.svc.Planner.Tasks(c.Request().Context(), userID(c), from, to)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"from": from, "to": to, "tasks": tasks})
}

func dateParam(c echo.Context, name string, def caldate.Date) (caldate.Date, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return def, nil
	}
	d, err := caldate.Parse(raw)
	if err != nil {
		return caldate.Date{}, domain.NewValidationError(name, "must be a date in YYYY-MM-DD format")
	}
	return d, nil
}

func (s *Server) generatePlan(c echo.Context) error {
	var in planner.PlanInput
	if err := bind(c, &in); err != nil {
		return err
	}
	plan, err := s.svc.Planner.Generate(c.Request().Context(), userID(c), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, plan)
}

func (s *Server) toggleTask(c echo.Context) error {
	task, err := s.svc.Planner.Toggle(c.Request().Context(), userID(c), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, task)
}

type focusRequest struct {
	Phase string `json:"phase" validate:"required,oneof=focus break"`
}

func (s *Server) completeFocus(c echo.Context) error {
	var in focusRequest
	if err := bind(c, &in); err != nil {
		return err
	}
	res, err := s.svc.Focus.Complete(c.Request().Context(), userID(c), focus.Phase(in.Phase))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

func (s *Server) askTutor(c echo.Context) error {
	var in tutor.AskInput
	if err := bind(c, &in); err != nil {
		return err
	}
	answer, err := s.svc.Tutor.Ask(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"answer": answer})
}
