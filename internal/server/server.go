// Package server exposes the study services over an HTTP JSON API.
package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/estudai/estudai/internal/essay"
	"github.com/estudai/estudai/internal/focus"
	"github.com/estudai/estudai/internal/planner"
	"github.com/estudai/estudai/internal/profile"
	"github.com/estudai/estudai/internal/questionpool"
	"github.com/estudai/estudai/internal/spacedrep"
	"github.com/estudai/estudai/internal/streak"
	"github.com/estudai/estudai/internal/tutor"
)

// Services are the components the API dispatches to.
type Services struct {
	Profiles   *profile.Service
	Streak     *streak.Tracker
	Flashcards *spacedrep.Service
	Questions  *questionpool.Gate
	Essays     *essay.Grader
	Planner    *planner.Planner
	Focus      *focus.Timer
	Tutor      *tutor.Tutor
}

// Config configures a Server.
type Config struct {
	JWTSecret string
	Issuer    string

	// AIRequestsPerMinute and AIBurst bound each user's AI-backed calls.
	AIRequestsPerMinute float64
	AIBurst             int

	Location *time.Location
	Logger   *slog.Logger
}

// Server routes HTTP requests to the services.
type Server struct {
	echo   *echo.Echo
	svc    Services
	tokens *TokenVerifier
	ai     *aiGuard
	loc    *time.Location
	logger *slog.Logger
}

// New builds the API.
func New(svc Services, cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = newRequestValidator()

	s := &Server{
		echo:   e,
		svc:    svc,
		tokens: NewTokenVerifier(cfg.JWTSecret, cfg.Issuer),
		ai:     newAIGuard(cfg.AIRequestsPerMinute, cfg.AIBurst),
		loc:    cfg.Location,
		logger: cfg.Logger,
	}
	e.HTTPErrorHandler = s.handleError
	if svc.Questions != nil {
		svc.Questions.SetThrottle(s.ai)
	}

	e.Use(middleware.RequestID())
	e.Use(s.accessLog())
	e.Use(middleware.Recover())

	s.routes()
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) routes() {
	s.echo.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	api := s.echo.Group("/api/v1", s.authenticate, s.provision)
	limited := s.ai.middleware

	api.GET("/profile", s.getProfile)
	api.PUT("/profile", s.updateProfile)
	api.POST("/profile/upgrade", s.upgradeProfile)
	api.POST("/streak", s.updateStreak)

	api.GET("/flashcards/decks", s.listDecks)
	api.POST("/flashcards", s.createFlashcard)
	api.POST("/flashcards/generate", s.generateFlashcards, limited)
	api.POST("/flashcards/:id/review", s.reviewFlashcard)

	api.POST("/study-sessions", s.startSession)
	api.GET("/study-sessions/:id", s.getSession)
	api.POST("/study-sessions/:id/answers", s.answerSession)

	api.GET("/questions", s.getQuestions)
	api.GET("/questions/bank", s.searchBank)
	api.POST("/questions/answers", s.checkAnswer)
	api.GET("/questions/saved", s.listSaved)
	api.POST("/questions/saved", s.saveQuestion)

	api.GET("/essays", s.listEssays)
	api.POST("/essays", s.submitEssay, limited)

	api.GET("/planner/tasks", s.listTasks)
	api.POST("/planner/plan", s.generatePlan, limited)
	api.POST("/planner/tasks/:id/toggle", s.toggleTask)

	api.POST("/focus/complete", s.completeFocus)
	api.POST("/tutor/ask", s.askTutor, limited)
}

// accessLog logs one line per request with its id and user.
func (s *Server) accessLog() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURIPath:   true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("path", v.URIPath),
				slog.Int("status", v.Status),
				slog.Duration("duration", v.Latency),
				slog.String("request_id", v.RequestID),
			}
			if id := userID(c); id != "" {
				attrs = append(attrs, slog.String("user_id", id))
			}
			level := slog.LevelInfo
			if v.Status >= http.StatusInternalServerError {
				level = slog.LevelError
				if v.Error != nil {
					attrs = append(attrs, slog.String("error", v.Error.Error()))
				}
			}
			s.logger.LogAttrs(c.Request().Context(), level, "http.request", attrs...)
			return nil
		},
	})
}
