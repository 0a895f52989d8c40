// Package app wires the store, AI provider and services into the API.
package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/estudai/estudai/internal/essay"
	"github.com/estudai/estudai/internal/events"
	"github.com/estudai/estudai/internal/focus"
	"github.com/estudai/estudai/internal/llm"
	"github.com/estudai/estudai/internal/planner"
	"github.com/estudai/estudai/internal/problemgen"
	"github.com/estudai/estudai/internal/profile"
	"github.com/estudai/estudai/internal/questionpool"
	"github.com/estudai/estudai/internal/server"
	"github.com/estudai/estudai/internal/spacedrep"
	"github.com/estudai/estudai/internal/store"
	"github.com/estudai/estudai/internal/streak"
	"github.com/estudai/estudai/internal/tutor"
)

// Options holds the dependencies for building the App.
type Options struct {
	Store *store.Store

	// Provider is the wrapped AI provider. Nil disables AI features: the
	// planner falls back to its fixed plan and other AI calls fail.
	Provider llm.Provider

	Location *time.Location
	Logger   *slog.Logger

	ProfileCacheSize int
	ProfileCacheTTL  time.Duration
	MaxSessions      int
	SessionTTL       time.Duration
}

// App owns the long-lived services.
type App struct {
	Bus      *events.Bus
	Services server.Services

	unsubscribe []func()
}

// New builds every service over the shared store and event bus.
func New(opts Options) *App {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	logger := opts.Logger
	st := opts.Store

	bus := events.NewBus(logger)
	profiles := profile.New(st.Profiles(), bus, profile.Options{
		CacheSize: opts.ProfileCacheSize,
		CacheTTL:  opts.ProfileCacheTTL,
		Location:  opts.Location,
		Logger:    logger.With("component", "profile"),
	})
	tracker := streak.NewTracker(st.Profiles(), bus, opts.Location, logger.With("component", "streak"))

	var gen problemgen.Generator
	if opts.Provider != nil {
		gen = problemgen.New(opts.Provider, problemgen.DefaultConfig())
	} else {
		gen = unavailableGenerator{}
	}

	levelUps := bus.XPAwarded.Subscribe(func(ctx context.Context, ev events.XPAwarded) {
		if ev.LeveledUp {
			logger.InfoContext(ctx, "level up", "user_id", ev.UserID, "level", ev.Level, "reason", ev.Reason)
		}
	})

	flashcards := spacedrep.NewService(st.Flashcards(), tracker, profiles, opts.Provider, spacedrep.Config{
		MaxSessions: opts.MaxSessions,
		SessionTTL:  opts.SessionTTL,
		Location:    opts.Location,
		Logger:      logger.With("component", "flashcards"),
	})
	questions := questionpool.NewGate(st.QuestionPool(), st.SavedQuestions(), gen, tracker, profiles,
		logger.With("component", "questions"))

	return &App{
		Bus:         bus,
		unsubscribe: []func(){levelUps},
		Services: server.Services{
			Profiles:   profiles,
			Streak:     tracker,
			Flashcards: flashcards,
			Questions:  questions,
			Essays:     essay.NewGrader(st.Essays(), tracker, opts.Provider, logger.With("component", "essay")),
			Planner:    planner.New(st.StudyTasks(), profiles, opts.Provider, opts.Location, logger.With("component", "planner")),
			Focus:      focus.NewTimer(profiles, logger.With("component", "focus")),
			Tutor:      tutor.New(opts.Provider),
		},
	}
}

// Close releases event subscriptions.
func (a *App) Close() {
	for _, fn := range a.unsubscribe {
		fn()
	}
	a.Services.Profiles.Close()
}

// unavailableGenerator stands in when no provider is configured.
type unavailableGenerator struct{}

func (unavailableGenerator) Generate(context.Context, problemgen.GenerateInput) ([]problemgen.Question, error) {
	return nil, &llm.ErrProviderUnavailable{}
}
