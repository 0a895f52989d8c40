package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/estudai/estudai/internal/app"
	"github.com/estudai/estudai/internal/caldate"
	"github.com/estudai/estudai/internal/llm"
	"github.com/estudai/estudai/internal/logging"
	"github.com/estudai/estudai/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration:\n%w", err)
		}
		logger := logging.New(cfg.Log)

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := openStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer st.Close()
		if err := st.Migrate(ctx); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}

		provider, err := llm.NewProvider(ctx, cfg.LLM, st.EventRepo(), logger.With("component", "llm"))
		if err != nil {
			return fmt.Errorf("LLM provider: %w", err)
		}

		loc := caldate.ParseLocation(cfg.Study.Timezone)
		a := app.New(app.Options{
			Store:            st,
			Provider:         provider,
			Location:         loc,
			Logger:           logger,
			ProfileCacheSize: cfg.Cache.ProfileSize,
			ProfileCacheTTL:  cfg.Cache.ProfileTTL,
			MaxSessions:      cfg.Cache.MaxSessions,
			SessionTTL:       cfg.Cache.SessionTTL,
		})
		defer a.Close()

		api := server.New(a.Services, server.Config{
			JWTSecret:           cfg.Auth.JWTSecret,
			Issuer:              cfg.Auth.Issuer,
			AIRequestsPerMinute: cfg.Limits.AIRequestsPerMinute,
			AIBurst:             cfg.Limits.AIBurst,
			Location:            loc,
			Logger:              logger.With("component", "http"),
		})

		httpSrv := &http.Server{
			Addr:              cfg.Server.Addr,
			Handler:           api.Handler(),
			ReadTimeout:       cfg.Server.ReadTimeout,
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      cfg.Server.WriteTimeout,
		}

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			logger.Info("http server listening",
				"addr", cfg.Server.Addr,
				"database", cfg.Database.Driver,
				"llm_provider", cfg.LLM.Provider,
				"timezone", loc.String(),
			)
			if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("http server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()
			return httpSrv.Shutdown(shutdownCtx)
		})
		return g.Wait()
	},
}
