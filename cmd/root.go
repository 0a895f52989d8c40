package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/estudai/estudai/internal/config"
	"github.com/estudai/estudai/internal/store"
)

var rootCmd = &cobra.Command{
	Use:           "estudai",
	Short:         "Study assistant API for ENEM and vestibular prep",
	Long:          "estudai serves flashcards, AI practice questions, essay grading and study plans over HTTP.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to config.yaml (default ./config.yaml or ~/.config/estudai/config.yaml)")
	rootCmd.PersistentFlags().String("db", "", "Database DSN or SQLite file path (overrides database.dsn)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(tokenCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads configuration, applying the --db flag on top.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if dsn, _ := cmd.Flags().GetString("db"); dsn != "" {
		cfg.Database.DSN = dsn
	}
	return cfg, nil
}

// openStore connects to the configured database. An empty SQLite DSN
// resolves to the default data directory.
func openStore(ctx context.Context, cfg *config.Config) (*store.Store, error) {
	dsn := cfg.Database.DSN
	dialect := store.Dialect(cfg.Database.Driver)
	if dialect == store.DialectSQLite {
		if dsn == "" {
			p, err := store.DefaultDBPath()
			if err != nil {
				return nil, fmt.Errorf("resolve database path: %w", err)
			}
			dsn = p
		} else if err := store.EnsureDir(dsn); err != nil {
			return nil, fmt.Errorf("create database dir: %w", err)
		}
	}
	s, err := store.Open(ctx, dialect, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return s, nil
}
