package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	// PostgreSQL driver registered as "pgx".
	_ "github.com/jackc/pgx/v5/stdlib"
	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// Dialect names a supported database backend.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// Store owns the database handle and hands out repositories.
type Store struct {
	db      *sqlx.DB
	dialect Dialect
	sb      sq.StatementBuilderType
}

// Open connects to the database described by dialect and dsn. It does not
// run migrations; call Migrate for that.
func Open(ctx context.Context, dialect Dialect, dsn string) (*Store, error) {
	var driver string
	switch dialect {
	case DialectSQLite:
		driver = "sqlite"
		dsn = withSQLiteTimeFormat(dsn)
	case DialectPostgres:
		driver = "pgx"
	default:
		return nil, fmt.Errorf("unsupported database driver %q", dialect)
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if dialect == DialectSQLite {
		// A single connection serializes writers and keeps in-memory
		// databases alive for the lifetime of the Store.
		db.SetMaxOpenConns(1)
		if err := applyPragmas(ctx, db.DB); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply pragmas: %w", err)
		}
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return newStore(db, dialect), nil
}

// New wraps an existing handle. Used by tests that bring their own
// connection (sqlmock, containers).
func New(db *sqlx.DB, dialect Dialect) *Store {
	return newStore(db, dialect)
}

func newStore(db *sqlx.DB, dialect Dialect) *Store {
	sb := sq.StatementBuilder.PlaceholderFormat(sq.Question)
	if dialect == DialectPostgres {
		sb = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	}
	return &Store{db: db, dialect: dialect, sb: sb}
}

// DB returns the underlying handle for raw queries.
func (s *Store) DB() *sqlx.DB {
	return s.db
}

// Dialect reports the backend in use.
func (s *Store) Dialect() Dialect {
	return s.dialect
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Profiles() ProfileRepo {
	return &profileRepo{db: s.db, sb: s.sb}
}

func (s *Store) Flashcards() FlashcardRepo {
	return &flashcardRepo{db: s.db, sb: s.sb}
}

func (s *Store) StudyTasks() StudyTaskRepo {
	return &studyTaskRepo{db: s.db, sb: s.sb}
}

func (s *Store) QuestionPool() QuestionPoolRepo {
	return &questionPoolRepo{db: s.db, sb: s.sb}
}

func (s *Store) SavedQuestions() SavedQuestionRepo {
	return &savedQuestionRepo{db: s.db, sb: s.sb}
}

func (s *Store) Essays() EssayRepo {
	return &essayRepo{db: s.db, sb: s.sb}
}

func (s *Store) EventRepo() EventRepo {
	return &eventRepo{db: s.db, sb: s.sb}
}

// withSQLiteTimeFormat makes the driver write timestamps in SQLite's own
// sortable layout.
func withSQLiteTimeFormat(dsn string) string {
	if strings.Contains(dsn, "_time_format=") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_time_format=sqlite"
}

// applyPragmas configures SQLite for a single-node server.
func applyPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

// DefaultDBPath resolves the SQLite database file path in priority order:
// 1. ESTUDAI_DB environment variable
// 2. $XDG_DATA_HOME/estudai/estudai.db
// 3. ~/.local/share/estudai/estudai.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("ESTUDAI_DB"); p != "" {
		return p, EnsureDir(p)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "estudai", "estudai.db")
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}
