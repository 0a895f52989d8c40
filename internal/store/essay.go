package store

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

const essayColumns = "id, user_id, theme, content, score, feedback, created_at"

type essayRepo struct {
	db *sqlx.DB
	sb sq.StatementBuilderType
}

func (r *essayRepo) InsertAndTrim(ctx context.Context, e *Essay, keep int) error {
	ins, insArgs, err := r.sb.Insert("essays").
		Columns("id", "user_id", "theme", "content", "score", "feedback", "created_at").
		Values(e.ID, e.UserID, e.Theme, e.Content, e.Score, e.Feedback, e.CreatedAt.UTC()).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert essay: %w", err)
	}

	trim, trimArgs, err := r.sb.Delete("essays").
		Where(sq.Eq{"user_id": e.UserID}).
		Where(sq.Expr(
			"id NOT IN (SELECT id FROM essays WHERE user_id = ? ORDER BY created_at DESC LIMIT ?)",
			e.UserID, keep,
		)).
		ToSql()
	if err != nil {
		return fmt.Errorf("build trim essays: %w", err)
	}

	return runInTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, ins, insArgs...); err != nil {
			return fmt.Errorf("insert essay: %w", err)
		}
		if _, err := tx.ExecContext(ctx, trim, trimArgs...); err != nil {
			return fmt.Errorf("trim essays: %w", err)
		}
		return nil
	})
}

func (r *essayRepo) ListRecent(ctx context.Context, userID string, limit int) ([]Essay, error) {
	b := r.sb.Select(essayColumns).
		From("essays").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("created_at DESC")
	if limit > 0 {
		b = b.Limit(uint64(limit))
	}
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list essays: %w", err)
	}

	var out []Essay
	if err := r.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, fmt.Errorf("list essays: %w", err)
	}
	return out, nil
}
