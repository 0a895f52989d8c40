package store

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/estudai/estudai/internal/caldate"
)

const profileColumns = "id, full_name, username, avatar_url, target_course, current_year, " +
	"streak_count, last_activity_date, is_pro, xp, level, created_at, updated_at"

type profileRepo struct {
	db *sqlx.DB
	sb sq.StatementBuilderType
}

func (r *profileRepo) Get(ctx context.Context, id string) (*Profile, error) {
	query, args, err := r.sb.Select(profileColumns).
		From("profiles").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build profile query: %w", err)
	}

	var p Profile
	if err := r.db.GetContext(ctx, &p, query, args...); err != nil {
		return nil, mapNotFound(err, "get profile")
	}
	return &p, nil
}

func (r *profileRepo) Ensure(ctx context.Context, id string, now time.Time) error {
	now = now.UTC()
	query, args, err := r.sb.Insert("profiles").
		Columns("id", "created_at", "updated_at").
		Values(id, now, now).
		Suffix("ON CONFLICT (id) DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("build ensure profile: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("ensure profile: %w", err)
	}
	return nil
}

func (r *profileRepo) Upsert(ctx context.Context, id string, f ProfileFields, now time.Time) (*Profile, error) {
	now = now.UTC()
	query, args, err := r.sb.Insert("profiles").
		Columns("id", "full_name", "username", "avatar_url", "target_course", "current_year", "created_at", "updated_at").
		Values(id, f.FullName, f.Username, f.AvatarURL, f.TargetCourse, f.CurrentYear, now, now).
		Suffix(`ON CONFLICT (id) DO UPDATE SET
			full_name = excluded.full_name,
			username = excluded.username,
			avatar_url = excluded.avatar_url,
			target_course = excluded.target_course,
			current_year = excluded.current_year,
			updated_at = excluded.updated_at
		RETURNING ` + profileColumns).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build upsert profile: %w", err)
	}

	var p Profile
	if err := r.db.GetContext(ctx, &p, query, args...); err != nil {
		return nil, fmt.Errorf("upsert profile: %w", err)
	}
	return &p, nil
}

func (r *profileRepo) SetStreak(ctx context.Context, id string, count int, last *caldate.Date) error {
	return r.update(ctx, "set streak", r.sb.Update("profiles").
		Set("streak_count", count).
		Set("last_activity_date", last).
		Where(sq.Eq{"id": id}))
}

func (r *profileRepo) SetPro(ctx context.Context, id string, pro bool) error {
	return r.update(ctx, "set pro", r.sb.Update("profiles").
		Set("is_pro", pro).
		Where(sq.Eq{"id": id}))
}

func (r *profileRepo) IncrementXP(ctx context.Context, id string, amount, xpPerLevel int) (int, int, error) {
	query, args, err := r.sb.Update("profiles").
		Set("xp", sq.Expr("xp + ?", amount)).
		Set("level", sq.Expr("(xp + ?) / ? + 1", amount, xpPerLevel)).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING xp, level").
		ToSql()
	if err != nil {
		return 0, 0, fmt.Errorf("build increment xp: %w", err)
	}

	var xp, level int
	if err := r.db.QueryRowxContext(ctx, query, args...).Scan(&xp, &level); err != nil {
		return 0, 0, mapNotFound(err, "increment xp")
	}
	return xp, level, nil
}

func (r *profileRepo) update(ctx context.Context, op string, b sq.UpdateBuilder) error {
	query, args, err := b.ToSql()
	if err != nil {
		return fmt.Errorf("build %s: %w", op, err)
	}
	return execOne(ctx, r.db, op, query, args)
}
