package store

import (
	"context"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

const pooledQuestionColumns = "id, created_by, subject, topic, difficulty, content, is_public, created_at"

type questionPoolRepo struct {
	db *sqlx.DB
	sb sq.StatementBuilderType
}

func (r *questionPoolRepo) Find(ctx context.Context, f PoolFilter) ([]PooledQuestion, error) {
	b := r.sb.Select(pooledQuestionColumns).
		From("questions_pool").
		Where(sq.Eq{
			"subject":    f.Subject,
			"topic":      f.Topic,
			"difficulty": f.Difficulty,
			"is_public":  true,
		})
	if f.Limit > 0 {
		b = b.Limit(uint64(f.Limit))
	}
	return r.selectMany(ctx, "find pooled questions", b)
}

func (r *questionPoolRepo) Search(ctx context.Context, subject, topic string, limit int) ([]PooledQuestion, error) {
	b := r.sb.Select(pooledQuestionColumns).
		From("questions_pool").
		Where(sq.Eq{"subject": subject, "is_public": true})
	if topic = strings.TrimSpace(topic); topic != "" {
		b = b.Where(sq.Expr("LOWER(topic) LIKE ?", "%"+strings.ToLower(topic)+"%"))
	}
	if limit > 0 {
		b = b.Limit(uint64(limit))
	}
	return r.selectMany(ctx, "search pooled questions", b)
}

func (r *questionPoolRepo) Get(ctx context.Context, id string) (*PooledQuestion, error) {
	query, args, err := r.sb.Select(pooledQuestionColumns).
		From("questions_pool").
		Where(sq.Eq{"id": id, "is_public": true}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build pooled question query: %w", err)
	}

	var q PooledQuestion
	if err := r.db.GetContext(ctx, &q, query, args...); err != nil {
		return nil, mapNotFound(err, "get pooled question")
	}
	return &q, nil
}

func (r *questionPoolRepo) Insert(ctx context.Context, q *PooledQuestion) error {
	query, args, err := r.sb.Insert("questions_pool").
		Columns("id", "created_by", "subject", "topic", "difficulty", "content", "is_public", "created_at").
		Values(q.ID, q.CreatedBy, q.Subject, q.Topic, q.Difficulty, q.Content, q.IsPublic, q.CreatedAt.UTC()).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert pooled question: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert pooled question: %w", err)
	}
	return nil
}

func (r *questionPoolRepo) selectMany(ctx context.Context, op string, b sq.SelectBuilder) ([]PooledQuestion, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build %s: %w", op, err)
	}
	var out []PooledQuestion
	if err := r.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

const savedQuestionColumns = "id, user_id, subject, topic, content, is_correct, created_at"

type savedQuestionRepo struct {
	db *sqlx.DB
	sb sq.StatementBuilderType
}

func (r *savedQuestionRepo) Save(ctx context.Context, q *SavedQuestion) error {
	query, args, err := r.sb.Insert("saved_questions").
		Columns("id", "user_id", "subject", "topic", "content", "is_correct", "created_at").
		Values(q.ID, q.UserID, q.Subject, q.Topic, q.Content, q.IsCorrect, q.CreatedAt.UTC()).
		ToSql()
	if err != nil {
		return fmt.Errorf("build save question: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save question: %w", err)
	}
	return nil
}

func (r *savedQuestionRepo) ListRecent(ctx context.Context, userID string, limit int) ([]SavedQuestion, error) {
	b := r.sb.Select(savedQuestionColumns).
		From("saved_questions").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("created_at DESC")
	if limit > 0 {
		b = b.Limit(uint64(limit))
	}
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list saved questions: %w", err)
	}

	var out []SavedQuestion
	if err := r.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, fmt.Errorf("list saved questions: %w", err)
	}
	return out, nil
}
