package store

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/estudai/estudai/internal/caldate"
	"github.com/estudai/estudai/internal/domain"
)

const flashcardColumns = "id, user_id, front, back, subject, interval_days, next_review, created_at"

type flashcardRepo struct {
	db *sqlx.DB
	sb sq.StatementBuilderType
}

func (r *flashcardRepo) Create(ctx context.Context, cards ...Flashcard) error {
	if len(cards) == 0 {
		return nil
	}

	ins := r.sb.Insert("flashcards").
		Columns("id", "user_id", "front", "back", "subject", "interval_days", "next_review", "created_at")
	for _, c := range cards {
		ins = ins.Values(c.ID, c.UserID, c.Front, c.Back, c.Subject, c.Interval, c.NextReview, c.CreatedAt.UTC())
	}

	query, args, err := ins.ToSql()
	if err != nil {
		return fmt.Errorf("build insert flashcards: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert flashcards: %w", err)
	}
	return nil
}

func (r *flashcardRepo) Get(ctx context.Context, userID, id string) (*Flashcard, error) {
	query, args, err := r.sb.Select(flashcardColumns).
		From("flashcards").
		Where(sq.Eq{"user_id": userID, "id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build flashcard query: %w", err)
	}

	var c Flashcard
	if err := r.db.GetContext(ctx, &c, query, args...); err != nil {
		return nil, mapNotFound(err, "get flashcard")
	}
	return &c, nil
}

func (r *flashcardRepo) Due(ctx context.Context, userID, subject string, today caldate.Date) ([]Flashcard, error) {
	query, args, err := r.sb.Select(flashcardColumns).
		From("flashcards").
		Where(sq.Eq{"user_id": userID, "subject": subject}).
		Where(sq.LtOrEq{"next_review": today}).
		OrderBy("next_review ASC", "created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build due query: %w", err)
	}

	var cards []Flashcard
	if err := r.db.SelectContext(ctx, &cards, query, args...); err != nil {
		return nil, fmt.Errorf("query due flashcards: %w", err)
	}
	return cards, nil
}

func (r *flashcardRepo) Decks(ctx context.Context, userID string, today caldate.Date) ([]Deck, error) {
	query, args, err := r.sb.Select("subject", "COUNT(*) AS total").
		Column(sq.Expr("SUM(CASE WHEN next_review <= ? THEN 1 ELSE 0 END) AS due", today)).
		From("flashcards").
		Where(sq.Eq{"user_id": userID}).
		GroupBy("subject").
		OrderBy("subject ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build decks query: %w", err)
	}

	var decks []Deck
	if err := r.db.SelectContext(ctx, &decks, query, args...); err != nil {
		return nil, fmt.Errorf("query decks: %w", err)
	}
	return decks, nil
}

func (r *flashcardRepo) Reschedule(ctx context.Context, userID, id string, interval int, next caldate.Date) error {
	query, args, err := r.sb.Update("flashcards").
		Set("interval_days", interval).
		Set("next_review", next).
		Where(sq.Eq{"user_id": userID, "id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build reschedule: %w", err)
	}
	return execOne(ctx, r.db, "reschedule flashcard", query, args)
}

func (r *flashcardRepo) Delete(ctx context.Context, userID, id string) error {
	query, args, err := r.sb.Delete("flashcards").
		Where(sq.Eq{"user_id": userID, "id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete flashcard: %w", err)
	}
	return execOne(ctx, r.db, "delete flashcard", query, args)
}

// execOne runs a statement expected to touch exactly one row.
func execOne(ctx context.Context, db sqlx.ExecerContext, op, query string, args []any) error {
	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	}
	return nil
}
