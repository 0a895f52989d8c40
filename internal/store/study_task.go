package store

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/estudai/estudai/internal/caldate"
)

const studyTaskColumns = "id, user_id, subject, topic, task_date, duration_minutes, is_done"

type studyTaskRepo struct {
	db *sqlx.DB
	sb sq.StatementBuilderType
}

func (r *studyTaskRepo) ReplaceRange(ctx context.Context, userID string, from, to caldate.Date, tasks []StudyTask) error {
	del, delArgs, err := r.sb.Delete("study_tasks").
		Where(sq.Eq{"user_id": userID}).
		Where(sq.GtOrEq{"task_date": from}).
		Where(sq.LtOrEq{"task_date": to}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete tasks: %w", err)
	}

	var ins string
	var insArgs []any
	if len(tasks) > 0 {
		b := r.sb.Insert("study_tasks").
			Columns("id", "user_id", "subject", "topic", "task_date", "duration_minutes", "is_done")
		for _, t := range tasks {
			b = b.Values(t.ID, userID, t.Subject, t.Topic, t.Date, t.DurationMinutes, t.IsDone)
		}
		ins, insArgs, err = b.ToSql()
		if err != nil {
			return fmt.Errorf("build insert tasks: %w", err)
		}
	}

	return runInTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, del, delArgs...); err != nil {
			return fmt.Errorf("delete tasks in range: %w", err)
		}
		if ins == "" {
			return nil
		}
		if _, err := tx.ExecContext(ctx, ins, insArgs...); err != nil {
			return fmt.Errorf("insert tasks: %w", err)
		}
		return nil
	})
}

func (r *studyTaskRepo) List(ctx context.Context, userID string, from, to caldate.Date) ([]StudyTask, error) {
	query, args, err := r.sb.Select(studyTaskColumns).
		From("study_tasks").
		Where(sq.Eq{"user_id": userID}).
		Where(sq.GtOrEq{"task_date": from}).
		Where(sq.LtOrEq{"task_date": to}).
		OrderBy("task_date ASC", "subject ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list tasks: %w", err)
	}

	var tasks []StudyTask
	if err := r.db.SelectContext(ctx, &tasks, query, args...); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

func (r *studyTaskRepo) Toggle(ctx context.Context, userID, id string) (*StudyTask, error) {
	query, args, err := r.sb.Update("study_tasks").
		Set("is_done", sq.Expr("NOT is_done")).
		Where(sq.Eq{"user_id": userID, "id": id}).
		Suffix("RETURNING " + studyTaskColumns).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build toggle task: %w", err)
	}

	var t StudyTask
	if err := r.db.GetContext(ctx, &t, query, args...); err != nil {
		return nil, mapNotFound(err, "toggle task")
	}
	return &t, nil
}
