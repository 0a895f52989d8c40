package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

const llmEventColumns = "id, created_at, provider, model, purpose, user_id, input_tokens, output_tokens, " +
	"latency_ms, success, error_message, request_body, response_body"

// eventRepo implements EventRepo over the llm_events table.
type eventRepo struct {
	db *sqlx.DB
	sb sq.StatementBuilderType
}

func (r *eventRepo) AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error {
	query, args, err := r.sb.Insert("llm_events").
		Columns("created_at", "provider", "model", "purpose", "user_id", "input_tokens", "output_tokens",
			"latency_ms", "success", "error_message", "request_body", "response_body").
		Values(time.Now().UTC(), data.Provider, data.Model, data.Purpose, data.UserID, data.InputTokens, data.OutputTokens,
			data.LatencyMs, data.Success, data.ErrorMessage, data.RequestBody, data.ResponseBody).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert LLM event: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save LLM request event: %w", err)
	}
	return nil
}

func (r *eventRepo) QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMRequestEventRecord, error) {
	b := r.sb.Select(llmEventColumns).
		From("llm_events").
		OrderBy("id DESC")
	if opts.Purpose != "" {
		b = b.Where(sq.Eq{"purpose": opts.Purpose})
	}
	if opts.UserID != "" {
		b = b.Where(sq.Eq{"user_id": opts.UserID})
	}
	if opts.Limit > 0 {
		b = b.Limit(uint64(opts.Limit))
	}

	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build LLM events query: %w", err)
	}

	var out []LLMRequestEventRecord
	if err := r.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, fmt.Errorf("query LLM events: %w", err)
	}
	return out, nil
}

func (r *eventRepo) GetLLMEvent(ctx context.Context, id int) (*LLMRequestEventRecord, error) {
	query, args, err := r.sb.Select(llmEventColumns).
		From("llm_events").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build LLM event query: %w", err)
	}

	var e LLMRequestEventRecord
	if err := r.db.GetContext(ctx, &e, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get LLM event: %w", err)
	}
	return &e, nil
}

func (r *eventRepo) LLMUsageByPurpose(ctx context.Context) ([]LLMUsageStats, error) {
	query, args, err := r.sb.Select(
		"purpose",
		"COUNT(*) AS calls",
		"COALESCE(SUM(input_tokens), 0) AS input_tokens",
		"COALESCE(SUM(output_tokens), 0) AS output_tokens",
		"CAST(COALESCE(AVG(latency_ms), 0) AS BIGINT) AS avg_latency_ms",
	).
		From("llm_events").
		GroupBy("purpose").
		OrderBy("calls DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build usage by purpose: %w", err)
	}

	var out []LLMUsageStats
	if err := r.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, fmt.Errorf("query usage by purpose: %w", err)
	}
	return out, nil
}

func (r *eventRepo) LLMUsageByModel(ctx context.Context) ([]LLMModelUsage, error) {
	query, args, err := r.sb.Select(
		"model",
		"COUNT(*) AS calls",
		"COALESCE(SUM(input_tokens), 0) AS input_tokens",
		"COALESCE(SUM(output_tokens), 0) AS output_tokens",
	).
		From("llm_events").
		Where(sq.Eq{"success": true}).
		GroupBy("model").
		OrderBy("calls DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build usage by model: %w", err)
	}

	var out []LLMModelUsage
	if err := r.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, fmt.Errorf("query usage by model: %w", err)
	}
	return out, nil
}
