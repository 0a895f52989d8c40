package llm

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/estudai/estudai/internal/store"
)

// LoggingProvider writes one llm_events row and one log line per attempt.
// The row keeps the full prompt and answer for `estudai llm view`.
type LoggingProvider struct {
	inner    Provider
	provider string
	events   store.EventRepo
	logger   *slog.Logger
}

// WithLogging wraps p. events may be nil, in which case only the log line
// is written.
func WithLogging(p Provider, provider string, events store.EventRepo, logger *slog.Logger) Provider {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingProvider{inner: p, provider: provider, events: events, logger: logger}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	resp, err := l.inner.Generate(ctx, req)

	ev := store.LLMRequestEventData{
		Provider:    l.provider,
		Model:       l.inner.ModelID(),
		Purpose:     PurposeFrom(ctx),
		UserID:      UserFrom(ctx),
		LatencyMs:   time.Since(start).Milliseconds(),
		Success:     err == nil,
		RequestBody: transcript(req),
	}
	if resp != nil {
		if resp.Model != "" {
			ev.Model = resp.Model
		}
		ev.InputTokens = resp.Usage.InputTokens
		ev.OutputTokens = resp.Usage.OutputTokens
		ev.ResponseBody = string(resp.Content)
	}

	attrs := []any{
		slog.String("purpose", ev.Purpose),
		slog.String("model", ev.Model),
		slog.Int64("latency_ms", ev.LatencyMs),
	}
	if ev.UserID != "" {
		attrs = append(attrs, slog.String("user_id", ev.UserID))
	}
	if err != nil {
		ev.ErrorMessage = err.Error()
		l.logger.WarnContext(ctx, "ai request failed", append(attrs, slog.Any("error", err))...)
	} else {
		l.logger.DebugContext(ctx, "ai request", append(attrs,
			slog.Int("input_tokens", ev.InputTokens),
			slog.Int("output_tokens", ev.OutputTokens),
		)...)
	}

	if l.events != nil {
		if logErr := l.events.AppendLLMRequest(ctx, ev); logErr != nil {
			l.logger.WarnContext(ctx, "record ai request event", slog.Any("error", logErr))
		}
	}
	return resp, err
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}

// transcript renders a request as "[role]" headed sections.
func transcript(req Request) string {
	var b strings.Builder
	section := func(head, body string) {
		b.WriteString("[" + head + "]\n")
		b.WriteString(body)
		b.WriteString("\n\n")
	}

	if req.System != "" {
		section("system", req.System)
	}
	for _, m := range req.Messages {
		section(string(m.Role), m.Content)
	}
	if req.Schema != nil {
		if def, err := json.Marshal(req.Schema.Definition); err == nil {
			b.WriteString("[schema: " + req.Schema.Name + "]\n")
			b.Write(def)
			b.WriteString("\n")
		}
	}
	return b.String()
}
