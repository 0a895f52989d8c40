package questionpool

import (
	"context"
	"fmt"
	"strings"

	"github.com/estudai/estudai/internal/domain"
	"github.com/estudai/estudai/internal/problemgen"
)

// BankSearchLimit caps the rows a bank search draws from.
const BankSearchLimit = 20

// BankQuestion is a pool question with its catalog data.
type BankQuestion struct {
	ID         string              `json:"id"`
	Subject    string              `json:"subject"`
	Topic      string              `json:"topic"`
	Difficulty string              `json:"difficulty"`
	Question   problemgen.Question `json:"question"`
}

// Search returns a random pool question of subject whose topic contains
// topic, ignoring case. Returns domain.ErrNotFound when nothing matches.
func (g *Gate) Search(ctx context.Context, subject, topic string) (*BankQuestion, error) {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return nil, domain.NewValidationError("subject", "is required")
	}

	rows, err := g.pool.Search(ctx, subject, topic, BankSearchLimit)
	if err != nil {
		return nil, fmt.Errorf("search question bank: %w", err)
	}

	// Skip unreadable rows rather than failing the whole search.
	for len(rows) > 0 {
		i := g.pick(len(rows))
		row := rows[i]
		qs, err := DecodeContent(row.Content)
		if err == nil {
			tagRefs(row.ID, qs)
			return &BankQuestion{
				ID:         row.ID,
				Subject:    row.Subject,
				Topic:      row.Topic,
				Difficulty: row.Difficulty,
				Question:   qs[0],
			}, nil
		}
		g.logger.WarnContext(ctx, "bank question unreadable", "id", row.ID, "error", err)
		rows = append(rows[:i], rows[i+1:]...)
	}
	return nil, fmt.Errorf("no question for %s/%s: %w", subject, topic, domain.ErrNotFound)
}
