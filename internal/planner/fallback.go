package planner

import (
	"github.com/estudai/estudai/internal/caldate"
)

// FallbackDuration is the length of each fallback task, in minutes.
const FallbackDuration = 60

type subjectTopic struct {
	Subject string
	Topic   string
}

// fallbackPlan is used when the AI plan cannot be produced. Entry i is
// scheduled i+1 days after today.
var fallbackPlan = []subjectTopic{
	{"Matemática", "Matemática Básica"},
	{"Natureza", "Ecologia"},
	{"Humanas", "História do Brasil"},
	{"Linguagens", "Interpretação de Texto"},
	{"Redação", "Estrutura Dissertativa"},
	{"Natureza", "Química Geral"},
	{"Matemática", "Estatística"},
}

// fallbackTasks lays the fixed plan out one task per day starting the day
// after today, stopping at the end of the range.
func fallbackTasks(today, to caldate.Date) []Task {
	out := make([]Task, 0, len(fallbackPlan))
	for i, p := range fallbackPlan {
		d := today.AddDays(i + 1)
		if d.After(to) {
			break
		}
		out = append(out, Task{
			Subject:         p.Subject,
			Topic:           p.Topic,
			Date:            d,
			DurationMinutes: FallbackDuration,
		})
	}
	return out
}
