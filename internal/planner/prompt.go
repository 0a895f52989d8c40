package planner

import (
	"fmt"
	"strings"

	"github.com/estudai/estudai/internal/caldate"
	"github.com/estudai/estudai/internal/llm"
)

// ScheduleSchema is the JSON schema for an AI study plan.
var ScheduleSchema = &llm.Schema{
	Name:        "study-schedule",
	Description: "Study tasks for an ENEM candidate, one or more per day",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"tasks": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"subject":          map[string]any{"type": "string"},
						"topic":            map[string]any{"type": "string"},
						"duration_minutes": map[string]any{"type": "integer", "minimum": 1},
						"date":             map[string]any{"type": "string", "description": "YYYY-MM-DD"},
					},
					"required":             []string{"subject", "topic", "duration_minutes", "date"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []string{"tasks"},
		"additionalProperties": false,
	},
}

const systemPrompt = `Você é um planejador de estudos para o ENEM.
Monte um cronograma equilibrado entre as áreas (Linguagens, Humanas, Natureza,
Matemática e Redação), priorizando as dificuldades do aluno e respeitando as
horas disponíveis por dia. Use datas no formato AAAA-MM-DD.`

func buildUserMessage(in PlanInput, from, to caldate.Date) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Período: %s a %s\n", from, to)
	fmt.Fprintf(&b, "Horas por dia: %g\n", in.HoursPerDay)
	if f := strings.TrimSpace(in.Focus); f != "" {
		fmt.Fprintf(&b, "Foco: %s\n", f)
	}
	var diffs []string
	for _, d := range in.Difficulties {
		if d = strings.TrimSpace(d); d != "" {
			diffs = append(diffs, d)
		}
	}
	if len(diffs) > 0 {
		fmt.Fprintf(&b, "Dificuldades: %s\n", strings.Join(diffs, ", "))
	}
	return b.String()
}
