package essay

import "github.com/estudai/estudai/internal/llm"

// Competencies are the five ENEM essay competencies, in order.
var Competencies = []string{"c1", "c2", "c3", "c4", "c5"}

func competencySchema(description string) map[string]any {
	return map[string]any{
		"type":        "object",
		"description": description,
		"properties": map[string]any{
			"score":    map[string]any{"type": "integer", "minimum": 0, "maximum": MaxCompetencyScore},
			"feedback": map[string]any{"type": "string"},
		},
		"required":             []string{"score", "feedback"},
		"additionalProperties": false,
	}
}

// EvaluationSchema is the JSON schema for an essay grade.
var EvaluationSchema = &llm.Schema{
	Name:        "essay-evaluation",
	Description: "ENEM essay grade over the five competencies",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"c1":              competencySchema("Domínio da norma culta"),
			"c2":              competencySchema("Compreensão da proposta e repertório"),
			"c3":              competencySchema("Seleção e organização de argumentos"),
			"c4":              competencySchema("Mecanismos de coesão"),
			"c5":              competencySchema("Proposta de intervenção"),
			"generalFeedback": map[string]any{"type": "string"},
			"improvements": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
		},
		"required":             []string{"c1", "c2", "c3", "c4", "c5", "generalFeedback", "improvements"},
		"additionalProperties": false,
	},
}
