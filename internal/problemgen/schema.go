package problemgen

import "github.com/estudai/estudai/internal/llm"

// ENEMQuestionSchema is the JSON schema for a generated question set.
var ENEMQuestionSchema = &llm.Schema{
	Name:        "enem-questions",
	Description: "A set of ENEM-style multiple-choice questions with five alternatives each",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"questions": map[string]any{
				"type":     "array",
				"minItems": 1,
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"question": map[string]any{
							"type":        "string",
							"description": "Base text followed by the command of the question",
						},
						"options": map[string]any{
							"type":        "array",
							"items":       map[string]any{"type": "string"},
							"minItems":    OptionCount,
							"maxItems":    OptionCount,
							"description": "Exactly five alternatives, text only, without A) B) labels",
						},
						"correctAnswer": map[string]any{
							"type":        "integer",
							"minimum":     0,
							"maximum":     OptionCount - 1,
							"description": "Zero-based index of the correct alternative",
						},
						"explanation": map[string]any{
							"type":        "string",
							"description": "Detailed resolution of the question",
						},
					},
					"required":             []string{"question", "options", "correctAnswer", "explanation"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []string{"questions"},
		"additionalProperties": false,
	},
}
