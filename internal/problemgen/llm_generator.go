package problemgen

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/estudai/estudai/internal/llm"
)

// LLMGenerator implements Generator using the LLM provider.
type LLMGenerator struct {
	provider llm.Provider
	config   Config
}

// New creates a new LLMGenerator with the given provider and config.
func New(provider llm.Provider, cfg Config) *LLMGenerator {
	return &LLMGenerator{provider: provider, config: cfg}
}

// questionOutput is the raw LLM response before validation. CorrectAnswer
// is a pointer so that a missing field is distinguishable from index 0.
type questionOutput struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer *int     `json:"correctAnswer"`
	Explanation   string   `json:"explanation"`
}

type setOutput struct {
	Questions []questionOutput `json:"questions"`
}

// Generate produces input.Count questions (at least one, at most
// Config.MaxCount).
func (g *LLMGenerator) Generate(ctx context.Context, input GenerateInput) ([]Question, error) {
	ctx = llm.WithPurpose(ctx, "question-gen")

	if input.Count <= 0 {
		input.Count = 1
	}
	if g.config.MaxCount > 0 && input.Count > g.config.MaxCount {
		input.Count = g.config.MaxCount
	}
	if input.Difficulty == "" {
		input.Difficulty = DifficultyMedium
	}

	req := llm.Request{
		System: systemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildUserMessage(input, g.config)},
		},
		Schema:      ENEMQuestionSchema,
		MaxTokens:   g.config.MaxTokens,
		Temperature: g.config.Temperature,
	}

	resp, err := g.provider.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("LLM generation failed: %w", err)
	}

	var raw setOutput
	if err := json.Unmarshal(resp.Content, &raw); err != nil {
		return nil, &llm.ErrInvalidResponse{Content: resp.Content, Err: fmt.Errorf("failed to parse LLM response: %w", err)}
	}
	if len(raw.Questions) == 0 {
		return nil, &ValidationError{Validator: "structural", Message: "no questions returned", Retryable: true}
	}

	out := make([]Question, 0, len(raw.Questions))
	for i, r := range raw.Questions {
		if r.CorrectAnswer == nil {
			return nil, &ValidationError{
				Validator: "structural",
				Message:   fmt.Sprintf("question %d: correctAnswer is missing", i),
				Retryable: true,
			}
		}
		q := Question{
			Question:      r.Question,
			Options:       r.Options,
			CorrectAnswer: *r.CorrectAnswer,
			Explanation:   r.Explanation,
		}

		// Run validators in order.
		for _, v := range g.config.Validators {
			if verr := v.Validate(&q, input); verr != nil {
				return nil, verr
			}
		}
		out = append(out, q)
	}

	return out, nil
}
