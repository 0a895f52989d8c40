// Package tutor answers free-form study questions.
package tutor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/estudai/estudai/internal/domain"
	"github.com/estudai/estudai/internal/llm"
)

// MaxHistory is the number of prior turns replayed to the provider.
const MaxHistory = 10

const systemPrompt = `Você é um tutor paciente que ajuda estudantes a se prepararem
para o ENEM e vestibulares. Explique passo a passo, em português, com exemplos
curtos. Se a pergunta não for sobre estudos, redirecione gentilmente.`

// Turn is one prior exchange message.
type Turn struct {
	Role    string `json:"role" validate:"oneof=user assistant"`
	Content string `json:"content" validate:"required"`
}

// AskInput is a tutor question.
type AskInput struct {
	Question string `json:"question" validate:"required,max=4000"`
	Context  string `json:"context" validate:"max=8000"`
	History  []Turn `json:"history" validate:"max=50,dive"`
}

// Tutor answers questions with the AI provider.
type Tutor struct {
	provider llm.Provider
}

func New(provider llm.Provider) *Tutor {
	return &Tutor{provider: provider}
}

// Ask returns the tutor's answer as plain text.
func (t *Tutor) Ask(ctx context.Context, in AskInput) (string, error) {
	question := strings.TrimSpace(in.Question)
	if question == "" {
		return "", domain.NewValidationError("question", "is required")
	}
	if t.provider == nil {
		return "", &llm.ErrProviderUnavailable{}
	}

	system := systemPrompt
	if c := strings.TrimSpace(in.Context); c != "" {
		system += "\n\nContexto do estudo:\n" + c
	}

	history := in.History
	if len(history) > MaxHistory {
		history = history[len(history)-MaxHistory:]
	}
	msgs := make([]llm.Message, 0, len(history)+1)
	for _, h := range history {
		role := llm.RoleUser
		if h.Role == string(llm.RoleAssistant) {
			role = llm.RoleAssistant
		}
		msgs = append(msgs, llm.Message{Role: role, Content: h.Content})
	}
	msgs = append(msgs, llm.Message{Role: llm.RoleUser, Content: question})

	resp, err := t.provider.Generate(llm.WithPurpose(ctx, "tutor"), llm.Request{
		System:      system,
		Messages:    msgs,
		MaxTokens:   2048,
		Temperature: 0.7,
	})
	if err != nil {
		return "", fmt.Errorf("ask tutor: %w", err)
	}
	answer := strings.TrimSpace(resp.Text())
	if answer == "" {
		return "", &llm.ErrInvalidResponse{Content: resp.Content, Err: errors.New("empty answer")}
	}
	return answer, nil
}
