package spacedrep

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/estudai/estudai/internal/domain"
	"github.com/estudai/estudai/internal/llm"
	"github.com/estudai/estudai/internal/store"
)

const (
	DefaultGenerateCount = 5
	MaxGenerateCount     = 20
)

// FlashcardSchema is the JSON schema for AI-generated cards.
var FlashcardSchema = &llm.Schema{
	Name:        "flashcards",
	Description: "Educational flashcards with a prompt on the front and the answer on the back",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"flashcards": map[string]any{
				"type":     "array",
				"minItems": 1,
				"maxItems": MaxGenerateCount,
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"front": map[string]any{"type": "string", "description": "Pergunta ou conceito"},
						"back":  map[string]any{"type": "string", "description": "Resposta ou explicação"},
					},
					"required":             []string{"front", "back"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []string{"flashcards"},
		"additionalProperties": false,
	},
}

const flashcardSystemPrompt = `Você cria flashcards para estudantes de ENEM e vestibular.
Cada flashcard tem uma pergunta ou conceito na frente e a resposta ou explicação no verso.
Seja claro e conciso; uma ideia por cartão.`

// GenerateInput is the input for AI card generation.
type GenerateInput struct {
	Topic   string `json:"topic" validate:"required,max=200"`
	Subject string `json:"subject" validate:"max=60"`
	Count   int    `json:"count" validate:"gte=0,lte=20"`
}

// Generate asks the AI provider for cards about a topic and stores them.
// Premium only.
func (s *Service) Generate(ctx context.Context, userID string, in GenerateInput) ([]store.Flashcard, error) {
	if s.premium != nil {
		if err := s.premium.RequirePro(ctx, userID); err != nil {
			return nil, err
		}
	}
	topic := strings.TrimSpace(in.Topic)
	if topic == "" {
		return nil, domain.NewValidationError("topic", "is required")
	}
	if s.provider == nil {
		return nil, &llm.ErrProviderUnavailable{}
	}
	count := in.Count
	if count <= 0 {
		count = DefaultGenerateCount
	}
	if count > MaxGenerateCount {
		count = MaxGenerateCount
	}

	resp, err := s.provider.Generate(llm.WithPurpose(ctx, "flashcard-gen"), llm.Request{
		System: flashcardSystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: fmt.Sprintf("Crie %d flashcards sobre: %s", count, topic)},
		},
		Schema:      FlashcardSchema,
		MaxTokens:   2048,
		Temperature: 0.7,
	})
	if err != nil {
		return nil, fmt.Errorf("generate flashcards: %w", err)
	}

	var out struct {
		Flashcards []struct {
			Front string `json:"front"`
			Back  string `json:"back"`
		} `json:"flashcards"`
	}
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return nil, &llm.ErrInvalidResponse{Content: resp.Content, Err: err}
	}

	cards := make([]store.Flashcard, 0, len(out.Flashcards))
	for _, fc := range out.Flashcards {
		front, back := strings.TrimSpace(fc.Front), strings.TrimSpace(fc.Back)
		if front == "" || back == "" {
			continue
		}
		cards = append(cards, s.newCard(userID, in.Subject, front, back))
		if len(cards) == count {
			break
		}
	}
	if len(cards) == 0 {
		return nil, &llm.ErrInvalidResponse{Content: resp.Content, Err: errors.New("no usable flashcards")}
	}

	if err := s.cards.Create(ctx, cards...); err != nil {
		return nil, fmt.Errorf("save generated flashcards: %w", err)
	}
	return cards, nil
}
