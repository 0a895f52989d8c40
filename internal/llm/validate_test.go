package llm

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var cardSchema = &Schema{
	Name: "test-cards",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"flashcards": map[string]any{
				"type":     "array",
				"minItems": 1,
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"front": map[string]any{"type": "string", "minLength": 1},
						"back":  map[string]any{"type": "string", "minLength": 1},
					},
					"required": []string{"front", "back"},
				},
			},
			"difficulty": map[string]any{"type": "string", "enum": []string{"medium", "hard"}},
		},
		"required": []string{"flashcards"},
	},
}

func TestValidateResponse(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"valid", `{"flashcards":[{"front":"DNA","back":"Ácido desoxirribonucleico"}],"difficulty":"hard"}`, false},
		{"optional field omitted", `{"flashcards":[{"front":"RNA","back":"Ácido ribonucleico"}]}`, false},
		{"missing required", `{"difficulty":"medium"}`, true},
		{"missing nested required", `{"flashcards":[{"front":"DNA"}]}`, true},
		{"wrong type", `{"flashcards":"DNA"}`, true},
		{"enum violation", `{"flashcards":[{"front":"a","back":"b"}],"difficulty":"easy"}`, true},
		{"empty array", `{"flashcards":[]}`, true},
		{"not json", `Aqui estão seus flashcards`, true},
		{"empty", ``, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateResponse(cardSchema, json.RawMessage(tt.raw))
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			var invalid *ErrInvalidResponse
			assert.ErrorAs(t, err, &invalid)
		})
	}

	assert.NoError(t, validateResponse(nil, json.RawMessage(`qualquer coisa`)))
}

func TestStripCodeFence(t *testing.T) {
	for in, want := range map[string]string{
		`{"a":1}`:                    `{"a":1}`,
		"  {\"a\":1}\n":              `{"a":1}`,
		"```json\n{\"a\":1}\n```":    `{"a":1}`,
		"```\n{\"a\":1}\n```":        `{"a":1}`,
		"```json{\"a\":1}```":        `{"a":1}`,
		"```json\n{\"a\":1}\n```\n ": `{"a":1}`,
	} {
		assert.Equal(t, want, string(stripCodeFence(json.RawMessage(in))), "input %q", in)
	}
}

func TestWithValidation(t *testing.T) {
	t.Run("accepts fenced JSON", func(t *testing.T) {
		mock := NewMockProvider(MockResponse{
			Content: json.RawMessage("```json\n{\"flashcards\":[{\"front\":\"a\",\"back\":\"b\"}]}\n```"),
		})
		resp, err := WithValidation(mock).Generate(context.Background(), Request{Schema: cardSchema})
		require.NoError(t, err)
		assert.Equal(t, `{"flashcards":[{"front":"a","back":"b"}]}`, string(resp.Content))
	})

	t.Run("rejects mismatch", func(t *testing.T) {
		mock := NewMockProvider(MockResponse{Content: json.RawMessage(`{"flashcards":[{"front":"a"}]}`)})
		_, err := WithValidation(mock).Generate(context.Background(), Request{Schema: cardSchema})
		var invalid *ErrInvalidResponse
		assert.ErrorAs(t, err, &invalid)
	})

	t.Run("truncated structured output", func(t *testing.T) {
		mock := NewMockProvider(MockResponse{Content: json.RawMessage(`{"flashcards":[{"fro`), StopReason: StopMaxTokens})
		_, err := WithValidation(mock).Generate(context.Background(), Request{Schema: cardSchema})
		var maxTok *ErrMaxTokensExceeded
		require.ErrorAs(t, err, &maxTok)
		assert.Equal(t, `{"flashcards":[{"fro`, string(maxTok.Content))
	})

	t.Run("free text passes through", func(t *testing.T) {
		mock := NewMockProvider(MockResponse{Content: json.RawMessage("A fotossíntese ocorre nos cloroplastos.\n"), StopReason: StopMaxTokens})
		resp, err := WithValidation(mock).Generate(context.Background(), Request{})
		require.NoError(t, err)
		assert.Equal(t, "A fotossíntese ocorre nos cloroplastos.", resp.Text())
	})

	t.Run("invalid answer gets one retry through the chain", func(t *testing.T) {
		mock := NewMockProvider(
			MockResponse{Content: json.RawMessage(`{"nope":true}`)},
			MockResponse{Content: json.RawMessage(`{"flashcards":[{"front":"a","back":"b"}]}`)},
		)
		_, err := WithRetry(WithValidation(mock), retryConfig()).Generate(context.Background(), Request{Schema: cardSchema})
		require.NoError(t, err)
		assert.Equal(t, 2, mock.CallCount())
	})
}
