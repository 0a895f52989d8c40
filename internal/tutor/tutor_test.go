package tutor

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/estudai/estudai/internal/domain"
	"github.com/estudai/estudai/internal/llm"
)

func TestAsk_SendsContextAndHistory(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: []byte("A mitose gera duas células idênticas.")})
	tutor := New(mock)

	answer, err := tutor.Ask(context.Background(), AskInput{
		Question: "E a mitose?",
		Context:  "Biologia celular",
		History: []Turn{
			{Role: "user", Content: "O que é meiose?"},
			{Role: "assistant", Content: "Divisão reducional."},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "A mitose gera duas células idênticas.", answer)

	require.Len(t, mock.Calls, 1)
	req := mock.Calls[0]
	assert.Nil(t, req.Schema)
	assert.Contains(t, req.System, "Biologia celular")
	require.Len(t, req.Messages, 3)
	assert.Equal(t, llm.RoleAssistant, req.Messages[1].Role)
	assert.Equal(t, "E a mitose?", req.Messages[2].Content)
}

func TestAsk_TrimsHistory(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: []byte("ok")})
	var history []Turn
	for i := 0; i < MaxHistory+5; i++ {
		history = append(history, Turn{Role: "user", Content: fmt.Sprintf("q%d", i)})
	}

	_, err := New(mock).Ask(context.Background(), AskInput{Question: "última", History: history})
	require.NoError(t, err)
	msgs := mock.Calls[0].Messages
	require.Len(t, msgs, MaxHistory+1)
	assert.Equal(t, "q5", msgs[0].Content)
}

func TestAsk_EmptyQuestion(t *testing.T) {
	mock := llm.NewMockProvider()
	_, err := New(mock).Ask(context.Background(), AskInput{Question: "  "})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Empty(t, mock.Calls)
}

func TestAsk_EmptyAnswer(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: []byte("  ")})
	_, err := New(mock).Ask(context.Background(), AskInput{Question: "oi"})
	var inv *llm.ErrInvalidResponse
	assert.ErrorAs(t, err, &inv)
}
