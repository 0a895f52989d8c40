package problemgen

import (
	"fmt"
	"strings"
	"testing"
)

func TestBuildUserMessage_MinimalContext(t *testing.T) {
	input := GenerateInput{
		Subject:    "Natureza",
		Topic:      "Ecologia",
		Difficulty: DifficultyMedium,
		Count:      1,
	}
	msg := buildUserMessage(input, DefaultConfig())

	if !strings.Contains(msg, "Matéria: Natureza") {
		t.Error("missing subject")
	}
	if !strings.Contains(msg, "Tópico: Ecologia") {
		t.Error("missing topic")
	}
	if !strings.Contains(msg, "Quantidade: 1") {
		t.Error("missing count")
	}
	if !strings.Contains(msg, "Nível padrão") {
		t.Error("expected medium instructions")
	}
	if !strings.Contains(msg, "Já apresentadas:\nNenhuma") {
		t.Error("expected 'Nenhuma' for prior questions")
	}
}

func TestBuildUserMessage_HardDifficulty(t *testing.T) {
	msg := buildUserMessage(GenerateInput{Subject: "Humanas", Topic: "Iluminismo", Difficulty: DifficultyHard}, DefaultConfig())

	if !strings.Contains(msg, "Nível difícil") {
		t.Error("expected hard instructions")
	}
	if strings.Contains(msg, "Nível padrão") {
		t.Error("did not expect medium instructions")
	}
}

func TestBuildUserMessage_TruncatesPriorQuestions(t *testing.T) {
	questions := make([]string, 12)
	for i := range questions {
		questions[i] = fmt.Sprintf("Questão %c", 'A'+i)
	}

	cfg := DefaultConfig() // MaxPriorQuestions = 8
	msg := buildUserMessage(GenerateInput{Subject: "X", PriorQuestions: questions}, cfg)

	// First 4 should be dropped (12 - 8 = 4).
	for _, q := range questions[:4] {
		if strings.Contains(msg, q) {
			t.Errorf("expected old question %q to be truncated", q)
		}
	}
	for _, q := range questions[4:] {
		if !strings.Contains(msg, q) {
			t.Errorf("expected recent question %q to be present", q)
		}
	}
}

func TestBuildDedup_UsesFirstLineOnly(t *testing.T) {
	got := buildDedup([]string{"Texto-base longo\n\nComando da questão"}, 0)
	if got != "1. Texto-base longo" {
		t.Errorf("got %q", got)
	}
}

func TestBuildDedup_ShortensLongLines(t *testing.T) {
	got := buildDedup([]string{strings.Repeat("á", 300)}, 0)
	if !strings.HasSuffix(got, "...") {
		t.Errorf("expected ellipsis, got %q", got)
	}
	if n := len([]rune(got)); n != len("1. ")+160+3 {
		t.Errorf("unexpected length %d", n)
	}
}
