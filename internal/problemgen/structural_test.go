package problemgen

import (
	"testing"
)

func validQuestion() *Question {
	return &Question{
		Question:      "Texto-base sobre ciclos biogeoquímicos.\n\nQual processo devolve nitrogênio à atmosfera?",
		Options:       []string{"Fixação", "Nitrificação", "Desnitrificação", "Amonificação", "Assimilação"},
		CorrectAnswer: 2,
		Explanation:   "Bactérias desnitrificantes convertem nitrato em N2.",
	}
}

func TestStructural_ValidQuestion(t *testing.T) {
	v := &StructuralValidator{}
	if err := v.Validate(validQuestion(), GenerateInput{}); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}

func TestStructural_Failures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(q *Question)
	}{
		{"empty question", func(q *Question) { q.Question = "  " }},
		{"four options", func(q *Question) { q.Options = q.Options[:4] }},
		{"six options", func(q *Question) { q.Options = append(q.Options, "Extra") }},
		{"blank option", func(q *Question) { q.Options[3] = "" }},
		{"duplicate option", func(q *Question) { q.Options[4] = " fixação " }},
		{"negative answer", func(q *Question) { q.CorrectAnswer = -1 }},
		{"answer past E", func(q *Question) { q.CorrectAnswer = 5 }},
		{"empty explanation", func(q *Question) { q.Explanation = "" }},
	}

	v := &StructuralValidator{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := validQuestion()
			tt.mutate(q)
			err := v.Validate(q, GenerateInput{})
			if err == nil {
				t.Fatal("expected validation error")
			}
			if err.Validator != "structural" {
				t.Errorf("expected validator %q, got %q", "structural", err.Validator)
			}
			if !err.Retryable {
				t.Error("expected retryable")
			}
		})
	}
}

func TestOptionLabel(t *testing.T) {
	tests := []struct {
		option string
		reject bool
	}{
		{"A) Fixação", true},
		{"b. Nitrificação", true},
		{"(C) Desnitrificação", true},
		{"D - Amonificação", true},
		{"E : Assimilação", true},
		{"a -  Fixação", true},
		{"Desnitrificação", false},
		{"A fixação biológica", false},
		{"Energia solar", false},
	}

	v := &OptionLabelValidator{}
	for _, tt := range tests {
		t.Run(tt.option, func(t *testing.T) {
			q := validQuestion()
			q.Options[0] = tt.option
			err := v.Validate(q, GenerateInput{})
			if tt.reject && err == nil {
				t.Errorf("expected %q to be rejected", tt.option)
			}
			if !tt.reject && err != nil {
				t.Errorf("expected %q to pass, got %v", tt.option, err)
			}
		})
	}
}
