package problemgen

import (
	"fmt"
	"regexp"
	"strings"
)

// StructuralValidator checks that required fields are present and within
// bounds.
type StructuralValidator struct{}

func (v *StructuralValidator) Name() string { return "structural" }

func (v *StructuralValidator) Validate(q *Question, _ GenerateInput) *ValidationError {
	if strings.TrimSpace(q.Question) == "" {
		return v.fail("question is empty")
	}
	if len(q.Options) != OptionCount {
		return v.fail(fmt.Sprintf("expected %d options, got %d", OptionCount, len(q.Options)))
	}
	seen := make(map[string]bool, len(q.Options))
	for i, opt := range q.Options {
		norm := strings.ToLower(strings.TrimSpace(opt))
		if norm == "" {
			return v.fail(fmt.Sprintf("option %d is empty", i))
		}
		if seen[norm] {
			return v.fail(fmt.Sprintf("option %d duplicates another option", i))
		}
		seen[norm] = true
	}
	if q.CorrectAnswer < 0 || q.CorrectAnswer >= OptionCount {
		return v.fail(fmt.Sprintf("correctAnswer %d out of range 0..%d", q.CorrectAnswer, OptionCount-1))
	}
	if strings.TrimSpace(q.Explanation) == "" {
		return v.fail("explanation is empty")
	}
	return nil
}

func (v *StructuralValidator) fail(msg string) *ValidationError {
	return &ValidationError{Validator: v.Name(), Message: msg, Retryable: true}
}

// letterLabel matches "A)", "b.", "(C)", "D -" at the start of an option.
var letterLabel = regexp.MustCompile(`^\s*\(?[A-Ea-e]\s*[).:\-]\s`)

// OptionLabelValidator rejects options that carry their own letter labels;
// clients render the letters.
type OptionLabelValidator struct{}

func (v *OptionLabelValidator) Name() string { return "option-labels" }

func (v *OptionLabelValidator) Validate(q *Question, _ GenerateInput) *ValidationError {
	for i, opt := range q.Options {
		if letterLabel.MatchString(opt) {
			return &ValidationError{
				Validator: v.Name(),
				Message:   fmt.Sprintf("option %d starts with a letter label: %q", i, opt),
				Retryable: true,
			}
		}
	}
	return nil
}
