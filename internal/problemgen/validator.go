package problemgen

import "fmt"

// Validator is one check in the post-generation pipeline. Validators are
// stateless and shared across requests.
type Validator interface {
	Name() string // "structural", "option-labels"
	Validate(q *Question, input GenerateInput) *ValidationError
}

// ValidationError is a rejected question.
type ValidationError struct {
	Validator string
	Message   string

	// Retryable marks failures a fresh generation may not repeat.
	Retryable bool
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validator %q: %s", e.Validator, e.Message)
}
