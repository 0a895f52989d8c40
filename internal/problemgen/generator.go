package problemgen

import "context"

// Generator produces ENEM-style questions using an LLM provider.
type Generator interface {
	// Generate produces the requested number of questions for input.
	// All configured validators run on every question before returning;
	// a single failure rejects the whole set.
	Generate(ctx context.Context, input GenerateInput) ([]Question, error)
}
