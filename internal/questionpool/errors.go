package questionpool

import "fmt"

// RateLimitMessage is shown to users when the AI backend throttles us.
const RateLimitMessage = "Limite do serviço de IA atingido temporariamente. Tente novamente em instantes."

// RateLimitedError reports that the AI backend refused the request because
// of quota or rate limits.
type RateLimitedError struct {
	Err error
}

func (e *RateLimitedError) Error() string { return RateLimitMessage }

func (e *RateLimitedError) Unwrap() error { return e.Err }

// GenerationError reports that the AI backend answered with content that
// does not describe a valid question set.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("Falha ao gerar questões: %v", e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }
