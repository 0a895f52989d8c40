package problemgen

// Config tunes an LLMGenerator.
type Config struct {
	// Validators run on each generated question in order. A question is
	// kept only if all of them pass.
	Validators []Validator

	MaxTokens   int
	Temperature float64

	// MaxPriorQuestions bounds how many already-seen statements are
	// listed in the prompt as "do not repeat".
	MaxPriorQuestions int

	// MaxCount caps GenerateInput.Count.
	MaxCount int
}

// DefaultConfig is the configuration the API runs with. The budget fits
// five ENEM-length questions with explanations.
func DefaultConfig() Config {
	return Config{
		Validators:        []Validator{&StructuralValidator{}, &OptionLabelValidator{}},
		MaxTokens:         4096,
		Temperature:       0.8,
		MaxPriorQuestions: 8,
		MaxCount:          5,
	}
}
