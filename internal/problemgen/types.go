package problemgen

// Difficulty selects the prompt register used for generation.
type Difficulty string

const (
	// DifficultyMedium targets the average ENEM candidate: contextualized,
	// everyday situations.
	DifficultyMedium Difficulty = "medium"

	// DifficultyHard targets competitive programs: long base texts,
	// interdisciplinary reasoning and plausible distractors.
	DifficultyHard Difficulty = "hard"
)

// ParseDifficulty maps free-form input to a Difficulty, defaulting to medium.
func ParseDifficulty(s string) Difficulty {
	if Difficulty(s) == DifficultyHard {
		return DifficultyHard
	}
	return DifficultyMedium
}

// OptionCount is the number of alternatives in every ENEM question.
const OptionCount = 5

// Question is a multiple-choice question as stored in the pool and sent to
// clients.
type Question struct {
	// ID references the stored copy the question was served from. Empty
	// until the question is in the pool.
	ID string `json:"id,omitempty"`

	// Question holds the base text followed by the command, separated by a
	// blank line.
	Question string `json:"question"`

	// Options contains exactly OptionCount alternatives without letter labels.
	Options []string `json:"options"`

	// CorrectAnswer is the zero-based index into Options (0 for A).
	CorrectAnswer int `json:"correctAnswer"`

	// Explanation is the worked resolution shown after answering.
	Explanation string `json:"explanation"`
}

// IsCorrect reports whether choice is the right alternative.
func (q Question) IsCorrect(choice int) bool {
	return choice == q.CorrectAnswer
}

// GenerateInput holds all context needed to generate questions.
type GenerateInput struct {
	Subject    string
	Topic      string
	Difficulty Difficulty

	// Count is the number of questions requested. Zero means one.
	Count int

	// PriorQuestions are statements already shown to the student on this
	// topic. Used for deduplication in the prompt.
	PriorQuestions []string
}
