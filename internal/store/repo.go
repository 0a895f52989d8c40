package store

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx/types"

	"github.com/estudai/estudai/internal/caldate"
)

// Profile is a user's profile row. Identity comes from the external auth
// provider; the row is keyed by the token subject.
type Profile struct {
	ID               string        `db:"id" json:"id"`
	FullName         string        `db:"full_name" json:"full_name"`
	Username         string        `db:"username" json:"username"`
	AvatarURL        string        `db:"avatar_url" json:"avatar_url"`
	TargetCourse     string        `db:"target_course" json:"target_course"`
	CurrentYear      string        `db:"current_year" json:"current_year"`
	StreakCount      int           `db:"streak_count" json:"streak_count"`
	LastActivityDate *caldate.Date `db:"last_activity_date" json:"last_activity_date"`
	IsPro            bool          `db:"is_pro" json:"is_pro"`
	XP               int           `db:"xp" json:"xp"`
	Level            int           `db:"level" json:"level"`
	CreatedAt        time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time     `db:"updated_at" json:"updated_at"`
}

// ProfileFields are the user-editable profile columns.
type ProfileFields struct {
	FullName     string
	Username     string
	AvatarURL    string
	TargetCourse string
	CurrentYear  string
}

// ProfileRepo reads and mutates profile rows.
type ProfileRepo interface {
	// Get returns the profile or domain.ErrNotFound.
	Get(ctx context.Context, id string) (*Profile, error)

	// Ensure creates an empty profile for id if none exists.
	Ensure(ctx context.Context, id string, now time.Time) error

	// Upsert inserts the profile or updates its editable fields.
	Upsert(ctx context.Context, id string, f ProfileFields, now time.Time) (*Profile, error)

	// SetStreak overwrites the streak counter and the last activity date.
	SetStreak(ctx context.Context, id string, count int, last *caldate.Date) error

	// SetPro sets the premium flag.
	SetPro(ctx context.Context, id string, pro bool) error

	// IncrementXP adds amount to the profile's XP in a single statement
	// and returns the new XP and level (xp / xpPerLevel + 1).
	IncrementXP(ctx context.Context, id string, amount, xpPerLevel int) (xp, level int, err error)
}

// Flashcard is a single two-sided card.
type Flashcard struct {
	ID         string       `db:"id" json:"id"`
	UserID     string       `db:"user_id" json:"user_id"`
	Front      string       `db:"front" json:"front"`
	Back       string       `db:"back" json:"back"`
	Subject    string       `db:"subject" json:"subject"`
	Interval   int          `db:"interval_days" json:"interval"`
	NextReview caldate.Date `db:"next_review" json:"next_review"`
	CreatedAt  time.Time    `db:"created_at" json:"created_at"`
}

// Deck summarizes a user's cards in one subject.
type Deck struct {
	Subject string `db:"subject" json:"subject"`
	Total   int    `db:"total" json:"total"`
	Due     int    `db:"due" json:"due"`
}

// FlashcardRepo manages flashcards.
type FlashcardRepo interface {
	Create(ctx context.Context, cards ...Flashcard) error
	Get(ctx context.Context, userID, id string) (*Flashcard, error)

	// Due returns the cards of one subject with next_review <= today,
	// oldest review date first.
	Due(ctx context.Context, userID, subject string, today caldate.Date) ([]Flashcard, error)

	Decks(ctx context.Context, userID string, today caldate.Date) ([]Deck, error)
	Reschedule(ctx context.Context, userID, id string, interval int, next caldate.Date) error
	Delete(ctx context.Context, userID, id string) error
}

// StudyTask is one planner entry.
type StudyTask struct {
	ID              string       `db:"id" json:"id"`
	UserID          string       `db:"user_id" json:"user_id"`
	Subject         string       `db:"subject" json:"subject"`
	Topic           string       `db:"topic" json:"topic"`
	Date            caldate.Date `db:"task_date" json:"date"`
	DurationMinutes int          `db:"duration_minutes" json:"duration_minutes"`
	IsDone          bool         `db:"is_done" json:"is_done"`
}

// StudyTaskRepo manages planner tasks.
type StudyTaskRepo interface {
	// ReplaceRange deletes every task of the user dated within [from, to]
	// and inserts tasks, atomically.
	ReplaceRange(ctx context.Context, userID string, from, to caldate.Date, tasks []StudyTask) error

	List(ctx context.Context, userID string, from, to caldate.Date) ([]StudyTask, error)

	// Toggle flips is_done and returns the updated task.
	Toggle(ctx context.Context, userID, id string) (*StudyTask, error)
}

// PooledQuestion is a shared practice question. Content holds either one
// question object or, in rows imported by older tooling, an array of them.
type PooledQuestion struct {
	ID         string         `db:"id" json:"id"`
	CreatedBy  *string        `db:"created_by" json:"created_by"`
	Subject    string         `db:"subject" json:"subject"`
	Topic      string         `db:"topic" json:"topic"`
	Difficulty string         `db:"difficulty" json:"difficulty"`
	Content    types.JSONText `db:"content" json:"content"`
	IsPublic   bool           `db:"is_public" json:"is_public"`
	CreatedAt  time.Time      `db:"created_at" json:"created_at"`
}

// PoolFilter selects pooled questions by exact match.
type PoolFilter struct {
	Subject    string
	Topic      string
	Difficulty string
	Limit      int
}

// QuestionPoolRepo manages the shared question pool.
type QuestionPoolRepo interface {
	Find(ctx context.Context, f PoolFilter) ([]PooledQuestion, error)

	// Search matches subject exactly and topic as a case-insensitive
	// substring. An empty topic matches every row of the subject.
	Search(ctx context.Context, subject, topic string, limit int) ([]PooledQuestion, error)

	// Get returns a public pool row or domain.ErrNotFound.
	Get(ctx context.Context, id string) (*PooledQuestion, error)

	Insert(ctx context.Context, q *PooledQuestion) error
}

// SavedQuestion is a question a user answered and chose to keep.
type SavedQuestion struct {
	ID        string         `db:"id" json:"id"`
	UserID    string         `db:"user_id" json:"user_id"`
	Subject   string         `db:"subject" json:"subject"`
	Topic     string         `db:"topic" json:"topic"`
	Content   types.JSONText `db:"content" json:"content"`
	IsCorrect bool           `db:"is_correct" json:"is_correct"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
}

// SavedQuestionRepo manages saved questions.
type SavedQuestionRepo interface {
	Save(ctx context.Context, q *SavedQuestion) error
	ListRecent(ctx context.Context, userID string, limit int) ([]SavedQuestion, error)
}

// Essay is a graded essay.
type Essay struct {
	ID        string         `db:"id" json:"id"`
	UserID    string         `db:"user_id" json:"user_id"`
	Theme     string         `db:"theme" json:"theme"`
	Content   string         `db:"content" json:"content"`
	Score     int            `db:"score" json:"score"`
	Feedback  types.JSONText `db:"feedback" json:"feedback"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
}

// EssayRepo manages graded essays.
type EssayRepo interface {
	// InsertAndTrim stores e and deletes all but the keep most recent
	// essays of the same user, atomically.
	InsertAndTrim(ctx context.Context, e *Essay, keep int) error

	ListRecent(ctx context.Context, userID string, limit int) ([]Essay, error)
}

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit   int    // max results (0 = unlimited)
	Purpose string // exact purpose match when set
	UserID  string // exact user match when set
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	UserID       string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMRequestEventRecord is a stored LLM request event.
type LLMRequestEventRecord struct {
	ID           int       `db:"id"`
	Timestamp    time.Time `db:"created_at"`
	Provider     string    `db:"provider"`
	Model        string    `db:"model"`
	Purpose      string    `db:"purpose"`
	UserID       string    `db:"user_id"`
	InputTokens  int       `db:"input_tokens"`
	OutputTokens int       `db:"output_tokens"`
	LatencyMs    int64     `db:"latency_ms"`
	Success      bool      `db:"success"`
	ErrorMessage string    `db:"error_message"`
	RequestBody  string    `db:"request_body"`
	ResponseBody string    `db:"response_body"`
}

// LLMUsageStats aggregates token usage for one purpose.
type LLMUsageStats struct {
	Purpose      string `db:"purpose"`
	Calls        int    `db:"calls"`
	InputTokens  int    `db:"input_tokens"`
	OutputTokens int    `db:"output_tokens"`
	AvgLatencyMs int64  `db:"avg_latency_ms"`
}

// LLMModelUsage aggregates token usage for one model.
type LLMModelUsage struct {
	Model        string `db:"model"`
	Calls        int    `db:"calls"`
	InputTokens  int    `db:"input_tokens"`
	OutputTokens int    `db:"output_tokens"`
}

// EventRepo provides append and query access to LLM request events.
type EventRepo interface {
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMEvents returns events newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMRequestEventRecord, error)

	// GetLLMEvent returns nil, nil when the event does not exist.
	GetLLMEvent(ctx context.Context, id int) (*LLMRequestEventRecord, error)

	LLMUsageByPurpose(ctx context.Context) ([]LLMUsageStats, error)
	LLMUsageByModel(ctx context.Context) ([]LLMModelUsage, error)
}
