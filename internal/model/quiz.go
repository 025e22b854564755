package model

import "time"

// Difficulty levels accepted by the quiz contract. Anything else coming
// back from the model is coerced to DifficultyMedium.
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// OptionsPerQuestion is the number of answer options every question must
// carry after repair.
const OptionsPerQuestion = 4

// MaxRelatedTopics caps the related-topics list stored with a quiz.
const MaxRelatedTopics = 5

// QuizQuestion is a single multiple-choice question.
// Invariants (enforced by the contract decoder): exactly four options,
// and Answer is always one of them.
type QuizQuestion struct {
	Question    string   `json:"question"`
	Options     []string `json:"options"`
	Answer      string   `json:"answer"`
	Difficulty  string   `json:"difficulty"`
	Explanation string   `json:"explanation"`
	Section     string   `json:"section,omitempty"` // Most relevant article section, if the model named one
}

// GeneratedQuiz is the orchestrator's output for one article.
type GeneratedQuiz struct {
	Questions     []QuizQuestion `json:"quiz"`
	RelatedTopics []string       `json:"related_topics"`
}

// EntityBundle holds best-effort named entities extracted from the article.
// An empty bundle is a valid result; entity extraction never blocks quiz
// generation.
type EntityBundle struct {
	People        []string `json:"people"`
	Organizations []string `json:"organizations"`
	Locations     []string `json:"locations"`
}

// QuizRecord is the persisted form of a generated quiz, keyed by source URL.
// Records are written once and never updated.
type QuizRecord struct {
	ID            int64          `json:"id"`
	URL           string         `json:"url"`
	Title         string         `json:"title"`
	Summary       string         `json:"summary"`
	Entities      EntityBundle   `json:"key_entities"`
	Sections      []string       `json:"sections"`
	Questions     []QuizQuestion `json:"quiz"`
	RelatedTopics []string       `json:"related_topics"`
	RawHTML       string         `json:"-"`
	CreatedAt     time.Time      `json:"created_at"`
}

// QuizRecordSummary is the slim projection used for history listings.
type QuizRecordSummary struct {
	ID        int64     `json:"id"`
	URL       string    `json:"url"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}
