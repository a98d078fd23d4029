package store

import (
	"context"
	"time"

	"github.com/abhisek/sqldrill/internal/quiz"
)

// QuestionFilter narrows question queries. Zero values mean "any".
type QuestionFilter struct {
	Type       quiz.QuestionType
	Difficulty quiz.Difficulty
	Limit      int
	Offset     int
}

// QuestionRepo reads the question bank. Questions are returned by
// value: rows are copied into quiz.Question and callers never touch
// storage state.
type QuestionRepo interface {
	// Active returns active questions matching the filter, ordered by id.
	Active(ctx context.Context, f QuestionFilter) ([]*quiz.Question, error)

	// ByID loads one question with its options and reference answer.
	// Returns (nil, nil) when no such question exists.
	ByID(ctx context.Context, id int64) (*quiz.Question, error)

	// UnattemptedBy returns all active questions the user has never
	// attempted.
	UnattemptedBy(ctx context.Context, userID string) ([]*quiz.Question, error)

	// SetExplanation writes back a synthesized explanation. Last write
	// wins; explanation content is advisory.
	SetExplanation(ctx context.Context, questionID int64, text string) error
}

// AttemptHistory is one historical attempt joined with its question.
type AttemptHistory struct {
	QuestionID int64
	Body       string
	Difficulty quiz.Difficulty
	Correct    bool
	Score      float64
	AnswerTime time.Time
}

// TypeStats aggregates attempts for one question type.
type TypeStats struct {
	Type     quiz.QuestionType
	Attempts int
	Correct  int
}

// UserStats summarizes a user's attempt history.
type UserStats struct {
	Total    int
	Correct  int
	Accuracy float64
	ByType   []TypeStats
}

// MissedQuestion is a question the user keeps getting wrong.
type MissedQuestion struct {
	QuestionID int64
	Body       string
	Misses     int
}

// AttemptRepo appends and reads the append-only attempt history.
type AttemptRepo interface {
	// Append records one attempt. Attempts are never updated or deleted
	// by the application.
	Append(ctx context.Context, a *quiz.Attempt) error

	// Recent returns the user's most recent attempts (newest first)
	// joined with question body and difficulty.
	Recent(ctx context.Context, userID string, limit int) ([]AttemptHistory, error)

	// Stats aggregates totals, accuracy and per-type counts.
	Stats(ctx context.Context, userID string) (*UserStats, error)

	// MostMissed returns the questions the user answered incorrectly
	// most often.
	MostMissed(ctx context.Context, userID string, limit int) ([]MissedQuestion, error)
}
