package quiz

import "errors"

var (
	// ErrEmptyAnswer is returned when the submitted answer is empty or
	// whitespace only. Rejected at the boundary, never scored.
	ErrEmptyAnswer = errors.New("submitted answer is empty")

	// ErrUnknownType is returned for a question type outside the closed
	// QuestionType set.
	ErrUnknownType = errors.New("unrecognized question type")

	// ErrMissingReference is returned when a question that needs a
	// reference answer has none stored. This is a content bug and is
	// surfaced to the caller instead of being silently scored wrong.
	ErrMissingReference = errors.New("question has no reference answer")

	// ErrNoQuestion is returned when an operation needs a current
	// question and the session queue is empty or exhausted.
	ErrNoQuestion = errors.New("no question available")
)
