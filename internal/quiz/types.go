package quiz

import (
	"fmt"
	"time"
)

// QuestionType is the closed set of question kinds the evaluator knows
// how to score. Values match the type_id column seeded in storage.
type QuestionType int

const (
	TypeMultipleChoice QuestionType = iota + 1
	TypeTrueFalse
	TypeFillBlank
	TypeShortAnswer
)

func (t QuestionType) String() string {
	switch t {
	case TypeMultipleChoice:
		return "multiple_choice"
	case TypeTrueFalse:
		return "true_false"
	case TypeFillBlank:
		return "fill_blank"
	case TypeShortAnswer:
		return "short_answer"
	default:
		return fmt.Sprintf("unknown(%d)", int(t))
	}
}

// ParseQuestionType maps a type name to its QuestionType.
func ParseQuestionType(name string) (QuestionType, error) {
	switch name {
	case "multiple_choice":
		return TypeMultipleChoice, nil
	case "true_false":
		return TypeTrueFalse, nil
	case "fill_blank":
		return TypeFillBlank, nil
	case "short_answer":
		return TypeShortAnswer, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownType, name)
	}
}

// Difficulty is the question difficulty tier. Values match the
// difficulty_level column.
type Difficulty int

const (
	DifficultyBeginner Difficulty = iota + 1
	DifficultyIntermediate
	DifficultyAdvanced
)

func (d Difficulty) String() string {
	switch d {
	case DifficultyBeginner:
		return "beginner"
	case DifficultyIntermediate:
		return "intermediate"
	case DifficultyAdvanced:
		return "advanced"
	default:
		return fmt.Sprintf("unknown(%d)", int(d))
	}
}

// Weight is the difficulty contribution used when building a learner
// profile: tier / 5, so advanced attempts count 0.6 and beginner 0.2.
func (d Difficulty) Weight() float64 {
	return float64(d) / 5.0
}

// Option is one choice of a multiple-choice question. ID is the stable
// option identifier from storage; Label is the display letter (A, B, ...).
type Option struct {
	ID      int64
	Label   string
	Text    string
	Correct bool
}

// Question is an immutable quiz question copied out of storage.
type Question struct {
	ID          int64
	Body        string
	Type        QuestionType
	Difficulty  Difficulty
	Options     []Option // objective types only
	Answer      string   // reference answer text
	Explanation string
	Active      bool
}

// CorrectOptionIDs returns the set of option IDs flagged correct.
func (q *Question) CorrectOptionIDs() map[int64]bool {
	ids := make(map[int64]bool)
	for _, o := range q.Options {
		if o.Correct {
			ids[o.ID] = true
		}
	}
	return ids
}

// Attempt is one scored submission of an answer. Append-only; never
// mutated after creation.
type Attempt struct {
	ID         string
	UserID     string
	QuestionID int64
	Answer     string
	Correct    bool
	Score      float64
	CreatedAt  time.Time
}

// Evaluation is the outcome of scoring a submitted answer.
type Evaluation struct {
	Correct  bool
	Score    float64
	Feedback string
}
