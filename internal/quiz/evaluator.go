package quiz

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/abhisek/sqldrill/internal/logger"
)

// KeywordThreshold is the minimum keyword overlap ratio for a free-text
// answer to count as correct.
const KeywordThreshold = 0.7

// GradeThreshold is the minimum remote grader score for a free-text
// answer to count as correct.
const GradeThreshold = 0.7

// Grader scores a free-text answer against the question's reference
// answer, returning a score in [0,1] and human-readable feedback.
// Implementations are expected to be best-effort: the evaluator falls
// back to keyword overlap on any error.
type Grader interface {
	Grade(ctx context.Context, q *Question, answer string) (score float64, feedback string, err error)
}

// Evaluator scores submitted answers by question type. The three
// objective types are deterministic; short answers use keyword overlap,
// optionally upgraded by a remote Grader.
type Evaluator struct {
	grader Grader
	log    *logger.Logger
}

// NewEvaluator creates an Evaluator. grader may be nil, in which case
// short answers are scored by keyword overlap only.
func NewEvaluator(grader Grader, log *logger.Logger) *Evaluator {
	if log == nil {
		log = logger.Nop()
	}
	return &Evaluator{grader: grader, log: log}
}

// Evaluate scores the submitted answer for q.
//
// An empty submission, an unrecognized question type, or a question
// missing its reference answer are rejected with an error: those are
// caller or content bugs, not wrong answers.
func (e *Evaluator) Evaluate(ctx context.Context, q *Question, submitted string) (*Evaluation, error) {
	if strings.TrimSpace(submitted) == "" {
		return nil, ErrEmptyAnswer
	}

	switch q.Type {
	case TypeMultipleChoice:
		return e.evaluateMultipleChoice(q, submitted)
	case TypeTrueFalse, TypeFillBlank:
		return e.evaluateExact(q, submitted)
	case TypeShortAnswer:
		return e.evaluateShortAnswer(ctx, q, submitted)
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownType, int(q.Type))
	}
}

// evaluateMultipleChoice checks exact set equality between the selected
// option IDs and the options flagged correct. Order does not matter;
// partial subsets and supersets are wrong.
func (e *Evaluator) evaluateMultipleChoice(q *Question, submitted string) (*Evaluation, error) {
	correct := q.CorrectOptionIDs()
	if len(correct) == 0 {
		return nil, fmt.Errorf("question %d: %w", q.ID, ErrMissingReference)
	}

	selected, ok := parseSelections(submitted, q.Options)
	if !ok || len(selected) != len(correct) {
		return incorrectEval(q), nil
	}
	for id := range selected {
		if !correct[id] {
			return incorrectEval(q), nil
		}
	}
	return &Evaluation{Correct: true, Score: 1.0, Feedback: "Correct!"}, nil
}

// evaluateExact handles true/false and fill-blank questions:
// whitespace-trimmed, case-insensitive equality with the reference.
func (e *Evaluator) evaluateExact(q *Question, submitted string) (*Evaluation, error) {
	ref := strings.TrimSpace(q.Answer)
	if ref == "" {
		return nil, fmt.Errorf("question %d: %w", q.ID, ErrMissingReference)
	}

	if strings.EqualFold(strings.TrimSpace(submitted), ref) {
		return &Evaluation{Correct: true, Score: 1.0, Feedback: "Correct!"}, nil
	}
	return incorrectEval(q), nil
}

// evaluateShortAnswer delegates to the remote grader when one is
// configured and falls back to local keyword overlap on any grader
// failure. The remote score is advisory; keyword overlap is the
// authoritative local measure.
func (e *Evaluator) evaluateShortAnswer(ctx context.Context, q *Question, submitted string) (*Evaluation, error) {
	if strings.TrimSpace(q.Answer) == "" {
		return nil, fmt.Errorf("question %d: %w", q.ID, ErrMissingReference)
	}

	if e.grader != nil {
		score, feedback, err := e.grader.Grade(ctx, q, submitted)
		if err == nil {
			return &Evaluation{
				Correct:  score >= GradeThreshold,
				Score:    score,
				Feedback: feedback,
			}, nil
		}
		e.log.Warn("remote grading failed, falling back to keyword overlap",
			"question_id", q.ID, "error", err)
	}

	ratio := OverlapRatio(submitted, q.Answer)
	return &Evaluation{
		Correct:  ratio >= KeywordThreshold,
		Score:    ratio,
		Feedback: fmt.Sprintf("Matched %.0f%% of reference keywords.", ratio*100),
	}, nil
}

// parseSelections converts a submission like "A,C", "a c" or "1,3" into
// the set of selected option IDs. Letters and numbers are both
// positional: A and 1 name the first option as displayed, regardless of
// the option's storage ID. Returns ok=false when any token is
// unparsable or out of range; that submission is simply wrong, not an
// error.
func parseSelections(submitted string, options []Option) (map[int64]bool, bool) {
	fields := strings.FieldsFunc(submitted, func(r rune) bool {
		return r == ',' || r == ';' || r == ' ' || r == '\t'
	})
	if len(fields) == 0 {
		return nil, false
	}

	selected := make(map[int64]bool, len(fields))
	for _, f := range fields {
		f = strings.TrimSpace(f)

		var idx int
		if len(f) == 1 && f[0] >= 'A' && f[0] <= 'Z' || len(f) == 1 && f[0] >= 'a' && f[0] <= 'z' {
			idx = int(strings.ToUpper(f)[0] - 'A')
		} else {
			n, err := strconv.ParseInt(f, 10, 64)
			if err != nil {
				return nil, false
			}
			idx = int(n) - 1
		}
		if idx < 0 || idx >= len(options) {
			return nil, false
		}
		selected[options[idx].ID] = true
	}
	return selected, true
}

// incorrectEval builds the standard wrong-answer evaluation, naming the
// correct answer in the feedback.
func incorrectEval(q *Question) *Evaluation {
	feedback := "Incorrect."
	if q.Type == TypeMultipleChoice {
		var labels []string
		for _, o := range q.Options {
			if o.Correct {
				labels = append(labels, o.Label)
			}
		}
		if len(labels) > 0 {
			feedback = fmt.Sprintf("Incorrect. Correct answer: %s", strings.Join(labels, ", "))
		}
	} else if q.Answer != "" {
		feedback = fmt.Sprintf("Incorrect. Correct answer: %s", strings.TrimSpace(q.Answer))
	}
	return &Evaluation{Correct: false, Score: 0, Feedback: feedback}
}
