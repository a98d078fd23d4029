package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/abhisek/sqldrill/internal/quiz"
)

// questionRepo implements QuestionRepo on the gateway.
type questionRepo struct {
	gw *Gateway
}

const questionSelect = `
	SELECT q.question_id, q.content, q.type_id, q.difficulty_level, q.is_active,
	       a.content AS answer_content, a.explanation
	FROM questions q
	LEFT JOIN answers a ON a.question_id = q.question_id`

func (r *questionRepo) Active(ctx context.Context, f QuestionFilter) ([]*quiz.Question, error) {
	var conds []string
	var args []any

	conds = append(conds, "q.is_active = 1")
	if f.Type != 0 {
		conds = append(conds, "q.type_id = ?")
		args = append(args, int(f.Type))
	}
	if f.Difficulty != 0 {
		conds = append(conds, "q.difficulty_level = ?")
		args = append(args, int(f.Difficulty))
	}

	query := questionSelect + " WHERE " + strings.Join(conds, " AND ") + " ORDER BY q.question_id"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
		if f.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, f.Offset)
		}
	}

	rows, err := r.gw.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return r.buildQuestions(ctx, rows)
}

func (r *questionRepo) ByID(ctx context.Context, id int64) (*quiz.Question, error) {
	row, err := r.gw.FetchOne(ctx, questionSelect+" WHERE q.question_id = ?", id)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, nil
	}
	qs, err := r.buildQuestions(ctx, []Row{row})
	if err != nil {
		return nil, err
	}
	return qs[0], nil
}

func (r *questionRepo) UnattemptedBy(ctx context.Context, userID string) ([]*quiz.Question, error) {
	query := questionSelect + `
	WHERE q.is_active = 1
	  AND q.question_id NOT IN (
		SELECT question_id FROM user_answer_history WHERE user_id = ?
	  )
	ORDER BY q.question_id`

	rows, err := r.gw.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	return r.buildQuestions(ctx, rows)
}

func (r *questionRepo) SetExplanation(ctx context.Context, questionID int64, text string) error {
	return r.gw.Exec(ctx,
		`UPDATE answers SET explanation = ? WHERE question_id = ?`,
		text, questionID)
}

// buildQuestions maps gateway rows to quiz.Question values and attaches
// multiple-choice options in one extra query.
func (r *questionRepo) buildQuestions(ctx context.Context, rows []Row) ([]*quiz.Question, error) {
	questions := make([]*quiz.Question, 0, len(rows))
	var mcIDs []int64

	for _, row := range rows {
		q := &quiz.Question{
			ID:          row.Int64("question_id"),
			Body:        row.Str("content"),
			Type:        quiz.QuestionType(row.Int64("type_id")),
			Difficulty:  quiz.Difficulty(row.Int64("difficulty_level")),
			Answer:      row.Str("answer_content"),
			Explanation: row.Str("explanation"),
			Active:      row.Bool("is_active"),
		}
		if q.Type == quiz.TypeMultipleChoice {
			mcIDs = append(mcIDs, q.ID)
		}
		questions = append(questions, q)
	}

	if len(mcIDs) > 0 {
		options, err := r.loadOptions(ctx, mcIDs)
		if err != nil {
			return nil, err
		}
		for _, q := range questions {
			q.Options = options[q.ID]
		}
	}
	return questions, nil
}

// loadOptions fetches the options for the given question ids, keyed by
// question id and ordered by option id so labels stay positional.
func (r *questionRepo) loadOptions(ctx context.Context, ids []int64) (map[int64][]quiz.Option, error) {
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	query := fmt.Sprintf(`
		SELECT option_id, question_id, label, content, is_correct
		FROM question_options
		WHERE question_id IN (%s)
		ORDER BY question_id, option_id`, placeholders)

	rows, err := r.gw.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	options := make(map[int64][]quiz.Option)
	for _, row := range rows {
		qid := row.Int64("question_id")
		options[qid] = append(options[qid], quiz.Option{
			ID:      row.Int64("option_id"),
			Label:   row.Str("label"),
			Text:    row.Str("content"),
			Correct: row.Bool("is_correct"),
		})
	}
	return options, nil
}
