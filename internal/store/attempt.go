package store

import (
	"context"
	"sort"
	"time"

	"github.com/abhisek/sqldrill/internal/quiz"
)

// timeFormat is the answer_time column format, chosen to be readable by
// both MySQL DATETIME and SQLite TEXT columns.
const timeFormat = "2006-01-02 15:04:05"

// attemptRepo implements AttemptRepo on the gateway.
type attemptRepo struct {
	gw *Gateway
}

func (r *attemptRepo) Append(ctx context.Context, a *quiz.Attempt) error {
	at := a.CreatedAt
	if at.IsZero() {
		at = time.Now()
	}
	return r.gw.ExecTx(ctx, []Stmt{{
		SQL: `INSERT INTO user_answer_history
			(attempt_id, user_id, question_id, user_answer, is_correct, score, answer_time)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
		Args: []any{a.ID, a.UserID, a.QuestionID, a.Answer, boolToInt(a.Correct), a.Score, at.UTC().Format(timeFormat)},
	}})
}

func (r *attemptRepo) Recent(ctx context.Context, userID string, limit int) ([]AttemptHistory, error) {
	rows, err := r.gw.Query(ctx, `
		SELECT h.question_id, q.content, q.difficulty_level, h.is_correct, h.score, h.answer_time
		FROM user_answer_history h
		JOIN questions q ON q.question_id = h.question_id
		WHERE h.user_id = ?
		ORDER BY h.answer_time DESC, h.id DESC
		LIMIT ?`, userID, limit)
	if err != nil {
		return nil, err
	}

	out := make([]AttemptHistory, 0, len(rows))
	for _, row := range rows {
		at, _ := time.Parse(timeFormat, row.Str("answer_time"))
		out = append(out, AttemptHistory{
			QuestionID: row.Int64("question_id"),
			Body:       row.Str("content"),
			Difficulty: quiz.Difficulty(row.Int64("difficulty_level")),
			Correct:    row.Bool("is_correct"),
			Score:      row.Float("score"),
			AnswerTime: at,
		})
	}
	return out, nil
}

func (r *attemptRepo) Stats(ctx context.Context, userID string) (*UserStats, error) {
	rows, err := r.gw.Query(ctx, `
		SELECT q.type_id, COUNT(*) AS attempts, SUM(h.is_correct) AS correct
		FROM user_answer_history h
		JOIN questions q ON q.question_id = h.question_id
		WHERE h.user_id = ?
		GROUP BY q.type_id`, userID)
	if err != nil {
		return nil, err
	}

	stats := &UserStats{}
	for _, row := range rows {
		ts := TypeStats{
			Type:     quiz.QuestionType(row.Int64("type_id")),
			Attempts: int(row.Int64("attempts")),
			Correct:  int(row.Int64("correct")),
		}
		stats.Total += ts.Attempts
		stats.Correct += ts.Correct
		stats.ByType = append(stats.ByType, ts)
	}
	sort.Slice(stats.ByType, func(i, j int) bool {
		return stats.ByType[i].Type < stats.ByType[j].Type
	})
	if stats.Total > 0 {
		stats.Accuracy = float64(stats.Correct) / float64(stats.Total)
	}
	return stats, nil
}

func (r *attemptRepo) MostMissed(ctx context.Context, userID string, limit int) ([]MissedQuestion, error) {
	rows, err := r.gw.Query(ctx, `
		SELECT h.question_id, q.content, COUNT(*) AS misses
		FROM user_answer_history h
		JOIN questions q ON q.question_id = h.question_id
		WHERE h.user_id = ? AND h.is_correct = 0
		GROUP BY h.question_id, q.content
		ORDER BY misses DESC, h.question_id
		LIMIT ?`, userID, limit)
	if err != nil {
		return nil, err
	}

	out := make([]MissedQuestion, 0, len(rows))
	for _, row := range rows {
		out = append(out, MissedQuestion{
			QuestionID: row.Int64("question_id"),
			Body:       row.Str("content"),
			Misses:     int(row.Int64("misses")),
		})
	}
	return out, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
