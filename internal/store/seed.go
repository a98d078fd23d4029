package store

import (
	"context"
	"fmt"

	"github.com/abhisek/sqldrill/internal/quiz"
)

// seedQuestion is one entry of the built-in starter bank.
type seedQuestion struct {
	body       string
	qtype      quiz.QuestionType
	difficulty quiz.Difficulty
	answer     string
	options    []seedOption // multiple choice only
}

type seedOption struct {
	label   string
	text    string
	correct bool
}

// starterBank is inserted on first run so the engine is usable before
// any generator script has populated the database.
var starterBank = []seedQuestion{
	{
		body:       "Which statement lists all databases on the server?",
		qtype:      quiz.TypeMultipleChoice,
		difficulty: quiz.DifficultyBeginner,
		answer:     "A",
		options: []seedOption{
			{"A", "SHOW DATABASES;", true},
			{"B", "LIST DATABASES;", false},
			{"C", "SELECT DATABASES;", false},
			{"D", "DESCRIBE DATABASES;", false},
		},
	},
	{
		body:       "Which of the following are valid MySQL storage engines?",
		qtype:      quiz.TypeMultipleChoice,
		difficulty: quiz.DifficultyIntermediate,
		answer:     "A,B",
		options: []seedOption{
			{"A", "InnoDB", true},
			{"B", "MyISAM", true},
			{"C", "PostgresFS", false},
			{"D", "RowStore", false},
		},
	},
	{
		body:       "A PRIMARY KEY column can contain NULL values.",
		qtype:      quiz.TypeTrueFalse,
		difficulty: quiz.DifficultyBeginner,
		answer:     "False",
	},
	{
		body:       "InnoDB supports row-level locking.",
		qtype:      quiz.TypeTrueFalse,
		difficulty: quiz.DifficultyIntermediate,
		answer:     "True",
	},
	{
		body:       "____ DATABASES; prints every database visible to the current user.",
		qtype:      quiz.TypeFillBlank,
		difficulty: quiz.DifficultyBeginner,
		answer:     "SHOW",
	},
	{
		body:       "The ____ clause groups result rows sharing column values so aggregates apply per group.",
		qtype:      quiz.TypeFillBlank,
		difficulty: quiz.DifficultyIntermediate,
		answer:     "GROUP BY",
	},
	{
		body:       "Explain what an INNER JOIN returns.",
		qtype:      quiz.TypeShortAnswer,
		difficulty: quiz.DifficultyIntermediate,
		answer:     "INNER JOIN returns only matching rows from both tables",
	},
	{
		body:       "Explain the purpose of an index and its main cost.",
		qtype:      quiz.TypeShortAnswer,
		difficulty: quiz.DifficultyAdvanced,
		answer:     "An index speeds up lookups on indexed columns at the cost of slower writes and extra storage",
	},
}

// Seed inserts the starter bank when the questions table is empty.
// Returns the number of questions inserted.
func (s *Store) Seed(ctx context.Context) (int, error) {
	empty, err := s.Empty(ctx)
	if err != nil {
		return 0, err
	}
	if !empty {
		return 0, nil
	}

	for _, sq := range starterBank {
		qid, err := s.gateway.Insert(ctx,
			`INSERT INTO questions (content, type_id, difficulty_level, is_active) VALUES (?, ?, ?, 1)`,
			sq.body, int(sq.qtype), int(sq.difficulty))
		if err != nil {
			return 0, fmt.Errorf("seed question: %w", err)
		}

		stmts := []Stmt{{
			SQL:  `INSERT INTO answers (question_id, content, explanation) VALUES (?, ?, '')`,
			Args: []any{qid, sq.answer},
		}}
		for _, o := range sq.options {
			stmts = append(stmts, Stmt{
				SQL:  `INSERT INTO question_options (question_id, label, content, is_correct) VALUES (?, ?, ?, ?)`,
				Args: []any{qid, o.label, o.text, boolToInt(o.correct)},
			})
		}
		if err := s.gateway.ExecTx(ctx, stmts); err != nil {
			return 0, fmt.Errorf("seed question %d details: %w", qid, err)
		}
	}

	s.log.Info("seeded starter question bank", "questions", len(starterBank))
	return len(starterBank), nil
}
