package store

import "context"

// Schema DDL per driver. Column names are shared with the queries in
// question.go and attempt.go; the two dialects differ only in key and
// type spelling.
var schemaDDL = map[string][]string{
	"mysql": {
		`CREATE TABLE IF NOT EXISTS questions (
			question_id BIGINT PRIMARY KEY AUTO_INCREMENT,
			content TEXT NOT NULL,
			type_id INT NOT NULL,
			difficulty_level INT NOT NULL DEFAULT 1,
			is_active TINYINT(1) NOT NULL DEFAULT 1
		)`,
		`CREATE TABLE IF NOT EXISTS question_options (
			option_id BIGINT PRIMARY KEY AUTO_INCREMENT,
			question_id BIGINT NOT NULL,
			label VARCHAR(8) NOT NULL,
			content TEXT NOT NULL,
			is_correct TINYINT(1) NOT NULL DEFAULT 0,
			KEY idx_options_question (question_id)
		)`,
		`CREATE TABLE IF NOT EXISTS answers (
			question_id BIGINT PRIMARY KEY,
			content TEXT NOT NULL,
			explanation TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS user_answer_history (
			id BIGINT PRIMARY KEY AUTO_INCREMENT,
			attempt_id CHAR(36) NOT NULL,
			user_id VARCHAR(64) NOT NULL,
			question_id BIGINT NOT NULL,
			user_answer TEXT NOT NULL,
			is_correct TINYINT(1) NOT NULL,
			score DOUBLE NOT NULL DEFAULT 0,
			answer_time DATETIME NOT NULL,
			KEY idx_history_user (user_id, answer_time)
		)`,
	},
	"sqlite": {
		`CREATE TABLE IF NOT EXISTS questions (
			question_id INTEGER PRIMARY KEY AUTOINCREMENT,
			content TEXT NOT NULL,
			type_id INTEGER NOT NULL,
			difficulty_level INTEGER NOT NULL DEFAULT 1,
			is_active INTEGER NOT NULL DEFAULT 1
		)`,
		`CREATE TABLE IF NOT EXISTS question_options (
			option_id INTEGER PRIMARY KEY AUTOINCREMENT,
			question_id INTEGER NOT NULL,
			label TEXT NOT NULL,
			content TEXT NOT NULL,
			is_correct INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_options_question ON question_options (question_id)`,
		`CREATE TABLE IF NOT EXISTS answers (
			question_id INTEGER PRIMARY KEY,
			content TEXT NOT NULL,
			explanation TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS user_answer_history (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			attempt_id TEXT NOT NULL,
			user_id TEXT NOT NULL,
			question_id INTEGER NOT NULL,
			user_answer TEXT NOT NULL,
			is_correct INTEGER NOT NULL,
			score REAL NOT NULL DEFAULT 0,
			answer_time TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_history_user ON user_answer_history (user_id, answer_time)`,
	},
}

// createSchema creates all tables if they do not exist.
func (s *Store) createSchema() error {
	for _, ddl := range schemaDDL[s.driver] {
		if _, err := s.db.Exec(ddl); err != nil {
			return err
		}
	}
	return nil
}

// Empty reports whether the question bank has no rows.
func (s *Store) Empty(ctx context.Context) (bool, error) {
	row, err := s.gateway.FetchOne(ctx, `SELECT COUNT(*) AS n FROM questions`)
	if err != nil {
		return false, err
	}
	return row.Int64("n") == 0, nil
}
