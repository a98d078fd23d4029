package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/abhisek/sqldrill/internal/quiz"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	cfg := Config{
		Driver:       "sqlite",
		DSN:          filepath.Join(t.TempDir(), "test.db"),
		MaxOpenConns: 4,
	}
	s, err := Open(cfg, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func seedTestStore(t *testing.T, s *Store) {
	t.Helper()
	if _, err := s.Seed(context.Background()); err != nil {
		t.Fatalf("Seed: %v", err)
	}
}

func TestOpen_RejectsUnknownDriver(t *testing.T) {
	_, err := Open(Config{Driver: "oracle", DSN: "x"}, nil)
	if err == nil {
		t.Fatal("expected error for unsupported driver")
	}
}

func TestSeed_PopulatesEmptyDatabaseOnce(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	n, err := s.Seed(ctx)
	if err != nil {
		t.Fatalf("Seed: %v", err)
	}
	if n == 0 {
		t.Fatal("expected starter bank to be inserted")
	}

	again, err := s.Seed(ctx)
	if err != nil {
		t.Fatalf("second Seed: %v", err)
	}
	if again != 0 {
		t.Fatalf("second seed inserted %d questions, want 0", again)
	}
}

func TestQuestionRepo_ActiveFilters(t *testing.T) {
	s := openTestStore(t)
	seedTestStore(t, s)
	ctx := context.Background()
	repo := s.QuestionRepo()

	all, err := repo.Active(ctx, QuestionFilter{})
	if err != nil {
		t.Fatalf("Active: %v", err)
	}
	if len(all) == 0 {
		t.Fatal("expected seeded questions")
	}

	tf, err := repo.Active(ctx, QuestionFilter{Type: quiz.TypeTrueFalse})
	if err != nil {
		t.Fatalf("Active by type: %v", err)
	}
	for _, q := range tf {
		if q.Type != quiz.TypeTrueFalse {
			t.Errorf("question %d has type %s, want true_false", q.ID, q.Type)
		}
	}
	if len(tf) == 0 || len(tf) == len(all) {
		t.Fatalf("type filter had no effect: %d of %d", len(tf), len(all))
	}

	limited, err := repo.Active(ctx, QuestionFilter{Limit: 2})
	if err != nil {
		t.Fatalf("Active with limit: %v", err)
	}
	if len(limited) != 2 {
		t.Fatalf("limit ignored: got %d questions", len(limited))
	}
}

func TestQuestionRepo_ByIDLoadsOptionsAndAnswer(t *testing.T) {
	s := openTestStore(t)
	seedTestStore(t, s)
	ctx := context.Background()
	repo := s.QuestionRepo()

	mc, err := repo.Active(ctx, QuestionFilter{Type: quiz.TypeMultipleChoice, Limit: 1})
	if err != nil || len(mc) != 1 {
		t.Fatalf("load one multiple choice: %v (%d)", err, len(mc))
	}

	q, err := repo.ByID(ctx, mc[0].ID)
	if err != nil {
		t.Fatalf("ByID: %v", err)
	}
	if q == nil {
		t.Fatal("ByID returned nil for existing question")
	}
	if len(q.Options) != 4 {
		t.Fatalf("want 4 options, got %d", len(q.Options))
	}
	if q.Answer == "" {
		t.Fatal("reference answer missing")
	}
	if len(q.CorrectOptionIDs()) == 0 {
		t.Fatal("no options flagged correct")
	}
}

func TestQuestionRepo_ByIDMissingIsNilNil(t *testing.T) {
	s := openTestStore(t)
	seedTestStore(t, s)

	q, err := s.QuestionRepo().ByID(context.Background(), 999999)
	if err != nil {
		t.Fatalf("ByID: %v", err)
	}
	if q != nil {
		t.Fatalf("want nil for missing question, got %+v", q)
	}
}

func TestQuestionRepo_SetExplanation(t *testing.T) {
	s := openTestStore(t)
	seedTestStore(t, s)
	ctx := context.Background()
	repo := s.QuestionRepo()

	all, err := repo.Active(ctx, QuestionFilter{Limit: 1})
	if err != nil || len(all) != 1 {
		t.Fatalf("load question: %v", err)
	}

	if err := repo.SetExplanation(ctx, all[0].ID, "because reasons"); err != nil {
		t.Fatalf("SetExplanation: %v", err)
	}

	q, err := repo.ByID(ctx, all[0].ID)
	if err != nil {
		t.Fatalf("ByID: %v", err)
	}
	if q.Explanation != "because reasons" {
		t.Fatalf("explanation not persisted: %q", q.Explanation)
	}
}

func TestAttemptRepo_AppendRecentAndUnattempted(t *testing.T) {
	s := openTestStore(t)
	seedTestStore(t, s)
	ctx := context.Background()
	questions := s.QuestionRepo()
	attempts := s.AttemptRepo()

	all, err := questions.Active(ctx, QuestionFilter{})
	if err != nil {
		t.Fatalf("Active: %v", err)
	}

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	for i, q := range all[:3] {
		err := attempts.Append(ctx, &quiz.Attempt{
			ID:         "att-" + string(rune('a'+i)),
			UserID:     "u1",
			QuestionID: q.ID,
			Answer:     "x",
			Correct:    i%2 == 0,
			Score:      float64(i) / 2,
			CreatedAt:  base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	recent, err := attempts.Recent(ctx, "u1", 2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("want 2 recent attempts, got %d", len(recent))
	}
	if recent[0].QuestionID != all[2].ID {
		t.Fatalf("newest attempt first: got question %d, want %d",
			recent[0].QuestionID, all[2].ID)
	}
	if recent[0].Body == "" || recent[0].Difficulty == 0 {
		t.Fatal("history rows must join question body and difficulty")
	}

	unseen, err := questions.UnattemptedBy(ctx, "u1")
	if err != nil {
		t.Fatalf("UnattemptedBy: %v", err)
	}
	if len(unseen) != len(all)-3 {
		t.Fatalf("want %d unattempted, got %d", len(all)-3, len(unseen))
	}
	for _, q := range unseen {
		for _, seen := range all[:3] {
			if q.ID == seen.ID {
				t.Fatalf("question %d was attempted but still recommended", q.ID)
			}
		}
	}
}

func TestAttemptRepo_StatsAndMostMissed(t *testing.T) {
	s := openTestStore(t)
	seedTestStore(t, s)
	ctx := context.Background()
	attempts := s.AttemptRepo()

	all, err := s.QuestionRepo().Active(ctx, QuestionFilter{})
	if err != nil {
		t.Fatalf("Active: %v", err)
	}
	target := all[0]

	// Two misses on the same question, one correct on another.
	for i, correct := range []bool{false, false, true} {
		qid := target.ID
		if correct {
			qid = all[1].ID
		}
		err := attempts.Append(ctx, &quiz.Attempt{
			ID:         "s" + string(rune('a'+i)),
			UserID:     "u2",
			QuestionID: qid,
			Answer:     "x",
			Correct:    correct,
		})
		if err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	stats, err := attempts.Stats(ctx, "u2")
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Total != 3 || stats.Correct != 1 {
		t.Fatalf("stats: total %d correct %d, want 3/1", stats.Total, stats.Correct)
	}
	if stats.Accuracy < 0.33 || stats.Accuracy > 0.34 {
		t.Fatalf("accuracy %v, want ~0.333", stats.Accuracy)
	}

	missed, err := attempts.MostMissed(ctx, "u2", 5)
	if err != nil {
		t.Fatalf("MostMissed: %v", err)
	}
	if len(missed) != 1 || missed[0].QuestionID != target.ID || missed[0].Misses != 2 {
		t.Fatalf("unexpected missed list: %+v", missed)
	}
}

func TestGateway_ExecTxRollsBackOnFailure(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	err := s.Gateway().ExecTx(ctx, []Stmt{
		{SQL: `INSERT INTO questions (content, type_id, difficulty_level, is_active) VALUES ('tx test', 2, 1, 1)`},
		{SQL: `INSERT INTO no_such_table (x) VALUES (1)`},
	})
	if err == nil {
		t.Fatal("expected transaction to fail")
	}

	row, err := s.Gateway().FetchOne(ctx,
		`SELECT question_id FROM questions WHERE content = ?`, "tx test")
	if err != nil {
		t.Fatalf("FetchOne: %v", err)
	}
	if row != nil {
		t.Fatal("failed transaction must leave no rows behind")
	}
}

func TestRow_Int64ReadsDriverStringValues(t *testing.T) {
	// The MySQL driver hands back SUM() and DECIMAL aggregates as
	// []byte, which scanRows folds into strings. Those must still read
	// as integers or per-user stats silently zero out.
	row := Row{"correct": "2", "attempts": int64(3), "junk": "abc"}

	if got := row.Int64("correct"); got != 2 {
		t.Fatalf("Int64 on aggregate string: got %d, want 2", got)
	}
	if got := row.Int64("attempts"); got != 3 {
		t.Fatalf("Int64 on int64: got %d, want 3", got)
	}
	if got := row.Int64("junk"); got != 0 {
		t.Fatalf("Int64 on non-numeric string: got %d, want 0", got)
	}
	if got := row.Int64("missing"); got != 0 {
		t.Fatalf("Int64 on absent column: got %d, want 0", got)
	}
}

func TestGateway_FetchOneNoRow(t *testing.T) {
	s := openTestStore(t)

	row, err := s.Gateway().FetchOne(context.Background(),
		`SELECT question_id FROM questions WHERE question_id = ?`, 12345)
	if err != nil {
		t.Fatalf("FetchOne: %v", err)
	}
	if row != nil {
		t.Fatalf("want nil row, got %v", row)
	}
}
