package progress

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/abhisek/sqldrill/internal/quiz"
	"github.com/abhisek/sqldrill/internal/store"
)

// fakeAttemptRepo records appended attempts and can be made to fail.
type fakeAttemptRepo struct {
	mu       sync.Mutex
	attempts []*quiz.Attempt
	failWith error
	calls    int
}

func (f *fakeAttemptRepo) Append(_ context.Context, a *quiz.Attempt) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.failWith != nil {
		return f.failWith
	}
	f.attempts = append(f.attempts, a)
	return nil
}

func (f *fakeAttemptRepo) Recent(context.Context, string, int) ([]store.AttemptHistory, error) {
	return nil, nil
}

func (f *fakeAttemptRepo) Stats(context.Context, string) (*store.UserStats, error) {
	return &store.UserStats{}, nil
}

func (f *fakeAttemptRepo) MostMissed(context.Context, string, int) ([]store.MissedQuestion, error) {
	return nil, nil
}

func (f *fakeAttemptRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.attempts)
}

func testQueue() []*quiz.Question {
	return []*quiz.Question{
		{ID: 1, Body: "q1", Type: quiz.TypeTrueFalse, Difficulty: quiz.DifficultyBeginner, Answer: "True"},
		{ID: 2, Body: "q2", Type: quiz.TypeTrueFalse, Difficulty: quiz.DifficultyIntermediate, Answer: "False"},
		{ID: 3, Body: "q3", Type: quiz.TypeTrueFalse, Difficulty: quiz.DifficultyAdvanced, Answer: "True"},
	}
}

func testDelays() Delays {
	return Delays{
		Beginner:     50 * time.Millisecond,
		Intermediate: 60 * time.Millisecond,
		Advanced:     70 * time.Millisecond,
	}
}

func newTestController(repo *fakeAttemptRepo) (*Controller, *AttemptWriter) {
	w := NewAttemptWriter(repo, nil, 0)
	c := NewController("u1", testQueue(), quiz.NewEvaluator(nil, nil), w, nil, nil, testDelays(), nil)
	return c, w
}

func TestController_CorrectAnswerAutoAdvances(t *testing.T) {
	repo := &fakeAttemptRepo{}
	c, w := newTestController(repo)
	defer w.Close()
	defer c.Close()

	advanced := make(chan *quiz.Question, 1)
	c.OnAdvance = func(q *quiz.Question) { advanced <- q }

	ev, err := c.Submit(context.Background(), "true")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if !ev.Correct {
		t.Fatal("expected correct evaluation")
	}
	if c.State() != StateAutoAdvancing {
		t.Fatalf("state %v, want auto_advancing", c.State())
	}

	select {
	case q := <-advanced:
		if q.ID != 2 {
			t.Fatalf("advanced to question %d, want 2", q.ID)
		}
	case <-time.After(time.Second):
		t.Fatal("auto-advance never fired")
	}
	if c.State() != StatePresenting {
		t.Fatalf("state %v after advance, want presenting", c.State())
	}
}

func TestController_IncorrectAnswerAwaitsRetry(t *testing.T) {
	repo := &fakeAttemptRepo{}
	c, w := newTestController(repo)
	defer w.Close()
	defer c.Close()

	ev, err := c.Submit(context.Background(), "false")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if ev.Correct {
		t.Fatal("expected incorrect evaluation")
	}
	if c.State() != StateAwaitingRetry {
		t.Fatalf("state %v, want awaiting_retry", c.State())
	}

	c.Retry()
	if c.State() != StatePresenting {
		t.Fatalf("state %v after retry, want presenting", c.State())
	}
	if q := c.Current(); q == nil || q.ID != 1 {
		t.Fatal("retry must keep the same question")
	}

	// Give the background writer a moment, then confirm the failed
	// attempt was still persisted.
	w.Close()
	if repo.count() != 1 {
		t.Fatalf("want 1 persisted attempt, got %d", repo.count())
	}
	if repo.attempts[0].Correct {
		t.Fatal("persisted attempt should be marked incorrect")
	}
}

func TestController_NavigationCancelsPendingAdvance(t *testing.T) {
	repo := &fakeAttemptRepo{}
	c, w := newTestController(repo)
	defer w.Close()
	defer c.Close()

	fired := make(chan *quiz.Question, 1)
	c.OnAdvance = func(q *quiz.Question) { fired <- q }

	if _, err := c.Submit(context.Background(), "true"); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	// Navigate before the auto-advance timer fires.
	if q := c.Next(); q == nil || q.ID != 2 {
		t.Fatal("Next should land on question 2")
	}
	if c.State() != StatePresenting {
		t.Fatalf("state %v after navigation, want presenting", c.State())
	}

	select {
	case q := <-fired:
		t.Fatalf("cancelled auto-advance still fired (question %d)", q.ID)
	case <-time.After(100 * time.Millisecond):
	}

	// Navigation stays within queue bounds.
	c.Prev()
	if q := c.Current(); q.ID != 1 {
		t.Fatalf("Prev landed on %d, want 1", q.ID)
	}
	c.Prev()
	if q := c.Current(); q.ID != 1 {
		t.Fatal("Prev at the start must stay on the first question")
	}
}

func TestController_AdvanceStopsAtQueueEnd(t *testing.T) {
	repo := &fakeAttemptRepo{}
	c, w := newTestController(repo)
	defer w.Close()
	defer c.Close()

	c.Next()
	c.Next()
	if q := c.Current(); q.ID != 3 {
		t.Fatalf("setup: on question %d, want 3", q.ID)
	}

	fired := make(chan *quiz.Question, 1)
	c.OnAdvance = func(q *quiz.Question) { fired <- q }

	if _, err := c.Submit(context.Background(), "true"); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	select {
	case q := <-fired:
		if q.ID != 3 {
			t.Fatalf("advance past queue end landed on %d", q.ID)
		}
	case <-time.After(time.Second):
		t.Fatal("advance never fired")
	}
}

func TestController_SubmitOnEmptyQueue(t *testing.T) {
	c := NewController("u1", nil, quiz.NewEvaluator(nil, nil), nil, nil, nil, testDelays(), nil)
	defer c.Close()

	_, err := c.Submit(context.Background(), "true")
	if !errors.Is(err, quiz.ErrNoQuestion) {
		t.Fatalf("want ErrNoQuestion, got %v", err)
	}
}

// stubExplainer returns fixed text or an error.
type stubExplainer struct {
	text string
	err  error
}

func (s *stubExplainer) Explain(context.Context, *quiz.Question) (string, error) {
	return s.text, s.err
}

func TestController_ExplanationPrefersStoredText(t *testing.T) {
	queue := testQueue()
	queue[0].Explanation = "stored explanation"
	c := NewController("u1", queue, quiz.NewEvaluator(nil, nil), nil,
		&stubExplainer{text: "synthesized"}, nil, testDelays(), nil)
	defer c.Close()

	if got := c.Explanation(context.Background()); got != "stored explanation" {
		t.Fatalf("got %q, want stored text", got)
	}
}

func TestController_ExplanationSynthesizesAndRemembers(t *testing.T) {
	c := NewController("u1", testQueue(), quiz.NewEvaluator(nil, nil), nil,
		&stubExplainer{text: "fresh explanation"}, nil, testDelays(), nil)
	defer c.Close()

	if got := c.Explanation(context.Background()); got != "fresh explanation" {
		t.Fatalf("got %q", got)
	}
	// Second call reuses the in-memory copy.
	if got := c.Explanation(context.Background()); got != "fresh explanation" {
		t.Fatalf("got %q on second call", got)
	}
}

func TestController_ExplanationFailureDegradesToPlaceholder(t *testing.T) {
	c := NewController("u1", testQueue(), quiz.NewEvaluator(nil, nil), nil,
		&stubExplainer{err: errors.New("provider down")}, nil, testDelays(), nil)
	defer c.Close()

	if got := c.Explanation(context.Background()); got != PlaceholderExplanation {
		t.Fatalf("got %q, want placeholder", got)
	}
}

func TestAttemptWriter_FlushesOnClose(t *testing.T) {
	repo := &fakeAttemptRepo{}
	w := NewAttemptWriter(repo, nil, 8)

	for i := 0; i < 5; i++ {
		w.Enqueue(&quiz.Attempt{ID: "a", UserID: "u", QuestionID: int64(i)})
	}
	w.Close()

	if repo.count() != 5 {
		t.Fatalf("want 5 persisted attempts, got %d", repo.count())
	}
}

func TestAttemptWriter_DropsAfterRetriesExhausted(t *testing.T) {
	repo := &fakeAttemptRepo{failWith: errors.New("db gone")}
	w := NewAttemptWriter(repo, nil, 8)

	w.Enqueue(&quiz.Attempt{ID: "a", UserID: "u", QuestionID: 1})
	w.Close()

	repo.mu.Lock()
	calls := repo.calls
	repo.mu.Unlock()
	if calls != writeAttempts {
		t.Fatalf("want %d write attempts, got %d", writeAttempts, calls)
	}
	if repo.count() != 0 {
		t.Fatal("failed attempt must be dropped, not persisted")
	}
}
