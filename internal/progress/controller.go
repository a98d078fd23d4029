// Package progress drives the practice session: present a question,
// evaluate the submission, persist the attempt in the background, and
// either auto-advance after a difficulty-scaled delay or wait for a
// retry.
package progress

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/sqldrill/internal/logger"
	"github.com/abhisek/sqldrill/internal/quiz"
	"github.com/abhisek/sqldrill/internal/store"
)

// State is the controller's position in the session loop.
type State int

const (
	// StatePresenting waits for the learner's answer.
	StatePresenting State = iota
	// StateAutoAdvancing has a pending timer toward the next question.
	StateAutoAdvancing
	// StateAwaitingRetry waits for an explicit retry or navigation.
	StateAwaitingRetry
)

func (s State) String() string {
	switch s {
	case StatePresenting:
		return "presenting"
	case StateAutoAdvancing:
		return "auto_advancing"
	case StateAwaitingRetry:
		return "awaiting_retry"
	default:
		return "unknown"
	}
}

// Delays holds the auto-advance delay per difficulty tier.
type Delays struct {
	Beginner     time.Duration
	Intermediate time.Duration
	Advanced     time.Duration
}

// DefaultDelays returns the standard auto-advance delays.
func DefaultDelays() Delays {
	return Delays{
		Beginner:     2 * time.Second,
		Intermediate: 3 * time.Second,
		Advanced:     5 * time.Second,
	}
}

// For returns the delay for d. Unknown tiers get the shortest delay.
func (ds Delays) For(d quiz.Difficulty) time.Duration {
	switch d {
	case quiz.DifficultyBeginner:
		return ds.Beginner
	case quiz.DifficultyIntermediate:
		return ds.Intermediate
	case quiz.DifficultyAdvanced:
		return ds.Advanced
	default:
		return ds.Beginner
	}
}

// Explainer synthesizes explanation text for a question.
type Explainer interface {
	Explain(ctx context.Context, q *quiz.Question) (string, error)
}

// PlaceholderExplanation is returned when nothing is stored and
// synthesis is unavailable or failed.
const PlaceholderExplanation = "No explanation available yet."

// Controller runs one learner's session over a fixed question queue.
// All methods are called from the interaction loop; only the
// auto-advance timer fires from another goroutine, so state is guarded
// by the store's session serialization plus the timer handshake below.
type Controller struct {
	userID    string
	queue     []*quiz.Question
	idx       int
	state     State
	evaluator *quiz.Evaluator
	writer    *AttemptWriter
	explainer Explainer
	questions store.QuestionRepo
	log       *logger.Logger
	delays    Delays

	timer   *time.Timer
	timerID int // invalidates stale timer callbacks

	// OnAdvance, when set, is called after an auto-advance lands on a
	// new question.
	OnAdvance func(q *quiz.Question)

	advanceMu chan struct{} // 1-token semaphore, see lock/unlock
}

// NewController creates a session controller over the given queue.
func NewController(userID string, queue []*quiz.Question, evaluator *quiz.Evaluator, writer *AttemptWriter, explainer Explainer, questions store.QuestionRepo, delays Delays, log *logger.Logger) *Controller {
	if log == nil {
		log = logger.Nop()
	}
	c := &Controller{
		userID:    userID,
		queue:     queue,
		evaluator: evaluator,
		writer:    writer,
		explainer: explainer,
		questions: questions,
		log:       log,
		delays:    delays,
		advanceMu: make(chan struct{}, 1),
	}
	c.advanceMu <- struct{}{}
	return c
}

func (c *Controller) lock()   { <-c.advanceMu }
func (c *Controller) unlock() { c.advanceMu <- struct{}{} }

// Current returns the question being presented, or nil for an empty
// queue.
func (c *Controller) Current() *quiz.Question {
	c.lock()
	defer c.unlock()
	if c.idx < 0 || c.idx >= len(c.queue) {
		return nil
	}
	return c.queue[c.idx]
}

// State returns the controller state.
func (c *Controller) State() State {
	c.lock()
	defer c.unlock()
	return c.state
}

// Index returns the current position and queue length.
func (c *Controller) Index() (int, int) {
	c.lock()
	defer c.unlock()
	return c.idx, len(c.queue)
}

// Submit evaluates the learner's answer for the current question,
// queues the attempt for background persistence, and transitions to
// auto-advance (correct) or awaiting-retry (incorrect). The attempt
// write never blocks the transition.
func (c *Controller) Submit(ctx context.Context, answer string) (*quiz.Evaluation, error) {
	c.lock()
	q := c.currentLocked()
	c.unlock()
	if q == nil {
		return nil, quiz.ErrNoQuestion
	}

	ev, err := c.evaluator.Evaluate(ctx, q, answer)
	if err != nil {
		return nil, err
	}

	if c.writer != nil {
		c.writer.Enqueue(&quiz.Attempt{
			ID:         uuid.NewString(),
			UserID:     c.userID,
			QuestionID: q.ID,
			Answer:     answer,
			Correct:    ev.Correct,
			Score:      ev.Score,
			CreatedAt:  time.Now(),
		})
	}

	c.lock()
	defer c.unlock()
	c.cancelTimerLocked()
	if ev.Correct {
		c.state = StateAutoAdvancing
		c.scheduleAdvanceLocked(c.delays.For(q.Difficulty))
	} else {
		c.state = StateAwaitingRetry
	}
	return ev, nil
}

// Retry returns to presenting the same question after an incorrect
// answer.
func (c *Controller) Retry() {
	c.lock()
	defer c.unlock()
	if c.state == StateAwaitingRetry {
		c.state = StatePresenting
	}
}

// Next moves to the next question, cancelling any pending
// auto-advance. Returns the new current question (nil at the end).
func (c *Controller) Next() *quiz.Question {
	return c.navigate(1)
}

// Prev moves to the previous question, cancelling any pending
// auto-advance.
func (c *Controller) Prev() *quiz.Question {
	return c.navigate(-1)
}

func (c *Controller) navigate(step int) *quiz.Question {
	c.lock()
	defer c.unlock()
	c.cancelTimerLocked()
	c.state = StatePresenting

	next := c.idx + step
	if next >= 0 && next < len(c.queue) {
		c.idx = next
	}
	return c.currentLocked()
}

// Explanation returns the explanation for the current question: the
// stored text when present, otherwise synthesized on demand with the
// result written back to storage asynchronously. Synthesis failure
// degrades to a placeholder.
func (c *Controller) Explanation(ctx context.Context) string {
	c.lock()
	q := c.currentLocked()
	c.unlock()
	if q == nil {
		return ""
	}
	if q.Explanation != "" {
		return q.Explanation
	}
	if c.explainer == nil {
		return PlaceholderExplanation
	}

	text, err := c.explainer.Explain(ctx, q)
	if err != nil {
		c.log.Warn("explanation synthesis failed",
			"question_id", q.ID, "error", err)
		return PlaceholderExplanation
	}

	q.Explanation = text
	if c.questions != nil {
		go func() {
			wctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
			defer cancel()
			if err := c.questions.SetExplanation(wctx, q.ID, text); err != nil {
				c.log.Warn("explanation write-back failed",
					"question_id", q.ID, "error", err)
			}
		}()
	}
	return text
}

// Close cancels any pending auto-advance.
func (c *Controller) Close() {
	c.lock()
	defer c.unlock()
	c.cancelTimerLocked()
}

func (c *Controller) currentLocked() *quiz.Question {
	if c.idx < 0 || c.idx >= len(c.queue) {
		return nil
	}
	return c.queue[c.idx]
}

func (c *Controller) scheduleAdvanceLocked(delay time.Duration) {
	c.timerID++
	id := c.timerID
	c.timer = time.AfterFunc(delay, func() {
		c.lock()
		defer c.unlock()
		// A navigation or new submission since scheduling makes this
		// callback stale.
		if c.timerID != id || c.state != StateAutoAdvancing {
			return
		}
		c.state = StatePresenting
		if c.idx+1 < len(c.queue) {
			c.idx++
		}
		q := c.currentLocked()
		if c.OnAdvance != nil && q != nil {
			go c.OnAdvance(q)
		}
	})
}

func (c *Controller) cancelTimerLocked() {
	c.timerID++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}
