package progress

import (
	"context"
	"sync"
	"time"

	"github.com/abhisek/sqldrill/internal/logger"
	"github.com/abhisek/sqldrill/internal/quiz"
	"github.com/abhisek/sqldrill/internal/store"
)

const (
	defaultQueueSize = 64
	writeAttempts    = 3
	writeRetryDelay  = 200 * time.Millisecond
	writeTimeout     = 5 * time.Second
)

// AttemptWriter persists attempts off the interaction path. Writes go
// through a bounded queue to a single worker; a full queue or an
// exhausted retry budget drops the attempt with a log line. History
// feeds statistics only, so losing a row under pressure beats blocking
// the learner.
type AttemptWriter struct {
	repo store.AttemptRepo
	log  *logger.Logger

	ch   chan *quiz.Attempt
	wg   sync.WaitGroup
	once sync.Once
}

// NewAttemptWriter starts a writer with the given queue capacity
// (<= 0 selects the default).
func NewAttemptWriter(repo store.AttemptRepo, log *logger.Logger, queueSize int) *AttemptWriter {
	if log == nil {
		log = logger.Nop()
	}
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}

	w := &AttemptWriter{
		repo: repo,
		log:  log,
		ch:   make(chan *quiz.Attempt, queueSize),
	}
	w.wg.Add(1)
	go w.run()
	return w
}

// Enqueue submits an attempt for background persistence. Never blocks:
// if the queue is full the attempt is dropped and logged.
func (w *AttemptWriter) Enqueue(a *quiz.Attempt) {
	select {
	case w.ch <- a:
	default:
		w.log.Warn("attempt queue full, dropping write",
			"user_id", a.UserID, "question_id", a.QuestionID)
	}
}

// Close stops accepting attempts and blocks until queued writes have
// been flushed.
func (w *AttemptWriter) Close() {
	w.once.Do(func() { close(w.ch) })
	w.wg.Wait()
}

func (w *AttemptWriter) run() {
	defer w.wg.Done()
	for a := range w.ch {
		w.write(a)
	}
}

func (w *AttemptWriter) write(a *quiz.Attempt) {
	var err error
	for attempt := 1; attempt <= writeAttempts; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		err = w.repo.Append(ctx, a)
		cancel()
		if err == nil {
			return
		}
		if attempt < writeAttempts {
			time.Sleep(writeRetryDelay * time.Duration(attempt))
		}
	}
	w.log.Error("attempt write failed, dropping",
		"user_id", a.UserID, "question_id", a.QuestionID, "error", err)
}
