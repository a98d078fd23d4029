// Package recommend ranks unseen questions for a learner by comparing
// question embeddings against a profile vector derived from recent
// attempt history.
package recommend

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/abhisek/sqldrill/internal/embed"
	"github.com/abhisek/sqldrill/internal/logger"
	"github.com/abhisek/sqldrill/internal/quiz"
	"github.com/abhisek/sqldrill/internal/store"
)

const (
	// profileWindow is how many recent attempts feed the profile.
	profileWindow = 50

	// embedConcurrency bounds parallel embedding calls.
	embedConcurrency = 8
)

// Scored pairs a question with its similarity to the learner profile.
type Scored struct {
	Question   *quiz.Question
	Similarity float64
}

// Recommender computes learner profiles and ranks unseen questions.
type Recommender struct {
	questions store.QuestionRepo
	attempts  store.AttemptRepo
	embedder  embed.Embedder
	log       *logger.Logger
}

// New creates a Recommender.
func New(questions store.QuestionRepo, attempts store.AttemptRepo, embedder embed.Embedder, log *logger.Logger) *Recommender {
	if log == nil {
		log = logger.Nop()
	}
	return &Recommender{
		questions: questions,
		attempts:  attempts,
		embedder:  embedder,
		log:       log,
	}
}

// Profile computes the learner's profile vector: the average of recent
// attempted-question embeddings, each scaled by correctness times the
// question's difficulty weight. Returns a zero-length vector when the
// learner has no history; callers must treat that as "no preference".
//
// The profile is recomputed per call. History moves with every attempt
// and the embeddings underneath are cached, so caching the profile
// itself would only serve stale preferences.
func (r *Recommender) Profile(ctx context.Context, userID string) ([]float32, error) {
	history, err := r.attempts.Recent(ctx, userID, profileWindow)
	if err != nil {
		return nil, fmt.Errorf("load attempt history: %w", err)
	}
	if len(history) == 0 {
		return nil, nil
	}

	vectors := make([][]float32, len(history))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(embedConcurrency)
	for i, h := range history {
		g.Go(func() error {
			vec, err := r.embedder.Embed(gctx, h.Body)
			if err != nil {
				return fmt.Errorf("embed question %d: %w", h.QuestionID, err)
			}
			vectors[i] = vec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	dim := len(vectors[0])
	sum := make([]float64, dim)
	for i, h := range history {
		if len(vectors[i]) != dim {
			return nil, fmt.Errorf("embed question %d: dimension %d, want %d",
				h.QuestionID, len(vectors[i]), dim)
		}
		weight := 0.0
		if h.Correct {
			weight = h.Difficulty.Weight()
		}
		for j, x := range vectors[i] {
			sum[j] += float64(x) * weight
		}
	}

	profile := make([]float32, dim)
	for j := range sum {
		profile[j] = float32(sum[j] / float64(len(history)))
	}
	return profile, nil
}

// Recommend returns up to n active questions the user has never
// attempted, ordered by descending similarity to the profile vector.
// With no usable profile (cold start, or all recent attempts wrong)
// questions come back in storage order instead. Any embedding failure
// aborts the whole call: a partial ranking is worse than none.
func (r *Recommender) Recommend(ctx context.Context, userID string, n int) ([]Scored, error) {
	if n <= 0 {
		return nil, nil
	}

	candidates, err := r.questions.UnattemptedBy(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load unattempted questions: %w", err)
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	profile, err := r.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(profile) == 0 || isZero(profile) {
		r.log.Debug("no usable profile, using storage order", "user_id", userID)
		if len(candidates) > n {
			candidates = candidates[:n]
		}
		scored := make([]Scored, len(candidates))
		for i, q := range candidates {
			scored[i] = Scored{Question: q}
		}
		return scored, nil
	}

	scored := make([]Scored, len(candidates))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(embedConcurrency)
	for i, q := range candidates {
		g.Go(func() error {
			vec, err := r.embedder.Embed(gctx, q.Body)
			if err != nil {
				return fmt.Errorf("embed question %d: %w", q.ID, err)
			}
			sim := Cosine(profile, vec)
			mu.Lock()
			scored[i] = Scored{Question: q, Similarity: sim}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Similarity > scored[j].Similarity
	})
	if len(scored) > n {
		scored = scored[:n]
	}
	return scored, nil
}
