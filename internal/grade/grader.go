// Package grade scores free-text answers and synthesizes explanations
// through a remote model. Everything here is advisory: callers fall
// back to local heuristics or placeholders when grading fails.
package grade

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/abhisek/sqldrill/internal/cache"
	"github.com/abhisek/sqldrill/internal/llm"
	"github.com/abhisek/sqldrill/internal/logger"
	"github.com/abhisek/sqldrill/internal/quiz"
)

// DefaultTimeout bounds one grading call. Kept short: past this the
// keyword fallback gives a faster, good-enough answer.
const DefaultTimeout = 30 * time.Second

// gradeSchema is the structured output contract for grading.
var gradeSchema = &llm.Schema{
	Name: "answer-grade",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"score": map[string]any{
				"type":    "number",
				"minimum": 0,
				"maximum": 1,
			},
			"feedback": map[string]any{
				"type": "string",
			},
		},
		"required":             []any{"score", "feedback"},
		"additionalProperties": false,
	},
}

// gradeResult mirrors gradeSchema.
type gradeResult struct {
	Score    float64 `json:"score"`
	Feedback string  `json:"feedback"`
}

// Grader implements quiz.Grader on top of a chat-completion provider.
// Results are cached by fingerprint so an identical resubmission never
// triggers a second remote call and never receives a different,
// inconsistent score.
type Grader struct {
	provider llm.Provider
	cache    *cache.Cache
	log      *logger.Logger
	timeout  time.Duration
}

// NewGrader creates a Grader. cache may be nil to disable result
// caching; timeout <= 0 selects DefaultTimeout.
func NewGrader(provider llm.Provider, c *cache.Cache, log *logger.Logger, timeout time.Duration) *Grader {
	if log == nil {
		log = logger.Nop()
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Grader{provider: provider, cache: c, log: log, timeout: timeout}
}

// Grade scores the submitted answer against the question's reference
// answer. The score is in [0,1].
func (g *Grader) Grade(ctx context.Context, q *quiz.Question, answer string) (float64, string, error) {
	fp := quiz.Fingerprint(q.ID, answer, q.Type)

	if g.cache != nil {
		var cached gradeResult
		if g.cache.Get(fp, &cached) {
			g.log.Debug("grade cache hit", "question_id", q.ID)
			return cached.Score, cached.Feedback, nil
		}
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.provider.Generate(ctx, llm.Request{
		System:    gradeSystemPrompt,
		Prompt:    buildGradePrompt(q, answer),
		Schema:    gradeSchema,
		MaxTokens: 512,
	})
	if err != nil {
		return 0, "", fmt.Errorf("grade answer: %w", err)
	}

	var result gradeResult
	if err := json.Unmarshal(resp.Content, &result); err != nil {
		return 0, "", fmt.Errorf("parse grade response: %w", err)
	}

	// Scores stay in [0,1] even when the provider skips schema
	// enforcement.
	if result.Score < 0 {
		result.Score = 0
	}
	if result.Score > 1 {
		result.Score = 1
	}

	if g.cache != nil {
		g.cache.Set(fp, result)
	}
	return result.Score, result.Feedback, nil
}

const gradeSystemPrompt = `You grade answers to MySQL study questions. ` +
	`Compare the learner's answer with the reference answer and return a ` +
	`score between 0 and 1 plus one or two sentences of feedback. Award ` +
	`partial credit for partially correct answers; do not penalize extra ` +
	`correct material.`

func buildGradePrompt(q *quiz.Question, answer string) string {
	return fmt.Sprintf(
		"Question:\n%s\n\nReference answer:\n%s\n\nLearner answer:\n%s",
		q.Body, q.Answer, answer)
}
