package grade

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/abhisek/sqldrill/internal/llm"
	"github.com/abhisek/sqldrill/internal/logger"
	"github.com/abhisek/sqldrill/internal/quiz"
)

// Explainer synthesizes explanation text for questions that have none
// stored. Callers decide how to degrade when synthesis fails.
type Explainer struct {
	provider llm.Provider
	log      *logger.Logger
	timeout  time.Duration
}

// NewExplainer creates an Explainer. timeout <= 0 selects
// DefaultTimeout.
func NewExplainer(provider llm.Provider, log *logger.Logger, timeout time.Duration) *Explainer {
	if log == nil {
		log = logger.Nop()
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Explainer{provider: provider, log: log, timeout: timeout}
}

// Explain generates an explanation for q.
func (e *Explainer) Explain(ctx context.Context, q *quiz.Question) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	resp, err := e.provider.Generate(ctx, llm.Request{
		System: "You write concise explanations for MySQL study questions: " +
			"why the reference answer is correct, the concept involved, and " +
			"one practical note. Plain text, no markup.",
		Prompt:    fmt.Sprintf("Question:\n%s\n\nCorrect answer:\n%s", q.Body, q.Answer),
		MaxTokens: 1024,
	})
	if err != nil {
		return "", fmt.Errorf("generate explanation: %w", err)
	}

	text := strings.TrimSpace(strings.Trim(string(resp.Content), `"`))
	if text == "" {
		return "", fmt.Errorf("generate explanation: empty response")
	}
	return text, nil
}
