package llm

import (
	"context"
	"time"

	"github.com/abhisek/sqldrill/internal/logger"
)

// LoggingProvider is a decorator that records every model request for
// later audit: latency, token usage, and failures.
type LoggingProvider struct {
	inner Provider
	log   *logger.Logger
}

// WithLogging wraps a Provider with request logging.
func WithLogging(p Provider, log *logger.Logger) Provider {
	if log == nil {
		log = logger.Nop()
	}
	return &LoggingProvider{inner: p, log: log}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	resp, err := l.inner.Generate(ctx, req)
	latency := time.Since(start)

	if err != nil {
		l.log.Warn("model request failed",
			"model", l.inner.ModelID(),
			"latency_ms", latency.Milliseconds(),
			"error", err)
		return nil, err
	}

	l.log.Debug("model request",
		"model", resp.Model,
		"latency_ms", latency.Milliseconds(),
		"input_tokens", resp.Usage.InputTokens,
		"output_tokens", resp.Usage.OutputTokens)
	return resp, nil
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}
