package llm

import (
	"context"
	"log/slog"
	"time"
)

// LoggingProvider is a decorator that records every LLM call as a
// structured log entry: purpose, model, latency, token usage, outcome.
type LoggingProvider struct {
	inner Provider
	log   *slog.Logger
}

// WithLogging wraps a Provider with slog-based call logging.
func WithLogging(p Provider) Provider {
	return &LoggingProvider{inner: p, log: slog.Default()}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	purpose := PurposeFrom(ctx)

	resp, err := l.inner.Generate(ctx, req)

	attrs := []any{
		slog.String("purpose", purpose),
		slog.String("model", l.inner.ModelID()),
		slog.Int64("latency_ms", time.Since(start).Milliseconds()),
	}

	if resp != nil {
		attrs = append(attrs,
			slog.Int("input_tokens", resp.Usage.InputTokens),
			slog.Int("output_tokens", resp.Usage.OutputTokens),
		)
	}

	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
		l.log.WarnContext(ctx, "llm request failed", attrs...)
	} else {
		l.log.InfoContext(ctx, "llm request", attrs...)
	}

	return resp, err
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}
