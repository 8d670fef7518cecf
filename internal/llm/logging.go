package llm

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/abhisek/mltutor/internal/store"
)

type contextKey string

const purposeKey contextKey = "llm_purpose"

// WithPurpose labels the context so logged events record what the request
// was for ("explain", "evaluate", ...).
func WithPurpose(ctx context.Context, purpose string) context.Context {
	return context.WithValue(ctx, purposeKey, purpose)
}

// PurposeFrom extracts the purpose label from the context.
func PurposeFrom(ctx context.Context) string {
	if v, ok := ctx.Value(purposeKey).(string); ok {
		return v
	}
	return "unknown"
}

// loggingProvider records every request as an event. Logging failures are
// reported to stderr but never fail the request.
type loggingProvider struct {
	inner    Provider
	provider string
	events   store.EventRepo
}

// WithLogging wraps a Provider with event logging. The provider name
// ("gemini", "openai", ...) labels the events; the model comes from each
// response.
func WithLogging(p Provider, provider string, events store.EventRepo) Provider {
	return &loggingProvider{inner: p, provider: provider, events: events}
}

func (l *loggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()

	resp, err := l.inner.Generate(ctx, req)

	data := store.LLMRequestEventData{
		Provider:  l.provider,
		Model:     l.inner.ModelID(),
		Purpose:   PurposeFrom(ctx),
		LatencyMs: time.Since(start).Milliseconds(),
		Success:   err == nil,
	}
	if resp != nil {
		data.Model = resp.Model
		data.InputTokens = resp.Usage.InputTokens
		data.OutputTokens = resp.Usage.OutputTokens
	}
	if err != nil {
		data.ErrorMessage = err.Error()
	}

	if logErr := l.events.AppendLLMRequest(ctx, data); logErr != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to log LLM request event: %v\n", logErr)
	}

	return resp, err
}

func (l *loggingProvider) ModelID() string {
	return l.inner.ModelID()
}
