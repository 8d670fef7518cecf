package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrMaxTokensExceeded reports a response truncated at the MaxTokens limit.
// A truncated grade or explanation is unusable, and retrying cannot help;
// the request's token budget is wrong.
var ErrMaxTokensExceeded = errors.New("model response truncated at the token limit")

// ErrRateLimit indicates the provider returned 429. RetryAfter, when the
// provider supplied one, overrides the backoff schedule.
type ErrRateLimit struct {
	RetryAfter time.Duration
	Err        error
}

func (e *ErrRateLimit) Error() string {
	return fmt.Sprintf("rate limited (retry after %s): %v", e.RetryAfter, e.Err)
}

func (e *ErrRateLimit) Unwrap() error { return e.Err }

// ErrInvalidResponse indicates content that does not conform to the
// requested schema or is otherwise unparseable. Content carries the raw
// model output for the event log.
type ErrInvalidResponse struct {
	Content json.RawMessage
	Err     error
}

func (e *ErrInvalidResponse) Error() string {
	return fmt.Sprintf("invalid model response: %v", e.Err)
}

func (e *ErrInvalidResponse) Unwrap() error { return e.Err }

// ErrProviderUnavailable indicates the provider is down or unreachable.
// Err may be nil when there is no underlying cause to report.
type ErrProviderUnavailable struct {
	Err error
}

func (e *ErrProviderUnavailable) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("model provider unavailable: %v", e.Err)
	}
	return "model provider unavailable"
}

func (e *ErrProviderUnavailable) Unwrap() error { return e.Err }
