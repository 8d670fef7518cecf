// Package explain generates adaptive explanations for curriculum chunks.
// The prompt is guardrailed: the model may only restate what the chunk
// itself contains, pitched at the learner's persona and mastery tier.
package explain

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/abhisek/mltutor/internal/knowledge"
	"github.com/abhisek/mltutor/internal/llm"
)

// Markers the model is instructed to emit. Parsing splits on them; a
// response missing either marker is used verbatim as the explanation.
const (
	explanationMarker = "EXPLANATION:"
	questionMarker    = "CHECKPOINT QUESTION:"
)

// Output is one generated explanation. Question is empty when the model
// did not produce a parseable checkpoint question; callers fall back to
// the chunk's static assessment.
type Output struct {
	Explanation string
	Question    string
}

// Service generates explanations through an LLM provider.
type Service struct {
	provider llm.Provider
	timeout  time.Duration
}

// NewService creates an explanation service. A zero timeout disables the
// per-call deadline.
func NewService(provider llm.Provider, timeout time.Duration) *Service {
	return &Service{provider: provider, timeout: timeout}
}

// Explain generates an adaptive explanation for the chunk. The caller
// handles errors by degrading to the chunk's raw explanation text.
func (s *Service) Explain(ctx context.Context, chunk *knowledge.Chunk, persona, intent, tier string) (*Output, error) {
	if chunk == nil {
		return nil, fmt.Errorf("explain: nil chunk")
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	ctx = llm.WithPurpose(ctx, "explain")
	resp, err := s.provider.Generate(ctx, llm.Request{
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildPrompt(chunk, persona, intent, tier)},
		},
		MaxTokens:   1024,
		Temperature: 0.4,
	})
	if err != nil {
		return nil, fmt.Errorf("generate explanation: %w", err)
	}

	out := parseOutput(resp.Text())
	if out.Explanation == "" {
		return nil, fmt.Errorf("empty explanation from model")
	}
	return out, nil
}

// buildPrompt produces the guardrailed prompt. The rules pin the model to
// the chunk content so explanations never outrun the curriculum.
func buildPrompt(chunk *knowledge.Chunk, persona, intent, tier string) string {
	var b strings.Builder

	b.WriteString(`You are an AI Machine Learning tutor.

STRICT RULES (MANDATORY):
- Use ONLY the knowledge chunk provided below.
- Do NOT add examples, formulas, or concepts not present.
- Do NOT mention sources, datasets, or retrieval.
- Do NOT go beyond the learner's mastery level.
- If something is missing, say: "This concept will be covered later."

`)
	fmt.Fprintf(&b, "LEARNER PROFILE:\nPersona: %s\nIntent: %s\nMastery Level: %s\n\n", persona, intent, tier)
	fmt.Fprintf(&b, "KNOWLEDGE CHUNK:\nTopic: %s\nSubtopic: %s\n\nCONTENT:\n%s\n\n", chunk.Topic, chunk.Subtopic, chunk.Explanation)
	b.WriteString(`TASK:
Explain the above content to the learner.

REQUIREMENTS:
- Match explanation depth to mastery level.
- Use intuition first.
- Be concise and structured.
- Prepare the learner for a short question.

OUTPUT FORMAT (STRICT):
EXPLANATION:
<clear explanation>

CHECKPOINT QUESTION:
<one question based ONLY on this chunk>`)

	return b.String()
}

// parseOutput splits the raw model text on the output markers. When both
// markers are present the text between them is the explanation and the
// tail is the question; otherwise the whole text is the explanation.
func parseOutput(raw string) *Output {
	raw = strings.TrimSpace(raw)
	out := &Output{Explanation: raw}

	if !strings.Contains(raw, explanationMarker) || !strings.Contains(raw, questionMarker) {
		return out
	}

	before, after, _ := strings.Cut(raw, questionMarker)
	out.Explanation = strings.TrimSpace(strings.Replace(before, explanationMarker, "", 1))
	out.Question = strings.TrimSpace(after)
	return out
}
