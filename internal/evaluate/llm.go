package evaluate

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/abhisek/mltutor/internal/knowledge"
	"github.com/abhisek/mltutor/internal/llm"
)

// gradeSchema constrains the model to a score and a short justification.
var gradeSchema = &llm.Schema{
	Name:        "answer-grade",
	Description: "Grade for a learner's free-text answer against a rubric",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"score": map[string]any{
				"type":        "number",
				"minimum":     0,
				"maximum":     1,
				"description": "How well the answer meets the rubric, 0 to 1",
			},
			"feedback": map[string]any{
				"type":        "string",
				"description": "One or two sentences explaining the grade",
			},
		},
		"required": []any{"score", "feedback"},
	},
}

type grade struct {
	Score    float64 `json:"score"`
	Feedback string  `json:"feedback"`
}

// LLMScorer grades answers with a language model. The rubric is embedded in
// the prompt so the model grades against the same levels the keyword scorer
// uses.
type LLMScorer struct {
	provider llm.Provider
}

// NewLLMScorer creates an LLM-backed scorer.
func NewLLMScorer(provider llm.Provider) *LLMScorer {
	return &LLMScorer{provider: provider}
}

const gradeSystemPrompt = `You are a strict but fair grader for a machine learning tutoring system.
Grade the learner's answer against the rubric levels. Each level describes
what a progressively better answer contains. Score 0.0 for an answer that
meets no level, 1.0 for an answer that meets every level. Grade the content,
not the writing style.`

func (s *LLMScorer) Score(ctx context.Context, answer string, chunk *knowledge.Chunk) (float64, error) {
	if chunk == nil {
		return 0, fmt.Errorf("evaluate: nil chunk")
	}

	// The degenerate cases don't need a model call and must match the
	// keyword scorer so fallback is seamless.
	if answer == "" || len(chunk.Rubric) == 0 {
		return 0.0, nil
	}
	if utf8.RuneCountInString(answer) < minAnswerLen {
		return shortAnswerScore, nil
	}

	ctx = llm.WithPurpose(ctx, "evaluate")
	resp, err := s.provider.Generate(ctx, llm.Request{
		System: gradeSystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: gradePrompt(answer, chunk)},
		},
		Schema:      gradeSchema,
		MaxTokens:   512,
		Temperature: 0,
	})
	if err != nil {
		return 0, fmt.Errorf("grade answer: %w", err)
	}

	var g grade
	if err := json.Unmarshal(resp.Content, &g); err != nil {
		return 0, fmt.Errorf("decode grade: %w", err)
	}
	return clamp01(g.Score), nil
}

func gradePrompt(answer string, chunk *knowledge.Chunk) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Subtopic: %s\n", chunk.Subtopic)
	fmt.Fprintf(&b, "Question: %s\n\nRubric:\n", chunk.Assessment.Text())
	for level, description := range chunk.Rubric {
		fmt.Fprintf(&b, "- %s: %s\n", level, description)
	}
	fmt.Fprintf(&b, "\nLearner's answer:\n%s\n", answer)
	return b.String()
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// FallbackScorer tries the primary scorer and falls back to the secondary
// when it fails. The tutor wires LLM primary, rubric-keyword secondary, so
// an unreachable provider degrades grading instead of breaking the turn.
type FallbackScorer struct {
	Primary   Scorer
	Secondary Scorer
}

func (f FallbackScorer) Score(ctx context.Context, answer string, chunk *knowledge.Chunk) (float64, error) {
	score, err := f.Primary.Score(ctx, answer, chunk)
	if err == nil {
		return score, nil
	}
	return f.Secondary.Score(ctx, answer, chunk)
}
