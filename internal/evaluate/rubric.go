// Package evaluate scores free-text learner answers against a chunk's
// rubric.
package evaluate

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/abhisek/mltutor/internal/knowledge"
)

// Scores returned for degenerate inputs.
const (
	// shortAnswerScore discourages trivial answers without a harsh penalty.
	shortAnswerScore = 0.2
	// minAnswerLen is the threshold, in runes, below which an answer is
	// considered trivial.
	minAnswerLen = 10
	// emptyRubricScore is the defensive result for a rubric that has no
	// levels left after the empty check.
	emptyRubricScore = 0.3
)

// Scorer grades a free-text answer against a chunk's rubric, returning a
// value in [0,1]. Implementations must not mutate the chunk.
type Scorer interface {
	Score(ctx context.Context, answer string, chunk *knowledge.Chunk) (float64, error)
}

// RubricScorer is the deterministic keyword-overlap scorer. It has no
// semantic understanding; a rubric level passes when the answer contains at
// least one of the level's keywords. Side-effect free by construction,
// which is what makes the score-update path testable.
type RubricScorer struct{}

func (RubricScorer) Score(_ context.Context, answer string, chunk *knowledge.Chunk) (float64, error) {
	if chunk == nil {
		return 0, fmt.Errorf("evaluate: nil chunk")
	}
	return ScoreAgainstRubric(answer, chunk.Rubric), nil
}

// ScoreAgainstRubric implements the heuristic contract:
// empty answer or rubric scores 0; answers under 10 characters score a
// flat 0.2; otherwise each level whose keywords overlap the answer counts
// once, normalized by the level count and capped at 1.
func ScoreAgainstRubric(answer string, rubric knowledge.Rubric) float64 {
	if answer == "" || len(rubric) == 0 {
		return 0.0
	}

	lowered := strings.ToLower(answer)
	if utf8.RuneCountInString(lowered) < minAnswerLen {
		return shortAnswerScore
	}

	passed, levels := 0, 0
	for _, description := range rubric {
		levels++
		if levelPasses(lowered, description) {
			passed++
		}
	}
	if levels == 0 {
		return emptyRubricScore
	}

	score := float64(passed) / float64(levels)
	if score > 1.0 {
		score = 1.0
	}
	return score
}

func levelPasses(loweredAnswer, description string) bool {
	for _, keyword := range strings.Fields(strings.ToLower(description)) {
		if strings.Contains(loweredAnswer, keyword) {
			return true
		}
	}
	return false
}
