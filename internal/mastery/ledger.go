// Package mastery tracks per-subtopic mastery scores for a single learner.
package mastery

import (
	"fmt"
	"math"
)

// Baseline is the score every subtopic starts at.
const Baseline = 0.3

// Smoothing weights for score updates. The blend bounds the influence of
// any single answer while asymptotically tracking sustained performance.
const (
	oldWeight  = 0.7
	evalWeight = 0.3
)

// Smooth blends an evaluation into the previous score, rounded to three
// decimal places. Inputs outside [0,1] are clamped first, so the result
// stays in [0,1]. Smooth(s, s) == s for any s representable at three
// decimals.
func Smooth(old, eval float64) float64 {
	old = clamp01(old)
	eval = clamp01(eval)
	return math.Round((oldWeight*old+evalWeight*eval)*1000) / 1000
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// Ledger maps subtopic names to mastery scores in [0,1]. Iteration order is
// fixed to the order subtopics were registered, which makes weakest-topic
// ties deterministic.
type Ledger struct {
	order  []string
	scores map[string]float64
}

// NewLedger creates a ledger with every subtopic at the baseline score.
func NewLedger(subtopics []string) *Ledger {
	l := &Ledger{
		order:  make([]string, len(subtopics)),
		scores: make(map[string]float64, len(subtopics)),
	}
	copy(l.order, subtopics)
	for _, s := range subtopics {
		l.scores[s] = Baseline
	}
	return l
}

// Len returns the number of tracked subtopics.
func (l *Ledger) Len() int { return len(l.order) }

// Score returns the current score for a subtopic.
func (l *Ledger) Score(subtopic string) (float64, bool) {
	v, ok := l.scores[subtopic]
	return v, ok
}

// Weakest returns the subtopic with the minimum score. Ties go to the first
// minimum in registration order. An empty ledger is a programmer error:
// the knowledge base is required to be non-empty at startup.
func (l *Ledger) Weakest() (string, error) {
	if len(l.order) == 0 {
		return "", fmt.Errorf("mastery: ledger is empty")
	}
	weakest := l.order[0]
	min := l.scores[weakest]
	for _, s := range l.order[1:] {
		if l.scores[s] < min {
			weakest = s
			min = l.scores[s]
		}
	}
	return weakest, nil
}

// Apply blends an evaluation score into a subtopic's ledger entry and
// returns the new score.
func (l *Ledger) Apply(subtopic string, evalScore float64) (float64, error) {
	old, ok := l.scores[subtopic]
	if !ok {
		return 0, fmt.Errorf("mastery: unknown subtopic %q", subtopic)
	}
	next := Smooth(old, evalScore)
	l.scores[subtopic] = next
	return next, nil
}

// Force sets a subtopic's score to zero, making it the guaranteed next
// weakest pick. Used by onboarding topic selection.
func (l *Ledger) Force(subtopic string) bool {
	if _, ok := l.scores[subtopic]; !ok {
		return false
	}
	l.scores[subtopic] = 0.0
	return true
}

// Reset restores every subtopic to the baseline score.
func (l *Ledger) Reset() {
	for _, s := range l.order {
		l.scores[s] = Baseline
	}
}

// Snapshot returns a copy of all scores.
func (l *Ledger) Snapshot() map[string]float64 {
	out := make(map[string]float64, len(l.scores))
	for k, v := range l.scores {
		out[k] = v
	}
	return out
}
