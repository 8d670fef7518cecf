// Package tutor drives the adaptive session state machine: onboarding,
// weakest-topic selection, answer evaluation, and explanation turns.
package tutor

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/abhisek/mltutor/internal/evaluate"
	"github.com/abhisek/mltutor/internal/explain"
	"github.com/abhisek/mltutor/internal/knowledge"
	"github.com/abhisek/mltutor/internal/learner"
	"github.com/abhisek/mltutor/internal/mastery"
	"github.com/abhisek/mltutor/internal/store"
)

// Sentinel values returned while the learner profile is still being
// detected. The UI renders these literally, so they are part of the wire
// contract.
const (
	detectingSentinel  = "detecting"
	onboardingTopic    = "Onboarding"
	onboardingSubtopic = "Assessment"
)

// Oracle generates an adaptive explanation for a chunk. The persona doubles
// as the mastery-level constraint, matching the prompt contract.
type Oracle interface {
	Explain(ctx context.Context, chunk *knowledge.Chunk, persona, intent, tier string) (*explain.Output, error)
}

// TurnResult is what the learner sees after one step. Tier mirrors Persona
// for display compatibility.
type TurnResult struct {
	Topic       string   `json:"topic"`
	Subtopic    string   `json:"subtopic"`
	Tier        string   `json:"tier"`
	Persona     string   `json:"persona"`
	Intent      string   `json:"intent"`
	Explanation string   `json:"explanation,omitempty"`
	Question    string   `json:"question"`
	Options     []string `json:"options,omitempty"`
	Score       float64  `json:"score"`
}

// Config wires a session's collaborators.
type Config struct {
	Base   *knowledge.Base
	Scorer evaluate.Scorer
	Oracle Oracle
	Events store.EventRepo
	Logger *slog.Logger
}

// Session holds one learner's state: the score ledger, the onboarding flow,
// and the derived profile. All mutation happens under one mutex so a turn
// is atomic even behind a concurrent handler.
type Session struct {
	mu sync.Mutex

	id         string
	base       *knowledge.Base
	ledger     *mastery.Ledger
	onboarding *learner.Onboarding
	scorer     evaluate.Scorer
	oracle     Oracle
	events     store.EventRepo
	logger     *slog.Logger
}

// NewSession creates a session at the onboarding state with every subtopic
// at the baseline score.
func NewSession(cfg Config) (*Session, error) {
	if cfg.Base == nil || cfg.Base.Len() == 0 {
		return nil, fmt.Errorf("tutor: knowledge base is empty")
	}
	if cfg.Scorer == nil || cfg.Oracle == nil {
		return nil, fmt.Errorf("tutor: scorer and oracle are required")
	}
	if cfg.Events == nil {
		cfg.Events = store.NopEventRepo{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	subtopics := cfg.Base.Subtopics()
	return &Session{
		id:         uuid.NewString(),
		base:       cfg.Base,
		ledger:     mastery.NewLedger(subtopics),
		onboarding: learner.NewOnboarding(subtopics),
		scorer:     cfg.Scorer,
		oracle:     cfg.Oracle,
		events:     cfg.Events,
		logger:     cfg.Logger,
	}, nil
}

// ID returns the session's identifier.
func (s *Session) ID() string { return s.id }

// Scores returns a copy of the current ledger.
func (s *Session) Scores() map[string]float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Snapshot()
}

// Profile returns the derived learner profile, or nil during onboarding.
func (s *Session) Profile() *learner.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.onboarding.Profile()
}

// Reset clears the profile and restores every score to baseline. The next
// Step starts onboarding over.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ledger.Reset()
	s.onboarding = learner.NewOnboarding(s.base.Subtopics())
}

// Step runs one tutoring turn. The answer, when present, responds to the
// previous turn's question. Every call returns a well-formed result;
// collaborator failures degrade the turn instead of propagating.
func (s *Session) Step(ctx context.Context, answer string) *TurnResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.onboarding.Done() {
		adv := s.onboarding.Advance(answer)
		if adv.ChosenTopic != "" {
			s.ledger.Force(adv.ChosenTopic)
		}
		if adv.AnswerConsumed {
			// Onboarding and topic-selection answers never reach evaluation.
			answer = ""
		}
		if adv.Pending != nil {
			s.recordTurn(ctx, store.TurnEventData{
				LearnerID: s.id,
				Phase:     onboardingPhase(s.onboarding),
				Topic:     onboardingTopic,
				Subtopic:  onboardingSubtopic,
				Tier:      detectingSentinel,
			})
			return &TurnResult{
				Topic:    onboardingTopic,
				Subtopic: onboardingSubtopic,
				Tier:     detectingSentinel,
				Persona:  detectingSentinel,
				Intent:   detectingSentinel,
				Question: adv.Pending.Text,
				Options:  adv.Pending.Options,
				Score:    0,
			}
		}
	}

	profile := s.onboarding.Profile()

	// A late topic re-selection is a navigation command, not a concept
	// answer.
	if answer != "" && s.isSubtopicName(answer) {
		answer = ""
	}

	chunk := s.weakestChunk()

	if answer != "" {
		if score, err := s.scorer.Score(ctx, answer, chunk); err != nil {
			s.logger.Warn("answer evaluation failed, skipping score update",
				"subtopic", chunk.Subtopic, "error", err)
		} else if _, err := s.ledger.Apply(chunk.Subtopic, score); err != nil {
			s.logger.Warn("score update failed", "subtopic", chunk.Subtopic, "error", err)
		}
	}

	explanation, question := s.explainTurn(ctx, chunk, profile)

	current, _ := s.ledger.Score(chunk.Subtopic)
	score := math.Round(current*100) / 100

	s.recordTurn(ctx, store.TurnEventData{
		LearnerID: s.id,
		Phase:     "tutoring",
		Topic:     chunk.Topic,
		Subtopic:  chunk.Subtopic,
		Tier:      string(mastery.TierFor(current)),
		Answer:    answer,
		Score:     score,
	})

	return &TurnResult{
		Topic:       chunk.Topic,
		Subtopic:    chunk.Subtopic,
		Tier:        string(profile.Persona), // display compatibility: tier mirrors persona
		Persona:     string(profile.Persona),
		Intent:      profile.Intent,
		Explanation: explanation,
		Question:    question,
		Score:       score,
	}
}

// weakestChunk resolves the minimum-score subtopic to its chunk, falling
// back to the first chunk if the ledger key has no chunk. The ledger and
// base are built from the same subtopic list, so the fallback is defensive.
func (s *Session) weakestChunk() *knowledge.Chunk {
	subtopic, err := s.ledger.Weakest()
	if err != nil {
		return s.base.First()
	}
	chunk, ok := s.base.BySubtopic(subtopic)
	if !ok {
		return s.base.First()
	}
	return chunk
}

// explainTurn calls the oracle and degrades to the chunk's raw explanation
// and static assessment question on failure.
func (s *Session) explainTurn(ctx context.Context, chunk *knowledge.Chunk, profile *learner.Profile) (explanation, question string) {
	persona := string(profile.Persona)
	out, err := s.oracle.Explain(ctx, chunk, persona, profile.Intent, persona)
	if err != nil {
		s.logger.Warn("explanation oracle failed, using chunk content",
			"subtopic", chunk.Subtopic, "error", err)
		return chunk.Explanation, chunk.Assessment.Text()
	}

	question = out.Question
	if question == "" {
		question = chunk.Assessment.Text()
	}
	return out.Explanation, question
}

func (s *Session) isSubtopicName(answer string) bool {
	trimmed := strings.TrimSpace(answer)
	for _, sub := range s.base.Subtopics() {
		if strings.EqualFold(trimmed, sub) {
			return true
		}
	}
	return false
}

func (s *Session) recordTurn(ctx context.Context, data store.TurnEventData) {
	if err := s.events.AppendTurn(ctx, data); err != nil {
		s.logger.Warn("failed to record turn event", "error", err)
	}
}

func onboardingPhase(o *learner.Onboarding) string {
	if o.Profile() != nil {
		return "topic_selection"
	}
	return "onboarding"
}
