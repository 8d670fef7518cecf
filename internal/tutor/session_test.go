package tutor

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/abhisek/mltutor/internal/evaluate"
	"github.com/abhisek/mltutor/internal/explain"
	"github.com/abhisek/mltutor/internal/knowledge"
)

func testBase(t *testing.T) *knowledge.Base {
	t.Helper()
	base, err := knowledge.Parse([]byte(`[
		{"id": "c1", "topic": "Supervised Learning", "subtopic": "Linear Regression",
		 "difficulty": "foundational", "explanation": "Fitting a line through points.",
		 "assessment": "What does the slope mean?", "evaluation_rubric": {"basic": "line slope"}},
		{"id": "c2", "topic": "Supervised Learning", "subtopic": "Logistic Regression",
		 "difficulty": "competent", "explanation": "Classification with a sigmoid.",
		 "assessment": {"question": "Why a sigmoid?"}, "evaluation_rubric": {"basic": "sigmoid probability"}},
		{"id": "c3", "topic": "Optimization", "subtopic": "Gradient Descent",
		 "difficulty": "foundational", "explanation": "Stepping down the loss gradient.",
		 "assessment": "What is a learning rate?", "evaluation_rubric": {"basic": "step size"}}
	]`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return base
}

type stubOracle struct {
	out   *explain.Output
	err   error
	calls int

	lastPersona string
	lastIntent  string
	lastTier    string
}

func (o *stubOracle) Explain(_ context.Context, _ *knowledge.Chunk, persona, intent, tier string) (*explain.Output, error) {
	o.calls++
	o.lastPersona, o.lastIntent, o.lastTier = persona, intent, tier
	if o.err != nil {
		return nil, o.err
	}
	return o.out, nil
}

type stubScorer struct {
	score float64
	calls int
}

func (s *stubScorer) Score(_ context.Context, _ string, _ *knowledge.Chunk) (float64, error) {
	s.calls++
	return s.score, nil
}

func newTestSession(t *testing.T, oracle Oracle, scorer evaluate.Scorer) *Session {
	t.Helper()
	s, err := NewSession(Config{
		Base:   testBase(t),
		Scorer: scorer,
		Oracle: oracle,
		Logger: slog.New(slog.DiscardHandler),
	})
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	return s
}

// completeOnboarding walks the fixed question sequence and picks the topic,
// returning the first tutoring turn.
func completeOnboarding(t *testing.T, s *Session, topicAnswer string) *TurnResult {
	t.Helper()
	ctx := context.Background()

	res := s.Step(ctx, "")
	for i := 0; i < 5; i++ {
		if res.Topic != "Onboarding" {
			t.Fatalf("step %d: topic = %q, want Onboarding", i, res.Topic)
		}
		res = s.Step(ctx, "some answer")
	}
	if res.Question != "What topic excites you the most?" {
		t.Fatalf("expected topic-selection question, got %q", res.Question)
	}
	return s.Step(ctx, topicAnswer)
}

func TestStepOnboardingSentinels(t *testing.T) {
	s := newTestSession(t, &stubOracle{out: &explain.Output{Explanation: "e"}}, &stubScorer{})

	res := s.Step(context.Background(), "")
	if res.Topic != "Onboarding" || res.Subtopic != "Assessment" {
		t.Errorf("topic/subtopic = %q/%q", res.Topic, res.Subtopic)
	}
	for name, got := range map[string]string{"tier": res.Tier, "persona": res.Persona, "intent": res.Intent} {
		if got != "detecting" {
			t.Errorf("%s = %q, want detecting", name, got)
		}
	}
	if res.Score != 0 || res.Explanation != "" {
		t.Errorf("score = %v, explanation = %q, want zero values", res.Score, res.Explanation)
	}
	if res.Question == "" || len(res.Options) == 0 {
		t.Errorf("onboarding turn missing question or options: %+v", res)
	}
}

func TestStepTopicForceSelect(t *testing.T) {
	oracle := &stubOracle{out: &explain.Output{Explanation: "about gradients", Question: "why step?"}}
	s := newTestSession(t, oracle, &stubScorer{})

	res := completeOnboarding(t, s, "gradient")
	if res.Subtopic != "Gradient Descent" {
		t.Fatalf("subtopic = %q, want Gradient Descent (forced by topic selection)", res.Subtopic)
	}
	if res.Topic != "Optimization" {
		t.Errorf("topic = %q, want Optimization", res.Topic)
	}
	if res.Score != 0 {
		t.Errorf("score = %v, want 0 (forced)", res.Score)
	}
	if res.Explanation != "about gradients" || res.Question != "why step?" {
		t.Errorf("oracle output not used: %+v", res)
	}
	if res.Persona == "" || res.Persona == "detecting" {
		t.Errorf("persona = %q, want a derived persona", res.Persona)
	}
	if res.Tier != res.Persona {
		t.Errorf("tier = %q, want persona %q", res.Tier, res.Persona)
	}
}

func TestStepReportsPersonaAsPlainString(t *testing.T) {
	oracle := &stubOracle{out: &explain.Output{Explanation: "e"}}
	s := newTestSession(t, oracle, &stubScorer{})

	// "some answer" earns no points on any question, so the derived
	// persona is beginner.
	res := completeOnboarding(t, s, "gradient")
	if res.Persona != "beginner" {
		t.Fatalf("persona = %q, want beginner", res.Persona)
	}
	if res.Tier != "beginner" {
		t.Errorf("tier = %q, want beginner", res.Tier)
	}
	if oracle.lastPersona != "beginner" || oracle.lastTier != "beginner" {
		t.Errorf("oracle got persona=%q tier=%q, want beginner for both",
			oracle.lastPersona, oracle.lastTier)
	}
}

func TestStepTopicSelectionAnswerNotEvaluated(t *testing.T) {
	scorer := &stubScorer{score: 1.0}
	s := newTestSession(t, &stubOracle{out: &explain.Output{Explanation: "e"}}, scorer)

	completeOnboarding(t, s, "gradient")
	if scorer.calls != 0 {
		t.Errorf("scorer called %d times during onboarding", scorer.calls)
	}
}

func TestStepEvaluatesAndSmoothsScore(t *testing.T) {
	scorer := &stubScorer{score: 0.5}
	s := newTestSession(t, &stubOracle{out: &explain.Output{Explanation: "e"}}, scorer)

	completeOnboarding(t, s, "gradient")

	// Forced score 0.0, eval 0.5: 0.7*0.0 + 0.3*0.5 = 0.15.
	res := s.Step(context.Background(), "a long answer about step sizes")
	if scorer.calls != 1 {
		t.Fatalf("scorer calls = %d, want 1", scorer.calls)
	}
	if res.Subtopic != "Gradient Descent" {
		t.Fatalf("subtopic = %q", res.Subtopic)
	}
	if res.Score != 0.15 {
		t.Errorf("score = %v, want 0.15", res.Score)
	}
}

func TestStepDiscardsTopicReselection(t *testing.T) {
	scorer := &stubScorer{score: 1.0}
	s := newTestSession(t, &stubOracle{out: &explain.Output{Explanation: "e"}}, scorer)

	completeOnboarding(t, s, "gradient")

	// A subtopic name is navigation, not a concept answer.
	res := s.Step(context.Background(), "linear regression")
	if scorer.calls != 0 {
		t.Errorf("scorer calls = %d, want 0 for a topic re-selection", scorer.calls)
	}
	if res.Subtopic != "Gradient Descent" {
		t.Errorf("subtopic = %q, want still-weakest Gradient Descent", res.Subtopic)
	}
}

func TestStepOracleFailureDegrades(t *testing.T) {
	oracle := &stubOracle{err: errors.New("oracle down")}
	s := newTestSession(t, oracle, &stubScorer{})

	res := completeOnboarding(t, s, "gradient")
	if res.Explanation != "Stepping down the loss gradient." {
		t.Errorf("explanation = %q, want chunk content fallback", res.Explanation)
	}
	if res.Question != "What is a learning rate?" {
		t.Errorf("question = %q, want static assessment fallback", res.Question)
	}
}

func TestStepFallsBackToStaticQuestion(t *testing.T) {
	oracle := &stubOracle{out: &explain.Output{Explanation: "e"}} // no question
	s := newTestSession(t, oracle, &stubScorer{})

	res := completeOnboarding(t, s, "logistic")
	if res.Question != "Why a sigmoid?" {
		t.Errorf("question = %q, want structured assessment question", res.Question)
	}
}

func TestReset(t *testing.T) {
	s := newTestSession(t, &stubOracle{out: &explain.Output{Explanation: "e"}}, &stubScorer{score: 0.9})

	completeOnboarding(t, s, "gradient")
	s.Step(context.Background(), "a long answer about step sizes")

	s.Reset()

	if s.Profile() != nil {
		t.Error("profile survived reset")
	}
	for sub, score := range s.Scores() {
		if score != 0.3 {
			t.Errorf("score[%s] = %v, want baseline 0.3", sub, score)
		}
	}

	res := s.Step(context.Background(), "")
	if res.Topic != "Onboarding" {
		t.Errorf("topic = %q, want Onboarding after reset", res.Topic)
	}
}

func TestRegistryIsolatesLearners(t *testing.T) {
	reg := NewRegistry(Config{
		Base:   testBase(t),
		Scorer: &stubScorer{},
		Oracle: &stubOracle{out: &explain.Output{Explanation: "e"}},
		Logger: slog.New(slog.DiscardHandler),
	})

	a, err := reg.Session("learner-a")
	if err != nil {
		t.Fatalf("Session: %v", err)
	}
	b, err := reg.Session("learner-b")
	if err != nil {
		t.Fatalf("Session: %v", err)
	}
	if a == b {
		t.Fatal("distinct learners share a session")
	}

	again, err := reg.Session("learner-a")
	if err != nil {
		t.Fatalf("Session: %v", err)
	}
	if again != a {
		t.Error("same learner got a new session")
	}

	completeOnboarding(t, a, "gradient")
	if b.Profile() != nil {
		t.Error("learner-b profile affected by learner-a onboarding")
	}
	if reg.Len() != 2 {
		t.Errorf("registry len = %d, want 2", reg.Len())
	}
}
