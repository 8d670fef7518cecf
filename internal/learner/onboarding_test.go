package learner

import "testing"

var fiveAnswers = []string{
	"I know basic ML concepts",
	"Predicting house prices",
	"Linear algebra & calculus",
	"Yes, using libraries",
	"Project help",
}

func subtopics() []string {
	return []string{"Classification", "Linear Regression", "Clustering"}
}

func TestOnboarding_AsksFixedSequence(t *testing.T) {
	o := NewOnboarding(subtopics())

	wantIDs := []string{QSelfLevel, QConceptCheck, QMathLevel, QPractical, QIntent}

	// First call with no answer returns the first question.
	res := o.Advance("")
	if res.Pending == nil || res.Pending.ID != wantIDs[0] {
		t.Fatalf("first pending = %+v, want %s", res.Pending, wantIDs[0])
	}
	if res.AnswerConsumed {
		t.Error("no answer given, nothing to consume")
	}

	// Each answer advances to the next question.
	for i, ans := range fiveAnswers[:4] {
		res = o.Advance(ans)
		if !res.AnswerConsumed {
			t.Fatalf("answer %d not consumed", i+1)
		}
		if res.Pending == nil || res.Pending.ID != wantIDs[i+1] {
			t.Fatalf("pending after answer %d = %+v, want %s", i+1, res.Pending, wantIDs[i+1])
		}
	}
}

func TestOnboarding_ProfileAfterFiveAnswers(t *testing.T) {
	o := NewOnboarding(subtopics())
	o.Advance("")
	var last Result
	for _, ans := range fiveAnswers {
		last = o.Advance(ans)
	}

	if o.Profile() == nil {
		t.Fatal("profile not derived after five answers")
	}
	if o.Profile().Persona != PersonaPractitioner {
		t.Errorf("persona = %s, want practitioner", o.Profile().Persona)
	}

	// The fifth answer was consumed by onboarding and the topic question
	// is now pending.
	if !last.AnswerConsumed {
		t.Error("fifth answer not marked consumed")
	}
	if last.Pending == nil || last.Pending.ID != TopicQuestionID {
		t.Fatalf("pending = %+v, want topic selection", last.Pending)
	}
	if len(last.Pending.Options) != len(subtopics()) {
		t.Errorf("topic options = %v, want all subtopics", last.Pending.Options)
	}
}

func TestOnboarding_TopicSelection(t *testing.T) {
	o := NewOnboarding(subtopics())
	o.Advance("")
	for _, ans := range fiveAnswers {
		o.Advance(ans)
	}

	// Unmatched input re-asks, still consumed.
	res := o.Advance("quantum computing")
	if res.ChosenTopic != "" {
		t.Fatalf("unexpected match: %q", res.ChosenTopic)
	}
	if res.Pending == nil || res.Pending.ID != TopicQuestionID {
		t.Fatal("topic question not re-asked")
	}
	if !res.AnswerConsumed {
		t.Error("unmatched topic input must still be consumed")
	}

	// Fuzzy substring match, case-insensitive.
	res = o.Advance("regression")
	if res.ChosenTopic != "Linear Regression" {
		t.Fatalf("ChosenTopic = %q, want Linear Regression", res.ChosenTopic)
	}
	if !res.AnswerConsumed {
		t.Error("matched topic input must be consumed")
	}
	if !o.Done() {
		t.Error("onboarding not done after topic selection")
	}
}

func TestOnboarding_IdempotentWhenDone(t *testing.T) {
	o := NewOnboarding(subtopics())
	o.Advance("")
	for _, ans := range fiveAnswers {
		o.Advance(ans)
	}
	o.Advance("Classification")

	for i := 0; i < 3; i++ {
		res := o.Advance("the model uses gradient descent")
		if res.Pending != nil || res.AnswerConsumed || res.ChosenTopic != "" {
			t.Fatalf("Advance after done = %+v, want empty result", res)
		}
	}
}

func TestOnboarding_LenientAnswers(t *testing.T) {
	o := NewOnboarding(subtopics())
	o.Advance("")

	// Arbitrary strings are stored verbatim, no option validation.
	for _, ans := range []string{"???", "42", "whatever", "x", "Project help"} {
		res := o.Advance(ans)
		if res.Pending == nil && o.Profile() == nil {
			t.Fatal("expected pending or profile")
		}
	}
	if o.Profile() == nil {
		t.Fatal("profile not derived from lenient answers")
	}
	if o.Profile().Intent != "Project help" {
		t.Errorf("intent = %q, want verbatim fifth answer", o.Profile().Intent)
	}
}

func TestMatchTopic(t *testing.T) {
	subs := []string{"Linear Regression", "Logistic Regression", "Clustering"}

	cases := []struct {
		input string
		want  string
		ok    bool
	}{
		{"Linear Regression", "Linear Regression", true},
		{"linear regression", "Linear Regression", true},
		{"  clustering  ", "Clustering", true},
		{"regression", "Linear Regression", true}, // first in order wins
		{"logistic", "Logistic Regression", true},
		{"", "", false},
		{"   ", "", false},
		{"quantum", "", false},
	}
	for _, tc := range cases {
		got, ok := MatchTopic(tc.input, subs)
		if got != tc.want || ok != tc.ok {
			t.Errorf("MatchTopic(%q) = %q,%v want %q,%v", tc.input, got, ok, tc.want, tc.ok)
		}
	}
}
