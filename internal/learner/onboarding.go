package learner

// TopicQuestionID identifies the post-profile topic-selection question.
const TopicQuestionID = "topic_select"

const topicQuestionText = "What topic excites you the most?"

// Pending is a question awaiting the learner's answer.
type Pending struct {
	ID      string
	Text    string
	Options []string
}

// Result reports one onboarding advance. When Pending is nil, onboarding is
// complete and tutoring may begin. AnswerConsumed tells the caller the
// supplied answer belonged to onboarding and must not reach evaluation.
// ChosenTopic is set on the call where topic selection matched; the caller
// forces that subtopic weakest.
type Result struct {
	Pending        *Pending
	AnswerConsumed bool
	ChosenTopic    string
}

// Onboarding walks the fixed profiling sequence, derives the profile, then
// runs the topic-selection sub-state. Not safe for concurrent use; the
// session serializes access.
type Onboarding struct {
	answers   map[string]string
	profile   *Profile
	topicDone bool
	subtopics []string
}

// NewOnboarding creates an onboarding flow offering the given subtopics in
// the topic-selection step.
func NewOnboarding(subtopics []string) *Onboarding {
	return &Onboarding{
		answers:   make(map[string]string),
		subtopics: subtopics,
	}
}

// Profile returns the derived profile, or nil while onboarding questions
// remain.
func (o *Onboarding) Profile() *Profile { return o.profile }

// Done reports whether both profile inference and topic selection are
// complete.
func (o *Onboarding) Done() bool { return o.profile != nil && o.topicDone }

// Advance records an optional answer against the first outstanding question
// and returns the next pending question, if any. Any answer string is
// accepted and stored verbatim; onboarding is deliberately lenient about
// unrecognized input. Once complete, Advance is an idempotent no-op.
func (o *Onboarding) Advance(answer string) Result {
	if o.Done() {
		return Result{}
	}

	consumed := false

	if o.profile == nil {
		if answer != "" {
			if q := o.nextUnanswered(); q != nil {
				o.answers[q.ID] = answer
				consumed = true
			}
		}
		if q := o.nextUnanswered(); q != nil {
			return Result{
				Pending:        &Pending{ID: q.ID, Text: q.Text, Options: q.Options},
				AnswerConsumed: consumed,
			}
		}
		p := InferProfile(o.answers)
		o.profile = &p
	}

	if answer != "" && !consumed {
		if topic, ok := MatchTopic(answer, o.subtopics); ok {
			o.topicDone = true
			return Result{AnswerConsumed: true, ChosenTopic: topic}
		}
		// Unmatched input re-prompts; it still never reaches evaluation.
		consumed = true
	}

	return Result{
		Pending: &Pending{
			ID:      TopicQuestionID,
			Text:    topicQuestionText,
			Options: o.subtopics,
		},
		AnswerConsumed: consumed,
	}
}

func (o *Onboarding) nextUnanswered() *Question {
	for i := range onboardingQuestions {
		if _, ok := o.answers[onboardingQuestions[i].ID]; !ok {
			return &onboardingQuestions[i]
		}
	}
	return nil
}
