// Package learner holds the onboarding flow and learner profile inference.
package learner

// Question is one fixed profiling question asked during onboarding.
type Question struct {
	ID      string
	Text    string
	Options []string
}

// Question IDs, in asking order.
const (
	QSelfLevel    = "q1_self_level"
	QConceptCheck = "q2_concept_check"
	QMathLevel    = "q3_math_level"
	QPractical    = "q4_practical"
	QIntent       = "q5_intent"
)

// conceptCheckCorrect is the correct option for the concept-check question.
const conceptCheckCorrect = "predicting house prices"

// Questions returns the fixed, ordered profiling sequence. Callers must not
// mutate the returned slice.
func Questions() []Question {
	return onboardingQuestions
}

var onboardingQuestions = []Question{
	{
		ID:   QSelfLevel,
		Text: "Which best describes you?",
		Options: []string{
			"I'm new to machine learning",
			"I know basic ML concepts",
			"I've trained ML models",
			"I've deployed or researched ML models",
		},
	},
	{
		ID:   QConceptCheck,
		Text: "Which task is supervised learning best suited for?",
		Options: []string{
			"Grouping news articles",
			"Predicting house prices",
			"Finding anomalies",
			"Reducing dimensions",
		},
	},
	{
		ID:   QMathLevel,
		Text: "How comfortable are you with ML mathematics?",
		Options: []string{
			"No math",
			"Basic algebra & probability",
			"Linear algebra & calculus",
			"Gradients & optimization",
		},
	},
	{
		ID:   QPractical,
		Text: "Have you trained ML models yourself?",
		Options: []string{
			"No",
			"Yes, using libraries",
			"Yes, including tuning & evaluation",
		},
	},
	{
		ID:   QIntent,
		Text: "What do you want to use this ML tutor for?",
		Options: []string{
			"Learn ML from scratch",
			"Interview preparation",
			"Project help",
			"Research / advanced topics",
			"Production / deployment",
		},
	},
}
